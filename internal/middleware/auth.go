package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sharmers-menus/internal/auth"
	"github.com/localnerve/sharmers-menus/internal/types"
)

const (
	principalKey = "principal"
	tokenKey     = "sessionToken"
)

// SessionToken reads the session token from the session cookie, or from an
// Authorization: Bearer header when there is no cookie.
func SessionToken(c *fiber.Ctx, cookieName string) string {
	if token := c.Cookies(cookieName); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// OptionalSession resolves the principal, if any, and stores it for handlers.
func OptionalSession(resolver *auth.Resolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resolve(c, resolver, cookieName)
		return c.Next()
	}
}

// RequireSession rejects requests without a resolvable principal.
func RequireSession(resolver *auth.Resolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if resolve(c, resolver, cookieName) == nil {
			return types.NewError(types.KindNotAuthenticated, "session", "a valid session is required")
		}
		return c.Next()
	}
}

// CurrentPrincipal returns the principal resolved for this request, or nil.
func CurrentPrincipal(c *fiber.Ctx) *auth.Principal {
	p, _ := c.Locals(principalKey).(*auth.Principal)
	return p
}

// CurrentPrincipalID returns the resolved principal id, or "".
func CurrentPrincipalID(c *fiber.Ctx) string {
	if p := CurrentPrincipal(c); p != nil {
		return p.ID
	}
	return ""
}

// CurrentToken returns the session token presented with this request, or "".
func CurrentToken(c *fiber.Ctx) string {
	t, _ := c.Locals(tokenKey).(string)
	return t
}

func resolve(c *fiber.Ctx, resolver *auth.Resolver, cookieName string) *auth.Principal {
	token := SessionToken(c, cookieName)
	if token == "" {
		return nil
	}
	c.Locals(tokenKey, token)

	principal := resolver.ResolveCurrentPrincipal(c.UserContext(), token)
	if principal != nil {
		c.Locals(principalKey, principal)
	}
	return principal
}
