package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sharmers-menus/internal/middleware"
	"github.com/localnerve/sharmers-menus/internal/services"
	"github.com/localnerve/sharmers-menus/internal/utils"
)

// AuthHandler handles registration and session routes
type AuthHandler struct {
	Accounts     *services.AccountService
	CookieName   string
	CookieTTL    time.Duration
	SecureCookie bool
}

// Register handles POST /api/auth/register
// @Summary Register a restaurant owner
// @Description Validates the registration form, creates the account and its profile, and starts a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration form"
// @Success 201 {object} services.Account
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := bindJSON(c, "accounts.Register", &in); err != nil {
		return err
	}

	account, err := h.Accounts.Register(c.UserContext(), in)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, account.Token)
	return utils.SuccessResponse(c, account, fiber.StatusCreated)
}

// Login handles POST /api/auth/login
// @Summary Sign in
// @Description Signs in and returns the user with the owned restaurant id, if any
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} services.Account
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := bindJSON(c, "accounts.Login", &in); err != nil {
		return err
	}

	account, err := h.Accounts.Login(c.UserContext(), in)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, account.Token)
	return utils.SuccessResponse(c, account, fiber.StatusOK)
}

// Logout handles POST /api/auth/logout
// @Summary Sign out
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Security CookieAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Accounts.Logout(c.UserContext(), middleware.CurrentToken(c)); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.MutationSuccessResponse(c, "Signed out")
}

// Refresh handles POST /api/auth/refresh
// @Summary Refresh the session token
// @Tags Auth
// @Produce json
// @Success 200 {object} services.Account
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	account, err := h.Accounts.Refresh(c.UserContext(), middleware.SessionToken(c, h.CookieName))
	if err != nil {
		return err
	}

	h.setSessionCookie(c, account.Token)
	return utils.SuccessResponse(c, account, fiber.StatusOK)
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Description Returns the signed in user and profile; the dashboard uses restaurantId to choose between creating and managing a restaurant
// @Tags Auth
// @Produce json
// @Success 200 {object} services.Account
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	account, err := h.Accounts.Me(c.UserContext(), middleware.CurrentPrincipal(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, account, fiber.StatusOK)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	if token == "" {
		return
	}
	cookie := &fiber.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if h.CookieTTL > 0 {
		cookie.Expires = time.Now().Add(h.CookieTTL)
	}
	c.Cookie(cookie)
}
