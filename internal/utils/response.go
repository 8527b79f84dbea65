package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sharmers-menus/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// DomainErrorResponse renders a *types.Error with the status of its kind.
// Validation failures carry their field messages, orphaned writes the restaurant id.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	var e *types.Error
	if !errors.As(err, &e) {
		return ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, types.KindUnknown.String())
	}

	status := e.Kind.HTTPStatus()
	message := e.Message
	if message == "" {
		message = e.Kind.String()
	}
	// Infrastructure causes stay in the logs
	if e.Kind == types.KindBackendUnavailable {
		message = "Service temporarily unavailable, please retry"
	}

	return c.Status(status).JSON(ErrorResponseStruct{
		Status:       status,
		Message:      message,
		Ok:           false,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		URL:          c.OriginalURL(),
		Type:         e.Kind.String(),
		Fields:       e.Fields,
		RestaurantID: e.RestaurantID,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, types.KindNotFound.String())
}

// MutationSuccessResponse sends a success response for mutations without a body (DELETE)
func MutationSuccessResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponseStruct{
		Message:   message,
		Ok:        true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status       int               `json:"status"`
	Message      string            `json:"message"`
	Ok           bool              `json:"ok"`
	Timestamp    string            `json:"timestamp"`
	URL          string            `json:"url"`
	Type         string            `json:"type,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	RestaurantID uint64            `json:"restaurantId,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
}
