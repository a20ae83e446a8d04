package presenter

import "github.com/gofiber/fiber/v2"

type ErrorResponse struct {
	Message string `json:"message"`
}

// FieldError mirrors the domain field/reason pair for transport.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ValidationResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// Validation renders a 400 with per-field failure detail.
func Validation(c *fiber.Ctx, errs []FieldError) error {
	return JSON(c, fiber.StatusBadRequest, ValidationResponse{
		Message: "validation failed",
		Errors:  errs,
	})
}
