package http

import (
	"github.com/gofiber/fiber/v2"

	"expense-tracker/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, auth *handlers.AuthHandler, health *handlers.HealthHandler, expenses *handlers.ExpenseHandler, authMW fiber.Handler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", auth.Register)
	a.Post("/login", auth.Login)
	a.Post("/refresh", auth.Refresh)

	// Expense CRUD, owner-scoped; everything behind the JWT middleware.
	e := v1.Group("/expenses", authMW)
	e.Get("/", expenses.List)
	e.Post("/", expenses.Create)
	// Registered before /:id so "summary" is not parsed as an expense id.
	e.Get("/summary", expenses.Summary)
	e.Get("/:id", expenses.Get)
	e.Put("/:id", expenses.Update)
	e.Patch("/:id", expenses.Update)
	e.Delete("/:id", expenses.Delete)
}
