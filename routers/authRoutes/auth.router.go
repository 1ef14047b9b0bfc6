package authRoutes

import (
	controllers "learnhub/controllers/auth"
	"learnhub/middleware"
	validators "learnhub/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes sets up registration, login and session routes. The two
// register/login pairs are public; the session probe runs behind the gate.
func SetupAuthRoutes(app *fiber.App) {
	studentGroup := app.Group("/api/students")
	studentGroup.Post("/register", validators.Register(), controllers.RegisterStudent)
	studentGroup.Post("/login", validators.Login(), controllers.LoginStudent)

	instructorGroup := app.Group("/api/instructors")
	instructorGroup.Post("/register", validators.Register(), controllers.RegisterInstructor)
	instructorGroup.Post("/login", validators.Login(), controllers.LoginInstructor)

	authGroup := app.Group("/api/auth")
	authGroup.Get("/session", middleware.AuthGate, middleware.RequireAuth, controllers.Session)
	authGroup.Post("/forgot-password", validators.ForgotPassword(), controllers.ForgotPassword)
	authGroup.Post("/reset-password", validators.ResetPassword(), controllers.ResetPassword)
}
