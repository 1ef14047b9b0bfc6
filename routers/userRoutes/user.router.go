package userRoutes

import (
	controllers "learnhub/controllers/user"
	"learnhub/middleware"
	validators "learnhub/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes sets up the profile routes
func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/api/profile", middleware.AuthGate, middleware.RequireAuth)

	userGroup.Get("/", controllers.GetProfile)
	userGroup.Put("/", validators.UpdateProfile(), controllers.UpdateProfile)
	userGroup.Post("/avatar", controllers.UploadAvatar)
}
