package adminRoutes

import (
	controllers "learnhub/controllers/admin"
	"learnhub/middleware"
	"learnhub/models"
	validators "learnhub/validators/admin"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes sets up the back-office routes, all restricted to the
// admin role.
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/api/admin",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleAdmin))

	adminGroup.Get("/dashboard", controllers.DashboardStats)

	adminGroup.Get("/users", validators.List(), controllers.UserList)
	adminGroup.Delete("/users/:id", validators.RecordID(), controllers.DeleteUser)

	adminGroup.Get("/courses", validators.List(), controllers.CourseList)
	adminGroup.Delete("/courses/:id", validators.RecordID(), controllers.DeleteCourse)

	adminGroup.Get("/enrollments", validators.List(), controllers.EnrollmentList)
	adminGroup.Delete("/enrollments/:id", validators.RecordID(), controllers.DeleteEnrollment)
	adminGroup.Get("/enrollments/export", controllers.ExportEnrollments)

	adminGroup.Get("/messages", validators.List(), controllers.ContactList)
}
