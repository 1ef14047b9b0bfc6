package enrollmentRoutes

import (
	controllers "learnhub/controllers/course"
	"learnhub/middleware"
	"learnhub/models"
	courseValidators "learnhub/validators/course"
	validators "learnhub/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

// SetupEnrollmentRoutes sets up checkout, progress and quiz submission,
// all restricted to the student role.
func SetupEnrollmentRoutes(app *fiber.App) {
	enrollmentGroup := app.Group("/api/enrollments",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleStudent))

	enrollmentGroup.Post("/", validators.Checkout(), controllers.Checkout)
	enrollmentGroup.Get("/", validators.EnrollmentList(), controllers.GetEnrollments)
	enrollmentGroup.Put("/progress", validators.UpdateProgress(), controllers.UpdateProgress)

	quizGroup := app.Group("/api/courses/:id/quizzes/:quiz_id",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleStudent))

	quizGroup.Post("/submit", courseValidators.CourseID(), courseValidators.QuizID(), courseValidators.SubmitQuiz(), controllers.SubmitQuiz)
}
