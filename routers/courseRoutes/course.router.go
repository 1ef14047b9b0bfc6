package courseRoutes

import (
	controllers "learnhub/controllers/course"
	"learnhub/middleware"
	"learnhub/models"
	validators "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public catalog and reader routes. The
// catalog list is fully public; the detail view runs behind the gate so a
// valid token personalizes the response while no token still passes.
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/api/courses")

	courseGroup.Get("/", validators.CourseList(), controllers.ListCourses)
	courseGroup.Get("/:id", middleware.AuthGate, validators.CourseID(), controllers.GetCourseDetails)
	courseGroup.Get("/:id/content", middleware.AuthGate, middleware.RequireAuth, validators.CourseID(), controllers.GetCourseContent)
	courseGroup.Get("/:id/quizzes", middleware.AuthGate, middleware.RequireAuth, validators.CourseID(), controllers.GetQuizzes)

	// Whole-course writes by the owning instructor
	courseGroup.Put("/:id/content",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleInstructor),
		validators.CourseID(), validators.SaveAllContent(), controllers.SaveAllContent)
	courseGroup.Put("/:id/quizzes",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleInstructor),
		validators.CourseID(), validators.SaveAllQuizzes(), controllers.SaveAllQuizzes)
}

// SetupInstructorRoutes sets up course authoring, all restricted to the
// instructor role.
func SetupInstructorRoutes(app *fiber.App) {
	instructorGroup := app.Group("/api/instructor/courses",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleInstructor))

	// Course CRUD
	instructorGroup.Post("/", validators.CreateCourse(), controllers.CreateCourse)
	instructorGroup.Get("/", controllers.InstructorCourses)
	instructorGroup.Put("/:id", validators.CourseID(), validators.UpdateCourse(), controllers.UpdateCourse)
	instructorGroup.Delete("/:id", validators.CourseID(), controllers.DeleteCourse)
	instructorGroup.Post("/:id/publish", validators.CourseID(), controllers.PublishCourse)
	instructorGroup.Post("/:id/thumbnail", validators.CourseID(), controllers.UploadThumbnail)

	// Draft session lifecycle
	instructorGroup.Post("/:id/draft", validators.CourseID(), controllers.OpenDraft)
	instructorGroup.Get("/:id/draft", validators.CourseID(), controllers.GetDraft)
	instructorGroup.Delete("/:id/draft", validators.CourseID(), controllers.CloseDraft)

	// Draft page operations
	instructorGroup.Post("/:id/draft/pages", validators.CourseID(), controllers.DraftAddPage)
	instructorGroup.Put("/:id/draft/pages", validators.CourseID(), validators.SavePage(), controllers.DraftSavePage)
	instructorGroup.Delete("/:id/draft/pages/:page", validators.CourseID(), validators.PageNumber(), controllers.DraftDeletePage)
	instructorGroup.Post("/:id/draft/pages/save", validators.CourseID(), controllers.SaveDraftContent)

	// Draft quiz operations
	instructorGroup.Post("/:id/draft/quizzes", validators.CourseID(), validators.AddQuiz(), controllers.DraftAddQuiz)
	instructorGroup.Delete("/:id/draft/quizzes/:quiz_id", validators.CourseID(), validators.QuizID(), controllers.DraftDeleteQuiz)
	instructorGroup.Put("/:id/draft/quizzes/:quiz_id/question", validators.CourseID(), validators.QuizID(), validators.SaveQuestion(), controllers.DraftSaveQuestion)
	instructorGroup.Delete("/:id/draft/quizzes/:quiz_id/questions/:number", validators.CourseID(), validators.QuizID(), controllers.DraftDeleteQuestion)
	instructorGroup.Post("/:id/draft/quizzes/save", validators.CourseID(), controllers.SaveDraftQuizzes)
}
