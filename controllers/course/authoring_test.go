package controllers

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"learnhub/database"
	"learnhub/draft"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	courseValidator "learnhub/validators/course"
	enrollmentValidator "learnhub/validators/enrollment"
)

func authoringApp(t *testing.T) *fiber.App {
	t.Helper()
	setupTestDb(t)
	draft.Sessions = draft.NewManager()

	app := fiber.New()

	instructorGroup := app.Group("/api/instructor/courses",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleInstructor))
	instructorGroup.Post("/", courseValidator.CreateCourse(), CreateCourse)
	instructorGroup.Put("/:id", courseValidator.CourseID(), courseValidator.UpdateCourse(), UpdateCourse)
	instructorGroup.Post("/:id/publish", courseValidator.CourseID(), PublishCourse)
	instructorGroup.Post("/:id/draft", courseValidator.CourseID(), OpenDraft)
	instructorGroup.Get("/:id/draft", courseValidator.CourseID(), GetDraft)
	instructorGroup.Delete("/:id/draft", courseValidator.CourseID(), CloseDraft)
	instructorGroup.Post("/:id/draft/pages", courseValidator.CourseID(), DraftAddPage)
	instructorGroup.Put("/:id/draft/pages", courseValidator.CourseID(), courseValidator.SavePage(), DraftSavePage)
	instructorGroup.Delete("/:id/draft/pages/:page", courseValidator.CourseID(), courseValidator.PageNumber(), DraftDeletePage)
	instructorGroup.Post("/:id/draft/pages/save", courseValidator.CourseID(), SaveDraftContent)
	instructorGroup.Post("/:id/draft/quizzes", courseValidator.CourseID(), courseValidator.AddQuiz(), DraftAddQuiz)
	instructorGroup.Put("/:id/draft/quizzes/:quiz_id/question", courseValidator.CourseID(), courseValidator.QuizID(), courseValidator.SaveQuestion(), DraftSaveQuestion)
	instructorGroup.Post("/:id/draft/quizzes/save", courseValidator.CourseID(), SaveDraftQuizzes)

	app.Get("/api/courses/:id/content", middleware.AuthGate, middleware.RequireAuth, courseValidator.CourseID(), GetCourseContent)
	app.Put("/api/courses/:id/content",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleInstructor),
		courseValidator.CourseID(), courseValidator.SaveAllContent(), SaveAllContent)
	app.Put("/api/courses/:id/quizzes",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleInstructor),
		courseValidator.CourseID(), courseValidator.SaveAllQuizzes(), SaveAllQuizzes)
	app.Get("/api/courses/:id/quizzes", middleware.AuthGate, middleware.RequireAuth, courseValidator.CourseID(), GetQuizzes)
	app.Post("/api/courses/:id/quizzes/:quiz_id/submit",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleStudent),
		courseValidator.CourseID(), courseValidator.QuizID(), courseValidator.SubmitQuiz(), SubmitQuiz)
	app.Put("/api/enrollments/progress",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleStudent),
		enrollmentValidator.UpdateProgress(), UpdateProgress)

	return app
}

func TestDraftLifecycle(t *testing.T) {
	app := authoringApp(t)

	instructor, token := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	course := seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusDraft, 0)
	base := fmt.Sprintf("/api/instructor/courses/%d/draft", course.ID)

	// No draft yet
	body, status := doJSON(app, "GET", base, nil, token)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, middleware.CodeDraftNotFound, body["code"])

	// Opening seeds a single default page
	body, status = doJSON(app, "POST", base, nil, token)
	assert.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["activePage"])
	assert.Len(t, data["pages"].([]interface{}), 1)

	// Add a page, fill it in, flush to the database
	body, status = doJSON(app, "POST", base+"/pages", nil, token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), body["data"].(map[string]interface{})["page_number"])

	_, status = doJSON(app, "PUT", base+"/pages", map[string]interface{}{
		"page_number": 2,
		"title":       "Variables",
		"description": "Declaring and using variables",
	}, token)
	assert.Equal(t, fiber.StatusOK, status)

	_, status = doJSON(app, "POST", base+"/pages/save", nil, token)
	assert.Equal(t, fiber.StatusOK, status)

	var pages int64
	database.Database.Db.Model(&courseModels.ContentPage{}).Where("course_id = ?", course.ID).Count(&pages)
	assert.Equal(t, int64(2), pages)

	// Closing discards the session
	_, status = doJSON(app, "DELETE", base, nil, token)
	assert.Equal(t, fiber.StatusOK, status)
	_, status = doJSON(app, "GET", base, nil, token)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDraftPageDeleteKeepsNumbering(t *testing.T) {
	app := authoringApp(t)

	instructor, token := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	course := seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusDraft, 0)
	base := fmt.Sprintf("/api/instructor/courses/%d/draft", course.ID)

	doJSON(app, "POST", base, nil, token)
	doJSON(app, "POST", base+"/pages", nil, token)
	doJSON(app, "POST", base+"/pages", nil, token)

	body, status := doJSON(app, "DELETE", base+"/pages/3", nil, token)
	assert.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["activePage"])

	// The freed number is not reused
	body, _ = doJSON(app, "POST", base+"/pages", nil, token)
	assert.Equal(t, float64(4), body["data"].(map[string]interface{})["page_number"])
}

func TestDraftQuestionValidation(t *testing.T) {
	app := authoringApp(t)

	instructor, token := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	course := seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusDraft, 0)
	base := fmt.Sprintf("/api/instructor/courses/%d/draft", course.ID)

	doJSON(app, "POST", base, nil, token)
	body, _ := doJSON(app, "POST", base+"/quizzes", map[string]interface{}{"name": "Basics"}, token)
	quizID := int(body["data"].(map[string]interface{})["quiz_id"].(float64))
	questionPath := fmt.Sprintf("%s/quizzes/%d/question", base, quizID)

	// Three options is not a question
	body, status := doJSON(app, "PUT", questionPath, map[string]interface{}{
		"number":         1,
		"prompt":         "Pick one",
		"options":        []string{"a", "b", "c"},
		"correct_answer": "a",
	}, token)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, middleware.CodeValidationFailed, body["code"])

	_, status = doJSON(app, "PUT", questionPath, map[string]interface{}{
		"number":         1,
		"prompt":         "Pick one",
		"options":        []string{"a", "b", "c", "d"},
		"correct_answer": "b",
	}, token)
	assert.Equal(t, fiber.StatusOK, status)

	_, status = doJSON(app, "POST", base+"/quizzes/save", nil, token)
	assert.Equal(t, fiber.StatusOK, status)

	var questions int64
	database.Database.Db.Model(&courseModels.QuizQuestion{}).Count(&questions)
	assert.Equal(t, int64(1), questions)
}

func TestSaveAllContentReplacesPages(t *testing.T) {
	app := authoringApp(t)

	instructor, token := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	course := seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusDraft, 3)

	_, status := doJSON(app, "PUT", fmt.Sprintf("/api/courses/%d/content", course.ID), map[string]interface{}{
		"content": []map[string]interface{}{
			{"page_number": 1, "title": "Welcome"},
			{"page_number": 2, "title": "Setup"},
		},
	}, token)
	assert.Equal(t, fiber.StatusOK, status)

	var pages []courseModels.ContentPage
	database.Database.Db.Where("course_id = ?", course.ID).Order("page_number asc").Find(&pages)
	assert.Len(t, pages, 2)
	assert.Equal(t, "Welcome", pages[0].Title)
	assert.Equal(t, "Setup", pages[1].Title)
}

func TestPublishRequiresContent(t *testing.T) {
	app := authoringApp(t)

	instructor, token := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	empty := seedCourse(t, instructor, "Empty Course", 0, courseModels.StatusDraft, 0)
	filled := seedCourse(t, instructor, "Filled Course", 0, courseModels.StatusDraft, 2)

	_, status := doJSON(app, "POST", fmt.Sprintf("/api/instructor/courses/%d/publish", empty.ID), nil, token)
	assert.Equal(t, fiber.StatusBadRequest, status)

	body, status := doJSON(app, "POST", fmt.Sprintf("/api/instructor/courses/%d/publish", filled.ID), nil, token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, courseModels.StatusPublished, body["data"].(map[string]interface{})["status"])
}

func TestRenameCoursePropagatesToEnrollments(t *testing.T) {
	app := authoringApp(t)

	instructor, instructorToken := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	course := seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 4)
	student, studentToken := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	enrollment := courseModels.Enrollment{
		UserID:       student.ID,
		CourseID:     course.ID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		CourseName:   course.Title,
		Status:       courseModels.EnrollmentEnrolled,
	}
	assert.NoError(t, database.Database.Db.Create(&enrollment).Error)

	_, status := doJSON(app, "PUT", fmt.Sprintf("/api/instructor/courses/%d", course.ID), map[string]interface{}{
		"title":       "Go from Zero",
		"description": "About Intro to Go",
		"category":    "Programming",
		"level":       "BEGINNER",
		"price":       0,
	}, instructorToken)
	assert.Equal(t, fiber.StatusOK, status)

	// The enrollment join key follows the rename
	var saved courseModels.Enrollment
	assert.NoError(t, database.Database.Db.First(&saved, enrollment.ID).Error)
	assert.Equal(t, "Go from Zero", saved.CourseName)

	// Progress updates keep working under the new name
	body, status := doJSON(app, "PUT", "/api/enrollments/progress", map[string]interface{}{
		"courseName":    "Go from Zero",
		"currentLesson": 2,
		"totalLessons":  4,
	}, studentToken)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(50), body["data"].(map[string]interface{})["progress"])
}

func TestRenameCourseTitleCollision(t *testing.T) {
	app := authoringApp(t)

	instructor, token := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Taken Title", 0, courseModels.StatusPublished, 2)
	course := seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusDraft, 2)

	_, status := doJSON(app, "PUT", fmt.Sprintf("/api/instructor/courses/%d", course.ID), map[string]interface{}{
		"title":       "Taken Title",
		"description": "About Intro to Go",
		"category":    "Programming",
	}, token)
	assert.Equal(t, fiber.StatusConflict, status)

	// Keeping your own title is not a collision
	_, status = doJSON(app, "PUT", fmt.Sprintf("/api/instructor/courses/%d", course.ID), map[string]interface{}{
		"title":       "Intro to Go",
		"description": "Updated description",
		"category":    "Programming",
	}, token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestGetQuizzesSurfacesStorageErrors(t *testing.T) {
	app := authoringApp(t)

	instructor, token := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	course := seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 2)

	assert.NoError(t, database.Database.Db.Migrator().DropTable(&courseModels.Quiz{}))

	body, status := doJSON(app, "GET", fmt.Sprintf("/api/courses/%d/quizzes", course.ID), nil, token)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, middleware.CodeServerError, body["code"])
}

func TestOwnershipEnforced(t *testing.T) {
	app := authoringApp(t)

	owner, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	_, intruderToken := seedUser(t, "Mallory", "mallory@example.com", models.RoleInstructor)
	course := seedCourse(t, owner, "Intro to Go", 0, courseModels.StatusDraft, 1)

	body, status := doJSON(app, "POST", fmt.Sprintf("/api/instructor/courses/%d/draft", course.ID), nil, intruderToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, middleware.CodeRoleForbidden, body["code"])
}

func TestQuizAnswerKeyHiddenFromStudents(t *testing.T) {
	app := authoringApp(t)

	instructor, instructorToken := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	course := seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 2)
	student, studentToken := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	_, status := doJSON(app, "PUT", fmt.Sprintf("/api/courses/%d/quizzes", course.ID), map[string]interface{}{
		"quizzes": []map[string]interface{}{
			{
				"name": "Basics",
				"questions": []map[string]interface{}{
					{"number": 1, "prompt": "Q1", "options": []string{"a", "b", "c", "d"}, "correct_answer": "a"},
					{"number": 2, "prompt": "Q2", "options": []string{"a", "b", "c", "d"}, "correct_answer": "c"},
				},
			},
		},
	}, instructorToken)
	assert.Equal(t, fiber.StatusOK, status)

	enrollment := courseModels.Enrollment{
		UserID:       student.ID,
		CourseID:     course.ID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		CourseName:   course.Title,
		Status:       courseModels.EnrollmentEnrolled,
	}
	assert.NoError(t, database.Database.Db.Create(&enrollment).Error)

	quizPath := fmt.Sprintf("/api/courses/%d/quizzes", course.ID)

	body, status := doJSON(app, "GET", quizPath, nil, studentToken)
	assert.Equal(t, fiber.StatusOK, status)
	quizzes := body["data"].(map[string]interface{})["quizzes"].([]interface{})
	question := quizzes[0].(map[string]interface{})["questions"].([]interface{})[0].(map[string]interface{})
	assert.Empty(t, question["correct_answer"])

	body, status = doJSON(app, "GET", quizPath, nil, instructorToken)
	assert.Equal(t, fiber.StatusOK, status)
	quizzes = body["data"].(map[string]interface{})["quizzes"].([]interface{})
	question = quizzes[0].(map[string]interface{})["questions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "a", question["correct_answer"])
}

func TestSubmitQuizScoring(t *testing.T) {
	app := authoringApp(t)

	instructor, instructorToken := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	course := seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 2)
	student, studentToken := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	doJSON(app, "PUT", fmt.Sprintf("/api/courses/%d/quizzes", course.ID), map[string]interface{}{
		"quizzes": []map[string]interface{}{
			{
				"name": "Basics",
				"questions": []map[string]interface{}{
					{"number": 1, "prompt": "Q1", "options": []string{"a", "b", "c", "d"}, "correct_answer": "a"},
					{"number": 2, "prompt": "Q2", "options": []string{"a", "b", "c", "d"}, "correct_answer": "c"},
					{"number": 3, "prompt": "Q3", "options": []string{"a", "b", "c", "d"}, "correct_answer": "d"},
				},
			},
		},
	}, instructorToken)

	enrollment := courseModels.Enrollment{
		UserID:       student.ID,
		CourseID:     course.ID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		CourseName:   course.Title,
		Status:       courseModels.EnrollmentEnrolled,
	}
	assert.NoError(t, database.Database.Db.Create(&enrollment).Error)

	submitPath := fmt.Sprintf("/api/courses/%d/quizzes/1/submit", course.ID)

	body, status := doJSON(app, "POST", submitPath, map[string]interface{}{
		"answers": map[string]string{"1": "a", "2": "b", "3": "d"},
	}, studentToken)
	assert.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["score"])
	assert.Equal(t, float64(3), data["max_score"])

	// A second submission bumps the attempt counter
	body, status = doJSON(app, "POST", submitPath, map[string]interface{}{
		"answers": map[string]string{"1": "a", "2": "c", "3": "d"},
	}, studentToken)
	assert.Equal(t, fiber.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["score"])
	attempt := data["attempt"].(map[string]interface{})
	assert.Equal(t, float64(2), attempt["attempt_number"])
}
