package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"learnhub/database"
	"learnhub/draft"
	"learnhub/middleware"
	courseModels "learnhub/models/course"
	courseValidator "learnhub/validators/course"
)

func loadQuizzes(courseID uint) ([]draft.Quiz, error) {
	var records []courseModels.Quiz
	if err := database.Database.Db.Where("course_id = ?", courseID).Order("position asc").Find(&records).Error; err != nil {
		return nil, err
	}

	quizzes := make([]draft.Quiz, 0, len(records))
	for _, rec := range records {
		var questionRecords []courseModels.QuizQuestion
		if err := database.Database.Db.Where("quiz_id = ?", rec.ID).Order("number asc").Find(&questionRecords).Error; err != nil {
			return nil, err
		}

		questions := make([]draft.Question, len(questionRecords))
		for i, qr := range questionRecords {
			q := draft.Question{
				Number:        qr.Number,
				Prompt:        qr.Prompt,
				CorrectAnswer: qr.CorrectAnswer,
			}
			json.Unmarshal(qr.Options, &q.Options)
			questions[i] = q
		}
		quizzes = append(quizzes, draft.Quiz{ID: int(rec.Position), Name: rec.Name, Questions: questions})
	}
	return quizzes, nil
}

// persistQuizzes replaces a course's quiz bank in one transaction
func persistQuizzes(courseID uint, quizzes []draft.Quiz) error {
	return database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var old []courseModels.Quiz
		if err := tx.Where("course_id = ?", courseID).Find(&old).Error; err != nil {
			return err
		}
		for _, rec := range old {
			if err := tx.Unscoped().Where("quiz_id = ?", rec.ID).Delete(&courseModels.QuizQuestion{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&courseModels.Quiz{}).Error; err != nil {
			return err
		}

		for position, quiz := range quizzes {
			rec := courseModels.Quiz{CourseID: courseID, Name: quiz.Name, Position: position + 1}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			for _, q := range quiz.Questions {
				options, _ := json.Marshal(q.Options)
				qr := courseModels.QuizQuestion{
					QuizID:        rec.ID,
					Number:        q.Number,
					Prompt:        q.Prompt,
					Options:       datatypes.JSON(options),
					CorrectAnswer: q.CorrectAnswer,
				}
				if err := tx.Create(&qr).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// GetQuizzes returns a course's quiz bank. Students see questions with the
// correct answers stripped; the owning instructor sees everything.
func GetQuizzes(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Course not found!")
	}

	if !canReadCourse(c, &course) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, middleware.CodeNotEnrolled, "Please enroll in this course first!")
	}

	quizzes, loadErr := loadQuizzes(course.ID)
	if loadErr != nil {
		log.Printf("Error fetching quizzes for course %d: %v", course.ID, loadErr)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch quizzes!")
	}

	userID, _ := c.Locals("userId").(uint)
	if course.InstructorID != userID {
		// Don't hand students the answer key
		for i := range quizzes {
			for j := range quizzes[i].Questions {
				quizzes[i].Questions[j].CorrectAnswer = ""
			}
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully!", fiber.Map{
		"quizzes": quizzes,
	})
}

// SaveAllQuizzes handles PUT /api/courses/:id/quizzes: one write of the full
// quiz bank in question-number order. Validation has already rejected any
// malformed question, so a partial commit is impossible.
func SaveAllQuizzes(c *fiber.Ctx) error {
	course, err := ownedCourse(c)
	if course == nil {
		return err
	}

	reqData, ok := c.Locals("validatedQuizzes").(*courseValidator.SaveQuizzesRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := persistQuizzes(course.ID, reqData.Quizzes); err != nil {
		log.Printf("Error saving quizzes for course %d: %v", course.ID, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to save quizzes!")
	}

	saved, loadErr := loadQuizzes(course.ID)
	if loadErr != nil {
		log.Printf("Error fetching saved quizzes for course %d: %v", course.ID, loadErr)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch saved quizzes!")
	}

	if _, open := draft.Sessions.Get(course.InstructorID, course.ID); open {
		pages, pErr := loadPages(course.ID)
		if pErr == nil {
			draft.Sessions.Put(course.InstructorID, course.ID, draft.NewSession(pages, saved))
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes saved successfully!", fiber.Map{
		"quizzes": saved,
	})
}

// DraftAddQuiz creates an empty quiz in the open draft
func DraftAddQuiz(c *fiber.Ctx) error {
	_, session, err := currentDraft(c)
	if session == nil {
		return err
	}

	reqData, ok := c.Locals("validatedQuiz").(*courseValidator.AddQuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	id := session.AddQuiz(reqData.Name)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz added.", fiber.Map{
		"quiz_id": id,
	})
}

// DraftDeleteQuiz removes a quiz and its questions from the open draft
func DraftDeleteQuiz(c *fiber.Ctx) error {
	_, session, err := currentDraft(c)
	if session == nil {
		return err
	}

	quizID := c.Locals("quizID").(int)
	if err := session.DeleteQuiz(quizID); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Quiz not found in draft!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted.", fiber.Map{
		"quizzes": session.Quizzes(),
	})
}

// DraftSaveQuestion commits one question buffer into a draft quiz. The
// question invariant (4 non-empty options, correct answer among them) is
// enforced before the mapping is touched; a rejected question changes
// nothing and no network write happens.
func DraftSaveQuestion(c *fiber.Ctx) error {
	_, session, err := currentDraft(c)
	if session == nil {
		return err
	}

	quizID := c.Locals("quizID").(int)
	reqData, ok := c.Locals("validatedQuestion").(*draft.Question)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := session.SaveQuestion(quizID, *reqData); err != nil {
		if errors.Is(err, draft.ErrQuizNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Quiz not found in draft!")
		}
		return middleware.ValidationErrorResponse(c, map[string]string{"question": err.Error()})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question saved.", fiber.Map{
		"quizzes": session.Quizzes(),
	})
}

// DraftDeleteQuestion removes one question from a draft quiz
func DraftDeleteQuestion(c *fiber.Ctx) error {
	_, session, err := currentDraft(c)
	if session == nil {
		return err
	}

	quizID := c.Locals("quizID").(int)
	number, convErr := strconv.Atoi(c.Params("number"))
	if convErr != nil || number < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid question number!", nil)
	}

	if err := session.DeleteQuestion(quizID, number); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Question not found in draft!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted.", fiber.Map{
		"quizzes": session.Quizzes(),
	})
}

// SaveDraftQuizzes flushes the draft's quiz mapping to the database as one
// ordered write, leaving draft state untouched on failure.
func SaveDraftQuizzes(c *fiber.Ctx) error {
	course, session, err := currentDraft(c)
	if session == nil {
		return err
	}

	quizzes := session.Quizzes()
	if err := persistQuizzes(course.ID, quizzes); err != nil {
		log.Printf("Error flushing quizzes for course %d: %v", course.ID, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to save quizzes!")
	}

	saved, loadErr := loadQuizzes(course.ID)
	if loadErr != nil {
		log.Printf("Error fetching saved quizzes for course %d: %v", course.ID, loadErr)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch saved quizzes!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes saved successfully!", fiber.Map{
		"quizzes": saved,
	})
}

// SubmitQuiz evaluates an enrolled student's answers against a persisted
// quiz and records the scored attempt.
func SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "Authentication required")
	}
	email, _ := c.Locals("email").(string)

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, courseModels.StatusPublished).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Course not found!")
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("student_email = ? AND course_name = ? AND is_deleted = ?", email, course.Title, false).First(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, middleware.CodeNotEnrolled, "Please enroll in this course first!")
	}

	quizID := c.Locals("quizID").(int)
	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("course_id = ? AND position = ?", course.ID, quizID).First(&quiz).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Quiz not found!")
	}

	var questions []courseModels.QuizQuestion
	database.Database.Db.Where("quiz_id = ?", quiz.ID).Order("number asc").Find(&questions)
	if len(questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz has no questions!", nil)
	}

	reqData, ok := c.Locals("validatedSubmission").(*courseValidator.SubmitQuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	score := 0
	for _, q := range questions {
		if answer, ok := reqData.Answers[strconv.Itoa(q.Number)]; ok && answer == q.CorrectAnswer {
			score++
		}
	}

	var attemptCount int64
	database.Database.Db.Model(&courseModels.QuizAttempt{}).Where("user_id = ? AND quiz_id = ?", userID, quiz.ID).Count(&attemptCount)

	answersJSON, _ := json.Marshal(reqData.Answers)
	attempt := courseModels.QuizAttempt{
		UserID:        userID,
		QuizID:        quiz.ID,
		Answers:       datatypes.JSON(answersJSON),
		Score:         score,
		MaxScore:      len(questions),
		AttemptNumber: int(attemptCount) + 1,
	}

	if err := database.Database.Db.Create(&attempt).Error; err != nil {
		log.Printf("Error saving quiz attempt: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to submit answers!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answers submitted!", fiber.Map{
		"attempt":   attempt,
		"score":     score,
		"max_score": len(questions),
	})
}
