package courseValidator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"learnhub/draft"
	"learnhub/middleware"
)

type SaveQuizzesRequest struct {
	Quizzes []draft.Quiz `json:"quizzes"`
}

// SaveAllQuizzes validates the full quiz-bank write body. Every question
// must satisfy the question invariant before anything is persisted.
func SaveAllQuizzes() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SaveQuizzesRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		for i, quiz := range reqData.Quizzes {
			if strings.TrimSpace(quiz.Name) == "" {
				errors[fmt.Sprintf("quizzes[%d].name", i)] = "Quiz name is required!"
			}
			for j, q := range quiz.Questions {
				if err := draft.ValidateQuestion(q); err != nil {
					errors[fmt.Sprintf("quizzes[%d].questions[%d]", i, j)] = err.Error()
				}
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizzes", reqData)
		return c.Next()
	}
}

type AddQuizRequest struct {
	Name string `json:"name"`
}

func AddQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AddQuizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Name) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"name": "Quiz name is required!"})
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

// SaveQuestion parses a question buffer commit. The question invariant
// itself is enforced by the draft session so a rejected question never
// reaches the mapping.
func SaveQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(draft.Question)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

type SubmitQuizRequest struct {
	Answers map[string]string `json:"answers"` // question number -> chosen option
}

func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitQuizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if len(reqData.Answers) == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"answers": "Please answer at least one question!"})
		}

		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

// QuizID validates the :quiz_id route param
func QuizID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		quizIDStr := strings.TrimSpace(c.Params("quiz_id"))
		quizID, err := strconv.Atoi(quizIDStr)
		if err != nil || quizID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz ID!", nil)
		}

		c.Locals("quizID", quizID)
		return c.Next()
	}
}
