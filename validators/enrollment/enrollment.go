package enrollmentValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"learnhub/middleware"
)

type CheckoutRequest struct {
	CourseName string `json:"courseName"`
}

// Checkout validates the enrollment purchase body
func Checkout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CheckoutRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.CourseName) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"courseName": "Course name is required!"})
		}

		c.Locals("validatedCheckout", reqData)
		return c.Next()
	}
}

type ProgressRequest struct {
	CourseName    string `json:"courseName"`
	CurrentLesson int    `json:"currentLesson"`
	TotalLessons  int    `json:"totalLessons"`
}

// UpdateProgress validates a lesson-navigation progress update
func UpdateProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProgressRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.CourseName) == "" {
			errors["courseName"] = "Course name is required!"
		}
		if reqData.CurrentLesson < 1 {
			errors["currentLesson"] = "Current lesson must be 1 or greater!"
		}
		if reqData.TotalLessons < 0 {
			errors["totalLessons"] = "Total lessons cannot be negative!"
		}
		if reqData.TotalLessons > 0 && reqData.CurrentLesson > reqData.TotalLessons {
			errors["currentLesson"] = "Current lesson cannot exceed total lessons!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

type ListQuery struct {
	Page  *int `query:"page"`
	Limit *int `query:"limit"`
}

// EnrollmentList validates pagination for the enrollment listing
func EnrollmentList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEnrollmentList", reqData)
		return c.Next()
	}
}
