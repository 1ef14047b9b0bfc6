package adminValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"learnhub/middleware"
	"learnhub/models"
)

var validRoles = map[string]bool{
	models.RoleStudent:    true,
	models.RoleInstructor: true,
	models.RoleAdmin:      true,
}

type ListQuery struct {
	Page  *int    `query:"page"`
	Limit *int    `query:"limit"`
	Role  *string `query:"role"`
}

// List validates back-office pagination with an optional role filter
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 200) {
			errors["limit"] = "Limit must be between 1 and 200!"
		}
		if reqData.Role != nil && *reqData.Role != "" && !validRoles[*reqData.Role] {
			errors["role"] = "Unknown role!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAdminList", reqData)
		return c.Next()
	}
}

// RecordID validates the :id route param for delete endpoints
func RecordID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid ID!", nil)
		}

		c.Locals("recordID", id)
		return c.Next()
	}
}
