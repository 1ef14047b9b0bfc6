package courseValidator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"learnhub/draft"
	"learnhub/middleware"
)

type SaveContentRequest struct {
	Content []draft.Page `json:"content"`
}

// SaveAllContent validates the full-content write body: at least one page,
// 1-based unique page numbers, titles present.
func SaveAllContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SaveContentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.Content) == 0 {
			errors["content"] = "At least one content page is required!"
		}

		seen := make(map[int]bool)
		for i, page := range reqData.Content {
			field := fmt.Sprintf("content[%d]", i)
			if page.Number < 1 {
				errors[field] = "Page number must be 1 or greater!"
			} else if seen[page.Number] {
				errors[field] = "Duplicate page number!"
			}
			seen[page.Number] = true
			if strings.TrimSpace(page.Title) == "" {
				errors[field+".title"] = "Page title is required!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedContent", reqData)
		return c.Next()
	}
}

// SavePage validates a single page buffer commit
func SavePage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(draft.Page)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Number < 1 {
			errors["page_number"] = "Page number must be 1 or greater!"
		}
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Page title is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPage", reqData)
		return c.Next()
	}
}

// PageNumber validates the :page route param
func PageNumber() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pageStr := strings.TrimSpace(c.Params("page"))
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid page number!", nil)
		}

		c.Locals("pageNumber", page)
		return c.Next()
	}
}
