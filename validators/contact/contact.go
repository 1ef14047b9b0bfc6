package contactValidator

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"learnhub/middleware"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactForm validates the public contact submission
func ContactForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ContactRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Name) == "" {
			errors["name"] = "Name is required!"
		}
		if reqData.Email == "" || !emailRe.MatchString(reqData.Email) {
			errors["email"] = "Invalid email!"
		}
		if strings.TrimSpace(reqData.Subject) == "" {
			errors["subject"] = "Subject is required!"
		}
		if len(strings.TrimSpace(reqData.Message)) < 10 {
			errors["message"] = "Message must be at least 10 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedContact", reqData)
		return c.Next()
	}
}
