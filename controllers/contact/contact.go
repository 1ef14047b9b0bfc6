package contactController

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"
	contactValidator "learnhub/validators/contact"
)

// SubmitContact handles POST /api/contact. Public: mounted without the
// auth gate.
func SubmitContact(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedContact").(*contactValidator.ContactRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	message := models.ContactMessage{
		Name:    reqData.Name,
		Email:   reqData.Email,
		Subject: reqData.Subject,
		Message: reqData.Message,
		Status:  models.ContactStatusNew,
	}

	if err := database.Database.Db.Create(&message).Error; err != nil {
		log.Printf("Error saving contact message: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to submit message!")
	}

	utils.SendContactNotification(reqData.Name, reqData.Email, reqData.Subject, reqData.Message)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Thanks for reaching out. We will get back to you shortly!", fiber.Map{
		"reference": message.ID,
	})
}
