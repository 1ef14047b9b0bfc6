package contactRoutes

import (
	controllers "learnhub/controllers/contact"
	validators "learnhub/validators/contact"

	"github.com/gofiber/fiber/v2"
)

// SetupContactRoutes sets up the public contact form route
func SetupContactRoutes(app *fiber.App) {
	app.Post("/api/contact", validators.ContactForm(), controllers.SubmitContact)
}
