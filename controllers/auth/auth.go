package authController

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"learnhub/config"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"
	authValidator "learnhub/validators/auth"
)

// payloadKey returns the response field name carrying the profile, per the
// wire contract: students get "student", instructors get "instructor".
func payloadKey(role string) string {
	if role == models.RoleInstructor {
		return "instructor"
	}
	return "student"
}

func register(c *fiber.Ctx, role string) error {
	reqData, ok := c.Locals("validatedRegister").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.ErrorResponse(c, fiber.StatusConflict, middleware.CodeEmailTaken, "Email is already registered!")
	}

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to process your request!")
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Role:     role,
		Password: string(hashedPassword),
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Error saving user to database: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to register user!")
	}

	utils.SendWelcomeEmail(newUser.Email, newUser.Name)

	token, err := middleware.GenerateJWT(newUser.ID, newUser.Name, newUser.Role, newUser.Email)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to generate token!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Registered successfully.", fiber.Map{
		"token":           token,
		payloadKey(role): newUser,
	})
}

// RegisterStudent handles POST /api/students/register
func RegisterStudent(c *fiber.Ctx) error {
	return register(c, models.RoleStudent)
}

// RegisterInstructor handles POST /api/instructors/register
func RegisterInstructor(c *fiber.Ctx) error {
	return register(c, models.RoleInstructor)
}

func login(c *fiber.Ctx, role string) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeBadCredentials, "Invalid credentials!")
	}

	// Student and instructor logins are separate doors; a role mismatch is
	// indistinguishable from a bad password on purpose.
	if user.Role != role {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeBadCredentials, "Invalid credentials!")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeBadCredentials, "Invalid credentials!")
	}

	user.LastLogin = time.Now()
	database.Database.Db.Save(&user)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to generate token!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"token":           token,
		payloadKey(role): user,
	})
}

// LoginStudent handles POST /api/students/login
func LoginStudent(c *fiber.Ctx) error {
	return login(c, models.RoleStudent)
}

// LoginInstructor handles POST /api/instructors/login
func LoginInstructor(c *fiber.Ctx) error {
	return login(c, models.RoleInstructor)
}

// Session resolves the active role into navigation and personalization data
// for shared UI. If the profile row cannot be loaded the response degrades
// to the identity baked into the token; personalization never blocks
// navigation.
func Session(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "Authentication required")
	}

	role, _ := c.Locals("role").(string)
	name, _ := c.Locals("name").(string)

	var dashboard string
	var capabilities []string
	switch role {
	case models.RoleInstructor:
		dashboard = "/instructor/dashboard"
		capabilities = []string{"dashboard", "authoring"}
	case models.RoleAdmin:
		dashboard = "/admin"
		capabilities = []string{"back-office"}
	default:
		dashboard = "/profile"
		capabilities = []string{"edit-profile", "my-courses"}
	}

	avatar := ""
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		log.Printf("Session profile fetch failed for user %d: %v", userID, err)
	} else {
		name = user.Name
		avatar = user.AvatarURL
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session resolved.", fiber.Map{
		"role":         role,
		"name":         name,
		"avatar_url":   avatar,
		"dashboard":    dashboard,
		"capabilities": capabilities,
	})
}

// ForgotPassword issues a single-use reset token. The response is the same
// whether or not the email exists.
func ForgotPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedForgotPassword").(*authValidator.ForgotPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err == nil {
		reset := models.PasswordReset{
			UserID:    user.ID,
			Token:     uuid.NewString(),
			ExpiresAt: time.Now().Add(15 * time.Minute),
		}
		if err := db.Create(&reset).Error; err != nil {
			log.Printf("Error creating password reset: %v", err)
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to process your request!")
		}
		utils.SendPasswordResetEmail(user.Email, user.Name, reset.Token)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "If the email is registered, a reset link has been sent.", nil)
}

// ResetPassword consumes a reset token and sets a new password
func ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetPassword").(*authValidator.ResetPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var reset models.PasswordReset
	if err := db.Where("token = ? AND used = ?", reqData.Token, false).First(&reset).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidToken, "Invalid or expired reset token!")
	}
	if time.Now().After(reset.ExpiresAt) {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidToken, "Invalid or expired reset token!")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to process your request!")
	}

	tx := db.Begin()
	if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).Update("password", string(hashedPassword)).Error; err != nil {
		tx.Rollback()
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to reset password!")
	}
	if err := tx.Model(&models.PasswordReset{}).Where("id = ?", reset.ID).Update("used", true).Error; err != nil {
		tx.Rollback()
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to reset password!")
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password has been reset.", nil)
}
