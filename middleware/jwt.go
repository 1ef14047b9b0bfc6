package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"learnhub/config"
)

// Structured error codes returned to the client instead of free-form
// message matching.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeRoleForbidden    = "ROLE_FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeEmailTaken       = "EMAIL_TAKEN"
	CodeBadCredentials   = "BAD_CREDENTIALS"
	CodeAlreadyEnrolled  = "ALREADY_ENROLLED"
	CodeNotEnrolled      = "NOT_ENROLLED"
	CodeDraftNotFound    = "DRAFT_NOT_FOUND"
	CodePaymentFailed    = "PAYMENT_FAILED"
	CodeServerError      = "SERVER_ERROR"
)

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, name, role, email string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

// AuthGate validates a bearer token when one is present and attaches the
// decoded identity to the request context. Requests without an Authorization
// header pass through anonymously; a present but invalid token short-circuits
// with 403 before any business logic runs. Fully public routes are mounted
// without this middleware so a stale token can never break them.
func AuthGate(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Next()
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ErrorResponse(c, fiber.StatusForbidden, CodeInvalidToken, "Invalid Authorization header format")
	}

	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return ErrorResponse(c, fiber.StatusForbidden, CodeInvalidToken, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return ErrorResponse(c, fiber.StatusForbidden, CodeInvalidToken, "Invalid token payload")
	}

	// JWT numbers decode as float64
	userID := claims["userId"].(float64)
	c.Locals("userId", uint(userID))

	if role, ok := claims["role"].(string); ok {
		c.Locals("role", role)
	}
	if name, ok := claims["name"].(string); ok {
		c.Locals("name", name)
	}
	if email, ok := claims["email"].(string); ok {
		c.Locals("email", email)
	}

	return c.Next()
}

// RequireAuth rejects anonymous requests. Must be mounted after AuthGate.
func RequireAuth(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, CodeUnauthorized, "Authentication required")
	}
	return c.Next()
}

// RequireRole returns a middleware that rejects sessions whose role is not in
// the allowed set. Must be mounted after AuthGate.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return ErrorResponse(c, fiber.StatusUnauthorized, CodeUnauthorized, "Authentication required")
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return ErrorResponse(c, fiber.StatusForbidden, CodeRoleForbidden, "You do not have permission to access this resource!")
	}
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// ErrorResponse returns a failed JSON envelope carrying a structured error
// code the client can match on.
func ErrorResponse(c *fiber.Ctx, statusCode int, code, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  false,
		"code":    code,
		"message": message,
		"data":    nil,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"status":  false,
		"code":    CodeValidationFailed,
		"message": "Validation failed!",
		"data":    errors,
	})
}
