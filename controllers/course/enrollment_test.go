package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"learnhub/config"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	courseValidator "learnhub/validators/course"
	enrollmentValidator "learnhub/validators/enrollment"
)

func setupTestDb(t *testing.T) {
	t.Helper()
	config.LoadConfig()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	assert.NoError(t, err)
	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}
}

func enrollmentApp(t *testing.T) *fiber.App {
	t.Helper()
	setupTestDb(t)

	app := fiber.New()
	app.Post("/api/enrollments",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleStudent),
		enrollmentValidator.Checkout(), Checkout)
	app.Get("/api/enrollments",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleStudent),
		enrollmentValidator.EnrollmentList(), GetEnrollments)
	app.Put("/api/enrollments/progress",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleStudent),
		enrollmentValidator.UpdateProgress(), UpdateProgress)
	app.Get("/api/courses", courseValidator.CourseList(), ListCourses)
	app.Get("/api/courses/:id", middleware.AuthGate, courseValidator.CourseID(), GetCourseDetails)
	return app
}

func seedUser(t *testing.T, name, email, role string) (models.User, string) {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	user := models.User{Name: name, Email: email, Role: role, Password: string(hash)}
	assert.NoError(t, database.Database.Db.Create(&user).Error)
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	assert.NoError(t, err)
	return user, token
}

func seedCourse(t *testing.T, instructor models.User, title string, price float64, status string, lessons int) courseModels.Course {
	t.Helper()
	course := courseModels.Course{
		InstructorID:   instructor.ID,
		InstructorName: instructor.Name,
		Title:          title,
		Description:    "About " + title,
		Category:       "Programming",
		Level:          "BEGINNER",
		Price:          price,
		Status:         status,
	}
	assert.NoError(t, database.Database.Db.Create(&course).Error)
	for i := 1; i <= lessons; i++ {
		page := courseModels.ContentPage{
			CourseID:   course.ID,
			PageNumber: i,
			Title:      fmt.Sprintf("Lesson %d", i),
		}
		assert.NoError(t, database.Database.Db.Create(&page).Error)
	}
	return course
}

func doJSON(app *fiber.App, method, path string, payload map[string]interface{}, token string) (map[string]interface{}, int) {
	var req *http.Request
	if payload != nil {
		jsonData, _ := json.Marshal(payload)
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, _ := app.Test(req)
	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	return body, resp.StatusCode
}

func TestCheckoutFreeCourse(t *testing.T) {
	app := enrollmentApp(t)

	instructor, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 5)
	_, token := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	body, status := doJSON(app, "POST", "/api/enrollments", map[string]interface{}{
		"courseName": "Intro to Go",
	}, token)

	assert.Equal(t, fiber.StatusCreated, status)
	data := body["data"].(map[string]interface{})
	enrollment := data["enrollment"].(map[string]interface{})
	assert.Equal(t, "Intro to Go", enrollment["courseName"])
	assert.Equal(t, "ada@example.com", enrollment["studentEmail"])
	assert.Equal(t, courseModels.EnrollmentEnrolled, enrollment["enrollmentStatus"])
	assert.Equal(t, float64(0), enrollment["progress"])
}

func TestCheckoutDuplicate(t *testing.T) {
	app := enrollmentApp(t)

	instructor, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 5)
	_, token := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	payload := map[string]interface{}{"courseName": "Intro to Go"}
	_, status := doJSON(app, "POST", "/api/enrollments", payload, token)
	assert.Equal(t, fiber.StatusCreated, status)

	body, status := doJSON(app, "POST", "/api/enrollments", payload, token)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, middleware.CodeAlreadyEnrolled, body["code"])
}

func TestCheckoutUnpublishedCourse(t *testing.T) {
	app := enrollmentApp(t)

	instructor, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Hidden Draft", 0, courseModels.StatusDraft, 3)
	_, token := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	body, status := doJSON(app, "POST", "/api/enrollments", map[string]interface{}{
		"courseName": "Hidden Draft",
	}, token)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, middleware.CodeNotFound, body["code"])
}

func TestCheckoutPaidCourse(t *testing.T) {
	app := enrollmentApp(t)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "succeeded",
			"charge_id": "ch_test_123",
		})
	}))
	defer gateway.Close()
	config.AppConfig.PaymentApiURL = gateway.URL

	instructor, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Advanced Go", 49.99, courseModels.StatusPublished, 8)
	_, token := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	body, status := doJSON(app, "POST", "/api/enrollments", map[string]interface{}{
		"courseName": "Advanced Go",
	}, token)

	assert.Equal(t, fiber.StatusCreated, status)
	data := body["data"].(map[string]interface{})
	order := data["order"].(map[string]interface{})
	assert.Equal(t, models.OrderPaid, order["status"])

	var saved models.Order
	assert.NoError(t, database.Database.Db.First(&saved).Error)
	assert.Equal(t, "ch_test_123", saved.GatewayID)
}

func TestCheckoutPaymentDeclined(t *testing.T) {
	app := enrollmentApp(t)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "declined",
			"message": "insufficient funds",
		})
	}))
	defer gateway.Close()
	config.AppConfig.PaymentApiURL = gateway.URL

	instructor, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Advanced Go", 49.99, courseModels.StatusPublished, 8)
	_, token := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	body, status := doJSON(app, "POST", "/api/enrollments", map[string]interface{}{
		"courseName": "Advanced Go",
	}, token)

	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, middleware.CodePaymentFailed, body["code"])

	// The declined charge leaves an order trail but no enrollment
	var enrollments int64
	database.Database.Db.Model(&courseModels.Enrollment{}).Count(&enrollments)
	assert.Equal(t, int64(0), enrollments)

	var order models.Order
	assert.NoError(t, database.Database.Db.First(&order).Error)
	assert.Equal(t, models.OrderFailed, order.Status)
}

func TestCheckoutRequiresStudentRole(t *testing.T) {
	app := enrollmentApp(t)

	instructor, token := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 5)

	body, status := doJSON(app, "POST", "/api/enrollments", map[string]interface{}{
		"courseName": "Intro to Go",
	}, token)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, middleware.CodeRoleForbidden, body["code"])
}

func TestUpdateProgress(t *testing.T) {
	app := enrollmentApp(t)

	instructor, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 7)
	_, token := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	doJSON(app, "POST", "/api/enrollments", map[string]interface{}{"courseName": "Intro to Go"}, token)

	body, status := doJSON(app, "PUT", "/api/enrollments/progress", map[string]interface{}{
		"courseName":    "Intro to Go",
		"currentLesson": 3,
		"totalLessons":  7,
	}, token)
	assert.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(43), data["progress"])
	assert.Equal(t, courseModels.EnrollmentInProgress, data["enrollmentStatus"])

	// Navigating back never lowers stored progress
	body, status = doJSON(app, "PUT", "/api/enrollments/progress", map[string]interface{}{
		"courseName":    "Intro to Go",
		"currentLesson": 1,
		"totalLessons":  7,
	}, token)
	assert.Equal(t, fiber.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(43), data["progress"])

	// Reaching the last lesson completes the enrollment
	body, status = doJSON(app, "PUT", "/api/enrollments/progress", map[string]interface{}{
		"courseName":    "Intro to Go",
		"currentLesson": 7,
		"totalLessons":  7,
	}, token)
	assert.Equal(t, fiber.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(100), data["progress"])
	assert.Equal(t, courseModels.EnrollmentCompleted, data["enrollmentStatus"])

	var enrollment courseModels.Enrollment
	assert.NoError(t, database.Database.Db.First(&enrollment).Error)
	assert.NotNil(t, enrollment.CompletedAt)
}

func TestUpdateProgressNotEnrolled(t *testing.T) {
	app := enrollmentApp(t)

	instructor, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 5)
	_, token := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	body, status := doJSON(app, "PUT", "/api/enrollments/progress", map[string]interface{}{
		"courseName":    "Intro to Go",
		"currentLesson": 1,
		"totalLessons":  5,
	}, token)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, middleware.CodeNotEnrolled, body["code"])
}

func TestGetEnrollmentsDerivesResumePosition(t *testing.T) {
	app := enrollmentApp(t)

	instructor, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 10)
	_, token := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	doJSON(app, "POST", "/api/enrollments", map[string]interface{}{"courseName": "Intro to Go"}, token)
	doJSON(app, "PUT", "/api/enrollments/progress", map[string]interface{}{
		"courseName":    "Intro to Go",
		"currentLesson": 5,
		"totalLessons":  10,
	}, token)

	body, status := doJSON(app, "GET", "/api/enrollments", nil, token)
	assert.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]interface{})
	enrollments := data["enrollments"].([]interface{})
	assert.Len(t, enrollments, 1)
	first := enrollments[0].(map[string]interface{})
	assert.Equal(t, float64(50), first["progress"])
	assert.Equal(t, float64(10), first["totalLessons"])
	assert.Equal(t, float64(5), first["lessonsDone"])
}

func TestCatalogListsOnlyPublished(t *testing.T) {
	app := enrollmentApp(t)

	instructor, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	seedCourse(t, instructor, "Published One", 0, courseModels.StatusPublished, 3)
	seedCourse(t, instructor, "Secret Draft", 0, courseModels.StatusDraft, 3)

	body, status := doJSON(app, "GET", "/api/courses", nil, "")
	assert.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]interface{})
	courses := data["courses"].([]interface{})
	assert.Len(t, courses, 1)
	assert.Equal(t, "Published One", courses[0].(map[string]interface{})["title"])
}

func TestCourseDetailsPersonalization(t *testing.T) {
	app := enrollmentApp(t)

	instructor, _ := seedUser(t, "Grace Hopper", "grace@example.com", models.RoleInstructor)
	course := seedCourse(t, instructor, "Intro to Go", 0, courseModels.StatusPublished, 4)
	_, token := seedUser(t, "Ada Lovelace", "ada@example.com", models.RoleStudent)

	path := fmt.Sprintf("/api/courses/%d", course.ID)

	// Anonymous: course data, no enrollment
	body, status := doJSON(app, "GET", path, nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["totalLessons"])
	assert.Nil(t, data["enrollment"])

	// Invalid token fails closed before the handler
	_, status = doJSON(app, "GET", path, nil, "garbage-token")
	assert.Equal(t, fiber.StatusForbidden, status)

	// Enrolled student sees their enrollment and resume position
	doJSON(app, "POST", "/api/enrollments", map[string]interface{}{"courseName": "Intro to Go"}, token)
	doJSON(app, "PUT", "/api/enrollments/progress", map[string]interface{}{
		"courseName":    "Intro to Go",
		"currentLesson": 2,
		"totalLessons":  4,
	}, token)

	body, status = doJSON(app, "GET", path, nil, token)
	assert.Equal(t, fiber.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.NotNil(t, data["enrollment"])
	assert.Equal(t, float64(2), data["currentLesson"])
}
