package adminController

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"learnhub/config"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	adminValidator "learnhub/validators/admin"
)

func setupAdminApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	config.LoadConfig()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	assert.NoError(t, err)
	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	admin := models.User{Name: "Root", Email: "root@learnhub.io", Role: models.RoleAdmin, Password: "x"}
	assert.NoError(t, db.Create(&admin).Error)
	token, err := middleware.GenerateJWT(admin.ID, admin.Name, admin.Role, admin.Email)
	assert.NoError(t, err)

	app := fiber.New()
	adminGroup := app.Group("/api/admin",
		middleware.AuthGate, middleware.RequireAuth, middleware.RequireRole(models.RoleAdmin))
	adminGroup.Get("/dashboard", DashboardStats)
	adminGroup.Get("/users", adminValidator.List(), UserList)
	adminGroup.Delete("/users/:id", adminValidator.RecordID(), DeleteUser)
	adminGroup.Get("/enrollments", adminValidator.List(), EnrollmentList)
	adminGroup.Delete("/enrollments/:id", adminValidator.RecordID(), DeleteEnrollment)
	adminGroup.Get("/enrollments/export", ExportEnrollments)

	return app, token
}

func adminGet(app *fiber.App, path, token string) (map[string]interface{}, int) {
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ := app.Test(req)
	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	return body, resp.StatusCode
}

func TestAdminRoleRequired(t *testing.T) {
	app, _ := setupAdminApp(t)

	student := models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleStudent, Password: "x"}
	assert.NoError(t, database.Database.Db.Create(&student).Error)
	token, _ := middleware.GenerateJWT(student.ID, student.Name, student.Role, student.Email)

	body, status := adminGet(app, "/api/admin/users", token)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, middleware.CodeRoleForbidden, body["code"])
}

func TestUserListRoleFilter(t *testing.T) {
	app, token := setupAdminApp(t)

	db := database.Database.Db
	db.Create(&models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleStudent, Password: "x"})
	db.Create(&models.User{Name: "Grace", Email: "grace@example.com", Role: models.RoleInstructor, Password: "x"})

	body, status := adminGet(app, "/api/admin/users?role=STUDENT", token)
	assert.Equal(t, fiber.StatusOK, status)
	users := body["data"].(map[string]interface{})["users"].([]interface{})
	assert.Len(t, users, 1)
	assert.Equal(t, "Ada", users[0].(map[string]interface{})["name"])
}

func TestDeleteUserSoft(t *testing.T) {
	app, token := setupAdminApp(t)

	student := models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleStudent, Password: "x"}
	assert.NoError(t, database.Database.Db.Create(&student).Error)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/admin/users/%d", student.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The row stays, flagged deleted
	var saved models.User
	assert.NoError(t, database.Database.Db.First(&saved, student.ID).Error)
	assert.True(t, saved.IsDeleted)
}

func TestDeleteEnrollmentIsHard(t *testing.T) {
	app, token := setupAdminApp(t)

	enrollment := courseModels.Enrollment{
		UserID:       1,
		CourseID:     1,
		StudentName:  "Ada",
		StudentEmail: "ada@example.com",
		CourseName:   "Intro to Go",
		Status:       courseModels.EnrollmentEnrolled,
	}
	assert.NoError(t, database.Database.Db.Create(&enrollment).Error)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/admin/enrollments/%d", enrollment.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	database.Database.Db.Unscoped().Model(&courseModels.Enrollment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDashboardStats(t *testing.T) {
	app, token := setupAdminApp(t)

	db := database.Database.Db
	db.Create(&models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleStudent, Password: "x"})
	db.Create(&courseModels.Course{InstructorID: 1, InstructorName: "Root", Title: "Intro to Go", Status: courseModels.StatusPublished})
	db.Create(&models.Order{UserID: 2, CourseID: 1, CourseName: "Intro to Go", Reference: "ref-1", Amount: 20, Status: models.OrderPaid})

	body, status := adminGet(app, "/api/admin/dashboard", token)
	assert.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["students"])
	assert.Equal(t, float64(1), data["publishedCourses"])
	assert.Equal(t, float64(20), data["revenue"])
}

func TestExportEnrollments(t *testing.T) {
	app, token := setupAdminApp(t)

	enrollment := courseModels.Enrollment{
		UserID:       1,
		CourseID:     1,
		StudentName:  "Ada Lovelace",
		StudentEmail: "ada@example.com",
		CourseName:   "Intro to Go",
		Status:       courseModels.EnrollmentInProgress,
		Progress:     43,
	}
	assert.NoError(t, database.Database.Db.Create(&enrollment).Error)

	req := httptest.NewRequest("GET", "/api/admin/enrollments/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	assert.NoError(t, err)

	workbook, err := excelize.OpenReader(&buf)
	assert.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Enrollments")
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "Student", rows[0][1])
	assert.Equal(t, "Ada Lovelace", rows[1][1])
	assert.Equal(t, "43", rows[1][5])
}
