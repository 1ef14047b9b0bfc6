package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/utils"
	enrollmentValidator "learnhub/validators/enrollment"
)

// Checkout handles POST /api/enrollments: payment confirmation followed by
// enrollment creation with progress 0. A declined or unreachable gateway
// leaves no enrollment behind.
func Checkout(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "Authentication required")
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "User not found!")
	}

	reqData, ok := c.Locals("validatedCheckout").(*enrollmentValidator.CheckoutRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("title = ? AND is_deleted = ? AND status = ?", reqData.CourseName, false, courseModels.StatusPublished).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Course not found or not published!")
	}

	// Check if student is already enrolled
	var existing courseModels.Enrollment
	if err := database.Database.Db.Where("student_email = ? AND course_name = ? AND is_deleted = ?", user.Email, course.Title, false).First(&existing).Error; err == nil {
		return middleware.ErrorResponse(c, fiber.StatusConflict, middleware.CodeAlreadyEnrolled, "You are already enrolled in this course!")
	}

	order := models.Order{
		UserID:     userID,
		CourseID:   course.ID,
		CourseName: course.Title,
		Amount:     course.Price,
		Status:     models.OrderPaid,
	}

	if course.Price > 0 {
		reference, gatewayID, err := utils.ChargeCourse(user.Email, course.Title, course.Price)
		order.Reference = reference
		order.GatewayID = gatewayID
		if err != nil {
			order.Status = models.OrderFailed
			database.Database.Db.Create(&order)
			return middleware.ErrorResponse(c, fiber.StatusBadGateway, middleware.CodePaymentFailed, "Payment failed. You have not been enrolled.")
		}
	} else {
		order.Reference = "free-" + uuid.NewString()
	}

	enrollment := courseModels.Enrollment{
		UserID:       userID,
		CourseID:     course.ID,
		StudentName:  user.Name,
		StudentEmail: user.Email,
		CourseName:   course.Title,
		Status:       courseModels.EnrollmentEnrolled,
		Progress:     0,
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		log.Printf("Error saving order: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to enroll in course!")
	}
	if err := tx.Create(&enrollment).Error; err != nil {
		tx.Rollback()
		log.Printf("Error saving enrollment: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to enroll in course!")
	}
	tx.Commit()

	utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", fiber.Map{
		"enrollment": enrollment,
		"order":      order,
	})
}

// enrollmentView wraps an enrollment with its derived lesson position
type enrollmentView struct {
	courseModels.Enrollment
	TotalLessons int `json:"totalLessons"`
	LessonsDone  int `json:"lessonsDone"`
}

func viewOfEnrollment(enrollment courseModels.Enrollment) enrollmentView {
	var totalLessons int64
	database.Database.Db.Model(&courseModels.ContentPage{}).Where("course_id = ?", enrollment.CourseID).Count(&totalLessons)
	return enrollmentView{
		Enrollment:   enrollment,
		TotalLessons: int(totalLessons),
		LessonsDone:  courseModels.LessonsDone(enrollment.Progress, int(totalLessons)),
	}
}

// GetEnrollments lists the caller's enrollments with derived positions
func GetEnrollments(c *fiber.Ctx) error {
	email, ok := c.Locals("email").(string)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "Authentication required")
	}

	reqData, _ := c.Locals("validatedEnrollmentList").(*enrollmentValidator.ListQuery)

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("student_email = ? AND is_deleted = ?", email, false)

	var total int64
	db.Count(&total)

	var enrollments []courseModels.Enrollment
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch enrollments!")
	}

	views := make([]enrollmentView, len(enrollments))
	for i, enrollment := range enrollments {
		views[i] = viewOfEnrollment(enrollment)
	}

	response := map[string]interface{}{
		"enrollments": views,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", response)
}

// UpdateProgress handles PUT /api/enrollments/progress, triggered by lesson
// navigation. The stored percentage only ever moves forward: navigating back
// to an earlier lesson reports a lower position, which is ignored rather
// than persisted. The write is transactional, so a failure leaves the
// stored progress exactly as it was.
func UpdateProgress(c *fiber.Ctx) error {
	email, ok := c.Locals("email").(string)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "Authentication required")
	}

	reqData, ok := c.Locals("validatedProgress").(*enrollmentValidator.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("student_email = ? AND course_name = ? AND is_deleted = ?", email, reqData.CourseName, false).First(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotEnrolled, "You are not enrolled in this course!")
	}

	progress := courseModels.ProgressFor(reqData.CurrentLesson, reqData.TotalLessons)
	if progress < enrollment.Progress {
		progress = enrollment.Progress
	}

	wasCompleted := enrollment.Status == courseModels.EnrollmentCompleted

	enrollment.Progress = progress
	enrollment.Status = courseModels.StatusForProgress(progress)
	if enrollment.Status == courseModels.EnrollmentCompleted && enrollment.CompletedAt == nil {
		now := time.Now()
		enrollment.CompletedAt = &now
	}

	if err := database.Database.Db.Save(&enrollment).Error; err != nil {
		log.Printf("Error updating progress for %s / %s: %v", email, reqData.CourseName, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to update progress!")
	}

	if !wasCompleted && enrollment.Status == courseModels.EnrollmentCompleted {
		utils.SendCompletionEmail(enrollment.StudentEmail, enrollment.StudentName, enrollment.CourseName)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", viewOfEnrollment(enrollment))
}
