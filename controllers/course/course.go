package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"learnhub/config"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/utils"
	courseValidator "learnhub/validators/course"
)

// courseView is a catalog projection carrying the effective thumbnail
type courseView struct {
	courseModels.Course
	Thumbnail string `json:"thumbnail"`
}

func viewOf(course courseModels.Course) courseView {
	return courseView{Course: course, Thumbnail: course.Thumbnail()}
}

// ListCourses returns the published catalog. Public: mounted without the
// auth gate.
func ListCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*courseValidator.CourseListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request!", nil)
	}

	page := 1
	limit := 10
	if reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData.Limit != nil {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).
		Where("is_deleted = ? AND status = ?", false, courseModels.StatusPublished)

	if reqData.Category != nil && *reqData.Category != "" {
		db = db.Where("category = ?", *reqData.Category)
	}
	if reqData.Level != nil && *reqData.Level != "" {
		db = db.Where("level = ?", *reqData.Level)
	}

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch courses!")
	}

	views := make([]courseView, len(courses))
	for i, course := range courses {
		views[i] = viewOf(course)
	}

	response := map[string]interface{}{
		"courses": views,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

// GetCourseDetails returns one published course. When the request carries a
// valid student token the caller's enrollment (or null) and the derived
// resume position are included, so the client can route between the
// overview and the in-course view.
func GetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, courseModels.StatusPublished).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Course not found!")
	}

	var totalLessons int64
	database.Database.Db.Model(&courseModels.ContentPage{}).Where("course_id = ?", course.ID).Count(&totalLessons)

	var quizCount int64
	database.Database.Db.Model(&courseModels.Quiz{}).Where("course_id = ?", course.ID).Count(&quizCount)

	result := fiber.Map{
		"course":       viewOf(course),
		"totalLessons": totalLessons,
		"quizCount":    quizCount,
		"enrollment":   nil,
	}

	// Optional identity from the auth gate
	if email, ok := c.Locals("email").(string); ok {
		var enrollment courseModels.Enrollment
		if err := database.Database.Db.Where("student_email = ? AND course_name = ? AND is_deleted = ?", email, course.Title, false).First(&enrollment).Error; err == nil {
			result["enrollment"] = enrollment
			result["currentLesson"] = courseModels.LessonsDone(enrollment.Progress, int(totalLessons))
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", result)
}

// CreateCourse creates a new draft course owned by the calling instructor
func CreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "Authentication required")
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "User not found!")
	}

	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Course titles double as the enrollment join key, so they must be unique
	if err := database.Database.Db.Where("title = ? AND is_deleted = ?", reqData.Title, false).First(&courseModels.Course{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "A course with this title already exists!", nil)
	}

	level := reqData.Level
	if level == "" {
		level = "BEGINNER"
	}

	course := courseModels.Course{
		InstructorID:   userID,
		InstructorName: user.Name,
		Title:          reqData.Title,
		Description:    reqData.Description,
		Category:       reqData.Category,
		Level:          level,
		Price:          reqData.Price,
		Status:         courseModels.StatusDraft,
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		log.Printf("Error creating course: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to create course!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", viewOf(course))
}

// ownedCourse loads a course and checks the caller owns it
func ownedCourse(c *fiber.Ctx) (*courseModels.Course, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "Authentication required")
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return nil, middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Course not found!")
	}

	if course.InstructorID != userID {
		return nil, middleware.ErrorResponse(c, fiber.StatusForbidden, middleware.CodeRoleForbidden, "You do not own this course!")
	}

	return &course, nil
}

// UpdateCourse updates an owned course's catalog fields
func UpdateCourse(c *fiber.Ctx) error {
	course, err := ownedCourse(c)
	if course == nil {
		return err
	}

	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Titles are the enrollment join key, so the uniqueness rule from
	// creation applies on rename too
	if reqData.Title != course.Title {
		if err := database.Database.Db.Where("title = ? AND id <> ? AND is_deleted = ?", reqData.Title, course.ID, false).First(&courseModels.Course{}).Error; err == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A course with this title already exists!", nil)
		}
	}

	oldTitle := course.Title
	course.Title = reqData.Title
	course.Description = reqData.Description
	course.Category = reqData.Category
	if reqData.Level != "" {
		course.Level = reqData.Level
	}
	course.Price = reqData.Price

	// A rename must follow through to existing enrollments or their join
	// key goes stale
	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(course).Error; err != nil {
			return err
		}
		if course.Title != oldTitle {
			if err := tx.Model(&courseModels.Enrollment{}).Where("course_id = ?", course.ID).
				Update("course_name", course.Title).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error updating course %d: %v", course.ID, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to update course!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", viewOf(*course))
}

// PublishCourse transitions Draft -> Published
func PublishCourse(c *fiber.Ctx) error {
	course, err := ownedCourse(c)
	if course == nil {
		return err
	}

	var pages int64
	database.Database.Db.Model(&courseModels.ContentPage{}).Where("course_id = ?", course.ID).Count(&pages)
	if pages == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot publish a course without content!", nil)
	}

	course.Status = courseModels.StatusPublished
	if err := database.Database.Db.Save(course).Error; err != nil {
		log.Printf("Error publishing course %d: %v", course.ID, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to publish course!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", viewOf(*course))
}

// DeleteCourse soft-deletes an owned course
func DeleteCourse(c *fiber.Ctx) error {
	course, err := ownedCourse(c)
	if course == nil {
		return err
	}

	course.IsDeleted = true
	if err := database.Database.Db.Save(course).Error; err != nil {
		log.Printf("Error deleting course %d: %v", course.ID, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to delete course!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// UploadThumbnail stores an explicit thumbnail for an owned course
func UploadThumbnail(c *fiber.Ctx) error {
	course, err := ownedCourse(c)
	if course == nil {
		return err
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Thumbnail file is required!", nil)
	}

	path, err := utils.SaveUploadedImage(file, config.AppConfig.UploadDir)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	course.ThumbnailURL = utils.GetFileURL(path)
	if err := database.Database.Db.Save(course).Error; err != nil {
		log.Printf("Error saving thumbnail for course %d: %v", course.ID, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to save thumbnail!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail updated successfully!", fiber.Map{
		"thumbnail_url": course.ThumbnailURL,
	})
}

// InstructorCourses lists the caller's own courses, drafts included
func InstructorCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "Authentication required")
	}

	var courses []courseModels.Course
	if err := database.Database.Db.Where("instructor_id = ? AND is_deleted = ?", userID, false).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch courses!")
	}

	views := make([]courseView, len(courses))
	for i, course := range courses {
		views[i] = viewOf(course)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": views,
	})
}
