package adminController

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"github.com/xuri/excelize/v2"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	adminValidator "learnhub/validators/admin"
)

func listParams(c *fiber.Ctx) (page, limit int, role string) {
	page, limit = 1, 20
	if reqData, ok := c.Locals("validatedAdminList").(*adminValidator.ListQuery); ok {
		if reqData.Page != nil {
			page = *reqData.Page
		}
		if reqData.Limit != nil {
			limit = *reqData.Limit
		}
		if reqData.Role != nil {
			role = *reqData.Role
		}
	}
	return page, limit, role
}

// UserList returns all accounts, optionally filtered by role
func UserList(c *fiber.Ctx) error {
	page, limit, role := listParams(c)

	db := database.Database.Db.Model(&models.User{}).Where("is_deleted = ?", false)
	if role != "" {
		db = db.Where("role = ?", role)
	}

	var total int64
	db.Count(&total)

	var users []models.User
	if err := db.Offset((page - 1) * limit).Limit(limit).Order("created_at desc").Find(&users).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch users!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// DeleteUser soft-deletes an account
func DeleteUser(c *fiber.Ctx) error {
	id := c.Locals("recordID").(int)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", id, false).First(&user).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "User not found!")
	}

	user.IsDeleted = true
	if err := database.Database.Db.Save(&user).Error; err != nil {
		log.Printf("Error deleting user %d: %v", id, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to delete user!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully!", nil)
}

// CourseList returns every course, drafts included
func CourseList(c *fiber.Ctx) error {
	page, limit, _ := listParams(c)

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Offset((page - 1) * limit).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch courses!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// DeleteCourse soft-deletes any course
func DeleteCourse(c *fiber.Ctx) error {
	id := c.Locals("recordID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", id, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Course not found!")
	}

	course.IsDeleted = true
	if err := database.Database.Db.Save(&course).Error; err != nil {
		log.Printf("Error deleting course %d: %v", id, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to delete course!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// EnrollmentList returns every enrollment record for the back office
func EnrollmentList(c *fiber.Ctx) error {
	page, limit, _ := listParams(c)

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("is_deleted = ?", false)

	var total int64
	db.Count(&total)

	var enrollments []courseModels.Enrollment
	if err := db.Offset((page - 1) * limit).Limit(limit).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch enrollments!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// DeleteEnrollment removes an enrollment record entirely, freeing the
// student to re-enroll from scratch.
func DeleteEnrollment(c *fiber.Ctx) error {
	id := c.Locals("recordID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("id = ?", id).First(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Enrollment not found!")
	}

	if err := database.Database.Db.Unscoped().Delete(&enrollment).Error; err != nil {
		log.Printf("Error deleting enrollment %d: %v", id, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to delete enrollment!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment deleted successfully!", nil)
}

// ContactList returns contact form submissions for review
func ContactList(c *fiber.Ctx) error {
	page, limit, _ := listParams(c)

	db := database.Database.Db.Model(&models.ContactMessage{}).Where("is_deleted = ?", false)

	var total int64
	db.Count(&total)

	var messages []models.ContactMessage
	if err := db.Offset((page - 1) * limit).Limit(limit).Order("created_at desc").Find(&messages).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch messages!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Messages fetched successfully!", fiber.Map{
		"messages": messages,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// DashboardStats returns headline counts for the admin landing page
func DashboardStats(c *fiber.Ctx) error {
	monthStart := now.BeginningOfMonth()

	var students, instructors, courses, published, enrollments, completions int64
	var newStudents, newEnrollments int64
	var revenue float64

	db := database.Database.Db
	db.Model(&models.User{}).Where("role = ? AND is_deleted = ?", models.RoleStudent, false).Count(&students)
	db.Model(&models.User{}).Where("role = ? AND is_deleted = ?", models.RoleInstructor, false).Count(&instructors)
	db.Model(&courseModels.Course{}).Where("is_deleted = ?", false).Count(&courses)
	db.Model(&courseModels.Course{}).Where("is_deleted = ? AND status = ?", false, courseModels.StatusPublished).Count(&published)
	db.Model(&courseModels.Enrollment{}).Where("is_deleted = ?", false).Count(&enrollments)
	db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND status = ?", false, courseModels.EnrollmentCompleted).Count(&completions)
	db.Model(&models.User{}).Where("role = ? AND is_deleted = ? AND created_at >= ?", models.RoleStudent, false, monthStart).Count(&newStudents)
	db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND created_at >= ?", false, monthStart).Count(&newEnrollments)
	db.Model(&models.Order{}).Where("status = ?", models.OrderPaid).Select("COALESCE(SUM(amount), 0)").Scan(&revenue)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"students":            students,
		"instructors":         instructors,
		"courses":             courses,
		"publishedCourses":    published,
		"enrollments":         enrollments,
		"completions":         completions,
		"newStudentsMonth":    newStudents,
		"newEnrollmentsMonth": newEnrollments,
		"revenue":             revenue,
	})
}

// ExportEnrollments streams the full enrollment ledger as an XLSX workbook
func ExportEnrollments(c *fiber.Ctx) error {
	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("is_deleted = ?", false).Order("created_at asc").Find(&enrollments).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch enrollments!")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Enrollments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Student", "Email", "Course", "Status", "Progress", "Enrolled At", "Completed At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, e := range enrollments {
		completed := ""
		if e.CompletedAt != nil {
			completed = e.CompletedAt.Format(time.RFC3339)
		}
		values := []interface{}{
			e.ID,
			e.StudentName,
			e.StudentEmail,
			e.CourseName,
			e.Status,
			e.Progress,
			e.CreatedAt.Format(time.RFC3339),
			completed,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Printf("Error building enrollment export: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to build export!")
	}

	filename := fmt.Sprintf("enrollments-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.SendStream(buf)
}
