package controllers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"learnhub/database"
	"learnhub/draft"
	"learnhub/middleware"
	courseModels "learnhub/models/course"
	courseValidator "learnhub/validators/course"
)

func pageToRecord(courseID uint, p draft.Page) courseModels.ContentPage {
	images, _ := json.Marshal(p.Images)
	videos, _ := json.Marshal(p.Videos)
	return courseModels.ContentPage{
		CourseID:    courseID,
		PageNumber:  p.Number,
		Title:       p.Title,
		Description: p.Description,
		Images:      datatypes.JSON(images),
		Videos:      datatypes.JSON(videos),
	}
}

func recordToPage(rec courseModels.ContentPage) draft.Page {
	p := draft.Page{
		Number:      rec.PageNumber,
		Title:       rec.Title,
		Description: rec.Description,
	}
	json.Unmarshal(rec.Images, &p.Images)
	json.Unmarshal(rec.Videos, &p.Videos)
	return p
}

func loadPages(courseID uint) ([]draft.Page, error) {
	var records []courseModels.ContentPage
	if err := database.Database.Db.Where("course_id = ?", courseID).Order("page_number asc").Find(&records).Error; err != nil {
		return nil, err
	}
	pages := make([]draft.Page, len(records))
	for i, rec := range records {
		pages[i] = recordToPage(rec)
	}
	return pages, nil
}

// persistContent replaces a course's pages with the given ordered set in one
// transaction. Either every page lands or none do.
func persistContent(courseID uint, pages []draft.Page) error {
	return database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&courseModels.ContentPage{}).Error; err != nil {
			return err
		}
		for _, p := range pages {
			rec := pageToRecord(courseID, p)
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// canReadCourse reports whether the caller may read course material: the
// owning instructor always, students only when enrolled.
func canReadCourse(c *fiber.Ctx, course *courseModels.Course) bool {
	userID, ok := c.Locals("userId").(uint)
	if ok && course.InstructorID == userID {
		return true
	}
	email, ok := c.Locals("email").(string)
	if !ok {
		return false
	}
	var enrollment courseModels.Enrollment
	return database.Database.Db.Where("student_email = ? AND course_name = ? AND is_deleted = ?", email, course.Title, false).First(&enrollment).Error == nil
}

// GetCourseContent returns a course's persisted content pages in page order
func GetCourseContent(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Course not found!")
	}

	if !canReadCourse(c, &course) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, middleware.CodeNotEnrolled, "Please enroll in this course first!")
	}

	pages, err := loadPages(course.ID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch course content!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course content fetched successfully!", fiber.Map{
		"content": pages,
	})
}

// SaveAllContent handles PUT /api/courses/:id/content: a single write of the
// full ordered page set. On failure nothing is committed; on success any
// open draft is refreshed with the server-confirmed content.
func SaveAllContent(c *fiber.Ctx) error {
	course, err := ownedCourse(c)
	if course == nil {
		return err
	}

	reqData, ok := c.Locals("validatedContent").(*courseValidator.SaveContentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := persistContent(course.ID, reqData.Content); err != nil {
		log.Printf("Error saving content for course %d: %v", course.ID, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to save course content!")
	}

	pages, err := loadPages(course.ID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch saved content!")
	}

	// Server-confirmed content becomes the new draft baseline
	if _, open := draft.Sessions.Get(course.InstructorID, course.ID); open {
		if quizzes, qErr := loadQuizzes(course.ID); qErr == nil {
			draft.Sessions.Put(course.InstructorID, course.ID, draft.NewSession(pages, quizzes))
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course content saved successfully!", fiber.Map{
		"content": pages,
	})
}

// openDraftSession returns the caller's session for an owned course,
// creating it from persisted state when none is open.
func openDraftSession(course *courseModels.Course) (*draft.Session, error) {
	if session, ok := draft.Sessions.Get(course.InstructorID, course.ID); ok {
		return session, nil
	}
	pages, err := loadPages(course.ID)
	if err != nil {
		return nil, err
	}
	quizzes, err := loadQuizzes(course.ID)
	if err != nil {
		return nil, err
	}
	session := draft.NewSession(pages, quizzes)
	draft.Sessions.Put(course.InstructorID, course.ID, session)
	return session, nil
}

func draftState(session *draft.Session) fiber.Map {
	return fiber.Map{
		"pages":      session.Pages(),
		"activePage": session.ActivePage(),
		"quizzes":    session.Quizzes(),
	}
}

// OpenDraft starts (or resumes) an authoring session seeded from the
// persisted course state.
func OpenDraft(c *fiber.Ctx) error {
	course, err := ownedCourse(c)
	if course == nil {
		return err
	}

	session, err := openDraftSession(course)
	if err != nil {
		log.Printf("Error opening draft for course %d: %v", course.ID, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to open draft!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Draft opened.", draftState(session))
}

// currentDraft fetches the open session, without creating one
func currentDraft(c *fiber.Ctx) (*courseModels.Course, *draft.Session, error) {
	course, err := ownedCourse(c)
	if course == nil {
		return nil, nil, err
	}
	session, ok := draft.Sessions.Get(course.InstructorID, course.ID)
	if !ok {
		return nil, nil, middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeDraftNotFound, "No open draft for this course!")
	}
	return course, session, nil
}

// GetDraft returns the current in-memory draft state
func GetDraft(c *fiber.Ctx) error {
	_, session, err := currentDraft(c)
	if session == nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Draft fetched.", draftState(session))
}

// DraftAddPage appends a page numbered max+1 and makes it active
func DraftAddPage(c *fiber.Ctx) error {
	_, session, err := currentDraft(c)
	if session == nil {
		return err
	}

	number := session.AddPage()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Page added.", fiber.Map{
		"page_number": number,
		"activePage":  session.ActivePage(),
	})
}

// DraftDeletePage removes a page; the view moves to the first remaining
// page (or a fresh page 1 when the set would become empty).
func DraftDeletePage(c *fiber.Ctx) error {
	_, session, err := currentDraft(c)
	if session == nil {
		return err
	}

	pageNumber := c.Locals("pageNumber").(int)
	active, err := session.DeletePage(pageNumber)
	if err != nil {
		if errors.Is(err, draft.ErrPageNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Page not found in draft!")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to delete page!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Page deleted.", fiber.Map{
		"activePage": active,
		"pages":      session.Pages(),
	})
}

// DraftSavePage commits the current page buffer into the draft mapping.
// No backend write happens here.
func DraftSavePage(c *fiber.Ctx) error {
	_, session, err := currentDraft(c)
	if session == nil {
		return err
	}

	reqData, ok := c.Locals("validatedPage").(*draft.Page)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := session.SavePage(*reqData); err != nil {
		if errors.Is(err, draft.ErrPageNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "Page not found in draft!")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to save page!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Page saved.", fiber.Map{
		"pages": session.Pages(),
	})
}

// SaveDraftContent flushes the draft's page mapping to the database as one
// ordered write. Local draft state is left untouched on failure.
func SaveDraftContent(c *fiber.Ctx) error {
	course, session, err := currentDraft(c)
	if session == nil {
		return err
	}

	pages := session.Pages()
	if err := persistContent(course.ID, pages); err != nil {
		log.Printf("Error flushing draft for course %d: %v", course.ID, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to save course content!")
	}

	saved, err := loadPages(course.ID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeServerError, "Failed to fetch saved content!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course content saved successfully!", fiber.Map{
		"content": saved,
	})
}

// CloseDraft discards the in-memory session without saving
func CloseDraft(c *fiber.Ctx) error {
	course, err := ownedCourse(c)
	if course == nil {
		return err
	}

	draft.Sessions.Discard(course.InstructorID, course.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Draft discarded.", nil)
}
