package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentPage is one page of a course's content, keyed by a 1-based page
// number unique within the course. Pages are replaced wholesale when an
// authoring draft is flushed.
type ContentPage struct {
	gorm.Model
	CourseID    uint           `gorm:"index:idx_course_page,unique;not null" json:"course_id"`
	PageNumber  int            `gorm:"index:idx_course_page,unique;not null" json:"page_number"`
	Title       string         `json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Images      datatypes.JSON `json:"images"`
	Videos      datatypes.JSON `json:"videos"`
}
