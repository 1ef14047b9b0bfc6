package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses. A record is COMPLETED if and only if progress
// has reached 100.
const (
	EnrollmentEnrolled   = "ENROLLED"
	EnrollmentInProgress = "IN PROGRESS"
	EnrollmentCompleted  = "COMPLETED"
)

// Enrollment tracks a student's relationship to one course. The wire
// contract joins on names (studentEmail + courseName), so both are kept
// alongside the numeric ids.
type Enrollment struct {
	gorm.Model
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	CourseID       uint       `gorm:"index;not null" json:"course_id"`
	StudentName    string     `json:"studentName"`
	StudentEmail   string     `gorm:"index;not null" json:"studentEmail"`
	CourseName     string     `gorm:"index;not null" json:"courseName"`
	Status         string     `gorm:"default:'ENROLLED'" json:"enrollmentStatus"`
	Progress       int        `gorm:"default:0" json:"progress"` // 0-100
	CompletedAt    *time.Time `json:"completed_at"`
	ReminderSentAt *time.Time `json:"-"`
	IsDeleted      bool       `gorm:"default:false" json:"-"`
}
