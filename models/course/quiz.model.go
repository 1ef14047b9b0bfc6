package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz is an ordered question bank attached to a course
type Quiz struct {
	gorm.Model
	CourseID uint   `gorm:"index;not null" json:"course_id"`
	Name     string `json:"name"`
	Position int    `gorm:"default:0" json:"position"`
}

// QuizQuestion holds one multiple-choice question. Options is a JSON array
// of exactly four non-empty strings and CorrectAnswer equals one of them;
// both are enforced by the authoring draft before anything is persisted.
type QuizQuestion struct {
	gorm.Model
	QuizID        uint           `gorm:"index;not null" json:"quiz_id"`
	Number        int            `gorm:"not null" json:"number"`
	Prompt        string         `gorm:"type:text" json:"prompt"`
	Options       datatypes.JSON `json:"options"`
	CorrectAnswer string         `json:"correct_answer"`
}

// QuizAttempt is a student's scored submission for a quiz
type QuizAttempt struct {
	gorm.Model
	UserID        uint           `gorm:"index;not null" json:"user_id"`
	QuizID        uint           `gorm:"index;not null" json:"quiz_id"`
	Answers       datatypes.JSON `json:"answers"` // question number -> chosen option
	Score         int            `json:"score"`
	MaxScore      int            `json:"max_score"`
	AttemptNumber int            `gorm:"default:1" json:"attempt_number"`
}
