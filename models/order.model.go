package models

import "gorm.io/gorm"

// Order statuses
const (
	OrderPending = "PENDING"
	OrderPaid    = "PAID"
	OrderFailed  = "FAILED"
)

// Order is a checkout record created when a student purchases a course.
// Free courses produce a PAID order with a zero amount and no gateway id.
type Order struct {
	gorm.Model
	UserID     uint    `gorm:"index;not null" json:"user_id"`
	CourseID   uint    `gorm:"index;not null" json:"course_id"`
	CourseName string  `json:"course_name"`
	Reference  string  `gorm:"unique;not null" json:"reference"`
	Amount     float64 `gorm:"default:0" json:"amount"`
	Status     string  `gorm:"default:'PENDING'" json:"status"`
	GatewayID  string  `gorm:"default:''" json:"gateway_id"`
	IsDeleted  bool    `gorm:"default:false" json:"-"`
}
