package models

import "gorm.io/gorm"

const (
	ContactStatusNew    = "NEW"
	ContactStatusRead   = "READ"
	ContactStatusClosed = "CLOSED"
)

// ContactMessage is a message submitted through the public contact form
type ContactMessage struct {
	gorm.Model
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `gorm:"type:text" json:"message"`
	Status    string `gorm:"default:'NEW'" json:"status"` // NEW, READ, CLOSED
	IsDeleted bool   `gorm:"default:false" json:"-"`
}
