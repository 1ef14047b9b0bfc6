package course

import "gorm.io/gorm"

// Course statuses
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
)

// Course is a catalog entry authored by an instructor
type Course struct {
	gorm.Model
	InstructorID   uint    `gorm:"index;not null" json:"instructor_id"`
	InstructorName string  `json:"instructor_name"`
	Title          string  `gorm:"unique;not null" json:"title"`
	Description    string  `gorm:"type:text" json:"description"`
	Category       string  `gorm:"index" json:"category"`
	Level          string  `gorm:"default:'BEGINNER'" json:"level"` // BEGINNER, INTERMEDIATE, ADVANCED
	Price          float64 `gorm:"default:0" json:"price"`
	Status         string  `gorm:"default:'DRAFT'" json:"status"`
	ThumbnailURL   string  `gorm:"default:''" json:"thumbnail_url"`
	IsDeleted      bool    `gorm:"default:false" json:"-"`
}

var defaultThumbnails = map[string]string{
	"programming": "/assets/thumbs/programming.png",
	"design":      "/assets/thumbs/design.png",
	"business":    "/assets/thumbs/business.png",
	"marketing":   "/assets/thumbs/marketing.png",
	"music":       "/assets/thumbs/music.png",
	"photography": "/assets/thumbs/photography.png",
}

const fallbackThumbnail = "/assets/thumbs/generic.png"

// DefaultThumbnail returns the stock thumbnail for a category
func DefaultThumbnail(category string) string {
	if url, ok := defaultThumbnails[category]; ok {
		return url
	}
	return fallbackThumbnail
}

// Thumbnail returns the explicit thumbnail when set, otherwise the
// category default.
func (c *Course) Thumbnail() string {
	if c.ThumbnailURL != "" {
		return c.ThumbnailURL
	}
	return DefaultThumbnail(c.Category)
}
