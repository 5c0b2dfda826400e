package domain

import "time"

// Upload is a file stored on the local filesystem (avatar or cover image).
// User rows reference uploads by their public URL.
type Upload struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	UserID       int64     `gorm:"column:user_id;index" json:"user_id"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	FilePath     string    `gorm:"column:file_path" json:"-"`
	FileURL      string    `gorm:"column:file_url;index" json:"url"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	Size         int64     `gorm:"column:size" json:"size"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Upload) TableName() string { return "uploads" }
