package domain

import "time"

type User struct {
	ID            int64  `json:"id" gorm:"primaryKey"`
	Username      string `json:"username" gorm:"uniqueIndex;not null"`
	Email         string `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	FullName      string `json:"full_name"`
	PasswordHash  string `json:"-" gorm:"not null"`
	AvatarURL     string `json:"avatar_url"`
	CoverImageURL string `json:"cover_image_url,omitempty"`

	// RefreshTokenHash holds the SHA-256 of the single currently valid
	// refresh token, empty/NULL when the user is logged out. The raw token
	// is never persisted.
	RefreshTokenHash string `json:"-" gorm:"size:64"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
