package auth

import (
	"context"
	"mime/multipart"

	"cliptube/internal/domain"
)

// UserRepositoryInterface lists only the methods the auth service uses.
// The refresh token hash methods are the session store: one hash per user,
// updated with single point writes.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	SetRefreshTokenHash(ctx context.Context, id int64, hash *string) error
	RotateRefreshTokenHash(ctx context.Context, id int64, oldHash, newHash string) (bool, error)
}

// BlobStore is opaque media storage consumed by registration and the
// avatar/cover update handlers.
type BlobStore interface {
	Upload(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*domain.Upload, error)
	DeleteByURL(ctx context.Context, url string) error
}
