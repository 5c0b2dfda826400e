package media

import (
	"context"

	"cliptube/internal/domain"
)

// UploadRepositoryInterface lists only the methods the media service uses.
type UploadRepositoryInterface interface {
	Create(ctx context.Context, u *domain.Upload) error
	GetByURL(ctx context.Context, url string) (*domain.Upload, error)
	Delete(ctx context.Context, id string) error
}
