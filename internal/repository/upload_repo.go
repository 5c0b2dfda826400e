package repository

import (
	"context"
	"errors"

	"cliptube/internal/domain"

	"gorm.io/gorm"
)

// UploadRepository records stored files so orphans can be cleaned up and
// uploads can be deleted by their public URL.
type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, u *domain.Upload) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UploadRepository) GetByURL(ctx context.Context, url string) (*domain.Upload, error) {
	var u domain.Upload
	err := r.db.WithContext(ctx).Where("file_url = ?", url).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UploadRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Upload{}).Error
}

func (r *UploadRepository) ListAll(ctx context.Context) ([]domain.Upload, error) {
	var uploads []domain.Upload
	err := r.db.WithContext(ctx).Find(&uploads).Error
	return uploads, err
}
