package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"cliptube/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate is returned by Create when the username or email is already
// taken (unique constraint violation).
var ErrDuplicate = errors.New("duplicate username or email")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	Username         string    `gorm:"column:username;uniqueIndex"`
	Email            string    `gorm:"column:email;uniqueIndex"`
	FullName         string    `gorm:"column:full_name"`
	PasswordHash     string    `gorm:"column:password_hash"`
	AvatarURL        string    `gorm:"column:avatar_url"`
	CoverImageURL    *string   `gorm:"column:cover_image_url"`
	RefreshTokenHash *string   `gorm:"column:refresh_token_hash"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var cover, refresh string
	if m.CoverImageURL != nil {
		cover = *m.CoverImageURL
	}
	if m.RefreshTokenHash != nil {
		refresh = *m.RefreshTokenHash
	}

	return &domain.User{
		ID:               m.ID,
		Username:         m.Username,
		Email:            m.Email,
		FullName:         m.FullName,
		PasswordHash:     m.PasswordHash,
		AvatarURL:        m.AvatarURL,
		CoverImageURL:    cover,
		RefreshTokenHash: refresh,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	var cover, refresh *string
	if u.CoverImageURL != "" {
		v := u.CoverImageURL
		cover = &v
	}
	if u.RefreshTokenHash != "" {
		v := u.RefreshTokenHash
		refresh = &v
	}

	return userModel{
		ID:               u.ID,
		Username:         strings.ToLower(strings.TrimSpace(u.Username)),
		Email:            strings.ToLower(strings.TrimSpace(u.Email)),
		FullName:         u.FullName,
		PasswordHash:     u.PasswordHash,
		AvatarURL:        u.AvatarURL,
		CoverImageURL:    cover,
		RefreshTokenHash: refresh,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return ErrDuplicate
		}
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

// GetByUsernameOrEmail matches the login identifier against either unique
// column, case-insensitively.
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	var m userModel
	tx := r.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = ?", identifier, identifier).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("username = ? OR LOWER(email) = ?", username, email).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}
	return count > 0, nil
}

// UpdateFields applies a point update to the given columns.
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// SetRefreshTokenHash overwrites the stored refresh token hash; nil clears it
// (logout). The write is a single point update on the user row.
func (r *UserRepository) SetRefreshTokenHash(ctx context.Context, id int64, hash *string) error {
	return r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", id).
		Update("refresh_token_hash", hash).Error
}

// RotateRefreshTokenHash swaps oldHash for newHash only if oldHash is still
// the stored value. Returns false when another login/refresh/logout got there
// first; concurrent rotations leave exactly one winner.
func (r *UserRepository) RotateRefreshTokenHash(ctx context.Context, id int64, oldHash, newHash string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ? AND refresh_token_hash = ?", id, oldHash).
		Update("refresh_token_hash", newHash)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// sqlite (dev/test driver) has no typed error here
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
