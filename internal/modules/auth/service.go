package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"mime/multipart"
	"strings"

	"cliptube/internal/domain"
	"cliptube/internal/pkg/jwt"
	"cliptube/internal/pkg/password"
	"cliptube/internal/repository"

	"gorm.io/gorm"
)

type tokenService interface {
	GenerateAccessToken(userID int64, username string) (string, error)
	GenerateRefreshToken(userID int64) (string, error)
	ValidateRefreshToken(token string) (*jwt.Claims, error)
}

// Service contains all business logic for accounts and sessions.
//
// Session model: a single refresh token per user, stored as a SHA-256 hash on
// the user row. Every login and refresh overwrites it (last write wins),
// logout clears it. A signed refresh token whose hash no longer matches the
// stored one is unusable, which is the only revocation mechanism.
type Service struct {
	users  UserRepositoryInterface
	blobs  BlobStore
	tokens tokenService
}

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

func NewService(users UserRepositoryInterface, blobs BlobStore, tokens tokenService) *Service {
	return &Service{
		users:  users,
		blobs:  blobs,
		tokens: tokens,
	}
}

// Register creates the account and stores the profile media. The avatar is
// required; cover image is optional. Uploaded files are removed again if the
// user row cannot be created.
func (s *Service) Register(ctx context.Context, req RegisterRequest, avatar, coverImage *multipart.FileHeader) (*domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	avatarUpload, err := s.blobs.Upload(ctx, 0, avatar)
	if err != nil {
		return nil, err
	}

	var coverURL string
	if coverImage != nil {
		coverUpload, err := s.blobs.Upload(ctx, 0, coverImage)
		if err != nil {
			_ = s.blobs.DeleteByURL(ctx, avatarUpload.FileURL)
			return nil, err
		}
		coverURL = coverUpload.FileURL
	}

	user := &domain.User{
		Username:      username,
		Email:         email,
		FullName:      strings.TrimSpace(req.FullName),
		PasswordHash:  hashedPassword,
		AvatarURL:     avatarUpload.FileURL,
		CoverImageURL: coverURL,
	}

	if err := s.users.Create(ctx, user); err != nil {
		_ = s.blobs.DeleteByURL(ctx, avatarUpload.FileURL)
		if coverURL != "" {
			_ = s.blobs.DeleteByURL(ctx, coverURL)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and opens a session. The stored refresh token
// hash is overwritten unconditionally: a concurrent earlier session loses its
// refresh token the moment this one completes.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	user, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issueTokenPair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	// Both tokens exist before anything is persisted.
	hash := hashToken(refreshToken)
	if err := s.users.SetRefreshTokenHash(ctx, user.ID, &hash); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	user.RefreshTokenHash = ""
	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates the token pair. The presented token must carry a valid
// signature and expiry AND match the stored hash; the swap to the new hash is
// a compare-and-swap, so of two racing refreshes exactly one wins and the
// other gets ErrInvalidRefreshToken.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*RefreshResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshRaw)
	if err != nil {
		// expired vs forged stays in the server log only
		log.Printf("refresh rejected: %v", err)
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	accessToken, refreshToken, err := s.issueTokenPair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	ok, err := s.users.RotateRefreshTokenHash(ctx, user.ID, hashToken(refreshRaw), hashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if !ok {
		// logged out, superseded by a newer login/refresh, or lost the race
		return nil, ErrInvalidRefreshToken
	}

	return &RefreshResult{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout clears the stored refresh token hash. Logging out twice is not an
// error.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.users.SetRefreshTokenHash(ctx, userID, nil)
}

// ChangePassword re-hashes the password and revokes the current session in
// the same update, so a stolen refresh token dies with the old password.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !password.Verify(req.OldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	return s.users.UpdateFields(ctx, userID, map[string]any{
		"password_hash":      hashedPassword,
		"refresh_token_hash": nil,
	})
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	user.RefreshTokenHash = ""
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	fields := map[string]any{}
	if req.FullName != "" {
		fields["full_name"] = strings.TrimSpace(req.FullName)
	}
	if req.Email != "" {
		fields["email"] = strings.ToLower(strings.TrimSpace(req.Email))
	}

	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return s.CurrentUser(ctx, userID)
}

// UpdateAvatar uploads the replacement first and swaps the URL after; the old
// file is deleted best-effort.
func (s *Service) UpdateAvatar(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*domain.User, error) {
	return s.updateImage(ctx, userID, fileHeader, "avatar_url")
}

func (s *Service) UpdateCoverImage(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*domain.User, error) {
	return s.updateImage(ctx, userID, fileHeader, "cover_image_url")
}

func (s *Service) updateImage(ctx context.Context, userID int64, fileHeader *multipart.FileHeader, column string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	upload, err := s.blobs.Upload(ctx, userID, fileHeader)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateFields(ctx, userID, map[string]any{column: upload.FileURL}); err != nil {
		_ = s.blobs.DeleteByURL(ctx, upload.FileURL)
		return nil, err
	}

	oldURL := user.AvatarURL
	if column == "cover_image_url" {
		oldURL = user.CoverImageURL
	}
	if oldURL != "" {
		if err := s.blobs.DeleteByURL(ctx, oldURL); err != nil {
			log.Printf("failed to delete replaced image %s: %v", oldURL, err)
		}
	}

	return s.CurrentUser(ctx, userID)
}

func (s *Service) issueTokenPair(userID int64, username string) (access string, refresh string, err error) {
	access, err = s.tokens.GenerateAccessToken(userID, username)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
