package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cliptube/internal/domain"

	"github.com/google/uuid"
)

// AllowedMimeTypes defines which profile image types are accepted
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// Service stores profile media on local disk.
// Simple: save file -> record in DB -> return record with public URL.
type Service struct {
	repo        UploadRepositoryInterface
	baseDir     string // absolute path to uploads dir
	staticBase  string // URL prefix for serving files
	maxFileSize int64
}

func NewService(repo UploadRepositoryInterface, baseDir, staticBase string, maxFileSize int64) *Service {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if staticBase == "" {
		staticBase = "/static/uploads"
	}
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &Service{repo: repo, baseDir: baseDir, staticBase: staticBase, maxFileSize: maxFileSize}
}

// Upload saves a file to disk and records it in the database.
func (s *Service) Upload(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*domain.Upload, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Detect MIME type from first 512 bytes
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := http.DetectContentType(buf[:n])
	mimeType = strings.Split(mimeType, ";")[0]

	if !AllowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}

	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	// Directory layout: uploads/YYYY/MM/DD/
	now := time.Now()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(s.baseDir, relDir)
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	id := uuid.New().String()
	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = mimeToExt(mimeType)
	}
	safeOriginal := sanitizeName(fileHeader.Filename)
	filename := fmt.Sprintf("%s_%s%s", id, safeOriginal, ext)

	absPath := filepath.Join(absDir, filename)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	relPath := filepath.Join(relDir, filename)
	fileURL := s.staticBase + "/" + strings.ReplaceAll(relPath, "\\", "/")

	upload := &domain.Upload{
		ID:           id,
		UserID:       userID,
		OriginalName: fileHeader.Filename,
		FilePath:     relPath,
		FileURL:      fileURL,
		MimeType:     mimeType,
		Size:         fileHeader.Size,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, upload); err != nil {
		_ = os.Remove(absPath) // rollback file on DB error
		return nil, fmt.Errorf("failed to save upload record: %w", err)
	}

	return upload, nil
}

// DeleteByURL removes the record and the physical file for a previously
// uploaded URL. Unknown URLs are a no-op, so replacing an avatar never fails
// because the old file is already gone.
func (s *Service) DeleteByURL(ctx context.Context, url string) error {
	upload, err := s.repo.GetByURL(ctx, url)
	if err != nil {
		return err
	}
	if upload == nil {
		return nil
	}

	absPath := filepath.Join(s.baseDir, upload.FilePath)
	_ = os.Remove(absPath) // file may already be gone

	return s.repo.Delete(ctx, upload.ID)
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "file"
	}
	return name
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".bin"
	}
}
