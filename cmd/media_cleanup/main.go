package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"cliptube/internal/database"
	"cliptube/internal/repository"
)

// Removes upload records whose files are gone from disk, and files on disk
// that no record points to. Intended to run from cron.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	uploadsDir := os.Getenv("UPLOADS_DIR")
	if uploadsDir == "" {
		uploadsDir = "./uploads"
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx := context.Background()
	uploadRepo := repository.NewUploadRepository(db)

	uploads, err := uploadRepo.ListAll(ctx)
	if err != nil {
		log.Fatalf("listing uploads failed: %v", err)
	}

	known := make(map[string]bool, len(uploads))
	removedRecords := 0
	for _, u := range uploads {
		absPath := filepath.Join(uploadsDir, u.FilePath)
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			if err := uploadRepo.Delete(ctx, u.ID); err != nil {
				log.Printf("failed to delete record %s: %v", u.ID, err)
				continue
			}
			removedRecords++
			continue
		}
		known[filepath.Clean(absPath)] = true
	}

	removedFiles := 0
	err = filepath.Walk(uploadsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if !known[filepath.Clean(path)] {
			if err := os.Remove(path); err != nil {
				log.Printf("failed to remove orphan file %s: %v", path, err)
				return nil
			}
			removedFiles++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("walking uploads dir failed: %v", err)
	}

	log.Printf("media cleanup completed: records=%d files=%d", removedRecords, removedFiles)
}
