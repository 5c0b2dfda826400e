package main

import (
	"log"

	"cliptube/internal/database"
	"cliptube/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// Seeds a local dev database with a few channels that subscribe to each
// other. Run against SQLite: go run ./cmd/seed
func main() {
	db, err := database.Connect("cliptube.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Subscription{},
		&domain.Upload{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM subscriptions")
	db.Exec("DELETE FROM uploads")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	users := []struct {
		username string
		email    string
		fullName string
		password string
	}{
		{"alice", "alice@example.com", "Alice Doe", "password123"},
		{"bob", "bob@example.com", "Bob Doe", "password123"},
		{"carol", "carol@example.com", "Carol Doe", "password123"},
	}

	ids := make(map[string]int64)
	for _, u := range users {
		hash, _ := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		user := domain.User{
			Username:     u.username,
			Email:        u.email,
			FullName:     u.fullName,
			PasswordHash: string(hash),
			AvatarURL:    "/static/uploads/seed/" + u.username + ".png",
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatal("user create failed:", err)
		}
		ids[u.username] = user.ID
	}

	log.Println("Creating subscriptions...")
	pairs := [][2]string{
		{"bob", "alice"},
		{"carol", "alice"},
		{"alice", "bob"},
	}
	for _, p := range pairs {
		sub := domain.Subscription{
			SubscriberID: ids[p[0]],
			ChannelID:    ids[p[1]],
		}
		if err := db.Create(&sub).Error; err != nil {
			log.Fatal("subscription create failed:", err)
		}
	}

	log.Printf("Seed complete: %d users, %d subscriptions", len(users), len(pairs))
}
