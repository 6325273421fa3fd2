// Migration script to hash plaintext passwords left by imports
// cmd/migrate-passwords/main.go
package main

import (
	"flag"
	"log"

	"job-board-api/config"
	"job-board-api/models"
	"job-board-api/utils"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dryRun := flag.Bool("dry-run", false, "report users that would be updated without writing")
	flag.Parse()

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	config.InitDB(settings)

	var users []models.User
	if err := config.DB.Select("id", "email", "password").Find(&users).Error; err != nil {
		log.Fatal("Failed to fetch users:", err)
	}

	updated, skipped, failed := 0, 0, 0
	for _, user := range users {
		if utils.IsHashed(user.Password) {
			skipped++
			continue
		}
		if *dryRun {
			log.Printf("User %s has a plaintext password\n", user.Email)
			updated++
			continue
		}

		hashedPassword, err := utils.HashPassword(user.Password)
		if err != nil {
			log.Printf("Failed to hash password for user %s: %v\n", user.Email, err)
			failed++
			continue
		}

		if err := config.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("password", hashedPassword).Error; err != nil {
			log.Printf("Failed to update password for user %s: %v\n", user.Email, err)
			failed++
			continue
		}

		log.Printf("Successfully updated password for user %s\n", user.Email)
		updated++
	}

	log.Printf("Password migration completed: updated=%d skipped=%d failed=%d dry_run=%v", updated, skipped, failed, *dryRun)
}
