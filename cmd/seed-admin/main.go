// seed-admin creates or updates the platform admin user.
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//   ADMIN_EMAIL=admin@example.com ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/models"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_EMAIL and ADMIN_PASSWORD are required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	ctx := context.Background()

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err = db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		admin := models.User{
			Name:         "Platform Admin",
			Email:        email,
			PasswordHash: hashed,
			Role:         models.RoleAdmin,
			IsActive:     utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created admin user %d (%s)\n", admin.ID, email)
	case err != nil:
		fmt.Fprintf(os.Stderr, "failed to look up admin: %v\n", err)
		os.Exit(1)
	default:
		if utils.ComparePassword(existing.PasswordHash, password) == nil && existing.Role == models.RoleAdmin {
			fmt.Printf("admin user %d (%s) already up to date\n", existing.ID, email)
			return
		}
		err = db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
			"password_hash": hashed,
			"role":          models.RoleAdmin,
			"is_active":     true,
		}).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to update admin: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("updated admin user %d (%s)\n", existing.ID, email)
	}
}
