// migrate creates or alters every table and seeds the default delivery
// zones.
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/migrate
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/models"
)

func main() {
	_ = godotenv.Load()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if err := models.MigrateTables(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	if err := models.SeedZones(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "zone seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("migration complete")
}
