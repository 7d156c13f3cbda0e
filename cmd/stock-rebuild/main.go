// stock-rebuild replays every product's stock ledger and corrects
// Product.Stock where the stored value has drifted. With --dry-run it
// only reports drift.
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/stock-rebuild [--dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/models"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report drift without writing corrections")
	flag.Parse()

	_ = godotenv.Load()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	ctx := context.Background()

	if *dryRun {
		var ids []int
		if err := db.WithContext(ctx).Model(&models.Product{}).Pluck("id", &ids).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to list products: %v\n", err)
			os.Exit(1)
		}
		drifted := 0
		for _, id := range ids {
			replayed, err := models.ReplayStockChanges(ctx, id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "replay failed for product %d: %v\n", id, err)
				os.Exit(1)
			}
			var product models.Product
			if err := db.WithContext(ctx).Select("id", "stock").First(&product, id).Error; err != nil {
				fmt.Fprintf(os.Stderr, "failed to read product %d: %v\n", id, err)
				os.Exit(1)
			}
			if product.Stock != replayed {
				drifted++
				fmt.Printf("product %d: stored=%d replayed=%d\n", id, product.Stock, replayed)
			}
		}
		fmt.Printf("dry run complete: %d of %d products drifted\n", drifted, len(ids))
		return
	}

	corrected, err := models.RebuildProductStock(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild failed after %d corrections: %v\n", corrected, err)
		os.Exit(1)
	}
	fmt.Printf("rebuild complete: %d products corrected\n", corrected)
}
