// payout-runner requests payouts for every vendor with a payable
// balance, in one sweep. Run it on a schedule (e.g. weekly) for
// platform-initiated disbursement; vendor-initiated requests go
// through models.RequestPayout directly.
//
// Usage:
//   DB_* and REDIS_* env vars set, then:
//   go run ./cmd/payout-runner [--vendor-id N]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/models"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

func main() {
	vendorId := flag.Int("vendor-id", 0, "Optional: restrict to one vendor")
	flag.Parse()

	_ = godotenv.Load()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	// The runner acts as platform staff; one correlation id per sweep.
	ctx := utils.SetActorRoleInContext(context.Background(), string(models.RoleAdmin))
	ctx = utils.SetUserNameInContext(ctx, "payout-runner")
	ctx = utils.SetCorrelationIdInContext(ctx, uuid.NewString())

	var vendorIds []int
	if *vendorId != 0 {
		vendorIds = []int{*vendorId}
	} else {
		err := db.WithContext(ctx).Model(&models.Vendor{}).
			Where("is_active = ?", true).Pluck("id", &vendorIds).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list vendors: %v\n", err)
			os.Exit(1)
		}
	}

	requested, skipped := 0, 0
	for _, id := range vendorIds {
		payout, err := models.RequestPayout(ctx, id)
		if err != nil {
			if utils.IsKind(err, utils.ErrorKindValidation) {
				skipped++
				continue
			}
			fmt.Fprintf(os.Stderr, "payout request failed for vendor %d: %v\n", id, err)
			os.Exit(1)
		}
		requested++
		fmt.Printf("vendor %d: payout %s for %s\n", id, payout.PayoutNumber, payout.Amount.String())
	}
	fmt.Printf("done: %d payouts requested, %d vendors had no payable balance\n", requested, skipped)
}
