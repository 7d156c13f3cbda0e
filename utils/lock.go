package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
)

// VendorLock serializes cross-transaction work on a single vendor
// (payout processing, settlement export). Stock and order writes do not
// need it: they serialize on database row locks.
func VendorLock(ctx context.Context, vendorId int, lockType string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		config.LogError(logger, moduleName, functionName, "Redis lock not initialized", vendorId, errors.New("redis lock is nil"))
		return nil, NewInternal(errors.New("service not ready (redis lock not initialized)"))
	}
	lockKey := fmt.Sprintf("%s:%d", lockType, vendorId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for vendor", vendorId, err)
		return nil, NewConflict("vendor %d is being processed by another worker", vendorId)
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for vendor", vendorId, err)
		return nil, NewInternal(err)
	}
	release := func() {
		_ = lock.Release(ctx)
	}
	return release, nil
}
