package utils

import (
	"context"
	"strings"
	"time"

	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"gorm.io/gorm"
)

// RunInTxWithRetry executes fn inside a database transaction.
// Business errors surface unchanged (deterministic, retry is pointless).
// A deadlock or lock-wait timeout is retried once with backoff before
// being surfaced as Internal.
func RunInTxWithRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := config.GetDB()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return NewInternal(ctx.Err())
			case <-time.After(time.Duration(50*(attempt)) * time.Millisecond):
			}
		}

		err := db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if !isTransientDBError(err) {
			return err
		}
		lastErr = err
	}
	return NewInternal(lastErr)
}

// MySQL: 1213 deadlock, 1205 lock wait timeout.
func isTransientDBError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1213") ||
		strings.Contains(msg, "Error 1205") ||
		strings.Contains(msg, "Deadlock found") ||
		strings.Contains(msg, "Lock wait timeout")
}
