// The engine worker: connects the database and redis, then drains the
// notification outbox until terminated. Order, stock, and payout
// operations live in the models package and are embedded by callers;
// this process only carries the asynchronous side.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/workflow"
)

func main() {
	_ = godotenv.Load()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	logger := config.GetLogger()
	db := config.GetDB()
	if db == nil {
		logger.Fatal("database not initialized; set DB_* env vars")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !config.NotificationDirectProcessing() {
		if _, err := config.GetClient(ctx); err != nil {
			logger.Fatalf("pubsub client init failed: %v", err)
		}
	}

	dispatcher := workflow.NewNotificationDispatcher(db, logger)
	logger.WithField("dispatcherId", dispatcher.DispatcherID).Warn("notification dispatcher started")
	dispatcher.Run(ctx)
	logger.Warn("notification dispatcher stopped")
	os.Exit(0)
}
