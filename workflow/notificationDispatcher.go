package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationDispatcher drains the notification outbox. It claims
// batches with SKIP LOCKED so replicas never double-send, publishes
// each row to Pub/Sub (or logs it in direct mode), and retries
// failures with exponential backoff until MaxAttempts moves the row
// to DEAD.
type NotificationDispatcher struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	DispatcherID string

	BatchSize      int
	PollInterval   time.Duration
	LockTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration

	// Direct mode logs deliveries instead of publishing; used when
	// Pub/Sub is not configured.
	Direct bool
}

func NewNotificationDispatcher(db *gorm.DB, logger *logrus.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		DB:             db,
		Logger:         logger,
		DispatcherID:   uuid.NewString(),
		BatchSize:      50,
		PollInterval:   500 * time.Millisecond,
		LockTimeout:    30 * time.Second,
		MaxAttempts:    10,
		InitialBackoff: 5 * time.Second,
		Direct:         config.NotificationDirectProcessing(),
	}
}

func (d *NotificationDispatcher) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.DispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

// DispatchOnce claims one batch and delivers it. Exposed for the
// payout-runner tool and tests; Run loops it.
func (d *NotificationDispatcher) DispatchOnce(ctx context.Context) {
	if d.DB == nil {
		return
	}
	now := time.Now().UTC()
	staleBefore := now.Add(-d.LockTimeout)

	var claimed []models.NotificationRecord
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Eligible rows are PENDING/FAILED and due, or PROCESSING with
		// a stale lock left by a crashed dispatcher.
		q := tx.
			Where(`
				(
					status IN ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
				)
				OR
				(
					status = ? AND locked_at IS NOT NULL AND locked_at <= ?
				)
			`, []string{models.NotificationStatusPending, models.NotificationStatusFailed}, now,
				models.NotificationStatusProcessing, staleBefore).
			Order("id ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		for i := range claimed {
			if d.MaxAttempts > 0 && claimed[i].Attempts >= d.MaxAttempts {
				msg := fmt.Sprintf("max delivery attempts exceeded (%d)", d.MaxAttempts)
				claimed[i].Status = models.NotificationStatusDead
				if err := tx.Model(&models.NotificationRecord{}).Where("id = ?", claimed[i].ID).
					Updates(map[string]interface{}{
						"status":          models.NotificationStatusDead,
						"last_error":      &msg,
						"next_attempt_at": nil,
						"locked_at":       nil,
						"locked_by":       nil,
					}).Error; err != nil {
					return err
				}
				continue
			}
			claimed[i].Status = models.NotificationStatusProcessing
			if err := tx.Model(&models.NotificationRecord{}).Where("id = ?", claimed[i].ID).
				Updates(map[string]interface{}{
					"status":          models.NotificationStatusProcessing,
					"locked_at":       &now,
					"locked_by":       &d.DispatcherID,
					"attempts":        gorm.Expr("attempts + 1"),
					"last_error":      nil,
					"next_attempt_at": nil,
				}).Error; err != nil {
				return err
			}
			claimed[i].Attempts++
		}
		return nil
	})
	if err != nil || len(claimed) == 0 {
		return
	}

	for _, rec := range claimed {
		if rec.Status == models.NotificationStatusDead {
			continue
		}
		if err := d.deliver(ctx, rec); err != nil {
			d.markFailed(ctx, rec, err)
			continue
		}
		d.markSent(ctx, rec.ID, now)
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, rec models.NotificationRecord) error {
	if d.Direct {
		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"recordId":      rec.ID,
				"eventType":     rec.EventType,
				"orderId":       rec.OrderId,
				"payoutId":      rec.PayoutId,
				"correlationId": rec.CorrelationId,
			}).Info("notification delivered directly")
		}
		return nil
	}
	_, err := config.PublishNotification(ctx, rec.ToMessage())
	return err
}

func (d *NotificationDispatcher) markSent(ctx context.Context, recordId int, now time.Time) {
	_ = d.DB.WithContext(ctx).Model(&models.NotificationRecord{}).
		Where("id = ?", recordId).
		Updates(map[string]interface{}{
			"status":          models.NotificationStatusSent,
			"sent_at":         &now,
			"locked_at":       nil,
			"locked_by":       nil,
			"next_attempt_at": nil,
		}).Error
}

func (d *NotificationDispatcher) markFailed(ctx context.Context, rec models.NotificationRecord, cause error) {
	now := time.Now().UTC()
	msg := cause.Error()
	if len(msg) > 250 {
		msg = msg[:250]
	}

	if d.MaxAttempts > 0 && rec.Attempts >= d.MaxAttempts {
		_ = d.DB.WithContext(ctx).Model(&models.NotificationRecord{}).
			Where("id = ?", rec.ID).
			Updates(map[string]interface{}{
				"status":          models.NotificationStatusDead,
				"last_error":      &msg,
				"next_attempt_at": nil,
				"locked_at":       nil,
				"locked_by":       nil,
			}).Error
		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"recordId": rec.ID,
				"attempts": rec.Attempts,
			}).Error("notification moved to DEAD after max attempts: " + msg)
		}
		return
	}

	backoff := d.InitialBackoff
	for i := 1; i < rec.Attempts; i++ {
		backoff *= 2
		if backoff > 10*time.Minute {
			backoff = 10 * time.Minute
			break
		}
	}
	next := now.Add(backoff)
	_ = d.DB.WithContext(ctx).Model(&models.NotificationRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"status":          models.NotificationStatusFailed,
			"last_error":      &msg,
			"next_attempt_at": &next,
			"locked_at":       nil,
			"locked_by":       nil,
		}).Error
}
