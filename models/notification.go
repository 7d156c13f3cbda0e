package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
	"gorm.io/gorm"
)

const (
	NotificationStatusPending    = "PENDING"
	NotificationStatusProcessing = "PROCESSING"
	NotificationStatusSent       = "SENT"
	NotificationStatusFailed     = "FAILED"
	NotificationStatusDead       = "DEAD"
)

// NotificationRecord is a transactional outbox row. Order and payout
// events are written in the same transaction as the state change and
// dispatched asynchronously, so an event exists iff the change
// committed. The lock columns let several dispatcher replicas share
// the queue and reclaim rows from a crashed peer.
type NotificationRecord struct {
	ID            int                   `gorm:"primary_key" json:"id"`
	EventType     NotificationEventType `gorm:"size:40;not null" json:"event_type"`
	OrderId       int                   `gorm:"index;default:0" json:"order_id"`
	PayoutId      int                   `gorm:"index;default:0" json:"payout_id"`
	UserId        int                   `gorm:"default:0" json:"user_id"`
	VendorId      int                   `gorm:"default:0" json:"vendor_id"`
	Payload       string                `gorm:"type:text" json:"payload"`
	CorrelationId string                `gorm:"size:64" json:"correlation_id"`
	Status        string                `gorm:"index;size:20;default:'PENDING'" json:"status"`
	Attempts      int                   `gorm:"not null;default:0" json:"attempts"`
	LastError     *string               `gorm:"size:255" json:"last_error"`
	NextAttemptAt *time.Time            `json:"next_attempt_at"`
	LockedAt      *time.Time            `json:"locked_at"`
	LockedBy      *string               `gorm:"size:64" json:"locked_by"`
	SentAt        *time.Time            `json:"sent_at"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
}

// ToMessage converts an outbox row to the Pub/Sub wire form.
func (r NotificationRecord) ToMessage() config.NotificationMessage {
	return config.NotificationMessage{
		ID:            r.ID,
		EventType:     string(r.EventType),
		OrderId:       r.OrderId,
		UserId:        r.UserId,
		VendorId:      r.VendorId,
		Payload:       []byte(r.Payload),
		CorrelationId: r.CorrelationId,
		OccurredAt:    r.CreatedAt,
	}
}

// QueueOrderNotification appends an outbox row for an order event
// inside the caller's transaction.
func QueueOrderNotification(tx *gorm.DB, eventType NotificationEventType, order *Order, correlationId string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"total":        order.Total,
	})
	if err != nil {
		return utils.NewInternal(err)
	}
	record := NotificationRecord{
		EventType:     eventType,
		OrderId:       order.ID,
		UserId:        order.BuyerId,
		VendorId:      order.VendorId,
		Payload:       string(payload),
		CorrelationId: correlationId,
		Status:        NotificationStatusPending,
	}
	if err := tx.Create(&record).Error; err != nil {
		return utils.NewInternal(err)
	}
	return nil
}

func QueuePayoutNotification(tx *gorm.DB, eventType NotificationEventType, payout *Payout, correlationId string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"payout_number": payout.PayoutNumber,
		"state":         payout.State,
		"amount":        payout.Amount,
	})
	if err != nil {
		return utils.NewInternal(err)
	}
	record := NotificationRecord{
		EventType:     eventType,
		PayoutId:      payout.ID,
		VendorId:      payout.VendorId,
		Payload:       string(payload),
		CorrelationId: correlationId,
		Status:        NotificationStatusPending,
	}
	if err := tx.Create(&record).Error; err != nil {
		return utils.NewInternal(err)
	}
	return nil
}

// CountUnsentNotifications is used by health checks and tests.
func CountUnsentNotifications(ctx context.Context) (int64, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&NotificationRecord{}).
		Where("status IN ?", []string{NotificationStatusPending, NotificationStatusProcessing, NotificationStatusFailed}).
		Count(&count).Error
	if err != nil {
		return 0, utils.NewInternal(err)
	}
	return count, nil
}
