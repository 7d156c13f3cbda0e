package models

import (
	"context"
	"time"

	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
	"gorm.io/gorm"
)

// IdempotencyKey maps a buyer-supplied checkout key to the checkout it
// produced, so a retried request returns the same orders.
type IdempotencyKey struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BuyerId    int       `gorm:"uniqueIndex:idx_buyer_key;not null" json:"buyer_id"`
	Key        string    `gorm:"uniqueIndex:idx_buyer_key;size:64;not null" json:"key"`
	CheckoutId string    `gorm:"size:36;not null" json:"checkout_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func FindCheckoutByKey(ctx context.Context, buyerId int, key string) (*IdempotencyKey, error) {
	db := config.GetDB()
	var record IdempotencyKey
	err := db.WithContext(ctx).
		Where("buyer_id = ? AND `key` = ?", buyerId, key).
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewInternal(err)
	}
	return &record, nil
}

// SaveCheckoutKey runs inside the checkout transaction; the unique
// index turns a concurrent duplicate into a rollback of the second
// checkout rather than a double stock charge.
func SaveCheckoutKey(tx *gorm.DB, buyerId int, key, checkoutId string) error {
	record := IdempotencyKey{BuyerId: buyerId, Key: key, CheckoutId: checkoutId}
	if err := tx.Create(&record).Error; err != nil {
		return utils.NewConflict("checkout key %q was already used", key)
	}
	return nil
}
