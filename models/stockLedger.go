package models

import (
	"context"
	"time"

	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockChangeRecord is an append-only ledger entry. Every mutation of
// Product.Stock writes exactly one record in the same transaction, so
// replaying a product's records from zero reproduces its current stock.
type StockChangeRecord struct {
	ID         int               `gorm:"primary_key" json:"id"`
	ProductId  int               `gorm:"index;not null" json:"product_id"`
	Delta      int               `gorm:"not null" json:"delta"`
	StockAfter int               `gorm:"not null" json:"stock_after"`
	Reason     StockChangeReason `gorm:"type:enum('SALE','CANCELLATION','ADJUSTMENT','RETURN');not null" json:"reason"`
	OrderId    int               `gorm:"index;default:0" json:"order_id"`
	ActorId    int               `gorm:"default:0" json:"actor_id"`
	Note       string            `gorm:"size:255" json:"note"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeSave rejects records that would let the ledger drift from the
// product row: delta must be non-zero and stock may never go negative.
func (r *StockChangeRecord) BeforeSave(tx *gorm.DB) error {
	if r.Delta == 0 {
		return utils.NewValidation("stock change delta must be non-zero")
	}
	if r.StockAfter < 0 {
		return utils.NewValidation("stock after change must not be negative")
	}
	return nil
}

// lockProduct reads the product row FOR UPDATE so concurrent stock
// mutations for the same product serialize.
func lockProduct(tx *gorm.DB, productId int) (*Product, error) {
	var product Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productId).Error
	if err == gorm.ErrRecordNotFound {
		return nil, utils.NewNotFound("product %d not found", productId)
	}
	if err != nil {
		return nil, utils.NewInternal(err)
	}
	return &product, nil
}

// DecrementStock reserves qty units of a product for an order. Fails
// with an insufficient-stock error when fewer than qty units remain;
// the error names the product and both quantities so the caller can
// surface it per line.
func DecrementStock(tx *gorm.DB, productId, qty, orderId int, reason StockChangeReason, actorId int) error {
	if qty <= 0 {
		return utils.NewValidation("quantity must be positive, got %d", qty)
	}
	product, err := lockProduct(tx, productId)
	if err != nil {
		return err
	}
	if product.Stock < qty {
		return utils.NewInsufficientStock("product %d %q: requested %d, available %d",
			product.ID, product.Name, qty, product.Stock)
	}

	newStock := product.Stock - qty
	if err := tx.Model(&Product{}).Where("id = ?", productId).
		Update("stock", newStock).Error; err != nil {
		return utils.NewInternal(err)
	}
	record := StockChangeRecord{
		ProductId:  productId,
		Delta:      -qty,
		StockAfter: newStock,
		Reason:     reason,
		OrderId:    orderId,
		ActorId:    actorId,
	}
	if err := tx.Create(&record).Error; err != nil {
		return utils.NewInternal(err)
	}
	return nil
}

// IncrementStock returns qty units to a product, e.g. on cancellation.
func IncrementStock(tx *gorm.DB, productId, qty, orderId int, reason StockChangeReason, actorId int) error {
	if qty <= 0 {
		return utils.NewValidation("quantity must be positive, got %d", qty)
	}
	product, err := lockProduct(tx, productId)
	if err != nil {
		return err
	}

	newStock := product.Stock + qty
	if err := tx.Model(&Product{}).Where("id = ?", productId).
		Update("stock", newStock).Error; err != nil {
		return utils.NewInternal(err)
	}
	record := StockChangeRecord{
		ProductId:  productId,
		Delta:      qty,
		StockAfter: newStock,
		Reason:     reason,
		OrderId:    orderId,
		ActorId:    actorId,
	}
	if err := tx.Create(&record).Error; err != nil {
		return utils.NewInternal(err)
	}
	return nil
}

// AdjustStock sets a product's stock to an absolute value, recording
// the difference as an ADJUSTMENT. This is the only manual write path
// for stock.
func AdjustStock(ctx context.Context, productId, newStock int, note string) (*Product, error) {
	if newStock < 0 {
		return nil, utils.NewValidation("stock must not be negative, got %d", newStock)
	}
	actorId := utils.GetUserId(ctx)

	var product *Product
	err := utils.RunInTxWithRetry(ctx, func(tx *gorm.DB) error {
		locked, err := lockProduct(tx, productId)
		if err != nil {
			return err
		}
		delta := newStock - locked.Stock
		if delta == 0 {
			product = locked
			return nil
		}
		if err := tx.Model(&Product{}).Where("id = ?", productId).
			Update("stock", newStock).Error; err != nil {
			return utils.NewInternal(err)
		}
		record := StockChangeRecord{
			ProductId:  productId,
			Delta:      delta,
			StockAfter: newStock,
			Reason:     StockChangeReasonAdjustment,
			ActorId:    actorId,
			Note:       note,
		}
		if err := tx.Create(&record).Error; err != nil {
			return utils.NewInternal(err)
		}
		locked.Stock = newStock
		product = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedis[Product](productId); err != nil {
		return nil, utils.NewInternal(err)
	}
	return product, nil
}

// ListStockChanges returns a product's ledger newest-first.
func ListStockChanges(ctx context.Context, productId, page, limit int) ([]*StockChangeRecord, int64, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&StockChangeRecord{}).
		Where("product_id = ?", productId)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.NewInternal(err)
	}
	var records []*StockChangeRecord
	if err := query.Scopes(Paginate(page, limit)).
		Order("id DESC").Find(&records).Error; err != nil {
		return nil, 0, utils.NewInternal(err)
	}
	return records, total, nil
}

// ReplayStockChanges folds a product's ledger from zero. Used by the
// stock-rebuild tool and the ledger consistency check.
func ReplayStockChanges(ctx context.Context, productId int) (int, error) {
	db := config.GetDB()
	var records []*StockChangeRecord
	if err := db.WithContext(ctx).Where("product_id = ?", productId).
		Order("id").Find(&records).Error; err != nil {
		return 0, utils.NewInternal(err)
	}
	stock := 0
	for _, r := range records {
		stock += r.Delta
	}
	return stock, nil
}

// RebuildProductStock rewrites Product.Stock from the ledger when the
// two disagree, logging each correction. Returns the number of
// products corrected.
func RebuildProductStock(ctx context.Context) (int, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	var ids []int
	if err := db.WithContext(ctx).Model(&Product{}).Pluck("id", &ids).Error; err != nil {
		return 0, utils.NewInternal(err)
	}

	corrected := 0
	for _, id := range ids {
		replayed, err := ReplayStockChanges(ctx, id)
		if err != nil {
			return corrected, err
		}
		err = utils.RunInTxWithRetry(ctx, func(tx *gorm.DB) error {
			product, err := lockProduct(tx, id)
			if err != nil {
				return err
			}
			if product.Stock == replayed {
				return nil
			}
			config.LogWarn(logger, "models", "RebuildProductStock", "stock drift corrected", map[string]interface{}{
				"productId": id,
				"stored":    product.Stock,
				"replayed":  replayed,
			})
			corrected++
			return tx.Model(&Product{}).Where("id = ?", id).
				Update("stock", replayed).Error
		})
		if err != nil {
			return corrected, err
		}
	}
	return corrected, nil
}
