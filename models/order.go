package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Order is one vendor's slice of a checkout. A multi-vendor cart
// produces several orders sharing a CheckoutId; each order moves
// through the status machine independently.
type Order struct {
	ID            int               `gorm:"primary_key" json:"id"`
	OrderNumber   string            `gorm:"index;size:20;not null" json:"order_number"`
	SequenceNo    int64             `gorm:"index;not null;default:0" json:"-"`
	CheckoutId    string            `gorm:"index;size:36;not null" json:"checkout_id"`
	BuyerId       int               `gorm:"index;not null" json:"buyer_id"`
	VendorId      int               `gorm:"index;not null" json:"vendor_id"`
	Status        OrderStatus       `gorm:"type:enum('PENDING','CONFIRMED','PROCESSING','SHIPPED','DELIVERED','CANCELLED');default:'PENDING'" json:"status"`
	PayoutStatus  OrderPayoutStatus `gorm:"type:enum('UNPAID','PENDING','PAID');default:'UNPAID'" json:"payout_status"`
	PayoutId      int               `gorm:"index;default:0" json:"payout_id"`
	Zone          string            `gorm:"size:50;not null" json:"zone"`
	AddressId     int               `gorm:"default:0" json:"address_id"`
	PaymentMethod PaymentMethod     `gorm:"size:30;default:'CASH_ON_DELIVERY'" json:"payment_method"`
	Subtotal      decimal.Decimal   `gorm:"type:decimal(18,0);not null" json:"subtotal"`
	Discount      decimal.Decimal   `gorm:"type:decimal(18,0);not null" json:"discount"`
	DeliveryFee   decimal.Decimal   `gorm:"type:decimal(18,0);not null" json:"delivery_fee"`
	Total         decimal.Decimal   `gorm:"type:decimal(18,0);not null" json:"total"`
	Note          string            `gorm:"size:255" json:"note"`
	DeliveredAt   *time.Time        `json:"delivered_at"`
	CancelledAt   *time.Time        `json:"cancelled_at"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	Lines         []OrderLine          `gorm:"foreignKey:OrderId" json:"lines,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderId" json:"status_history,omitempty"`
	Vendor        *Vendor              `gorm:"foreignKey:VendorId" json:"vendor,omitempty"`
}

// OrderLine snapshots the product at purchase time; later price or
// name changes never alter an existing order. LineTotal is the
// discounted amount, so Total = sum(LineTotal) + DeliveryFee.
type OrderLine struct {
	ID          int             `gorm:"primary_key" json:"id"`
	OrderId     int             `gorm:"index;not null" json:"order_id"`
	ProductId   int             `gorm:"index;not null" json:"product_id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Sku         string          `gorm:"size:64;not null" json:"sku"`
	Qty         int             `gorm:"not null" json:"qty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"discount"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"line_total"`
	PromotionId int             `gorm:"default:0" json:"promotion_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// OrderStatusHistory records every transition, including the initial
// PENDING entry written at creation.
type OrderStatusHistory struct {
	ID         int         `gorm:"primary_key" json:"id"`
	OrderId    int         `gorm:"index;not null" json:"order_id"`
	FromStatus OrderStatus `gorm:"size:20" json:"from_status"`
	ToStatus   OrderStatus `gorm:"size:20;not null" json:"to_status"`
	ActorId    int         `gorm:"default:0" json:"actor_id"`
	Note       string      `gorm:"size:255" json:"note"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// NewCheckout is the buyer-facing checkout input. IdempotencyKey, when
// set, makes retries return the originally created orders instead of
// charging stock twice.
type NewCheckout struct {
	Lines          []CartLine `json:"lines" validate:"required,min=1,dive"`
	AddressId      int        `json:"address_id" validate:"required"`
	Note           string     `json:"note"`
	IdempotencyKey string     `json:"idempotency_key" validate:"omitempty,max=64"`
}

// CheckoutCart turns a cart into one PENDING order per vendor. Stock
// for every line is decremented inside a single transaction, so a cart
// either reserves everything or nothing.
func CheckoutCart(ctx context.Context, input *NewCheckout) ([]*Order, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	buyerId := utils.GetUserId(ctx)
	if buyerId == 0 {
		return nil, utils.NewForbidden("no authenticated user")
	}

	if input.IdempotencyKey != "" {
		existing, err := FindCheckoutByKey(ctx, buyerId, input.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return GetOrdersByCheckoutId(ctx, existing.CheckoutId)
		}
	}

	address, err := GetAddress(ctx, input.AddressId)
	if err != nil {
		return nil, err
	}
	// An address owned by someone else reads as absent, so the error
	// does not confirm the address exists.
	if address.UserId != buyerId {
		return nil, utils.NewNotFound("address %d not found", input.AddressId)
	}

	groups, err := PreviewCart(ctx, input.Lines, address.Zone)
	if err != nil {
		return nil, err
	}

	checkoutId := uuid.NewString()
	var orders []*Order
	err = utils.RunInTxWithRetry(ctx, func(tx *gorm.DB) error {
		orders = orders[:0]
		for _, group := range groups {
			seq, err := utils.GetSequence[Order](ctx)
			if err != nil {
				return err
			}
			order := &Order{
				OrderNumber:   fmt.Sprintf("SO-%06d", seq),
				SequenceNo:    seq,
				CheckoutId:    checkoutId,
				BuyerId:       buyerId,
				VendorId:      group.Vendor.ID,
				Status:        OrderStatusPending,
				PayoutStatus:  OrderPayoutStatusUnpaid,
				Zone:          address.Zone,
				AddressId:     address.ID,
				PaymentMethod: PaymentMethodCashOnDelivery,
				Subtotal:      group.Subtotal,
				Discount:      group.Discount,
				DeliveryFee:   group.DeliveryFee,
				Total:         group.Total,
				Note:          input.Note,
			}
			if err := tx.Create(order).Error; err != nil {
				return utils.NewInternal(err)
			}

			for _, line := range group.Lines {
				if err := DecrementStock(tx, line.Product.ID, line.Qty, order.ID, StockChangeReasonSale, buyerId); err != nil {
					return err
				}
				orderLine := OrderLine{
					OrderId:     order.ID,
					ProductId:   line.Product.ID,
					ProductName: line.Product.Name,
					Sku:         line.Product.Sku,
					Qty:         line.Qty,
					UnitPrice:   line.UnitPrice,
					Discount:    line.Discount,
					LineTotal:   line.LineTotal,
					PromotionId: line.PromotionId,
				}
				if err := tx.Create(&orderLine).Error; err != nil {
					return utils.NewInternal(err)
				}
				order.Lines = append(order.Lines, orderLine)
			}

			history := OrderStatusHistory{
				OrderId:  order.ID,
				ToStatus: OrderStatusPending,
				ActorId:  buyerId,
			}
			if err := tx.Create(&history).Error; err != nil {
				return utils.NewInternal(err)
			}

			if err := QueueOrderNotification(tx, NotificationEventOrderCreated, order, utils.GetCorrelationId(ctx)); err != nil {
				return err
			}
			orders = append(orders, order)
		}

		if input.IdempotencyKey != "" {
			if err := SaveCheckoutKey(tx, buyerId, input.IdempotencyKey, checkoutId); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	order, err := utils.FetchModel[Order](ctx, id, "Lines", "StatusHistory")
	if err != nil {
		return nil, utils.NewNotFound("order %d not found", id)
	}
	if err := authorizeOrderRead(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func GetOrdersByCheckoutId(ctx context.Context, checkoutId string) ([]*Order, error) {
	db := config.GetDB()
	var orders []*Order
	if err := db.WithContext(ctx).Preload("Lines").
		Where("checkout_id = ?", checkoutId).Order("id").Find(&orders).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	return orders, nil
}

// authorizeOrderRead enforces who may see an order: its buyer, its
// vendor's users, and elevated staff.
func authorizeOrderRead(ctx context.Context, order *Order) error {
	role, _ := utils.GetActorRoleFromContext(ctx)
	actorRole := Role(role)
	if actorRole.IsElevated() {
		return nil
	}
	userId := utils.GetUserId(ctx)
	if actorRole == RoleBuyer && order.BuyerId == userId {
		return nil
	}
	if actorRole == RoleVendor {
		user, err := GetUser(ctx, userId)
		if err == nil && user.VendorId == order.VendorId {
			return nil
		}
	}
	return utils.NewForbidden("order %d is not visible to user %d", order.ID, userId)
}

// TransitionOrder moves an order along the status machine. Only
// elevated roles may call it; buyers go through CancelOrder. Moving to
// CANCELLED returns every line's stock inside the same transaction.
func TransitionOrder(ctx context.Context, orderId int, target OrderStatus, note string) (*Order, error) {
	role, _ := utils.GetActorRoleFromContext(ctx)
	if !Role(role).IsElevated() {
		return nil, utils.NewForbidden("role %s may not transition orders", role)
	}
	return transitionOrder(ctx, orderId, target, note, 0)
}

// CancelOrder is the buyer path: a buyer may cancel their own order
// while it is still PENDING. Elevated roles cancel via TransitionOrder
// at any pre-terminal status.
func CancelOrder(ctx context.Context, orderId int, note string) (*Order, error) {
	role, _ := utils.GetActorRoleFromContext(ctx)
	actorRole := Role(role)
	userId := utils.GetUserId(ctx)

	if actorRole.IsElevated() {
		return transitionOrder(ctx, orderId, OrderStatusCancelled, note, 0)
	}
	if actorRole != RoleBuyer {
		return nil, utils.NewForbidden("role %s may not cancel orders", role)
	}
	return transitionOrder(ctx, orderId, OrderStatusCancelled, note, userId)
}

// transitionOrder does the locked read-check-write. When buyerId is
// non-zero the caller is a buyer cancelling: ownership and PENDING
// status are both required.
func transitionOrder(ctx context.Context, orderId int, target OrderStatus, note string, buyerId int) (*Order, error) {
	actorId := utils.GetUserId(ctx)
	var order Order
	err := utils.RunInTxWithRetry(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Lines").
			First(&order, orderId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.NewNotFound("order %d not found", orderId)
			}
			return utils.NewInternal(err)
		}
		if buyerId != 0 {
			if order.BuyerId != buyerId {
				return utils.NewForbidden("order %d does not belong to user %d", orderId, buyerId)
			}
			if order.Status != OrderStatusPending {
				return utils.NewInvalidTransition("buyers may only cancel PENDING orders; order %d is %s", orderId, order.Status)
			}
		}
		if !order.Status.CanTransitionTo(target) {
			return utils.NewInvalidTransition("order %d cannot move from %s to %s", orderId, order.Status, target)
		}

		updates := map[string]interface{}{"status": target}
		now := time.Now()
		switch target {
		case OrderStatusDelivered:
			updates["delivered_at"] = &now
		case OrderStatusCancelled:
			updates["cancelled_at"] = &now
		}
		if err := tx.Model(&Order{}).Where("id = ?", orderId).Updates(updates).Error; err != nil {
			return utils.NewInternal(err)
		}

		if target == OrderStatusCancelled {
			for _, line := range order.Lines {
				if err := IncrementStock(tx, line.ProductId, line.Qty, order.ID, StockChangeReasonCancellation, actorId); err != nil {
					return err
				}
			}
		}

		history := OrderStatusHistory{
			OrderId:    order.ID,
			FromStatus: order.Status,
			ToStatus:   target,
			ActorId:    actorId,
			Note:       note,
		}
		if err := tx.Create(&history).Error; err != nil {
			return utils.NewInternal(err)
		}

		order.Status = target
		if target == OrderStatusDelivered {
			order.DeliveredAt = &now
		}
		if target == OrderStatusCancelled {
			order.CancelledAt = &now
		}
		return QueueOrderNotification(tx, NotificationEventOrderStatusChanged, &order, utils.GetCorrelationId(ctx))
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderFilter struct {
	BuyerId    int
	VendorId   int
	Status     OrderStatus
	CheckoutId string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

// ListOrders applies role gating on top of the filter: buyers see only
// their own orders, vendor users only their vendor's.
func ListOrders(ctx context.Context, filter OrderFilter) ([]*Order, int64, error) {
	role, _ := utils.GetActorRoleFromContext(ctx)
	actorRole := Role(role)
	userId := utils.GetUserId(ctx)

	switch {
	case actorRole.IsElevated():
	case actorRole == RoleBuyer:
		filter.BuyerId = userId
	case actorRole == RoleVendor:
		user, err := GetUser(ctx, userId)
		if err != nil {
			return nil, 0, err
		}
		filter.VendorId = user.VendorId
	default:
		return nil, 0, utils.NewForbidden("role %s may not list orders", role)
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Order{})
	if filter.BuyerId != 0 {
		query = query.Where("buyer_id = ?", filter.BuyerId)
	}
	if filter.VendorId != 0 {
		query = query.Where("vendor_id = ?", filter.VendorId)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CheckoutId != "" {
		query = query.Where("checkout_id = ?", filter.CheckoutId)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.NewInternal(err)
	}
	var orders []*Order
	if err := query.Scopes(Paginate(filter.Page, filter.Limit)).
		Preload("Lines").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, utils.NewInternal(err)
	}
	return orders, total, nil
}

// OrderStats aggregates order counts per status plus realized revenue
// (the summed total of delivered orders), optionally scoped to a zone.
type OrderStats struct {
	CountsByStatus map[OrderStatus]int64 `json:"counts_by_status"`
	TotalRevenue   decimal.Decimal       `json:"total_revenue"`
}

func GetOrderStats(ctx context.Context, zone string) (*OrderStats, error) {
	role, _ := utils.GetActorRoleFromContext(ctx)
	if !Role(role).IsElevated() {
		return nil, utils.NewForbidden("role %s may not view order stats", role)
	}

	var rows []struct {
		Status  OrderStatus
		Count   int64
		Revenue decimal.Decimal
	}
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Order{}).
		Select("status, count(*) as count, coalesce(sum(total), 0) as revenue").
		Group("status")
	if zone != "" {
		query = query.Where("zone = ?", zone)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, utils.NewInternal(err)
	}

	stats := &OrderStats{CountsByStatus: map[OrderStatus]int64{}, TotalRevenue: decimal.Zero}
	for _, row := range rows {
		stats.CountsByStatus[row.Status] = row.Count
		if row.Status == OrderStatusDelivered {
			stats.TotalRevenue = row.Revenue
		}
	}
	return stats, nil
}
