package models

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Payout disburses a vendor's available balance. Requesting one
// reserves the covered orders (payout status PENDING); completing it
// marks them PAID in the same transaction, and failure or cancellation
// releases them back to UNPAID so a later payout can pick them up.
type Payout struct {
	ID             int             `gorm:"primary_key" json:"id"`
	PayoutNumber   string          `gorm:"index;size:20;not null" json:"payout_number"`
	SequenceNo     int64           `gorm:"index;not null;default:0" json:"-"`
	VendorId       int             `gorm:"index;not null" json:"vendor_id"`
	State          PayoutState     `gorm:"type:enum('PENDING','PROCESSING','COMPLETED','FAILED','CANCELLED');default:'PENDING'" json:"state"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"amount"`
	GrossRevenue   decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"gross_revenue"`
	Commission     decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"commission"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commission_rate"`
	OrderCount     int             `gorm:"not null" json:"order_count"`
	BankReference  string          `gorm:"size:100" json:"bank_reference"`
	FailureReason  string          `gorm:"size:255" json:"failure_reason"`
	RequestedBy    int             `gorm:"default:0" json:"requested_by"`
	CompletedAt    *time.Time      `json:"completed_at"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Vendor *Vendor `gorm:"foreignKey:VendorId" json:"vendor,omitempty"`
	Orders []Order `gorm:"foreignKey:PayoutId" json:"orders,omitempty"`
}

// RequestPayout snapshots the vendor's current available balance into
// a PENDING payout and reserves the covered orders. The vendor lock
// serializes concurrent requests so two payouts can never claim the
// same order.
func RequestPayout(ctx context.Context, vendorId int) (*Payout, error) {
	role, _ := utils.GetActorRoleFromContext(ctx)
	actorRole := Role(role)
	actorId := utils.GetUserId(ctx)
	if actorRole == RoleVendor {
		user, err := GetUser(ctx, actorId)
		if err != nil {
			return nil, err
		}
		if user.VendorId != vendorId {
			return nil, utils.NewForbidden("user %d may not request payouts for vendor %d", actorId, vendorId)
		}
	} else if !actorRole.IsElevated() {
		return nil, utils.NewForbidden("role %s may not request payouts", role)
	}

	release, err := utils.VendorLock(ctx, vendorId, "payout", "models", "RequestPayout")
	if err != nil {
		return nil, err
	}
	defer release()

	vendor, err := GetVendor(ctx, vendorId)
	if err != nil {
		return nil, err
	}

	var payout Payout
	err = utils.RunInTxWithRetry(ctx, func(tx *gorm.DB) error {
		var orders []*Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Lines").
			Where("vendor_id = ? AND status = ? AND payout_status = ?",
				vendorId, OrderStatusDelivered, OrderPayoutStatusUnpaid).
			Order("id").
			Find(&orders).Error
		if err != nil {
			return utils.NewInternal(err)
		}

		balance := ComputeVendorBalance(vendorId, orders, vendor.EffectiveCommissionRate())
		if balance.OrderCount == 0 || !balance.NetBalance.IsPositive() {
			return utils.NewValidation("vendor %d has no payable balance", vendorId)
		}

		seq, err := utils.GetSequence[Payout](ctx)
		if err != nil {
			return err
		}
		payout = Payout{
			PayoutNumber:   fmt.Sprintf("PO-%06d", seq),
			SequenceNo:     seq,
			VendorId:       vendorId,
			State:          PayoutStatePending,
			Amount:         balance.NetBalance,
			GrossRevenue:   balance.GrossRevenue,
			Commission:     balance.Commission,
			CommissionRate: balance.CommissionRate,
			OrderCount:     balance.OrderCount,
			RequestedBy:    actorId,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return utils.NewInternal(err)
		}

		err = tx.Model(&Order{}).Where("id IN ?", balance.OrderIds).
			Updates(map[string]interface{}{
				"payout_status": OrderPayoutStatusPending,
				"payout_id":     payout.ID,
			}).Error
		if err != nil {
			return utils.NewInternal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

type PayoutTransitionInput struct {
	BankReference string `json:"bank_reference"`
	FailureReason string `json:"failure_reason"`
}

// TransitionPayout moves a payout along its state machine. COMPLETED
// flips every covered order to PAID in the same transaction; FAILED
// and CANCELLED release them back to UNPAID and detach them.
func TransitionPayout(ctx context.Context, payoutId int, target PayoutState, input PayoutTransitionInput) (*Payout, error) {
	role, _ := utils.GetActorRoleFromContext(ctx)
	if !Role(role).IsElevated() {
		return nil, utils.NewForbidden("role %s may not transition payouts", role)
	}

	var payout Payout
	err := utils.RunInTxWithRetry(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&payout, payoutId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.NewNotFound("payout %d not found", payoutId)
			}
			return utils.NewInternal(err)
		}
		if !payout.State.CanTransitionTo(target) {
			return utils.NewInvalidTransition("payout %d cannot move from %s to %s", payoutId, payout.State, target)
		}

		updates := map[string]interface{}{"state": target}
		now := time.Now()
		switch target {
		case PayoutStateCompleted:
			updates["completed_at"] = &now
			if input.BankReference != "" {
				updates["bank_reference"] = input.BankReference
			}
		case PayoutStateFailed:
			if input.FailureReason == "" {
				return utils.NewValidation("a failure reason is required")
			}
			updates["failure_reason"] = input.FailureReason
		}
		if err := tx.Model(&Payout{}).Where("id = ?", payoutId).Updates(updates).Error; err != nil {
			return utils.NewInternal(err)
		}

		switch target {
		case PayoutStateCompleted:
			err := tx.Model(&Order{}).Where("payout_id = ?", payoutId).
				Update("payout_status", OrderPayoutStatusPaid).Error
			if err != nil {
				return utils.NewInternal(err)
			}
		case PayoutStateFailed, PayoutStateCancelled:
			err := tx.Model(&Order{}).Where("payout_id = ?", payoutId).
				Updates(map[string]interface{}{
					"payout_status": OrderPayoutStatusUnpaid,
					"payout_id":     0,
				}).Error
			if err != nil {
				return utils.NewInternal(err)
			}
		}

		payout.State = target
		if target == PayoutStateCompleted {
			payout.CompletedAt = &now
			return QueuePayoutNotification(tx, NotificationEventPayoutCompleted, &payout, utils.GetCorrelationId(ctx))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func GetPayout(ctx context.Context, id int) (*Payout, error) {
	payout, err := utils.FetchModel[Payout](ctx, id, "Orders")
	if err != nil {
		return nil, utils.NewNotFound("payout %d not found", id)
	}
	return payout, nil
}

type PayoutFilter struct {
	VendorId int
	State    PayoutState
	Page     int
	Limit    int
}

func ListPayouts(ctx context.Context, filter PayoutFilter) ([]*Payout, int64, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Payout{})
	if filter.VendorId != 0 {
		query = query.Where("vendor_id = ?", filter.VendorId)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.NewInternal(err)
	}
	var payouts []*Payout
	if err := query.Scopes(Paginate(filter.Page, filter.Limit)).
		Order("id DESC").Find(&payouts).Error; err != nil {
		return nil, 0, utils.NewInternal(err)
	}
	return payouts, total, nil
}
