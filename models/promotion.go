package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

// Promotion discounts a single cart line. It targets either one product
// or a whole vendor's catalog (ProductId 0), optionally narrowed by
// category and delivery zone, within an active window. MinPurchase is
// a threshold on the line's pre-discount total; MaxDiscount caps a
// percentage discount.
type Promotion struct {
	ID          int              `gorm:"primary_key" json:"id"`
	VendorId    int              `gorm:"index;not null" json:"vendor_id"`
	ProductId   int              `gorm:"index;default:0" json:"product_id"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Type        PromotionType    `gorm:"type:enum('PERCENTAGE','FIXED','BUY_X_GET_Y','BUNDLE');not null" json:"type"`
	Value       decimal.Decimal  `gorm:"type:decimal(18,0);not null" json:"value"`
	MaxDiscount *decimal.Decimal `gorm:"type:decimal(18,0)" json:"max_discount,omitempty"`
	MinPurchase *decimal.Decimal `gorm:"type:decimal(18,0)" json:"min_purchase,omitempty"`
	CategoryIds []int            `gorm:"serializer:json" json:"category_ids,omitempty"`
	Zones       []string         `gorm:"serializer:json" json:"zones,omitempty"`
	StartsAt    time.Time        `json:"starts_at"`
	EndsAt      time.Time        `json:"ends_at"`
	IsActive    *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPromotion struct {
	VendorId    int              `json:"vendor_id" validate:"required"`
	ProductId   int              `json:"product_id"`
	Name        string           `json:"name" validate:"required"`
	Type        PromotionType    `json:"type" validate:"required"`
	Value       decimal.Decimal  `json:"value"`
	MaxDiscount *decimal.Decimal `json:"max_discount"`
	MinPurchase *decimal.Decimal `json:"min_purchase"`
	CategoryIds []int            `json:"category_ids"`
	Zones       []string         `json:"zones"`
	StartsAt    time.Time        `json:"starts_at" validate:"required"`
	EndsAt      time.Time        `json:"ends_at" validate:"required"`
}

// ActiveAt reports whether the promotion window covers now.
func (p Promotion) ActiveAt(now time.Time) bool {
	if p.IsActive != nil && !*p.IsActive {
		return false
	}
	return !now.Before(p.StartsAt) && now.Before(p.EndsAt)
}

// AppliesTo reports whether the promotion covers the given line. Empty
// category and zone lists mean no restriction.
func (p Promotion) AppliesTo(product *Product, buyerZone string, lineSubtotal decimal.Decimal) bool {
	if p.VendorId != product.VendorId {
		return false
	}
	if p.ProductId != 0 && p.ProductId != product.ID {
		return false
	}
	if len(p.CategoryIds) > 0 && !utils.ContainsInt(p.CategoryIds, product.CategoryId) {
		return false
	}
	if len(p.Zones) > 0 && !utils.ContainsString(p.Zones, buyerZone) {
		return false
	}
	if p.MinPurchase != nil && lineSubtotal.LessThan(*p.MinPurchase) {
		return false
	}
	return true
}

// Discount computes the promotion's discount for a line subtotal in
// minor units. The result is never negative and never exceeds the
// subtotal; a percentage discount is additionally capped at
// MaxDiscount when one is set. BUY_X_GET_Y and BUNDLE are declared
// but not computable and return a validation error naming the type.
func (p Promotion) Discount(lineSubtotal decimal.Decimal) (decimal.Decimal, error) {
	switch p.Type {
	case PromotionTypePercentage:
		discount := lineSubtotal.Mul(p.Value).Div(decimal.NewFromInt(100)).Floor()
		if p.MaxDiscount != nil && discount.GreaterThan(*p.MaxDiscount) {
			discount = *p.MaxDiscount
		}
		if discount.GreaterThan(lineSubtotal) {
			discount = lineSubtotal
		}
		if discount.IsNegative() {
			return decimal.Zero, nil
		}
		return discount, nil
	case PromotionTypeFixed:
		discount := p.Value
		if discount.GreaterThan(lineSubtotal) {
			discount = lineSubtotal
		}
		if discount.IsNegative() {
			return decimal.Zero, nil
		}
		return discount, nil
	default:
		return decimal.Zero, utils.NewValidation("promotion type %s is not supported for line discounts", p.Type)
	}
}

// ResolvedPromotion is the winning promotion for one cart line.
type ResolvedPromotion struct {
	Promotion *Promotion
	Discount  decimal.Decimal
}

// ResolvePromotion picks the single best promotion for a line out of
// the candidates: largest discount wins, ties break to the lowest
// promotion id so resolution is deterministic. Candidates that do not
// apply or are outside their window are skipped; an applicable
// candidate whose type cannot be priced surfaces its error rather
// than being silently worth zero. Returns nil when nothing applies.
func ResolvePromotion(candidates []*Promotion, product *Product, qty int, buyerZone string, now time.Time) (*ResolvedPromotion, error) {
	lineSubtotal := product.Price.Mul(decimal.NewFromInt(int64(qty)))

	var best *ResolvedPromotion
	for _, candidate := range candidates {
		if !candidate.ActiveAt(now) || !candidate.AppliesTo(product, buyerZone, lineSubtotal) {
			continue
		}
		discount, err := candidate.Discount(lineSubtotal)
		if err != nil {
			return nil, err
		}
		if !discount.IsPositive() {
			continue
		}
		if best == nil ||
			discount.GreaterThan(best.Discount) ||
			(discount.Equal(best.Discount) && candidate.ID < best.Promotion.ID) {
			best = &ResolvedPromotion{Promotion: candidate, Discount: discount}
		}
	}
	return best, nil
}

func CreatePromotion(ctx context.Context, input *NewPromotion) (*Promotion, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if _, err := PromotionTypeFromString(string(input.Type)); err != nil {
		return nil, err
	}
	switch input.Type {
	case PromotionTypePercentage:
		if !input.Value.IsPositive() || input.Value.GreaterThan(decimal.NewFromInt(100)) {
			return nil, utils.NewValidation("percentage value must be between 1 and 100")
		}
	case PromotionTypeFixed:
		if !input.Value.IsPositive() {
			return nil, utils.NewValidation("fixed value must be positive")
		}
	default:
		return nil, utils.NewValidation("promotion type %s is not supported for line discounts", input.Type)
	}
	if input.MaxDiscount != nil && !input.MaxDiscount.IsPositive() {
		return nil, utils.NewValidation("max discount must be positive when set")
	}
	if input.MinPurchase != nil && !input.MinPurchase.IsPositive() {
		return nil, utils.NewValidation("minimum purchase must be positive when set")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, utils.NewValidation("promotion window must end after it starts")
	}
	if err := utils.ValidateResourceId[Vendor](ctx, input.VendorId); err != nil {
		return nil, utils.NewNotFound("vendor %d not found", input.VendorId)
	}
	if input.ProductId != 0 {
		product, err := GetProduct(ctx, input.ProductId)
		if err != nil {
			return nil, err
		}
		if product.VendorId != input.VendorId {
			return nil, utils.NewValidation("product %d does not belong to vendor %d", input.ProductId, input.VendorId)
		}
	}
	for _, categoryId := range input.CategoryIds {
		if err := utils.ValidateResourceId[ProductCategory](ctx, categoryId); err != nil {
			return nil, utils.NewValidation("unknown category %d", categoryId)
		}
	}
	for _, zone := range input.Zones {
		if err := utils.ValidateResourceId[Zone](ctx, zone); err != nil {
			return nil, utils.NewValidation("unknown zone %q", zone)
		}
	}

	promotion := Promotion{
		VendorId:    input.VendorId,
		ProductId:   input.ProductId,
		Name:        input.Name,
		Type:        input.Type,
		Value:       input.Value,
		MaxDiscount: input.MaxDiscount,
		MinPurchase: input.MinPurchase,
		CategoryIds: input.CategoryIds,
		Zones:       input.Zones,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&promotion).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	return &promotion, nil
}

// GetActivePromotions loads every promotion that could apply to any of
// the given vendors' lines at the given time, in one query.
func GetActivePromotions(ctx context.Context, vendorIds []int, now time.Time) ([]*Promotion, error) {
	db := config.GetDB()
	var promotions []*Promotion
	err := db.WithContext(ctx).
		Where("vendor_id IN ?", utils.UniqueSlice(vendorIds)).
		Where("is_active = ?", true).
		Where("starts_at <= ? AND ends_at > ?", now, now).
		Order("id").
		Find(&promotions).Error
	if err != nil {
		return nil, utils.NewInternal(err)
	}
	return promotions, nil
}
