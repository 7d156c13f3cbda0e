package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xmustafa5/b2b-exommmerce-sub003/models"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

func promoWindow(now time.Time) (time.Time, time.Time) {
	return now.Add(-time.Hour), now.Add(time.Hour)
}

func activePromo(id, vendorId, productId int, promoType models.PromotionType, value int64, now time.Time) *models.Promotion {
	starts, ends := promoWindow(now)
	return &models.Promotion{
		ID:        id,
		VendorId:  vendorId,
		ProductId: productId,
		Name:      "promo",
		Type:      promoType,
		Value:     decimal.NewFromInt(value),
		StartsAt:  starts,
		EndsAt:    ends,
		IsActive:  utils.NewTrue(),
	}
}

func promoProduct() *models.Product {
	return &models.Product{
		ID:         42,
		VendorId:   7,
		CategoryId: 3,
		Price:      decimal.NewFromInt(5000),
	}
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestResolvePromotion_LargestDiscountWins(t *testing.T) {
	now := time.Now()
	// 10% of 5000 = 500 vs fixed 800: the fixed promotion wins.
	candidates := []*models.Promotion{
		activePromo(1, 7, 0, models.PromotionTypePercentage, 10, now),
		activePromo(2, 7, 0, models.PromotionTypeFixed, 800, now),
	}
	resolved, err := models.ResolvePromotion(candidates, promoProduct(), 1, "KARKH", now)
	if err != nil {
		t.Fatalf("ResolvePromotion: %v", err)
	}
	if resolved == nil {
		t.Fatal("expected a winning promotion")
	}
	if resolved.Promotion.ID != 2 {
		t.Fatalf("expected promotion 2 to win, got %d", resolved.Promotion.ID)
	}
	if !resolved.Discount.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected discount 800, got %s", resolved.Discount)
	}
}

func TestResolvePromotion_TieBreaksToLowestId(t *testing.T) {
	now := time.Now()
	// Both yield 500 on a 5000 line; id 3 must win regardless of slice order.
	a := activePromo(3, 7, 0, models.PromotionTypePercentage, 10, now)
	b := activePromo(9, 7, 0, models.PromotionTypeFixed, 500, now)

	for _, candidates := range [][]*models.Promotion{{a, b}, {b, a}} {
		resolved, err := models.ResolvePromotion(candidates, promoProduct(), 1, "KARKH", now)
		if err != nil {
			t.Fatalf("ResolvePromotion: %v", err)
		}
		if resolved == nil {
			t.Fatal("expected a winning promotion")
		}
		if resolved.Promotion.ID != 3 {
			t.Fatalf("tie must break to lowest id, got %d", resolved.Promotion.ID)
		}
	}
}

func TestResolvePromotion_SkipsInapplicableCandidates(t *testing.T) {
	now := time.Now()
	wrongVendor := activePromo(1, 8, 0, models.PromotionTypeFixed, 900, now)
	wrongProduct := activePromo(2, 7, 99, models.PromotionTypeFixed, 900, now)
	belowMinPurchase := activePromo(3, 7, 0, models.PromotionTypeFixed, 900, now)
	belowMinPurchase.MinPurchase = decimalPtr(50000)
	expired := activePromo(4, 7, 0, models.PromotionTypeFixed, 900, now)
	expired.StartsAt = now.Add(-48 * time.Hour)
	expired.EndsAt = now.Add(-24 * time.Hour)
	disabled := activePromo(5, 7, 0, models.PromotionTypeFixed, 900, now)
	disabled.IsActive = utils.NewFalse()
	wrongCategory := activePromo(6, 7, 0, models.PromotionTypeFixed, 900, now)
	wrongCategory.CategoryIds = []int{11, 12}
	wrongZone := activePromo(8, 7, 0, models.PromotionTypeFixed, 900, now)
	wrongZone.Zones = []string{"RUSAFA"}
	applicable := activePromo(9, 7, 0, models.PromotionTypeFixed, 300, now)

	resolved, err := models.ResolvePromotion(
		[]*models.Promotion{wrongVendor, wrongProduct, belowMinPurchase, expired, disabled, wrongCategory, wrongZone, applicable},
		promoProduct(), 2, "KARKH", now)
	if err != nil {
		t.Fatalf("ResolvePromotion: %v", err)
	}
	if resolved == nil {
		t.Fatal("expected the applicable promotion to win")
	}
	if resolved.Promotion.ID != 9 {
		t.Fatalf("expected promotion 9, got %d", resolved.Promotion.ID)
	}
}

func TestResolvePromotion_CategoryZoneAndMinPurchaseMatch(t *testing.T) {
	now := time.Now()
	// Product 42 is category 3, and the qty-2 line totals 10,000:
	// matching category, zone and threshold make the candidate apply.
	promo := activePromo(1, 7, 0, models.PromotionTypeFixed, 700, now)
	promo.CategoryIds = []int{3, 4}
	promo.Zones = []string{"KARKH", "MANSOUR"}
	promo.MinPurchase = decimalPtr(10000)

	resolved, err := models.ResolvePromotion([]*models.Promotion{promo}, promoProduct(), 2, "KARKH", now)
	if err != nil {
		t.Fatalf("ResolvePromotion: %v", err)
	}
	if resolved == nil || resolved.Promotion.ID != 1 {
		t.Fatal("expected the scoped promotion to apply")
	}

	// One unit short of the threshold drops it.
	resolved, err = models.ResolvePromotion([]*models.Promotion{promo}, promoProduct(), 1, "KARKH", now)
	if err != nil {
		t.Fatalf("ResolvePromotion: %v", err)
	}
	if resolved != nil {
		t.Fatalf("below the purchase threshold, expected nil, got promotion %d", resolved.Promotion.ID)
	}
}

func TestResolvePromotion_UnsupportedTypeFailsLoudly(t *testing.T) {
	now := time.Now()
	// An applicable promotion of an uncomputable type must surface the
	// error, never price as zero and lose to a lesser candidate.
	for _, promoType := range []models.PromotionType{models.PromotionTypeBuyXGetY, models.PromotionTypeBundle} {
		candidates := []*models.Promotion{
			activePromo(1, 7, 0, promoType, 900, now),
			activePromo(2, 7, 0, models.PromotionTypeFixed, 300, now),
		}
		resolved, err := models.ResolvePromotion(candidates, promoProduct(), 1, "KARKH", now)
		if err == nil {
			t.Fatalf("%s must surface an error, got promotion %v", promoType, resolved)
		}
		if !utils.IsKind(err, utils.ErrorKindValidation) {
			t.Fatalf("%s: expected validation kind, got %v", promoType, err)
		}
	}
}

func TestResolvePromotion_NoCandidates(t *testing.T) {
	now := time.Now()
	resolved, err := models.ResolvePromotion(nil, promoProduct(), 1, "KARKH", now)
	if err != nil {
		t.Fatalf("ResolvePromotion: %v", err)
	}
	if resolved != nil {
		t.Fatalf("expected nil, got promotion %d", resolved.Promotion.ID)
	}
}

func TestPromotionDiscount_PercentageFloorsAndCaps(t *testing.T) {
	now := time.Now()
	// 3% of 1,111 fils = 33.33, floored to 33.
	percent := activePromo(1, 7, 0, models.PromotionTypePercentage, 3, now)
	discount, err := percent.Discount(decimal.NewFromInt(1111))
	if err != nil {
		t.Fatalf("Discount: %v", err)
	}
	if !discount.Equal(decimal.NewFromInt(33)) {
		t.Fatalf("expected 33, got %s", discount)
	}

	// 10% of 50,000 is 5,000 but the promotion caps at 1,500.
	capped := activePromo(2, 7, 0, models.PromotionTypePercentage, 10, now)
	capped.MaxDiscount = decimalPtr(1500)
	discount, err = capped.Discount(decimal.NewFromInt(50000))
	if err != nil {
		t.Fatalf("Discount: %v", err)
	}
	if !discount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("expected cap at 1500, got %s", discount)
	}

	// A fixed discount larger than the line is capped at the line.
	fixed := activePromo(3, 7, 0, models.PromotionTypeFixed, 9000, now)
	discount, err = fixed.Discount(decimal.NewFromInt(5000))
	if err != nil {
		t.Fatalf("Discount: %v", err)
	}
	if !discount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected cap at 5000, got %s", discount)
	}
}

func TestPromotionDiscount_UnsupportedTypes(t *testing.T) {
	now := time.Now()
	for _, promoType := range []models.PromotionType{models.PromotionTypeBuyXGetY, models.PromotionTypeBundle} {
		promo := activePromo(1, 7, 0, promoType, 10, now)
		_, err := promo.Discount(decimal.NewFromInt(5000))
		if err == nil {
			t.Fatalf("%s must return an error", promoType)
		}
		if !utils.IsKind(err, utils.ErrorKindValidation) {
			t.Fatalf("%s: expected validation kind, got %v", promoType, err)
		}
	}
}

func TestCreatePromotion_RejectsUncomputableTypes(t *testing.T) {
	now := time.Now()
	starts, ends := promoWindow(now)
	for _, promoType := range []models.PromotionType{models.PromotionTypeBuyXGetY, models.PromotionTypeBundle} {
		_, err := models.CreatePromotion(context.Background(), &models.NewPromotion{
			VendorId: 7,
			Name:     "bundle deal",
			Type:     promoType,
			Value:    decimal.NewFromInt(900),
			StartsAt: starts,
			EndsAt:   ends,
		})
		if err == nil {
			t.Fatalf("%s must be rejected at creation", promoType)
		}
		if !utils.IsKind(err, utils.ErrorKindValidation) {
			t.Fatalf("%s: expected validation kind, got %v", promoType, err)
		}
	}
}
