package models_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xmustafa5/b2b-exommmerce-sub003/models"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

func cartFixtures() (map[int]*models.Product, map[int]*models.Vendor) {
	vendors := map[int]*models.Vendor{
		7: {ID: 7, Name: "Karkh Wholesale", Zones: []string{"KARKH"}, IsActive: utils.NewTrue()},
		8: {ID: 8, Name: "Rusafa Traders", Zones: []string{"RUSAFA"}, IsActive: utils.NewTrue()},
	}
	products := map[int]*models.Product{
		1: {ID: 1, VendorId: 7, Sku: "RICE-25", Name: "Rice 25kg", Price: decimal.NewFromInt(30000),
			Stock: 100, MinOrderQty: 1, Zones: []string{"KARKH", "RUSAFA"}, IsActive: utils.NewTrue()},
		2: {ID: 2, VendorId: 7, Sku: "OIL-5", Name: "Oil 5L", Price: decimal.NewFromInt(12000),
			Stock: 100, MinOrderQty: 1, Zones: []string{"KARKH", "RUSAFA"}, IsActive: utils.NewTrue()},
		3: {ID: 3, VendorId: 8, Sku: "SUGAR-10", Name: "Sugar 10kg", Price: decimal.NewFromInt(15000),
			Stock: 100, MinOrderQty: 1, Zones: []string{"KARKH", "RUSAFA"}, IsActive: utils.NewTrue()},
		4: {ID: 4, VendorId: 8, Sku: "FLOUR-50", Name: "Flour 50kg", Price: decimal.NewFromInt(40000),
			Stock: 100, MinOrderQty: 5, Zones: []string{"KARKH"}, IsActive: utils.NewTrue()},
	}
	return products, vendors
}

func TestSplitCart_GroupsByVendorAndAssignsFees(t *testing.T) {
	products, vendors := cartFixtures()
	lines := []models.CartLine{
		{ProductId: 1, Qty: 2},
		{ProductId: 3, Qty: 1},
		{ProductId: 2, Qty: 1},
	}

	groups, err := models.SplitCart(lines, products, vendors, nil, "KARKH", time.Now())
	if err != nil {
		t.Fatalf("SplitCart: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 vendor groups, got %d", len(groups))
	}

	// Groups come back in first-seen order: vendor 7's rice line leads.
	karkh, rusafa := groups[0], groups[1]
	if karkh.Vendor.ID != 7 || rusafa.Vendor.ID != 8 {
		t.Fatalf("unexpected group order: %d, %d", karkh.Vendor.ID, rusafa.Vendor.ID)
	}
	if len(karkh.Lines) != 2 || len(rusafa.Lines) != 1 {
		t.Fatalf("unexpected line counts: %d, %d", len(karkh.Lines), len(rusafa.Lines))
	}

	// Vendor 7 covers KARKH: in-zone fee. Vendor 8 does not: out-of-zone fee.
	if !karkh.DeliveryFee.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("expected in-zone fee 2500, got %s", karkh.DeliveryFee)
	}
	if !rusafa.DeliveryFee.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected out-of-zone fee 5000, got %s", rusafa.DeliveryFee)
	}

	// 2*30000 + 12000 = 72000, no discount, fee 2500.
	if !karkh.Subtotal.Equal(decimal.NewFromInt(72000)) {
		t.Fatalf("expected subtotal 72000, got %s", karkh.Subtotal)
	}
	if !karkh.Total.Equal(decimal.NewFromInt(74500)) {
		t.Fatalf("expected total 74500, got %s", karkh.Total)
	}
}

func TestSplitCart_TotalsIdentity(t *testing.T) {
	products, vendors := cartFixtures()
	now := time.Now()
	promos := []*models.Promotion{
		activePromo(1, 7, 1, models.PromotionTypePercentage, 10, now),
		activePromo(2, 8, 0, models.PromotionTypeFixed, 1000, now),
	}
	lines := []models.CartLine{
		{ProductId: 1, Qty: 3},
		{ProductId: 2, Qty: 2},
		{ProductId: 3, Qty: 4},
	}

	groups, err := models.SplitCart(lines, products, vendors, promos, "KARKH", now)
	if err != nil {
		t.Fatalf("SplitCart: %v", err)
	}
	for _, group := range groups {
		lineSum := decimal.Zero
		for _, line := range group.Lines {
			expected := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))).Sub(line.Discount)
			if !line.LineTotal.Equal(expected) {
				t.Fatalf("vendor %d: line total %s != %s", group.Vendor.ID, line.LineTotal, expected)
			}
			lineSum = lineSum.Add(line.LineTotal)
		}
		if !group.Total.Equal(lineSum.Add(group.DeliveryFee)) {
			t.Fatalf("vendor %d: total %s != line sum %s + fee %s",
				group.Vendor.ID, group.Total, lineSum, group.DeliveryFee)
		}
		if !group.Total.Equal(group.Subtotal.Sub(group.Discount).Add(group.DeliveryFee)) {
			t.Fatalf("vendor %d: total %s breaks subtotal - discount + fee", group.Vendor.ID, group.Total)
		}
	}
}

func TestSplitCart_RejectsZoneOutsideProductList(t *testing.T) {
	products, vendors := cartFixtures()
	// Product 4 is only listed for KARKH.
	_, err := models.SplitCart([]models.CartLine{{ProductId: 4, Qty: 5}}, products, vendors, nil, "RUSAFA", time.Now())
	if err == nil {
		t.Fatal("expected a zone availability error")
	}
	if !utils.IsKind(err, utils.ErrorKindValidation) {
		t.Fatalf("expected validation kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "RUSAFA") {
		t.Fatalf("error must name the zone: %v", err)
	}
}

func TestSplitCart_RejectsBelowMinimumQuantity(t *testing.T) {
	products, vendors := cartFixtures()
	// Product 4 requires at least 5 units.
	_, err := models.SplitCart([]models.CartLine{{ProductId: 4, Qty: 3}}, products, vendors, nil, "KARKH", time.Now())
	if err == nil {
		t.Fatal("expected a minimum quantity error")
	}
	if !strings.Contains(err.Error(), "5") || !strings.Contains(err.Error(), "3") {
		t.Fatalf("error must cite the minimum and the requested quantity: %v", err)
	}
}

func TestSplitCart_MergesDuplicateLines(t *testing.T) {
	products, vendors := cartFixtures()
	// Two lines of 3 merge to 6, clearing product 4's minimum of 5.
	groups, err := models.SplitCart([]models.CartLine{
		{ProductId: 4, Qty: 3},
		{ProductId: 4, Qty: 3},
	}, products, vendors, nil, "KARKH", time.Now())
	if err != nil {
		t.Fatalf("SplitCart: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Lines) != 1 {
		t.Fatalf("expected one merged line")
	}
	if groups[0].Lines[0].Qty != 6 {
		t.Fatalf("expected merged qty 6, got %d", groups[0].Lines[0].Qty)
	}
}

func TestSplitCart_EmptyCartAndUnknownProduct(t *testing.T) {
	products, vendors := cartFixtures()
	if _, err := models.SplitCart(nil, products, vendors, nil, "KARKH", time.Now()); err == nil {
		t.Fatal("empty cart must be rejected")
	}
	_, err := models.SplitCart([]models.CartLine{{ProductId: 999, Qty: 1}}, products, vendors, nil, "KARKH", time.Now())
	if !utils.IsKind(err, utils.ErrorKindNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
}

func TestSplitCart_EmitsGroupsInFirstSeenOrder(t *testing.T) {
	products, vendors := cartFixtures()
	// Vendor 8's sugar line comes first, so its group must lead even
	// though vendor 7 has the lower id.
	lines := []models.CartLine{
		{ProductId: 3, Qty: 1},
		{ProductId: 1, Qty: 1},
	}

	groups, err := models.SplitCart(lines, products, vendors, nil, "KARKH", time.Now())
	if err != nil {
		t.Fatalf("SplitCart: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 vendor groups, got %d", len(groups))
	}
	if groups[0].Vendor.ID != 8 || groups[1].Vendor.ID != 7 {
		t.Fatalf("expected first-seen order [8 7], got [%d %d]", groups[0].Vendor.ID, groups[1].Vendor.ID)
	}
}

func TestSplitCart_DropsLineWithUnknownVendor(t *testing.T) {
	products, vendors := cartFixtures()
	products[5] = &models.Product{ID: 5, VendorId: 999, Sku: "TEA-1", Name: "Tea 1kg",
		Price: decimal.NewFromInt(8000), Stock: 100, MinOrderQty: 1,
		Zones: []string{"KARKH"}, IsActive: utils.NewTrue()}

	groups, err := models.SplitCart([]models.CartLine{
		{ProductId: 1, Qty: 1},
		{ProductId: 5, Qty: 1},
	}, products, vendors, nil, "KARKH", time.Now())
	if err != nil {
		t.Fatalf("an orphaned line must not fail the cart: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group after dropping the orphaned line, got %d", len(groups))
	}
	if groups[0].Vendor.ID != 7 || len(groups[0].Lines) != 1 {
		t.Fatalf("expected only vendor 7's line to survive")
	}
}

func TestSplitCart_InactiveProductReadsAsNotFound(t *testing.T) {
	products, vendors := cartFixtures()
	products[2].IsActive = utils.NewFalse()

	_, err := models.SplitCart([]models.CartLine{{ProductId: 2, Qty: 1}}, products, vendors, nil, "KARKH", time.Now())
	if !utils.IsKind(err, utils.ErrorKindNotFound) {
		t.Fatalf("expected not-found kind for an inactive product, got %v", err)
	}
}
