package models_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xmustafa5/b2b-exommmerce-sub003/models"
)

func deliveredOrder(id, vendorId int, lines ...models.OrderLine) *models.Order {
	return &models.Order{
		ID:       id,
		VendorId: vendorId,
		Status:   models.OrderStatusDelivered,
		Lines:    lines,
	}
}

func line(unitPrice int64, qty int) models.OrderLine {
	return models.OrderLine{UnitPrice: decimal.NewFromInt(unitPrice), Qty: qty}
}

func TestComputeVendorBalance(t *testing.T) {
	// 2*10000 + 1*10000 = 30000 gross; 10% commission = 3000; net 27000.
	orders := []*models.Order{
		deliveredOrder(1, 7, line(10000, 2)),
		deliveredOrder(2, 7, line(10000, 1)),
	}
	balance := models.ComputeVendorBalance(7, orders, decimal.NewFromInt(10))
	if balance.OrderCount != 2 {
		t.Fatalf("expected 2 orders, got %d", balance.OrderCount)
	}
	if !balance.GrossRevenue.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("expected gross 30000, got %s", balance.GrossRevenue)
	}
	if !balance.Commission.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("expected commission 3000, got %s", balance.Commission)
	}
	if !balance.NetBalance.Equal(decimal.NewFromInt(27000)) {
		t.Fatalf("expected net 27000, got %s", balance.NetBalance)
	}
}

func TestComputeVendorBalance_SkipsOtherVendorsAndStatuses(t *testing.T) {
	pending := deliveredOrder(3, 7, line(5000, 1))
	pending.Status = models.OrderStatusPending
	cancelled := deliveredOrder(4, 7, line(5000, 1))
	cancelled.Status = models.OrderStatusCancelled

	orders := []*models.Order{
		deliveredOrder(1, 7, line(10000, 1)),
		deliveredOrder(2, 8, line(99999, 3)),
		pending,
		cancelled,
	}
	balance := models.ComputeVendorBalance(7, orders, decimal.NewFromInt(10))
	if balance.OrderCount != 1 {
		t.Fatalf("expected 1 order, got %d", balance.OrderCount)
	}
	if !balance.GrossRevenue.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected gross 10000, got %s", balance.GrossRevenue)
	}
}

func TestComputeVendorBalance_CommissionFloorsPerOrder(t *testing.T) {
	// 7% of 999 = 69.93 -> 69 per order; two orders floor independently.
	orders := []*models.Order{
		deliveredOrder(1, 7, line(999, 1)),
		deliveredOrder(2, 7, line(999, 1)),
	}
	balance := models.ComputeVendorBalance(7, orders, decimal.NewFromInt(7))
	if !balance.Commission.Equal(decimal.NewFromInt(138)) {
		t.Fatalf("expected commission 138, got %s", balance.Commission)
	}
	if !balance.NetBalance.Equal(decimal.NewFromInt(1860)) {
		t.Fatalf("expected net 1860, got %s", balance.NetBalance)
	}
}

func TestComputeVendorBalance_ClampsAtZero(t *testing.T) {
	orders := []*models.Order{deliveredOrder(1, 7, line(100, 1))}
	balance := models.ComputeVendorBalance(7, orders, decimal.NewFromInt(100))
	if balance.NetBalance.IsNegative() {
		t.Fatalf("net must never be negative, got %s", balance.NetBalance)
	}
	if !balance.NetBalance.Equal(decimal.Zero) {
		t.Fatalf("expected net 0 at 100%% commission, got %s", balance.NetBalance)
	}
}

func TestComputeVendorBalance_Empty(t *testing.T) {
	balance := models.ComputeVendorBalance(7, nil, decimal.NewFromInt(10))
	if balance.OrderCount != 0 || !balance.NetBalance.Equal(decimal.Zero) {
		t.Fatalf("empty input must produce a zero balance: %+v", balance)
	}
}
