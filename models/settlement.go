package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

// VendorBalance is the settlement position of one vendor: what the
// platform owes for delivered, not-yet-paid orders.
//
// GrossRevenue counts line revenue before promotion discounts; the
// platform funds promotions. Delivery fees are platform income and
// never enter vendor revenue. Commission is floored to whole minor
// units, so the vendor's net is never rounded down below the exact
// amount minus one fils per order.
type VendorBalance struct {
	VendorId       int             `json:"vendor_id"`
	OrderCount     int             `json:"order_count"`
	GrossRevenue   decimal.Decimal `json:"gross_revenue"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Commission     decimal.Decimal `json:"commission"`
	NetBalance     decimal.Decimal `json:"net_balance"`
	OrderIds       []int           `json:"order_ids"`
}

// orderGrossRevenue is the vendor-attributable revenue of one order:
// unit price times quantity over its lines, before discounts.
func orderGrossRevenue(order *Order) decimal.Decimal {
	gross := decimal.Zero
	for _, line := range order.Lines {
		gross = gross.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	return gross
}

// ComputeVendorBalance folds delivered orders into a settlement
// position. Pure over its inputs; callers load the orders. The net is
// clamped at zero so a misconfigured commission rate can never produce
// a negative payout.
func ComputeVendorBalance(vendorId int, orders []*Order, commissionRate decimal.Decimal) VendorBalance {
	balance := VendorBalance{
		VendorId:       vendorId,
		CommissionRate: commissionRate,
		GrossRevenue:   decimal.Zero,
		Commission:     decimal.Zero,
		NetBalance:     decimal.Zero,
	}
	for _, order := range orders {
		if order.VendorId != vendorId || order.Status != OrderStatusDelivered {
			continue
		}
		gross := orderGrossRevenue(order)
		// Commission floors per order so the balance matches the sum
		// of settlement report rows to the fils.
		commission := gross.Mul(commissionRate).Div(decimal.NewFromInt(100)).Floor()
		balance.OrderCount++
		balance.OrderIds = append(balance.OrderIds, order.ID)
		balance.GrossRevenue = balance.GrossRevenue.Add(gross)
		balance.Commission = balance.Commission.Add(commission)
	}
	balance.NetBalance = balance.GrossRevenue.Sub(balance.Commission)
	if balance.NetBalance.IsNegative() {
		balance.NetBalance = decimal.Zero
	}
	return balance
}

// unpaidDeliveredOrders loads a vendor's delivered orders that have
// not yet been attached to a payout.
func unpaidDeliveredOrders(ctx context.Context, vendorId int) ([]*Order, error) {
	db := config.GetDB()
	var orders []*Order
	err := db.WithContext(ctx).Preload("Lines").
		Where("vendor_id = ? AND status = ? AND payout_status = ?",
			vendorId, OrderStatusDelivered, OrderPayoutStatusUnpaid).
		Order("id").
		Find(&orders).Error
	if err != nil {
		return nil, utils.NewInternal(err)
	}
	return orders, nil
}

// AvailableBalance is the amount the vendor could request as a payout
// right now.
func AvailableBalance(ctx context.Context, vendorId int) (VendorBalance, error) {
	vendor, err := GetVendor(ctx, vendorId)
	if err != nil {
		return VendorBalance{}, err
	}
	orders, err := unpaidDeliveredOrders(ctx, vendorId)
	if err != nil {
		return VendorBalance{}, err
	}
	return ComputeVendorBalance(vendorId, orders, vendor.EffectiveCommissionRate()), nil
}

// SettlementRow is one order's contribution to a vendor settlement
// report.
type SettlementRow struct {
	OrderId      int               `json:"order_id"`
	OrderNumber  string            `json:"order_number"`
	DeliveredAt  *time.Time        `json:"delivered_at"`
	GrossRevenue decimal.Decimal   `json:"gross_revenue"`
	Commission   decimal.Decimal   `json:"commission"`
	Net          decimal.Decimal   `json:"net"`
	PayoutStatus OrderPayoutStatus `json:"payout_status"`
}

// SettlementReport covers one vendor over a closed date range,
// delivered orders only, regardless of payout status.
type SettlementReport struct {
	VendorId     int             `json:"vendor_id"`
	VendorName   string          `json:"vendor_name"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Rows         []SettlementRow `json:"rows"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	Commission   decimal.Decimal `json:"commission"`
	Net          decimal.Decimal `json:"net"`
}

// GenerateSettlementReport builds the per-order breakdown used by
// vendor statements and the export tool. Per-order commissions are
// floored individually so rows sum exactly to the report totals.
func GenerateSettlementReport(ctx context.Context, vendorId int, from, to time.Time) (*SettlementReport, error) {
	if !to.After(from) {
		return nil, utils.NewValidation("report range must end after it starts")
	}
	vendor, err := GetVendor(ctx, vendorId)
	if err != nil {
		return nil, err
	}
	rate := vendor.EffectiveCommissionRate()

	db := config.GetDB()
	var orders []*Order
	err = db.WithContext(ctx).Preload("Lines").
		Where("vendor_id = ? AND status = ?", vendorId, OrderStatusDelivered).
		Where("delivered_at >= ? AND delivered_at < ?", from, to).
		Order("delivered_at").
		Find(&orders).Error
	if err != nil {
		return nil, utils.NewInternal(err)
	}

	report := SettlementReport{
		VendorId:     vendorId,
		VendorName:   vendor.Name,
		From:         from,
		To:           to,
		GrossRevenue: decimal.Zero,
		Commission:   decimal.Zero,
		Net:          decimal.Zero,
	}
	for _, order := range orders {
		gross := orderGrossRevenue(order)
		commission := gross.Mul(rate).Div(decimal.NewFromInt(100)).Floor()
		net := gross.Sub(commission)
		report.Rows = append(report.Rows, SettlementRow{
			OrderId:      order.ID,
			OrderNumber:  order.OrderNumber,
			DeliveredAt:  order.DeliveredAt,
			GrossRevenue: gross,
			Commission:   commission,
			Net:          net,
			PayoutStatus: order.PayoutStatus,
		})
		report.GrossRevenue = report.GrossRevenue.Add(gross)
		report.Commission = report.Commission.Add(commission)
		report.Net = report.Net.Add(net)
	}
	return &report, nil
}
