package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

// CartLine is one requested product and quantity in a buyer's cart.
type CartLine struct {
	ProductId int `json:"product_id" validate:"required"`
	Qty       int `json:"qty" validate:"required,gte=1"`
}

// PricedLine is a cart line after validation and promotion resolution.
// LineTotal is the discounted amount: UnitPrice*Qty - Discount.
type PricedLine struct {
	Product     *Product        `json:"product"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
	PromotionId int             `json:"promotion_id,omitempty"`
}

// VendorGroup is the per-vendor slice of a split cart. Each group
// becomes one order at checkout.
type VendorGroup struct {
	Vendor      *Vendor         `json:"vendor"`
	Lines       []PricedLine    `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// SplitCart validates a cart against the buyer's zone and splits it
// into per-vendor groups with promotions resolved and delivery fees
// assigned. It is pure over its inputs: products and vendors are
// passed in, so callers decide how to load them.
//
// Validation failures are per-line and fail the whole cart: unknown
// or inactive product, zone outside the product's list, or quantity
// below the product's minimum. A line whose product references a
// vendor that no longer exists is dropped with a warning instead.
func SplitCart(lines []CartLine, products map[int]*Product, vendors map[int]*Vendor, promotions []*Promotion, buyerZone string, now time.Time) ([]*VendorGroup, error) {
	if len(lines) == 0 {
		return nil, utils.NewValidation("cart is empty")
	}
	if buyerZone == "" {
		return nil, utils.NewValidation("delivery zone is required")
	}

	logger := config.GetLogger()

	// Merge duplicate product lines before validating minimums.
	qtyByProduct := map[int]int{}
	order := []int{}
	for _, line := range lines {
		if line.Qty < 1 {
			return nil, utils.NewValidation("quantity must be at least 1 for product %d", line.ProductId)
		}
		if _, seen := qtyByProduct[line.ProductId]; !seen {
			order = append(order, line.ProductId)
		}
		qtyByProduct[line.ProductId] += line.Qty
	}

	groups := map[int]*VendorGroup{}
	vendorOrder := []int{}
	for _, productId := range order {
		qty := qtyByProduct[productId]
		product, ok := products[productId]
		if !ok {
			return nil, utils.NewNotFound("product %d not found", productId)
		}
		if product.IsActive != nil && !*product.IsActive {
			return nil, utils.NewNotFound("product %d not found", product.ID)
		}
		if !product.AvailableInZone(buyerZone) {
			return nil, utils.NewValidation("product %d %q is not available in zone %s", product.ID, product.Name, buyerZone)
		}
		if qty < product.MinOrderQty {
			return nil, utils.NewValidation("product %d %q requires a minimum quantity of %d, got %d",
				product.ID, product.Name, product.MinOrderQty, qty)
		}

		vendor, ok := vendors[product.VendorId]
		if !ok {
			// A product pointing at a missing vendor is a data
			// integrity problem, not a buyer mistake. Drop the
			// line and keep the rest of the cart.
			config.LogWarn(logger, "models", "SplitCart", "dropping line: product references unknown vendor", map[string]interface{}{
				"productId": product.ID,
				"vendorId":  product.VendorId,
			})
			continue
		}

		resolved, err := ResolvePromotion(promotions, product, qty, buyerZone, now)
		if err != nil {
			return nil, err
		}
		discount := decimal.Zero
		promotionId := 0
		if resolved != nil {
			discount = resolved.Discount
			promotionId = resolved.Promotion.ID
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(qty)))

		group, ok := groups[vendor.ID]
		if !ok {
			group = &VendorGroup{Vendor: vendor}
			groups[vendor.ID] = group
			vendorOrder = append(vendorOrder, vendor.ID)
		}
		group.Lines = append(group.Lines, PricedLine{
			Product:     product,
			Qty:         qty,
			UnitPrice:   product.Price,
			Discount:    discount,
			LineTotal:   subtotal.Sub(discount),
			PromotionId: promotionId,
		})
		group.Subtotal = group.Subtotal.Add(subtotal)
		group.Discount = group.Discount.Add(discount)
	}

	result := make([]*VendorGroup, 0, len(vendorOrder))
	for _, vendorId := range vendorOrder {
		group := groups[vendorId]
		group.DeliveryFee = deliveryFeeFor(group.Vendor, buyerZone)
		group.Total = group.Subtotal.Sub(group.Discount).Add(group.DeliveryFee)
		result = append(result, group)
	}
	return result, nil
}

// deliveryFeeFor picks the fee tier: a vendor delivering inside its own
// coverage charges the lower in-zone fee.
func deliveryFeeFor(vendor *Vendor, buyerZone string) decimal.Decimal {
	if vendor.ServesZone(buyerZone) {
		return config.DeliveryFeeInZone()
	}
	return config.DeliveryFeeOutOfZone()
}

// PreviewCart loads everything a cart needs and splits it. This is the
// read-only half of checkout: no stock is touched.
func PreviewCart(ctx context.Context, lines []CartLine, buyerZone string) ([]*VendorGroup, error) {
	productIds := make([]int, 0, len(lines))
	for _, line := range lines {
		productIds = append(productIds, line.ProductId)
	}
	products, err := GetProductsByIds(ctx, productIds)
	if err != nil {
		return nil, err
	}

	vendorIds := make([]int, 0, len(products))
	for _, product := range products {
		vendorIds = append(vendorIds, product.VendorId)
	}
	vendors, err := GetVendorsByIds(ctx, vendorIds)
	if err != nil {
		return nil, err
	}

	promotions := []*Promotion{}
	if len(vendorIds) > 0 {
		promotions, err = GetActivePromotions(ctx, vendorIds, time.Now())
		if err != nil {
			return nil, err
		}
	}
	return SplitCart(lines, products, vendors, promotions, buyerZone, time.Now())
}
