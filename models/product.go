package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
	"gorm.io/gorm"
)

// Product belongs to exactly one vendor. Stock is the authoritative
// on-hand count and is only ever changed together with a
// StockChangeRecord inside the same transaction.
type Product struct {
	ID          int             `gorm:"primary_key" json:"id"`
	VendorId    int             `gorm:"index;not null" json:"vendor_id"`
	CategoryId  int             `gorm:"index;default:0" json:"category_id"`
	Sku         string          `gorm:"index;size:64;not null" json:"sku"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	MinOrderQty int             `gorm:"not null;default:1" json:"min_order_qty"`
	Zones       []string        `gorm:"serializer:json" json:"zones"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Vendor *Vendor `gorm:"foreignKey:VendorId" json:"vendor,omitempty"`
}

type NewProduct struct {
	VendorId    int             `json:"vendor_id" validate:"required"`
	CategoryId  int             `json:"category_id"`
	Sku         string          `json:"sku" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	MinOrderQty int             `json:"min_order_qty" validate:"gte=1"`
	Zones       []string        `json:"zones" validate:"required,min=1"`
}

type UpdateProductInput struct {
	CategoryId  *int             `json:"category_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	MinOrderQty *int             `json:"min_order_qty" validate:"omitempty,gte=1"`
	Zones       []string         `json:"zones"`
	IsActive    *bool            `json:"is_active"`
}

// AvailableInZone gates purchasing: a line for this product in a zone
// outside the product's list must be rejected.
func (p Product) AvailableInZone(zone string) bool {
	return utils.ContainsString(p.Zones, zone)
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if !input.Price.IsPositive() {
		return nil, utils.NewValidation("price must be positive")
	}
	if err := utils.ValidateResourceId[Vendor](ctx, input.VendorId); err != nil {
		return nil, utils.NewNotFound("vendor %d not found", input.VendorId)
	}
	if input.CategoryId != 0 {
		if err := utils.ValidateResourceId[ProductCategory](ctx, input.CategoryId); err != nil {
			return nil, utils.NewNotFound("category %d not found", input.CategoryId)
		}
	}
	for _, zone := range input.Zones {
		if err := utils.ValidateResourceId[Zone](ctx, zone); err != nil {
			return nil, utils.NewValidation("unknown zone %q", zone)
		}
	}

	// SKU is unique per vendor, not globally.
	count, err := utils.ResourceCountWhere[Product](ctx, "vendor_id = ? AND sku = ?", input.VendorId, input.Sku)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewConflict("sku %q already exists for vendor %d", input.Sku, input.VendorId)
	}

	product := Product{
		VendorId:    input.VendorId,
		CategoryId:  input.CategoryId,
		Sku:         input.Sku,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		MinOrderQty: input.MinOrderQty,
		Zones:       input.Zones,
		IsActive:    utils.NewTrue(),
	}

	err = utils.RunInTxWithRetry(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return utils.NewInternal(err)
		}
		if product.Stock > 0 {
			record := StockChangeRecord{
				ProductId:  product.ID,
				Delta:      product.Stock,
				StockAfter: product.Stock,
				Reason:     StockChangeReasonAdjustment,
				ActorId:    utils.GetUserId(ctx),
				Note:       "initial stock",
			}
			if err := tx.Create(&record).Error; err != nil {
				return utils.NewInternal(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *UpdateProductInput) (*Product, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("product %d not found", id)
	}

	if input.CategoryId != nil && *input.CategoryId != 0 {
		if err := utils.ValidateResourceId[ProductCategory](ctx, *input.CategoryId); err != nil {
			return nil, utils.NewNotFound("category %d not found", *input.CategoryId)
		}
		product.CategoryId = *input.CategoryId
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, utils.NewValidation("price must be positive")
		}
		product.Price = *input.Price
	}
	if input.MinOrderQty != nil {
		product.MinOrderQty = *input.MinOrderQty
	}
	if len(input.Zones) > 0 {
		for _, zone := range input.Zones {
			if err := utils.ValidateResourceId[Zone](ctx, zone); err != nil {
				return nil, utils.NewValidation("unknown zone %q", zone)
			}
		}
		product.Zones = input.Zones
	}
	if input.IsActive != nil {
		product.IsActive = input.IsActive
	}

	db := config.GetDB()
	// Stock is deliberately not touchable here; AdjustStock is the only
	// write path so the ledger stays consistent.
	if err := db.WithContext(ctx).Omit("stock").Save(product).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	if err := utils.RemoveRedis[Product](product.ID); err != nil {
		return nil, utils.NewInternal(err)
	}
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("product %d not found", id)
	}
	return product, nil
}

// GetProductsByIds loads all cart products in one query, preloading the
// owning vendor for grouping and fee calculation.
func GetProductsByIds(ctx context.Context, ids []int) (map[int]*Product, error) {
	db := config.GetDB()
	var products []*Product
	if err := db.WithContext(ctx).Preload("Vendor").
		Where("id IN ?", utils.UniqueSlice(ids)).Find(&products).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	byId := make(map[int]*Product, len(products))
	for _, p := range products {
		byId[p.ID] = p
	}
	return byId, nil
}

type ProductFilter struct {
	VendorId   int
	CategoryId int
	Zone       string
	Search     string
	Page       int
	Limit      int
}

func ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, int64, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Product{}).Where("is_active = ?", true)
	if filter.VendorId != 0 {
		query = query.Where("vendor_id = ?", filter.VendorId)
	}
	if filter.CategoryId != 0 {
		query = query.Where("category_id = ?", filter.CategoryId)
	}
	if filter.Zone != "" {
		query = query.Where("JSON_CONTAINS(zones, JSON_QUOTE(?))", filter.Zone)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ? OR sku LIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.NewInternal(err)
	}

	var products []*Product
	if err := query.Scopes(Paginate(filter.Page, filter.Limit)).
		Order("id").Find(&products).Error; err != nil {
		return nil, 0, utils.NewInternal(err)
	}
	return products, total, nil
}
