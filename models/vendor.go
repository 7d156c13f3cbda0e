package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

// Vendor owns a product catalog and receives payouts of completed-order
// revenue minus platform commission.
type Vendor struct {
	ID                int             `gorm:"primary_key" json:"id"`
	Name              string          `gorm:"size:100;not null" json:"name"`
	Email             string          `gorm:"size:100" json:"email"`
	ContactPhone      string          `gorm:"size:30" json:"contact_phone"`
	Zones             []string        `gorm:"serializer:json" json:"zones"`
	CommissionRate    decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"commission_rate"`
	BankName          string          `gorm:"size:100" json:"bank_name"`
	BankAccountName   string          `gorm:"size:100" json:"bank_account_name"`
	BankAccountNumber string          `gorm:"size:64" json:"bank_account_number"`
	IsActive          *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVendor struct {
	Name              string          `json:"name" validate:"required"`
	Email             string          `json:"email" validate:"omitempty,email"`
	ContactPhone      string          `json:"contact_phone"`
	Zones             []string        `json:"zones" validate:"required,min=1"`
	CommissionRate    decimal.Decimal `json:"commission_rate"`
	BankName          string          `json:"bank_name"`
	BankAccountName   string          `json:"bank_account_name"`
	BankAccountNumber string          `json:"bank_account_number"`
}

// ServesZone reports whether the vendor's own delivery coverage includes
// the buyer's zone; it decides the delivery fee tier, not availability.
func (v Vendor) ServesZone(zone string) bool {
	return utils.ContainsString(v.Zones, zone)
}

// EffectiveCommissionRate returns the vendor's rate, or the platform
// default when the vendor has none.
func (v Vendor) EffectiveCommissionRate() decimal.Decimal {
	if v.CommissionRate.IsPositive() {
		return v.CommissionRate
	}
	return config.DefaultCommissionRate()
}

func (input *NewVendor) validate(ctx context.Context) error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if input.ContactPhone != "" {
		if err := utils.ValidatePhoneNumber(input.ContactPhone, utils.CountryCode); err != nil {
			return utils.NewValidation("invalid contact phone %q", input.ContactPhone)
		}
	}
	if input.CommissionRate.IsNegative() || input.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return utils.NewValidation("commission rate must be between 0 and 100")
	}
	for _, zone := range input.Zones {
		if err := utils.ValidateResourceId[Zone](ctx, zone); err != nil {
			return utils.NewValidation("unknown zone %q", zone)
		}
	}
	return nil
}

func CreateVendor(ctx context.Context, input *NewVendor) (*Vendor, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Vendor](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}

	vendor := Vendor{
		Name:              input.Name,
		Email:             input.Email,
		ContactPhone:      input.ContactPhone,
		Zones:             input.Zones,
		CommissionRate:    input.CommissionRate,
		BankName:          input.BankName,
		BankAccountName:   input.BankAccountName,
		BankAccountNumber: input.BankAccountNumber,
		IsActive:          utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&vendor).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	return &vendor, nil
}

// GetVendor reads through the redis cache; vendors change rarely.
func GetVendor(ctx context.Context, id int) (*Vendor, error) {
	cached, err := utils.RetrieveRedis[Vendor](id)
	if err != nil {
		return nil, utils.NewInternal(err)
	}
	if cached != nil {
		return cached, nil
	}
	vendor, err := utils.FetchModel[Vendor](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("vendor %d not found", id)
	}
	if err := utils.StoreRedis[Vendor](vendor, id); err != nil {
		return nil, utils.NewInternal(err)
	}
	return vendor, nil
}

// GetVendorsByIds loads the vendors for a cart in one query.
func GetVendorsByIds(ctx context.Context, ids []int) (map[int]*Vendor, error) {
	db := config.GetDB()
	var vendors []*Vendor
	if err := db.WithContext(ctx).Where("id IN ?", utils.UniqueSlice(ids)).Find(&vendors).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	byId := make(map[int]*Vendor, len(vendors))
	for _, v := range vendors {
		byId[v.ID] = v
	}
	return byId, nil
}
