package models

import (
	"context"
	"time"

	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

type Address struct {
	ID        int       `gorm:"primary_key" json:"id"`
	UserId    int       `gorm:"index;not null" json:"user_id"`
	Label     string    `gorm:"size:50" json:"label"`
	Zone      string    `gorm:"size:50;not null" json:"zone"`
	Street    string    `gorm:"size:255" json:"street"`
	Building  string    `gorm:"size:100" json:"building"`
	Notes     string    `gorm:"size:255" json:"notes"`
	Phone     string    `gorm:"size:30" json:"phone"`
	IsDefault *bool     `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAddress struct {
	Label     string `json:"label"`
	Zone      string `json:"zone" validate:"required"`
	Street    string `json:"street"`
	Building  string `json:"building"`
	Notes     string `json:"notes"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default"`
}

func CreateAddress(ctx context.Context, input *NewAddress) (*Address, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Zone](ctx, input.Zone); err != nil {
		return nil, utils.NewValidation("unknown zone %q", input.Zone)
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, utils.NewValidation("invalid phone number %q", input.Phone)
		}
	}
	userId := utils.GetUserId(ctx)
	if userId == 0 {
		return nil, utils.NewForbidden("no authenticated user")
	}

	address := Address{
		UserId:    userId,
		Label:     input.Label,
		Zone:      input.Zone,
		Street:    input.Street,
		Building:  input.Building,
		Notes:     input.Notes,
		Phone:     input.Phone,
		IsDefault: &input.IsDefault,
	}

	db := config.GetDB()
	if input.IsDefault {
		if err := db.WithContext(ctx).Model(&Address{}).
			Where("user_id = ?", userId).
			Update("is_default", false).Error; err != nil {
			return nil, utils.NewInternal(err)
		}
	}
	if err := db.WithContext(ctx).Create(&address).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	return &address, nil
}

func GetAddress(ctx context.Context, id int) (*Address, error) {
	address, err := utils.FetchModel[Address](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("address %d not found", id)
	}
	return address, nil
}

func ListAddresses(ctx context.Context, userId int) ([]*Address, error) {
	db := config.GetDB()
	var addresses []*Address
	if err := db.WithContext(ctx).Where("user_id = ?", userId).
		Order("is_default DESC, id").Find(&addresses).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	return addresses, nil
}
