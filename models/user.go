package models

import (
	"context"
	"time"

	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"index;size:100;not null" json:"email"`
	Phone        string    `gorm:"size:30" json:"phone"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"type:enum('BUYER','VENDOR','STAFF','ADMIN');default:'BUYER'" json:"role"`
	VendorId     int       `gorm:"index;default:0" json:"vendor_id"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"required"`
	VendorId int    `json:"vendor_id"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if _, err := RoleFromString(string(input.Role)); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, 0); err != nil {
		return nil, err
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, utils.NewValidation("invalid phone number %q", input.Phone)
		}
	}
	if input.Role == RoleVendor {
		if err := utils.ValidateResourceId[Vendor](ctx, input.VendorId); err != nil {
			return nil, utils.NewNotFound("vendor %d not found", input.VendorId)
		}
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, utils.NewInternal(err)
	}

	user := User{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         input.Role,
		VendorId:     input.VendorId,
		IsActive:     utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	return &user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("user %d not found", id)
	}
	return user, nil
}
