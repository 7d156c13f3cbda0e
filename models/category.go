package models

import (
	"context"
	"time"

	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

type ProductCategory struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	ParentId  int       `gorm:"index;default:0" json:"parent_id"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProductCategory struct {
	Name     string `json:"name" validate:"required"`
	ParentId int    `json:"parent_id"`
}

func CreateProductCategory(ctx context.Context, input *NewProductCategory) (*ProductCategory, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[ProductCategory](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}
	if input.ParentId != 0 {
		if err := utils.ValidateResourceId[ProductCategory](ctx, input.ParentId); err != nil {
			return nil, utils.NewNotFound("category %d not found", input.ParentId)
		}
	}

	category := ProductCategory{
		Name:     input.Name,
		ParentId: input.ParentId,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	if err := utils.RemoveRedis[ProductCategory](category.ID); err != nil {
		return nil, utils.NewInternal(err)
	}
	return &category, nil
}

func GetProductCategory(ctx context.Context, id int) (*ProductCategory, error) {
	cached, err := utils.RetrieveRedis[ProductCategory](id)
	if err != nil {
		return nil, utils.NewInternal(err)
	}
	if cached != nil {
		return cached, nil
	}
	category, err := utils.FetchModel[ProductCategory](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("category %d not found", id)
	}
	if err := utils.StoreRedis[ProductCategory](category, id); err != nil {
		return nil, utils.NewInternal(err)
	}
	return category, nil
}
