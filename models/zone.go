package models

import (
	"context"
	"time"

	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

// Zone is a named delivery district, e.g. "KARKH" or "RUSAFA".
// Zone availability on products gates purchasing; vendor zone coverage
// only selects the delivery fee tier.
type Zone struct {
	ID        string    `gorm:"primary_key;size:50" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	City      string    `gorm:"size:100" json:"city"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

var defaultZones = []Zone{
	{ID: "KARKH", Name: "Karkh", City: "Baghdad"},
	{ID: "RUSAFA", Name: "Rusafa", City: "Baghdad"},
	{ID: "MANSOUR", Name: "Mansour", City: "Baghdad"},
	{ID: "KADHIMIYA", Name: "Kadhimiya", City: "Baghdad"},
	{ID: "BASRA_CENTER", Name: "Basra Center", City: "Basra"},
	{ID: "ERBIL_CENTER", Name: "Erbil Center", City: "Erbil"},
}

// SeedZones inserts the default delivery zones, skipping ones already
// present. Run from the migrate tool after AutoMigrate.
func SeedZones(ctx context.Context) error {
	db := config.GetDB()
	for _, zone := range defaultZones {
		zone.IsActive = utils.NewTrue()
		if err := db.WithContext(ctx).Where(Zone{ID: zone.ID}).FirstOrCreate(&zone).Error; err != nil {
			return utils.NewInternal(err)
		}
	}
	return nil
}

func ListZones(ctx context.Context) ([]*Zone, error) {
	db := config.GetDB()
	var zones []*Zone
	if err := db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&zones).Error; err != nil {
		return nil, utils.NewInternal(err)
	}
	return zones, nil
}
