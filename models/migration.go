package models

import (
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

// allModels lists every table in dependency order for AutoMigrate.
var allModels = []interface{}{
	&Zone{},
	&User{},
	&Address{},
	&Vendor{},
	&ProductCategory{},
	&Product{},
	&StockChangeRecord{},
	&Promotion{},
	&Order{},
	&OrderLine{},
	&OrderStatusHistory{},
	&Payout{},
	&NotificationRecord{},
	&IdempotencyKey{},
}

// MigrateTables creates or alters every table. Run by the migrate tool
// and by integration test setup.
func MigrateTables() error {
	db := config.GetDB()
	if err := db.AutoMigrate(allModels...); err != nil {
		return utils.NewInternal(err)
	}
	return nil
}
