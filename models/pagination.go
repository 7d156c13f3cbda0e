package models

import (
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"gorm.io/gorm"
)

// Paginate is a gorm scope for page/limit list queries. Pages are
// 1-based; limit falls back to config.SearchLimit and is capped at 100.
func Paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = config.SearchLimit
		}
		if limit > 100 {
			limit = 100
		}
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}
