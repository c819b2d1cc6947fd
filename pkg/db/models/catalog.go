package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups menu items. Referenced rows are effectively immutable.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug      string    `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Title     string    `gorm:"column:title;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// MenuItem is a purchasable catalog entry.
type MenuItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title      string          `gorm:"column:title;type:text;not null;uniqueIndex"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(8,2);not null"`
	Featured   bool            `gorm:"column:featured;not null;default:false;index"`
	CategoryID uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Category   *Category       `gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
