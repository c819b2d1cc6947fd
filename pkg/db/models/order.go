package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tavola-app/tavola-backend/pkg/enums"
)

// Order is a confirmed checkout snapshot owned by a customer. Total is the
// sum of its lines' totals at creation time and is only recomputed when a
// line is edited.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	DeliveryCrewID *uuid.UUID        `gorm:"column:delivery_crew_id;type:uuid;index"`
	Status         enums.OrderStatus `gorm:"column:status;type:text;not null;default:'placed'"`
	Total          decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	PlacedAt       time.Time         `gorm:"column:placed_at;not null"`
	Lines          []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLine is a frozen copy of a cart line, owned by its order.
type OrderLine struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_order_lines_order_item"`
	MenuItemID uuid.UUID       `gorm:"column:menu_item_id;type:uuid;not null;uniqueIndex:idx_order_lines_order_item"`
	MenuItem   *MenuItem       `gorm:"foreignKey:MenuItemID"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(8,2);not null"`
	LineTotal  decimal.Decimal `gorm:"column:line_total;type:numeric(10,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
