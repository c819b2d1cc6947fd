package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tavola-app/tavola-backend/pkg/db/models"
	"github.com/tavola-app/tavola-backend/pkg/pagination"
)

// CategoryDTO is the wire representation of a category.
type CategoryDTO struct {
	ID    uuid.UUID `json:"id"`
	Slug  string    `json:"slug"`
	Title string    `json:"title"`
}

// MenuItemDTO is the wire representation of a menu item; Category carries the
// category title, matching the listing contract.
type MenuItemDTO struct {
	ID       uuid.UUID       `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Featured bool            `json:"featured"`
	Category string          `json:"category"`
}

// CreateCategoryInput carries validated category fields.
type CreateCategoryInput struct {
	Slug  string
	Title string
}

// CreateMenuItemInput carries validated menu item fields.
type CreateMenuItemInput struct {
	Title      string
	Price      decimal.Decimal
	Featured   bool
	CategoryID uuid.UUID
}

// UpdateMenuItemInput carries the fields of a full or partial update; nil
// fields are left untouched.
type UpdateMenuItemInput struct {
	Title      *string
	Price      *decimal.Decimal
	Featured   *bool
	CategoryID *uuid.UUID
}

// ListMenuItemsInput captures the listing filters.
type ListMenuItemsInput struct {
	CategoryTitle string
	PriceFrom     *decimal.Decimal
	PriceTo       *decimal.Decimal
	Ordering      string
	Page          pagination.Params
}

func categoryFromModel(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:    category.ID,
		Slug:  category.Slug,
		Title: category.Title,
	}
}

func menuItemFromModel(item models.MenuItem) MenuItemDTO {
	dto := MenuItemDTO{
		ID:       item.ID,
		Title:    item.Title,
		Price:    item.Price,
		Featured: item.Featured,
	}
	if item.Category != nil {
		dto.Category = item.Category.Title
	}
	return dto
}
