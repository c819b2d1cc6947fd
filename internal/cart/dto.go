package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tavola-app/tavola-backend/pkg/db/models"
)

// LineDTO is the wire representation of a cart line.
type LineDTO struct {
	ID         uuid.UUID       `json:"id"`
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	MenuItem   string          `json:"menu_item"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// AddLineInput carries a validated add-to-cart request.
type AddLineInput struct {
	MenuItemID uuid.UUID
	Quantity   int
}

func lineFromModel(line models.CartLine) LineDTO {
	dto := LineDTO{
		ID:         line.ID,
		MenuItemID: line.MenuItemID,
		Quantity:   line.Quantity,
		UnitPrice:  line.UnitPrice,
		LineTotal:  line.LineTotal,
	}
	if line.MenuItem != nil {
		dto.MenuItem = line.MenuItem.Title
	}
	return dto
}
