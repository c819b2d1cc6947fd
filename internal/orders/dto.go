package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tavola-app/tavola-backend/pkg/db/models"
	"github.com/tavola-app/tavola-backend/pkg/enums"
	"github.com/tavola-app/tavola-backend/pkg/pagination"
)

// OrderDTO is the wire representation of an order with its lines.
type OrderDTO struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	DeliveryCrewID *uuid.UUID        `json:"delivery_crew_id,omitempty"`
	Status         enums.OrderStatus `json:"status"`
	Total          decimal.Decimal   `json:"total"`
	PlacedAt       time.Time         `json:"placed_at"`
	Lines          []LineDTO         `json:"lines"`
}

// LineDTO is the wire representation of one order line.
type LineDTO struct {
	ID         uuid.UUID       `json:"id"`
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	MenuItem   string          `json:"menu_item"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// ListInput captures the order listing filters.
type ListInput struct {
	Status   string
	Ordering string
	Page     pagination.Params
}

// UpdateInput carries an order PUT/PATCH body. Nil fields were not supplied.
type UpdateInput struct {
	Status         *string
	DeliveryCrewID *uuid.UUID
}

// UpdateLineInput carries an order-line PATCH body.
type UpdateLineInput struct {
	Quantity int
}

func orderFromModel(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:             order.ID,
		UserID:         order.UserID,
		DeliveryCrewID: order.DeliveryCrewID,
		Status:         order.Status,
		Total:          order.Total,
		PlacedAt:       order.PlacedAt,
		Lines:          make([]LineDTO, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		dto.Lines = append(dto.Lines, lineFromModel(line))
	}
	return dto
}

func lineFromModel(line models.OrderLine) LineDTO {
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
