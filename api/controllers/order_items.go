package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tavola-app/tavola-backend/api/responses"
	"github.com/tavola-app/tavola-backend/api/validators"
	orderssvc "github.com/tavola-app/tavola-backend/internal/orders"
	"github.com/tavola-app/tavola-backend/pkg/auth"
	"github.com/tavola-app/tavola-backend/pkg/logger"
)

type updateOrderLineRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=1"`
}

// GetOrderLine reads one line of the caller's order.
func GetOrderLine(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, orderID, itemID, err := orderLineRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.GetLine(r.Context(), actor, orderID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, line)
	}
}

// UpdateOrderLine replaces the line's quantity, recomputing the line total
// and the order total.
func UpdateOrderLine(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, orderID, itemID, err := orderLineRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.UpdateLine(r.Context(), actor, orderID, itemID, orderssvc.UpdateLineInput{
			Quantity: *payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, line)
	}
}

// DeleteOrderLine removes the line and recomputes the order total.
func DeleteOrderLine(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, orderID, itemID, err := orderLineRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteLine(r.Context(), actor, orderID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "order line deleted")
	}
}

func orderLineRequest(r *http.Request) (auth.Actor, uuid.UUID, uuid.UUID, error) {
	actor, orderID, err := orderRequest(r)
	if err != nil {
		return auth.Actor{}, uuid.Nil, uuid.Nil, err
	}
	itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "menu item id")
	if err != nil {
		return auth.Actor{}, uuid.Nil, uuid.Nil, err
	}
	return actor, orderID, itemID, nil
}
