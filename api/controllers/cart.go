package controllers

import (
	"net/http"

	"github.com/tavola-app/tavola-backend/api/middleware"
	"github.com/tavola-app/tavola-backend/api/responses"
	"github.com/tavola-app/tavola-backend/api/validators"
	cartsvc "github.com/tavola-app/tavola-backend/internal/cart"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
	"github.com/tavola-app/tavola-backend/pkg/logger"
)

type addCartLineRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid"`
	Quantity   *int   `json:"quantity" validate:"omitempty,min=1"`
}

// GetCart lists the caller's cart lines.
func GetCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		lines, err := svc.List(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lines)
	}
}

// AddCartLine upserts a cart line. Quantity defaults to 1 when omitted.
func AddCartLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload addCartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		menuItemID, err := validators.ParsePathUUID(payload.MenuItemID, "menu_item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity := 1
		if payload.Quantity != nil {
			quantity = *payload.Quantity
		}

		line, err := svc.AddLine(r.Context(), actor.UserID, cartsvc.AddLineInput{
			MenuItemID: menuItemID,
			Quantity:   quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, line)
	}
}

// ClearCart deletes all of the caller's cart lines.
func ClearCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		if err := svc.Clear(r.Context(), actor.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "cart cleared")
	}
}
