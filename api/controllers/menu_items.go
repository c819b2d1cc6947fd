package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tavola-app/tavola-backend/api/middleware"
	"github.com/tavola-app/tavola-backend/api/responses"
	"github.com/tavola-app/tavola-backend/api/validators"
	catalogsvc "github.com/tavola-app/tavola-backend/internal/catalog"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
	"github.com/tavola-app/tavola-backend/pkg/logger"
	"github.com/tavola-app/tavola-backend/pkg/pagination"
)

type createMenuItemRequest struct {
	Title      string          `json:"title" validate:"required,max=255"`
	Price      decimal.Decimal `json:"price" validate:"required"`
	Featured   bool            `json:"featured"`
	CategoryID string          `json:"category_id" validate:"required,uuid"`
}

type updateMenuItemRequest struct {
	Title      *string          `json:"title" validate:"omitempty,max=255"`
	Price      *decimal.Decimal `json:"price"`
	Featured   *bool            `json:"featured"`
	CategoryID *string          `json:"category_id" validate:"omitempty,uuid"`
}

// ListMenuItems lists menu items with the catalog filter surface: category
// substring, price bounds, multi-field ordering, and pagination.
func ListMenuItems(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		priceFrom, err := validators.ParseQueryDecimal(r, "price_from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priceTo, err := validators.ParseQueryDecimal(r, "price_to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListMenuItems(r.Context(), catalogsvc.ListMenuItemsInput{
			CategoryTitle: validators.SanitizeString(r.URL.Query().Get("category"), 255),
			PriceFrom:     priceFrom,
			PriceTo:       priceTo,
			Ordering:      validators.SanitizeString(r.URL.Query().Get("ordering"), 255),
			Page:          page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// GetMenuItem reads one menu item.
func GetMenuItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "menu item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetMenuItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// CreateMenuItem creates a menu item (manager/admin, enforced in the service).
func CreateMenuItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createMenuItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := validators.ParsePathUUID(payload.CategoryID, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateMenuItem(r.Context(), actor, catalogsvc.CreateMenuItemInput{
			Title:      validators.SanitizeString(payload.Title, 255),
			Price:      payload.Price,
			Featured:   payload.Featured,
			CategoryID: categoryID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// UpdateMenuItem handles both PUT and PATCH; absent fields are untouched.
func UpdateMenuItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "menu item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateMenuItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalogsvc.UpdateMenuItemInput{
			Price:    payload.Price,
			Featured: payload.Featured,
		}
		if payload.Title != nil {
			title := validators.SanitizeString(*payload.Title, 255)
			input.Title = &title
		}
		if payload.CategoryID != nil {
			categoryID, err := validators.ParsePathUUID(*payload.CategoryID, "category_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CategoryID = &categoryID
		}

		item, err := svc.UpdateMenuItem(r.Context(), actor, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// DeleteMenuItem deletes one menu item (manager/admin).
func DeleteMenuItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "menu item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteMenuItem(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "menu item deleted")
	}
}

func pageParams(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	perPage, err := validators.ParseQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, PerPage: perPage}, nil
}
