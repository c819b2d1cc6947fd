package controllers

import (
	"net/http"

	"github.com/tavola-app/tavola-backend/api/middleware"
	"github.com/tavola-app/tavola-backend/api/responses"
	"github.com/tavola-app/tavola-backend/api/validators"
	catalogsvc "github.com/tavola-app/tavola-backend/internal/catalog"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
	"github.com/tavola-app/tavola-backend/pkg/logger"
)

type createCategoryRequest struct {
	Slug  string `json:"slug" validate:"required,max=64"`
	Title string `json:"title" validate:"required,max=255"`
}

// ListCategories lists every category.
func ListCategories(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// CreateCategory creates a category; the service owns the role gate.
func CreateCategory(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), actor, catalogsvc.CreateCategoryInput{
			Slug:  validators.SanitizeString(payload.Slug, 64),
			Title: validators.SanitizeString(payload.Title, 255),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}
