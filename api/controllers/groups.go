package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tavola-app/tavola-backend/api/middleware"
	"github.com/tavola-app/tavola-backend/api/responses"
	"github.com/tavola-app/tavola-backend/api/validators"
	accountssvc "github.com/tavola-app/tavola-backend/internal/accounts"
	"github.com/tavola-app/tavola-backend/pkg/enums"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
	"github.com/tavola-app/tavola-backend/pkg/logger"
)

type addGroupMemberRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

// ListGroupMembers returns the users holding the given role.
func ListGroupMembers(svc accountssvc.Service, role enums.Role, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		members, err := svc.ListRoleMembers(r.Context(), actor, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, members)
	}
}

// AddGroupMember grants the role to the named user; repeated adds are
// harmless.
func AddGroupMember(svc accountssvc.Service, role enums.Role, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload addGroupMemberRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.AddRoleMember(r.Context(), actor, role,
			validators.SanitizeString(payload.Username, 64))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

// RemoveGroupMember revokes the role from the user in the path.
func RemoveGroupMember(svc accountssvc.Service, role enums.Role, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userId"), "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveRoleMember(r.Context(), actor, role, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "member removed")
	}
}
