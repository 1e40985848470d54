package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/arepabuelas/arepabuelas-backend/api/responses"
	"github.com/arepabuelas/arepabuelas-backend/api/validators"
	usersvc "github.com/arepabuelas/arepabuelas-backend/internal/users"
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/arepabuelas/arepabuelas-backend/pkg/pagination"
)

type userListResponse struct {
	Users []usersvc.UserView `json:"users"`
	Total int64              `json:"total"`
}

// AdminListUsers lists accounts with optional role and approved filters.
func AdminListUsers(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		filter, err := userFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := pagination.FromQuery(r.URL.Query())
		users, total, err := svc.List(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, userListResponse{Users: users, Total: total})
	}
}

// AdminApproveUser flips an account to approved.
func AdminApproveUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := pathUUID(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Approve(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// AdminDeactivateUser revokes an account's approval.
func AdminDeactivateUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := pathUUID(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Deactivate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// AdminChangeRole switches an account between customer and admin.
func AdminChangeRole(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := pathUUID(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload changeRoleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseUserRole(strings.TrimSpace(payload.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		user, err := svc.ChangeRole(r.Context(), id, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// AdminDeleteUser removes an account.
func AdminDeleteUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := pathUUID(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func userFilterFromQuery(r *http.Request) (usersvc.ListFilter, error) {
	var filter usersvc.ListFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role, err := enums.ParseUserRole(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role filter")
		}
		filter.Role = &role
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("approved")); raw != "" {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid approved filter")
		}
		filter.Approved = &approved
	}

	return filter, nil
}
