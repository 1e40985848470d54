package middleware

import (
	"net/http"

	"github.com/arepabuelas/arepabuelas-backend/api/responses"
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
)

// RequireElevated gates the admin surface to admin and superadmin callers.
func RequireElevated(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := enums.ParseUserRole(RoleFromContext(r.Context()))
			if err != nil || !role.IsElevated() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
