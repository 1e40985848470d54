package middleware

import (
	"net/http"
	"strings"

	"github.com/arepabuelas/arepabuelas-backend/api/responses"
	pkgAuth "github.com/arepabuelas/arepabuelas-backend/pkg/auth"
	"github.com/arepabuelas/arepabuelas-backend/pkg/config"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// claims. Expiry is enforced here; the token is the only session state.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid or expired token"))
				return
			}

			ctx := WithIdentity(r.Context(), claims.UserID.String(), claims.Email, string(claims.Role))
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    claims.UserID.String(),
					"actor_role": string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
