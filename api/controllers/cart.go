package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/arepabuelas/arepabuelas-backend/api/middleware"
	"github.com/arepabuelas/arepabuelas-backend/api/responses"
	cartsvc "github.com/arepabuelas/arepabuelas-backend/internal/cart"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
)

const maxSnapshotBytes = 64 << 10

// QuoteCart re-prices a client-held cart snapshot against the catalog.
// The body is the snapshot JSON as stored by the storefront.
func QuoteCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		email := middleware.UserEmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable cart snapshot"))
			return
		}

		cart, err := cartsvc.DecodeSnapshot(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart snapshot"))
			return
		}

		quote, err := svc.Quote(r.Context(), email, cart, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
