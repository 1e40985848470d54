package controllers

import (
	"net/http"
	"time"

	"github.com/arepabuelas/arepabuelas-backend/api/middleware"
	"github.com/arepabuelas/arepabuelas-backend/api/responses"
	"github.com/arepabuelas/arepabuelas-backend/api/validators"
	checkoutsvc "github.com/arepabuelas/arepabuelas-backend/internal/checkout"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
)

// ProcessPayment runs a checkout attempt. Validation errors carry the full
// list of offending fields in the response details.
func ProcessPayment(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		email := middleware.UserEmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload checkoutsvc.PaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Process(r.Context(), email, payload, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
