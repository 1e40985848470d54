package controllers

import (
	"net/http"

	"github.com/arepabuelas/arepabuelas-backend/api/middleware"
	"github.com/arepabuelas/arepabuelas-backend/api/responses"
	couponsvc "github.com/arepabuelas/arepabuelas-backend/internal/coupons"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
)

// CheckCoupon reports whether the caller still qualifies for the
// first-purchase discount.
func CheckCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		email := middleware.UserEmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		responses.WriteSuccess(w, map[string]bool{
			"hasCoupon": svc.HasFirstPurchaseDiscount(r.Context(), email),
		})
	}
}
