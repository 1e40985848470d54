package controllers

import (
	"net/http"

	"github.com/arepabuelas/arepabuelas-backend/api/middleware"
	"github.com/arepabuelas/arepabuelas-backend/api/responses"
	ordersvc "github.com/arepabuelas/arepabuelas-backend/internal/orders"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/arepabuelas/arepabuelas-backend/pkg/pagination"
)

// MyOrders returns the caller's purchase history, newest first.
func MyOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		email := middleware.UserEmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		orders, err := svc.ListMine(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// MyOrder returns one of the caller's orders for the receipt view.
func MyOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		email := middleware.UserEmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetForUser(r.Context(), email, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type orderListResponse struct {
	Orders []ordersvc.OrderView `json:"orders"`
	Total  int64                `json:"total"`
}

// AdminListOrders lists all orders across customers with pagination.
func AdminListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		page := pagination.FromQuery(r.URL.Query())
		orders, total, err := svc.ListAll(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderListResponse{Orders: orders, Total: total})
	}
}
