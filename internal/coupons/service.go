package coupons

import (
	"context"
	"fmt"

	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
)

type orderCounter interface {
	CountSuccessfulByEmail(ctx context.Context, email string) (int64, error)
}

// Service answers whether a customer still qualifies for the first-purchase
// discount.
type Service interface {
	HasFirstPurchaseDiscount(ctx context.Context, email string) bool
}

type service struct {
	orders orderCounter
	logg   *logger.Logger
}

// NewService builds the coupon evaluator.
func NewService(orders orderCounter, logg *logger.Logger) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order counter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{orders: orders, logg: logg}, nil
}

// HasFirstPurchaseDiscount is true iff the customer has zero successful
// orders. A store failure degrades to "no discount" instead of blocking
// checkout; eligibility is a soft enhancement, not a precondition.
func (s *service) HasFirstPurchaseDiscount(ctx context.Context, email string) bool {
	if email == "" {
		return false
	}

	count, err := s.orders.CountSuccessfulByEmail(ctx, email)
	if err != nil {
		s.logg.Warn(s.logg.WithUserEmail(ctx, email), "coupon eligibility lookup failed, defaulting to no discount")
		return false
	}
	return count == 0
}
