package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type catalogLoader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type discountChecker interface {
	HasFirstPurchaseDiscount(ctx context.Context, email string) bool
}

// QuoteLine is one re-priced cart line. Unit prices always come from the
// catalog, never from the client snapshot.
type QuoteLine struct {
	ProductID      uuid.UUID `json:"productId"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Qty            int       `json:"qty"`
	LineTotalCents int64     `json:"lineTotalCents"`
}

// Quote is the authoritative server-side pricing of a cart snapshot.
type Quote struct {
	Lines           []QuoteLine `json:"lines"`
	SubtotalCents   int64       `json:"subtotalCents"`
	DiscountCents   int64       `json:"discountCents"`
	TotalCents      int64       `json:"totalCents"`
	DiscountApplied bool        `json:"discountApplied"`
	Expired         bool        `json:"expired"`
}

// Service re-prices cart snapshots against the catalog.
type Service interface {
	Quote(ctx context.Context, email string, c *Cart, now time.Time) (*Quote, error)
}

type service struct {
	catalog   catalogLoader
	discounts discountChecker
	rules     Rules
	logg      *logger.Logger
}

// NewService builds a quote service backed by the provided stack.
func NewService(catalog catalogLoader, discounts discountChecker, rules Rules, logg *logger.Logger) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if discounts == nil {
		return nil, fmt.Errorf("discount checker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{catalog: catalog, discounts: discounts, rules: rules, logg: logg}, nil
}

// firstPurchaseRate is the flat first-purchase discount.
var firstPurchaseRate = decimal.NewFromFloat(0.10)

// DiscountCents computes the first-purchase discount on a subtotal, rounded
// down to whole cents.
func DiscountCents(subtotalCents int64) int64 {
	return decimal.NewFromInt(subtotalCents).Mul(firstPurchaseRate).Floor().IntPart()
}

// Quote purges expired carts, re-prices the remaining lines from the catalog
// and applies the first-purchase discount when the caller is eligible.
// Catalog entries that no longer exist are dropped from the quote.
func (s *service) Quote(ctx context.Context, email string, c *Cart, now time.Time) (*Quote, error) {
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart snapshot is required")
	}

	quote := &Quote{Lines: []QuoteLine{}}

	if c.PurgeIfExpired(now, s.rules) {
		quote.Expired = true
		return quote, nil
	}
	if c.IsEmpty() {
		return quote, nil
	}

	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading catalog prices")
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range c.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", item.ProductID.String()), "dropping unknown product from quote")
			continue
		}
		qty := item.Qty
		if qty > s.rules.MaxQty {
			qty = s.rules.MaxQty
		}
		line := QuoteLine{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			Qty:            qty,
			LineTotalCents: product.PriceCents * int64(qty),
		}
		quote.Lines = append(quote.Lines, line)
		quote.SubtotalCents += line.LineTotalCents
	}

	if len(quote.Lines) > 0 && s.discounts.HasFirstPurchaseDiscount(ctx, email) {
		quote.DiscountCents = DiscountCents(quote.SubtotalCents)
		quote.DiscountApplied = quote.DiscountCents > 0
	}
	quote.TotalCents = quote.SubtotalCents - quote.DiscountCents

	return quote, nil
}
