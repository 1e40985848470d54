package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arepabuelas/arepabuelas-backend/internal/cart"
	"github.com/arepabuelas/arepabuelas-backend/internal/orders"
	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogLoader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type discountChecker interface {
	HasFirstPurchaseDiscount(ctx context.Context, email string) bool
}

// ReceiptLine snapshots one purchased line at its authoritative price.
type ReceiptLine struct {
	ProductID      uuid.UUID `json:"productId"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Qty            int       `json:"qty"`
}

// Receipt is returned to the storefront for the receipt view.
type Receipt struct {
	OrderID       uuid.UUID     `json:"orderId"`
	Reference     string        `json:"reference"`
	SubtotalCents int64         `json:"subtotalCents"`
	DiscountCents int64         `json:"discountCents"`
	TotalCents    int64         `json:"totalCents"`
	CardLast4     string        `json:"cardLast4"`
	CardType      string        `json:"cardType"`
	Lines         []ReceiptLine `json:"lines"`
}

// Service processes a checkout attempt end to end.
type Service interface {
	Process(ctx context.Context, userEmail string, req PaymentRequest, now time.Time) (*Receipt, error)
}

type service struct {
	tx        txRunner
	catalog   catalogLoader
	orderRepo orders.Repository
	discounts discountChecker
	logg      *logger.Logger
}

// NewService builds the checkout processor.
func NewService(tx txRunner, catalog catalogLoader, orderRepo orders.Repository, discounts discountChecker, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if discounts == nil {
		return nil, fmt.Errorf("discount checker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, catalog: catalog, orderRepo: orderRepo, discounts: discounts, logg: logg}, nil
}

// Process validates the form before any store access, then re-prices every
// line from the catalog and persists order, line items and payment in a
// single transaction. A failure rolls everything back; no partial order
// survives.
func (s *service) Process(ctx context.Context, userEmail string, req PaymentRequest, now time.Time) (*Receipt, error) {
	if userEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authenticated user required")
	}

	if fieldErrs := ValidateForm(req, now); len(fieldErrs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment details").WithDetails(fieldErrs)
	}

	cardType, _ := enums.ParseCardType(req.CardType)
	eligible := s.discounts.HasFirstPurchaseDiscount(ctx, userEmail)

	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)

		lines, subtotal, err := s.priceLines(ctx, req.LineItems)
		if err != nil {
			return err
		}

		var discount int64
		if eligible {
			discount = cart.DiscountCents(subtotal)
		}

		orderID := uuid.New()
		order, err := repo.Create(ctx, &models.Order{
			ID:            orderID,
			UserEmail:     userEmail,
			SubtotalCents: subtotal,
			DiscountCents: discount,
			TotalCents:    subtotal - discount,
			Status:        enums.OrderStatusSuccessful,
			Reference:     referenceFor(orderID),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting order")
		}

		items := make([]models.OrderLineItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, models.OrderLineItem{
				OrderID:        order.ID,
				ProductID:      line.ProductID,
				Name:           line.Name,
				UnitPriceCents: line.UnitPriceCents,
				Qty:            line.Qty,
			})
		}
		if err := repo.CreateLineItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting line items")
		}

		pan := strings.TrimSpace(req.CardNumber)
		payment := &models.Payment{
			OrderID:    order.ID,
			CardHolder: strings.ToUpper(strings.TrimSpace(req.CardHolder)),
			CardLast4:  pan[len(pan)-4:],
			CardType:   cardType,
		}
		if _, err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting payment")
		}

		receipt = &Receipt{
			OrderID:       order.ID,
			Reference:     order.Reference,
			SubtotalCents: subtotal,
			DiscountCents: discount,
			TotalCents:    subtotal - discount,
			CardLast4:     payment.CardLast4,
			CardType:      string(cardType),
			Lines:         lines,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithUserEmail(ctx, userEmail)
	s.logg.Info(s.logg.WithField(ctx, "order_id", receipt.OrderID.String()), "checkout confirmed")
	return receipt, nil
}

// priceLines re-prices every requested line from the catalog. Unknown
// products fail the checkout; client-supplied prices are never consulted.
func (s *service) priceLines(ctx context.Context, inputs []LineItemInput) ([]ReceiptLine, int64, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, item := range inputs {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading catalog prices")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]ReceiptLine, 0, len(inputs))
	var subtotal int64
	for _, item := range inputs {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown product %s", item.ProductID))
		}
		lines = append(lines, ReceiptLine{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			Qty:            item.Quantity,
		})
		subtotal += product.PriceCents * int64(item.Quantity)
	}
	return lines, subtotal, nil
}

// referenceFor derives the short human-readable code shown on receipts.
func referenceFor(id uuid.UUID) string {
	compact := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return "AR-" + compact[:8]
}
