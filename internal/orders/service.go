package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/pagination"
	"github.com/google/uuid"
)

// LineView is one re-priced line as it was sold.
type LineView struct {
	ProductID      uuid.UUID `json:"productId"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Qty            int       `json:"qty"`
}

// OrderView is the history representation of an order, card tail masked.
type OrderView struct {
	ID            uuid.UUID  `json:"id"`
	Reference     string     `json:"reference"`
	Status        string     `json:"status"`
	UserEmail     string     `json:"userEmail"`
	SubtotalCents int64      `json:"subtotalCents"`
	DiscountCents int64      `json:"discountCents"`
	TotalCents    int64      `json:"totalCents"`
	CardLast4     string     `json:"cardLast4,omitempty"`
	CardType      string     `json:"cardType,omitempty"`
	Lines         []LineView `json:"lines"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Service exposes order history reads.
type Service interface {
	ListMine(ctx context.Context, email string) ([]OrderView, error)
	ListAll(ctx context.Context, page pagination.Page) ([]OrderView, int64, error)
	GetForUser(ctx context.Context, email string, id uuid.UUID) (*OrderView, error)
}

type service struct {
	repo Repository
}

// NewService builds the order history service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// ListMine returns the caller's orders, newest first.
func (s *service) ListMine(ctx context.Context, email string) ([]OrderView, error) {
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	list, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order history")
	}
	return toViews(list), nil
}

// ListAll returns every order for the admin history screen.
func (s *service) ListAll(ctx context.Context, page pagination.Page) ([]OrderView, int64, error) {
	list, total, err := s.repo.ListAll(ctx, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading orders")
	}
	return toViews(list), total, nil
}

// GetForUser returns a single order, refusing to serve another user's record.
func (s *service) GetForUser(ctx context.Context, email string, id uuid.UUID) (*OrderView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	}
	if order.UserEmail != email {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	view := toView(*order)
	return &view, nil
}

func toViews(list []models.Order) []OrderView {
	views := make([]OrderView, 0, len(list))
	for _, order := range list {
		views = append(views, toView(order))
	}
	return views
}

func toView(order models.Order) OrderView {
	view := OrderView{
		ID:            order.ID,
		Reference:     order.Reference,
		Status:        string(order.Status),
		UserEmail:     order.UserEmail,
		SubtotalCents: order.SubtotalCents,
		DiscountCents: order.DiscountCents,
		TotalCents:    order.TotalCents,
		Lines:         make([]LineView, 0, len(order.LineItems)),
		CreatedAt:     order.CreatedAt,
	}
	if order.Payment != nil {
		view.CardLast4 = order.Payment.CardLast4
		view.CardType = string(order.Payment.CardType)
	}
	for _, item := range order.LineItems {
		view.Lines = append(view.Lines, LineView{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
		})
	}
	return view
}
