package orders

import (
	"context"

	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	"github.com/arepabuelas/arepabuelas-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the persistence surface for orders and their children.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByEmail(ctx context.Context, email string) ([]models.Order, error)
	ListAll(ctx context.Context, page pagination.Page) ([]models.Order, int64, error)
	CountSuccessfulByEmail(ctx context.Context, email string) (int64, error)
}
