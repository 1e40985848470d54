package orders

import (
	"context"

	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	"github.com/arepabuelas/arepabuelas-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("Payment").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("Payment").
		Where("user_email = ?", email).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) ListAll(ctx context.Context, page pagination.Page) ([]models.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("Payment").
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) CountSuccessfulByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_email = ? AND status = ?", email, enums.OrderStatusSuccessful).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
