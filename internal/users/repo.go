package users

import (
	"context"
	"strings"

	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	"github.com/arepabuelas/arepabuelas-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Role     *enums.UserRole
	Approved *bool
}

// Repository is the persistence surface for user records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter ListFilter, page pagination.Page) ([]models.User, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a users repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail matches case-insensitively; emails are stored lower-cased.
func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, page pagination.Page) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Approved != nil {
		query = query.Where("approved = ?", *filter.Approved)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.User
	err := query.
		Order("created_at ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
