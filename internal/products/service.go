package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type imageUploader interface {
	UploadImage(ctx context.Context, prefix, contentType string, payload []byte) (string, error)
	Remove(ctx context.Context, publicRef string) error
}

// ImageUpload carries a decoded multipart image part.
type ImageUpload struct {
	ContentType string
	Data        []byte
}

// CreateProductInput is the admin create payload.
type CreateProductInput struct {
	Name        string
	PriceCents  int64
	Description string
	Image       *ImageUpload
}

// UpdateProductInput is the admin update payload. A nil Image keeps the
// current picture.
type UpdateProductInput struct {
	Name        string
	PriceCents  int64
	Description string
	Image       *ImageUpload
}

// Service exposes catalog reads and the admin CRUD surface.
type Service interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo           Repository
	uploader       imageUploader
	maxUploadBytes int64
	logg           *logger.Logger
}

// NewService builds the catalog service.
func NewService(repo Repository, uploader imageUploader, maxUploadBytes int64, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("image uploader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, uploader: uploader, maxUploadBytes: maxUploadBytes, logg: logg}, nil
}

// List returns the public catalog.
func (s *service) List(ctx context.Context) ([]models.Product, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading catalog")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	return product, nil
}

// Create validates the payload, stores the image first and then the record.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if errs := s.validateFields(input.Name, input.PriceCents); len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(errs)
	}

	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		PriceCents:  input.PriceCents,
		Description: strings.TrimSpace(input.Description),
	}

	if input.Image != nil {
		url, err := s.storeImage(ctx, product.Name, input.Image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = url
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting product")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", created.ID.String()), "product created")
	return created, nil
}

// Update overwrites the record; a new image replaces the old object.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if errs := s.validateFields(input.Name, input.PriceCents); len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(errs)
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.PriceCents = input.PriceCents
	product.Description = strings.TrimSpace(input.Description)

	if input.Image != nil {
		url, err := s.storeImage(ctx, product.Name, input.Image)
		if err != nil {
			return nil, err
		}
		if product.ImageURL != "" {
			if err := s.uploader.Remove(ctx, product.ImageURL); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "product_id", id.String()), "failed to remove replaced product image")
			}
		}
		product.ImageURL = url
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting product")
	}
	return updated, nil
}

// Delete removes the record and best-effort removes its stored image.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting product")
	}
	if product.ImageURL != "" {
		if err := s.uploader.Remove(ctx, product.ImageURL); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", id.String()), "failed to remove deleted product image")
		}
	}
	return nil
}

func (s *service) validateFields(name string, priceCents int64) []string {
	var errs []string
	if strings.TrimSpace(name) == "" {
		errs = append(errs, "name is required")
	}
	if priceCents <= 0 {
		errs = append(errs, "price must be positive")
	}
	return errs
}

func (s *service) storeImage(ctx context.Context, name string, image *ImageUpload) (string, error) {
	if image.ContentType != "image/png" && image.ContentType != "image/jpeg" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image must be PNG or JPEG")
	}
	if s.maxUploadBytes > 0 && int64(len(image.Data)) > s.maxUploadBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the upload size limit")
	}
	prefix := slugify(name)
	url, err := s.uploader.UploadImage(ctx, prefix, image.ContentType, image.Data)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return "", appErr
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading product image")
	}
	return url, nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "product"
	}
	return slug
}
