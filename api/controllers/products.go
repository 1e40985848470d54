package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arepabuelas/arepabuelas-backend/api/responses"
	"github.com/arepabuelas/arepabuelas-backend/api/validators"
	productsvc "github.com/arepabuelas/arepabuelas-backend/internal/products"
	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
)

type productView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PriceCents  int64     `json:"priceCents"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toProductView(p models.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		PriceCents:  p.PriceCents,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

// ListProducts serves the public menu. No authentication required.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]productView, 0, len(products))
		for _, p := range products {
			views = append(views, toProductView(p))
		}
		responses.WriteSuccess(w, views)
	}
}

// GetProduct serves a single catalog entry.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductView(*product))
	}
}

// AdminCreateProduct creates a catalog entry from a multipart form with
// name, price_cents, description fields and an optional "image" file.
func AdminCreateProduct(svc productsvc.Service, maxImageBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := productInputFromForm(r, maxImageBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), productsvc.CreateProductInput{
			Name:        input.Name,
			PriceCents:  input.PriceCents,
			Description: input.Description,
			Image:       input.Image,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toProductView(*product))
	}
}

// AdminUpdateProduct replaces a catalog entry's fields. Omitting the image
// file keeps the current picture.
func AdminUpdateProduct(svc productsvc.Service, maxImageBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := productInputFromForm(r, maxImageBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, productsvc.UpdateProductInput{
			Name:        input.Name,
			PriceCents:  input.PriceCents,
			Description: input.Description,
			Image:       input.Image,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductView(*product))
	}
}

// AdminDeleteProduct removes a catalog entry and its stored image.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type productFormInput struct {
	Name        string
	PriceCents  int64
	Description string
	Image       *productsvc.ImageUpload
}

func productInputFromForm(r *http.Request, maxImageBytes int64) (*productFormInput, error) {
	image, err := validators.ReadImagePart(r, "image", maxImageBytes)
	if err != nil {
		return nil, err
	}

	priceRaw := strings.TrimSpace(r.FormValue("price_cents"))
	price, err := strconv.ParseInt(priceRaw, 10, 64)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price_cents must be an integer")
	}

	input := &productFormInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		PriceCents:  price,
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if image != nil {
		input.Image = &productsvc.ImageUpload{
			ContentType: image.ContentType,
			Data:        image.Data,
		}
	}
	return input, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
