package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	productsvc "github.com/arepabuelas/arepabuelas-backend/internal/products"
	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubProductService struct {
	products  []models.Product
	deleted   []uuid.UUID
	listErr   error
	deleteErr error
}

func (s *stubProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.products, s.listErr
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubProductService) Create(ctx context.Context, input productsvc.CreateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func TestListProducts(t *testing.T) {
	stub := &stubProductService{products: []models.Product{
		{ID: uuid.New(), Name: "Arepa de Queso", PriceCents: 850},
		{ID: uuid.New(), Name: "Arepa Pabellon", PriceCents: 1200},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	ListProducts(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data []productView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 products, got %d", len(envelope.Data))
	}
	if envelope.Data[0].Name != "Arepa de Queso" {
		t.Fatalf("unexpected first product %q", envelope.Data[0].Name)
	}
}

func TestGetProductNotFound(t *testing.T) {
	stub := &stubProductService{}

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productID", uuid.NewString())
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/x", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	GetProduct(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminDeleteProduct(t *testing.T) {
	productID := uuid.New()

	t.Run("invalid id", func(t *testing.T) {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productID", "not-a-uuid")
		ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)

		req := httptest.NewRequest(http.MethodDelete, "/api/admin/v1/products/not-a-uuid", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		AdminDeleteProduct(&stubProductService{}, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubProductService{}
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productID", productID.String())
		ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)

		req := httptest.NewRequest(http.MethodDelete, "/api/admin/v1/products/"+productID.String(), nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		AdminDeleteProduct(stub, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(stub.deleted) != 1 || stub.deleted[0] != productID {
			t.Fatalf("expected delete to be invoked with %s", productID)
		}
	})
}
