package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arepabuelas/arepabuelas-backend/api/middleware"
	checkoutsvc "github.com/arepabuelas/arepabuelas-backend/internal/checkout"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
)

type stubCheckoutService struct {
	receipt *checkoutsvc.Receipt
	err     error
	email   string
}

func (s *stubCheckoutService) Process(ctx context.Context, userEmail string, req checkoutsvc.PaymentRequest, now time.Time) (*checkoutsvc.Receipt, error) {
	s.email = userEmail
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

func paymentBody() string {
	return `{
		"email": "maria@example.com",
		"firstName": "Maria",
		"lastName": "Gonzalez",
		"phone": "3001234567",
		"cardHolder": "MARIA GONZALEZ",
		"cardNumber": "4111111111111111",
		"expiry": "12/29",
		"cvv": "123",
		"cardType": "credit",
		"lineItems": [{"productId": "` + uuid.NewString() + `", "quantity": 2}]
	}`
}

func TestProcessPaymentRequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(paymentBody()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ProcessPayment(&stubCheckoutService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestProcessPaymentSuccess(t *testing.T) {
	stub := &stubCheckoutService{receipt: &checkoutsvc.Receipt{
		OrderID:       uuid.New(),
		Reference:     "AR-AB12CD34",
		SubtotalCents: 9500,
		DiscountCents: 950,
		TotalCents:    8550,
		CardLast4:     "1111",
		CardType:      "credit",
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(paymentBody()))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithIdentity(req.Context(), uuid.NewString(), "maria@example.com", "customer"))
	rec := httptest.NewRecorder()
	ProcessPayment(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.email != "maria@example.com" {
		t.Fatalf("expected caller email to be forwarded, got %q", stub.email)
	}

	var envelope struct {
		Data checkoutsvc.Receipt `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Reference != "AR-AB12CD34" {
		t.Fatalf("unexpected reference %q", envelope.Data.Reference)
	}
	if envelope.Data.TotalCents != 8550 {
		t.Fatalf("unexpected total %d", envelope.Data.TotalCents)
	}
}

func TestProcessPaymentValidationDetails(t *testing.T) {
	fieldErrs := []checkoutsvc.FieldError{
		{Field: "cardNumber", Message: "card number must be 16 digits"},
		{Field: "expiry", Message: "card expired"},
	}
	stub := &stubCheckoutService{
		err: pkgerrors.New(pkgerrors.CodeValidation, "checkout validation failed").WithDetails(fieldErrs),
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(paymentBody()))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithIdentity(req.Context(), uuid.NewString(), "maria@example.com", "customer"))
	rec := httptest.NewRecorder()
	ProcessPayment(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cardNumber") {
		t.Fatalf("expected field details in response, got %s", rec.Body.String())
	}
}
