package checkout

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func validRequest() PaymentRequest {
	return PaymentRequest{
		Email:      "ana@example.com",
		FirstName:  "Ana",
		LastName:   "Perez",
		Phone:      "3051234567",
		CardHolder: "ANA PEREZ",
		CardNumber: "4242424242424242",
		Expiry:     "12/99",
		CVV:        "123",
		CardType:   "credit",
		LineItems:  []LineItemInput{{ProductID: uuid.New(), Quantity: 2}},
	}
}

func fieldsOf(errs []FieldError) map[string]bool {
	set := map[string]bool{}
	for _, e := range errs {
		set[e.Field] = true
	}
	return set
}

func TestValidFormPasses(t *testing.T) {
	if errs := ValidateForm(validRequest(), time.Now()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestSingleFieldFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PaymentRequest)
		field  string
	}{
		{"bad email", func(r *PaymentRequest) { r.Email = "not-an-email" }, "email"},
		{"short first name", func(r *PaymentRequest) { r.FirstName = "Al" }, "firstName"},
		{"short last name", func(r *PaymentRequest) { r.LastName = "  B " }, "lastName"},
		{"phone too short", func(r *PaymentRequest) { r.Phone = "123456" }, "phone"},
		{"phone too long", func(r *PaymentRequest) { r.Phone = "12345678901" }, "phone"},
		{"holder too short", func(r *PaymentRequest) { r.CardHolder = "ANA" }, "cardHolder"},
		{"holder with digits", func(r *PaymentRequest) { r.CardHolder = "ANA P3REZ" }, "cardHolder"},
		{"card number too short", func(r *PaymentRequest) { r.CardNumber = "123" }, "cardNumber"},
		{"card number with letters", func(r *PaymentRequest) { r.CardNumber = "42424242424242ab" }, "cardNumber"},
		{"expiry bad shape", func(r *PaymentRequest) { r.Expiry = "13/30" }, "expiry"},
		{"cvv too short", func(r *PaymentRequest) { r.CVV = "12" }, "cvv"},
		{"cvv too long", func(r *PaymentRequest) { r.CVV = "12345" }, "cvv"},
		{"unknown card type", func(r *PaymentRequest) { r.CardType = "prepaid" }, "cardType"},
		{"empty cart", func(r *PaymentRequest) { r.LineItems = nil }, "lineItems"},
		{"zero quantity", func(r *PaymentRequest) { r.LineItems[0].Quantity = 0 }, "lineItems"},
		{"quantity above cap", func(r *PaymentRequest) { r.LineItems[0].Quantity = 11 }, "lineItems"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			errs := ValidateForm(req, time.Now())
			if len(errs) != 1 {
				t.Fatalf("expected exactly one error, got %v", errs)
			}
			if errs[0].Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, errs[0].Field)
			}
		})
	}
}

func TestExpiredCardIsFlagged(t *testing.T) {
	req := validRequest()
	req.Expiry = "01/20"

	errs := ValidateForm(req, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC))
	if len(errs) != 1 || errs[0].Field != "expiry" {
		t.Fatalf("expected expiry error, got %v", errs)
	}
	if errs[0].Message != "card expired" {
		t.Fatalf("expected card expired message, got %q", errs[0].Message)
	}
}

func TestCurrentMonthStillValid(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	req := validRequest()
	req.Expiry = "08/26"

	if errs := ValidateForm(req, now); len(errs) != 0 {
		t.Fatalf("card expiring this month must remain valid, got %v", errs)
	}

	req.Expiry = "07/26"
	errs := ValidateForm(req, now)
	if len(errs) != 1 || errs[0].Message != "card expired" {
		t.Fatalf("last month's card must be expired, got %v", errs)
	}
}

func TestAllFailuresReportedAtOnce(t *testing.T) {
	req := PaymentRequest{
		Email:      "nope",
		FirstName:  "A",
		LastName:   "B",
		Phone:      "12",
		CardHolder: "AB",
		CardNumber: "123",
		Expiry:     "99/99",
		CVV:        "1",
		CardType:   "cash",
	}

	errs := ValidateForm(req, time.Now())
	got := fieldsOf(errs)
	for _, field := range []string{"email", "firstName", "lastName", "phone", "cardHolder", "cardNumber", "expiry", "cvv", "cardType", "lineItems"} {
		if !got[field] {
			t.Errorf("expected %s to be flagged, got %v", field, errs)
		}
	}
}
