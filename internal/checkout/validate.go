package checkout

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	"github.com/google/uuid"
)

const (
	minNameLetters   = 3
	minHolderLength  = 5
	maxLineQty       = 10
	cardNumberLength = 16
)

var (
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe  = regexp.MustCompile(`^[0-9]{7,10}$`)
	panRe    = regexp.MustCompile(`^[0-9]{16}$`)
	cvvRe    = regexp.MustCompile(`^[0-9]{3,4}$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
)

// LineItemInput is the minimal order payload: product id and quantity only.
// Pricing always comes from the catalog.
type LineItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// PaymentRequest is the checkout payload as submitted by the storefront.
type PaymentRequest struct {
	Email      string          `json:"email"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Phone      string          `json:"phone"`
	CardHolder string          `json:"cardHolder"`
	CardNumber string          `json:"cardNumber"`
	Expiry     string          `json:"expiry"`
	CVV        string          `json:"cvv"`
	CardType   string          `json:"cardType"`
	LineItems  []LineItemInput `json:"lineItems"`
}

// FieldError flags a single offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateForm checks every field and reports all failures at once, so the
// storefront can flag the whole form in a single pass. It touches no store.
func ValidateForm(req PaymentRequest, now time.Time) []FieldError {
	var errs []FieldError
	add := func(field, message string) {
		errs = append(errs, FieldError{Field: field, Message: message})
	}

	if !emailRe.MatchString(strings.TrimSpace(req.Email)) {
		add("email", "invalid email address")
	}
	if !validName(req.FirstName) {
		add("firstName", "first name must have at least 3 letters")
	}
	if !validName(req.LastName) {
		add("lastName", "last name must have at least 3 letters")
	}
	if !phoneRe.MatchString(strings.TrimSpace(req.Phone)) {
		add("phone", "phone must be 7 to 10 digits")
	}
	if !validCardHolder(req.CardHolder) {
		add("cardHolder", "card holder must be at least 5 letters")
	}
	if !panRe.MatchString(strings.TrimSpace(req.CardNumber)) {
		add("cardNumber", "card number must be exactly 16 digits")
	}
	if field, msg := validateExpiry(req.Expiry, now); msg != "" {
		add(field, msg)
	}
	if !cvvRe.MatchString(strings.TrimSpace(req.CVV)) {
		add("cvv", "cvv must be 3 or 4 digits")
	}
	if _, err := enums.ParseCardType(req.CardType); err != nil {
		add("cardType", "card type must be credit or debit")
	}

	if len(req.LineItems) == 0 {
		add("lineItems", "order must contain at least one item")
	}
	for _, item := range req.LineItems {
		if item.ProductID == uuid.Nil {
			add("lineItems", "line item product id is required")
			break
		}
	}
	for _, item := range req.LineItems {
		if item.Quantity < 1 || item.Quantity > maxLineQty {
			add("lineItems", "line item quantity must be between 1 and 10")
			break
		}
	}

	return errs
}

// validName collapses whitespace and requires a minimum count of letters.
func validName(raw string) bool {
	letters := 0
	for _, r := range strings.Join(strings.Fields(raw), " ") {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= minNameLetters
}

// validCardHolder accepts letters and spaces only, minimum length after
// trimming. The stored value is upper-cased later.
func validCardHolder(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if len([]rune(trimmed)) < minHolderLength {
		return false
	}
	for _, r := range trimmed {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

// validateExpiry enforces MM/YY and that the first day of the month after the
// stated expiry is strictly in the future. A card stated as the current month
// is still valid through the end of that month.
func validateExpiry(raw string, now time.Time) (string, string) {
	m := expiryRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "expiry", "expiry must be MM/YY"
	}

	month := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
	year := 2000 + int(m[2][0]-'0')*10 + int(m[2][1]-'0')

	boundary := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !boundary.After(now.UTC()) {
		return "expiry", "card expired"
	}
	return "", ""
}
