package enums

import (
	"fmt"
	"strings"
)

// CardType distinguishes the credit/debit toggle on the payment form.
type CardType string

const (
	CardTypeCredit CardType = "credit"
	CardTypeDebit  CardType = "debit"
)

func (c CardType) IsValid() bool {
	return c == CardTypeCredit || c == CardTypeDebit
}

func ParseCardType(value string) (CardType, error) {
	card := CardType(strings.ToLower(strings.TrimSpace(value)))
	if !card.IsValid() {
		return "", fmt.Errorf("invalid card type %q", value)
	}
	return card, nil
}
