package security

import "unicode"

// Registration password policy: at least 10 characters, one upper, one lower,
// two digits and two symbols.
const (
	policyMinLength = 10
	policyMinDigits = 2
	policyMinSymbol = 2
)

// PasswordPolicyErrors returns every rule the candidate password violates so
// the registration form can surface them all at once.
func PasswordPolicyErrors(password string) []string {
	var (
		upper, lower    bool
		digits, symbols int
	)
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digits++
		default:
			symbols++
		}
	}

	var violations []string
	if len([]rune(password)) < policyMinLength {
		violations = append(violations, "must be at least 10 characters")
	}
	if !upper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if !lower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if digits < policyMinDigits {
		violations = append(violations, "must contain at least 2 digits")
	}
	if symbols < policyMinSymbol {
		violations = append(violations, "must contain at least 2 symbols")
	}
	return violations
}
