package pagination

import (
	"net/url"
	"strconv"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Page captures limit/offset parameters for admin listings.
type Page struct {
	Limit  int
	Offset int
}

// FromQuery parses limit/offset from query params, clamping to sane bounds.
func FromQuery(values url.Values) Page {
	page := Page{Limit: defaultLimit}

	if raw := values.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page.Limit = parsed
		}
	}
	if page.Limit > maxLimit {
		page.Limit = maxLimit
	}

	if raw := values.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			page.Offset = parsed
		}
	}

	return page
}
