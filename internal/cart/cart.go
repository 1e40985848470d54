package cart

import (
	"time"

	"github.com/arepabuelas/arepabuelas-backend/pkg/config"
	"github.com/google/uuid"
)

// Item is a single cart line. Quantity is always 1..MaxQty while the line
// exists; a line never sits at zero, it is removed instead.
type Item struct {
	ProductID uuid.UUID `json:"productId"`
	Qty       int       `json:"qty"`
}

// Cart is the client-held cart state. CreatedAt starts the TTL clock; a cart
// older than the TTL is treated as empty and purged before any read.
type Cart struct {
	CreatedAt time.Time
	Items     []Item
}

// Rules carries the tunables the state machine enforces.
type Rules struct {
	TTL    time.Duration
	MaxQty int
}

// RulesFromConfig maps the cart config onto state machine rules.
func RulesFromConfig(cfg config.CartConfig) Rules {
	return Rules{TTL: cfg.TTL(), MaxQty: cfg.MaxQty}
}

// New returns an empty cart whose TTL clock starts at now.
func New(now time.Time) *Cart {
	return &Cart{CreatedAt: now}
}

// Add puts one unit of the product in the cart. An existing line is
// incremented, capped at MaxQty; a new line starts at quantity 1. Adding to
// an empty cart restarts the TTL clock.
func (c *Cart) Add(productID uuid.UUID, now time.Time, rules Rules) {
	if len(c.Items) == 0 {
		c.CreatedAt = now
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if c.Items[i].Qty < rules.MaxQty {
				c.Items[i].Qty++
			}
			return
		}
	}
	c.Items = append(c.Items, Item{ProductID: productID, Qty: 1})
}

// ChangeQuantity applies a delta to an existing line. A resulting quantity of
// zero or below removes the line; anything above MaxQty is clamped.
func (c *Cart) ChangeQuantity(productID uuid.UUID, delta int, rules Rules) {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		next := c.Items[i].Qty + delta
		switch {
		case next <= 0:
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		case next > rules.MaxQty:
			c.Items[i].Qty = rules.MaxQty
		default:
			c.Items[i].Qty = next
		}
		return
	}
}

// Remove drops the line for the product if present.
func (c *Cart) Remove(productID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart, used after a successful checkout.
func (c *Cart) Clear() {
	c.Items = nil
	c.CreatedAt = time.Time{}
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalQty sums the quantities across all lines.
func (c *Cart) TotalQty() int {
	total := 0
	for _, item := range c.Items {
		total += item.Qty
	}
	return total
}

// Expired reports whether the TTL window has lapsed. A cart with no recorded
// creation time counts as expired so malformed snapshots are rebuilt.
func (c *Cart) Expired(now time.Time, rules Rules) bool {
	if c.IsEmpty() {
		return false
	}
	if c.CreatedAt.IsZero() {
		return true
	}
	return now.Sub(c.CreatedAt) > rules.TTL
}

// PurgeIfExpired clears an expired cart and reports whether it did so.
func (c *Cart) PurgeIfExpired(now time.Time, rules Rules) bool {
	if !c.Expired(now, rules) {
		return false
	}
	c.Clear()
	return true
}
