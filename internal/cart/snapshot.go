package cart

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// snapshot is the canonical wire shape the storefront persists between
// visits. CreatedAt travels as epoch milliseconds.
type snapshot struct {
	CreatedAt int64          `json:"createdAt"`
	Items     []snapshotItem `json:"items"`
}

type snapshotItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// DecodeSnapshot parses a stored cart snapshot. Two historical shapes exist:
// the canonical `{createdAt, items}` object and an older bare array of items.
// The bare array carries no creation time, so it decodes with a zero
// CreatedAt and is therefore treated as expired, forcing a rebuild.
func DecodeSnapshot(raw []byte) (*Cart, error) {
	if len(raw) == 0 {
		return &Cart{}, nil
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err == nil {
		return snap.toCart(), nil
	}

	var legacy []snapshotItem
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, err
	}
	return (&snapshot{Items: legacy}).toCart(), nil
}

// EncodeSnapshot renders the canonical snapshot shape.
func EncodeSnapshot(c *Cart) ([]byte, error) {
	snap := snapshot{Items: []snapshotItem{}}
	if !c.CreatedAt.IsZero() {
		snap.CreatedAt = c.CreatedAt.UnixMilli()
	}
	for _, item := range c.Items {
		snap.Items = append(snap.Items, snapshotItem{
			ProductID: item.ProductID.String(),
			Qty:       item.Qty,
		})
	}
	return json.Marshal(snap)
}

func (s *snapshot) toCart() *Cart {
	cart := &Cart{}
	if s.CreatedAt > 0 {
		cart.CreatedAt = time.UnixMilli(s.CreatedAt)
	}
	for _, item := range s.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil || item.Qty <= 0 {
			// malformed lines are dropped rather than failing the whole cart
			continue
		}
		cart.Items = append(cart.Items, Item{ProductID: id, Qty: item.Qty})
	}
	return cart
}
