package models

import (
	"time"

	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	"github.com/google/uuid"
)

// Payment records the card descriptor for an order. Only the masked tail is
// kept; the PAN and CVV never reach storage.
type Payment struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID      `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	CardHolder string         `gorm:"column:card_holder;not null"`
	CardLast4  string         `gorm:"column:card_last4;not null"`
	CardType   enums.CardType `gorm:"column:card_type;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
}
