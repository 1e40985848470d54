package models

import (
	"time"

	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	"github.com/google/uuid"
)

// Order persists a checkout, totals always recomputed server-side.
// Invariant: TotalCents == SubtotalCents - DiscountCents.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserEmail     string            `gorm:"column:user_email;not null;index"`
	SubtotalCents int64             `gorm:"column:subtotal_cents;not null"`
	DiscountCents int64             `gorm:"column:discount_cents;not null;default:0"`
	TotalCents    int64             `gorm:"column:total_cents;not null"`
	Status        enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Reference     string            `gorm:"column:reference;not null"`
	LineItems     []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment       *Payment          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
