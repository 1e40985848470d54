package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem captures the name/price snapshot of each purchased product.
type OrderLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name           string    `gorm:"column:name;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
