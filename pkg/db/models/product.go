package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry on the public menu.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	Description string    `gorm:"column:description"`
	ImageURL    string    `gorm:"column:image_url"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
