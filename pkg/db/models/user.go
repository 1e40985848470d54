package models

import (
	"time"

	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	"github.com/google/uuid"
)

// User represents the canonical identity entity. New registrations start as
// unapproved customers until an admin flips the flag.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;not null;default:'customer'"`
	Approved     bool           `gorm:"column:approved;not null;default:false"`
	PhotoURL     string         `gorm:"column:photo_url"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
