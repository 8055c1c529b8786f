package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"pyggy/internal/uuid"
)

// Base carries the UUIDv7 primary key and timestamps shared by every table.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUIDv7 unless the caller chose an ID, which must
// then be a well-formed UUID.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
		return nil
	}
	normalized, err := uuid.Parse(b.ID)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", b.ID, err)
	}
	b.ID = normalized
	return nil
}
