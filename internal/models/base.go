package models

import (
	"tally/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables.
// Timestamps are Unix epoch milliseconds.
type Base struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli" json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
