package models

import (
	"tally/internal/uuid"

	"gorm.io/gorm"
)

// BillingPeriod is a named date range that groups a user's expenses.
type BillingPeriod struct {
	ID        string `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"not null;index" json:"user_id"`
	Name      string `gorm:"not null" json:"name"`
	StartDate int64  `gorm:"not null" json:"start_date"`
	EndDate   int64  `gorm:"not null" json:"end_date"`
	IsActive  bool   `gorm:"not null" json:"is_active"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"`
}

// BeforeCreate generates the primary key.
func (p *BillingPeriod) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}
