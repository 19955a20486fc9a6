package models

// User represents an account holder. The ID is the identity provider's
// subject, so rows are created on the user's first authenticated call.
type User struct {
	Base
	Name              string  `gorm:"uniqueIndex;not null" json:"name"`
	Email             string  `gorm:"uniqueIndex;not null" json:"email"`
	Phone             *string `gorm:"uniqueIndex" json:"phone,omitempty"`
	IsActive          bool    `gorm:"not null" json:"is_active"`
	BillingCycleStart int     `gorm:"not null" json:"billing_cycle_start"`
	BillingCycleEnd   int     `gorm:"not null" json:"billing_cycle_end"`
}
