package models

import (
	"time"
)

// BillingTarget is a planning figure keyed by (year, month). Pure
// upsert-by-key record, no derived logic.
type BillingTarget struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Year      int       `gorm:"not null;index:idx_billing_targets_period,unique" json:"year"`
	Month     int       `gorm:"not null;index:idx_billing_targets_period,unique" json:"month"`
	Amount    float64   `gorm:"type:decimal(16,2);not null" json:"amount"`
	UpdatedBy string    `gorm:"type:varchar(120)" json:"updated_by"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (BillingTarget) TableName() string {
	return "billing_targets"
}

// SalesTarget is the unit-count planning counterpart of BillingTarget.
type SalesTarget struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Year      int       `gorm:"not null;index:idx_sales_targets_period,unique" json:"year"`
	Month     int       `gorm:"not null;index:idx_sales_targets_period,unique" json:"month"`
	Amount    float64   `gorm:"type:decimal(16,2);not null" json:"amount"`
	UpdatedBy string    `gorm:"type:varchar(120)" json:"updated_by"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (SalesTarget) TableName() string {
	return "sales_targets"
}

// TargetFilter represents filter criteria for target queries
type TargetFilter struct {
	Year  *int `json:"year,omitempty"`
	Month *int `json:"month,omitempty"`
}
