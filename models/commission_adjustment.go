package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommissionAdjustment is one append-only audit entry for a manual correction
// of a distribution. Rows are never mutated or deleted; the distribution
// itself is updated separately by the caller.
type CommissionAdjustment struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	DistributionID uint `gorm:"not null;index" json:"distribution_id"`
	SaleID         uint `gorm:"not null;index" json:"sale_id"`

	OldValue float64 `gorm:"type:decimal(16,2);not null" json:"old_value"`
	NewValue float64 `gorm:"type:decimal(16,2);not null" json:"new_value"`

	OldRole *string `gorm:"type:varchar(40)" json:"old_role,omitempty"`
	NewRole *string `gorm:"type:varchar(40)" json:"new_role,omitempty"`

	AmountImpact float64 `gorm:"type:decimal(16,2);not null" json:"amount_impact"`

	Actor  string  `gorm:"type:varchar(120);not null" json:"actor"`
	Reason *string `gorm:"type:text" json:"reason,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// BeforeCreate ensures UUID is set
func (a *CommissionAdjustment) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (CommissionAdjustment) TableName() string {
	return "commission_adjustments"
}

// CommissionAdjustmentFilter represents filter criteria for adjustment queries
type CommissionAdjustmentFilter struct {
	ID             *uint   `json:"id,omitempty"`
	SaleID         *uint   `json:"sale_id,omitempty"`
	DistributionID *uint   `json:"distribution_id,omitempty"`
	Actor          *string `json:"actor,omitempty"`
}
