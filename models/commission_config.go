package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommissionConfig holds the per-development commission split configuration.
// There is at most one row per canonical development; rows are mutated only
// via upsert and never deleted.
type CommissionConfig struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	Development DevelopmentKey `gorm:"uniqueIndex;not null" json:"development"`

	// Phase percentages applied to the sale's total value
	SalePercent     float64 `gorm:"type:decimal(6,3);not null;default:0" json:"sale_percent"`
	PostSalePercent float64 `gorm:"type:decimal(6,3);not null;default:0" json:"post_sale_percent"`

	// Role percentages applied to each phase amount
	SaleManagerPercent     float64 `gorm:"type:decimal(6,3);not null;default:0" json:"sale_manager_percent"`
	DealOwnerPercent       float64 `gorm:"type:decimal(6,3);not null;default:0" json:"deal_owner_percent"`
	ExternalAdvisorPercent float64 `gorm:"type:decimal(6,3);not null;default:0" json:"external_advisor_percent"`

	// Pool
	PoolEnabled bool    `gorm:"not null;default:false" json:"pool_enabled"`
	PoolPercent float64 `gorm:"type:decimal(6,3);not null;default:0" json:"pool_percent"`

	// Independently toggle-able add-ons
	CustomerServiceEnabled bool    `gorm:"not null;default:false" json:"customer_service_enabled"`
	CustomerServicePercent float64 `gorm:"type:decimal(6,3);not null;default:0" json:"customer_service_percent"`
	DeliveriesEnabled      bool    `gorm:"not null;default:false" json:"deliveries_enabled"`
	DeliveriesPercent      float64 `gorm:"type:decimal(6,3);not null;default:0" json:"deliveries_percent"`
	BondsEnabled           bool    `gorm:"not null;default:false" json:"bonds_enabled"`
	BondsPercent           float64 `gorm:"type:decimal(6,3);not null;default:0" json:"bonds_percent"`

	UpdatedBy string `gorm:"type:varchar(120)" json:"updated_by"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate ensures UUID is set
func (c *CommissionConfig) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (CommissionConfig) TableName() string {
	return "commission_configs"
}

// CommissionConfigFilter represents filter criteria for config queries
type CommissionConfigFilter struct {
	ID          *uint           `json:"id,omitempty"`
	UUID        *uuid.UUID      `json:"uuid,omitempty"`
	Development *DevelopmentKey `json:"development,omitempty"`
	PoolEnabled *bool           `json:"pool_enabled,omitempty"`
}
