package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommissionSale is the canonical record of one closed sale, keyed by the
// upstream deal identifier. It is created and updated only by the sync path;
// the calculation fields are written only by the distribution calculator.
type CommissionSale struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	DealID string `gorm:"type:varchar(60);uniqueIndex;not null" json:"deal_id"`

	ClientName  string         `gorm:"type:varchar(200);not null" json:"client_name"`
	Product     *string        `gorm:"type:varchar(200)" json:"product,omitempty"`
	Development DevelopmentKey `gorm:"index;not null" json:"development"`

	OwnerID   string `gorm:"type:varchar(60)" json:"owner_id"`
	OwnerName string `gorm:"type:varchar(200)" json:"owner_name"`

	// Contractual payment term in months, string-encoded as received from the
	// feed. An empty incoming term never clobbers a stored non-empty one.
	TermMonths *string `gorm:"type:varchar(20)" json:"term_months,omitempty"`

	AreaM2       float64 `gorm:"type:decimal(12,2);not null" json:"area_m2"`
	PricePerArea float64 `gorm:"type:decimal(14,2);not null" json:"price_per_area"`
	TotalValue   float64 `gorm:"type:decimal(16,2);not null" json:"total_value"`

	SigningDate     time.Time `gorm:"not null;index" json:"signing_date"`
	ExternalAdvisor string    `gorm:"type:varchar(200)" json:"external_advisor"`

	// Calculation results, written by the distribution calculator together
	// with the percentages actually used, so later config edits stay auditable.
	Calculated          bool    `gorm:"not null;default:false;index" json:"calculated"`
	TotalCommission     float64 `gorm:"type:decimal(16,2);not null;default:0" json:"total_commission"`
	SalePhaseAmount     float64 `gorm:"type:decimal(16,2);not null;default:0" json:"sale_phase_amount"`
	PostSalePhaseAmount float64 `gorm:"type:decimal(16,2);not null;default:0" json:"post_sale_phase_amount"`
	SalePercentUsed     float64 `gorm:"type:decimal(6,3);not null;default:0" json:"sale_percent_used"`
	PostSalePercentUsed float64 `gorm:"type:decimal(6,3);not null;default:0" json:"post_sale_percent_used"`

	// Feed fields not yet modeled, kept as an explicit passthrough.
	RawPayload map[string]any `gorm:"type:jsonb;serializer:json" json:"raw_payload,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate ensures UUID is set
func (s *CommissionSale) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (CommissionSale) TableName() string {
	return "commission_sales"
}

// HasTerm reports whether the sale carries a non-empty payment term.
func (s *CommissionSale) HasTerm() bool {
	return s.TermMonths != nil && *s.TermMonths != ""
}

// CommissionSaleFilter represents filter criteria for sale queries
type CommissionSaleFilter struct {
	ID          *uint           `json:"id,omitempty"`
	UUID        *uuid.UUID      `json:"uuid,omitempty"`
	DealID      *string         `json:"deal_id,omitempty"`
	Development *DevelopmentKey `json:"development,omitempty"`
	Calculated  *bool           `json:"calculated,omitempty"`
	SignedYear  *int            `json:"signed_year,omitempty"`
	SignedMonth *int            `json:"signed_month,omitempty"`
}
