package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Partner collection statuses. Each phase of a partner commission moves
// through pending_invoice → invoiced → collected independently.
const (
	PartnerStatusPendingInvoice = "pending_invoice"
	PartnerStatusInvoiced       = "invoiced"
	PartnerStatusCollected      = "collected"
)

// IsValidPartnerStatus reports whether s belongs to the collection status vocabulary.
func IsValidPartnerStatus(s string) bool {
	switch s {
	case PartnerStatusPendingInvoice, PartnerStatusInvoiced, PartnerStatusCollected:
		return true
	}
	return false
}

// PartnerCommission is one partner's share of a sale's total commission,
// split into the sale and post-sale phases. The two phases carry fully
// independent collection state: status, cash flag and collected-at stamp.
type PartnerCommission struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	SaleID      uint   `gorm:"not null;index:idx_partner_commissions_sale_partner,unique" json:"sale_id"`
	PartnerName string `gorm:"type:varchar(200);not null;index:idx_partner_commissions_sale_partner,unique" json:"partner_name"`

	ParticipationPercent float64 `gorm:"type:decimal(6,3);not null" json:"participation_percent"`

	TotalAmount         float64 `gorm:"type:decimal(16,2);not null" json:"total_amount"`
	SalePhaseAmount     float64 `gorm:"type:decimal(16,2);not null" json:"sale_phase_amount"`
	PostSalePhaseAmount float64 `gorm:"type:decimal(16,2);not null" json:"post_sale_phase_amount"`

	SaleStatus      string     `gorm:"type:varchar(20);not null;default:'pending_invoice'" json:"sale_status"`
	SaleCash        bool       `gorm:"not null;default:false" json:"sale_cash"`
	SaleCollectedAt *time.Time `json:"sale_collected_at,omitempty"`

	PostSaleStatus      string     `gorm:"type:varchar(20);not null;default:'pending_invoice'" json:"post_sale_status"`
	PostSaleCash        bool       `gorm:"not null;default:false" json:"post_sale_cash"`
	PostSaleCollectedAt *time.Time `json:"post_sale_collected_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Sale CommissionSale `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate ensures UUID is set
func (p *PartnerCommission) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (PartnerCommission) TableName() string {
	return "partner_commissions"
}

// PhaseStatus returns the collection status of one phase.
func (p *PartnerCommission) PhaseStatus(phase string) string {
	if phase == PhasePostSale {
		return p.PostSaleStatus
	}
	return p.SaleStatus
}

// PhaseAmount returns the monetary amount of one phase.
func (p *PartnerCommission) PhaseAmount(phase string) float64 {
	if phase == PhasePostSale {
		return p.PostSalePhaseAmount
	}
	return p.SalePhaseAmount
}

// SetPhaseStatus transitions one phase to the given status. Entering
// collected stamps that phase's collected-at; leaving collected clears it.
// The other phase is never touched.
func (p *PartnerCommission) SetPhaseStatus(phase, status string, now time.Time) {
	var collectedAt *time.Time
	if status == PartnerStatusCollected {
		collectedAt = &now
	}
	if phase == PhasePostSale {
		p.PostSaleStatus = status
		p.PostSaleCollectedAt = collectedAt
		return
	}
	p.SaleStatus = status
	p.SaleCollectedAt = collectedAt
}

// SetPhaseCash sets the cash-payment flag of one phase.
func (p *PartnerCommission) SetPhaseCash(phase string, cash bool) {
	if phase == PhasePostSale {
		p.PostSaleCash = cash
		return
	}
	p.SaleCash = cash
}

// PartnerCommissionFilter represents filter criteria for partner commission queries
type PartnerCommissionFilter struct {
	ID          *uint      `json:"id,omitempty"`
	UUID        *uuid.UUID `json:"uuid,omitempty"`
	SaleID      *uint      `json:"sale_id,omitempty"`
	PartnerName *string    `json:"partner_name,omitempty"`
}
