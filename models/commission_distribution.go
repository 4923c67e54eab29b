package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Distribution role types. Indirect roles reuse the global config keys.
const (
	RoleSaleManager     = "sale_manager"
	RoleDealOwner       = "deal_owner"
	RoleExternalAdvisor = "external_advisor"
	RolePool            = "pool"
	RoleCustomerService = "customer_service"
	RoleDeliveries      = "deliveries"
	RoleBonds           = "bonds"
	RoleRuleBonus       = "rule_bonus"
)

// Distribution phases
const (
	PhaseSale     = "sale"
	PhasePostSale = "post_sale"
	PhaseUtility  = "utility"
)

// Payment statuses. The legacy uppercase values are part of the persisted
// vocabulary and must not be renamed.
const (
	PaymentStatusRequested     = "SOLICITADA"
	PaymentStatusPending       = "pending"
	PaymentStatusPaid          = "paid"
	PaymentStatusNotApplicable = "NO_APLICA"
)

// CommissionDistribution is one payable line item of a sale: a (role, phase)
// combination with its percent and computed amount. Distributions for a sale
// are always replaced as a whole set, never patched row by row.
type CommissionDistribution struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	SaleID uint  `gorm:"not null;index" json:"sale_id"`
	RuleID *uint `gorm:"index" json:"rule_id,omitempty"` // set on rule_bonus rows

	RoleType string `gorm:"type:varchar(40);not null" json:"role_type"`
	Person   string `gorm:"type:varchar(200)" json:"person"`
	Phase    string `gorm:"type:varchar(12);not null;index" json:"phase"`

	Percent float64 `gorm:"type:decimal(6,3);not null" json:"percent"`
	Amount  float64 `gorm:"type:decimal(16,2);not null" json:"amount"`

	PaymentStatus string `gorm:"type:varchar(12);not null;default:'pending';index" json:"payment_status"`
	CashPayment   bool   `gorm:"not null;default:false" json:"cash_payment"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Sale CommissionSale `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate ensures UUID is set
func (d *CommissionDistribution) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (CommissionDistribution) TableName() string {
	return "commission_distributions"
}

// IsPayable reports whether the row represents money that can still be paid.
func (d *CommissionDistribution) IsPayable() bool {
	return d.PaymentStatus != PaymentStatusNotApplicable && d.PaymentStatus != PaymentStatusPaid
}

// IsValidPaymentStatus reports whether s belongs to the payment status vocabulary.
func IsValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusRequested, PaymentStatusPending, PaymentStatusPaid, PaymentStatusNotApplicable:
		return true
	}
	return false
}

// IsValidDistributionPhase reports whether s belongs to the distribution phase vocabulary.
func IsValidDistributionPhase(s string) bool {
	switch s {
	case PhaseSale, PhasePostSale, PhaseUtility:
		return true
	}
	return false
}

// CommissionDistributionFilter represents filter criteria for distribution queries
type CommissionDistributionFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	SaleID        *uint      `json:"sale_id,omitempty"`
	RoleType      *string    `json:"role_type,omitempty"`
	Phase         *string    `json:"phase,omitempty"`
	PaymentStatus *string    `json:"payment_status,omitempty"`
}
