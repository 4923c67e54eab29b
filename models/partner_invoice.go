package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartnerInvoice records invoice metadata against one phase of one partner
// commission. Creating an invoice advances that phase to invoiced.
type PartnerInvoice struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	PartnerCommissionID uint   `gorm:"not null;index" json:"partner_commission_id"`
	Phase               string `gorm:"type:varchar(12);not null" json:"phase"`

	InvoiceNumber string  `gorm:"type:varchar(60);not null" json:"invoice_number"`
	Amount        float64 `gorm:"type:decimal(16,2);not null" json:"amount"`
	VATPercent    float64 `gorm:"type:decimal(6,3);not null" json:"vat_percent"`
	Total         float64 `gorm:"type:decimal(16,2);not null" json:"total"`

	IssuedAt  time.Time `gorm:"not null" json:"issued_at"`
	CreatedBy string    `gorm:"type:varchar(120)" json:"created_by"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	PartnerCommission PartnerCommission `gorm:"foreignKey:PartnerCommissionID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate ensures UUID is set
func (i *PartnerInvoice) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == uuid.Nil {
		i.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (PartnerInvoice) TableName() string {
	return "partner_invoices"
}

// PartnerInvoiceFilter represents filter criteria for partner invoice queries
type PartnerInvoiceFilter struct {
	ID                  *uint   `json:"id,omitempty"`
	PartnerCommissionID *uint   `json:"partner_commission_id,omitempty"`
	Phase               *string `json:"phase,omitempty"`
}
