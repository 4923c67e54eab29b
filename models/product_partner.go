package models

import (
	"time"
)

// ProductPartner is a co-owner of the sold product with a participation
// percentage of the sale's commission. A sale may have zero or many partners.
// Rows are replaced wholesale by the partner refresh during sync.
type ProductPartner struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	SaleID uint `gorm:"not null;index" json:"sale_id"`

	Name                 string  `gorm:"type:varchar(200);not null" json:"name"`
	ParticipationPercent float64 `gorm:"type:decimal(6,3);not null" json:"participation_percent"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Sale CommissionSale `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (ProductPartner) TableName() string {
	return "product_partners"
}

// ProductPartnerFilter represents filter criteria for product partner queries
type ProductPartnerFilter struct {
	ID     *uint   `json:"id,omitempty"`
	SaleID *uint   `json:"sale_id,omitempty"`
	Name   *string `json:"name,omitempty"`
}
