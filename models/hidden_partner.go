package models

import (
	"time"
)

// HiddenPartner is a soft exclusion entry: partners on this list are filtered
// from reporting views while their historical commission rows stay intact.
type HiddenPartner struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	HiddenBy  string    `gorm:"type:varchar(120)" json:"hidden_by"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for GORM
func (HiddenPartner) TableName() string {
	return "hidden_partners"
}
