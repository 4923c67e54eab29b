package models

import (
	"time"
)

// Global configuration keys for indirect-role percentages. The set is fixed:
// unknown keys are rejected with a not-found error.
const (
	GlobalKeyOperationsCoordinator = "operations_coordinator"
	GlobalKeyMarketing             = "marketing"
	GlobalKeyLegal                 = "legal"
	GlobalKeyPostSaleCoordinator   = "post_sale_coordinator"
)

// GlobalConfigKeys lists every valid key, in the order reports display them.
var GlobalConfigKeys = []string{
	GlobalKeyOperationsCoordinator,
	GlobalKeyMarketing,
	GlobalKeyLegal,
	GlobalKeyPostSaleCoordinator,
}

// IsValidGlobalConfigKey reports whether key belongs to the fixed set.
func IsValidGlobalConfigKey(key string) bool {
	for _, k := range GlobalConfigKeys {
		if k == key {
			return true
		}
	}
	return false
}

// GlobalConfig is one key→percent entry for an indirect role.
type GlobalConfig struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"type:varchar(60);uniqueIndex;not null" json:"key"`
	Percent   float64   `gorm:"type:decimal(6,3);not null;default:0" json:"percent"`
	UpdatedBy string    `gorm:"type:varchar(120)" json:"updated_by"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (GlobalConfig) TableName() string {
	return "global_configs"
}

// GlobalConfigFilter represents filter criteria for global config queries
type GlobalConfigFilter struct {
	ID  *uint   `json:"id,omitempty"`
	Key *string `json:"key,omitempty"`
}
