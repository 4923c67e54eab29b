package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rule period types. Quarter rules encode only a year: the quarter window is
// derived from the signing date being evaluated, never from "today".
const (
	PeriodTypeQuarter = "quarter"
	PeriodTypeMonth   = "month"
	PeriodTypeYear    = "year"
)

// Rule threshold operators
const (
	RuleOperatorEq  = "="
	RuleOperatorGte = ">="
	RuleOperatorLte = "<="
)

// CommissionRule is a tiered bonus rule for a development: when the unit
// count of the rule's period crosses the threshold, the rule's commission
// percent is unlocked. Rules stack; they are never mutually exclusive.
type CommissionRule struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	Development DevelopmentKey `gorm:"index;not null" json:"development"`

	PeriodType  string `gorm:"type:varchar(10);not null" json:"period_type"`
	PeriodYear  int    `gorm:"not null" json:"period_year"`
	PeriodMonth *int   `gorm:"type:smallint" json:"period_month,omitempty"` // only for month rules

	Operator      string `gorm:"type:varchar(2);not null;default:'>='" json:"operator"`
	UnitThreshold int64  `gorm:"not null" json:"unit_threshold"`

	CommissionPercent float64 `gorm:"type:decimal(6,3);not null" json:"commission_percent"`
	VATPercent        float64 `gorm:"type:decimal(6,3);not null;default:0" json:"vat_percent"`

	Active   bool `gorm:"not null;default:true;index" json:"active"`
	Priority int  `gorm:"not null;default:0" json:"priority"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate ensures UUID is set
func (r *CommissionRule) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (CommissionRule) TableName() string {
	return "commission_rules"
}

// PeriodWindow resolves the rule's period against a sale's signing date.
// It returns the half-open window [start, end) that the unit count is taken
// over, and whether the signing date falls inside the rule's period at all.
func (r *CommissionRule) PeriodWindow(signing time.Time) (start, end time.Time, ok bool) {
	signing = signing.UTC()
	switch r.PeriodType {
	case PeriodTypeYear:
		if signing.Year() != r.PeriodYear {
			return time.Time{}, time.Time{}, false
		}
		start = time.Date(r.PeriodYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0), true
	case PeriodTypeMonth:
		if r.PeriodMonth == nil {
			return time.Time{}, time.Time{}, false
		}
		if signing.Year() != r.PeriodYear || int(signing.Month()) != *r.PeriodMonth {
			return time.Time{}, time.Time{}, false
		}
		start = time.Date(r.PeriodYear, time.Month(*r.PeriodMonth), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), true
	case PeriodTypeQuarter:
		if signing.Year() != r.PeriodYear {
			return time.Time{}, time.Time{}, false
		}
		q := QuarterOf(signing)
		start = time.Date(r.PeriodYear, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 3, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// ThresholdSatisfied compares a period unit count against the rule threshold
// using the rule's operator. Unknown operators never match.
func (r *CommissionRule) ThresholdSatisfied(count int64) bool {
	switch r.Operator {
	case RuleOperatorEq:
		return count == r.UnitThreshold
	case RuleOperatorGte:
		return count >= r.UnitThreshold
	case RuleOperatorLte:
		return count <= r.UnitThreshold
	default:
		return false
	}
}

// QuarterOf returns the calendar quarter (1-4) containing t.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// CommissionRuleFilter represents filter criteria for rule queries
type CommissionRuleFilter struct {
	ID          *uint           `json:"id,omitempty"`
	UUID        *uuid.UUID      `json:"uuid,omitempty"`
	Development *DevelopmentKey `json:"development,omitempty"`
	PeriodType  *string         `json:"period_type,omitempty"`
	PeriodYear  *int            `json:"period_year,omitempty"`
	Active      *bool           `json:"active,omitempty"`
}
