package dto

// CreateRuleRequest represents the request to create a tiered bonus rule
type CreateRuleRequest struct {
	Development string `json:"development" validate:"required,min=1,max=120" example:"Vista del Mar"`

	PeriodType  string `json:"period_type" validate:"required,oneof=quarter month year" example:"quarter"`
	PeriodYear  int    `json:"period_year" validate:"required,gte=2000,lte=2100" example:"2026"`
	PeriodMonth *int   `json:"period_month,omitempty" validate:"omitempty,gte=1,lte=12" example:"3"`

	Operator      string `json:"operator" validate:"required,oneof== >= <=" example:">="`
	UnitThreshold int64  `json:"unit_threshold" validate:"required,gte=1" example:"10"`

	CommissionPercent float64 `json:"commission_percent" validate:"required,gt=0,lte=100" example:"0.5"`
	VATPercent        float64 `json:"vat_percent" validate:"gte=0,lte=100" example:"16"`

	Priority int `json:"priority" example:"0"`
}

// CreateRuleResponse represents the response after creating a rule
type CreateRuleResponse struct {
	Message string  `json:"message"`
	Rule    RuleDTO `json:"rule"`
}

// UpdateRuleRequest represents the request to update an existing rule.
// Only non-nil fields are applied.
type UpdateRuleRequest struct {
	UUID string `json:"-"`

	PeriodType  *string `json:"period_type,omitempty" validate:"omitempty,oneof=quarter month year"`
	PeriodYear  *int    `json:"period_year,omitempty" validate:"omitempty,gte=2000,lte=2100"`
	PeriodMonth *int    `json:"period_month,omitempty" validate:"omitempty,gte=1,lte=12"`

	Operator      *string `json:"operator,omitempty" validate:"omitempty,oneof== >= <="`
	UnitThreshold *int64  `json:"unit_threshold,omitempty" validate:"omitempty,gte=1"`

	CommissionPercent *float64 `json:"commission_percent,omitempty" validate:"omitempty,gt=0,lte=100"`
	VATPercent        *float64 `json:"vat_percent,omitempty" validate:"omitempty,gte=0,lte=100"`

	Active   *bool `json:"active,omitempty"`
	Priority *int  `json:"priority,omitempty"`
}

// UpdateRuleResponse represents the response after updating a rule
type UpdateRuleResponse struct {
	Message string  `json:"message"`
	Rule    RuleDTO `json:"rule"`
}

// DeleteRuleRequest represents the request to delete a rule
type DeleteRuleRequest struct {
	UUID string `json:"-"`
}

// DeleteRuleResponse represents the response after deleting a rule
type DeleteRuleResponse struct {
	Message string `json:"message"`
}

// RuleDTO represents one rule in responses
type RuleDTO struct {
	UUID        string `json:"uuid"`
	Development string `json:"development"`

	PeriodType  string `json:"period_type"`
	PeriodYear  int    `json:"period_year"`
	PeriodMonth *int   `json:"period_month,omitempty"`

	Operator      string `json:"operator"`
	UnitThreshold int64  `json:"unit_threshold"`

	CommissionPercent float64 `json:"commission_percent"`
	VATPercent        float64 `json:"vat_percent"`

	Active   bool `json:"active"`
	Priority int  `json:"priority"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ListRulesRequest represents the request to list rules of one development
type ListRulesRequest struct {
	Development string `json:"-"`
	ActiveOnly  bool   `json:"-"`
}

// ListRulesResponse represents the response listing rules
type ListRulesResponse struct {
	Rules []RuleDTO `json:"rules"`
	Total int64     `json:"total"`
}

// ApplicableRuleDTO pairs a passing rule with the unit count that unlocked it
type ApplicableRuleDTO struct {
	Rule      RuleDTO `json:"rule"`
	UnitCount int64   `json:"unit_count"`
}

// GetRuleUnitCountsRequest represents the request for the raw unit count of
// every active rule of one development at a reference date
type GetRuleUnitCountsRequest struct {
	Development string `json:"-"`
	Date        string `json:"-"`
}

// RuleUnitCountDTO pairs one rule with its unit count at the reference date
type RuleUnitCountDTO struct {
	Rule      RuleDTO `json:"rule"`
	UnitCount int64   `json:"unit_count"`
	Satisfied bool    `json:"satisfied"`
}

// GetRuleUnitCountsResponse represents the per-rule count audit view
type GetRuleUnitCountsResponse struct {
	Development string             `json:"development"`
	Date        string             `json:"date"`
	Counts      []RuleUnitCountDTO `json:"counts"`
}

// GetApplicableRulesRequest represents the request to evaluate rules against a sale
type GetApplicableRulesRequest struct {
	DealID string `json:"-"`
}

// GetApplicableRulesResponse represents the evaluation result for a sale
type GetApplicableRulesResponse struct {
	DealID      string              `json:"deal_id"`
	Development string              `json:"development"`
	Rules       []ApplicableRuleDTO `json:"rules"`
}
