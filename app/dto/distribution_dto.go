package dto

// CalculateDistributionsRequest represents the request to compute a sale's distributions
type CalculateDistributionsRequest struct {
	DealID string `json:"deal_id" validate:"required,min=1,max=60" example:"12345"`
}

// CalculateDistributionsResponse represents the full calculation result
type CalculateDistributionsResponse struct {
	Message string  `json:"message"`
	Sale    SaleDTO `json:"sale"`

	Distributions []DistributionDTO `json:"distributions"`
}

// DistributionDTO represents one payable line item of a sale
type DistributionDTO struct {
	UUID   string `json:"uuid"`
	SaleID uint   `json:"sale_id"`

	RoleType string `json:"role_type"`
	Person   string `json:"person,omitempty"`
	Phase    string `json:"phase"`

	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`

	PaymentStatus string `json:"payment_status"`
	CashPayment   bool   `json:"cash_payment"`

	RuleUUID *string `json:"rule_uuid,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ListDistributionsRequest represents the request to list a sale's distributions.
// Phase and PaymentStatus narrow the listing when non-empty.
type ListDistributionsRequest struct {
	DealID        string `json:"-"`
	Phase         string `json:"-"`
	PaymentStatus string `json:"-"`
}

// ListDistributionsResponse represents the response listing a sale's distributions
type ListDistributionsResponse struct {
	Sale          SaleDTO           `json:"sale"`
	Distributions []DistributionDTO `json:"distributions"`
}

// UpdateDistributionStatusRequest represents the request to update one
// distribution's payment status or cash flag
type UpdateDistributionStatusRequest struct {
	UUID string `json:"-"`

	PaymentStatus *string `json:"payment_status,omitempty" validate:"omitempty,oneof=SOLICITADA pending paid NO_APLICA"`
	CashPayment   *bool   `json:"cash_payment,omitempty"`
}

// UpdateDistributionStatusResponse represents the response after a status update
type UpdateDistributionStatusResponse struct {
	Message      string          `json:"message"`
	Distribution DistributionDTO `json:"distribution"`
}

// ResetDistributionsRequest represents the request to wipe a sale's calculation
type ResetDistributionsRequest struct {
	DealID string `json:"deal_id" validate:"required,min=1,max=60" example:"12345"`
}

// ResetDistributionsResponse represents the response after a reset
type ResetDistributionsResponse struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}
