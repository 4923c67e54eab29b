package dto

// RecordAdjustmentRequest represents the request to manually correct one
// distribution. The adjustment ledger entry is append-only.
type RecordAdjustmentRequest struct {
	DistributionUUID string `json:"-"`

	NewValue float64 `json:"new_value" validate:"gte=0" example:"5500"`
	NewRole  *string `json:"new_role,omitempty" validate:"omitempty,min=1,max=40"`
	Reason   *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

// RecordAdjustmentResponse represents the response after recording an adjustment
type RecordAdjustmentResponse struct {
	Message      string          `json:"message"`
	Adjustment   AdjustmentDTO   `json:"adjustment"`
	Distribution DistributionDTO `json:"distribution"`
}

// AdjustmentDTO represents one audit ledger entry
type AdjustmentDTO struct {
	UUID           string `json:"uuid"`
	DistributionID uint   `json:"distribution_id"`
	SaleID         uint   `json:"sale_id"`

	OldValue float64 `json:"old_value"`
	NewValue float64 `json:"new_value"`

	OldRole *string `json:"old_role,omitempty"`
	NewRole *string `json:"new_role,omitempty"`

	AmountImpact float64 `json:"amount_impact"`

	Actor  string  `json:"actor"`
	Reason *string `json:"reason,omitempty"`

	CreatedAt string `json:"created_at"`
}

// ListAdjustmentsRequest represents the request to list a sale's adjustment history
type ListAdjustmentsRequest struct {
	DealID string `json:"-"`
}

// ListAdjustmentsResponse represents the response listing a sale's adjustments
type ListAdjustmentsResponse struct {
	Adjustments []AdjustmentDTO `json:"adjustments"`
}
