package dto

// ListSalesRequest represents the request to list synced sales
type ListSalesRequest struct {
	Development *string `json:"-"`
	Calculated  *bool   `json:"-"`
	SignedYear  *int    `json:"-"`
	SignedMonth *int    `json:"-"`
	Page        int     `json:"-"`
	PageSize    int     `json:"-"`
}

// ListSalesResponse represents the response listing sales
type ListSalesResponse struct {
	Sales    []SaleDTO `json:"sales"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// ExportSalesRequest represents the request to export sales to a spreadsheet
type ExportSalesRequest struct {
	Development *string `json:"-"`
	SignedYear  *int    `json:"-"`
	SignedMonth *int    `json:"-"`
}

// CommissionSummaryRequest represents the request for per-development totals
type CommissionSummaryRequest struct {
	SignedYear *int `json:"-"`
}

// CommissionSummaryRow aggregates one development's sales and commissions
type CommissionSummaryRow struct {
	Development     string  `json:"development"`
	SaleCount       int64   `json:"sale_count"`
	TotalValue      float64 `json:"total_value"`
	TotalCommission float64 `json:"total_commission"`
}

// CommissionSummaryResponse represents the per-development summary report
type CommissionSummaryResponse struct {
	Rows []CommissionSummaryRow `json:"rows"`
}

// UpsertTargetRequest represents the request to set one planning target
type UpsertTargetRequest struct {
	Year   int     `json:"year" validate:"required,gte=2000,lte=2100" example:"2026"`
	Month  int     `json:"month" validate:"required,gte=1,lte=12" example:"3"`
	Amount float64 `json:"amount" validate:"gte=0" example:"2500000"`
}

// TargetDTO represents one planning target in responses
type TargetDTO struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Amount    float64 `json:"amount"`
	UpdatedBy string  `json:"updated_by,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

// UpsertTargetResponse represents the response after setting a target
type UpsertTargetResponse struct {
	Message string    `json:"message"`
	Target  TargetDTO `json:"target"`
}

// ListTargetsRequest represents the request to list one year's targets
type ListTargetsRequest struct {
	Year int `json:"-"`
}

// ListTargetsResponse represents the response listing one year's targets
type ListTargetsResponse struct {
	Targets []TargetDTO `json:"targets"`
}
