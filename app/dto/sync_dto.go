package dto

// SyncSaleRequest represents the request to sync one deal from the CRM feed
type SyncSaleRequest struct {
	DealID string `json:"deal_id" validate:"required,min=1,max=60" example:"12345"`
}

// SyncSaleResponse represents the response after syncing one deal
type SyncSaleResponse struct {
	Message string  `json:"message"`
	Created bool    `json:"created"`
	Sale    SaleDTO `json:"sale"`
}

// SyncAllResponse reports the outcome of a full closed-won batch sync.
// Individual deal failures never abort the batch; they are collected here.
type SyncAllResponse struct {
	Message       string   `json:"message"`
	Processed     int      `json:"processed"`
	Created       int      `json:"created"`
	Updated       int      `json:"updated"`
	Errors        int      `json:"errors"`
	ErrorMessages []string `json:"error_messages,omitempty"`
}

// SaleDTO represents one synced sale in responses
type SaleDTO struct {
	UUID   string `json:"uuid"`
	DealID string `json:"deal_id"`

	ClientName  string  `json:"client_name"`
	Product     *string `json:"product,omitempty"`
	Development string  `json:"development"`

	OwnerID   string `json:"owner_id,omitempty"`
	OwnerName string `json:"owner_name,omitempty"`

	TermMonths *string `json:"term_months,omitempty"`

	AreaM2       float64 `json:"area_m2"`
	PricePerArea float64 `json:"price_per_area"`
	TotalValue   float64 `json:"total_value"`

	SigningDate     string `json:"signing_date"`
	ExternalAdvisor string `json:"external_advisor,omitempty"`

	Calculated          bool    `json:"calculated"`
	TotalCommission     float64 `json:"total_commission"`
	SalePhaseAmount     float64 `json:"sale_phase_amount"`
	PostSalePhaseAmount float64 `json:"post_sale_phase_amount"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// RefreshSalePartnersRequest represents the request to re-pull a sale's partners
type RefreshSalePartnersRequest struct {
	DealID string `json:"-"`
}

// RefreshSalePartnersResponse represents the response after refreshing partners
type RefreshSalePartnersResponse struct {
	Message  string              `json:"message"`
	Partners []ProductPartnerDTO `json:"partners"`
}

// ProductPartnerDTO represents one co-owner of a sold product
type ProductPartnerDTO struct {
	Name                 string  `json:"name"`
	ParticipationPercent float64 `json:"participation_percent"`
}
