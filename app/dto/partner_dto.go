package dto

// CalculatePartnerCommissionsRequest represents the request to compute a
// sale's partner commission split
type CalculatePartnerCommissionsRequest struct {
	DealID string `json:"deal_id" validate:"required,min=1,max=60" example:"12345"`
}

// CalculatePartnerCommissionsResponse represents the split result
type CalculatePartnerCommissionsResponse struct {
	Message  string                 `json:"message"`
	Partners []PartnerCommissionDTO `json:"partners"`
}

// PartnerCommissionDTO represents one partner's share of a sale
type PartnerCommissionDTO struct {
	UUID        string `json:"uuid"`
	SaleID      uint   `json:"sale_id"`
	PartnerName string `json:"partner_name"`

	ParticipationPercent float64 `json:"participation_percent"`

	TotalAmount         float64 `json:"total_amount"`
	SalePhaseAmount     float64 `json:"sale_phase_amount"`
	PostSalePhaseAmount float64 `json:"post_sale_phase_amount"`

	SaleStatus      string  `json:"sale_status"`
	SaleCash        bool    `json:"sale_cash"`
	SaleCollectedAt *string `json:"sale_collected_at,omitempty"`

	PostSaleStatus      string  `json:"post_sale_status"`
	PostSaleCash        bool    `json:"post_sale_cash"`
	PostSaleCollectedAt *string `json:"post_sale_collected_at,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ListPartnerCommissionsRequest represents the request to list partner commissions
type ListPartnerCommissionsRequest struct {
	DealID        string `json:"-"`
	IncludeHidden bool   `json:"-"`
}

// ListPartnerCommissionsResponse represents the response listing partner commissions
type ListPartnerCommissionsResponse struct {
	Partners []PartnerCommissionDTO `json:"partners"`
}

// UpdatePartnerPhaseRequest represents the request to move one phase of one
// partner commission through its collection state machine
type UpdatePartnerPhaseRequest struct {
	UUID string `json:"-"`

	Phase  string  `json:"phase" validate:"required,oneof=sale post_sale" example:"sale"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=pending_invoice invoiced collected"`
	Cash   *bool   `json:"cash,omitempty"`
}

// UpdatePartnerPhaseResponse represents the response after a phase update
type UpdatePartnerPhaseResponse struct {
	Message string               `json:"message"`
	Partner PartnerCommissionDTO `json:"partner"`
}

// CreatePartnerInvoiceRequest represents the request to record an invoice
// against one phase of one partner commission
type CreatePartnerInvoiceRequest struct {
	PartnerCommissionUUID string `json:"-"`

	Phase         string   `json:"phase" validate:"required,oneof=sale post_sale" example:"sale"`
	InvoiceNumber string   `json:"invoice_number" validate:"required,min=1,max=60" example:"F-2026-0042"`
	VATPercent    *float64 `json:"vat_percent,omitempty" validate:"omitempty,gte=0,lte=100" example:"16"`
	IssuedAt      *string  `json:"issued_at,omitempty" example:"2026-03-15"`
}

// CreatePartnerInvoiceResponse represents the response after recording an invoice
type CreatePartnerInvoiceResponse struct {
	Message string               `json:"message"`
	Invoice PartnerInvoiceDTO    `json:"invoice"`
	Partner PartnerCommissionDTO `json:"partner"`
}

// PartnerInvoiceDTO represents one recorded invoice
type PartnerInvoiceDTO struct {
	UUID                string  `json:"uuid"`
	PartnerCommissionID uint    `json:"partner_commission_id"`
	Phase               string  `json:"phase"`
	InvoiceNumber       string  `json:"invoice_number"`
	Amount              float64 `json:"amount"`
	VATPercent          float64 `json:"vat_percent"`
	Total               float64 `json:"total"`
	IssuedAt            string  `json:"issued_at"`
	CreatedBy           string  `json:"created_by,omitempty"`
}

// HidePartnerRequest represents the request to exclude a partner from reports
type HidePartnerRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200" example:"Socio A"`
}

// HidePartnerResponse represents the response after hiding a partner
type HidePartnerResponse struct {
	Message string `json:"message"`
}

// RestorePartnerRequest represents the request to re-include a hidden partner
type RestorePartnerRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200" example:"Socio A"`
}

// RestorePartnerResponse represents the response after restoring a partner
type RestorePartnerResponse struct {
	Message string `json:"message"`
}

// ListHiddenPartnersResponse represents the response listing hidden partner names
type ListHiddenPartnersResponse struct {
	Names []string `json:"names"`
}
