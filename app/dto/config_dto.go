package dto

// UpsertConfigRequest represents the request to create or overwrite the
// commission configuration of one development
type UpsertConfigRequest struct {
	Development string `json:"development" validate:"required,min=1,max=120" example:"Vista del Mar"`

	SalePercent     float64 `json:"sale_percent" validate:"gte=0,lte=100" example:"3"`
	PostSalePercent float64 `json:"post_sale_percent" validate:"gte=0,lte=100" example:"2"`

	SaleManagerPercent     float64 `json:"sale_manager_percent" validate:"gte=0,lte=100" example:"40"`
	DealOwnerPercent       float64 `json:"deal_owner_percent" validate:"gte=0,lte=100" example:"40"`
	ExternalAdvisorPercent float64 `json:"external_advisor_percent" validate:"gte=0,lte=100" example:"20"`

	PoolEnabled bool    `json:"pool_enabled" example:"true"`
	PoolPercent float64 `json:"pool_percent" validate:"gte=0,lte=100" example:"10"`

	CustomerServiceEnabled bool    `json:"customer_service_enabled" example:"false"`
	CustomerServicePercent float64 `json:"customer_service_percent" validate:"gte=0,lte=100" example:"0"`
	DeliveriesEnabled      bool    `json:"deliveries_enabled" example:"false"`
	DeliveriesPercent      float64 `json:"deliveries_percent" validate:"gte=0,lte=100" example:"0"`
	BondsEnabled           bool    `json:"bonds_enabled" example:"false"`
	BondsPercent           float64 `json:"bonds_percent" validate:"gte=0,lte=100" example:"0"`
}

// UpsertConfigResponse represents the response after upserting a configuration
type UpsertConfigResponse struct {
	Message string    `json:"message"`
	Config  ConfigDTO `json:"config"`
}

// GetConfigRequest represents the request to fetch one development's configuration
type GetConfigRequest struct {
	Development string `json:"-"`
}

// ConfigDTO represents one development's commission configuration in responses
type ConfigDTO struct {
	UUID        string `json:"uuid"`
	Development string `json:"development"`

	SalePercent     float64 `json:"sale_percent"`
	PostSalePercent float64 `json:"post_sale_percent"`

	SaleManagerPercent     float64 `json:"sale_manager_percent"`
	DealOwnerPercent       float64 `json:"deal_owner_percent"`
	ExternalAdvisorPercent float64 `json:"external_advisor_percent"`

	PoolEnabled bool    `json:"pool_enabled"`
	PoolPercent float64 `json:"pool_percent"`

	CustomerServiceEnabled bool    `json:"customer_service_enabled"`
	CustomerServicePercent float64 `json:"customer_service_percent"`
	DeliveriesEnabled      bool    `json:"deliveries_enabled"`
	DeliveriesPercent      float64 `json:"deliveries_percent"`
	BondsEnabled           bool    `json:"bonds_enabled"`
	BondsPercent           float64 `json:"bonds_percent"`

	UpdatedBy string `json:"updated_by,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// GetConfigResponse represents the response carrying one configuration
type GetConfigResponse struct {
	Config ConfigDTO `json:"config"`
}

// ListConfigsResponse represents the response listing every configuration
type ListConfigsResponse struct {
	Configs []ConfigDTO `json:"configs"`
	Total   int64       `json:"total"`
}

// UpsertGlobalConfigRequest represents the request to set one indirect-role percent
type UpsertGlobalConfigRequest struct {
	Key     string  `json:"key" validate:"required" example:"marketing"`
	Percent float64 `json:"percent" validate:"gte=0,lte=100" example:"1.5"`
}

// GlobalConfigDTO represents one global key/percent entry in responses
type GlobalConfigDTO struct {
	Key       string  `json:"key"`
	Percent   float64 `json:"percent"`
	UpdatedBy string  `json:"updated_by,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

// GetGlobalConfigRequest represents the request to fetch one global entry
type GetGlobalConfigRequest struct {
	Key string `json:"-"`
}

// GetGlobalConfigResponse represents the response carrying one global entry
type GetGlobalConfigResponse struct {
	Entry GlobalConfigDTO `json:"entry"`
}

// UpsertGlobalConfigResponse represents the response after setting a global entry
type UpsertGlobalConfigResponse struct {
	Message string          `json:"message"`
	Entry   GlobalConfigDTO `json:"entry"`
}

// ListGlobalConfigsResponse represents the response listing every global entry
type ListGlobalConfigsResponse struct {
	Entries []GlobalConfigDTO `json:"entries"`
}
