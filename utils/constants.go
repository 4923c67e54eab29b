package utils

// Sync constants
const (
	// MaxClosedWonBatch bounds how many upstream deals a single batch sync consumes
	MaxClosedWonBatch = 10000

	// DefaultSaleAreaM2 is used when the upstream deal carries no area (or a
	// non-positive one) so price-per-area stays computable
	DefaultSaleAreaM2 = 100.0

	// DealNameSeparator splits the upstream composite deal name into
	// "<client> - <product>"
	DealNameSeparator = " - "
)

// Commission constants
const (
	// DefaultInvoiceVATPercent is the IVA applied to partner invoice totals
	// when no explicit value is configured
	DefaultInvoiceVATPercent = 16.0
)

// Cache key constants
const (
	// ConfigCacheKeyPrefix prefixes per-development config cache entries
	ConfigCacheKeyPrefix = "commission_config:"

	// GlobalConfigCacheKey holds the full global config entry set
	GlobalConfigCacheKey = "global_config"
)

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Request context keys
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
