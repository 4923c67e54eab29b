// Package services provides external service integrations and technical concerns like the CRM feed and tokens
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Ordered candidate field names for the payment term. The first field is the
// current one; the rest are legacy names still present on old deals.
var termFieldCandidates = []string{
	"plazo_meses",
	"plazo",
	"plazo_financiamiento",
}

// Development field names. The feed historically carried a typo variant that
// must still be checked.
var developmentFieldCandidates = []string{
	"desarrollo",
	"desarollo",
}

// RawDeal is the typed view of one upstream deal record. Fields the engine
// does not model yet stay in Extra as an explicit opaque passthrough.
type RawDeal struct {
	ID          string
	Name        string
	Amount      float64
	Stage       string
	ClosingDate time.Time
	Development string
	OwnerID     string
	OwnerName   string
	AccountName string
	TermMonths  *string
	AreaM2      float64

	ExternalAdvisorID   string
	ExternalAdvisorName string

	Extra map[string]any
}

// DealPartner is one co-owner of the sold product as reported by the feed.
type DealPartner struct {
	Name                 string  `json:"name"`
	ParticipationPercent float64 `json:"participation_percent"`
}

// CRMClient consumes the upstream CRM feed.
type CRMClient interface {
	FetchClosedWonDeals(ctx context.Context, limit int) ([]*RawDeal, error)
	FetchDeal(ctx context.Context, dealID string) (*RawDeal, error)
	FetchDealPartners(ctx context.Context, dealID string) ([]DealPartner, error)
}

// HTTPCRMClient implements CRMClient against the CRM's JSON API.
type HTTPCRMClient struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

// NewHTTPCRMClient creates a new CRM client
func NewHTTPCRMClient(baseURL, apiToken string, timeout time.Duration) CRMClient {
	return &HTTPCRMClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: timeout},
	}
}

// FetchClosedWonDeals returns up to limit deals in the closed-won stage
func (c *HTTPCRMClient) FetchClosedWonDeals(ctx context.Context, limit int) ([]*RawDeal, error) {
	endpoint := fmt.Sprintf("%s/deals?stage=closedwon&limit=%d", c.baseURL, limit)

	var payload struct {
		Results []map[string]any `json:"results"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch closed-won deals: %w", err)
	}

	deals := make([]*RawDeal, 0, len(payload.Results))
	for _, fields := range payload.Results {
		deals = append(deals, MapDeal(fields))
	}
	return deals, nil
}

// FetchDeal returns one deal by its upstream identifier
func (c *HTTPCRMClient) FetchDeal(ctx context.Context, dealID string) (*RawDeal, error) {
	endpoint := fmt.Sprintf("%s/deals/%s", c.baseURL, url.PathEscape(dealID))

	var fields map[string]any
	if err := c.getJSON(ctx, endpoint, &fields); err != nil {
		return nil, fmt.Errorf("failed to fetch deal %s: %w", dealID, err)
	}
	return MapDeal(fields), nil
}

// FetchDealPartners returns the co-owners linked to one deal's product
func (c *HTTPCRMClient) FetchDealPartners(ctx context.Context, dealID string) ([]DealPartner, error) {
	endpoint := fmt.Sprintf("%s/deals/%s/partners", c.baseURL, url.PathEscape(dealID))

	var payload struct {
		Results []DealPartner `json:"results"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch partners of deal %s: %w", dealID, err)
	}
	return payload.Results, nil
}

func (c *HTTPCRMClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from CRM", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// MapDeal converts a raw feed record into the typed deal view. Every field
// the engine models is extracted here, in one place; whatever remains stays
// in Extra untouched.
func MapDeal(fields map[string]any) *RawDeal {
	deal := &RawDeal{
		ID:                  stringField(fields, "id"),
		Name:                stringField(fields, "dealname"),
		Amount:              floatField(fields, "amount"),
		Stage:               stringField(fields, "dealstage"),
		Development:         ExtractDevelopment(fields),
		OwnerID:             stringField(fields, "owner_id"),
		OwnerName:           stringField(fields, "owner_name"),
		AccountName:         stringField(fields, "account_name"),
		TermMonths:          ExtractTermMonths(fields),
		AreaM2:              floatField(fields, "metros_cuadrados"),
		ExternalAdvisorID:   stringField(fields, "asesor_externo_id"),
		ExternalAdvisorName: stringField(fields, "asesor_externo"),
	}

	if raw := stringField(fields, "closedate"); raw != "" {
		deal.ClosingDate = parseFeedDate(raw)
	}

	modeled := map[string]bool{
		"id": true, "dealname": true, "amount": true, "dealstage": true,
		"owner_id": true, "owner_name": true, "account_name": true,
		"metros_cuadrados": true, "asesor_externo_id": true, "asesor_externo": true,
		"closedate": true,
	}
	for _, k := range termFieldCandidates {
		modeled[k] = true
	}
	for _, k := range developmentFieldCandidates {
		modeled[k] = true
	}

	extra := make(map[string]any)
	for k, v := range fields {
		if !modeled[k] {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		deal.Extra = extra
	}
	return deal
}

// ExtractTermMonths probes the ordered candidate list of term field names and
// returns the first non-empty value, string-encoded. Nil means no candidate
// carried a value.
func ExtractTermMonths(fields map[string]any) *string {
	for _, name := range termFieldCandidates {
		if v := stringField(fields, name); v != "" {
			return &v
		}
	}
	return nil
}

// ExtractDevelopment returns the raw development name, checking the current
// field name first and the legacy typo variant second.
func ExtractDevelopment(fields map[string]any) string {
	for _, name := range developmentFieldCandidates {
		if v := stringField(fields, name); v != "" {
			return v
		}
	}
	return ""
}

// stringField reads a field as string, converting numbers the feed sometimes
// sends where strings are expected.
func stringField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// floatField reads a field as float64, converting the string-encoded numbers
// the feed sometimes sends.
func floatField(fields map[string]any, name string) float64 {
	switch v := fields[name].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// parseFeedDate accepts the two date encodings the feed is known to emit.
func parseFeedDate(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
