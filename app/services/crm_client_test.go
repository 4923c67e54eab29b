package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTermMonths(t *testing.T) {
	t.Run("primary field wins", func(t *testing.T) {
		term := ExtractTermMonths(map[string]any{
			"plazo_meses": "36",
			"plazo":       "48",
		})
		require.NotNil(t, term)
		assert.Equal(t, "36", *term)
	})

	t.Run("falls back through legacy fields in order", func(t *testing.T) {
		term := ExtractTermMonths(map[string]any{
			"plazo":                "48",
			"plazo_financiamiento": "60",
		})
		require.NotNil(t, term)
		assert.Equal(t, "48", *term)

		term = ExtractTermMonths(map[string]any{
			"plazo_financiamiento": "60",
		})
		require.NotNil(t, term)
		assert.Equal(t, "60", *term)
	})

	t.Run("numeric value is string encoded", func(t *testing.T) {
		term := ExtractTermMonths(map[string]any{"plazo_meses": float64(24)})
		require.NotNil(t, term)
		assert.Equal(t, "24", *term)
	})

	t.Run("no candidate returns nil", func(t *testing.T) {
		assert.Nil(t, ExtractTermMonths(map[string]any{"other": "x"}))
	})

	t.Run("empty string is skipped", func(t *testing.T) {
		term := ExtractTermMonths(map[string]any{
			"plazo_meses": "",
			"plazo":       "12",
		})
		require.NotNil(t, term)
		assert.Equal(t, "12", *term)
	})
}

func TestExtractDevelopment(t *testing.T) {
	t.Run("current field name", func(t *testing.T) {
		dev := ExtractDevelopment(map[string]any{"desarrollo": "Vista del Mar"})
		assert.Equal(t, "Vista del Mar", dev)
	})

	t.Run("legacy typo variant", func(t *testing.T) {
		dev := ExtractDevelopment(map[string]any{"desarollo": "San Miguel"})
		assert.Equal(t, "San Miguel", dev)
	})

	t.Run("current name wins over typo", func(t *testing.T) {
		dev := ExtractDevelopment(map[string]any{
			"desarrollo": "Altozano",
			"desarollo":  "Other",
		})
		assert.Equal(t, "Altozano", dev)
	})

	t.Run("missing returns empty", func(t *testing.T) {
		assert.Equal(t, "", ExtractDevelopment(map[string]any{}))
	})
}

func TestMapDeal(t *testing.T) {
	fields := map[string]any{
		"id":               "12345",
		"dealname":         "Juan Perez - Lote 14",
		"amount":           "500000",
		"dealstage":        "closedwon",
		"closedate":        "2026-03-15",
		"desarrollo":       "VDM",
		"owner_id":         "9",
		"owner_name":       "Maria Lopez",
		"account_name":     "Juan Perez",
		"plazo_meses":      "36",
		"metros_cuadrados": float64(120.5),
		"asesor_externo":   "Despacho Norte",
		"custom_field":     "kept",
	}

	deal := MapDeal(fields)

	assert.Equal(t, "12345", deal.ID)
	assert.Equal(t, "Juan Perez - Lote 14", deal.Name)
	assert.Equal(t, 500000.0, deal.Amount)
	assert.Equal(t, "closedwon", deal.Stage)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), deal.ClosingDate)
	assert.Equal(t, "VDM", deal.Development)
	assert.Equal(t, "Maria Lopez", deal.OwnerName)
	require.NotNil(t, deal.TermMonths)
	assert.Equal(t, "36", *deal.TermMonths)
	assert.Equal(t, 120.5, deal.AreaM2)
	assert.Equal(t, "Despacho Norte", deal.ExternalAdvisorName)

	// unmodeled fields survive in Extra, modeled ones do not
	require.NotNil(t, deal.Extra)
	assert.Equal(t, "kept", deal.Extra["custom_field"])
	assert.NotContains(t, deal.Extra, "dealname")
	assert.NotContains(t, deal.Extra, "plazo_meses")
}

func TestMapDealMinimal(t *testing.T) {
	deal := MapDeal(map[string]any{"id": float64(7)})

	assert.Equal(t, "7", deal.ID)
	assert.True(t, deal.ClosingDate.IsZero())
	assert.Nil(t, deal.TermMonths)
	assert.Nil(t, deal.Extra)
}

func TestParseFeedDate(t *testing.T) {
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), parseFeedDate("2026-01-02"))
	assert.Equal(t, time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC), parseFeedDate("2026-01-02T10:30:00Z"))
	assert.True(t, parseFeedDate("not a date").IsZero())
}

func TestHTTPCRMClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/deals":
			assert.Equal(t, "closedwon", r.URL.Query().Get("stage"))
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{"id": "1", "dealname": "Cliente Uno - Lote 1", "amount": "100000"},
					{"id": "2", "dealname": "Cliente Dos - Lote 2", "amount": float64(200000)},
				},
			})
		case "/deals/1/partners":
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{"name": "Socio A", "participation_percent": 60.0},
					{"name": "Socio B", "participation_percent": 40.0},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewHTTPCRMClient(server.URL, "test-token", 5*time.Second)
	ctx := context.Background()

	deals, err := client.FetchClosedWonDeals(ctx, 100)
	require.NoError(t, err)
	require.Len(t, deals, 2)
	assert.Equal(t, 100000.0, deals[0].Amount)
	assert.Equal(t, 200000.0, deals[1].Amount)

	partners, err := client.FetchDealPartners(ctx, "1")
	require.NoError(t, err)
	require.Len(t, partners, 2)
	assert.Equal(t, "Socio A", partners[0].Name)
	assert.Equal(t, 60.0, partners[0].ParticipationPercent)

	_, err = client.FetchDeal(ctx, "missing")
	assert.Error(t, err)
}
