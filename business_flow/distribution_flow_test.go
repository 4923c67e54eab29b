package businessflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmoventa/commission-engine/models"
)

func testSale(totalValue float64, advisor string) *models.CommissionSale {
	return &models.CommissionSale{
		ID:              1,
		DealID:          "D-1",
		ClientName:      "Juan Perez",
		Development:     models.NormalizeDevelopment("Vista del Mar"),
		OwnerName:       "Maria Lopez",
		TotalValue:      totalValue,
		SigningDate:     time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		ExternalAdvisor: advisor,
	}
}

func testConfig() *models.CommissionConfig {
	return &models.CommissionConfig{
		Development:            models.NormalizeDevelopment("Vista del Mar"),
		SalePercent:            3,
		PostSalePercent:        2,
		SaleManagerPercent:     40,
		DealOwnerPercent:       40,
		ExternalAdvisorPercent: 20,
	}
}

func findRow(t *testing.T, rows []*models.CommissionDistribution, role, phase string) *models.CommissionDistribution {
	t.Helper()
	for _, r := range rows {
		if r.RoleType == role && r.Phase == phase {
			return r
		}
	}
	t.Fatalf("no %s row in phase %s", role, phase)
	return nil
}

func TestBuildDistributionsBaseSplit(t *testing.T) {
	sale := testSale(500000, "Despacho Norte")
	cfg := testConfig()

	rows := buildDistributions(sale, cfg, nil, nil)

	// phase amounts and percents used land on the sale
	assert.Equal(t, 15000.0, sale.SalePhaseAmount)
	assert.Equal(t, 10000.0, sale.PostSalePhaseAmount)
	assert.Equal(t, 25000.0, sale.TotalCommission)
	assert.Equal(t, 3.0, sale.SalePercentUsed)
	assert.Equal(t, 2.0, sale.PostSalePercentUsed)

	// three roles per phase, nothing else
	require.Len(t, rows, 6)

	assert.Equal(t, 6000.0, findRow(t, rows, models.RoleSaleManager, models.PhaseSale).Amount)
	assert.Equal(t, 6000.0, findRow(t, rows, models.RoleDealOwner, models.PhaseSale).Amount)
	assert.Equal(t, 3000.0, findRow(t, rows, models.RoleExternalAdvisor, models.PhaseSale).Amount)

	assert.Equal(t, 4000.0, findRow(t, rows, models.RoleSaleManager, models.PhasePostSale).Amount)
	assert.Equal(t, 4000.0, findRow(t, rows, models.RoleDealOwner, models.PhasePostSale).Amount)
	assert.Equal(t, 2000.0, findRow(t, rows, models.RoleExternalAdvisor, models.PhasePostSale).Amount)

	owner := findRow(t, rows, models.RoleDealOwner, models.PhaseSale)
	assert.Equal(t, "Maria Lopez", owner.Person)
	assert.Equal(t, models.PaymentStatusPending, owner.PaymentStatus)

	advisor := findRow(t, rows, models.RoleExternalAdvisor, models.PhaseSale)
	assert.Equal(t, "Despacho Norte", advisor.Person)
	assert.Equal(t, models.PaymentStatusPending, advisor.PaymentStatus)
}

func TestBuildDistributionsNoAdvisor(t *testing.T) {
	sale := testSale(500000, "")
	cfg := testConfig()

	rows := buildDistributions(sale, cfg, nil, nil)

	for _, phase := range []string{models.PhaseSale, models.PhasePostSale} {
		advisor := findRow(t, rows, models.RoleExternalAdvisor, phase)
		assert.Equal(t, models.PaymentStatusNotApplicable, advisor.PaymentStatus)
		assert.Equal(t, 0.0, advisor.Amount, "NO_APLICA rows never carry money")
		assert.False(t, advisor.IsPayable())
	}
}

func TestBuildDistributionsPoolAndAddOns(t *testing.T) {
	sale := testSale(500000, "X")
	cfg := testConfig()
	cfg.PoolEnabled = true
	cfg.PoolPercent = 10
	cfg.DeliveriesEnabled = true
	cfg.DeliveriesPercent = 5

	rows := buildDistributions(sale, cfg, nil, nil)

	assert.Equal(t, 1500.0, findRow(t, rows, models.RolePool, models.PhaseSale).Amount)
	assert.Equal(t, 1000.0, findRow(t, rows, models.RolePool, models.PhasePostSale).Amount)
	assert.Equal(t, 750.0, findRow(t, rows, models.RoleDeliveries, models.PhaseSale).Amount)
	assert.Equal(t, 500.0, findRow(t, rows, models.RoleDeliveries, models.PhasePostSale).Amount)

	// disabled add-ons produce no rows
	for _, r := range rows {
		assert.NotEqual(t, models.RoleCustomerService, r.RoleType)
		assert.NotEqual(t, models.RoleBonds, r.RoleType)
	}
}

func TestBuildDistributionsUtilityRows(t *testing.T) {
	sale := testSale(500000, "X")
	cfg := testConfig()
	globals := []*models.GlobalConfig{
		{Key: models.GlobalKeyMarketing, Percent: 2},
		{Key: models.GlobalKeyLegal, Percent: 0}, // zero percent keys produce no rows
	}

	rows := buildDistributions(sale, cfg, globals, nil)

	marketing := findRow(t, rows, models.GlobalKeyMarketing, models.PhaseUtility)
	assert.Equal(t, 500.0, marketing.Amount, "indirect roles are paid on the total commission")
	assert.Equal(t, 2.0, marketing.Percent)

	for _, r := range rows {
		assert.NotEqual(t, models.GlobalKeyLegal, r.RoleType)
	}
}

func TestBuildDistributionsRuleBonusStacking(t *testing.T) {
	sale := testSale(500000, "X")
	cfg := testConfig()
	rules := []*models.CommissionRule{
		{ID: 7, CommissionPercent: 0.5},
		{ID: 8, CommissionPercent: 1},
	}

	rows := buildDistributions(sale, cfg, nil, rules)

	var bonuses []*models.CommissionDistribution
	for _, r := range rows {
		if r.RoleType == models.RoleRuleBonus {
			bonuses = append(bonuses, r)
		}
	}
	require.Len(t, bonuses, 2, "passing rules stack")

	assert.Equal(t, 75.0, bonuses[0].Amount)
	require.NotNil(t, bonuses[0].RuleID)
	assert.Equal(t, uint(7), *bonuses[0].RuleID)
	assert.Equal(t, models.PhaseSale, bonuses[0].Phase)

	assert.Equal(t, 150.0, bonuses[1].Amount)
	require.NotNil(t, bonuses[1].RuleID)
	assert.Equal(t, uint(8), *bonuses[1].RuleID)
}
