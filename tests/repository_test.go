// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	testingutil "github.com/inmoventa/commission-engine/testing"
	"github.com/inmoventa/commission-engine/utils"
)

func TestCommissionSaleRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCommissionSaleRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("UpsertCreates", func(t *testing.T) {
			sale := &models.CommissionSale{
				DealID:       "deal-upsert-1",
				ClientName:   "Cliente Uno",
				Development:  models.NormalizeDevelopment("Vista del Mar"),
				AreaM2:       100,
				PricePerArea: 5000,
				TotalValue:   500000,
				SigningDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			}
			created, err := repo.Upsert(ctx, sale)
			require.NoError(t, err)
			assert.True(t, created)
			assert.NotZero(t, sale.ID)
		})

		t.Run("UpsertUpdatesInPlace", func(t *testing.T) {
			first := &models.CommissionSale{
				DealID:       "deal-upsert-2",
				ClientName:   "Cliente Dos",
				Development:  models.NormalizeDevelopment("Vista del Mar"),
				AreaM2:       100,
				PricePerArea: 5000,
				TotalValue:   500000,
				SigningDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			}
			created, err := repo.Upsert(ctx, first)
			require.NoError(t, err)
			require.True(t, created)

			second := &models.CommissionSale{
				DealID:       "deal-upsert-2",
				ClientName:   "Cliente Dos Renombrado",
				Development:  models.NormalizeDevelopment("Vista del Mar"),
				AreaM2:       100,
				PricePerArea: 6000,
				TotalValue:   600000,
				SigningDate:  time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
			}
			created, err = repo.Upsert(ctx, second)
			require.NoError(t, err)
			assert.False(t, created)
			assert.Equal(t, first.ID, second.ID)
			assert.Equal(t, first.UUID, second.UUID)

			stored, err := repo.ByDealID(ctx, "deal-upsert-2")
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, "Cliente Dos Renombrado", stored.ClientName)
			assert.Equal(t, 600000.0, stored.TotalValue)

			count, err := repo.Count(ctx, models.CommissionSaleFilter{DealID: utils.ToPtr("deal-upsert-2")})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("UpsertPreservesStoredTerm", func(t *testing.T) {
			term := "36"
			first := &models.CommissionSale{
				DealID:       "deal-term",
				ClientName:   "Cliente Plazo",
				Development:  models.NormalizeDevelopment("Vista del Mar"),
				TermMonths:   &term,
				AreaM2:       100,
				PricePerArea: 5000,
				TotalValue:   500000,
				SigningDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			}
			_, err := repo.Upsert(ctx, first)
			require.NoError(t, err)

			// Re-sync without a term must not clobber the stored one
			second := &models.CommissionSale{
				DealID:       "deal-term",
				ClientName:   "Cliente Plazo",
				Development:  models.NormalizeDevelopment("Vista del Mar"),
				AreaM2:       100,
				PricePerArea: 5000,
				TotalValue:   500000,
				SigningDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			}
			_, err = repo.Upsert(ctx, second)
			require.NoError(t, err)
			require.NotNil(t, second.TermMonths)
			assert.Equal(t, "36", *second.TermMonths)

			stored, err := repo.ByDealID(ctx, "deal-term")
			require.NoError(t, err)
			require.NotNil(t, stored.TermMonths)
			assert.Equal(t, "36", *stored.TermMonths)

			// A new non-empty term does overwrite
			newTerm := "48"
			third := &models.CommissionSale{
				DealID:       "deal-term",
				ClientName:   "Cliente Plazo",
				Development:  models.NormalizeDevelopment("Vista del Mar"),
				TermMonths:   &newTerm,
				AreaM2:       100,
				PricePerArea: 5000,
				TotalValue:   500000,
				SigningDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			}
			_, err = repo.Upsert(ctx, third)
			require.NoError(t, err)

			stored, err = repo.ByDealID(ctx, "deal-term")
			require.NoError(t, err)
			require.NotNil(t, stored.TermMonths)
			assert.Equal(t, "48", *stored.TermMonths)
		})

		t.Run("ByDealIDNotFound", func(t *testing.T) {
			sale, err := repo.ByDealID(ctx, "no-such-deal")
			assert.NoError(t, err)
			assert.Nil(t, sale)
		})

		t.Run("CountSignedInWindow", func(t *testing.T) {
			dev := "San Miguel Residencial"
			_, err := fixtures.CreateTestSale(dev, 400000, time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			_, err = fixtures.CreateTestSale(dev, 450000, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			_, err = fixtures.CreateTestSale(dev, 500000, time.Date(2026, 5, 25, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)

			start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 1, 0)

			// Whole month
			count, err := repo.CountSignedInWindow(ctx, models.NormalizeDevelopment(dev), start, end, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)

			// Sales signed after the evaluated sale are excluded
			count, err = repo.CountSignedInWindow(ctx, models.NormalizeDevelopment(dev), start, end, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			// Alias resolves to the same canonical development
			count, err = repo.CountSignedInWindow(ctx, models.NormalizeDevelopment("san miguel"), start, end, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)
		})

		t.Run("UpdateCalculation", func(t *testing.T) {
			sale, err := fixtures.CreateTestSale("Altozano Bosques", 500000, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)

			sale.Calculated = true
			sale.TotalCommission = 25000
			sale.SalePhaseAmount = 15000
			sale.PostSalePhaseAmount = 10000
			sale.SalePercentUsed = 3.0
			sale.PostSalePercentUsed = 2.0
			require.NoError(t, repo.UpdateCalculation(ctx, sale))

			stored, err := repo.ByID(ctx, sale.ID)
			require.NoError(t, err)
			assert.True(t, stored.Calculated)
			assert.Equal(t, 25000.0, stored.TotalCommission)
			assert.Equal(t, 3.0, stored.SalePercentUsed)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCommissionConfigRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCommissionConfigRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("UpsertCreatesThenUpdates", func(t *testing.T) {
			cfg := &models.CommissionConfig{
				Development:     models.NormalizeDevelopment("Vista del Mar"),
				SalePercent:     3.0,
				PostSalePercent: 2.0,
				UpdatedBy:       "admin",
			}
			require.NoError(t, repo.Upsert(ctx, cfg))
			firstID := cfg.ID
			assert.NotZero(t, firstID)

			updated := &models.CommissionConfig{
				Development:     models.NormalizeDevelopment("VDM"), // alias of the same development
				SalePercent:     3.5,
				PostSalePercent: 2.0,
				UpdatedBy:       "admin",
			}
			require.NoError(t, repo.Upsert(ctx, updated))

			stored, err := repo.ByDevelopment(ctx, models.NormalizeDevelopment("vista del mar"))
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, firstID, stored.ID)
			assert.Equal(t, 3.5, stored.SalePercent)

			count, err := repo.Count(ctx, models.CommissionConfigFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("ByDevelopmentNotFound", func(t *testing.T) {
			cfg, err := repo.ByDevelopment(ctx, models.NormalizeDevelopment("desconocido"))
			assert.NoError(t, err)
			assert.Nil(t, cfg)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCommissionRuleRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCommissionRuleRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ListActiveByDevelopment", func(t *testing.T) {
			active, err := fixtures.CreateTestRule("Vista del Mar", 2026, 3, 10, 0.5)
			require.NoError(t, err)

			inactive, err := fixtures.CreateTestRule("Vista del Mar", 2026, 3, 20, 1.0)
			require.NoError(t, err)
			inactive.Active = false
			require.NoError(t, repo.Update(ctx, inactive))

			_, err = fixtures.CreateTestRule("Altozano Bosques", 2026, 3, 5, 0.25)
			require.NoError(t, err)

			rules, err := repo.ListActiveByDevelopment(ctx, models.NormalizeDevelopment("vista del mar"))
			require.NoError(t, err)
			require.Len(t, rules, 1)
			assert.Equal(t, active.UUID, rules[0].UUID)
		})

		t.Run("ByUUID", func(t *testing.T) {
			rule, err := fixtures.CreateTestRule("Vista del Mar", 2026, 4, 15, 0.75)
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, rule.UUID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, rule.ID, found.ID)
			assert.Equal(t, int64(15), found.UnitThreshold)
		})

		t.Run("Delete", func(t *testing.T) {
			rule, err := fixtures.CreateTestRule("Vista del Mar", 2026, 5, 10, 0.5)
			require.NoError(t, err)

			require.NoError(t, repo.Delete(ctx, rule.ID))

			found, err := repo.ByUUID(ctx, rule.UUID)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestProductPartnerRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewProductPartnerRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		sale, err := fixtures.CreateTestSale("Vista del Mar", 500000, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		t.Run("ReplaceForSale", func(t *testing.T) {
			first := []*models.ProductPartner{
				{SaleID: sale.ID, Name: "Socio A", ParticipationPercent: 60},
				{SaleID: sale.ID, Name: "Socio B", ParticipationPercent: 40},
			}
			require.NoError(t, repo.ReplaceForSale(ctx, sale.ID, first))

			stored, err := repo.BySale(ctx, sale.ID)
			require.NoError(t, err)
			assert.Len(t, stored, 2)

			// Replacement is wholesale, not additive
			second := []*models.ProductPartner{
				{SaleID: sale.ID, Name: "Socio C", ParticipationPercent: 100},
			}
			require.NoError(t, repo.ReplaceForSale(ctx, sale.ID, second))

			stored, err = repo.BySale(ctx, sale.ID)
			require.NoError(t, err)
			require.Len(t, stored, 1)
			assert.Equal(t, "Socio C", stored[0].Name)
		})

		t.Run("ReplaceWithEmptyClears", func(t *testing.T) {
			require.NoError(t, repo.ReplaceForSale(ctx, sale.ID, nil))

			stored, err := repo.BySale(ctx, sale.ID)
			require.NoError(t, err)
			assert.Empty(t, stored)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestHiddenPartnerRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewHiddenPartnerRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("HideRestoreRoundTrip", func(t *testing.T) {
			hidden, err := repo.IsHidden(ctx, "Socio Oculto")
			require.NoError(t, err)
			assert.False(t, hidden)

			require.NoError(t, repo.Hide(ctx, "Socio Oculto", "admin"))

			hidden, err = repo.IsHidden(ctx, "Socio Oculto")
			require.NoError(t, err)
			assert.True(t, hidden)

			names, err := repo.ListNames(ctx)
			require.NoError(t, err)
			assert.Contains(t, names, "Socio Oculto")

			require.NoError(t, repo.Restore(ctx, "Socio Oculto"))

			hidden, err = repo.IsHidden(ctx, "Socio Oculto")
			require.NoError(t, err)
			assert.False(t, hidden)
		})

		t.Run("HideIsIdempotent", func(t *testing.T) {
			require.NoError(t, repo.Hide(ctx, "Socio Doble", "admin"))
			require.NoError(t, repo.Hide(ctx, "Socio Doble", "admin"))

			names, err := repo.ListNames(ctx)
			require.NoError(t, err)

			occurrences := 0
			for _, n := range names {
				if n == "Socio Doble" {
					occurrences++
				}
			}
			assert.Equal(t, 1, occurrences)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTargetRepositories(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		billingRepo := repository.NewBillingTargetRepository(testDB.DB)
		salesRepo := repository.NewSalesTargetRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("BillingUpsertByPeriod", func(t *testing.T) {
			target := &models.BillingTarget{Year: 2026, Month: 3, Amount: 1000000}
			require.NoError(t, billingRepo.UpsertByPeriod(ctx, target))

			// Same period updates instead of duplicating
			target = &models.BillingTarget{Year: 2026, Month: 3, Amount: 1250000}
			require.NoError(t, billingRepo.UpsertByPeriod(ctx, target))

			targets, err := billingRepo.ListByYear(ctx, 2026)
			require.NoError(t, err)
			require.Len(t, targets, 1)
			assert.Equal(t, 1250000.0, targets[0].Amount)
		})

		t.Run("SalesListByYearFiltersOtherYears", func(t *testing.T) {
			require.NoError(t, salesRepo.UpsertByPeriod(ctx, &models.SalesTarget{Year: 2026, Month: 1, Amount: 12}))
			require.NoError(t, salesRepo.UpsertByPeriod(ctx, &models.SalesTarget{Year: 2027, Month: 1, Amount: 15}))

			targets, err := salesRepo.ListByYear(ctx, 2026)
			require.NoError(t, err)
			require.Len(t, targets, 1)
			assert.Equal(t, 12.0, targets[0].Amount)
		})

		return nil
	})
	require.NoError(t, err)
}
