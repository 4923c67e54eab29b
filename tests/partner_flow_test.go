package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmoventa/commission-engine/app/dto"
	businessflow "github.com/inmoventa/commission-engine/business_flow"
	"github.com/inmoventa/commission-engine/config"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	testingutil "github.com/inmoventa/commission-engine/testing"
	"github.com/inmoventa/commission-engine/utils"
)

func newPartnerFlow(testDB *testingutil.TestDB) businessflow.PartnerFlow {
	return businessflow.NewPartnerFlow(
		repository.NewCommissionSaleRepository(testDB.DB),
		repository.NewProductPartnerRepository(testDB.DB),
		repository.NewPartnerCommissionRepository(testDB.DB),
		repository.NewPartnerInvoiceRepository(testDB.DB),
		repository.NewHiddenPartnerRepository(testDB.DB),
		config.EngineConfig{DefaultVATPercent: 16.0},
		testDB.DB,
	)
}

// calculatedSale creates a config, a sale and its distribution set so the
// sale carries real phase amounts (3%/2% of the total value).
func calculatedSale(t *testing.T, testDB *testingutil.TestDB, totalValue float64) *models.CommissionSale {
	t.Helper()

	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()
	metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

	dev := "Vista del Mar"
	_, err := fixtures.CreateTestConfig(dev)
	require.NoError(t, err)

	sale, err := fixtures.CreateTestSale(dev, totalValue, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	distFlow := newDistributionFlow(testDB)
	_, err = distFlow.CalculateDistributions(ctx, &dto.CalculateDistributionsRequest{DealID: sale.DealID}, metadata)
	require.NoError(t, err)

	saleRepo := repository.NewCommissionSaleRepository(testDB.DB)
	stored, err := saleRepo.ByDealID(ctx, sale.DealID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	return stored
}

func TestCalculatePartnerCommissions(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newPartnerFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		// 500,000 at 3%/2% yields 15,000 + 10,000 = 25,000
		sale := calculatedSale(t, testDB, 500000)

		t.Run("RequiresPartners", func(t *testing.T) {
			_, err := flow.CalculatePartnerCommissions(ctx, &dto.CalculatePartnerCommissionsRequest{DealID: sale.DealID}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsNoProductPartners(err))
		})

		_, err := fixtures.CreateTestPartners(sale.ID, map[string]float64{
			"Socio A": 60,
			"Socio B": 40,
		})
		require.NoError(t, err)

		t.Run("SplitsByParticipation", func(t *testing.T) {
			resp, err := flow.CalculatePartnerCommissions(ctx, &dto.CalculatePartnerCommissionsRequest{DealID: sale.DealID}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Partners, 2)

			byName := make(map[string]dto.PartnerCommissionDTO)
			for _, p := range resp.Partners {
				byName[p.PartnerName] = p
			}

			a := byName["Socio A"]
			assert.Equal(t, 15000.0, a.TotalAmount)
			assert.Equal(t, 9000.0, a.SalePhaseAmount)
			assert.Equal(t, 6000.0, a.PostSalePhaseAmount)
			assert.Equal(t, models.PartnerStatusPendingInvoice, a.SaleStatus)
			assert.Equal(t, models.PartnerStatusPendingInvoice, a.PostSaleStatus)

			b := byName["Socio B"]
			assert.Equal(t, 10000.0, b.TotalAmount)
			assert.Equal(t, 6000.0, b.SalePhaseAmount)
			assert.Equal(t, 4000.0, b.PostSalePhaseAmount)
		})

		t.Run("RecalculationPreservesCollectionState", func(t *testing.T) {
			listed, err := flow.ListPartnerCommissions(ctx, &dto.ListPartnerCommissionsRequest{DealID: sale.DealID}, metadata)
			require.NoError(t, err)
			require.Len(t, listed.Partners, 2)

			var socioA dto.PartnerCommissionDTO
			for _, p := range listed.Partners {
				if p.PartnerName == "Socio A" {
					socioA = p
				}
			}
			require.NotEmpty(t, socioA.UUID)

			_, err = flow.UpdatePartnerPhase(ctx, &dto.UpdatePartnerPhaseRequest{
				UUID:   socioA.UUID,
				Phase:  models.PhaseSale,
				Status: utils.ToPtr(models.PartnerStatusInvoiced),
			}, metadata)
			require.NoError(t, err)

			// Product now reads 70/30 with Socio B replaced by Socio C
			partnerRepo := repository.NewProductPartnerRepository(testDB.DB)
			require.NoError(t, partnerRepo.ReplaceForSale(ctx, sale.ID, []*models.ProductPartner{
				{SaleID: sale.ID, Name: "Socio A", ParticipationPercent: 70},
				{SaleID: sale.ID, Name: "Socio C", ParticipationPercent: 30},
			}))

			resp, err := flow.CalculatePartnerCommissions(ctx, &dto.CalculatePartnerCommissionsRequest{DealID: sale.DealID}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Partners, 2)

			byName := make(map[string]dto.PartnerCommissionDTO)
			for _, p := range resp.Partners {
				byName[p.PartnerName] = p
			}

			a := byName["Socio A"]
			assert.Equal(t, socioA.UUID, a.UUID)
			assert.Equal(t, 17500.0, a.TotalAmount) // 70% of 25,000
			assert.Equal(t, models.PartnerStatusInvoiced, a.SaleStatus)
			assert.Equal(t, models.PartnerStatusPendingInvoice, a.PostSaleStatus)

			c := byName["Socio C"]
			assert.Equal(t, 7500.0, c.TotalAmount)
			assert.Equal(t, models.PartnerStatusPendingInvoice, c.SaleStatus)

			// Socio B's row is gone
			_, hasB := byName["Socio B"]
			assert.False(t, hasB)
		})

		t.Run("RequiresCalculatedSale", func(t *testing.T) {
			fresh, err := fixtures.CreateTestSale("Vista del Mar", 300000, time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			_, err = fixtures.CreateTestPartners(fresh.ID, map[string]float64{"Socio A": 100})
			require.NoError(t, err)

			_, err = flow.CalculatePartnerCommissions(ctx, &dto.CalculatePartnerCommissionsRequest{DealID: fresh.DealID}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSaleNotCalculated(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdatePartnerPhase(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newPartnerFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		sale := calculatedSale(t, testDB, 400000)
		_, err := fixtures.CreateTestPartners(sale.ID, map[string]float64{"Socio A": 100})
		require.NoError(t, err)

		calc, err := flow.CalculatePartnerCommissions(ctx, &dto.CalculatePartnerCommissionsRequest{DealID: sale.DealID}, metadata)
		require.NoError(t, err)
		pcUUID := calc.Partners[0].UUID

		t.Run("PhasesMoveIndependently", func(t *testing.T) {
			resp, err := flow.UpdatePartnerPhase(ctx, &dto.UpdatePartnerPhaseRequest{
				UUID:   pcUUID,
				Phase:  models.PhaseSale,
				Status: utils.ToPtr(models.PartnerStatusCollected),
				Cash:   utils.ToPtr(true),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.PartnerStatusCollected, resp.Partner.SaleStatus)
			assert.True(t, resp.Partner.SaleCash)
			require.NotNil(t, resp.Partner.SaleCollectedAt)

			// The post-sale phase never moved
			assert.Equal(t, models.PartnerStatusPendingInvoice, resp.Partner.PostSaleStatus)
			assert.Nil(t, resp.Partner.PostSaleCollectedAt)
		})

		t.Run("LeavingCollectedClearsTimestamp", func(t *testing.T) {
			resp, err := flow.UpdatePartnerPhase(ctx, &dto.UpdatePartnerPhaseRequest{
				UUID:   pcUUID,
				Phase:  models.PhaseSale,
				Status: utils.ToPtr(models.PartnerStatusInvoiced),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.PartnerStatusInvoiced, resp.Partner.SaleStatus)
			assert.Nil(t, resp.Partner.SaleCollectedAt)
		})

		t.Run("RejectsUnknownPhase", func(t *testing.T) {
			_, err := flow.UpdatePartnerPhase(ctx, &dto.UpdatePartnerPhaseRequest{
				UUID:   pcUUID,
				Phase:  "utility",
				Status: utils.ToPtr(models.PartnerStatusCollected),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPhase(err))
		})

		t.Run("RejectsUnknownStatus", func(t *testing.T) {
			_, err := flow.UpdatePartnerPhase(ctx, &dto.UpdatePartnerPhaseRequest{
				UUID:   pcUUID,
				Phase:  models.PhaseSale,
				Status: utils.ToPtr("archived"),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPartnerStatus(err))
		})

		t.Run("UnknownUUID", func(t *testing.T) {
			_, err := flow.UpdatePartnerPhase(ctx, &dto.UpdatePartnerPhaseRequest{
				UUID:   "00000000-0000-0000-0000-000000000000",
				Phase:  models.PhaseSale,
				Status: utils.ToPtr(models.PartnerStatusCollected),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPartnerCommissionNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCreatePartnerInvoice(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newPartnerFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		sale := calculatedSale(t, testDB, 500000)
		_, err := fixtures.CreateTestPartners(sale.ID, map[string]float64{"Socio A": 100})
		require.NoError(t, err)

		calc, err := flow.CalculatePartnerCommissions(ctx, &dto.CalculatePartnerCommissionsRequest{DealID: sale.DealID}, metadata)
		require.NoError(t, err)
		pcUUID := calc.Partners[0].UUID

		t.Run("DefaultVATAndPhaseAdvance", func(t *testing.T) {
			resp, err := flow.CreatePartnerInvoice(ctx, &dto.CreatePartnerInvoiceRequest{
				PartnerCommissionUUID: pcUUID,
				Phase:                 models.PhaseSale,
				InvoiceNumber:         "F-2026-0042",
				IssuedAt:              utils.ToPtr("2026-04-15"),
			}, metadata)
			require.NoError(t, err)

			// 15,000 sale-phase amount plus 16% VAT
			assert.Equal(t, 15000.0, resp.Invoice.Amount)
			assert.Equal(t, 16.0, resp.Invoice.VATPercent)
			assert.Equal(t, 17400.0, resp.Invoice.Total)
			assert.Equal(t, "F-2026-0042", resp.Invoice.InvoiceNumber)

			assert.Equal(t, models.PartnerStatusInvoiced, resp.Partner.SaleStatus)
			assert.Equal(t, models.PartnerStatusPendingInvoice, resp.Partner.PostSaleStatus)
		})

		t.Run("ExplicitVATOverride", func(t *testing.T) {
			resp, err := flow.CreatePartnerInvoice(ctx, &dto.CreatePartnerInvoiceRequest{
				PartnerCommissionUUID: pcUUID,
				Phase:                 models.PhasePostSale,
				InvoiceNumber:         "F-2026-0043",
				VATPercent:            utils.ToPtr(8.0),
			}, metadata)
			require.NoError(t, err)

			// 10,000 post-sale amount plus 8% VAT
			assert.Equal(t, 10000.0, resp.Invoice.Amount)
			assert.Equal(t, 10800.0, resp.Invoice.Total)
		})

		t.Run("SecondInvoiceLeavesStatusAlone", func(t *testing.T) {
			// The sale phase is already invoiced; recording another invoice
			// against it never regresses or re-advances the status
			resp, err := flow.CreatePartnerInvoice(ctx, &dto.CreatePartnerInvoiceRequest{
				PartnerCommissionUUID: pcUUID,
				Phase:                 models.PhaseSale,
				InvoiceNumber:         "F-2026-0044",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.PartnerStatusInvoiced, resp.Partner.SaleStatus)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestHiddenPartners(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newPartnerFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		sale := calculatedSale(t, testDB, 500000)
		_, err := fixtures.CreateTestPartners(sale.ID, map[string]float64{
			"Socio A": 60,
			"Socio B": 40,
		})
		require.NoError(t, err)

		_, err = flow.CalculatePartnerCommissions(ctx, &dto.CalculatePartnerCommissionsRequest{DealID: sale.DealID}, metadata)
		require.NoError(t, err)

		t.Run("HiddenPartnerLeavesTheView", func(t *testing.T) {
			_, err := flow.HidePartner(ctx, &dto.HidePartnerRequest{Name: "Socio B"}, metadata)
			require.NoError(t, err)

			hidden, err := flow.ListHiddenPartners(ctx, metadata)
			require.NoError(t, err)
			assert.Equal(t, []string{"Socio B"}, hidden.Names)

			listed, err := flow.ListPartnerCommissions(ctx, &dto.ListPartnerCommissionsRequest{DealID: sale.DealID}, metadata)
			require.NoError(t, err)
			require.Len(t, listed.Partners, 1)
			assert.Equal(t, "Socio A", listed.Partners[0].PartnerName)
		})

		t.Run("IncludeHiddenShowsEverything", func(t *testing.T) {
			listed, err := flow.ListPartnerCommissions(ctx, &dto.ListPartnerCommissionsRequest{
				DealID:        sale.DealID,
				IncludeHidden: true,
			}, metadata)
			require.NoError(t, err)
			assert.Len(t, listed.Partners, 2)
		})

		t.Run("RestoreBringsThePartnerBack", func(t *testing.T) {
			_, err := flow.RestorePartner(ctx, &dto.RestorePartnerRequest{Name: "Socio B"}, metadata)
			require.NoError(t, err)

			listed, err := flow.ListPartnerCommissions(ctx, &dto.ListPartnerCommissionsRequest{DealID: sale.DealID}, metadata)
			require.NoError(t, err)
			assert.Len(t, listed.Partners, 2)

			hidden, err := flow.ListHiddenPartners(ctx, metadata)
			require.NoError(t, err)
			assert.Empty(t, hidden.Names)
		})

		t.Run("BlankNameRejected", func(t *testing.T) {
			_, err := flow.HidePartner(ctx, &dto.HidePartnerRequest{Name: "   "}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPartnerNameRequired(err))
		})

		return nil
	})
	require.NoError(t, err)
}
