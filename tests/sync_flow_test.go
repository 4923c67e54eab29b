package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmoventa/commission-engine/app/dto"
	"github.com/inmoventa/commission-engine/app/services"
	businessflow "github.com/inmoventa/commission-engine/business_flow"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	testingutil "github.com/inmoventa/commission-engine/testing"
)

// fakeCRMClient serves canned deals and partners from memory
type fakeCRMClient struct {
	deals    map[string]*services.RawDeal
	partners map[string][]services.DealPartner
}

func newFakeCRMClient() *fakeCRMClient {
	return &fakeCRMClient{
		deals:    make(map[string]*services.RawDeal),
		partners: make(map[string][]services.DealPartner),
	}
}

func (f *fakeCRMClient) FetchClosedWonDeals(ctx context.Context, limit int) ([]*services.RawDeal, error) {
	var deals []*services.RawDeal
	for _, d := range f.deals {
		if d.Stage == "closedwon" {
			deals = append(deals, d)
		}
	}
	return deals, nil
}

func (f *fakeCRMClient) FetchDeal(ctx context.Context, dealID string) (*services.RawDeal, error) {
	deal, ok := f.deals[dealID]
	if !ok {
		return nil, fmt.Errorf("deal %s not found", dealID)
	}
	return deal, nil
}

func (f *fakeCRMClient) FetchDealPartners(ctx context.Context, dealID string) ([]services.DealPartner, error) {
	return f.partners[dealID], nil
}

func closedWonDeal(id string, amount float64) *services.RawDeal {
	return &services.RawDeal{
		ID:                  id,
		Name:                "Cliente Prueba - Torre B Depto 402",
		Amount:              amount,
		Stage:               "closedwon",
		ClosingDate:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Development:         "Vista del Mar",
		OwnerID:             "owner-1",
		OwnerName:           "Ana Torres",
		AccountName:         "Cliente Prueba",
		AreaM2:              120,
		ExternalAdvisorName: "Luis Vega",
	}
}

func newSyncFlow(testDB *testingutil.TestDB, crm services.CRMClient) (businessflow.SyncFlow, repository.CommissionSaleRepository, repository.ProductPartnerRepository) {
	saleRepo := repository.NewCommissionSaleRepository(testDB.DB)
	partnerRepo := repository.NewProductPartnerRepository(testDB.DB)
	return businessflow.NewSyncFlow(crm, saleRepo, partnerRepo), saleRepo, partnerRepo
}

func TestSyncSale(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		crm := newFakeCRMClient()
		flow, saleRepo, partnerRepo := newSyncFlow(testDB, crm)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("CreatesSaleAndPartners", func(t *testing.T) {
			crm.deals["100"] = closedWonDeal("100", 480000)
			crm.partners["100"] = []services.DealPartner{
				{Name: "Socio A", ParticipationPercent: 60},
				{Name: "Socio B", ParticipationPercent: 40},
			}

			resp, err := flow.SyncSale(ctx, &dto.SyncSaleRequest{DealID: "100"}, metadata)
			require.NoError(t, err)
			assert.True(t, resp.Created)
			assert.Equal(t, "100", resp.Sale.DealID)
			assert.Equal(t, "Cliente Prueba", resp.Sale.ClientName)
			require.NotNil(t, resp.Sale.Product)
			assert.Equal(t, "Torre B Depto 402", *resp.Sale.Product)
			assert.Equal(t, "vista del mar", resp.Sale.Development)
			assert.Equal(t, 480000.0, resp.Sale.TotalValue)
			assert.Equal(t, 4000.0, resp.Sale.PricePerArea)

			sale, err := saleRepo.ByDealID(ctx, "100")
			require.NoError(t, err)
			require.NotNil(t, sale)

			partners, err := partnerRepo.BySale(ctx, sale.ID)
			require.NoError(t, err)
			assert.Len(t, partners, 2)
		})

		t.Run("ResyncUpdatesWithoutDuplicating", func(t *testing.T) {
			updated := closedWonDeal("100", 520000)
			crm.deals["100"] = updated

			resp, err := flow.SyncSale(ctx, &dto.SyncSaleRequest{DealID: "100"}, metadata)
			require.NoError(t, err)
			assert.False(t, resp.Created)
			assert.Equal(t, 520000.0, resp.Sale.TotalValue)

			dealID := "100"
			count, err := saleRepo.Count(ctx, models.CommissionSaleFilter{DealID: &dealID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("RejectsOpenDeal", func(t *testing.T) {
			deal := closedWonDeal("200", 300000)
			deal.Stage = "negotiation"
			crm.deals["200"] = deal

			_, err := flow.SyncSale(ctx, &dto.SyncSaleRequest{DealID: "200"}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDealNotClosedWon(err))
		})

		t.Run("RejectsZeroAmount", func(t *testing.T) {
			deal := closedWonDeal("201", 0)
			crm.deals["201"] = deal

			_, err := flow.SyncSale(ctx, &dto.SyncSaleRequest{DealID: "201"}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSaleAmountInvalid(err))
		})

		t.Run("RejectsMissingSigningDate", func(t *testing.T) {
			deal := closedWonDeal("202", 300000)
			deal.ClosingDate = time.Time{}
			crm.deals["202"] = deal

			_, err := flow.SyncSale(ctx, &dto.SyncSaleRequest{DealID: "202"}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSigningDateMissing(err))
		})

		t.Run("RejectsMissingDevelopment", func(t *testing.T) {
			deal := closedWonDeal("203", 300000)
			deal.Development = ""
			crm.deals["203"] = deal

			_, err := flow.SyncSale(ctx, &dto.SyncSaleRequest{DealID: "203"}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDevelopmentRequired(err))
		})

		t.Run("MissingTermIsNonFatal", func(t *testing.T) {
			// No term field in the feed: the sale lands anyway, term stays unset
			deal := closedWonDeal("205", 300000)
			deal.TermMonths = nil
			crm.deals["205"] = deal

			resp, err := flow.SyncSale(ctx, &dto.SyncSaleRequest{DealID: "205"}, metadata)
			require.NoError(t, err)
			assert.Nil(t, resp.Sale.TermMonths)
		})

		t.Run("DefaultsMissingArea", func(t *testing.T) {
			deal := closedWonDeal("204", 300000)
			deal.AreaM2 = 0
			crm.deals["204"] = deal

			resp, err := flow.SyncSale(ctx, &dto.SyncSaleRequest{DealID: "204"}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 100.0, resp.Sale.AreaM2)
			assert.Equal(t, 3000.0, resp.Sale.PricePerArea)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSyncAllClosedWon(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		crm := newFakeCRMClient()
		flow, _, _ := newSyncFlow(testDB, crm)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		crm.deals["300"] = closedWonDeal("300", 400000)
		crm.deals["301"] = closedWonDeal("301", 450000)

		// A bad deal in the batch is reported, never fatal
		bad := closedWonDeal("302", 500000)
		bad.Development = ""
		crm.deals["302"] = bad

		resp, err := flow.SyncAllClosedWon(ctx, metadata)
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Processed)
		assert.Equal(t, 2, resp.Created)
		assert.Equal(t, 0, resp.Updated)
		assert.Equal(t, 1, resp.Errors)
		assert.Len(t, resp.ErrorMessages, 1)

		// Second run updates instead of creating
		resp, err = flow.SyncAllClosedWon(ctx, metadata)
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Updated)
		assert.Equal(t, 0, resp.Created)

		return nil
	})
	require.NoError(t, err)
}

func TestRefreshSalePartners(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		crm := newFakeCRMClient()
		flow, _, partnerRepo := newSyncFlow(testDB, crm)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		crm.deals["400"] = closedWonDeal("400", 400000)
		crm.partners["400"] = []services.DealPartner{
			{Name: "Socio A", ParticipationPercent: 100},
		}

		synced, err := flow.SyncSale(ctx, &dto.SyncSaleRequest{DealID: "400"}, metadata)
		require.NoError(t, err)

		// Feed now reports a different partner set; refresh replaces wholesale
		crm.partners["400"] = []services.DealPartner{
			{Name: "Socio B", ParticipationPercent: 70},
			{Name: "Socio C", ParticipationPercent: 30},
			{Name: "   ", ParticipationPercent: 10}, // blank names are dropped
		}

		resp, err := flow.RefreshSalePartners(ctx, &dto.RefreshSalePartnersRequest{DealID: "400"}, metadata)
		require.NoError(t, err)
		require.Len(t, resp.Partners, 2)

		saleRepo := repository.NewCommissionSaleRepository(testDB.DB)
		sale, err := saleRepo.ByDealID(ctx, synced.Sale.DealID)
		require.NoError(t, err)

		partners, err := partnerRepo.BySale(ctx, sale.ID)
		require.NoError(t, err)
		require.Len(t, partners, 2)
		names := []string{partners[0].Name, partners[1].Name}
		assert.Contains(t, names, "Socio B")
		assert.Contains(t, names, "Socio C")

		t.Run("UnknownDeal", func(t *testing.T) {
			_, err := flow.RefreshSalePartners(ctx, &dto.RefreshSalePartnersRequest{DealID: "no-such"}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSaleNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
