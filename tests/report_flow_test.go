package tests

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/inmoventa/commission-engine/app/dto"
	businessflow "github.com/inmoventa/commission-engine/business_flow"
	"github.com/inmoventa/commission-engine/repository"
	testingutil "github.com/inmoventa/commission-engine/testing"
	"github.com/inmoventa/commission-engine/utils"
)

func newReportFlow(testDB *testingutil.TestDB) businessflow.ReportFlow {
	return businessflow.NewReportFlow(
		repository.NewCommissionSaleRepository(testDB.DB),
		repository.NewBillingTargetRepository(testDB.DB),
		repository.NewSalesTargetRepository(testDB.DB),
	)
}

func TestListSales(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newReportFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		_, err := fixtures.CreateTestSale("Vista del Mar", 400000, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = fixtures.CreateTestSale("Vista del Mar", 450000, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = fixtures.CreateTestSale("Altozano Bosques", 500000, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		t.Run("NewestFirst", func(t *testing.T) {
			resp, err := flow.ListSales(ctx, &dto.ListSalesRequest{}, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(3), resp.Total)
			require.Len(t, resp.Sales, 3)
			assert.Equal(t, "altozano bosques", resp.Sales[0].Development)
		})

		t.Run("FilterByDevelopmentAlias", func(t *testing.T) {
			resp, err := flow.ListSales(ctx, &dto.ListSalesRequest{Development: utils.ToPtr("VDM")}, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(2), resp.Total)
		})

		t.Run("FilterBySignedMonth", func(t *testing.T) {
			resp, err := flow.ListSales(ctx, &dto.ListSalesRequest{
				SignedYear:  utils.ToPtr(2026),
				SignedMonth: utils.ToPtr(3),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(2), resp.Total)
		})

		t.Run("Pagination", func(t *testing.T) {
			resp, err := flow.ListSales(ctx, &dto.ListSalesRequest{Page: 2, PageSize: 2}, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(3), resp.Total)
			assert.Len(t, resp.Sales, 1)
		})

		t.Run("RejectsBadPage", func(t *testing.T) {
			_, err := flow.ListSales(ctx, &dto.ListSalesRequest{Page: -1}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPage(err))

			_, err = flow.ListSales(ctx, &dto.ListSalesRequest{PageSize: 500}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPageSize(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExportSales(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newReportFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		sale, err := fixtures.CreateTestSale("Vista del Mar", 400000, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = fixtures.CreateTestSale("Altozano Bosques", 500000, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		filename, content, err := flow.ExportSales(ctx, &dto.ExportSalesRequest{
			Development: utils.ToPtr("Vista del Mar"),
		}, metadata)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(filename, "commission_sales_"))
		assert.True(t, strings.HasSuffix(filename, ".xlsx"))
		require.NotEmpty(t, content)

		xl, err := excelize.OpenReader(bytes.NewReader(content))
		require.NoError(t, err)
		defer xl.Close()

		rows, err := xl.GetRows("Sales")
		require.NoError(t, err)
		require.Len(t, rows, 2) // header plus the one matching sale

		assert.Equal(t, "deal_id", rows[0][0])
		assert.Equal(t, sale.DealID, rows[1][0])
		assert.Equal(t, "vista del mar", rows[1][3])
		assert.Equal(t, "2026-02-01", rows[1][9])

		return nil
	})
	require.NoError(t, err)
}

func TestCommissionSummary(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newReportFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		_, err := fixtures.CreateTestConfig("Vista del Mar")
		require.NoError(t, err)

		// Two calculated sales plus one never calculated
		distFlow := newDistributionFlow(testDB)
		for _, v := range []float64{400000, 600000} {
			sale, err := fixtures.CreateTestSale("Vista del Mar", v, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			_, err = distFlow.CalculateDistributions(ctx, &dto.CalculateDistributionsRequest{DealID: sale.DealID}, metadata)
			require.NoError(t, err)
		}
		_, err = fixtures.CreateTestSale("Altozano Bosques", 300000, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		resp, err := flow.CommissionSummary(ctx, &dto.CommissionSummaryRequest{SignedYear: utils.ToPtr(2026)}, metadata)
		require.NoError(t, err)
		require.Len(t, resp.Rows, 2)

		// Rows sort by development name
		assert.Equal(t, "altozano bosques", resp.Rows[0].Development)
		assert.Equal(t, int64(1), resp.Rows[0].SaleCount)
		assert.Equal(t, 0.0, resp.Rows[0].TotalCommission)

		assert.Equal(t, "vista del mar", resp.Rows[1].Development)
		assert.Equal(t, int64(2), resp.Rows[1].SaleCount)
		assert.Equal(t, 1000000.0, resp.Rows[1].TotalValue)
		assert.Equal(t, 50000.0, resp.Rows[1].TotalCommission) // 5% of 1,000,000

		return nil
	})
	require.NoError(t, err)
}

func TestPlanningTargets(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newReportFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
		metadata.SetOperator("planner@inmoventa.mx")

		t.Run("BillingUpsertIsIdempotentPerPeriod", func(t *testing.T) {
			_, err := flow.UpsertBillingTarget(ctx, &dto.UpsertTargetRequest{Year: 2026, Month: 3, Amount: 2500000}, metadata)
			require.NoError(t, err)
			resp, err := flow.UpsertBillingTarget(ctx, &dto.UpsertTargetRequest{Year: 2026, Month: 3, Amount: 2750000}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 2750000.0, resp.Target.Amount)

			listed, err := flow.ListBillingTargets(ctx, &dto.ListTargetsRequest{Year: 2026}, metadata)
			require.NoError(t, err)
			require.Len(t, listed.Targets, 1)
			assert.Equal(t, 2750000.0, listed.Targets[0].Amount)
			assert.Equal(t, "planner@inmoventa.mx", listed.Targets[0].UpdatedBy)
		})

		t.Run("SalesTargetsKeepTheirOwnLedger", func(t *testing.T) {
			_, err := flow.UpsertSalesTarget(ctx, &dto.UpsertTargetRequest{Year: 2026, Month: 1, Amount: 8}, metadata)
			require.NoError(t, err)
			_, err = flow.UpsertSalesTarget(ctx, &dto.UpsertTargetRequest{Year: 2026, Month: 2, Amount: 10}, metadata)
			require.NoError(t, err)
			_, err = flow.UpsertSalesTarget(ctx, &dto.UpsertTargetRequest{Year: 2025, Month: 12, Amount: 6}, metadata)
			require.NoError(t, err)

			listed, err := flow.ListSalesTargets(ctx, &dto.ListTargetsRequest{Year: 2026}, metadata)
			require.NoError(t, err)
			require.Len(t, listed.Targets, 2)
			assert.Equal(t, 1, listed.Targets[0].Month)
			assert.Equal(t, 2, listed.Targets[1].Month)

			// Billing targets were never touched by sales-target writes
			billing, err := flow.ListBillingTargets(ctx, &dto.ListTargetsRequest{Year: 2026}, metadata)
			require.NoError(t, err)
			assert.Len(t, billing.Targets, 1)
		})

		t.Run("RejectsBadPeriod", func(t *testing.T) {
			_, err := flow.UpsertBillingTarget(ctx, &dto.UpsertTargetRequest{Year: 2026, Month: 13, Amount: 100}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidTargetPeriod(err))
		})

		return nil
	})
	require.NoError(t, err)
}
