package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmoventa/commission-engine/app/dto"
	businessflow "github.com/inmoventa/commission-engine/business_flow"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	testingutil "github.com/inmoventa/commission-engine/testing"
)

// newConfigFlow builds the flow without a cache; caching is optional and the
// flow must behave identically with it disabled.
func newConfigFlow(testDB *testingutil.TestDB) businessflow.ConfigFlow {
	return businessflow.NewConfigFlow(
		repository.NewCommissionConfigRepository(testDB.DB),
		repository.NewGlobalConfigRepository(testDB.DB),
		nil,
		nil,
	)
}

func baseConfigRequest(development string) *dto.UpsertConfigRequest {
	return &dto.UpsertConfigRequest{
		Development:            development,
		SalePercent:            3.0,
		PostSalePercent:        2.0,
		SaleManagerPercent:     40.0,
		DealOwnerPercent:       40.0,
		ExternalAdvisorPercent: 20.0,
	}
}

func TestUpsertConfig(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newConfigFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
		metadata.SetOperator("admin@inmoventa.mx")

		t.Run("CreatesNormalized", func(t *testing.T) {
			resp, err := flow.UpsertConfig(ctx, baseConfigRequest("VDM"), metadata)
			require.NoError(t, err)
			assert.Equal(t, "vista del mar", resp.Config.Development)
			assert.Equal(t, 3.0, resp.Config.SalePercent)
			assert.Equal(t, "admin@inmoventa.mx", resp.Config.UpdatedBy)
		})

		t.Run("OverwritesSameRowThroughAlias", func(t *testing.T) {
			req := baseConfigRequest("Vista del Mar")
			req.SalePercent = 3.5
			resp, err := flow.UpsertConfig(ctx, req, metadata)
			require.NoError(t, err)
			assert.Equal(t, 3.5, resp.Config.SalePercent)

			listed, err := flow.ListConfigs(ctx, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(1), listed.Total)
		})

		t.Run("PoolNeedsPercent", func(t *testing.T) {
			req := baseConfigRequest("San Miguel Residencial")
			req.PoolEnabled = true
			req.PoolPercent = 0
			_, err := flow.UpsertConfig(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPoolPercentRequired(err))
		})

		t.Run("AddOnNeedsPercent", func(t *testing.T) {
			req := baseConfigRequest("San Miguel Residencial")
			req.DeliveriesEnabled = true
			req.DeliveriesPercent = 0
			_, err := flow.UpsertConfig(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAddOnPercentRequired(err))
		})

		t.Run("RejectsUnknownDevelopment", func(t *testing.T) {
			_, err := flow.UpsertConfig(ctx, baseConfigRequest("   "), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDevelopmentRequired(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGetConfig(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newConfigFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		_, err := flow.UpsertConfig(ctx, baseConfigRequest("Vista del Mar"), metadata)
		require.NoError(t, err)

		t.Run("AliasResolvesToSameRow", func(t *testing.T) {
			canonical, err := flow.GetConfig(ctx, &dto.GetConfigRequest{Development: "Vista del Mar"}, metadata)
			require.NoError(t, err)
			alias, err := flow.GetConfig(ctx, &dto.GetConfigRequest{Development: "vdm"}, metadata)
			require.NoError(t, err)
			assert.Equal(t, canonical.Config.UUID, alias.Config.UUID)
		})

		t.Run("NotFound", func(t *testing.T) {
			_, err := flow.GetConfig(ctx, &dto.GetConfigRequest{Development: "Altozano Bosques"}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsConfigNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGlobalConfigs(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newConfigFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("ListCoversFixedKeySet", func(t *testing.T) {
			resp, err := flow.ListGlobalConfigs(ctx, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Entries, len(models.GlobalConfigKeys))
			for _, e := range resp.Entries {
				assert.Equal(t, 0.0, e.Percent)
			}
		})

		t.Run("UpsertThenList", func(t *testing.T) {
			_, err := flow.UpsertGlobalConfig(ctx, &dto.UpsertGlobalConfigRequest{
				Key:     models.GlobalKeyMarketing,
				Percent: 1.5,
			}, metadata)
			require.NoError(t, err)

			resp, err := flow.ListGlobalConfigs(ctx, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Entries, len(models.GlobalConfigKeys))
			for _, e := range resp.Entries {
				if e.Key == models.GlobalKeyMarketing {
					assert.Equal(t, 1.5, e.Percent)
				} else {
					assert.Equal(t, 0.0, e.Percent)
				}
			}
		})

		t.Run("GetReturnsWrittenEntry", func(t *testing.T) {
			resp, err := flow.GetGlobalConfig(ctx, &dto.GetGlobalConfigRequest{Key: models.GlobalKeyMarketing}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.GlobalKeyMarketing, resp.Entry.Key)
			assert.Equal(t, 1.5, resp.Entry.Percent)
		})

		t.Run("GetZeroFillsUnwrittenKey", func(t *testing.T) {
			resp, err := flow.GetGlobalConfig(ctx, &dto.GetGlobalConfigRequest{Key: models.GlobalKeyLegal}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.GlobalKeyLegal, resp.Entry.Key)
			assert.Equal(t, 0.0, resp.Entry.Percent)
		})

		t.Run("GetRejectsUnknownKey", func(t *testing.T) {
			_, err := flow.GetGlobalConfig(ctx, &dto.GetGlobalConfigRequest{Key: "finance_director"}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsGlobalKeyNotFound(err))
		})

		t.Run("RejectsUnknownKey", func(t *testing.T) {
			_, err := flow.UpsertGlobalConfig(ctx, &dto.UpsertGlobalConfigRequest{
				Key:     "finance_director",
				Percent: 1.0,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsGlobalKeyNotFound(err))
		})

		t.Run("RejectsPercentAbove100", func(t *testing.T) {
			_, err := flow.UpsertGlobalConfig(ctx, &dto.UpsertGlobalConfigRequest{
				Key:     models.GlobalKeyLegal,
				Percent: 101,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPercentOutOfRange(err))
		})

		return nil
	})
	require.NoError(t, err)
}
