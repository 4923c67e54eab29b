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
	"github.com/inmoventa/commission-engine/utils"
)

func newAdjustmentFlow(testDB *testingutil.TestDB) businessflow.AdjustmentFlow {
	return businessflow.NewAdjustmentFlow(
		repository.NewCommissionSaleRepository(testDB.DB),
		repository.NewCommissionDistributionRepository(testDB.DB),
		repository.NewCommissionAdjustmentRepository(testDB.DB),
		testDB.DB,
	)
}

func TestRecordAdjustment(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newAdjustmentFlow(testDB)
		distFlow := newDistributionFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
		metadata.SetOperator("supervisor@inmoventa.mx")

		// 500,000 at 3%/2%; the sale-phase manager row holds 6,000
		sale := calculatedSale(t, testDB, 500000)

		listed, err := distFlow.ListDistributions(ctx, &dto.ListDistributionsRequest{DealID: sale.DealID}, metadata)
		require.NoError(t, err)

		var manager, advisor dto.DistributionDTO
		for _, d := range listed.Distributions {
			if d.Phase != models.PhaseSale {
				continue
			}
			switch d.RoleType {
			case models.RoleSaleManager:
				manager = d
			case models.RoleExternalAdvisor:
				advisor = d
			}
		}
		require.NotEmpty(t, manager.UUID)

		t.Run("CorrectsAmountAndAppendsEntry", func(t *testing.T) {
			resp, err := flow.RecordAdjustment(ctx, &dto.RecordAdjustmentRequest{
				DistributionUUID: manager.UUID,
				NewValue:         5500,
				Reason:           utils.ToPtr("Ajuste acordado con dirección"),
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, 6000.0, resp.Adjustment.OldValue)
			assert.Equal(t, 5500.0, resp.Adjustment.NewValue)
			assert.Equal(t, -500.0, resp.Adjustment.AmountImpact)
			assert.Equal(t, "supervisor@inmoventa.mx", resp.Adjustment.Actor)
			assert.Nil(t, resp.Adjustment.OldRole)

			assert.Equal(t, 5500.0, resp.Distribution.Amount)
		})

		t.Run("RoleChangeIsRecorded", func(t *testing.T) {
			resp, err := flow.RecordAdjustment(ctx, &dto.RecordAdjustmentRequest{
				DistributionUUID: manager.UUID,
				NewValue:         5500,
				NewRole:          utils.ToPtr(models.RoleDealOwner),
			}, metadata)
			require.NoError(t, err)

			require.NotNil(t, resp.Adjustment.OldRole)
			assert.Equal(t, models.RoleSaleManager, *resp.Adjustment.OldRole)
			require.NotNil(t, resp.Adjustment.NewRole)
			assert.Equal(t, models.RoleDealOwner, *resp.Adjustment.NewRole)
			assert.Equal(t, 0.0, resp.Adjustment.AmountImpact)

			assert.Equal(t, models.RoleDealOwner, resp.Distribution.RoleType)
		})

		t.Run("NoOpIsRejected", func(t *testing.T) {
			_, err := flow.RecordAdjustment(ctx, &dto.RecordAdjustmentRequest{
				DistributionUUID: manager.UUID,
				NewValue:         5500,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAdjustmentUnchanged(err))
		})

		t.Run("NotApplicableRowsAreImmutable", func(t *testing.T) {
			// The fixture sale has an advisor, so force one row to NO_APLICA
			_, err := distFlow.UpdateDistributionStatus(ctx, &dto.UpdateDistributionStatusRequest{
				UUID:          advisor.UUID,
				PaymentStatus: utils.ToPtr(models.PaymentStatusNotApplicable),
			}, metadata)
			require.NoError(t, err)

			_, err = flow.RecordAdjustment(ctx, &dto.RecordAdjustmentRequest{
				DistributionUUID: advisor.UUID,
				NewValue:         1000,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDistributionImmutable(err))
		})

		t.Run("LedgerListsNewestFirst", func(t *testing.T) {
			resp, err := flow.ListAdjustments(ctx, &dto.ListAdjustmentsRequest{DealID: sale.DealID}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Adjustments, 2)

			// The role change came after the amount correction
			assert.NotNil(t, resp.Adjustments[0].OldRole)
			assert.Nil(t, resp.Adjustments[1].OldRole)
		})

		t.Run("UnknownDistribution", func(t *testing.T) {
			_, err := flow.RecordAdjustment(ctx, &dto.RecordAdjustmentRequest{
				DistributionUUID: "00000000-0000-0000-0000-000000000000",
				NewValue:         100,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDistributionNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
