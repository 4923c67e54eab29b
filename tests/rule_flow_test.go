package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmoventa/commission-engine/app/dto"
	businessflow "github.com/inmoventa/commission-engine/business_flow"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	testingutil "github.com/inmoventa/commission-engine/testing"
	"github.com/inmoventa/commission-engine/utils"
)

func newRuleFlow(testDB *testingutil.TestDB) businessflow.RuleFlow {
	ruleRepo := repository.NewCommissionRuleRepository(testDB.DB)
	saleRepo := repository.NewCommissionSaleRepository(testDB.DB)
	return businessflow.NewRuleFlow(ruleRepo, saleRepo)
}

func TestCreateRule(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRuleFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("Success", func(t *testing.T) {
			resp, err := flow.CreateRule(ctx, &dto.CreateRuleRequest{
				Development:       "Vista del Mar",
				PeriodType:        models.PeriodTypeQuarter,
				PeriodYear:        2026,
				Operator:          models.RuleOperatorGte,
				UnitThreshold:     10,
				CommissionPercent: 0.5,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "vista del mar", resp.Rule.Development)
			assert.True(t, resp.Rule.Active)
		})

		t.Run("MonthRuleNeedsMonth", func(t *testing.T) {
			_, err := flow.CreateRule(ctx, &dto.CreateRuleRequest{
				Development:       "Vista del Mar",
				PeriodType:        models.PeriodTypeMonth,
				PeriodYear:        2026,
				Operator:          models.RuleOperatorGte,
				UnitThreshold:     10,
				CommissionPercent: 0.5,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPeriodMonthRequired(err))
		})

		t.Run("InvalidOperator", func(t *testing.T) {
			_, err := flow.CreateRule(ctx, &dto.CreateRuleRequest{
				Development:       "Vista del Mar",
				PeriodType:        models.PeriodTypeYear,
				PeriodYear:        2026,
				Operator:          ">",
				UnitThreshold:     10,
				CommissionPercent: 0.5,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidOperator(err))
		})

		t.Run("PercentOutOfRange", func(t *testing.T) {
			_, err := flow.CreateRule(ctx, &dto.CreateRuleRequest{
				Development:       "Vista del Mar",
				PeriodType:        models.PeriodTypeYear,
				PeriodYear:        2026,
				Operator:          models.RuleOperatorGte,
				UnitThreshold:     10,
				CommissionPercent: 120,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPercentOutOfRange(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateRule(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRuleFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		rule, err := fixtures.CreateTestRule("Vista del Mar", 2026, 3, 10, 0.5)
		require.NoError(t, err)

		t.Run("PartialUpdate", func(t *testing.T) {
			resp, err := flow.UpdateRule(ctx, &dto.UpdateRuleRequest{
				UUID:          rule.UUID.String(),
				UnitThreshold: utils.ToPtr(int64(15)),
				Active:        utils.ToPtr(false),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(15), resp.Rule.UnitThreshold)
			assert.False(t, resp.Rule.Active)
			// Untouched fields survive
			assert.Equal(t, 0.5, resp.Rule.CommissionPercent)
		})

		t.Run("EmptyUpdateRejected", func(t *testing.T) {
			_, err := flow.UpdateRule(ctx, &dto.UpdateRuleRequest{UUID: rule.UUID.String()}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsRuleUpdateRequired(err))
		})

		t.Run("UnknownUUID", func(t *testing.T) {
			_, err := flow.UpdateRule(ctx, &dto.UpdateRuleRequest{
				UUID:   "00000000-0000-0000-0000-000000000000",
				Active: utils.ToPtr(true),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsRuleNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGetApplicableRules(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRuleFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		dev := "Vista del Mar"

		// Three sales signed in March 2026; the second one is the one evaluated
		_, err := fixtures.CreateTestSale(dev, 400000, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		evaluated, err := fixtures.CreateTestSale(dev, 450000, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = fixtures.CreateTestSale(dev, 500000, time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		t.Run("RulesStack", func(t *testing.T) {
			// All three rules pass at 3 units: they stack, none wins over the others
			_, err := fixtures.CreateTestRule(dev, 2026, 3, 1, 0.25)
			require.NoError(t, err)
			_, err = fixtures.CreateTestRule(dev, 2026, 3, 2, 0.5)
			require.NoError(t, err)
			_, err = fixtures.CreateTestRule(dev, 2026, 3, 3, 1.0)
			require.NoError(t, err)

			resp, err := flow.GetApplicableRules(ctx, &dto.GetApplicableRulesRequest{DealID: evaluated.DealID}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Rules, 3)
			for _, r := range resp.Rules {
				// The whole period counts, including sales signed after the evaluated one
				assert.Equal(t, int64(3), r.UnitCount)
			}
		})

		t.Run("QuarterWindowFollowsSigningDate", func(t *testing.T) {
			// Quarter rules carry only a year; Q1 is derived from the signing date
			quarterRule, err := flow.CreateRule(ctx, &dto.CreateRuleRequest{
				Development:       dev,
				PeriodType:        models.PeriodTypeQuarter,
				PeriodYear:        2026,
				Operator:          models.RuleOperatorGte,
				UnitThreshold:     2,
				CommissionPercent: 0.75,
			}, metadata)
			require.NoError(t, err)

			resp, err := flow.GetApplicableRules(ctx, &dto.GetApplicableRulesRequest{DealID: evaluated.DealID}, metadata)
			require.NoError(t, err)

			found := false
			for _, r := range resp.Rules {
				if r.Rule.UUID == quarterRule.Rule.UUID {
					found = true
					assert.Equal(t, int64(3), r.UnitCount)
				}
			}
			assert.True(t, found)
		})

		t.Run("AliasSpellingMatchesSameDevelopment", func(t *testing.T) {
			// A rule created under an alias applies to sales stored canonically
			aliasRule, err := flow.CreateRule(ctx, &dto.CreateRuleRequest{
				Development:       "VDM",
				PeriodType:        models.PeriodTypeYear,
				PeriodYear:        2026,
				Operator:          models.RuleOperatorGte,
				UnitThreshold:     1,
				CommissionPercent: 0.1,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "vista del mar", aliasRule.Rule.Development)

			resp, err := flow.GetApplicableRules(ctx, &dto.GetApplicableRulesRequest{DealID: evaluated.DealID}, metadata)
			require.NoError(t, err)

			found := false
			for _, r := range resp.Rules {
				if r.Rule.UUID == aliasRule.Rule.UUID {
					found = true
				}
			}
			assert.True(t, found)
		})

		t.Run("UnitCountsIncludeFailingRules", func(t *testing.T) {
			// The audit view reports every rule in period, satisfied or not
			_, err := fixtures.CreateTestRule(dev, 2026, 3, 10, 1.5)
			require.NoError(t, err)

			resp, err := flow.GetRuleUnitCounts(ctx, &dto.GetRuleUnitCountsRequest{
				Development: "Vista del Mar",
				Date:        "2026-03-15",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "vista del mar", resp.Development)

			satisfied := make(map[int64]bool)
			for _, c := range resp.Counts {
				assert.Equal(t, int64(3), c.UnitCount)
				satisfied[c.Rule.UnitThreshold] = c.Satisfied
			}
			assert.True(t, satisfied[1])
			assert.True(t, satisfied[2])
			assert.True(t, satisfied[3])
			assert.False(t, satisfied[10])
		})

		t.Run("UnitCountsRejectBadDate", func(t *testing.T) {
			_, err := flow.GetRuleUnitCounts(ctx, &dto.GetRuleUnitCountsRequest{
				Development: "Vista del Mar",
				Date:        "15/03/2026",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidReferenceDate(err))
		})

		t.Run("OtherDevelopmentExcluded", func(t *testing.T) {
			otherRule, err := fixtures.CreateTestRule("Altozano Bosques", 2026, 3, 1, 0.5)
			require.NoError(t, err)

			resp, err := flow.GetApplicableRules(ctx, &dto.GetApplicableRulesRequest{DealID: evaluated.DealID}, metadata)
			require.NoError(t, err)
			for _, r := range resp.Rules {
				assert.NotEqual(t, otherRule.UUID.String(), r.Rule.UUID)
			}
		})

		return nil
	})
	require.NoError(t, err)
}
