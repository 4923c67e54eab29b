// Package testing provides test utilities and database setup for testing the commission engine
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/inmoventa/commission-engine/models"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestConfig creates a commission configuration for a development with
// a conventional 3%/2% phase split and a 40/40/20 role split.
func (tf *TestFixtures) CreateTestConfig(development string) (*models.CommissionConfig, error) {
	cfg := &models.CommissionConfig{
		Development:            models.NormalizeDevelopment(development),
		SalePercent:            3.0,
		PostSalePercent:        2.0,
		SaleManagerPercent:     40.0,
		DealOwnerPercent:       40.0,
		ExternalAdvisorPercent: 20.0,
		UpdatedBy:              "fixtures",
	}

	if err := tf.DB.DB.Create(cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to create test config: %w", err)
	}
	return cfg, nil
}

// CreateTestSale creates a synced, not-yet-calculated sale for a development.
// The deal ID is randomized so fixtures never collide within one database.
func (tf *TestFixtures) CreateTestSale(development string, totalValue float64, signing time.Time) (*models.CommissionSale, error) {
	sale := &models.CommissionSale{
		DealID:          fmt.Sprintf("deal-%09d", rand.Intn(900000000)+100000000),
		ClientName:      "Cliente de Prueba",
		Development:     models.NormalizeDevelopment(development),
		OwnerID:         "owner-1",
		OwnerName:       "Ana Torres",
		AreaM2:          250,
		PricePerArea:    totalValue / 250,
		TotalValue:      totalValue,
		SigningDate:     signing.UTC(),
		ExternalAdvisor: "Luis Vega",
	}

	if err := tf.DB.DB.Create(sale).Error; err != nil {
		return nil, fmt.Errorf("failed to create test sale: %w", err)
	}
	return sale, nil
}

// CreateTestRule creates an active month rule for a development
func (tf *TestFixtures) CreateTestRule(development string, year, month int, threshold int64, percent float64) (*models.CommissionRule, error) {
	rule := &models.CommissionRule{
		Development:       models.NormalizeDevelopment(development),
		PeriodType:        models.PeriodTypeMonth,
		PeriodYear:        year,
		PeriodMonth:       &month,
		Operator:          models.RuleOperatorGte,
		UnitThreshold:     threshold,
		CommissionPercent: percent,
		Active:            true,
	}

	if err := tf.DB.DB.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create test rule: %w", err)
	}
	return rule, nil
}

// CreateTestPartners replaces a sale's product partners with the given
// name/percent pairs.
func (tf *TestFixtures) CreateTestPartners(saleID uint, shares map[string]float64) ([]*models.ProductPartner, error) {
	partners := make([]*models.ProductPartner, 0, len(shares))
	for name, percent := range shares {
		partner := &models.ProductPartner{
			SaleID:               saleID,
			Name:                 name,
			ParticipationPercent: percent,
		}
		if err := tf.DB.DB.Create(partner).Error; err != nil {
			return nil, fmt.Errorf("failed to create test partner %s: %w", name, err)
		}
		partners = append(partners, partner)
	}
	return partners, nil
}
