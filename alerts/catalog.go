package alerts

import "app/models"

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

// DefaultRules returns the built-in alert catalog, ordered by priority
// rank (lower wins when a product hits its alert cap). Callers may filter
// or override entries per tenant; the evaluator never mutates the slice.
func DefaultRules() []models.AlertRule {
	return []models.AlertRule{
		{
			ID:       "rule-critical-stockout",
			Name:     "Critical stockout risk",
			Type:     models.RuleCriticalStockout,
			Severity: models.SeverityCritical,
			Priority: 1,
			Enabled:  true,
			Thresholds: models.RuleThresholds{
				WeeksOfStockBelow: f64(1),
			},
			Channels:       []string{"email", "dashboard"},
			FrequencyHours: 24,
		},
		{
			ID:       "rule-low-stock",
			Name:     "Low stock",
			Type:     models.RuleLowStock,
			Severity: models.SeverityHigh,
			Priority: 2,
			Enabled:  true,
			Thresholds: models.RuleThresholds{
				WeeksOfStockBelow: f64(3),
			},
			Channels:       []string{"dashboard"},
			FrequencyHours: 24,
		},
		{
			ID:       "rule-overstock-expiration",
			Name:     "Overstock on perishable category",
			Type:     models.RuleOverstockExpiration,
			Severity: models.SeverityHigh,
			Priority: 3,
			Enabled:  true,
			Thresholds: models.RuleThresholds{
				WeeksOfStockAbove: f64(8),
			},
			CategoryFilter: []string{models.CategoryBeer, models.CategoryCider, models.CategoryRTD},
			Channels:       []string{"dashboard"},
			FrequencyHours: 72,
		},
		{
			ID:       "rule-competitor-threat",
			Name:     "Competitor price threat",
			Type:     models.RuleCompetitorPriceThreat,
			Severity: models.SeverityHigh,
			Priority: 4,
			Enabled:  true,
			Thresholds: models.RuleThresholds{
				PriceGapPercent: f64(15),
			},
			Channels:       []string{"email", "dashboard"},
			FrequencyHours: 48,
		},
		{
			ID:       "rule-pricing-opportunity",
			Name:     "Pricing opportunity",
			Type:     models.RulePricingOpportunity,
			Severity: models.SeverityMedium,
			Priority: 5,
			Enabled:  true,
			Thresholds: models.RuleThresholds{
				PriceGapPercent: f64(10),
				MinConfidence:   f64(0.6),
			},
			Channels:       []string{"dashboard"},
			FrequencyHours: 72,
		},
		{
			ID:       "rule-seasonal-peak",
			Name:     "Seasonal peak approaching",
			Type:     models.RuleSeasonalPeakApproaching,
			Severity: models.SeverityMedium,
			Priority: 6,
			Enabled:  true,
			Thresholds: models.RuleThresholds{
				DaysToPeakWithin:  i(60),
				WeeksOfStockBelow: f64(6),
			},
			Channels:       []string{"dashboard"},
			FrequencyHours: 168,
		},
		{
			ID:       "rule-margin-erosion",
			Name:     "Margin erosion",
			Type:     models.RuleMarginErosion,
			Severity: models.SeverityMedium,
			Priority: 7,
			Enabled:  true,
			Thresholds: models.RuleThresholds{
				MarginBelowPercent: f64(20),
			},
			Channels:       []string{"dashboard"},
			FrequencyHours: 168,
		},
		{
			ID:       "rule-compliance-potency",
			Name:     "High-potency compliance check",
			Type:     models.RuleCompliancePotency,
			Severity: models.SeverityLow,
			Priority: 8,
			Enabled:  true,
			Thresholds: models.RuleThresholds{
				ABVAbove: f64(40),
			},
			CategoryFilter: []string{models.CategorySpirits},
			Channels:       []string{"dashboard"},
			FrequencyHours: 720,
		},
	}
}
