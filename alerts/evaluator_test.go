package alerts

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"app/forecast"
	"app/models"
)

var midMarch = func() time.Time {
	return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
}

func testEvaluator(rules []models.AlertRule, maxPerProduct int) *Evaluator {
	return NewEvaluator(rules, &SequenceGenerator{}, forecast.DefaultCatalog(), maxPerProduct).WithClock(midMarch)
}

func product() models.Product {
	return models.Product{
		ID:             "p-1",
		Name:           "Session IPA",
		Category:       models.CategoryBeer,
		Price:          2.50,
		WeeklySales:    10,
		InventoryLevel: 50,
	}
}

func forecastResult() models.ForecastResult {
	return models.ForecastResult{
		ProductID:       "p-1",
		PredictedDemand: 45,
		ConfidenceInterval: models.ConfidenceInterval{
			Lower: 30, Upper: 60, ConfidenceLevel: 0.78,
		},
		Trend:             models.TrendStable,
		SeasonalityFactor: 1.0,
	}
}

func stockoutRule() models.AlertRule {
	return models.AlertRule{
		ID:         "rule-critical-stockout",
		Name:       "Critical stockout risk",
		Type:       models.RuleCriticalStockout,
		Severity:   models.SeverityCritical,
		Priority:   1,
		Enabled:    true,
		Thresholds: models.RuleThresholds{WeeksOfStockBelow: f64(1)},
	}
}

func TestCriticalStockoutFiresWithTimeToCritical(t *testing.T) {
	p := product()
	p.InventoryLevel = 5
	p.WeeklySales = 10 // half a week of cover

	e := testEvaluator([]models.AlertRule{stockoutRule()}, 3)
	got := e.EvaluateProduct(p, forecastResult(), nil)

	assert.Len(t, got, 1)
	alert := got[0]
	assert.Equal(t, models.SeverityCritical, alert.Severity)
	assert.Equal(t, models.RuleCriticalStockout, alert.Type)
	if assert.NotNil(t, alert.Impact.TimeToCriticalDays) {
		assert.InDelta(t, 3.5, *alert.Impact.TimeToCriticalDays, 1e-9)
	}
}

func TestStockoutDoesNotFireWithAmpleStock(t *testing.T) {
	e := testEvaluator([]models.AlertRule{stockoutRule()}, 3)
	got := e.EvaluateProduct(product(), forecastResult(), nil)
	assert.Empty(t, got)
}

func TestOverstockFiresForPerishableNotStockout(t *testing.T) {
	p := product()
	p.InventoryLevel = 140
	p.WeeklySales = 10 // 14 weeks of cover
	shelfLife := 90
	p.ShelfLifeDays = &shelfLife

	overstock := models.AlertRule{
		ID:             "rule-overstock",
		Type:           models.RuleOverstockExpiration,
		Severity:       models.SeverityHigh,
		Priority:       2,
		Enabled:        true,
		Thresholds:     models.RuleThresholds{WeeksOfStockAbove: f64(8)},
		CategoryFilter: []string{models.CategoryBeer},
	}
	e := testEvaluator([]models.AlertRule{stockoutRule(), overstock}, 3)
	got := e.EvaluateProduct(p, forecastResult(), nil)

	assert.Len(t, got, 1)
	assert.Equal(t, models.RuleOverstockExpiration, got[0].Type)
}

func TestCompetitorThreatReportsPriceGap(t *testing.T) {
	p := product()
	p.Price = 50

	rule := models.AlertRule{
		ID:         "rule-threat",
		Type:       models.RuleCompetitorPriceThreat,
		Severity:   models.SeverityHigh,
		Priority:   1,
		Enabled:    true,
		Thresholds: models.RuleThresholds{PriceGapPercent: f64(15)},
	}
	comps := []models.CompetitorPrice{
		{CompetitorName: "a", Price: 39, Available: true},
		{CompetitorName: "b", Price: 40, Available: true},
		{CompetitorName: "c", Price: 41, Available: true},
	}
	e := testEvaluator([]models.AlertRule{rule}, 3)
	got := e.EvaluateProduct(p, forecastResult(), comps)

	assert.Len(t, got, 1)
	// Our 50 vs a 40 mean is a 25% premium; the message carries the figure.
	assert.Contains(t, got[0].Message, "25%")
}

func TestCompetitorRulesSilentWithoutCompetitorData(t *testing.T) {
	rules := []models.AlertRule{
		{
			ID: "rule-threat", Type: models.RuleCompetitorPriceThreat,
			Severity: models.SeverityHigh, Priority: 1, Enabled: true,
			Thresholds: models.RuleThresholds{PriceGapPercent: f64(15)},
		},
		{
			ID: "rule-opportunity", Type: models.RulePricingOpportunity,
			Severity: models.SeverityMedium, Priority: 2, Enabled: true,
			Thresholds: models.RuleThresholds{PriceGapPercent: f64(10)},
		},
	}
	e := testEvaluator(rules, 3)

	assert.NotPanics(t, func() {
		got := e.EvaluateProduct(product(), forecastResult(), nil)
		assert.Empty(t, got)
	})
}

func TestPerProductCapKeepsHighestPriorityRules(t *testing.T) {
	p := product()
	p.InventoryLevel = 5 // fires stockout and low stock
	p.WeeklySales = 10
	cost := 2.30 // 8% margin, fires margin erosion
	p.CostPrice = &cost

	lowStock := models.AlertRule{
		ID: "rule-low-stock", Type: models.RuleLowStock,
		Severity: models.SeverityHigh, Priority: 2, Enabled: true,
		Thresholds: models.RuleThresholds{WeeksOfStockBelow: f64(3)},
	}
	marginRule := models.AlertRule{
		ID: "rule-margin", Type: models.RuleMarginErosion,
		Severity: models.SeverityMedium, Priority: 7, Enabled: true,
		Thresholds: models.RuleThresholds{MarginBelowPercent: f64(20)},
	}
	e := testEvaluator([]models.AlertRule{marginRule, stockoutRule(), lowStock}, 2)
	got := e.EvaluateProduct(p, forecastResult(), nil)

	assert.Len(t, got, 2)
	assert.Equal(t, "rule-critical-stockout", got[0].RuleID)
	assert.Equal(t, "rule-low-stock", got[1].RuleID)
}

func TestDisabledAndMisconfiguredRulesAreSkipped(t *testing.T) {
	p := product()
	p.InventoryLevel = 0

	disabled := stockoutRule()
	disabled.ID = "rule-disabled"
	disabled.Enabled = false

	unknownType := models.AlertRule{
		ID: "rule-unknown", Type: "telepathy",
		Severity: models.SeverityCritical, Priority: 1, Enabled: true,
	}
	badFilter := stockoutRule()
	badFilter.ID = "rule-bad-filter"
	badFilter.CategoryFilter = []string{"firewood"}

	e := testEvaluator([]models.AlertRule{disabled, unknownType, badFilter}, 3)
	got := e.EvaluateProduct(p, forecastResult(), nil)

	assert.Empty(t, got)
}

func TestCompliancePotencyFiresAboveThreshold(t *testing.T) {
	p := product()
	p.Category = models.CategorySpirits
	abv := 57.0
	p.ABV = &abv

	rule := models.AlertRule{
		ID: "rule-potency", Type: models.RuleCompliancePotency,
		Severity: models.SeverityLow, Priority: 8, Enabled: true,
		Thresholds:     models.RuleThresholds{ABVAbove: f64(40)},
		CategoryFilter: []string{models.CategorySpirits},
	}
	e := testEvaluator([]models.AlertRule{rule}, 3)
	got := e.EvaluateProduct(p, forecastResult(), nil)

	assert.Len(t, got, 1)
	assert.Equal(t, models.RuleCompliancePotency, got[0].Type)
}

func TestSequenceGeneratorGivesDeterministicIDs(t *testing.T) {
	p := product()
	p.InventoryLevel = 5
	p.WeeklySales = 10

	e := testEvaluator([]models.AlertRule{stockoutRule()}, 3)
	got := e.EvaluateProduct(p, forecastResult(), nil)

	assert.Len(t, got, 1)
	assert.Equal(t, "alert-1", got[0].ID)
}

func TestUrgencyScoring(t *testing.T) {
	short := 3.0
	medium := 10.0

	cases := []struct {
		name     string
		severity string
		impact   models.AlertImpact
		want     int
	}{
		{"low severity no bonuses", models.SeverityLow, models.AlertImpact{}, 3},
		{"medium with mid impact", models.SeverityMedium, models.AlertImpact{RevenueAtRisk: 600}, 6},
		{"high with short runway", models.SeverityHigh, models.AlertImpact{TimeToCriticalDays: &short}, 10},
		{"high with mid runway", models.SeverityHigh, models.AlertImpact{TimeToCriticalDays: &medium}, 9},
		{"critical capped at ten", models.SeverityCritical, models.AlertImpact{RevenueAtRisk: 5000, TimeToCriticalDays: &short}, 10},
	}
	for _, c := range cases {
		if got := urgency(c.severity, c.impact); got != c.want {
			t.Fatalf("%s: urgency = %d; want %d", c.name, got, c.want)
		}
	}
}

func TestRankOrdersBySeverityUrgencyImpact(t *testing.T) {
	canonical := []models.Alert{
		{ID: "a", Severity: models.SeverityCritical, Urgency: 10, Impact: models.AlertImpact{RevenueAtRisk: 100}},
		{ID: "b", Severity: models.SeverityCritical, Urgency: 8, Impact: models.AlertImpact{RevenueAtRisk: 900}},
		{ID: "c", Severity: models.SeverityHigh, Urgency: 9, Impact: models.AlertImpact{ProfitOpportunity: 50}},
		{ID: "d", Severity: models.SeverityHigh, Urgency: 9, Impact: models.AlertImpact{ProfitOpportunity: 20}},
		{ID: "e", Severity: models.SeverityMedium, Urgency: 5},
		{ID: "f", Severity: models.SeverityLow, Urgency: 3},
	}

	shuffled := make([]models.Alert, len(canonical))
	copy(shuffled, canonical)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	Rank(shuffled)

	for i := range canonical {
		assert.Equal(t, canonical[i].ID, shuffled[i].ID, "position %d", i)
	}
}

func TestDefaultRulesAreWellFormed(t *testing.T) {
	rules := DefaultRules()
	assert.NotEmpty(t, rules)

	seen := map[string]bool{}
	for _, r := range rules {
		assert.True(t, r.Enabled, "rule %s should ship enabled", r.ID)
		assert.False(t, seen[r.ID], "duplicate rule id %s", r.ID)
		seen[r.ID] = true
		assert.True(t, validCategoryFilter(r.CategoryFilter), "rule %s filter", r.ID)
		assert.NotZero(t, models.SeverityScore(r.Severity), "rule %s severity", r.ID)
	}
}
