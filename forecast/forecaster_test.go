package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"app/models"
)

// midMarch keeps every test away from any category's peak window.
var midMarch = func() time.Time {
	return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
}

func testForecaster() *Forecaster {
	return New(DefaultConfig(), DefaultCatalog()).WithClock(midMarch)
}

func wineProduct() models.Product {
	return models.Product{
		ID:             "p-1",
		Name:           "Rioja Reserva",
		Category:       models.CategoryWine,
		Price:          12.50,
		WeeklySales:    10,
		InventoryLevel: 50,
	}
}

func history(units ...float64) []models.HistoricalPoint {
	pts := make([]models.HistoricalPoint, len(units))
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, u := range units {
		pts[i] = models.HistoricalPoint{
			Date:           base.AddDate(0, 0, i*7),
			UnitsSold:      u,
			UnitPrice:      12.50,
			InventoryLevel: 100,
		}
	}
	return pts
}

func TestForecastEmptyHistoryFallback(t *testing.T) {
	f := testForecaster()
	p := wineProduct()

	result := f.Forecast(p, nil, nil, 30)

	assert.Equal(t, 40, result.PredictedDemand) // 4x weekly rate
	assert.Equal(t, 0.3, result.ConfidenceInterval.ConfidenceLevel)
	assert.Equal(t, models.TrendStable, result.Trend)
}

func TestForecastConstantSeriesIsStable(t *testing.T) {
	f := testForecaster()
	result := f.Forecast(wineProduct(), history(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10), nil, 30)

	assert.Equal(t, models.TrendStable, result.Trend)
	// Zero variance collapses the interval onto the point estimate.
	assert.Equal(t, result.ConfidenceInterval.Lower, result.ConfidenceInterval.Upper)
}

func TestForecastTrendClassification(t *testing.T) {
	f := testForecaster()

	up := f.Forecast(wineProduct(), history(2, 6, 10, 14, 18, 22, 26, 30), nil, 30)
	assert.Equal(t, models.TrendIncreasing, up.Trend)

	down := f.Forecast(wineProduct(), history(30, 26, 22, 18, 14, 10, 6, 2), nil, 30)
	assert.Equal(t, models.TrendDecreasing, down.Trend)
}

func TestForecastIntervalBounds(t *testing.T) {
	f := testForecaster()

	cases := [][]models.HistoricalPoint{
		history(30, 0, 30, 0, 30, 0, 30, 0),
		history(1, 2, 1, 2, 1),
		history(0, 0, 0, 0),
		history(100),
	}
	for _, hist := range cases {
		result := f.Forecast(wineProduct(), hist, nil, 30)
		assert.GreaterOrEqual(t, result.ConfidenceInterval.Lower, 0.0)
		assert.GreaterOrEqual(t, result.ConfidenceInterval.Upper, result.ConfidenceInterval.Lower)
		assert.GreaterOrEqual(t, result.PredictedDemand, 0)
	}
}

func TestForecastIsIdempotent(t *testing.T) {
	f := testForecaster()
	p := wineProduct()
	hist := history(8, 12, 9, 14, 11, 13, 10, 15)
	comps := []models.CompetitorPrice{
		{ProductID: "p-1", CompetitorName: "majestic", Price: 13.0, Available: true},
	}

	first := f.Forecast(p, hist, comps, 30)
	second := f.Forecast(p, hist, comps, 30)

	assert.Equal(t, first, second)
}

func TestForecastConfidenceProxies(t *testing.T) {
	f := testForecaster()

	// 12+ points, no competitors, outside peak window:
	// (1.0 + 0.7 + 0.6) / 3
	result := f.Forecast(wineProduct(), history(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10), nil, 30)
	assert.InDelta(t, (1.0+0.7+0.6)/3, result.ConfidenceInterval.ConfidenceLevel, 1e-9)

	// Competitor data lifts the availability proxy to 0.8.
	comps := []models.CompetitorPrice{{Price: 12.0, Available: true}}
	withComps := f.Forecast(wineProduct(), history(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10), comps, 30)
	assert.InDelta(t, (1.0+0.7+0.8)/3, withComps.ConfidenceInterval.ConfidenceLevel, 1e-9)
}

func TestForecastReorderWhenUnderAWeekOfStock(t *testing.T) {
	f := testForecaster()
	p := wineProduct()
	p.InventoryLevel = 5
	p.WeeklySales = 10

	result := f.Forecast(p, history(10, 10, 10, 10), nil, 30)

	assert.Equal(t, models.ActionReorderStock, result.Recommendation.Action)
	assert.Equal(t, models.TimingImmediate, result.Recommendation.Timing)
	assert.Equal(t, models.RiskHigh, result.Recommendation.ExpectedImpact.RiskLevel)
}

func TestForecastDecreasePriceWhenWellAboveMarket(t *testing.T) {
	f := testForecaster()
	p := wineProduct()
	p.Price = 50

	comps := []models.CompetitorPrice{
		{CompetitorName: "a", Price: 39, Available: true},
		{CompetitorName: "b", Price: 40, Available: true},
		{CompetitorName: "c", Price: 41, Available: true},
	}
	result := f.Forecast(p, history(10, 11, 9, 12, 10, 11), comps, 30)

	assert.Equal(t, models.ActionDecreasePrice, result.Recommendation.Action)
	assert.Equal(t, models.TimingWithinWeek, result.Recommendation.Timing)
}

func TestForecastPromotionalPricingForPerishableOverstock(t *testing.T) {
	f := testForecaster()
	p := wineProduct()
	p.Category = models.CategoryBeer
	p.InventoryLevel = 140
	p.WeeklySales = 10 // 14 weeks of cover

	result := f.Forecast(p, history(10, 10, 10, 10, 10, 10), nil, 30)

	assert.Equal(t, models.ActionPromotionalPricing, result.Recommendation.Action)
}

func TestForecastMaintainPriceByDefault(t *testing.T) {
	f := testForecaster()
	result := f.Forecast(wineProduct(), history(10, 10, 10, 10, 10, 10), nil, 30)

	assert.Equal(t, models.ActionMaintainPrice, result.Recommendation.Action)
}

func TestForecastSeasonalFactorApplied(t *testing.T) {
	f := testForecaster()
	// Wine in March sits on the spring multiplier.
	result := f.Forecast(wineProduct(), history(10, 10, 10, 10), nil, 30)
	assert.InDelta(t, 0.90, result.SeasonalityFactor, 1e-9)

	// Spirits inside the peak-approach window get the boost on top of the
	// autumn multiplier.
	october := func() time.Time { return time.Date(2025, time.October, 10, 12, 0, 0, 0, time.UTC) }
	fPeak := New(DefaultConfig(), DefaultCatalog()).WithClock(october)
	p := wineProduct()
	p.Category = models.CategorySpirits
	peak := fPeak.Forecast(p, history(10, 10, 10, 10), nil, 30)
	assert.InDelta(t, 1.00*1.10, peak.SeasonalityFactor, 1e-9)
}

func TestForecastUnknownCategoryFallsBackToNeutralProfile(t *testing.T) {
	f := testForecaster()
	p := wineProduct()
	p.Category = "kombucha"

	result := f.Forecast(p, history(10, 10, 10, 10), nil, 30)

	assert.InDelta(t, 1.0, result.SeasonalityFactor, 1e-9)
	assert.Equal(t, models.CategoryTrendStable, result.CategoryTrend)
}

func TestSlopeOf(t *testing.T) {
	cases := []struct {
		series []float64
		want   float64
	}{
		{[]float64{1, 2, 3, 4}, 1},
		{[]float64{5, 5, 5, 5}, 0},
		{[]float64{10, 8, 6, 4}, -2},
		{[]float64{7}, 0},
		{nil, 0},
	}
	for _, c := range cases {
		got := slopeOf(c.series)
		if got != c.want {
			t.Fatalf("slopeOf(%v) = %v; want %v", c.series, got, c.want)
		}
	}
}

func TestSmoothFirstValuePassesThrough(t *testing.T) {
	out := smooth([]float64{10, 20, 30}, 0.3)
	if out[0] != 10 {
		t.Fatalf("smooth[0] = %v; want 10", out[0])
	}
	// S[1] = 0.3*20 + 0.7*10
	if out[1] != 13 {
		t.Fatalf("smooth[1] = %v; want 13", out[1])
	}
}
