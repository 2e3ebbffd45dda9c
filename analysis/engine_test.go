package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"app/alerts"
	"app/forecast"
	"app/models"
)

var midMarch = func() time.Time {
	return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
}

func testEngine() *Engine {
	catalog := forecast.DefaultCatalog()
	forecaster := forecast.New(forecast.DefaultConfig(), catalog).WithClock(midMarch)
	return NewEngine(forecaster, catalog, &alerts.SequenceGenerator{}).WithClock(midMarch)
}

func testInput() Input {
	history := func(units ...float64) []models.HistoricalPoint {
		pts := make([]models.HistoricalPoint, len(units))
		base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		for i, u := range units {
			pts[i] = models.HistoricalPoint{Date: base.AddDate(0, 0, i*7), UnitsSold: u, UnitPrice: 10}
		}
		return pts
	}
	return Input{
		Products: []models.Product{
			{ID: "p-lager", Name: "Helles Lager", Category: models.CategoryBeer, Price: 2.20, WeeklySales: 20, InventoryLevel: 8},
			{ID: "p-gin", Name: "London Dry Gin", Category: models.CategorySpirits, Price: 24.00, WeeklySales: 5, InventoryLevel: 40},
			{ID: "p-cider", Name: "Dry Cider", Category: models.CategoryCider, Price: 3.10, WeeklySales: 10, InventoryLevel: 150},
		},
		Histories: map[string][]models.HistoricalPoint{
			"p-lager": history(18, 22, 19, 23, 21, 20),
			"p-gin":   history(4, 5, 6, 5, 4, 6),
			// p-cider has no history on purpose; it takes the fallback path.
		},
		Competitors: map[string][]models.CompetitorPrice{
			"p-gin": {
				{ProductID: "p-gin", CompetitorName: "waitrose", Price: 26.0, Available: true},
				{ProductID: "p-gin", CompetitorName: "tesco", Price: 25.0, Available: true},
			},
		},
		Rules: alerts.DefaultRules(),
	}
}

func TestRunProducesForecastPerProduct(t *testing.T) {
	result, err := testEngine().Run(context.Background(), testInput(), Options{HorizonDays: 30})

	assert.NoError(t, err)
	assert.Len(t, result.Forecasts, 3)
	// The no-history product degrades to the low-confidence fallback.
	assert.Equal(t, 0.3, result.Forecasts["p-cider"].ConfidenceInterval.ConfidenceLevel)
}

func TestRunRanksAlertsGlobally(t *testing.T) {
	result, err := testEngine().Run(context.Background(), testInput(), Options{HorizonDays: 30})

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Alerts)
	for i := 1; i < len(result.Alerts); i++ {
		prev, cur := result.Alerts[i-1], result.Alerts[i]
		ps, cs := models.SeverityScore(prev.Severity), models.SeverityScore(cur.Severity)
		if ps != cs {
			assert.Greater(t, ps, cs, "severity out of order at %d", i)
			continue
		}
		if prev.Urgency != cur.Urgency {
			assert.Greater(t, prev.Urgency, cur.Urgency, "urgency out of order at %d", i)
			continue
		}
		assert.GreaterOrEqual(t, prev.Impact.Total(), cur.Impact.Total(), "impact out of order at %d", i)
	}
}

func TestRunHonorsPerProductCap(t *testing.T) {
	result, err := testEngine().Run(context.Background(), testInput(), Options{HorizonDays: 30, MaxAlertsPerProduct: 1})

	assert.NoError(t, err)
	perProduct := map[string]int{}
	for _, a := range result.Alerts {
		perProduct[a.ProductID]++
	}
	for id, n := range perProduct {
		assert.LessOrEqual(t, n, 1, "product %s", id)
	}
}

func TestRunFiltersByMinSeverity(t *testing.T) {
	result, err := testEngine().Run(context.Background(), testInput(), Options{HorizonDays: 30, MinSeverity: models.SeverityHigh})

	assert.NoError(t, err)
	for _, a := range result.Alerts {
		assert.GreaterOrEqual(t, models.SeverityScore(a.Severity), models.SeverityScore(models.SeverityHigh))
	}
}

func TestRunSummaryCounts(t *testing.T) {
	result, err := testEngine().Run(context.Background(), testInput(), Options{HorizonDays: 30})

	assert.NoError(t, err)
	summary := result.Summary
	assert.Equal(t, 3, summary.TotalSKUs)
	// p-lager has 0.4 weeks of cover.
	assert.Equal(t, 1, summary.CriticalStockCount)
	assert.Greater(t, summary.TotalRevenuePotential, 0.0)
	assert.Len(t, summary.CategoryBreakdown, 3)
	assert.Equal(t, 1, summary.CategoryBreakdown[models.CategoryBeer].ProductCount)
}

func TestRunRejectsMalformedProducts(t *testing.T) {
	in := testInput()
	in.Products[1].Price = 0

	_, err := testEngine().Run(context.Background(), in, Options{})

	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "p-gin")
	}
}

func TestRunRejectsEmptyProductID(t *testing.T) {
	in := testInput()
	in.Products[0].ID = ""

	_, err := testEngine().Run(context.Background(), in, Options{})
	assert.Error(t, err)
}

func TestRunEmptyBatch(t *testing.T) {
	result, err := testEngine().Run(context.Background(), Input{Rules: alerts.DefaultRules()}, Options{})

	assert.NoError(t, err)
	assert.Empty(t, result.Alerts)
	assert.Equal(t, 0, result.Summary.TotalSKUs)
}
