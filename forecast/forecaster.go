package forecast

import (
	"math"
	"time"

	"app/models"
)

// Config holds the tuning knobs for the forecaster.
type Config struct {
	// SmoothingAlpha is the exponential smoothing factor.
	SmoothingAlpha float64
	// SlopeDeadband is the absolute slope below which a trend is stable.
	SlopeDeadband float64
	// PeakWindowDays is how far ahead of a category's peak month demand
	// starts to build.
	PeakWindowDays int
	// PeakBoost multiplies the seasonal factor inside the peak window.
	PeakBoost float64
	// AssumedMargin is the gross margin used for profit impact estimates.
	AssumedMargin float64
	// CompetitorBand is the relative price gap beyond which competitor
	// prices shift our pricing power.
	CompetitorBand float64
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		SmoothingAlpha: 0.3,
		SlopeDeadband:  0.1,
		PeakWindowDays: 60,
		PeakBoost:      1.10,
		AssumedMargin:  0.35,
		CompetitorBand: 0.15,
	}
}

// Forecaster turns a product's sales history into a demand forecast with a
// confidence interval and a recommended pricing action. It is a pure
// computation: no I/O, no shared mutable state, safe for concurrent use.
type Forecaster struct {
	cfg     Config
	catalog Catalog
	now     func() time.Time
}

// New builds a Forecaster from a config and category catalog. Zero-valued
// config fields are replaced with defaults.
func New(cfg Config, catalog Catalog) *Forecaster {
	def := DefaultConfig()
	if cfg.SmoothingAlpha <= 0 || cfg.SmoothingAlpha > 1 {
		cfg.SmoothingAlpha = def.SmoothingAlpha
	}
	if cfg.SlopeDeadband <= 0 {
		cfg.SlopeDeadband = def.SlopeDeadband
	}
	if cfg.PeakWindowDays <= 0 {
		cfg.PeakWindowDays = def.PeakWindowDays
	}
	if cfg.PeakBoost <= 0 {
		cfg.PeakBoost = def.PeakBoost
	}
	if cfg.AssumedMargin <= 0 {
		cfg.AssumedMargin = def.AssumedMargin
	}
	if cfg.CompetitorBand <= 0 {
		cfg.CompetitorBand = def.CompetitorBand
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Forecaster{cfg: cfg, catalog: catalog, now: time.Now}
}

// WithClock overrides the forecaster's clock. Seasonality and peak-window
// logic depend on the current date, so tests pin it.
func (f *Forecaster) WithClock(now func() time.Time) *Forecaster {
	f.now = now
	return f
}

// Forecast produces a demand forecast for one product over horizonDays.
// Never fails: an empty history yields a conservative low-confidence
// fallback instead of an error.
func (f *Forecaster) Forecast(product models.Product, history []models.HistoricalPoint, competitors []models.CompetitorPrice, horizonDays int) models.ForecastResult {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	now := f.now()
	profile := f.catalog.profileFor(product.Category)

	daysToPeak := profile.daysUntilPeak(now)
	approachingPeak := daysToPeak >= 0 && daysToPeak <= f.cfg.PeakWindowDays

	seasonal := profile.Seasonal[SeasonOf(now.Month())]
	if seasonal <= 0 {
		seasonal = 1.0
	}
	if approachingPeak {
		seasonal *= f.cfg.PeakBoost
	}

	meanCompetitor := meanAvailablePrice(competitors)

	if len(history) == 0 {
		return f.fallback(product, profile, seasonal, meanCompetitor, approachingPeak, daysToPeak, now)
	}

	demand := make([]float64, len(history))
	prices := make([]float64, len(history))
	for i, h := range history {
		demand[i] = math.Max(0, sanitize(h.UnitsSold, 0))
		prices[i] = math.Max(0, sanitize(h.UnitPrice, 0))
	}

	smoothed := smooth(demand, f.cfg.SmoothingAlpha)
	slope := slopeOf(smoothed)
	trend := f.classifyTrend(slope)

	elasticity := f.estimateElasticity(prices, demand, profile)
	influence := f.competitorInfluence(product.Price, meanCompetitor)
	priceRange := f.optimalPriceRange(product.Price, elasticity, influence)

	lastSmoothed := smoothed[len(smoothed)-1]
	predicted := int(math.Round(math.Max(0, (lastSmoothed+slope*float64(horizonDays))*seasonal)))

	n := float64(len(demand))
	stdErr := math.Sqrt(variance(demand) / n)
	margin := 1.96 * stdErr

	confidence := f.confidenceLevel(len(demand), approachingPeak, len(competitors) > 0)

	rec := f.recommend(product, profile, predicted, trend, confidence, elasticity,
		meanCompetitor, priceRange, approachingPeak)

	return models.ForecastResult{
		ProductID:       product.ID,
		PredictedDemand: predicted,
		ConfidenceInterval: models.ConfidenceInterval{
			Lower:           math.Max(0, float64(predicted)-margin),
			Upper:           float64(predicted) + margin,
			ConfidenceLevel: confidence,
		},
		Trend:             trend,
		SeasonalityFactor: seasonal,
		CategoryTrend:     profile.Trend,
		Recommendation:    rec,
		GeneratedAt:       now,
	}
}

// fallback is the degraded forecast for a product with no history:
// four weeks of the current weekly rate at low confidence.
func (f *Forecaster) fallback(product models.Product, profile CategoryProfile, seasonal, meanCompetitor float64, approachingPeak bool, daysToPeak int, now time.Time) models.ForecastResult {
	predicted := int(math.Round(math.Max(0, 4*product.WeeklySales)))
	influence := f.competitorInfluence(product.Price, meanCompetitor)
	priceRange := f.optimalPriceRange(product.Price, profile.DefaultElasticity, influence)
	rec := f.recommend(product, profile, predicted, models.TrendStable, 0.3,
		profile.DefaultElasticity, meanCompetitor, priceRange, approachingPeak)

	return models.ForecastResult{
		ProductID:       product.ID,
		PredictedDemand: predicted,
		ConfidenceInterval: models.ConfidenceInterval{
			Lower:           math.Max(0, float64(predicted)*0.5),
			Upper:           float64(predicted) * 1.5,
			ConfidenceLevel: 0.3,
		},
		Trend:             models.TrendStable,
		SeasonalityFactor: seasonal,
		CategoryTrend:     profile.Trend,
		Recommendation:    rec,
		GeneratedAt:       now,
	}
}

func (f *Forecaster) classifyTrend(slope float64) string {
	switch {
	case math.Abs(slope) < f.cfg.SlopeDeadband:
		return models.TrendStable
	case slope > 0:
		return models.TrendIncreasing
	default:
		return models.TrendDecreasing
	}
}

// estimateElasticity regresses demand against price across the history.
// Falls back to the category default when the history is too short or
// price never varied.
func (f *Forecaster) estimateElasticity(prices, demand []float64, profile CategoryProfile) float64 {
	if len(prices) < 3 {
		return profile.DefaultElasticity
	}
	priceVar := variance(prices)
	if priceVar == 0 {
		return profile.DefaultElasticity
	}
	return sanitize(covariance(prices, demand)/priceVar, profile.DefaultElasticity)
}

// competitorInfluence classifies our pricing power against the market:
// -1 when the mean competitor price undercuts us by more than the band,
// +1 when it exceeds us by more than the band, 0 otherwise or with no data.
func (f *Forecaster) competitorInfluence(ourPrice, meanCompetitor float64) int {
	if meanCompetitor <= 0 || ourPrice <= 0 {
		return 0
	}
	switch {
	case meanCompetitor < ourPrice*(1-f.cfg.CompetitorBand):
		return -1
	case meanCompetitor > ourPrice*(1+f.cfg.CompetitorBand):
		return 1
	default:
		return 0
	}
}

// optimalPriceRange derives a pricing window from elasticity and competitor
// influence. Elastic products get less upward room; competitor influence
// shifts the recommended point within the window.
func (f *Forecaster) optimalPriceRange(price, elasticity float64, influence int) *models.PriceRange {
	if price <= 0 {
		return nil
	}
	spread := 0.10
	upper := price * (1 + spread)
	if math.Abs(elasticity) > 1 {
		upper = price * (1 + spread/2)
	}
	lower := price * (1 - spread)

	recommended := price
	switch {
	case influence > 0:
		recommended = price * 1.05
	case influence < 0:
		recommended = price * 0.97
	}
	recommended = math.Min(math.Max(recommended, lower), upper)

	return &models.PriceRange{Min: round2(lower), Max: round2(upper), Recommended: round2(recommended)}
}

// confidenceLevel is the unweighted mean of three proxies: data volume,
// seasonal position, and competitor data availability.
func (f *Forecaster) confidenceLevel(n int, approachingPeak, hasCompetitors bool) float64 {
	dataScore := math.Min(1, float64(n)/12)
	seasonScore := 0.7
	if approachingPeak {
		seasonScore = 0.9
	}
	competitorScore := 0.6
	if hasCompetitors {
		competitorScore = 0.8
	}
	return (dataScore + seasonScore + competitorScore) / 3
}

// recommend walks the priority-ordered action ladder; the first matching
// condition wins.
func (f *Forecaster) recommend(product models.Product, profile CategoryProfile, predicted int, trend string, confidence, elasticity, meanCompetitor float64, priceRange *models.PriceRange, approachingPeak bool) models.Recommendation {
	weeks := models.WeeksOfStock(product.InventoryLevel, product.WeeklySales)
	demandValue := float64(predicted) * product.Price

	rec := models.Recommendation{
		Confidence: confidence,
		PriceRange: priceRange,
	}

	switch {
	case weeks < 1:
		rec.Action = models.ActionReorderStock
		rec.Timing = models.TimingImmediate
		rec.ExpectedImpact = models.ExpectedImpact{
			RevenueChange: round2(demandValue),
			ProfitChange:  round2(demandValue * f.cfg.AssumedMargin),
			RiskLevel:     models.RiskHigh,
		}
		return rec
	case approachingPeak && weeks < 4:
		rec.Action = models.ActionReorderStock
		rec.Timing = models.TimingImmediate
		rec.ExpectedImpact = models.ExpectedImpact{
			RevenueChange: round2(demandValue),
			ProfitChange:  round2(demandValue * f.cfg.AssumedMargin),
			RiskLevel:     models.RiskHigh,
		}
		return rec
	case weeks > 12 && profile.ShelfLifeSensitive:
		recovered := demandValue * 0.15
		rec.Action = models.ActionPromotionalPricing
		rec.Timing = models.TimingWithinWeek
		rec.ExpectedImpact = models.ExpectedImpact{
			RevenueChange: round2(recovered),
			ProfitChange:  round2(recovered * f.cfg.AssumedMargin),
			RiskLevel:     models.RiskMedium,
		}
		return rec
	}

	advantage := math.NaN()
	if meanCompetitor > 0 {
		advantage = (product.Price - meanCompetitor) / meanCompetitor
	}

	switch {
	case !math.IsNaN(advantage) && advantage < -0.10 && trend == models.TrendIncreasing:
		target := product.Price * 1.05
		if priceRange != nil {
			target = priceRange.Recommended
		}
		delta := float64(predicted) * (target - product.Price)
		risk := models.RiskMedium
		if confidence >= 0.7 {
			risk = models.RiskLow
		}
		rec.Action = models.ActionIncreasePrice
		rec.Timing = models.TimingWithinWeek
		rec.ExpectedImpact = models.ExpectedImpact{
			RevenueChange: round2(delta),
			ProfitChange:  round2(delta),
			RiskLevel:     risk,
		}
	case !math.IsNaN(advantage) && advantage > 0.15:
		target := meanCompetitor * 1.05
		cut := (product.Price - target) / product.Price
		uplift := float64(predicted) * math.Abs(elasticity) * cut * target
		rec.Action = models.ActionDecreasePrice
		rec.Timing = models.TimingWithinWeek
		rec.ExpectedImpact = models.ExpectedImpact{
			RevenueChange: round2(uplift),
			ProfitChange:  round2(uplift * f.cfg.AssumedMargin),
			RiskLevel:     models.RiskMedium,
		}
	case approachingPeak:
		target := product.Price * 1.05
		if priceRange != nil && priceRange.Max > product.Price {
			target = math.Min(priceRange.Max, target)
		}
		delta := float64(predicted) * (target - product.Price)
		rec.Action = models.ActionIncreasePrice
		rec.Timing = models.TimingWithinMonth
		rec.ExpectedImpact = models.ExpectedImpact{
			RevenueChange: round2(delta),
			ProfitChange:  round2(delta),
			RiskLevel:     models.RiskMedium,
		}
	default:
		rec.Action = models.ActionMaintainPrice
		rec.Timing = models.TimingWithinMonth
		rec.ExpectedImpact = models.ExpectedImpact{RiskLevel: models.RiskMedium}
	}
	return rec
}

// meanAvailablePrice averages the competitor prices that are in stock.
func meanAvailablePrice(competitors []models.CompetitorPrice) float64 {
	var sum float64
	var n int
	for _, c := range competitors {
		if !c.Available || c.Price <= 0 || math.IsNaN(c.Price) {
			continue
		}
		sum += c.Price
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
