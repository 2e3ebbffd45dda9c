package models

import "time"

// Trend classifications for a product's smoothed demand series.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Category-level trend classifications.
const (
	CategoryTrendGrowing   = "growing"
	CategoryTrendDeclining = "declining"
	CategoryTrendStable    = "stable"
)

// Recommended pricing actions, in order of operational weight.
const (
	ActionReorderStock       = "reorder_stock"
	ActionPromotionalPricing = "promotional_pricing"
	ActionIncreasePrice      = "increase_price"
	ActionDecreasePrice      = "decrease_price"
	ActionMaintainPrice      = "maintain_price"
)

// Recommendation timings.
const (
	TimingImmediate   = "immediate"
	TimingWithinWeek  = "within_week"
	TimingWithinMonth = "within_month"
)

// Risk levels for a recommendation's expected impact.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// ConfidenceInterval bounds a demand prediction. Lower is clamped to zero;
// the point estimate is not forced inside the interval.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// PriceRange is the elasticity-derived optimal pricing window.
type PriceRange struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Recommended float64 `json:"recommended"`
}

// ExpectedImpact estimates the financial effect of acting on a recommendation.
type ExpectedImpact struct {
	RevenueChange float64 `json:"revenue_change"`
	ProfitChange  float64 `json:"profit_change"`
	RiskLevel     string  `json:"risk_level"`
}

// Recommendation is the pricing/stock action suggested for a product.
type Recommendation struct {
	Action         string         `json:"action"`
	Confidence     float64        `json:"confidence"`
	Timing         string         `json:"timing"`
	ExpectedImpact ExpectedImpact `json:"expected_impact"`
	PriceRange     *PriceRange    `json:"price_range,omitempty"`
}

// ForecastResult is the full output of one forecast call for one product.
// Created fresh per call; persistence is the caller's concern.
type ForecastResult struct {
	ProductID          string             `json:"product_id"`
	PredictedDemand    int                `json:"predicted_demand"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	Trend              string             `json:"trend"`
	SeasonalityFactor  float64            `json:"seasonality_factor"`
	CategoryTrend      string             `json:"category_trend"`
	Recommendation     Recommendation     `json:"recommendation"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

// CategorySummary aggregates batch results for one product category.
type CategorySummary struct {
	ProductCount    int     `json:"product_count"`
	PredictedUnits  int     `json:"predicted_units"`
	RevenuePotential float64 `json:"revenue_potential"`
	AlertCount      int     `json:"alert_count"`
}

// BatchSummary is the roll-up returned from a full analysis run.
type BatchSummary struct {
	TotalSKUs             int                        `json:"total_skus"`
	TotalRevenuePotential float64                    `json:"total_revenue_potential"`
	HighConfidenceCount   int                        `json:"high_confidence_count"`
	CriticalStockCount    int                        `json:"critical_stock_count"`
	CategoryBreakdown     map[string]CategorySummary `json:"category_breakdown"`
	GeneratedAt           time.Time                  `json:"generated_at"`
}
