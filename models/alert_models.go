package models

import "time"

// Alert severities, lowest to highest.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// SeverityScore maps a severity to its base urgency contribution.
// Unknown severities score zero.
func SeverityScore(severity string) int {
	switch severity {
	case SeverityCritical:
		return 10
	case SeverityHigh:
		return 8
	case SeverityMedium:
		return 5
	case SeverityLow:
		return 3
	default:
		return 0
	}
}

// Alert rule types. Each type owns one self-contained trigger predicate.
const (
	RuleCriticalStockout       = "critical_stockout"
	RuleLowStock               = "low_stock"
	RuleOverstockExpiration    = "overstock_expiration"
	RuleCompetitorPriceThreat  = "competitor_price_threat"
	RulePricingOpportunity     = "pricing_opportunity"
	RuleSeasonalPeakApproaching = "seasonal_peak_approaching"
	RuleMarginErosion          = "margin_erosion"
	RuleCompliancePotency      = "compliance_potency"
)

// RuleThresholds holds the per-type numeric triggers for a rule. Only the
// fields relevant to the rule's type are set; the rest stay nil.
type RuleThresholds struct {
	WeeksOfStockBelow  *float64 `json:"weeks_of_stock_below,omitempty"`
	WeeksOfStockAbove  *float64 `json:"weeks_of_stock_above,omitempty"`
	PriceGapPercent    *float64 `json:"price_gap_percent,omitempty"`
	DaysToPeakWithin   *int     `json:"days_to_peak_within,omitempty"`
	MinConfidence      *float64 `json:"min_confidence,omitempty"`
	ABVAbove           *float64 `json:"abv_above,omitempty"`
	MarginBelowPercent *float64 `json:"margin_below_percent,omitempty"`
}

// AlertRule is one entry in the alert catalog. Static configuration:
// loaded once, never mutated during an evaluation pass. Priority is a rank,
// lower value wins when a product exceeds its alert cap.
type AlertRule struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Severity       string         `json:"severity"`
	Priority       int            `json:"priority"`
	Enabled        bool           `json:"enabled"`
	Thresholds     RuleThresholds `json:"thresholds"`
	CategoryFilter []string       `json:"category_filter,omitempty"`
	Channels       []string       `json:"channels,omitempty"`
	FrequencyHours int            `json:"frequency_hours,omitempty"`
}

// AppliesTo reports whether the rule's category filter admits the category.
// An empty filter admits everything.
func (r AlertRule) AppliesTo(category string) bool {
	if len(r.CategoryFilter) == 0 {
		return true
	}
	for _, c := range r.CategoryFilter {
		if c == category {
			return true
		}
	}
	return false
}

// AlertImpact quantifies what is at stake if an alert goes unaddressed.
type AlertImpact struct {
	RevenueAtRisk      float64  `json:"revenue_at_risk,omitempty"`
	ProfitOpportunity  float64  `json:"profit_opportunity,omitempty"`
	TimeToCriticalDays *float64 `json:"time_to_critical_days,omitempty"`
}

// Total is the combined monetary impact used for global alert ranking.
func (i AlertImpact) Total() float64 {
	return i.RevenueAtRisk + i.ProfitOpportunity
}

// AlertSnapshot captures the metrics the rule saw when it fired.
type AlertSnapshot struct {
	WeeksOfStock    float64 `json:"weeks_of_stock"`
	PredictedDemand int     `json:"predicted_demand"`
	Confidence      float64 `json:"confidence"`
	Trend           string  `json:"trend"`
}

// Alert is one actionable finding for one product. Immutable once created
// except for the acknowledged/resolved flags, which belong to the
// persistence layer.
type Alert struct {
	ID             string        `json:"id"`
	RuleID         string        `json:"rule_id"`
	ProductID      string        `json:"product_id"`
	Type           string        `json:"type"`
	Severity       string        `json:"severity"`
	Urgency        int           `json:"urgency"`
	Title          string        `json:"title"`
	Message        string        `json:"message"`
	ActionRequired string        `json:"action_required"`
	Impact         AlertImpact   `json:"impact"`
	Snapshot       AlertSnapshot `json:"snapshot"`
	CreatedAt      time.Time     `json:"created_at"`
	Acknowledged   bool          `json:"acknowledged"`
	Resolved       bool          `json:"resolved"`
}
