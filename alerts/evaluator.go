package alerts

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"app/forecast"
	"app/models"
)

// assumedMargin is the gross margin used when a rule needs a profit figure
// and the product has no cost price.
const assumedMargin = 0.35

// Evaluator applies an ordered rule catalog to products and their
// forecasts, producing ranked alerts. Pure computation; safe for
// concurrent use across products.
type Evaluator struct {
	rules         []models.AlertRule
	idgen         IDGenerator
	catalog       forecast.Catalog
	maxPerProduct int
	now           func() time.Time
}

// NewEvaluator builds an Evaluator. A nil idgen defaults to UUIDs, a nil
// catalog to the default category table, and maxPerProduct <= 0 to 3.
func NewEvaluator(rules []models.AlertRule, idgen IDGenerator, catalog forecast.Catalog, maxPerProduct int) *Evaluator {
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	if catalog == nil {
		catalog = forecast.DefaultCatalog()
	}
	if maxPerProduct <= 0 {
		maxPerProduct = 3
	}
	return &Evaluator{
		rules:         rules,
		idgen:         idgen,
		catalog:       catalog,
		maxPerProduct: maxPerProduct,
		now:           time.Now,
	}
}

// WithClock overrides the evaluator's clock for deterministic tests.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// productContext carries the quantities rule predicates share.
type productContext struct {
	weeksOfStock   float64
	daysToStockout float64
	meanCompetitor float64
	priceGapPct    float64 // positive when we are more expensive, NaN without competitor data
	daysToPeak     int     // -1 when the category has no peak months
	marginPct      float64 // NaN without a cost price
}

type candidate struct {
	priority int
	alert    models.Alert
}

// EvaluateProduct runs every enabled, category-matching rule against one
// product and returns at most maxPerProduct alerts, highest-priority rules
// first. A faulty rule is skipped, never fatal.
func (e *Evaluator) EvaluateProduct(product models.Product, fc models.ForecastResult, competitors []models.CompetitorPrice) []models.Alert {
	ctx := e.buildContext(product, fc, competitors)

	var fired []candidate
	for _, rule := range e.rules {
		if !rule.Enabled {
			continue
		}
		if !validCategoryFilter(rule.CategoryFilter) {
			log.Printf("Skipping rule %s: category filter references unknown category", rule.ID)
			continue
		}
		if !rule.AppliesTo(product.Category) {
			continue
		}
		alert, ok := e.evaluateRule(rule, product, fc, ctx)
		if !ok {
			continue
		}
		fired = append(fired, candidate{priority: rule.Priority, alert: alert})
	}

	sort.SliceStable(fired, func(a, b int) bool {
		return fired[a].priority < fired[b].priority
	})
	if len(fired) > e.maxPerProduct {
		fired = fired[:e.maxPerProduct]
	}

	alerts := make([]models.Alert, len(fired))
	for i, c := range fired {
		alerts[i] = c.alert
	}
	return alerts
}

// Rank sorts alerts globally: severity descending, then urgency descending,
// then combined monetary impact descending.
func Rank(alerts []models.Alert) {
	sort.SliceStable(alerts, func(a, b int) bool {
		sa, sb := models.SeverityScore(alerts[a].Severity), models.SeverityScore(alerts[b].Severity)
		if sa != sb {
			return sa > sb
		}
		if alerts[a].Urgency != alerts[b].Urgency {
			return alerts[a].Urgency > alerts[b].Urgency
		}
		return alerts[a].Impact.Total() > alerts[b].Impact.Total()
	})
}

func (e *Evaluator) buildContext(product models.Product, fc models.ForecastResult, competitors []models.CompetitorPrice) productContext {
	weeks := models.WeeksOfStock(product.InventoryLevel, product.WeeklySales)

	var sum float64
	var n int
	for _, c := range competitors {
		if !c.Available || c.Price <= 0 || math.IsNaN(c.Price) {
			continue
		}
		sum += c.Price
		n++
	}
	meanCompetitor := 0.0
	gap := math.NaN()
	if n > 0 {
		meanCompetitor = sum / float64(n)
		gap = (product.Price - meanCompetitor) / meanCompetitor * 100
	}

	margin := math.NaN()
	if product.CostPrice != nil && product.Price > 0 {
		margin = (product.Price - *product.CostPrice) / product.Price * 100
	}

	return productContext{
		weeksOfStock:   weeks,
		daysToStockout: weeks * 7,
		meanCompetitor: meanCompetitor,
		priceGapPct:    gap,
		daysToPeak:     e.catalog.DaysUntilPeak(product.Category, e.now()),
		marginPct:      margin,
	}
}

// evaluateRule isolates one rule: a panic or NaN inside the predicate means
// the rule did not fire, and evaluation of the remaining rules continues.
func (e *Evaluator) evaluateRule(rule models.AlertRule, product models.Product, fc models.ForecastResult, ctx productContext) (alert models.Alert, fired bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Rule %s panicked evaluating product %s: %v", rule.ID, product.ID, r)
			fired = false
		}
	}()

	var (
		title, message, action string
		impact                 models.AlertImpact
	)
	t := rule.Thresholds
	predicted := float64(fc.PredictedDemand)
	demandValue := predicted * product.Price

	switch rule.Type {
	case models.RuleCriticalStockout, models.RuleLowStock:
		if t.WeeksOfStockBelow == nil || math.IsNaN(ctx.weeksOfStock) || ctx.weeksOfStock >= *t.WeeksOfStockBelow {
			return alert, false
		}
		days := ctx.daysToStockout
		impact.RevenueAtRisk = round2(demandValue)
		impact.TimeToCriticalDays = &days
		title = fmt.Sprintf("%s stock runs out in %.1f days", product.Name, days)
		message = fmt.Sprintf("%s has %.1f weeks of stock left (%.1f days at the current rate of %.1f units/week). Forecast demand is %d units.",
			product.Name, ctx.weeksOfStock, days, product.WeeklySales, fc.PredictedDemand)
		action = fmt.Sprintf("Reorder now; cover at least %d units to meet forecast demand.",
			maxInt(0, fc.PredictedDemand-product.InventoryLevel))

	case models.RuleOverstockExpiration:
		if t.WeeksOfStockAbove == nil || math.IsNaN(ctx.weeksOfStock) || ctx.weeksOfStock <= *t.WeeksOfStockAbove {
			return alert, false
		}
		excessWeeks := ctx.weeksOfStock - *t.WeeksOfStockAbove
		impact.RevenueAtRisk = round2(excessWeeks * product.WeeklySales * product.Price)
		if product.ShelfLifeDays != nil {
			days := float64(*product.ShelfLifeDays)
			impact.TimeToCriticalDays = &days
		}
		title = fmt.Sprintf("%s is overstocked at %.1f weeks of cover", product.Name, ctx.weeksOfStock)
		message = fmt.Sprintf("%s holds %.1f weeks of stock against a %.0f-week ceiling; excess risks expiring before it sells.",
			product.Name, ctx.weeksOfStock, *t.WeeksOfStockAbove)
		action = "Run promotional pricing or redistribute stock before shelf life runs out."

	case models.RuleCompetitorPriceThreat:
		if t.PriceGapPercent == nil || math.IsNaN(ctx.priceGapPct) || ctx.priceGapPct <= *t.PriceGapPercent {
			return alert, false
		}
		impact.RevenueAtRisk = round2(demandValue * math.Min(ctx.priceGapPct, 50) / 100)
		title = fmt.Sprintf("%s priced %.0f%% above the market", product.Name, ctx.priceGapPct)
		message = fmt.Sprintf("%s sells at %.2f while competitors average %.2f, a %.0f%% premium that risks losing demand.",
			product.Name, product.Price, ctx.meanCompetitor, ctx.priceGapPct)
		action = fmt.Sprintf("Review pricing; a target near %.2f would restore competitiveness.", ctx.meanCompetitor*1.05)

	case models.RulePricingOpportunity:
		if t.PriceGapPercent == nil || math.IsNaN(ctx.priceGapPct) || ctx.priceGapPct >= -*t.PriceGapPercent {
			return alert, false
		}
		if t.MinConfidence != nil && fc.ConfidenceInterval.ConfidenceLevel < *t.MinConfidence {
			return alert, false
		}
		headroom := -ctx.priceGapPct
		impact.ProfitOpportunity = round2(demandValue * headroom / 200)
		title = fmt.Sprintf("%s has %.0f%% pricing headroom", product.Name, headroom)
		message = fmt.Sprintf("%s sells at %.2f while competitors average %.2f; demand supports a higher price.",
			product.Name, product.Price, ctx.meanCompetitor)
		action = fmt.Sprintf("Test a price increase toward %.2f.", ctx.meanCompetitor*0.98)

	case models.RuleSeasonalPeakApproaching:
		if t.DaysToPeakWithin == nil || ctx.daysToPeak < 0 || ctx.daysToPeak > *t.DaysToPeakWithin {
			return alert, false
		}
		if t.WeeksOfStockBelow != nil && ctx.weeksOfStock >= *t.WeeksOfStockBelow {
			return alert, false
		}
		days := float64(ctx.daysToPeak)
		impact.ProfitOpportunity = round2(demandValue * assumedMargin)
		impact.TimeToCriticalDays = &days
		title = fmt.Sprintf("%s peak season is %d days away", product.Name, ctx.daysToPeak)
		message = fmt.Sprintf("Peak demand for %s starts in %d days and current cover is %.1f weeks.",
			product.Category, ctx.daysToPeak, ctx.weeksOfStock)
		action = "Build up stock ahead of the seasonal peak."

	case models.RuleMarginErosion:
		if t.MarginBelowPercent == nil || math.IsNaN(ctx.marginPct) || ctx.marginPct >= *t.MarginBelowPercent {
			return alert, false
		}
		shortfall := *t.MarginBelowPercent - ctx.marginPct
		impact.ProfitOpportunity = round2(demandValue * shortfall / 100)
		title = fmt.Sprintf("%s margin down to %.1f%%", product.Name, ctx.marginPct)
		message = fmt.Sprintf("%s earns a %.1f%% margin against a %.0f%% floor.",
			product.Name, ctx.marginPct, *t.MarginBelowPercent)
		action = "Reprice or renegotiate cost to restore margin."

	case models.RuleCompliancePotency:
		if t.ABVAbove == nil || product.ABV == nil || *product.ABV <= *t.ABVAbove {
			return alert, false
		}
		title = fmt.Sprintf("%s exceeds %.0f%% ABV", product.Name, *t.ABVAbove)
		message = fmt.Sprintf("%s is %.1f%% ABV; verify licensing, labelling and duty banding for high-strength products.",
			product.Name, *product.ABV)
		action = "Confirm compliance paperwork for high-potency stock."

	default:
		log.Printf("Skipping rule %s: unknown rule type %q", rule.ID, rule.Type)
		return alert, false
	}

	alert = models.Alert{
		ID:             e.idgen.NewID(),
		RuleID:         rule.ID,
		ProductID:      product.ID,
		Type:           rule.Type,
		Severity:       rule.Severity,
		Urgency:        urgency(rule.Severity, impact),
		Title:          title,
		Message:        message,
		ActionRequired: action,
		Impact:         impact,
		Snapshot: models.AlertSnapshot{
			WeeksOfStock:    round2(ctx.weeksOfStock),
			PredictedDemand: fc.PredictedDemand,
			Confidence:      fc.ConfidenceInterval.ConfidenceLevel,
			Trend:           fc.Trend,
		},
		CreatedAt: e.now(),
	}
	return alert, true
}

// urgency combines the rule's base severity score with bonuses for short
// time-to-critical and large monetary impact, capped at 10.
func urgency(severity string, impact models.AlertImpact) int {
	score := models.SeverityScore(severity)
	if impact.TimeToCriticalDays != nil {
		switch {
		case *impact.TimeToCriticalDays <= 7:
			score += 2
		case *impact.TimeToCriticalDays <= 14:
			score++
		}
	}
	switch total := impact.Total(); {
	case total > 1000:
		score += 2
	case total > 500:
		score++
	}
	if score > 10 {
		score = 10
	}
	return score
}

// validCategoryFilter rejects filters naming categories the engine does
// not know; such rules are treated as misconfigured and skipped.
func validCategoryFilter(filter []string) bool {
	for _, c := range filter {
		if !models.IsKnownCategory(c) {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
