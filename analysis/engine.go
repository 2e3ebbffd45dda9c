package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"app/alerts"
	"app/forecast"
	"app/models"
)

// Options tune one batch run.
type Options struct {
	HorizonDays         int
	MaxAlertsPerProduct int
	MinSeverity         string
	Concurrency         int
}

// Input is everything a batch run consumes: current product state plus the
// per-product history and competitor rows supplied by the caller, and the
// rule catalog to evaluate. The engine treats all of it as read-only.
type Input struct {
	Products    []models.Product
	Histories   map[string][]models.HistoricalPoint
	Competitors map[string][]models.CompetitorPrice
	Rules       []models.AlertRule
}

// Result is the output of one batch run.
type Result struct {
	Forecasts map[string]models.ForecastResult `json:"forecasts"`
	Alerts    []models.Alert                   `json:"alerts"`
	Summary   models.BatchSummary              `json:"summary"`
}

// Engine fans one forecast-plus-evaluation unit out per product, joins,
// then ranks alerts globally and aggregates the batch summary.
type Engine struct {
	forecaster *forecast.Forecaster
	catalog    forecast.Catalog
	idgen      alerts.IDGenerator
	now        func() time.Time
}

// NewEngine wires a batch engine. Nil arguments fall back to production
// defaults.
func NewEngine(forecaster *forecast.Forecaster, catalog forecast.Catalog, idgen alerts.IDGenerator) *Engine {
	if catalog == nil {
		catalog = forecast.DefaultCatalog()
	}
	if forecaster == nil {
		forecaster = forecast.New(forecast.DefaultConfig(), catalog)
	}
	if idgen == nil {
		idgen = alerts.UUIDGenerator{}
	}
	return &Engine{forecaster: forecaster, catalog: catalog, idgen: idgen, now: time.Now}
}

// WithClock overrides the engine's clock for deterministic tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Run executes the batch. It fails only on malformed input; every
// data-quality problem inside a product degrades that product's result
// instead of aborting the run.
func (e *Engine) Run(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := validate(in.Products); err != nil {
		return nil, err
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = 30
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	evaluator := alerts.NewEvaluator(in.Rules, e.idgen, e.catalog, opts.MaxAlertsPerProduct).WithClock(e.now)

	var mu sync.Mutex
	forecasts := make(map[string]models.ForecastResult, len(in.Products))
	var allAlerts []models.Alert

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, product := range in.Products {
		product := product
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			history := in.Histories[product.ID]
			competitors := in.Competitors[product.ID]

			fc := e.forecaster.Forecast(product, history, competitors, opts.HorizonDays)
			productAlerts := evaluator.EvaluateProduct(product, fc, competitors)

			mu.Lock()
			forecasts[product.ID] = fc
			allAlerts = append(allAlerts, productAlerts...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	allAlerts = filterMinSeverity(allAlerts, opts.MinSeverity)
	alerts.Rank(allAlerts)

	return &Result{
		Forecasts: forecasts,
		Alerts:    allAlerts,
		Summary:   e.summarize(in.Products, forecasts, allAlerts),
	}, nil
}

// validate rejects malformed product records up front; this is the only
// error class that fails a batch.
func validate(products []models.Product) error {
	for i, p := range products {
		if p.ID == "" {
			return fmt.Errorf("product at index %d has an empty id", i)
		}
		if p.Price <= 0 {
			return fmt.Errorf("product %s has a non-positive price %.2f", p.ID, p.Price)
		}
		if p.InventoryLevel < 0 {
			return fmt.Errorf("product %s has a negative inventory level %d", p.ID, p.InventoryLevel)
		}
	}
	return nil
}

func filterMinSeverity(in []models.Alert, minSeverity string) []models.Alert {
	floor := models.SeverityScore(minSeverity)
	if floor == 0 {
		return in
	}
	out := in[:0]
	for _, a := range in {
		if models.SeverityScore(a.Severity) >= floor {
			out = append(out, a)
		}
	}
	return out
}

func (e *Engine) summarize(products []models.Product, forecasts map[string]models.ForecastResult, ranked []models.Alert) models.BatchSummary {
	summary := models.BatchSummary{
		TotalSKUs:         len(products),
		CategoryBreakdown: make(map[string]models.CategorySummary),
		GeneratedAt:       e.now(),
	}

	alertsByProduct := make(map[string]int, len(ranked))
	for _, a := range ranked {
		alertsByProduct[a.ProductID]++
	}

	for _, p := range products {
		fc, ok := forecasts[p.ID]
		if !ok {
			continue
		}
		revenue := float64(fc.PredictedDemand) * p.Price
		summary.TotalRevenuePotential += revenue
		if fc.ConfidenceInterval.ConfidenceLevel >= 0.8 {
			summary.HighConfidenceCount++
		}
		if models.WeeksOfStock(p.InventoryLevel, p.WeeklySales) < 1 {
			summary.CriticalStockCount++
		}

		cs := summary.CategoryBreakdown[p.Category]
		cs.ProductCount++
		cs.PredictedUnits += fc.PredictedDemand
		cs.RevenuePotential += revenue
		cs.AlertCount += alertsByProduct[p.ID]
		summary.CategoryBreakdown[p.Category] = cs
	}
	return summary
}
