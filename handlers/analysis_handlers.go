package handlers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"app/alerts"
	"app/analysis"
	"app/cache"
	"app/config"
	"app/database"
	"app/middleware"
	"app/models"

	"github.com/gofiber/fiber/v2"
)

// ForecastStore caches per-product forecasts between runs. main swaps in a
// Redis-backed cache when REDIS_URL is set.
var ForecastStore cache.ForecastCache = cache.NoopForecastCache{}

// AnalysisEngine runs the batch. Package-level so tests can substitute a
// deterministic clock and ID generator.
var AnalysisEngine = analysis.NewEngine(nil, nil, nil)

// HandleRunAnalysis loads the merchant's inventory state, runs the batch
// forecast-and-alert engine over it, persists the results and returns the
// summary.
// POST /api/v1/analysis/run
func HandleRunAnalysis(c *fiber.Ctx) error {
	ctx := context.Background()

	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}
	merchantID := claims.UserID

	var req struct {
		HorizonDays         int    `json:"horizon_days"`
		MaxAlertsPerProduct int    `json:"max_alerts_per_product"`
		MinSeverity         string `json:"min_severity"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
		}
	}
	if req.HorizonDays <= 0 {
		req.HorizonDays = config.AppConfig.HorizonDays
	}
	if req.MaxAlertsPerProduct <= 0 {
		req.MaxAlertsPerProduct = config.AppConfig.MaxAlertsPerProduct
	}

	input, err := loadAnalysisInput(ctx, merchantID)
	if err != nil {
		log.Printf("Error loading analysis input for merchant %s: %v", merchantID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to load inventory state"})
	}
	if len(input.Products) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"status": "error", "message": "No active products to analyse"})
	}

	result, err := AnalysisEngine.Run(ctx, *input, analysis.Options{
		HorizonDays:         req.HorizonDays,
		MaxAlertsPerProduct: req.MaxAlertsPerProduct,
		MinSeverity:         req.MinSeverity,
	})
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	persistResults(ctx, merchantID, result)

	ttl := time.Duration(config.AppConfig.CacheTTLSeconds) * time.Second
	for productID, fc := range result.Forecasts {
		fc := fc
		if err := ForecastStore.Set(ctx, forecastCacheKey(merchantID, productID), &fc, ttl); err != nil {
			log.Printf("Error caching forecast for %s: %v", productID, err)
		}
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"summary":     result.Summary,
			"alert_count": len(result.Alerts),
			"alerts":      result.Alerts,
		},
	})
}

// HandleGetForecast serves the latest forecast for one product, from cache
// when fresh, otherwise from the last persisted run.
// GET /api/v1/products/:productId/forecast
func HandleGetForecast(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}
	productID := c.Params("productId")

	if fc, ok, err := ForecastStore.Get(ctx, forecastCacheKey(claims.UserID, productID)); err == nil && ok {
		return c.JSON(fiber.Map{"status": "success", "data": fc, "cached": true})
	}

	var payload []byte
	query := `
		SELECT result FROM forecasts
		WHERE product_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`
	if err := db.QueryRow(ctx, query, productID).Scan(&payload); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "No forecast available; run an analysis first"})
	}
	var fc models.ForecastResult
	if err := json.Unmarshal(payload, &fc); err != nil {
		log.Printf("Error decoding stored forecast for %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Stored forecast is unreadable"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": fc, "cached": false})
}

func forecastCacheKey(merchantID, productID string) string {
	return "forecast:" + merchantID + ":" + productID
}

// loadAnalysisInput pulls every active product plus its history and
// competitor rows into one engine input.
func loadAnalysisInput(ctx context.Context, merchantID string) (*analysis.Input, error) {
	db := database.GetDB()

	rows, err := db.Query(ctx, `SELECT `+productColumns+`
		FROM products WHERE merchant_id = $1 AND is_archived = FALSE`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	input := analysis.Input{
		Histories:   make(map[string][]models.HistoricalPoint),
		Competitors: make(map[string][]models.CompetitorPrice),
		Rules:       alerts.DefaultRules(),
	}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		input.Products = append(input.Products, p)
	}
	rows.Close()

	histRows, err := db.Query(ctx, `
		SELECT h.product_id, h.date, h.units_sold, h.unit_price, h.inventory_level, h.is_holiday, h.is_weekend
		FROM sales_history h
		JOIN products p ON p.id = h.product_id
		WHERE p.merchant_id = $1 AND p.is_archived = FALSE
		ORDER BY h.product_id, h.date
	`, merchantID)
	if err != nil {
		return nil, err
	}
	defer histRows.Close()
	for histRows.Next() {
		var productID string
		var h models.HistoricalPoint
		if err := histRows.Scan(&productID, &h.Date, &h.UnitsSold, &h.UnitPrice, &h.InventoryLevel, &h.IsHoliday, &h.IsWeekend); err != nil {
			return nil, err
		}
		input.Histories[productID] = append(input.Histories[productID], h)
	}

	compRows, err := db.Query(ctx, `
		SELECT DISTINCT ON (cp.product_id, cp.competitor_name)
			cp.product_id, cp.competitor_name, cp.price, cp.available, cp.on_promotion, cp.recorded_at
		FROM competitor_prices cp
		JOIN products p ON p.id = cp.product_id
		WHERE p.merchant_id = $1 AND p.is_archived = FALSE
		ORDER BY cp.product_id, cp.competitor_name, cp.recorded_at DESC
	`, merchantID)
	if err != nil {
		return nil, err
	}
	defer compRows.Close()
	for compRows.Next() {
		var cp models.CompetitorPrice
		if err := compRows.Scan(&cp.ProductID, &cp.CompetitorName, &cp.Price, &cp.Available, &cp.OnPromotion, &cp.RecordedAt); err != nil {
			return nil, err
		}
		input.Competitors[cp.ProductID] = append(input.Competitors[cp.ProductID], cp)
	}

	return &input, nil
}

// persistResults writes forecasts and alerts from a run. Persistence
// failures are logged, not surfaced: the in-memory result is already
// complete and returned to the caller either way.
func persistResults(ctx context.Context, merchantID string, result *analysis.Result) {
	db := database.GetDB()

	for productID, fc := range result.Forecasts {
		payload, err := json.Marshal(fc)
		if err != nil {
			log.Printf("Error encoding forecast for %s: %v", productID, err)
			continue
		}
		_, err = db.Exec(ctx, `
			INSERT INTO forecasts (product_id, merchant_id, result, generated_at)
			VALUES ($1, $2, $3, $4)
		`, productID, merchantID, payload, fc.GeneratedAt)
		if err != nil {
			log.Printf("Error persisting forecast for %s: %v", productID, err)
		}
	}

	for _, a := range result.Alerts {
		impact, _ := json.Marshal(a.Impact)
		snapshot, _ := json.Marshal(a.Snapshot)
		_, err := db.Exec(ctx, `
			INSERT INTO alerts (id, merchant_id, rule_id, product_id, type, severity, urgency, title, message, action_required, impact, snapshot, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO NOTHING
		`, a.ID, merchantID, a.RuleID, a.ProductID, a.Type, a.Severity, a.Urgency, a.Title, a.Message, a.ActionRequired, impact, snapshot, a.CreatedAt)
		if err != nil {
			log.Printf("Error persisting alert %s: %v", a.ID, err)
		}
	}
}
