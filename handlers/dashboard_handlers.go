package handlers

import (
	"context"
	"log"

	"app/database"
	"app/middleware"

	"github.com/gofiber/fiber/v2"
)

// HandleDashboardSummary returns the headline numbers for the merchant
// dashboard: inventory size, open alerts by severity, and stock posture.
// GET /api/v1/dashboard/summary
func HandleDashboardSummary(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}
	merchantID := claims.UserID

	var productCount int
	var inventoryValue float64
	query := `
		SELECT COUNT(*), COALESCE(SUM(price * inventory_level), 0)
		FROM products
		WHERE merchant_id = $1 AND is_archived = FALSE
	`
	if err := db.QueryRow(ctx, query, merchantID).Scan(&productCount, &inventoryValue); err != nil {
		log.Printf("Error summarising products for %s: %v", merchantID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to summarise inventory"})
	}

	openAlerts := map[string]int{}
	rows, err := db.Query(ctx, `
		SELECT severity, COUNT(*)
		FROM alerts
		WHERE merchant_id = $1 AND resolved = FALSE
		GROUP BY severity
	`, merchantID)
	if err != nil {
		log.Printf("Error summarising alerts for %s: %v", merchantID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to summarise alerts"})
	}
	defer rows.Close()
	totalOpen := 0
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			continue
		}
		openAlerts[severity] = count
		totalOpen += count
	}

	// Products within a week of stocking out at the current run rate.
	var atRiskCount int
	atRisk := `
		SELECT COUNT(*)
		FROM products
		WHERE merchant_id = $1 AND is_archived = FALSE
		  AND weekly_sales > 0 AND inventory_level::float / weekly_sales < 1
	`
	if err := db.QueryRow(ctx, atRisk, merchantID).Scan(&atRiskCount); err != nil {
		log.Printf("Error counting at-risk products for %s: %v", merchantID, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"product_count":      productCount,
			"inventory_value":    inventoryValue,
			"open_alerts":        totalOpen,
			"alerts_by_severity": openAlerts,
			"stockout_risk":      atRiskCount,
		},
	})
}
