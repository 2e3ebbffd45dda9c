package handlers

import (
	"context"
	"log"
	"time"

	"app/database"
	"app/models"

	"github.com/gofiber/fiber/v2"
)

// HandleListCompetitorPrices returns the recorded competitor prices for a product.
// GET /api/v1/products/:productId/competitors
func HandleListCompetitorPrices(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	productID := c.Params("productId")

	query := `
		SELECT product_id, competitor_name, price, available, on_promotion, recorded_at
		FROM competitor_prices
		WHERE product_id = $1
		ORDER BY recorded_at DESC
	`
	rows, err := db.Query(ctx, query, productID)
	if err != nil {
		log.Printf("Error querying competitor prices for %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve competitor prices"})
	}
	defer rows.Close()

	prices := make([]models.CompetitorPrice, 0)
	for rows.Next() {
		var cp models.CompetitorPrice
		if err := rows.Scan(&cp.ProductID, &cp.CompetitorName, &cp.Price, &cp.Available, &cp.OnPromotion, &cp.RecordedAt); err != nil {
			log.Printf("Error scanning competitor price: %v", err)
			continue
		}
		prices = append(prices, cp)
	}

	return c.JSON(fiber.Map{"status": "success", "data": prices})
}

// HandleRecordCompetitorPrice records one competitor observation for a product.
// POST /api/v1/products/:productId/competitors
func HandleRecordCompetitorPrice(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	productID := c.Params("productId")

	var req struct {
		CompetitorName string  `json:"competitor_name"`
		Price          float64 `json:"price"`
		Available      *bool   `json:"available"`
		OnPromotion    bool    `json:"on_promotion"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if req.CompetitorName == "" || req.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Competitor name and a positive price are required"})
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", productID).Scan(&exists); err != nil || !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
	}

	cp := models.CompetitorPrice{
		ProductID:      productID,
		CompetitorName: req.CompetitorName,
		Price:          req.Price,
		Available:      available,
		OnPromotion:    req.OnPromotion,
		RecordedAt:     time.Now().UTC(),
	}
	query := `
		INSERT INTO competitor_prices (product_id, competitor_name, price, available, on_promotion, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := db.Exec(ctx, query, cp.ProductID, cp.CompetitorName, cp.Price, cp.Available, cp.OnPromotion, cp.RecordedAt); err != nil {
		log.Printf("Error recording competitor price for %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to record competitor price"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": cp})
}
