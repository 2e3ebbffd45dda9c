package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"app/database"
	"app/middleware"
	"app/models"
	"app/utils"

	"github.com/gofiber/fiber/v2"
)

// HandleUploadProducts ingests an inventory CSV. Rows that fail validation
// are skipped and reported; valid rows are upserted by (merchant_id, sku).
// POST /api/v1/products/upload
func HandleUploadProducts(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}
	merchantID := claims.UserID

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "A CSV file is required under the 'file' field"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Error opening upload %s: %v", fileHeader.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to read uploaded file"})
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "CSV file is empty or unreadable"})
	}
	colIndex, missing := indexColumns(header)
	if len(missing) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Missing required columns: " + strings.Join(missing, ", "),
		})
	}

	summary := models.UploadSummary{}
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			summary.RowsProcessed++
			summary.RowsSkipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: malformed CSV record", rowNum))
			continue
		}
		summary.RowsProcessed++

		req, err := parseProductRow(record, colIndex)
		if err != nil {
			summary.RowsSkipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		query := `
			INSERT INTO products (merchant_id, name, sku, category, price, cost_price, weekly_sales, inventory_level, abv, shelf_life_days, origin_country)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (merchant_id, sku) DO UPDATE SET
				name = EXCLUDED.name, category = EXCLUDED.category, price = EXCLUDED.price,
				cost_price = EXCLUDED.cost_price, weekly_sales = EXCLUDED.weekly_sales,
				inventory_level = EXCLUDED.inventory_level, abv = EXCLUDED.abv,
				shelf_life_days = EXCLUDED.shelf_life_days, origin_country = EXCLUDED.origin_country,
				updated_at = NOW()
		`
		_, err = db.Exec(ctx, query,
			merchantID, req.Name, req.SKU, req.Category, req.Price, req.CostPrice,
			req.WeeklySales, req.InventoryLevel, req.ABV, req.ShelfLifeDays, req.OriginCountry,
		)
		if err != nil {
			log.Printf("Error importing row %d for merchant %s: %v", rowNum, merchantID, err)
			summary.RowsSkipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: database error", rowNum))
			continue
		}
		summary.RowsImported++
	}

	return c.JSON(fiber.Map{"status": "success", "data": summary})
}

func indexColumns(header []string) (map[string]int, []string) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	required := []string{"name", "category", "price", "weekly_sales", "inventory_level"}
	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return index, missing
}

func cell(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseProductRow(record []string, index map[string]int) (models.CreateProductRequest, error) {
	var req models.CreateProductRequest

	req.Name = cell(record, index, "name")
	if req.Name == "" {
		return req, fmt.Errorf("name is required")
	}
	req.Category = strings.ToLower(cell(record, index, "category"))
	if !models.IsKnownCategory(req.Category) {
		return req, fmt.Errorf("unknown category %q", req.Category)
	}

	price, err := utils.ParsePositiveFloat("price", cell(record, index, "price"))
	if err != nil {
		return req, err
	}
	req.Price = price

	weekly, err := utils.ParseNonNegativeFloat("weekly_sales", cell(record, index, "weekly_sales"))
	if err != nil {
		return req, err
	}
	req.WeeklySales = weekly

	inv, err := utils.ParseNonNegativeInt("inventory_level", cell(record, index, "inventory_level"))
	if err != nil {
		return req, err
	}
	req.InventoryLevel = inv

	if v := cell(record, index, "sku"); v != "" {
		req.SKU = &v
	}
	if req.CostPrice, err = utils.ParseOptionalFloat("cost_price", cell(record, index, "cost_price")); err != nil {
		return req, err
	}
	if req.ABV, err = utils.ParseOptionalFloat("abv", cell(record, index, "abv")); err != nil {
		return req, err
	}
	if v := cell(record, index, "shelf_life_days"); v != "" {
		days, err := utils.ParseNonNegativeInt("shelf_life_days", v)
		if err != nil {
			return req, err
		}
		req.ShelfLifeDays = &days
	}
	if v := cell(record, index, "origin_country"); v != "" {
		req.OriginCountry = &v
	}
	return req, nil
}
