package handlers

import (
	"context"
	"log"
	"strconv"

	"app/database"
	"app/middleware"
	"app/models"
	"app/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

const productColumns = `id, merchant_id, name, sku, category, price, cost_price, weekly_sales,
	inventory_level, abv, shelf_life_days, origin_country, is_archived, created_at, updated_at`

func scanProduct(row pgx.Row) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.MerchantID, &p.Name, &p.SKU, &p.Category, &p.Price, &p.CostPrice,
		&p.WeeklySales, &p.InventoryLevel, &p.ABV, &p.ShelfLifeDays, &p.OriginCountry,
		&p.IsArchived, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// HandleListProducts returns a paginated list of the merchant's products.
// GET /api/v1/products
func HandleListProducts(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}
	merchantID := claims.UserID

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	var totalItems int
	countQuery := "SELECT COUNT(*) FROM products WHERE merchant_id = $1 AND is_archived = FALSE"
	if err := db.QueryRow(ctx, countQuery, merchantID).Scan(&totalItems); err != nil {
		log.Printf("Error counting products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to count products"})
	}

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE merchant_id = $1 AND is_archived = FALSE
		ORDER BY name
		LIMIT $2 OFFSET $3`
	rows, err := db.Query(ctx, query, merchantID, pageSize, offset)
	if err != nil {
		log.Printf("Error querying products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve products"})
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Printf("Error scanning product: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan product data"})
		}
		products = append(products, p)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   products,
		"meta":   utils.CreatePagination(totalItems, page, pageSize),
	})
}

// HandleCreateProduct adds a product to the merchant's inventory.
// POST /api/v1/products
func HandleCreateProduct(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if req.Name == "" || req.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Name and a positive price are required"})
	}
	if !models.IsKnownCategory(req.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Unknown category"})
	}

	query := `
		INSERT INTO products (merchant_id, name, sku, category, price, cost_price, weekly_sales, inventory_level, abv, shelf_life_days, origin_country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + productColumns
	product, err := scanProduct(db.QueryRow(ctx, query,
		claims.UserID, req.Name, req.SKU, req.Category, req.Price, req.CostPrice,
		req.WeeklySales, req.InventoryLevel, req.ABV, req.ShelfLifeDays, req.OriginCountry,
	))
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create product"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": product})
}

// HandleGetProductByID returns a single product.
// GET /api/v1/products/:productId
func HandleGetProductByID(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	productID := c.Params("productId")

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(db.QueryRow(ctx, query, productID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": product})
}

// HandleUpdateProduct updates a product's editable fields.
// PUT /api/v1/products/:productId
func HandleUpdateProduct(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	productID := c.Params("productId")
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if req.Category != "" && !models.IsKnownCategory(req.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Unknown category"})
	}

	query := `
		UPDATE products
		SET name = $1, sku = $2, category = $3, price = $4, cost_price = $5,
		    weekly_sales = $6, inventory_level = $7, abv = $8, shelf_life_days = $9,
		    origin_country = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING ` + productColumns
	product, err := scanProduct(db.QueryRow(ctx, query,
		req.Name, req.SKU, req.Category, req.Price, req.CostPrice,
		req.WeeklySales, req.InventoryLevel, req.ABV, req.ShelfLifeDays,
		req.OriginCountry, productID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
		}
		log.Printf("Error updating product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update product"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": product})
}

// HandleArchiveProduct soft-deletes a product; archived products are
// excluded from analysis runs.
// DELETE /api/v1/products/:productId
func HandleArchiveProduct(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	productID := c.Params("productId")

	query := "UPDATE products SET is_archived = TRUE, updated_at = NOW() WHERE id = $1"
	res, err := db.Exec(ctx, query, productID)
	if err != nil {
		log.Printf("Error archiving product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to archive product"})
	}
	if res.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetProductHistory returns the sales history used for forecasting.
// GET /api/v1/products/:productId/history
func HandleGetProductHistory(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	productID := c.Params("productId")

	query := `
		SELECT date, units_sold, unit_price, inventory_level, is_holiday, is_weekend
		FROM sales_history
		WHERE product_id = $1
		ORDER BY date
	`
	rows, err := db.Query(ctx, query, productID)
	if err != nil {
		log.Printf("Error querying sales history for %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve sales history"})
	}
	defer rows.Close()

	history := make([]models.HistoricalPoint, 0)
	for rows.Next() {
		var h models.HistoricalPoint
		if err := rows.Scan(&h.Date, &h.UnitsSold, &h.UnitPrice, &h.InventoryLevel, &h.IsHoliday, &h.IsWeekend); err != nil {
			log.Printf("Error scanning history point: %v", err)
			continue
		}
		history = append(history, h)
	}

	return c.JSON(fiber.Map{"status": "success", "data": history})
}
