package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// --- JWT & Auth ---

type JwtClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// User represents an account in the system (admin, merchant, or analyst).
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Core Models ---

// Product categories. Each category carries its own seasonal pattern,
// default price elasticity and shelf-life sensitivity.
const (
	CategoryBeer    = "beer"
	CategoryWine    = "wine"
	CategorySpirits = "spirits"
	CategoryCider   = "cider"
	CategoryRTD     = "rtd"
)

// KnownCategories lists every category the engine understands.
var KnownCategories = []string{CategoryBeer, CategoryWine, CategorySpirits, CategoryCider, CategoryRTD}

func IsKnownCategory(category string) bool {
	for _, c := range KnownCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Product represents the current state of one SKU in a merchant's inventory.
// It is mutated only by the surrounding application between analysis runs,
// never by the forecasting or alerting engines.
type Product struct {
	ID             string    `json:"id"`
	MerchantID     string    `json:"merchant_id"`
	Name           string    `json:"name"`
	SKU            *string   `json:"sku,omitempty"`
	Category       string    `json:"category"`
	Price          float64   `json:"price"`
	CostPrice      *float64  `json:"cost_price,omitempty"`
	WeeklySales    float64   `json:"weekly_sales"`
	InventoryLevel int       `json:"inventory_level"`
	ABV            *float64  `json:"abv,omitempty"`
	ShelfLifeDays  *int      `json:"shelf_life_days,omitempty"`
	OriginCountry  *string   `json:"origin_country,omitempty"`
	IsArchived     bool      `json:"is_archived"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HistoricalPoint is a single observation in a product's sales history.
// Ordered chronologically; immutable input to the forecaster.
type HistoricalPoint struct {
	Date           time.Time `json:"date"`
	UnitsSold      float64   `json:"units_sold"`
	UnitPrice      float64   `json:"unit_price"`
	InventoryLevel float64   `json:"inventory_level"`
	IsHoliday      bool      `json:"is_holiday,omitempty"`
	IsWeekend      bool      `json:"is_weekend,omitempty"`
}

// CompetitorPrice is one competitor's listed price for a product.
type CompetitorPrice struct {
	ProductID      string    `json:"product_id"`
	CompetitorName string    `json:"competitor_name"`
	Price          float64   `json:"price"`
	Available      bool      `json:"available"`
	OnPromotion    bool      `json:"on_promotion,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// --- API Request/Response Structs ---

// CreateProductRequest defines the body for creating a new product.
type CreateProductRequest struct {
	Name           string   `json:"name"`
	SKU            *string  `json:"sku,omitempty"`
	Category       string   `json:"category"`
	Price          float64  `json:"price"`
	CostPrice      *float64 `json:"cost_price,omitempty"`
	WeeklySales    float64  `json:"weekly_sales"`
	InventoryLevel int      `json:"inventory_level"`
	ABV            *float64 `json:"abv,omitempty"`
	ShelfLifeDays  *int     `json:"shelf_life_days,omitempty"`
	OriginCountry  *string  `json:"origin_country,omitempty"`
}

// UploadSummary reports the outcome of a CSV inventory upload.
type UploadSummary struct {
	RowsProcessed int      `json:"rows_processed"`
	RowsImported  int      `json:"rows_imported"`
	RowsSkipped   int      `json:"rows_skipped"`
	Errors        []string `json:"errors,omitempty"`
}
