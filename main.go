package main

import (
	"context"
	"log"
	"os"

	"app/cache"
	"app/config"
	"app/database"
	"app/handlers"
	"app/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	// Load configuration
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	config.Load()
	if config.AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	// Initialize database
	database.InitDB(databaseURL)
	defer database.CloseDB()

	// Forecast cache: Redis when configured, otherwise in-process no-op.
	if config.AppConfig.RedisURL != "" {
		redisCache, err := cache.NewRedisForecastCache(config.AppConfig.RedisURL)
		if err == nil {
			err = redisCache.Ping(context.Background())
		}
		if err != nil {
			log.Printf("Redis unavailable, falling back to no-op cache: %v", err)
		} else {
			defer redisCache.Close()
			handlers.ForecastStore = redisCache
			log.Println("Forecast caching enabled via Redis")
		}
	}

	app := fiber.New()

	// Add CORS middleware
	app.Use(cors.New())

	// Setup routes
	routes.SetupRoutes(app)

	// Start server
	log.Fatal(app.Listen(":3000"))
}
