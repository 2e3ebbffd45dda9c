package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"app/database"
	"app/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// HandleGenerateInsight turns the merchant's latest analysis state into a
// short narrative briefing using the Gemini API. Requires GEMINI_API_KEY.
// POST /api/v1/insights/generate
func HandleGenerateInsight(c *fiber.Ctx) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "error",
			"message": "AI insights are not configured on this server",
		})
	}

	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	ctx := context.Background()
	prompt, err := buildInsightPrompt(ctx, claims.UserID)
	if err != nil {
		log.Printf("Error building insight prompt for %s: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to load analysis state"})
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		log.Printf("Error creating Gemini client: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to initialize Gemini client"})
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-1.5-pro-latest")
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("Error generating insight: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to generate insight"})
	}

	var narrative strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				narrative.WriteString(string(text))
			}
		}
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"narrative": narrative.String()},
	})
}

// buildInsightPrompt assembles the latest open alerts and stock posture
// into a compact prompt.
func buildInsightPrompt(ctx context.Context, merchantID string) (string, error) {
	db := database.GetDB()

	rows, err := db.Query(ctx, `
		SELECT type, severity, title, message
		FROM alerts
		WHERE merchant_id = $1 AND resolved = FALSE
		ORDER BY urgency DESC, created_at DESC
		LIMIT 15
	`, merchantID)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	type promptAlert struct {
		Type     string `json:"type"`
		Severity string `json:"severity"`
		Title    string `json:"title"`
		Message  string `json:"message"`
	}
	var openAlerts []promptAlert
	for rows.Next() {
		var a promptAlert
		if err := rows.Scan(&a.Type, &a.Severity, &a.Title, &a.Message); err != nil {
			return "", err
		}
		openAlerts = append(openAlerts, a)
	}

	var productCount int
	var categories []string
	if err := db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(ARRAY_AGG(DISTINCT category), '{}')
		FROM products WHERE merchant_id = $1 AND is_archived = FALSE
	`, merchantID).Scan(&productCount, &categories); err != nil {
		return "", err
	}

	alertJSON, err := json.Marshal(openAlerts)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"You are an analyst for a drinks retailer carrying %d products across these categories: %s.\n"+
			"Here are the currently open operational alerts as JSON:\n%s\n\n"+
			"Write a concise briefing (3 short paragraphs max) for the store owner: "+
			"what needs attention first, what pricing moves to consider, and anything that can wait. "+
			"Plain language, no markdown headers.",
		productCount, strings.Join(categories, ", "), alertJSON,
	), nil
}
