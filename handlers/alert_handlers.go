package handlers

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"app/database"
	"app/middleware"
	"app/models"
	"app/utils"

	"github.com/gofiber/fiber/v2"
)

// HandleListAlerts returns the merchant's alerts, newest severity-first,
// paginated. Filters: ?severity=high ?resolved=false ?product_id=...
// GET /api/v1/alerts
func HandleListAlerts(c *fiber.Ctx) error {
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

	where := "WHERE merchant_id = $1"
	args := []interface{}{merchantID}
	if severity := c.Query("severity"); severity != "" {
		if models.SeverityScore(severity) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Unknown severity"})
		}
		args = append(args, severity)
		where += " AND severity = $" + strconv.Itoa(len(args))
	}
	if resolved := c.Query("resolved"); resolved != "" {
		wantResolved, err := strconv.ParseBool(resolved)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "resolved must be true or false"})
		}
		args = append(args, wantResolved)
		where += " AND resolved = $" + strconv.Itoa(len(args))
	}
	if productID := c.Query("product_id"); productID != "" {
		args = append(args, productID)
		where += " AND product_id = $" + strconv.Itoa(len(args))
	}

	var totalItems int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM alerts "+where, args...).Scan(&totalItems); err != nil {
		log.Printf("Error counting alerts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to count alerts"})
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := `
		SELECT id, rule_id, product_id, type, severity, urgency, title, message,
		       action_required, impact, snapshot, created_at, acknowledged, resolved
		FROM alerts ` + where + `
		ORDER BY CASE severity
				WHEN 'critical' THEN 4
				WHEN 'high' THEN 3
				WHEN 'medium' THEN 2
				ELSE 1
			END DESC,
			urgency DESC, created_at DESC
		LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying alerts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve alerts"})
	}
	defer rows.Close()

	alertList := make([]models.Alert, 0)
	for rows.Next() {
		var a models.Alert
		var impact, snapshot []byte
		if err := rows.Scan(&a.ID, &a.RuleID, &a.ProductID, &a.Type, &a.Severity, &a.Urgency,
			&a.Title, &a.Message, &a.ActionRequired, &impact, &snapshot, &a.CreatedAt,
			&a.Acknowledged, &a.Resolved); err != nil {
			log.Printf("Error scanning alert: %v", err)
			continue
		}
		if len(impact) > 0 {
			_ = json.Unmarshal(impact, &a.Impact)
		}
		if len(snapshot) > 0 {
			_ = json.Unmarshal(snapshot, &a.Snapshot)
		}
		alertList = append(alertList, a)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   alertList,
		"meta":   utils.CreatePagination(totalItems, page, pageSize),
	})
}

// HandleAcknowledgeAlert marks an alert as seen.
// PUT /api/v1/alerts/:alertId/acknowledge
func HandleAcknowledgeAlert(c *fiber.Ctx) error {
	return setAlertFlag(c, "acknowledged")
}

// HandleResolveAlert marks an alert as dealt with. Resolving implies
// acknowledging.
// PUT /api/v1/alerts/:alertId/resolve
func HandleResolveAlert(c *fiber.Ctx) error {
	return setAlertFlag(c, "resolved")
}

func setAlertFlag(c *fiber.Ctx, flag string) error {
	db := database.GetDB()
	ctx := context.Background()

	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}
	alertID := c.Params("alertId")

	query := "UPDATE alerts SET acknowledged = TRUE"
	if flag == "resolved" {
		query += ", resolved = TRUE"
	}
	query += " WHERE id = $1 AND merchant_id = $2"
	res, err := db.Exec(ctx, query, alertID, claims.UserID)
	if err != nil {
		log.Printf("Error updating alert %s: %v", alertID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update alert"})
	}
	if res.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Alert not found"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"id": alertID, flag: true}})
}
