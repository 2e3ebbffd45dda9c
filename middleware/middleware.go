package middleware

import (
	"errors"
	"strings"

	"app/config"
	"app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Authenticate is a middleware that verifies a JWT token and extracts user information.
func Authenticate(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Missing authorization header"})
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader { // No "Bearer " prefix
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Invalid token format"})
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Invalid or expired token"})
	}

	claims, ok := token.Claims.(*models.JwtClaims)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to parse token claims"})
	}

	c.Locals("userID", claims.UserID)
	c.Locals("userRole", claims.Role)
	c.Locals("claims", claims)

	return c.Next()
}

// CheckRole is a middleware that verifies the user has one of the specified roles.
func CheckRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals("userRole").(string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"status": "error", "message": "Role not found in token"})
		}

		for _, role := range roles {
			if userRole == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"status": "error", "message": "Insufficient permissions"})
	}
}

// ExtractClaims returns the JWT claims stored by Authenticate.
func ExtractClaims(c *fiber.Ctx) (*models.JwtClaims, error) {
	claims, ok := c.Locals("claims").(*models.JwtClaims)
	if !ok || claims == nil {
		return nil, errors.New("no claims in request context")
	}
	return claims, nil
}
