package main

import (
	"net/http/httptest"
	"testing"
	"time"

	"app/config"
	"app/middleware"
	"app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := models.JwtClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func makeAuthedApp() *fiber.App {
	config.AppConfig.JWTSecret = testSecret
	app := fiber.New()
	app.Use(middleware.Authenticate)
	app.Get("/test", func(c *fiber.Ctx) error {
		claims, err := middleware.ExtractClaims(c)
		if err != nil {
			return c.SendStatus(500)
		}
		return c.SendString(claims.UserID + ":" + claims.Role)
	})
	return app
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	app := makeAuthedApp()
	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	app := makeAuthedApp()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "not-a-bearer-token")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	app := makeAuthedApp()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u-1", "merchant", -time.Hour))
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAuthenticate_ValidTokenSetsClaims(t *testing.T) {
	app := makeAuthedApp()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u-1", "merchant", time.Hour))
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func makeRoleApp(role string, allowed ...string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userRole", role)
		return c.Next()
	})
	app.Use(middleware.CheckRole(allowed...))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(200).SendString("ok")
	})
	return app
}

func TestCheckRole_AllowsListedRole(t *testing.T) {
	app := makeRoleApp("merchant", "merchant", "admin")
	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCheckRole_DeniesUnlistedRole(t *testing.T) {
	app := makeRoleApp("analyst", "admin")
	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}
