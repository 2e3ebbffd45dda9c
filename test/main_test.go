package main

import (
	"net/http/httptest"
	"testing"

	"app/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// Routes behind the JWT middleware must reject anonymous requests before
// touching any backing store.
func TestProtectedRoutesRequireAuth(t *testing.T) {
	app := fiber.New()
	routes.SetupRoutes(app)

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/products/"},
		{"POST", "/api/v1/analysis/run"},
		{"GET", "/api/v1/alerts/"},
		{"GET", "/api/v1/dashboard/summary"},
		{"POST", "/api/v1/insights/generate"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		resp, err := app.Test(req, 1)
		assert.NoError(t, err, p.path)
		assert.Equal(t, 401, resp.StatusCode, p.path)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	app := fiber.New()
	routes.SetupRoutes(app)

	req := httptest.NewRequest("GET", "/api/v1/invoices", nil)
	resp, err := app.Test(req, 1)
	assert.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
