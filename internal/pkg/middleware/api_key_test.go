package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedApp() *fiber.App {
	app := fiber.New()
	app.Get("/admin", AdminKeyMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAdminKeyMiddleware(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "topsecret")
	app := newGuardedApp()

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"valid api key header", "X-API-Key", "topsecret", fiber.StatusOK},
		{"valid bearer token", "Authorization", "Bearer topsecret", fiber.StatusOK},
		{"wrong key", "X-API-Key", "nope", fiber.StatusUnauthorized},
		{"wrong bearer", "Authorization", "Bearer nope", fiber.StatusUnauthorized},
		{"missing key", "", "", fiber.StatusUnauthorized},
		{"basic auth ignored", "Authorization", "Basic dXNlcjpwYXNz", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestAdminKeyMiddlewareUnconfigured(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "")
	app := newGuardedApp()

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("X-API-Key", "anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
