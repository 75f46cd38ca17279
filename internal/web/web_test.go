package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"disaster-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_NegotiatesOnAccept(t *testing.T) {
	app := fiber.New(fiber.Config{Views: web.NewEngine(), ViewsLayout: "layout"})
	app.Get("/", func(c *fiber.Ctx) error {
		return web.Render(c, "admin_dashboard", fiber.Map{"name": "Root"})
	})

	tests := []struct {
		accept      string
		contentType string
		body        string
	}{
		{"", fiber.MIMETextHTMLCharsetUTF8, "Welcome, Root"},
		{"text/html,application/xhtml+xml", fiber.MIMETextHTMLCharsetUTF8, "Welcome, Root"},
		{"application/json", fiber.MIMEApplicationJSON, `{"name":"Root"}`},
	}

	for _, tc := range tests {
		t.Run(tc.accept, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.accept != "" {
				req.Header.Set("Accept", tc.accept)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			b, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.contentType, resp.Header.Get("Content-Type"))
			assert.Contains(t, string(b), tc.body)
		})
	}
}

func TestEngine_LoadsEveryView(t *testing.T) {
	engine := web.NewEngine()
	require.NoError(t, engine.Load())

	for _, name := range []string{
		"layout", "home", "login", "register", "citizen_dashboard", "admin_dashboard",
		"admin_profile", "citizens", "volunteer_dashboard", "view_volunteers",
		"report_disaster", "view_disasters", "disaster_detail", "volunteer_tasks",
		"request_help", "view_help_requests", "citizen_profile",
	} {
		assert.NotNil(t, engine.Templates.Lookup(name), name)
	}
}
