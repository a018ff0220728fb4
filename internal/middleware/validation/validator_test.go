package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{}))
	app.Post("/api/v1/emergency/check", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "reached"})
	})
	return app
}

func post(t *testing.T, app *fiber.App, body, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emergency/check", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestValidEmailPasses(t *testing.T) {
	resp := post(t, newApp(), `{"email": "pat@example.com"}`, "application/json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMalformedEmailRejected(t *testing.T) {
	resp := post(t, newApp(), `{"email": "not-an-email"}`, "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMissingEmailRejected(t *testing.T) {
	resp := post(t, newApp(), `{}`, "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWrongContentTypeRejected(t *testing.T) {
	resp := post(t, newApp(), `email=pat@example.com`, "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("pat@example.com"))
	assert.True(t, IsValidEmail(" pat@example.com "))
	assert.False(t, IsValidEmail("pat@example"))
	assert.False(t, IsValidEmail("@example.com"))
	assert.False(t, IsValidEmail(""))
}
