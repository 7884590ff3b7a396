package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dealdesk/backend/internal/config"
)

func newAuthApp(adminKey string) *fiber.App {
	cfg := &config.Config{}
	cfg.Auth.AdminAPIKey = adminKey

	app := fiber.New()
	app.Use(AdminAuth(cfg))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": UserID(c)})
	})
	return app
}

func TestAdminAuthPlainToken(t *testing.T) {
	app := newAuthApp("secret-token")

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-Admin-Token", "secret-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminAuthBearerToken(t *testing.T) {
	app := newAuthApp("secret-token")

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminAuthBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-token"), bcrypt.MinCost)
	require.NoError(t, err)
	app := newAuthApp(string(hash))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-Admin-Token", "secret-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminAuthMissingToken(t *testing.T) {
	app := newAuthApp("secret-token")

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminAuthDisabledPassesThrough(t *testing.T) {
	app := newAuthApp("")

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-User-Id", "user-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
