package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"pinboard/internal/config"
	"pinboard/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestServer builds a Server over a fresh in-memory database and a Fiber
// app with the full route surface.
func setupTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.InitSchema(db))

	cfg := &config.Config{
		Port:        "0",
		JWTSecret:   "test_secret",
		DBPath:      ":memory:",
		StaticDir:   t.TempDir(),
		UploadDir:   t.TempDir(),
		BodyLimitMB: 16,
	}

	s := NewServerWithDeps(cfg, db)
	app := fiber.New(fiber.Config{BodyLimit: cfg.BodyLimitMB * 1024 * 1024})
	s.SetupRoutes(app)
	return s, app
}

func testConfig(secret string) *config.Config {
	return &config.Config{JWTSecret: secret}
}

// doJSON performs a JSON request against the test app, optionally with a
// bearer token, and decodes the response body into out (when non-nil).
func doJSON(t *testing.T, app *fiber.App, method, path string, body any, token string, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	if out != nil {
		defer func() { _ = resp.Body.Close() }()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// registerAndLogin creates an account and returns its bearer token.
func registerAndLogin(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()

	creds := map[string]string{"username": username, "password": password}
	resp := doJSON(t, app, http.MethodPost, "/register", creds, "", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	resp = doJSON(t, app, http.MethodPost, "/login", creds, "", &login)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, login.Token)
	return login.Token
}
