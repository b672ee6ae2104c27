package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/cyclecast/internal/api"
	"github.com/terraincognita07/cyclecast/internal/config"
	"github.com/terraincognita07/cyclecast/internal/db"
	"go.uber.org/zap"
)

func TestCORSMiddlewareConfig(t *testing.T) {
	restricted := corsMiddlewareConfig(" https://app.example.com , ,http://localhost:3000")
	assert.Equal(t, "https://app.example.com,http://localhost:3000", restricted.AllowOrigins)
	assert.True(t, restricted.AllowCredentials)
	assert.Contains(t, restricted.AllowHeaders, "Authorization")

	open := corsMiddlewareConfig("")
	assert.Equal(t, "*", open.AllowOrigins)
	assert.False(t, open.AllowCredentials)

	wildcard := corsMiddlewareConfig("*")
	assert.False(t, wildcard.AllowCredentials)
}

func TestPredictorConfigCarriesPredictionSettings(t *testing.T) {
	predictor := predictorConfig(config.PredictionConfig{LutealPhaseDays: 12, DefaultHorizon: 4, MaxHorizon: 8})
	assert.Equal(t, 12, predictor.LutealPhaseDays)
	assert.Equal(t, 4, predictor.DefaultHorizon)
	assert.Equal(t, 8, predictor.MaxHorizon)
	assert.Equal(t, 5, predictor.FertileDaysBeforeOvulation)
}

func newMainTestApp(t *testing.T) *fiber.App {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cyclecast-main.db"), nil)
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	cfg := &config.Config{}
	cfg.Server.CORSAllowedOrigins = "http://localhost:3000"
	cfg.Server.ShutdownTimeout = time.Second

	handler, err := api.NewHandler(database, api.HandlerConfig{SecretKey: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	return newApp(cfg, handler, zap.NewNop())
}

func TestNewAppWiresMiddleware(t *testing.T) {
	app := newMainTestApp(t)

	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	request.Header.Set("Origin", "http://localhost:3000")
	response, err := app.Test(request, -1)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.NotEmpty(t, response.Header.Get(fiber.HeaderXRequestID))
	assert.Equal(t, "http://localhost:3000", response.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestNewAppRecoversFromPanics(t *testing.T) {
	app := newMainTestApp(t)
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, response.StatusCode)
}

func TestRunResetPasswordRequiresEmail(t *testing.T) {
	assert.Error(t, runResetPassword(nil))
	assert.Error(t, runResetPassword([]string{"a@example.com", "b@example.com"}))
}
