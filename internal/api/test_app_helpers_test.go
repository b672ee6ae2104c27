package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/cyclecast/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testSecretKey = "test-secret-key-with-at-least-32-characters"
	testPassword  = "Cyclecast2025"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	return newTestAppWithLogger(t, zap.NewNop())
}

func newTestAppWithLogger(t *testing.T, logger *zap.Logger) (*fiber.App, *gorm.DB) {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "cyclecast-api-test.db")
	database, err := db.OpenSQLite(databasePath, nil)
	require.NoError(t, err, "open sqlite")
	sqlDB, err := database.DB()
	require.NoError(t, err, "open sql db")
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	handler, err := NewHandler(database, HandlerConfig{
		SecretKey: testSecretKey,
		Location:  time.UTC,
		Logger:    logger,
		Version:   "test",
	})
	require.NoError(t, err, "init handler")

	app := fiber.New()
	app.Use(RequestLogger(logger))
	RegisterRoutes(app, handler)
	return app, database
}

// doJSON sends body as JSON and returns the response with its fully read body.
func doJSON(t *testing.T, app *fiber.App, method string, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	require.NoError(t, err, "%s %s failed", method, path)
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	require.NoError(t, err, "read %s %s body", method, path)
	return response, payload
}

func decodeJSON[T any](t *testing.T, payload []byte) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(payload, &value), "decode %s", string(payload))
	return value
}

func readAPIError(t *testing.T, payload []byte) string {
	t.Helper()
	return decodeJSON[map[string]string](t, payload)["error"]
}

func registerTestUser(t *testing.T, app *fiber.App, email string) authResponse {
	t.Helper()

	response, payload := doJSON(t, app, http.MethodPost, "/api/auth/register", credentialsInput{
		Email:    email,
		Password: testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, response.StatusCode, string(payload))
	return decodeJSON[authResponse](t, payload)
}

func createTestPeriod(t *testing.T, app *fiber.App, token string, start string, end string) periodEntryPayload {
	t.Helper()

	response, payload := doJSON(t, app, http.MethodPost, "/api/periods", periodEntryRequest{
		StartDate: start,
		EndDate:   end,
	}, token)
	require.Equal(t, http.StatusCreated, response.StatusCode, string(payload))
	return decodeJSON[periodEntryPayload](t, payload)
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
