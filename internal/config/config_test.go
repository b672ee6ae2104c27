package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", validSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "http://localhost:3000", cfg.Server.CORSAllowedOrigins)
	assert.False(t, cfg.Server.CookieSecure)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 14, cfg.Prediction.LutealPhaseDays)
	assert.Equal(t, 3, cfg.Prediction.DefaultHorizon)
	assert.Equal(t, 12, cfg.Prediction.MaxHorizon)
	assert.False(t, cfg.IsProduction())
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", validSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "Production")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("DB_PATH", "/tmp/cycles.db")
	t.Setenv("AUTH_TOKEN_TTL", "1h")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("LUTEAL_PHASE_DAYS", "12")
	t.Setenv("PREDICTION_HORIZON", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Server.CookieSecure)
	assert.Equal(t, "/tmp/cycles.db", cfg.Database.Path)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 12, cfg.Prediction.LutealPhaseDays)
	assert.Equal(t, 6, cfg.Prediction.DefaultHorizon)
}

func TestLoadRejectsInsecureSecretKeys(t *testing.T) {
	for _, secret := range []string{"", "change_me_in_production", "replace_with_at_least_32_random_characters", "too-short-secret"} {
		t.Setenv("SECRET_KEY", secret)
		_, err := Load()
		assert.Error(t, err, "secret %q should be rejected", secret)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := map[string]string{
		"PORT":               "70000",
		"LOG_FORMAT":         "xml",
		"PREDICTION_HORIZON": "20",
		"LUTEAL_PHASE_DAYS":  "0",
	}
	for key, value := range testCases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("SECRET_KEY", validSecret)
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Timezone: "Mars/Olympus"}}
	location, err := cfg.Location()
	assert.Error(t, err)
	assert.Equal(t, time.UTC, location)

	cfg.Server.Timezone = ""
	location, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, location)
}

func TestLoadForOperatorSkipsSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DB_PATH", "/var/lib/cyclecast/operator.db")

	cfg, err := LoadForOperator()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/cyclecast/operator.db", cfg.Database.Path)

	_, err = Load()
	assert.Error(t, err)
}
