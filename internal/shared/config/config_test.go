package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-jwt-secret-key")
	t.Setenv("ENCRYPTION_KEY", "01234567890123456789012345678901") // 32 bytes
}

func TestLoad_Success(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-jwt-secret-key", cfg.Auth.JWTSecret)
	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, time.Minute, cfg.Pricing.CacheTTL)
	assert.Equal(t, 4, cfg.Wallet.Concurrency)
	assert.Equal(t, "eth", cfg.Wallet.DefaultChain)
	assert.Equal(t, "https://sandbox.plaid.com", cfg.Brokerage.BaseURL)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRatio)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENCRYPTION_KEY", "01234567890123456789012345678901")
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidEncryptionKeyLength(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENCRYPTION_KEY", "too-short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"DB_PORT", "not-a-number"},
		{"SCHEDULER_WORKERS", "many"},
		{"SCHEDULER_JOB_DELAY", "soon"},
		{"WALLET_REFRESH_CONCURRENCY", "0"},
		{"WALLET_PROVIDER_TIMEOUT", "forever"},
		{"PRICE_CACHE_TTL", "0s"},
		{"OTEL_TRACE_SAMPLE_RATIO", "half"},
		{"OTEL_TRACE_SAMPLE_RATIO", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setRequiredEnvVars(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_AllowedHosts(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ALLOWED_HOSTS", "example.com, api.example.com, localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"example.com", "api.example.com", "localhost:3000"}, cfg.Server.AllowedHosts)
}

func TestLoad_SchedulerConfig(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("SCHEDULER_ENABLED", "yes")
	t.Setenv("SCHEDULER_WORKERS", "10")
	t.Setenv("SCHEDULER_RUN_ON_STARTUP", "true")
	t.Setenv("SCHEDULER_TIMES", "07:30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 10, cfg.Scheduler.WorkerCount)
	assert.True(t, cfg.Scheduler.RunOnStartup)
	assert.Equal(t, []string{"07:30"}, cfg.Scheduler.ScheduleTimes)
}

func TestLoad_BrokerageEnvironment(t *testing.T) {
	tests := []struct {
		env      string
		override string
		want     string
	}{
		{env: "production", want: "https://production.plaid.com"},
		{env: "development", want: "https://development.plaid.com"},
		{env: "sandbox", want: "https://sandbox.plaid.com"},
		{env: "production", override: "http://localhost:9999", want: "http://localhost:9999"},
	}

	for _, tt := range tests {
		t.Run(tt.env+tt.override, func(t *testing.T) {
			setRequiredEnvVars(t)
			t.Setenv("PLAID_ENV", tt.env)
			t.Setenv("PLAID_BASE_URL", tt.override)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Brokerage.BaseURL)
		})
	}
}

func TestLoad_TLSRequiresCertificates(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("TLS_ENABLED", "true")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TLS_CERT_PATH", "/etc/tls/cert.pem")
	t.Setenv("TLS_KEY_PATH", "/etc/tls/key.pem")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.TLS.Enabled)
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		value    string
		defVal   bool
		expected bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"invalid", true, true},   // returns default
		{"invalid", false, false}, // returns default
		{"", true, true},          // empty returns default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			key := "TEST_BOOL_ENV"
			if tt.value == "" {
				os.Unsetenv(key)
			} else {
				t.Setenv(key, tt.value)
			}

			assert.Equal(t, tt.expected, getBoolEnv(key, tt.defVal))
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, cfg.ConnectionString())
}
