package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		ServerHost:                "adb-123.azuredatabricks.net",
		HTTPPath:                  "/sql/1.0/warehouses/abc",
		Token:                     "dapi-secret",
		NotebookPath:              "/Shared/checker",
		ClusterID:                 "0101-123456-abcd",
		HTTPAddr:                  ":8000",
		CORSOrigins:               []string{"http://localhost:3000"},
		JobTimezone:               "Europe/London",
		JobsAPITimeoutStr:         "30s",
		QueryTimeoutStr:           "0s",
		HTTPShutdownTimeoutStr:    "10s",
		AnalyticsRetentionStr:     "720h",
		CircuitBreakerCooldownStr: "1m",
		LogLevel:                  "info",
		LogFormat:                 "text",
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(Config{
		JobTimezone:               "Europe/London",
		CORSOrigins:               []string{"http://localhost:3000"},
		JobsAPITimeoutStr:         "30s",
		QueryTimeoutStr:           "0s",
		HTTPShutdownTimeoutStr:    "10s",
		AnalyticsRetentionStr:     "720h",
		CircuitBreakerCooldownStr: "1m",
		LogLevel:                  "info",
		LogFormat:                 "text",
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"SERVER_HOST", "HTTP_PATH", "TOKEN", "NOTEBOOK_PATH", "CLUSTER_ID"}, verrs.Fields())
	assert.True(t, errors.Is(err, ErrRequired))
	assert.False(t, errors.Is(err, ErrInvalid))
	assert.True(t, strings.HasPrefix(err.Error(), "5 validation errors:"))
}

func TestValidate_SingleMissingField(t *testing.T) {
	cfg := validConfig()
	cfg.Token = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Equal(t, "TOKEN: required", err.Error())
}

func TestValidate_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr string
	}{
		{"bad duration", func(c *Config) { c.JobsAPITimeoutStr = "soon" }, "JOBS_API_TIMEOUT", "invalid duration"},
		{"zero timeout", func(c *Config) { c.JobsAPITimeoutStr = "0s" }, "JOBS_API_TIMEOUT", "must be positive"},
		{"negative query timeout", func(c *Config) { c.QueryTimeoutStr = "-1s" }, "QUERY_TIMEOUT", "must be positive"},
		{"unknown timezone", func(c *Config) { c.JobTimezone = "Mars/Olympus" }, "JOB_TIMEZONE", "unknown timezone"},
		{"empty timezone", func(c *Config) { c.JobTimezone = "" }, "JOB_TIMEZONE", "unknown timezone"},
		{"no origins", func(c *Config) { c.CORSOrigins = nil }, "CORS_ALLOWED_ORIGINS", "at least one origin"},
		{"bad origin", func(c *Config) { c.CORSOrigins = []string{"localhost:3000"} }, "CORS_ALLOWED_ORIGINS", "must be an http(s) URL"},
		{"bad jobs api url", func(c *Config) { c.JobsAPIEndpoint = "localhost:9000/create" }, "JOBS_API_URL", "must be an http(s) URL"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL", "not a valid logrus Level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT", "must be 'text' or 'json'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.Contains(t, err.Error(), tt.field)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ZeroQueryTimeoutAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.QueryTimeoutStr = "0"
	assert.NoError(t, Validate(cfg))
}
