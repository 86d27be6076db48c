package config

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultCORSOrigins are the local development front-ends.
const DefaultCORSOrigins = "http://localhost:3000,http://localhost:8080"

// Config holds all configuration for checkerhub.
// Values are loaded from environment variables; see the root command help for the full list.
type Config struct {
	// Workspace connection. All required.
	ServerHost   string `json:"server_host"`
	HTTPPath     string `json:"http_path"`
	Token        string `json:"-"`
	NotebookPath string `json:"notebook_path"`
	ClusterID    string `json:"cluster_id"`

	// JobsAPIEndpoint replaces the derived Jobs create URL, e.g. for tools/jobs-api-stub.
	JobsAPIEndpoint string `json:"jobs_api_url,omitempty"`

	HTTPAddr    string   `json:"http_addr"`
	CORSOrigins []string `json:"cors_allowed_origins"`

	// JobTimezone is the IANA zone the Jobs scheduler evaluates cron expressions in.
	JobTimezone string `json:"job_timezone"`

	JobsAPITimeout    time.Duration `json:"-"`
	JobsAPITimeoutStr string        `json:"jobs_api_timeout"`

	// QueryTimeout bounds a single metadata query; 0 leaves it unbounded.
	QueryTimeout    time.Duration `json:"-"`
	QueryTimeoutStr string        `json:"query_timeout"`

	HTTPShutdownTimeout    time.Duration `json:"-"`
	HTTPShutdownTimeoutStr string        `json:"http_shutdown_timeout"`

	MetricsEnabled bool   `json:"metrics_enabled"`
	MetricsPath    string `json:"metrics_path"`
	MetricsPort    string `json:"metrics_port"`

	RedisAddr             string        `json:"redis_addr,omitempty"`
	AnalyticsRetention    time.Duration `json:"-"`
	AnalyticsRetentionStr string        `json:"analytics_retention"`

	// CircuitBreakerThreshold: 0 disables the circuit breaker.
	CircuitBreakerThreshold   int           `json:"circuit_breaker_threshold"`
	CircuitBreakerCooldown    time.Duration `json:"-"`
	CircuitBreakerCooldownStr string        `json:"circuit_breaker_cooldown"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("CORS_ALLOWED_ORIGINS", DefaultCORSOrigins)
	v.SetDefault("JOB_TIMEZONE", "Europe/London")
	v.SetDefault("JOBS_API_TIMEOUT", "30s")
	v.SetDefault("QUERY_TIMEOUT", "0s")
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("METRICS_PATH", "/metrics")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("ANALYTICS_RETENTION", "720h")
	v.SetDefault("CIRCUIT_BREAKER_THRESHOLD", "5")
	v.SetDefault("CIRCUIT_BREAKER_COOLDOWN", "1m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads configuration from environment variables with defaults.
// Malformed values are kept in their *Str fields and reported by Validate.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	cfg := Config{
		ServerHost:   strings.TrimSpace(v.GetString("SERVER_HOST")),
		HTTPPath:     strings.TrimSpace(v.GetString("HTTP_PATH")),
		Token:        v.GetString("TOKEN"),
		NotebookPath: strings.TrimSpace(v.GetString("NOTEBOOK_PATH")),
		ClusterID:    strings.TrimSpace(v.GetString("CLUSTER_ID")),

		JobsAPIEndpoint: strings.TrimSpace(v.GetString("JOBS_API_URL")),

		HTTPAddr:    v.GetString("HTTP_ADDR"),
		CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		JobTimezone: v.GetString("JOB_TIMEZONE"),

		JobsAPITimeoutStr:      v.GetString("JOBS_API_TIMEOUT"),
		QueryTimeoutStr:        v.GetString("QUERY_TIMEOUT"),
		HTTPShutdownTimeoutStr: v.GetString("HTTP_SHUTDOWN_TIMEOUT"),

		MetricsEnabled: v.GetString("METRICS_ENABLED") == "true",
		MetricsPath:    v.GetString("METRICS_PATH"),
		MetricsPort:    v.GetString("METRICS_PORT"),

		RedisAddr:             v.GetString("REDIS_ADDR"),
		AnalyticsRetentionStr: v.GetString("ANALYTICS_RETENTION"),

		CircuitBreakerCooldownStr: v.GetString("CIRCUIT_BREAKER_COOLDOWN"),

		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	cbThreshStr := v.GetString("CIRCUIT_BREAKER_THRESHOLD")
	if n, err := strconv.Atoi(cbThreshStr); err == nil && n >= 0 {
		cfg.CircuitBreakerThreshold = n
	} else {
		logrus.Warnf("config: invalid CIRCUIT_BREAKER_THRESHOLD %q, using default 5", cbThreshStr)
		cfg.CircuitBreakerThreshold = 5
	}

	// Parse durations; validation is handled separately by Validate().
	if d, err := time.ParseDuration(cfg.JobsAPITimeoutStr); err == nil {
		cfg.JobsAPITimeout = d
	}
	if d, err := time.ParseDuration(cfg.QueryTimeoutStr); err == nil {
		cfg.QueryTimeout = d
	}
	if d, err := time.ParseDuration(cfg.HTTPShutdownTimeoutStr); err == nil {
		cfg.HTTPShutdownTimeout = d
	}
	if d, err := time.ParseDuration(cfg.AnalyticsRetentionStr); err == nil {
		cfg.AnalyticsRetention = d
	}
	if d, err := time.ParseDuration(cfg.CircuitBreakerCooldownStr); err == nil {
		cfg.CircuitBreakerCooldown = d
	}

	return cfg
}

// JobsAPIURL is the Jobs create endpoint of the configured workspace.
func (c Config) JobsAPIURL() string {
	if c.JobsAPIEndpoint != "" {
		return c.JobsAPIEndpoint
	}
	return "https://" + c.ServerHost + "/api/2.1/jobs/create"
}

// WorkspaceURL is the workspace root used by the SDK client.
func (c Config) WorkspaceURL() string {
	return "https://" + c.ServerHost
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MaskedJSON returns the configuration as JSON with secrets masked.
func (c Config) MaskedJSON() ([]byte, error) {
	masked := struct {
		Config
		Token string `json:"token"`
	}{
		Config: c,
		Token:  maskSecret(c.Token),
	}
	return json.MarshalIndent(masked, "", "  ")
}

// maskSecret keeps a short prefix of personal access tokens so operators can
// tell which one is configured.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "dapi") {
		return "dapi***"
	}
	return "***"
}
