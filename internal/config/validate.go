package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrRequired marks a required variable that is unset or empty.
	ErrRequired = errors.New("required")
	// ErrInvalid marks a variable whose value cannot be used.
	ErrInvalid = errors.New("invalid")
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
	Err     error // ErrRequired or ErrInvalid
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i := range e {
		errs[i] = e[i]
	}
	return errs
}

// Fields lists the offending variable names in order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i := range e {
		fields[i] = e[i].Field
	}
	return fields
}

// Validate checks the configuration for errors.
// Returns nil if valid, or ValidationErrors if invalid.
func Validate(cfg Config) error {
	var errs ValidationErrors

	required := []struct {
		field string
		value string
	}{
		{"SERVER_HOST", cfg.ServerHost},
		{"HTTP_PATH", cfg.HTTPPath},
		{"TOKEN", cfg.Token},
		{"NOTEBOOK_PATH", cfg.NotebookPath},
		{"CLUSTER_ID", cfg.ClusterID},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, ValidationError{Field: r.field, Message: "required", Err: ErrRequired})
		}
	}

	durations := []struct {
		field     string
		value     string
		allowZero bool
	}{
		{"JOBS_API_TIMEOUT", cfg.JobsAPITimeoutStr, false},
		{"QUERY_TIMEOUT", cfg.QueryTimeoutStr, true},
		{"HTTP_SHUTDOWN_TIMEOUT", cfg.HTTPShutdownTimeoutStr, false},
		{"ANALYTICS_RETENTION", cfg.AnalyticsRetentionStr, false},
		{"CIRCUIT_BREAKER_COOLDOWN", cfg.CircuitBreakerCooldownStr, false},
	}
	for _, d := range durations {
		if err := validateDuration(d.value, d.allowZero); err != nil {
			errs = append(errs, ValidationError{Field: d.field, Message: err.Error(), Err: ErrInvalid})
		}
	}

	if _, err := time.LoadLocation(cfg.JobTimezone); err != nil || cfg.JobTimezone == "" {
		errs = append(errs, ValidationError{
			Field:   "JOB_TIMEZONE",
			Message: fmt.Sprintf("unknown timezone %q", cfg.JobTimezone),
			Err:     ErrInvalid,
		})
	}

	if len(cfg.CORSOrigins) == 0 {
		errs = append(errs, ValidationError{Field: "CORS_ALLOWED_ORIGINS", Message: "at least one origin is required", Err: ErrInvalid})
	}
	for _, origin := range cfg.CORSOrigins {
		if !isHTTPURL(origin) {
			errs = append(errs, ValidationError{
				Field:   "CORS_ALLOWED_ORIGINS",
				Message: fmt.Sprintf("origin %q must be an http(s) URL", origin),
				Err:     ErrInvalid,
			})
		}
	}

	if cfg.JobsAPIEndpoint != "" && !isHTTPURL(cfg.JobsAPIEndpoint) {
		errs = append(errs, ValidationError{
			Field:   "JOBS_API_URL",
			Message: fmt.Sprintf("%q must be an http(s) URL", cfg.JobsAPIEndpoint),
			Err:     ErrInvalid,
		})
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, ValidationError{Field: "LOG_LEVEL", Message: err.Error(), Err: ErrInvalid})
	}

	// LOG_FORMAT must be "text" or "json"
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, ValidationError{
			Field:   "LOG_FORMAT",
			Message: fmt.Sprintf("must be 'text' or 'json', got %q", cfg.LogFormat),
			Err:     ErrInvalid,
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateDuration(s string, allowZero bool) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration: %v", err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return errors.New("must be positive")
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
