package metrics

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"
)

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or propagate errors.
type Sink interface {
	// HTTP surface
	RequestCompleted(route string, statusCode int, duration time.Duration)

	// Warehouse metadata queries
	QueryCompleted(statement string, duration time.Duration, err error)

	// Jobs API
	SubmissionCompleted(statusClass string, duration time.Duration)
	CircuitRejected()

	// Schedule construction
	ScheduleRejected(reason string)
}

// Statement labels for QueryCompleted.
const (
	StatementShowDatabases = "show_databases"
	StatementShowTables    = "show_tables"
	StatementShowColumns   = "show_columns"
)

// Reason labels for ScheduleRejected.
const (
	ReasonMalformedTime = "malformed_time"
	ReasonNoSchedule    = "no_schedule"
	ReasonInvalidCron   = "invalid_cron"
)

// StatusClass constants for SubmissionCompleted and RequestCompleted.
const (
	StatusClass2xx             = "2xx"
	StatusClass4xx             = "4xx"
	StatusClass5xx             = "5xx"
	StatusClassTimeout         = "timeout"
	StatusClassConnectionError = "connection_error"
	StatusClassOtherError      = "other_error"
)

// ClassifyStatus maps a status code and error to a status class.
// A non-nil error always wins over the status code.
func ClassifyStatus(statusCode int, err error) string {
	if err != nil {
		return classifyError(err)
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return StatusClass2xx
	case statusCode >= 400 && statusCode < 500:
		return StatusClass4xx
	case statusCode >= 500:
		return StatusClass5xx
	default:
		return StatusClassOtherError
	}
}

// classifyError inspects the error chain rather than its text, so wrapped
// transport errors from net/http classify the same as bare ones.
func classifyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusClassTimeout
	}

	var (
		dnsErr *net.DNSError
		opErr  *net.OpError
	)
	switch {
	case errors.As(err, &dnsErr),
		errors.As(err, &opErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ENETUNREACH):
		return StatusClassConnectionError
	}
	return StatusClassOtherError
}
