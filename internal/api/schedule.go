package api

import (
	"errors"
	"fmt"

	"github.com/djlord-it/checkerhub/internal/cron"
	"github.com/djlord-it/checkerhub/internal/domain"
	"github.com/djlord-it/checkerhub/internal/metrics"
)

// scheduleError is a schedule the Jobs API must never see. Reason is a metrics label.
type scheduleError struct {
	Reason string
	Err    error
}

func (e *scheduleError) Error() string { return e.Err.Error() }
func (e *scheduleError) Unwrap() error { return e.Err }

var errNoSchedule = errors.New("no schedule for this interval and weekday selection")

// resolveSchedule builds the Quartz expression for spec and checks that it
// parses in timezone.
func (h *Handler) resolveSchedule(spec domain.ScheduleSpec, timezone string) (string, cron.Schedule, error) {
	result, err := cron.Build(spec)
	if err != nil {
		return "", nil, &scheduleError{Reason: metrics.ReasonMalformedTime, Err: err}
	}

	expr, ok := result.Expression()
	if !ok {
		return "", nil, &scheduleError{Reason: metrics.ReasonNoSchedule, Err: errNoSchedule}
	}

	sched, err := h.parser.Parse(expr, timezone)
	if err != nil {
		return "", nil, &scheduleError{
			Reason: metrics.ReasonInvalidCron,
			Err:    fmt.Errorf("invalid cron expression %q: %w", expr, err),
		}
	}
	return expr, sched, nil
}
