package cron

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/djlord-it/checkerhub/internal/domain"
)

// ErrMalformedTime is returned when a schedule time is not "HH:MM".
var ErrMalformedTime = errors.New("time must be HH:MM")

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Result is either a Quartz cron expression or the absence of a schedule.
// The zero value is NoSchedule.
type Result struct {
	expr string
}

// Scheduled wraps a cron expression.
func Scheduled(expr string) Result {
	return Result{expr: expr}
}

// NoSchedule is the result for interval/weekday combinations that map to no
// schedule. Callers must not submit a job for it.
func NoSchedule() Result {
	return Result{}
}

// Expression returns the cron expression and whether one was produced.
func (r Result) Expression() (string, bool) {
	return r.expr, r.expr != ""
}

func (r Result) String() string {
	if r.expr == "" {
		return "<no schedule>"
	}
	return r.expr
}

// Build translates a UI schedule into a Quartz cron expression.
//
// Branches are tried in order and the first match wins: hourly, daily,
// monthly, explicit weekdays, weekly (fixed to Monday), then NoSchedule.
// Hour and minute ranges are not checked here; Parser.Parse rejects
// out-of-range values.
func Build(spec domain.ScheduleSpec) (Result, error) {
	hour, minute, err := splitTime(spec.Time)
	if err != nil {
		return NoSchedule(), err
	}

	switch {
	case spec.Interval == domain.IntervalHour:
		return Scheduled(fmt.Sprintf("0 %d * * * ?", minute)), nil
	case spec.Interval == domain.IntervalDay:
		return Scheduled(fmt.Sprintf("0 %d %d * * ?", minute, hour)), nil
	case spec.Interval == domain.IntervalMonth:
		return Scheduled(fmt.Sprintf("0 %d %d 1 * ?", minute, hour)), nil
	case spec.Repeats.Any():
		days := dayList(spec.Repeats)
		if days == "" {
			return NoSchedule(), nil
		}
		return Scheduled(fmt.Sprintf("0 %d %d ? * %s", minute, hour, days)), nil
	case spec.Interval == domain.IntervalWeek:
		return Scheduled(fmt.Sprintf("0 %d %d ? * Mon", minute, hour)), nil
	default:
		return NoSchedule(), nil
	}
}

func splitTime(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: hour %q", ErrMalformedTime, parts[0])
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: minute %q", ErrMalformedTime, parts[1])
	}
	return hour, minute, nil
}

// dayList joins the selected weekdays in Sun..Sat order.
func dayList(r domain.Repeats) string {
	var names []string
	for i, on := range r.Days() {
		if on {
			names = append(names, weekdayNames[i])
		}
	}
	return strings.Join(names, ",")
}
