package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/djlord-it/checkerhub/internal/domain"
)

type TablesRequest struct {
	DB string `json:"db" binding:"required"`
}

type ColumnsRequest struct {
	DB    string `json:"db" binding:"required"`
	Table string `json:"table" binding:"required"`
}

// SendCheckerRequest is the checker form submitted by the front-end.
// Checker rule fields accept any JSON value; see opaqueText.
type SendCheckerRequest struct {
	CheckerName         string          `json:"checkerName" binding:"required"`
	DB                  string          `json:"db" binding:"required"`
	Table               string          `json:"table" binding:"required"`
	Checker             json.RawMessage `json:"checker"`
	FiltrationCondition json.RawMessage `json:"filtrationCondition"`
	Time                string          `json:"time" binding:"required"`
	Interval            string          `json:"interval"`
	Repeats             domain.Repeats  `json:"repeats"`
	Columns             json.RawMessage `json:"columns"`
	NullColumns         json.RawMessage `json:"nullColumns"`
	Actuality           json.RawMessage `json:"actuality"`
}

type PreviewRequest struct {
	Time     string         `json:"time" binding:"required"`
	Interval string         `json:"interval"`
	Repeats  domain.Repeats `json:"repeats"`
	Count    int            `json:"count"`
}

type PreviewResponse struct {
	CronExpression string   `json:"cron_expression"`
	Timezone       string   `json:"timezone"`
	NextRuns       []string `json:"next_runs"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (r SendCheckerRequest) schedule() domain.ScheduleSpec {
	return domain.ScheduleSpec{Time: r.Time, Interval: domain.Interval(r.Interval), Repeats: r.Repeats}
}

func (r PreviewRequest) schedule() domain.ScheduleSpec {
	return domain.ScheduleSpec{Time: r.Time, Interval: domain.Interval(r.Interval), Repeats: r.Repeats}
}

// checkerJob converts the opaque rule fields to the text the notebook reads.
func (r SendCheckerRequest) checkerJob() (domain.CheckerJob, error) {
	job := domain.CheckerJob{CheckerName: r.CheckerName, DB: r.DB, Table: r.Table}

	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"checker", r.Checker, &job.Checkers},
		{"filtrationCondition", r.FiltrationCondition, &job.FiltrationCondition},
		{"columns", r.Columns, &job.DuplicationColumns},
		{"nullColumns", r.NullColumns, &job.NullColumns},
		{"actuality", r.Actuality, &job.Actuality},
	}
	for _, f := range fields {
		s, err := opaqueText(f.raw)
		if err != nil {
			return domain.CheckerJob{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = s
	}
	return job, nil
}

// opaqueText renders a JSON value as a notebook parameter: a string is used
// as-is, null or absent is empty, anything else is its compact JSON text.
// The checker notebook decodes non-string parameters with json.loads, so the
// output must stay valid JSON rather than a Python literal.
func opaqueText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", err
	}
	return buf.String(), nil
}
