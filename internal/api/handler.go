// Package api is the HTTP surface used by the checker front-end.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/djlord-it/checkerhub/internal/analytics"
	"github.com/djlord-it/checkerhub/internal/circuitbreaker"
	"github.com/djlord-it/checkerhub/internal/cron"
	"github.com/djlord-it/checkerhub/internal/jobs"
	"github.com/djlord-it/checkerhub/internal/metrics"
	"github.com/djlord-it/checkerhub/internal/warehouse"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

// defaultAnalyticsTimeout bounds the post-submission counter update.
const defaultAnalyticsTimeout = 500 * time.Millisecond

// Preview limits.
const (
	DefaultPreviewCount = 5
	MaxPreviewCount     = 50
)

type Warehouse interface {
	ListDatabases(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, db string) ([]string, error)
	ListColumns(ctx context.Context, db, table string) ([]string, error)
}

type JobCreator interface {
	Create(ctx context.Context, req jobs.CreateRequest) (jobs.Response, error)
}

type Handler struct {
	warehouse Warehouse
	jobs      JobCreator
	settings  jobs.Settings
	parser    *cron.Parser
	analytics analytics.Recorder
	metrics   metrics.Sink
	log       logrus.FieldLogger
	now       func() time.Time

	// analyticsTimeout caps how long a created job's response can wait on analytics.
	analyticsTimeout time.Duration
}

func NewHandler(wh Warehouse, jc JobCreator, settings jobs.Settings, log logrus.FieldLogger) *Handler {
	return &Handler{
		warehouse:        wh,
		jobs:             jc,
		settings:         settings,
		parser:           cron.NewParser(),
		analytics:        analytics.NoopRecorder{},
		analyticsTimeout: defaultAnalyticsTimeout,
		metrics:          metrics.NewNoopSink(),
		log:              log,
		now:              time.Now,
	}
}

func (h *Handler) WithAnalytics(r analytics.Recorder) *Handler {
	if r != nil {
		h.analytics = r
	}
	return h
}

func (h *Handler) WithMetrics(sink metrics.Sink) *Handler {
	if sink != nil {
		h.metrics = sink
	}
	return h
}

// WithClock replaces the time source used for previews and analytics buckets.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) listDatabases(c *gin.Context) {
	dbs, err := h.warehouse.ListDatabases(c.Request.Context())
	if err != nil {
		h.writeUpstreamError(c, "list databases", err)
		return
	}
	c.JSON(http.StatusOK, dbs)
}

func (h *Handler) listTables(c *gin.Context) {
	var req TablesRequest
	if !h.bind(c, &req) {
		return
	}

	tables, err := h.warehouse.ListTables(c.Request.Context(), req.DB)
	if err != nil {
		h.writeUpstreamError(c, "list tables", err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *Handler) listColumns(c *gin.Context) {
	var req ColumnsRequest
	if !h.bind(c, &req) {
		return
	}

	cols, err := h.warehouse.ListColumns(c.Request.Context(), req.DB, req.Table)
	if err != nil {
		h.writeUpstreamError(c, "list columns", err)
		return
	}
	c.JSON(http.StatusOK, cols)
}

func (h *Handler) sendChecker(c *gin.Context) {
	var req SendCheckerRequest
	if !h.bind(c, &req) {
		return
	}

	job, err := req.checkerJob()
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	expr, _, err := h.resolveSchedule(req.schedule(), h.settings.Timezone)
	if err != nil {
		h.rejectSchedule(c, err)
		return
	}

	ctx := c.Request.Context()
	resp, err := h.jobs.Create(ctx, jobs.BuildCreateRequest(job, expr, h.settings))
	if err != nil {
		h.writeUpstreamError(c, "create job", err)
		return
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		h.recordSubmission(ctx, job.DB, job.Table)
	}

	c.Data(resp.StatusCode, "application/json", resp.Body)
}

// recordSubmission updates analytics after a job exists. It outlives a
// cancelled request and never delays the response past analyticsTimeout.
func (h *Handler) recordSubmission(ctx context.Context, db, table string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.analyticsTimeout)
	defer cancel()

	if err := h.analytics.RecordSubmission(ctx, db, table, h.now()); err != nil {
		h.log.Warnf("api: analytics error: %v", err)
	}
}

func (h *Handler) previewSchedule(c *gin.Context) {
	var req PreviewRequest
	if !h.bind(c, &req) {
		return
	}

	count := req.Count
	switch {
	case count == 0:
		count = DefaultPreviewCount
	case count < 0 || count > MaxPreviewCount:
		writeError(c, http.StatusBadRequest, "count must be between 1 and 50")
		return
	}

	expr, sched, err := h.resolveSchedule(req.schedule(), h.settings.Timezone)
	if err != nil {
		h.rejectSchedule(c, err)
		return
	}

	runs := cron.NextN(sched, h.now(), count)
	resp := PreviewResponse{
		CronExpression: expr,
		Timezone:       h.settings.Timezone,
		NextRuns:       make([]string, len(runs)),
	}
	for i, t := range runs {
		resp.NextRuns[i] = t.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

// bind decodes a size-limited JSON body into dst and writes a 4xx on failure.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodySize)

	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.log.Debugf("api: bind error: %v", err)
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) rejectSchedule(c *gin.Context, err error) {
	var se *scheduleError
	if errors.As(err, &se) {
		h.metrics.ScheduleRejected(se.Reason)
	}
	writeError(c, http.StatusBadRequest, err.Error())
}

// writeUpstreamError maps warehouse and Jobs API faults to a status code.
func (h *Handler) writeUpstreamError(c *gin.Context, op string, err error) {
	var qe *warehouse.QueryError
	switch {
	case errors.Is(err, warehouse.ErrInvalidIdentifier):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		h.log.Warnf("api: %s error: %v", op, err)
		writeError(c, http.StatusServiceUnavailable, "jobs api temporarily unavailable")
	case errors.As(err, &qe):
		h.log.Errorf("api: %s error: %v", op, err)
		writeError(c, http.StatusBadGateway, "metadata query failed: "+qe.Err.Error())
	default:
		h.log.Errorf("api: %s error: %v", op, err)
		writeError(c, http.StatusBadGateway, "failed to "+op)
	}
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}
