// Package warehouse lists databases, tables and columns from a Databricks SQL
// warehouse. Every call opens its own connection and runs one statement.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/djlord-it/checkerhub/internal/metrics"
)

// tableNameColumn is the position of tableName in SHOW TABLES output
// (database, tableName, isTemporary).
const tableNameColumn = 1

// QueryError reports a failure from the warehouse connector.
type QueryError struct {
	Statement string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("warehouse: %s: %v", e.Statement, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

type Service struct {
	opener       Opener
	queryTimeout time.Duration
	metrics      metrics.Sink
	log          logrus.FieldLogger
}

func NewService(opener Opener, log logrus.FieldLogger) *Service {
	return &Service{
		opener:  opener,
		metrics: metrics.NewNoopSink(),
		log:     log,
	}
}

// WithQueryTimeout bounds each call. Zero leaves the caller's context alone.
func (s *Service) WithQueryTimeout(d time.Duration) *Service {
	s.queryTimeout = d
	return s
}

func (s *Service) WithMetrics(sink metrics.Sink) *Service {
	if sink != nil {
		s.metrics = sink
	}
	return s
}

func (s *Service) ListDatabases(ctx context.Context) ([]string, error) {
	return s.run(ctx, metrics.StatementShowDatabases, queryShowDatabases, flattenRow)
}

func (s *Service) ListTables(ctx context.Context, db string) ([]string, error) {
	q, err := queryShowTables(db)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, metrics.StatementShowTables, q, func(row []any) []string {
		if len(row) <= tableNameColumn {
			return nil
		}
		return []string{cellString(row[tableNameColumn])}
	})
}

func (s *Service) ListColumns(ctx context.Context, db, table string) ([]string, error) {
	q, err := queryShowColumns(db, table)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, metrics.StatementShowColumns, q, flattenRow)
}

func (s *Service) run(ctx context.Context, statement, query string, pick func([]any) []string) (out []string, err error) {
	start := time.Now()
	defer func() {
		s.metrics.QueryCompleted(statement, time.Since(start), err)
	}()

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	db, err := s.opener.Open(ctx)
	if err != nil {
		return nil, &QueryError{Statement: query, Err: err}
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Statement: query, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Statement: query, Err: err}
	}

	out = []string{}
	for rows.Next() {
		row := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Statement: query, Err: fmt.Errorf("scan: %w", err)}
		}
		out = append(out, pick(row)...)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Statement: query, Err: err}
	}

	s.log.Debugf("warehouse: %s returned %d values in %v", statement, len(out), time.Since(start))
	return out, nil
}

func flattenRow(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = cellString(v)
	}
	return out
}

// cellString renders a scanned cell. NULL becomes the empty string.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
