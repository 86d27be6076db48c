// Package analytics counts accepted checker submissions per table.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Recorder receives one call per accepted submission.
type Recorder interface {
	RecordSubmission(ctx context.Context, db, table string, at time.Time) error
}

// NoopRecorder is used when REDIS_ADDR is unset.
type NoopRecorder struct{}

func (NoopRecorder) RecordSubmission(context.Context, string, string, time.Time) error { return nil }

// RedisSink keeps an hourly counter per database and table.
type RedisSink struct {
	client    redis.Cmdable
	retention time.Duration
}

func NewRedisSink(client redis.Cmdable, retention time.Duration) *RedisSink {
	return &RedisSink{client: client, retention: retention}
}

func (s *RedisSink) RecordSubmission(ctx context.Context, db, table string, at time.Time) error {
	key := buildKey(db, table, at)

	pipe := s.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.retention)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}

	return nil
}

// keyEscaper keeps ':' out of name segments so no two (db, table) pairs
// share a key. Escaping '%' as well keeps the mapping reversible.
var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

func buildKey(db, table string, t time.Time) string {
	return fmt.Sprintf("checkers:db:%s:table:%s:%s", keyEscaper.Replace(db), keyEscaper.Replace(table), hourBucket(t))
}

func hourBucket(t time.Time) string {
	return t.UTC().Format("2006010215")
}
