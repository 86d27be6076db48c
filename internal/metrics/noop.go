package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) RequestCompleted(route string, statusCode int, duration time.Duration) {}
func (n *NoopSink) QueryCompleted(statement string, duration time.Duration, err error)    {}
func (n *NoopSink) SubmissionCompleted(statusClass string, duration time.Duration)        {}
func (n *NoopSink) CircuitRejected()                                                      {}
func (n *NoopSink) ScheduleRejected(reason string)                                        {}
