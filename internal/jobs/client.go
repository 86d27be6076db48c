package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/djlord-it/checkerhub/internal/circuitbreaker"
	"github.com/djlord-it/checkerhub/internal/metrics"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 10 << 20
)

// ErrInvalidResponse is returned when the Jobs API answers with a body that is not JSON.
var ErrInvalidResponse = errors.New("jobs api returned a non-JSON body")

// Response is the Jobs API answer, relayed to the caller unchanged.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Client posts job definitions to one workspace.
type Client struct {
	url     string
	token   string
	timeout time.Duration
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	metrics metrics.Sink
	log     logrus.FieldLogger
}

func NewClient(url, token string, log logrus.FieldLogger) *Client {
	return &Client{
		url:     url,
		token:   token,
		timeout: defaultTimeout,
		http:    &http.Client{},
		breaker: circuitbreaker.New(0, 0),
		metrics: metrics.NewNoopSink(),
		log:     log,
	}
}

func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

func (c *Client) WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker) *Client {
	if cb != nil {
		c.breaker = cb
	}
	return c
}

func (c *Client) WithMetrics(sink metrics.Sink) *Client {
	if sink != nil {
		c.metrics = sink
	}
	return c
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

// Create submits req once. Any HTTP status is returned as a Response;
// only transport failures, an open circuit and non-JSON bodies are errors.
func (c *Client) Create(ctx context.Context, req CreateRequest) (Response, error) {
	if err := c.breaker.Allow(c.url); err != nil {
		c.metrics.CircuitRejected()
		c.log.Warnf("jobs: create %q rejected: %v", req.Name, err)
		return Response{}, err
	}

	start := time.Now()
	resp, err := c.post(ctx, req)
	if err != nil || resp.StatusCode >= 500 {
		c.breaker.RecordFailure(c.url)
	} else {
		c.breaker.RecordSuccess(c.url)
	}
	if err == nil && !json.Valid(resp.Body) {
		err = fmt.Errorf("%w (status %d)", ErrInvalidResponse, resp.StatusCode)
		resp = Response{StatusCode: resp.StatusCode}
	}
	c.metrics.SubmissionCompleted(metrics.ClassifyStatus(resp.StatusCode, err), time.Since(start))

	if err != nil {
		c.log.Warnf("jobs: create %q failed after %v: %v", req.Name, time.Since(start), err)
		return resp, err
	}

	c.log.Infof("jobs: create %q returned %d in %v", req.Name, resp.StatusCode, time.Since(start))
	return resp, nil
}

func (c *Client) post(ctx context.Context, req CreateRequest) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshal: %w", err)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctxTimeout, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
