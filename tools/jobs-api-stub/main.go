// jobs-api-stub stands in for the workspace Jobs create endpoint during local
// runs. Point checkerhub at it with JOBS_API_URL=http://localhost:8090/api/2.1/jobs/create.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const createPath = "/api/2.1/jobs/create"

type request struct {
	Timestamp string          `json:"timestamp"`
	JobID     int64           `json:"job_id,omitempty"`
	Status    int             `json:"status"`
	Body      json.RawMessage `json:"body"`
}

type stats struct {
	Count        int64     `json:"count"`
	LastRequests []request `json:"last_requests"`
	Since        string    `json:"since"`
}

type createBody struct {
	Name     string `json:"name"`
	Schedule struct {
		QuartzCronExpression string `json:"quartz_cron_expression"`
		TimezoneID           string `json:"timezone_id"`
	} `json:"schedule"`
}

type stub struct {
	mu           sync.Mutex
	nextJobID    int64
	count        int64
	lastRequests []request
	since        time.Time
	maxStored    int
}

func newStub() *stub {
	return &stub{nextJobID: 1000, since: time.Now().UTC(), maxStored: 50}
}

func (s *stub) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(createPath, s.create)
	mux.HandleFunc("/stats", s.stats)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/reset", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		s.count = 0
		s.lastRequests = nil
		s.since = time.Now().UTC()
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "reset")
	})
	return mux
}

func main() {
	addr := ":8090"
	if v := os.Getenv("ADDR"); v != "" {
		addr = v
	}

	log.Printf("jobs-api-stub listening on %s (POST %s)", addr, createPath)
	log.Fatal(http.ListenAndServe(addr, newStub().routes()))
}

func (s *stub) create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, http.StatusMethodNotAllowed, "BAD_REQUEST", "only POST is supported")
		return
	}
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		apiError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token")
		return
	}

	raw, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	var body createBody
	if err := json.Unmarshal(raw, &body); err != nil {
		s.record(raw, http.StatusBadRequest, 0)
		apiError(w, http.StatusBadRequest, "MALFORMED_REQUEST", err.Error())
		return
	}
	if body.Schedule.QuartzCronExpression == "" {
		s.record(raw, http.StatusBadRequest, 0)
		apiError(w, http.StatusBadRequest, "INVALID_PARAMETER_VALUE", "schedule.quartz_cron_expression is required")
		return
	}

	s.mu.Lock()
	s.nextJobID++
	id := s.nextJobID
	s.mu.Unlock()
	s.record(raw, http.StatusOK, id)

	log.Printf("job %d created: %q at %q (%s)", id, body.Name, body.Schedule.QuartzCronExpression, body.Schedule.TimezoneID)
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"job_id":%d}`, id)
}

func (s *stub) record(raw []byte, status int, jobID int64) {
	req := request{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		JobID:     jobID,
		Status:    status,
		Body:      json.RawMessage(raw),
	}
	if !json.Valid(raw) {
		req.Body, _ = json.Marshal(string(raw))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.lastRequests = append(s.lastRequests, req)
	if len(s.lastRequests) > s.maxStored {
		s.lastRequests = s.lastRequests[len(s.lastRequests)-s.maxStored:]
	}
}

func (s *stub) stats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	st := stats{
		Count:        s.count,
		LastRequests: s.lastRequests,
		Since:        s.since.Format(time.RFC3339),
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

func apiError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error_code": code, "message": msg})
}
