package testutil

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestFakeClock_Now(t *testing.T) {
	fixed := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := NewFakeClock(fixed)

	got := clock.Now()
	if !got.Equal(fixed) {
		t.Errorf("Now() = %v, want %v", got, fixed)
	}
}

func TestFakeClock_Advance(t *testing.T) {
	fixed := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := NewFakeClock(fixed)

	clock.Advance(5 * time.Minute)

	want := fixed.Add(5 * time.Minute)
	got := clock.Now()
	if !got.Equal(want) {
		t.Errorf("after Advance(5m), Now() = %v, want %v", got, want)
	}
}

func TestTestContext_HasDeadline(t *testing.T) {
	ctx := TestContext(t)

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("TestContext should have a deadline")
	}

	remaining := time.Until(deadline)
	if remaining <= 0 || remaining > 6*time.Second {
		t.Errorf("deadline should be ~5s from now, got %v", remaining)
	}
}

func TestNullLogger_CapturesEntries(t *testing.T) {
	log, hook := NullLogger()
	log.Debug("api: hello")

	if len(hook.AllEntries()) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(hook.AllEntries()))
	}
	if hook.LastEntry().Message != "api: hello" {
		t.Errorf("unexpected message %q", hook.LastEntry().Message)
	}
}

func TestJobsAPI_RecordsAndReplies(t *testing.T) {
	api := NewJobsAPI(t, http.StatusOK, `{"job_id":7}`)

	req, _ := http.NewRequest(http.MethodPost, api.URL+"/api/2.1/jobs/create", strings.NewReader(`{"name":"nulls"}`))
	req.Header.Set("Authorization", "Bearer t0k")
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || string(body) != `{"job_id":7}` {
		t.Errorf("unexpected reply %d %s", resp.StatusCode, body)
	}

	reqs := api.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 recorded request, got %d", len(reqs))
	}
	if reqs[0].Path != "/api/2.1/jobs/create" || reqs[0].Authorization != "Bearer t0k" {
		t.Errorf("unexpected recorded request %+v", reqs[0])
	}
	if reqs[0].Body["name"] != "nulls" {
		t.Errorf("unexpected recorded body %v", reqs[0].Body)
	}

	api.Reply(http.StatusBadRequest, `{"error_code":"INVALID_PARAMETER_VALUE"}`)
	resp, err = http.Post(api.URL, "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 after Reply, got %d", resp.StatusCode)
	}
}
