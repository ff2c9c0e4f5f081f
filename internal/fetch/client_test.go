package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"subtext/internal/captions"
	"subtext/internal/fetch"
	"subtext/internal/services"
	"subtext/internal/tracks"
)

func testConfig() fetch.Config {
	return fetch.Config{
		UserAgent:        "subtext-test",
		TimeoutSeconds:   5,
		MaxAttempts:      4,
		InitialBackoffMS: 10,
		MaxBackoffMS:     100,
	}
}

func testRef(url string) tracks.Ref {
	return tracks.Ref{
		VideoID:  "vid1",
		Language: "en",
		Source:   captions.SourceUser,
		Fetch:    tracks.FetchRef{URL: url, Format: "json3"},
	}
}

func TestFetchReturnsPayload(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.Header.Get("User-Agent"); got != "subtext-test" {
			t.Errorf("unexpected user agent %q", got)
		}
		_, _ = w.Write([]byte(`{"events":[]}`))
	}))
	defer server.Close()

	client := fetch.New(testConfig())
	payload, err := client.Fetch(context.Background(), testRef(server.URL))
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(payload) != `{"events":[]}` {
		t.Fatalf("unexpected payload: %q", payload)
	}
	if calls != 1 {
		t.Fatalf("expected 1 request, got %d", calls)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	var slept []time.Duration
	client := fetch.New(testConfig(), fetch.WithSleeper(func(d time.Duration) { slept = append(slept, d) }))
	payload, err := client.Fetch(context.Background(), testRef(server.URL))
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(payload) != "payload" {
		t.Fatalf("unexpected payload: %q", payload)
	}
	if calls != 3 {
		t.Fatalf("expected 3 requests, got %d", calls)
	}
	if len(slept) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %v", slept)
	}
	if slept[1] <= slept[0] {
		t.Fatalf("expected growing backoff, got %v", slept)
	}
}

func TestFetchHonorsRetryAfter(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxBackoffMS = 5000
	var slept []time.Duration
	client := fetch.New(cfg, fetch.WithSleeper(func(d time.Duration) { slept = append(slept, d) }))
	if _, err := client.Fetch(context.Background(), testRef(server.URL)); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("expected single 2s sleep from Retry-After, got %v", slept)
	}
}

func TestFetchStopsOnClientError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad request"))
	}))
	defer server.Close()

	client := fetch.New(testConfig())
	_, err := client.Fetch(context.Background(), testRef(server.URL))
	if err == nil {
		t.Fatal("expected error for client failure")
	}
	if !errors.Is(err, services.ErrFetchFailure) {
		t.Fatalf("expected fetch failure marker, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no retries on 400, got %d requests", calls)
	}
}

func TestFetchMapsMissingTrack(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := fetch.New(testConfig())
	_, err := client.Fetch(context.Background(), testRef(server.URL))
	if !errors.Is(err, services.ErrTrackUnavailable) {
		t.Fatalf("expected track unavailable marker, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected single attempt for 404, got %d", calls)
	}
	if !strings.Contains(err.Error(), "en/user") {
		t.Fatalf("expected track label in error, got %v", err)
	}
}

func TestFetchExhaustsAttempts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxAttempts = 2
	client := fetch.New(cfg, fetch.WithSleeper(func(time.Duration) {}))
	_, err := client.Fetch(context.Background(), testRef(server.URL))
	if !errors.Is(err, services.ErrFetchFailure) {
		t.Fatalf("expected fetch failure marker, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Fatalf("expected attempt count in error, got %v", err)
	}
}

func TestFetchRequiresURL(t *testing.T) {
	client := fetch.New(testConfig())
	_, err := client.Fetch(context.Background(), tracks.Ref{VideoID: "vid1", Language: "en", Source: captions.SourceUser})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}

func TestFetchPacesRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MinIntervalMS = 250
	var slept []time.Duration
	client := fetch.New(cfg, fetch.WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	ctx := context.Background()
	ref := testRef(server.URL)
	if _, err := client.Fetch(ctx, ref); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if _, err := client.Fetch(ctx, ref); err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if len(slept) != 1 {
		t.Fatalf("expected one spacing sleep, got %v", slept)
	}
	if slept[0] <= 0 || slept[0] > 250*time.Millisecond {
		t.Fatalf("unexpected spacing delay %v", slept[0])
	}
}

func TestFetchRetriesConnectionFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	cfg := testConfig()
	cfg.MaxAttempts = 2
	var slept []time.Duration
	client := fetch.New(cfg, fetch.WithSleeper(func(d time.Duration) { slept = append(slept, d) }))
	_, err := client.Fetch(context.Background(), testRef(url))
	if !errors.Is(err, services.ErrFetchFailure) {
		t.Fatalf("expected fetch failure marker, got %v", err)
	}
	if len(slept) != 1 {
		t.Fatalf("expected one retry sleep, got %v", slept)
	}
}
