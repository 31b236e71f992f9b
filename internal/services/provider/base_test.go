package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"RecoPulse/internal/service/ratelimit"
	xhttp "RecoPulse/pkg/http"
)

func TestGetJSONSendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ratios/YPF" || r.URL.Query().Get("apikey") != "k" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"value": 42}`))
	}))
	defer srv.Close()

	b := NewHTTPServiceBase("fmp", srv.URL+"/", time.Second)
	var out struct {
		Value int `json:"value"`
	}
	if err := b.GetJSON(context.Background(), "/ratios/YPF", map[string][]string{"apikey": {"k"}}, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Value != 42 {
		t.Fatalf("unexpected value %d", out.Value)
	}
}

func TestGetJSONWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	b := NewHTTPServiceBase("bcra", srv.URL, time.Second)
	var out map[string]interface{}
	if err := b.GetJSONWithRetry(context.Background(), "/x", nil, &out, 3); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestGetJSONWithRetryStopsOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b := NewHTTPServiceBase("fmp", srv.URL, time.Second)
	err := b.GetJSONWithRetry(context.Background(), "/missing", nil, nil, 3)
	if !xhttp.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("404 must not be retried, got %d calls", calls)
	}
}

func TestGetJSONHonorsLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	b := NewHTTPServiceBase("gnews", srv.URL, time.Second, WithLimiter(ratelimit.New(), 30*time.Millisecond))
	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := b.GetJSON(context.Background(), "/search", nil, nil); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("second call was not rate limited")
	}
}
