package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		BaseDelay:  1 * time.Millisecond,
	}
}

func TestDoTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.Do(context.Background(), srv.URL, Options{}, 20*time.Millisecond)

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if te.Budget != 20*time.Millisecond {
		t.Errorf("expected budget in error, got %v", te.Budget)
	}
}

func TestDoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient()
	resp, err := c.Do(context.Background(), srv.URL, Options{}, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.Status)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}
}

func TestRetryBound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient()
	resp, err := c.DoWithRetry(context.Background(), srv.URL, Options{}, testPolicy(3))
	if err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("expected maxRetries+1 = 4 attempts, got %d", got)
	}
	// The last transient response comes back as-is, not a synthetic error.
	if resp.Status != http.StatusServiceUnavailable {
		t.Errorf("expected final 503 returned, got %d", resp.Status)
	}
}

func TestNoRetryOnNonTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient()
	resp, err := c.DoWithRetry(context.Background(), srv.URL, Options{}, testPolicy(3))
	if err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 attempt for 401, got %d", got)
	}
	if resp.Status != http.StatusUnauthorized {
		t.Errorf("expected 401 returned unchanged, got %d", resp.Status)
	}
}

func TestRetryRecovers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient()
	resp, err := c.DoWithRetry(context.Background(), srv.URL, Options{}, testPolicy(3))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("expected eventual 200, got %d", resp.Status)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
}

func TestRetryOnConnectionRefused(t *testing.T) {
	// A server that is immediately closed leaves a refused port behind.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient()
	start := time.Now()
	_, err := c.DoWithRetry(context.Background(), url, Options{}, testPolicy(2))
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	// Backoff at 1ms base should finish promptly even with retries.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("retries took too long: %v", elapsed)
	}
}

func TestNoRetryOnUnsupportedScheme(t *testing.T) {
	c := NewClient()
	policy := RetryPolicy{
		Timeout:    time.Second,
		MaxRetries: 3,
		BaseDelay:  300 * time.Millisecond,
	}

	start := time.Now()
	_, err := c.DoWithRetry(context.Background(), "ftp://example.invalid/x", Options{}, policy)
	if err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
	// A caller mistake is permanent: it must surface immediately instead
	// of burning three rounds of backoff.
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("permanent error was retried: took %v", elapsed)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient()
	// Hand Health the connection form; it must normalize to request form.
	wsURL := "ws://" + strings.TrimPrefix(srv.URL, "http://")
	status, err := c.Health(context.Background(), wsURL, testPolicy(1))
	if err != nil {
		t.Fatal(err)
	}
	if status != "ok" {
		t.Errorf("expected ok, got %q", status)
	}
}
