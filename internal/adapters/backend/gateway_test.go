package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type staticTokens struct{ tok string }

func (s staticTokens) Token() (string, bool) { return s.tok, s.tok != "" }

func testClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{
		BaseURL:      srv.URL,
		Mode:         ModeDirect,
		Timeout:      2 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 5 * time.Millisecond,
	}
	return NewClient(cfg, opts...), srv
}

func TestSuccessEnvelope(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","body":{"hello":"world"}}`))
	})

	res := c.Get(context.Background(), "/api/v1/ping", nil)
	if !res.OK() {
		t.Fatalf("unexpected error: %+v", res.Err)
	}
	if string(res.Body) != `{"hello":"world"}` {
		t.Errorf("body = %s", res.Body)
	}
}

func TestErrorEnvelope(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","error":{"code":"LOGIN_FAILED","message":"Invalid credentials"}}`))
	})

	res := c.Post(context.Background(), "/api/v1/auth/login", map[string]string{"identifier": "x"})
	if res.OK() {
		t.Fatal("expected error result")
	}
	if res.Err.Code != "LOGIN_FAILED" {
		t.Errorf("code = %s, want LOGIN_FAILED", res.Err.Code)
	}
	if res.Err.Message != "Invalid credentials" {
		t.Errorf("message = %s", res.Err.Message)
	}
}

func TestRetriesBoundedThenSurfaced(t *testing.T) {
	var calls int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	res := c.Get(context.Background(), "/api/v1/market/tickers", nil)
	if res.OK() {
		t.Fatal("expected failure")
	}
	// 1 initial + 3 retries
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Errorf("attempts = %d, want 4", got)
	}
}

func TestRetrySucceedsMidway(t *testing.T) {
	var calls int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status":"success","body":{}}`))
	})

	res := c.Get(context.Background(), "/api/v1/market/symbols", nil)
	if !res.OK() {
		t.Fatalf("unexpected error: %+v", res.Err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestNonIdempotentNotRetried(t *testing.T) {
	var calls int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	res := c.Post(context.Background(), "/api/v1/orders/1/cancel", nil)
	if res.OK() {
		t.Fatal("expected failure")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestUnauthorizedStopsRetriesAndFiresSideEffectOnce(t *testing.T) {
	var calls, sideEffects int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","error":{"code":"UNAUTHENTICATED","message":"token expired"}}`))
	}, WithOnUnauthorized(func() { atomic.AddInt32(&sideEffects, 1) }))

	res := c.Get(context.Background(), "/api/v1/users", nil)
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Status != http.StatusUnauthorized {
		t.Errorf("status = %d", res.Status)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("attempts = %d, want 1 (401 must not retry)", got)
	}
	if got := atomic.LoadInt32(&sideEffects); got != 1 {
		t.Errorf("side effect fired %d times, want exactly 1", got)
	}
}

func TestTimeoutReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:      srv.URL,
		Mode:         ModeDirect,
		Timeout:      20 * time.Millisecond,
		MaxRetries:   0,
		RetryBackoff: time.Millisecond,
	})

	res := c.Get(context.Background(), "/slow", nil)
	if res.OK() {
		t.Fatal("expected timeout")
	}
	if res.Err.Code != CodeTimeout {
		t.Errorf("code = %s, want %s", res.Err.Code, CodeTimeout)
	}
}

func TestCancellationNotRetried(t *testing.T) {
	var calls int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Get(ctx, "/api/v1/market/tickers", nil)
	if res.OK() {
		t.Fatal("expected failure")
	}
	if got := atomic.LoadInt32(&calls); got > 1 {
		t.Errorf("attempts = %d, want at most 1 after cancellation", got)
	}
}

func TestBearerInjectionByMode(t *testing.T) {
	gotAuth := make(chan string, 1)
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotAuth <- r.Header.Get("Authorization")
		w.Write([]byte(`{"status":"success","body":{}}`))
	}

	t.Run("direct mode attaches bearer", func(t *testing.T) {
		c, _ := testClient(t, handler, WithTokenSource(staticTokens{tok: "tok-123"}))
		c.Get(context.Background(), "/x", nil)
		if auth := <-gotAuth; auth != "Bearer tok-123" {
			t.Errorf("Authorization = %q", auth)
		}
	})

	t.Run("proxy mode attaches nothing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(handler))
		t.Cleanup(srv.Close)
		c := NewClient(Config{
			ProxyPath: srv.URL,
			Mode:      ModeProxy,
			Timeout:   time.Second,
		}, WithTokenSource(staticTokens{tok: "tok-123"}))

		c.Get(context.Background(), "/x", nil)
		if auth := <-gotAuth; auth != "" {
			t.Errorf("Authorization = %q, want empty in proxy mode", auth)
		}
	})

	t.Run("per-call bearer wins", func(t *testing.T) {
		c, _ := testClient(t, handler, WithTokenSource(staticTokens{tok: "tok-123"}))
		c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x", Bearer: "tok-override", Idempotent: true, Retries: -1})
		if auth := <-gotAuth; auth != "Bearer tok-override" {
			t.Errorf("Authorization = %q", auth)
		}
	})
}

func TestRequestIDInjected(t *testing.T) {
	got := make(chan string, 1)
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"status":"success","body":{}}`))
	})

	c.Get(context.Background(), "/x", nil)
	if id := <-got; id == "" {
		t.Error("X-Request-ID missing on proxied call")
	}
}
