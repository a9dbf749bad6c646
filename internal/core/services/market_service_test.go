package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptex-console/internal/adapters/backend"
)

func newMarketFixture(t *testing.T) (*MarketService, *atomic.Bool, *atomic.Int64) {
	t.Helper()

	var failing atomic.Bool
	var hits atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"status":"error","error":{"code":"UPSTREAM_DOWN","message":"exchange core unavailable"}}`))
			return
		}
		switch r.URL.Path {
		case "/api/v1/market/symbols":
			w.Write([]byte(`{"status":"success","body":[{"symbol":"BTC-USDT"},{"symbol":"ETH-USDT"}]}`))
		case "/api/v1/market/tickers":
			w.Write([]byte(`{"status":"success","body":[{"symbol":"BTC-USDT","last":"64250.10"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	gw := backend.NewClient(backend.Config{
		BaseURL:      srv.URL,
		Mode:         backend.ModeDirect,
		Timeout:      2 * time.Second,
		RetryBackoff: time.Millisecond,
	})
	return NewMarketService(gw), &failing, &hits
}

func TestMarketSymbolsColdCacheFetches(t *testing.T) {
	svc, _, hits := newMarketFixture(t)

	body, apiErr := svc.Symbols(context.Background())
	require.Nil(t, apiErr)
	assert.Contains(t, string(body), "BTC-USDT")
	assert.Equal(t, int64(2), hits.Load())
	assert.False(t, svc.RefreshedAt().IsZero())
}

func TestMarketCachedSnapshotServedWithoutBackend(t *testing.T) {
	svc, failing, hits := newMarketFixture(t)

	_, apiErr := svc.Tickers(context.Background())
	require.Nil(t, apiErr)
	warm := hits.Load()

	failing.Store(true)

	body, apiErr := svc.Tickers(context.Background())
	require.Nil(t, apiErr)
	assert.Contains(t, string(body), "64250.10")
	assert.Equal(t, warm, hits.Load(), "warm cache must not hit the backend")
}

func TestMarketRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	svc, failing, _ := newMarketFixture(t)

	require.Nil(t, svc.RefreshSnapshot(context.Background()))
	refreshedAt := svc.RefreshedAt()

	failing.Store(true)
	apiErr := svc.RefreshSnapshot(context.Background())
	require.NotNil(t, apiErr)
	assert.Equal(t, "UPSTREAM_DOWN", apiErr.Code)

	body, getErr := svc.Symbols(context.Background())
	require.Nil(t, getErr)
	assert.Contains(t, string(body), "ETH-USDT")
	assert.Equal(t, refreshedAt, svc.RefreshedAt())
}

func TestMarketColdCacheBackendFailureSurfaces(t *testing.T) {
	svc, failing, _ := newMarketFixture(t)
	failing.Store(true)

	_, apiErr := svc.Symbols(context.Background())
	require.NotNil(t, apiErr)
	assert.Equal(t, "UPSTREAM_DOWN", apiErr.Code)
}
