package services

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"sync"
	"time"

	"cryptex-console/internal/adapters/backend"
)

// MarketService relays market data from the exchange backend and keeps
// an in-memory snapshot of symbols and tickers so dashboard polling
// doesn't hammer the backend. The snapshot is refreshed on a schedule
// by the cron service and survives transient backend failures.
type MarketService struct {
	gw *backend.Client

	mu          sync.RWMutex
	symbols     json.RawMessage
	tickers     json.RawMessage
	refreshedAt time.Time
}

// NewMarketService creates a new market service
func NewMarketService(gw *backend.Client) *MarketService {
	return &MarketService{gw: gw}
}

// Symbols returns the cached symbol list, fetching it on a cold cache.
func (s *MarketService) Symbols(ctx context.Context) (json.RawMessage, *backend.Error) {
	s.mu.RLock()
	cached := s.symbols
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	if err := s.RefreshSnapshot(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbols, nil
}

// Tickers returns the cached 24h tickers, fetching on a cold cache.
// When the backend errors and a previous snapshot exists, the stale
// snapshot is served instead.
func (s *MarketService) Tickers(ctx context.Context) (json.RawMessage, *backend.Error) {
	s.mu.RLock()
	cached := s.tickers
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	if err := s.RefreshSnapshot(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickers, nil
}

// RefreshSnapshot re-fetches symbols and tickers. A failing fetch
// keeps the previous snapshot in place.
func (s *MarketService) RefreshSnapshot(ctx context.Context) *backend.Error {
	symRes := s.gw.Get(ctx, "/api/v1/market/symbols", nil)
	if !symRes.OK() {
		return symRes.Err
	}
	tickRes := s.gw.Get(ctx, "/api/v1/market/tickers", nil)
	if !tickRes.OK() {
		return tickRes.Err
	}

	s.mu.Lock()
	s.symbols = symRes.Body
	s.tickers = tickRes.Body
	s.refreshedAt = time.Now()
	s.mu.Unlock()

	return nil
}

// RefreshedAt returns when the snapshot was last updated.
func (s *MarketService) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

// OrderBook relays an order book query for one symbol.
func (s *MarketService) OrderBook(ctx context.Context, symbol, depth string) (json.RawMessage, *backend.Error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	if depth != "" {
		q.Set("depth", depth)
	}
	res := s.gw.Get(ctx, "/api/v1/market/orderbook", q)
	if !res.OK() {
		return nil, res.Err
	}
	return res.Body, nil
}

// Trades relays recent trades for one symbol.
func (s *MarketService) Trades(ctx context.Context, symbol, limit string) (json.RawMessage, *backend.Error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	if limit != "" {
		q.Set("limit", limit)
	}
	res := s.gw.Get(ctx, "/api/v1/market/trades", q)
	if !res.OK() {
		return nil, res.Err
	}
	return res.Body, nil
}

// Candles relays candlestick data for one symbol and interval.
func (s *MarketService) Candles(ctx context.Context, symbol, interval, limit string) (json.RawMessage, *backend.Error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	if limit != "" {
		q.Set("limit", limit)
	}
	res := s.gw.Get(ctx, "/api/v1/market/candles", q)
	if !res.OK() {
		return nil, res.Err
	}
	return res.Body, nil
}

// WarmUp primes the snapshot at startup; a failure only logs, the
// first request will retry.
func (s *MarketService) WarmUp(ctx context.Context) {
	if err := s.RefreshSnapshot(ctx); err != nil {
		log.Printf("⚠️ Warning: market snapshot warm-up failed: %v", err)
		return
	}
	log.Println("✅ Market snapshot warmed up")
}
