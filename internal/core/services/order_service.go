package services

import (
	"context"
	"encoding/json"
	"log"
	"net/url"

	"cryptex-console/internal/adapters/backend"
)

// OrderService relays order queries and cancellations to the exchange
// backend on behalf of the admin operating the console.
type OrderService struct {
	gw *backend.Client
}

// NewOrderService creates a new order service
func NewOrderService(gw *backend.Client) *OrderService {
	return &OrderService{gw: gw}
}

// List relays an order query with the given filters.
func (s *OrderService) List(ctx context.Context, bearer string, query url.Values) (json.RawMessage, *backend.Error) {
	res := s.gw.Do(ctx, backend.Request{
		Method:     "GET",
		Path:       "/api/v1/orders",
		Query:      query,
		Bearer:     bearer,
		Retries:    -1,
		Idempotent: true,
	})
	if !res.OK() {
		return nil, res.Err
	}
	return res.Body, nil
}

// Get relays a single-order lookup.
func (s *OrderService) Get(ctx context.Context, bearer, orderID string) (json.RawMessage, *backend.Error) {
	res := s.gw.Do(ctx, backend.Request{
		Method:     "GET",
		Path:       "/api/v1/orders/" + url.PathEscape(orderID),
		Bearer:     bearer,
		Retries:    -1,
		Idempotent: true,
	})
	if !res.OK() {
		return nil, res.Err
	}
	return res.Body, nil
}

// Cancel asks the backend to cancel an order. Never retried: a repeat
// of a cancel that already landed is not safe to assume harmless.
func (s *OrderService) Cancel(ctx context.Context, bearer, orderID string) (json.RawMessage, *backend.Error) {
	res := s.gw.Do(ctx, backend.Request{
		Method: "POST",
		Path:   "/api/v1/orders/" + url.PathEscape(orderID) + "/cancel",
		Bearer: bearer,
	})
	if !res.OK() {
		return nil, res.Err
	}

	log.Printf("✅ Order cancelled: %s", orderID)
	return res.Body, nil
}
