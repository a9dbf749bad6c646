package domain

import "time"

// User represents an admin console user as reported by the exchange
// backend. The console never persists users; this is the in-session view.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Roles       []string   `json:"roles"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// Order represents an exchange order as relayed from the backend.
// Only the fields the console surfaces are decoded; the raw payload
// is forwarded untouched.
type Order struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Price     string    `json:"price"`
	Quantity  string    `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Symbol represents a tradable market pair.
type Symbol struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"base_asset"`
	QuoteAsset string `json:"quote_asset"`
	Status     string `json:"status"`
}

// Ticker represents a 24h market ticker.
type Ticker struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"last_price"`
	Change24h string `json:"change_24h"`
	High24h   string `json:"high_24h"`
	Low24h    string `json:"low_24h"`
	Volume24h string `json:"volume_24h"`
}
