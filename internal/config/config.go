package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Auth modes. In bff mode the browser never sees the raw token: a
// same-origin endpoint relays it into an HttpOnly cookie. In direct mode
// the page holds the bearer token itself and sends it as a header.
const (
	AuthModeBFF    = "bff"
	AuthModeDirect = "direct"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	AuthMode string
	Backend  BackendConfig
	Cookie   CookieConfig
	Market   MarketConfig
}

// BackendConfig holds exchange backend gateway configuration
type BackendConfig struct {
	Origin       string
	ProxyPath    string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// CookieConfig holds session cookie configuration (bff mode)
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite string
	Domain   string
}

// MarketConfig holds market snapshot cache configuration
type MarketConfig struct {
	RefreshSpec string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	authMode := strings.TrimSpace(getEnv("AUTH_MODE", AuthModeBFF))
	if authMode != AuthModeBFF && authMode != AuthModeDirect {
		return nil, fmt.Errorf("invalid AUTH_MODE: '%s' (must be 'bff' or 'direct')", authMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		AuthMode: authMode,
		Backend:  loadBackendConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Market: MarketConfig{
			RefreshSpec: getEnv("MARKET_REFRESH_SPEC", "@every 1m"),
		},
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s, AUTH: %s]", appMode, authMode)
	return config, nil
}

// loadBackendConfig loads exchange backend config based on mode
func loadBackendConfig(mode string) BackendConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	timeoutSecs, _ := strconv.Atoi(getEnv("BACKEND_TIMEOUT_SECONDS", "10"))
	maxRetries, _ := strconv.Atoi(getEnv("BACKEND_MAX_RETRIES", "3"))
	backoffMs, _ := strconv.Atoi(getEnv("BACKEND_RETRY_BACKOFF_MS", "1000"))

	return BackendConfig{
		Origin:       getEnv(prefix+"BACKEND_ORIGIN", "http://localhost:8080"),
		ProxyPath:    getEnv("BACKEND_PROXY_PATH", "/api/backend"),
		Timeout:      time.Duration(timeoutSecs) * time.Second,
		MaxRetries:   maxRetries,
		RetryBackoff: time.Duration(backoffMs) * time.Millisecond,
	}
}

// loadCookieConfig loads session cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Name:     getEnv("COOKIE_NAME", "cryptex_session"),
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// IsBFF returns true when sessions ride in the server-set cookie
func (c *Config) IsBFF() bool {
	return c.AuthMode == AuthModeBFF
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origins
		return "https://console.cryptex.example.com"
	}
	return origins
}
