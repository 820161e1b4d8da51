// Package config handles loading and validating configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultWallets is the demo wallet list used when WALLET_ADDRESSES is not set.
var DefaultWallets = []string{
	"0x28c6c06298d514db089934071355e5743bf21d60",
	"0x21a31ee1afc51d94c2efccaa2092ad1028285549",
	"0xdfd5293d8e347dfe59e90efd55b2956a1343963d",
}

// Config holds all configuration values for both tracker binaries.
type Config struct {
	// GeckoTerminal REST API
	GeckoTerminalURL string
	Networks         []string

	// Etherscan-compatible transfer API
	EtherscanURL    string
	EtherscanAPIKey string
	Wallets         []string

	// GoPlus token security API
	GoPlusURL         string
	GoPlusAccessToken string

	// Pushover
	PushoverURL      string
	PushoverAppToken string
	PushoverUserKey  string

	// Alert link attached to every notification
	ChartURL       string
	ChartLinkTitle string

	// Polling
	PollInterval time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables with fallback to .env file.
// Priority order: Environment variables > .env file > hardcoded defaults
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		GeckoTerminalURL: getEnv("GECKOTERMINAL_URL", "https://api.geckoterminal.com/api/v2"),
		Networks:         getEnvList("NETWORKS", []string{"eth", "ton"}),

		EtherscanURL:    getEnv("ETHERSCAN_URL", "https://api.etherscan.io"),
		EtherscanAPIKey: getEnv("ETHERSCAN_API_KEY", ""),
		Wallets:         getEnvList("WALLET_ADDRESSES", DefaultWallets),

		GoPlusURL:         getEnv("GOPLUS_URL", "https://api.gopluslabs.io/api/v1"),
		GoPlusAccessToken: getEnv("GOPLUS_ACCESS_TOKEN", ""),

		PushoverURL:      getEnv("PUSHOVER_URL", "https://api.pushover.net/1/messages.json"),
		PushoverAppToken: getEnv("PUSHOVER_APP_TOKEN", ""),
		PushoverUserKey:  getEnv("PUSHOVER_USER_KEY", ""),

		ChartURL:       getEnv("CHART_URL", "https://www.geckoterminal.com/pl/zksync/pools/"),
		ChartLinkTitle: getEnv("CHART_LINK_TITLE", "Coingecko Chart"),

		PollInterval: time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 60)) * time.Second,

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if c.PollInterval < time.Second {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be at least 1")
	}

	if len(c.Networks) == 0 {
		return fmt.Errorf("NETWORKS must list at least one network")
	}

	if len(c.Wallets) == 0 {
		return fmt.Errorf("WALLET_ADDRESSES must list at least one wallet")
	}

	return nil
}

// MaskedPushoverToken returns the app token with most characters hidden for logging.
func (c *Config) MaskedPushoverToken() string {
	return maskSecret(c.PushoverAppToken)
}

// MaskedGoPlusToken returns the access token with most characters hidden for logging.
func (c *Config) MaskedGoPlusToken() string {
	return maskSecret(c.GoPlusAccessToken)
}

// MaskedEtherscanKey returns the API key with most characters hidden for logging.
func (c *Config) MaskedEtherscanKey() string {
	return maskSecret(c.EtherscanAPIKey)
}

// maskSecret hides all but the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable or returns a default.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
