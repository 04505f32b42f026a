package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the service reads from the environment.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string
	// PostgresDSN selects the Postgres store when non-empty; the service
	// falls back to in-memory stores otherwise.
	PostgresDSN string
	// EthRPCURL is the Ethereum JSON-RPC endpoint (e.g. an Infura URL).
	EthRPCURL string
	// ChainTimeout bounds every ledger client call.
	ChainTimeout time.Duration
	// RateLimitPerSecond / RateLimitBurst shape the per-IP token bucket.
	RateLimitPerSecond int
	RateLimitBurst     int
}

// Load reads configuration from the environment, consulting an optional
// .env file first. Missing values fall back to development defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:         getString("GIVECHAIN_LISTEN_ADDR", ":8080"),
		PostgresDSN:        os.Getenv("GIVECHAIN_PG_DSN"),
		EthRPCURL:          os.Getenv("GIVECHAIN_ETH_RPC_URL"),
		ChainTimeout:       getDuration("GIVECHAIN_CHAIN_TIMEOUT", 30*time.Second),
		RateLimitPerSecond: getInt("GIVECHAIN_RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getInt("GIVECHAIN_RATE_LIMIT_BURST", 40),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
