// Package config loads the service configuration from environment
// variables. Provider endpoints are optional: a provider with no base
// URL configured runs its adapter in simulation mode.
package config

import "os"

// ProviderConfig holds the per-provider endpoint settings.
type ProviderConfig struct {
	BaseURL string
	APIKey  string
}

// Config is the full service configuration.
type Config struct {
	Port      string
	FastPay   ProviderConfig
	SecurePay ProviderConfig
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),
		FastPay: ProviderConfig{
			BaseURL: getEnv("FASTPAY_BASE_URL", ""),
			APIKey:  getEnv("FASTPAY_API_KEY", ""),
		},
		SecurePay: ProviderConfig{
			BaseURL: getEnv("SECUREPAY_BASE_URL", ""),
			APIKey:  getEnv("SECUREPAY_API_KEY", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
