package config

import "time"

type ServiceConfig struct {
	Name        string         `yaml:"name"`
	Environment string         `yaml:"environment"`
	Version     string         `yaml:"version"`
	ClientURL   string         `yaml:"client_url"`
	Paystack    PaystackConfig `yaml:"paystack"`
	Admin       AdminConfig    `yaml:"admin"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Reconcile   ReconcileConfig `yaml:"reconcile"`
}

type PaystackConfig struct {
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"`
	// CallbackURL is where the gateway redirects the customer after checkout.
	CallbackURL string        `yaml:"callback_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

type AdminConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type RateLimitConfig struct {
	// Requests per window, keyed by client IP. Initiation is tighter than
	// verification: spamming initialize creates gateway transactions.
	InitializePerMinute int `yaml:"initialize_per_minute"`
	VerifyPerMinute     int `yaml:"verify_per_minute"`
}

type ReconcileConfig struct {
	// PendingOlderThan is the minimum age of a pending record before the
	// reconciliation sweep re-verifies it against the gateway.
	PendingOlderThan time.Duration `yaml:"pending_older_than"`
	BatchSize        int           `yaml:"batch_size"`
}
