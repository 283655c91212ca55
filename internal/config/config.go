package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress         string
	DatabaseURI        string
	LogLevel           string
	StripeSecretKey    string
	StripeAPIURL       string
	PayMongoSecretKey  string
	PayMongoAPIURL     string
	PaymentMethods     []string
	Currency           string
	PublicBaseURL      string
	AMQPURL            string
	AMQPExchange       string
	AdminEmail         string
	AdminPasswordHash  string
	AuthSecret         string
	ProviderTimeout    time.Duration
	ReconcileInterval  time.Duration
	ReconcileMaxAge    time.Duration
	ReconcileBatchSize int
	WorkerPoolSize     int
	ShutdownTimeout    time.Duration
}

const (
	defaultRunAddress         = ":8080"
	defaultLogLevel           = "info"
	defaultStripeAPIURL       = "https://api.stripe.com"
	defaultPayMongoAPIURL     = "https://api.paymongo.com"
	defaultPaymentMethods     = "card,gcash,paymaya"
	defaultCurrency           = "PHP"
	defaultAMQPExchange       = "storefront.orders"
	defaultAuthSecret         = "change-me-in-production"
	defaultProviderTimeout    = 15 * time.Second
	defaultReconcileInterval  = time.Minute
	defaultReconcileMaxAge    = 48 * time.Hour
	defaultReconcileBatchSize = 20
	defaultWorkerPoolSize     = 2
	defaultShutdownTimeout    = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		LogLevel:           getString(lookup, "LOG_LEVEL", defaultLogLevel),
		StripeSecretKey:    getString(lookup, "STRIPE_SECRET_KEY", ""),
		StripeAPIURL:       getString(lookup, "STRIPE_API_URL", defaultStripeAPIURL),
		PayMongoSecretKey:  getString(lookup, "PAYMONGO_SECRET_KEY", ""),
		PayMongoAPIURL:     getString(lookup, "PAYMONGO_API_URL", defaultPayMongoAPIURL),
		Currency:           getString(lookup, "STORE_CURRENCY", defaultCurrency),
		PublicBaseURL:      getString(lookup, "PUBLIC_BASE_URL", ""),
		AMQPURL:            getString(lookup, "AMQP_URL", ""),
		AMQPExchange:       getString(lookup, "AMQP_EXCHANGE", defaultAMQPExchange),
		AdminEmail:         getString(lookup, "ADMIN_EMAIL", ""),
		AdminPasswordHash:  getString(lookup, "ADMIN_PASSWORD_HASH", ""),
		AuthSecret:         getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		ProviderTimeout:    getDuration(lookup, "PROVIDER_TIMEOUT", defaultProviderTimeout),
		ReconcileInterval:  getDuration(lookup, "RECONCILE_INTERVAL", defaultReconcileInterval),
		ReconcileMaxAge:    getDuration(lookup, "RECONCILE_MAX_AGE", defaultReconcileMaxAge),
		ReconcileBatchSize: getInt(lookup, "RECONCILE_BATCH_SIZE", defaultReconcileBatchSize),
		WorkerPoolSize:     getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		paymentMethods       = getString(lookup, "PAYMONGO_PAYMENT_METHODS", defaultPaymentMethods)
		providerTimeoutStr   = cfg.ProviderTimeout.String()
		reconcileIntervalStr = cfg.ReconcileInterval.String()
		reconcileMaxAgeStr   = cfg.ReconcileMaxAge.String()
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Currency, "currency", cfg.Currency, "Store currency code")
	fs.StringVar(&cfg.PublicBaseURL, "public-url", cfg.PublicBaseURL, "Public storefront base URL")
	fs.StringVar(&cfg.AMQPURL, "amqp", cfg.AMQPURL, "RabbitMQ URL for order events")
	fs.StringVar(&paymentMethods, "payment-methods", paymentMethods, "Default PayMongo payment method types")
	fs.StringVar(&providerTimeoutStr, "provider-timeout", providerTimeoutStr, "Payment provider request timeout")
	fs.StringVar(&reconcileIntervalStr, "reconcile-interval", reconcileIntervalStr, "Interval between pending order reconciliation runs")
	fs.StringVar(&reconcileMaxAgeStr, "reconcile-max-age", reconcileMaxAgeStr, "Age after which pending orders are no longer re-checked")
	fs.IntVar(&cfg.ReconcileBatchSize, "reconcile-batch", cfg.ReconcileBatchSize, "Maximum pending orders per reconciliation run")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconciliation workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ProviderTimeout, err = time.ParseDuration(providerTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid provider timeout: %w", err)
	}

	if cfg.ReconcileInterval, err = time.ParseDuration(reconcileIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if cfg.ReconcileMaxAge, err = time.ParseDuration(reconcileMaxAgeStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile max age: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	secrets := []struct {
		env    string
		target *string
	}{
		{"STRIPE_SECRET_KEY_FILE", &cfg.StripeSecretKey},
		{"PAYMONGO_SECRET_KEY_FILE", &cfg.PayMongoSecretKey},
		{"AUTH_SECRET_FILE", &cfg.AuthSecret},
	}
	for _, s := range secrets {
		if err := readSecretFile(lookup, s.env, s.target); err != nil {
			return nil, err
		}
	}

	cfg.PaymentMethods = splitList(paymentMethods)
	if len(cfg.PaymentMethods) == 0 {
		cfg.PaymentMethods = splitList(defaultPaymentMethods)
	}

	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ReconcileBatchSize <= 0 {
		cfg.ReconcileBatchSize = defaultReconcileBatchSize
	}

	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}

	if cfg.ReconcileMaxAge <= cfg.ReconcileInterval {
		cfg.ReconcileMaxAge = defaultReconcileMaxAge
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func readSecretFile(lookup envLookup, key string, target *string) error {
	path, ok := lookup(key)
	if !ok || path == "" {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", strings.ToLower(key), err)
	}
	*target = strings.TrimSpace(string(content))
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
