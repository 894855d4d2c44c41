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

// Storage drivers supported by the service.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress    string
	StorageDriver string
	DatabaseURI   string
	RedisURL      string
	LogLevel      string

	AuthSecret string
	AuthIssuer string

	GatewayServerKey    string
	GatewayStatusURL    string
	PaymentPollInterval time.Duration
	PaymentPollMinAge   time.Duration
	PollBatchSize       int
	WorkerPoolSize      int

	FanoutInterval    time.Duration
	FanoutBatchSize   int
	NotificationTTL   time.Duration
	NotificationLimit int

	TransitionRetries int
	LockTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

const (
	defaultRunAddress          = ":8080"
	defaultAuthSecret          = "change-me-in-production"
	defaultAuthIssuer          = "homebooking"
	defaultLogLevel            = "info"
	defaultPaymentPollInterval = 30 * time.Second
	defaultPaymentPollMinAge   = 2 * time.Minute
	defaultPollBatchSize       = 32
	defaultWorkerPoolSize      = 4
	defaultFanoutInterval      = 5 * time.Second
	defaultFanoutBatchSize     = 16
	defaultNotificationTTL     = 72 * time.Hour
	defaultNotificationLimit   = 100
	defaultTransitionRetries   = 2
	defaultLockTimeout         = 2 * time.Second
	defaultShutdownTimeout     = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

// PaymentPollingEnabled reports whether the gateway status poller should run.
func (c *Config) PaymentPollingEnabled() bool {
	return c.GatewayStatusURL != ""
}

type envLookup func(string) (string, bool)

type durationSetting struct {
	flag   string
	usage  string
	label  string
	target *time.Duration
	raw    string
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		StorageDriver:       getString(lookup, "STORAGE_DRIVER", StorageDriverPostgres),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		RedisURL:            getString(lookup, "REDIS_URL", ""),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
		AuthSecret:          getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		AuthIssuer:          getString(lookup, "AUTH_ISSUER", defaultAuthIssuer),
		GatewayServerKey:    getString(lookup, "GATEWAY_SERVER_KEY", ""),
		GatewayStatusURL:    getString(lookup, "GATEWAY_STATUS_URL", ""),
		PaymentPollInterval: getDuration(lookup, "PAYMENT_POLL_INTERVAL", defaultPaymentPollInterval),
		PaymentPollMinAge:   getDuration(lookup, "PAYMENT_POLL_MIN_AGE", defaultPaymentPollMinAge),
		PollBatchSize:       getInt(lookup, "POLL_BATCH_SIZE", defaultPollBatchSize),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		FanoutInterval:      getDuration(lookup, "FANOUT_INTERVAL", defaultFanoutInterval),
		FanoutBatchSize:     getInt(lookup, "FANOUT_BATCH_SIZE", defaultFanoutBatchSize),
		NotificationTTL:     getDuration(lookup, "NOTIFICATION_TTL", defaultNotificationTTL),
		NotificationLimit:   getInt(lookup, "NOTIFICATION_LIMIT", defaultNotificationLimit),
		TransitionRetries:   getInt(lookup, "TRANSITION_RETRIES", defaultTransitionRetries),
		LockTimeout:         getDuration(lookup, "LOCK_TIMEOUT", defaultLockTimeout),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("homebooking", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	durations := []durationSetting{
		{flag: "payment-poll-interval", usage: "Interval between gateway status polls", label: "payment poll interval", target: &cfg.PaymentPollInterval},
		{flag: "payment-poll-min-age", usage: "Minimum order age before polling the gateway", label: "payment poll min age", target: &cfg.PaymentPollMinAge},
		{flag: "fanout-interval", usage: "Interval between partner notification sweeps", label: "fanout interval", target: &cfg.FanoutInterval},
		{flag: "notification-ttl", usage: "Lifetime of partner notifications", label: "notification ttl", target: &cfg.NotificationTTL},
		{flag: "lock-timeout", usage: "Row lock wait limit per transaction", label: "lock timeout", target: &cfg.LockTimeout},
		{flag: "shutdown-timeout", usage: "Graceful shutdown timeout", label: "shutdown timeout", target: &cfg.ShutdownTimeout},
	}
	for i := range durations {
		d := &durations[i]
		d.raw = d.target.String()
		fs.StringVar(&d.raw, d.flag, d.raw, d.usage)
	}

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "Redis URL for partner notifications")
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "Order store driver (postgres or memory)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for verifying identity tokens")
	fs.StringVar(&cfg.AuthIssuer, "auth-issuer", cfg.AuthIssuer, "Expected identity token issuer")
	fs.StringVar(&cfg.GatewayServerKey, "gateway-key", cfg.GatewayServerKey, "Payment gateway server key")
	fs.StringVar(&cfg.GatewayStatusURL, "gateway-status-url", cfg.GatewayStatusURL, "Payment gateway status API base URL")
	fs.IntVar(&cfg.PollBatchSize, "poll-batch", cfg.PollBatchSize, "Maximum orders per payment polling batch")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent payment poll workers")
	fs.IntVar(&cfg.FanoutBatchSize, "fanout-batch", cfg.FanoutBatchSize, "Maximum orders per notification sweep")
	fs.IntVar(&cfg.NotificationLimit, "notification-limit", cfg.NotificationLimit, "Notifications retained per partner")
	fs.IntVar(&cfg.TransitionRetries, "transition-retries", cfg.TransitionRetries, "Internal retries after a lost compare-and-swap")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	for _, d := range durations {
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.label, err)
		}
		*d.target = v
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = strings.TrimSpace(string(content))
	}

	if cfg.PollBatchSize <= 0 {
		cfg.PollBatchSize = defaultPollBatchSize
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.FanoutBatchSize <= 0 {
		cfg.FanoutBatchSize = defaultFanoutBatchSize
	}
	if cfg.NotificationLimit <= 0 {
		cfg.NotificationLimit = defaultNotificationLimit
	}
	if cfg.TransitionRetries < 0 {
		cfg.TransitionRetries = 0
	}
	if cfg.PaymentPollInterval <= 0 {
		cfg.PaymentPollInterval = defaultPaymentPollInterval
	}
	if cfg.FanoutInterval <= 0 {
		cfg.FanoutInterval = defaultFanoutInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURI == "" {
			return nil, fmt.Errorf("database URI must be provided")
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("auth secret must be provided")
	}

	return cfg, nil
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
