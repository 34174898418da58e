package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"fundledger/database"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultMaxAmountReceived is the largest single wire the ledger accepts unless configured otherwise
var DefaultMaxAmountReceived = decimal.RequireFromString("10000000000.00")

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP configuration
	HTTPAddr  string
	JWTSecret string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)
	NATSEnabled bool

	// Ledger limits
	MaxAmountReceived       decimal.Decimal
	FutureDateToleranceDays int
	DefaultCurrency         string

	// Logging
	LogLevel string

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // console, otlp, none
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Environment
	Environment string // "development", "production" or "test"
}

// ledgerFile is the optional YAML overlay pointed to by LEDGER_CONFIG_FILE
type ledgerFile struct {
	Ledger struct {
		MaxAmountReceived       string `yaml:"max_amount_received"`
		FutureDateToleranceDays *int   `yaml:"future_date_tolerance_days"`
		DefaultCurrency         string `yaml:"default_currency"`
	} `yaml:"ledger"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadDotEnv loads .env into the process environment if the file exists.
// Variables already present in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// load loads configuration from defaults, the optional YAML file, then environment variables
func load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// HTTP
		HTTPAddr:  ":8080",
		JWTSecret: os.Getenv("JWT_SECRET"),

		// NATS
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),
		NATSEnabled: getEnvWithDefault("NATS_ENABLED", "true") == "true",

		// Ledger
		MaxAmountReceived:       DefaultMaxAmountReceived,
		FutureDateToleranceDays: 7,
		DefaultCurrency:         "USD",

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		// OpenTelemetry
		OTelEnabled:              getEnvWithDefault("OTEL_ENABLED", "false") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "fundledger"),
		OTelExportIntervalMillis: 15000,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if path := os.Getenv("LEDGER_CONFIG_FILE"); path != "" {
		if err := config.applyFile(path); err != nil {
			return nil, err
		}
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		config.HTTPAddr = addr
	}
	if maxAmount := os.Getenv("MAX_AMOUNT_RECEIVED"); maxAmount != "" {
		parsed, err := decimal.NewFromString(maxAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_AMOUNT_RECEIVED %q: %w", maxAmount, err)
		}
		config.MaxAmountReceived = parsed
	}
	if days := os.Getenv("FUTURE_DATE_TOLERANCE_DAYS"); days != "" {
		if parsed, err := strconv.Atoi(days); err == nil {
			config.FutureDateToleranceDays = parsed
		}
	}
	if currency := os.Getenv("DEFAULT_CURRENCY"); currency != "" {
		config.DefaultCurrency = strings.ToUpper(currency)
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	if !config.MaxAmountReceived.IsPositive() {
		return nil, fmt.Errorf("max amount received must be positive")
	}
	if config.FutureDateToleranceDays < 0 {
		return nil, fmt.Errorf("future date tolerance cannot be negative")
	}

	return config, nil
}

// applyFile overlays ledger settings from a YAML file
func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file ledgerFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.Ledger.MaxAmountReceived != "" {
		parsed, err := decimal.NewFromString(file.Ledger.MaxAmountReceived)
		if err != nil {
			return fmt.Errorf("invalid ledger.max_amount_received %q: %w", file.Ledger.MaxAmountReceived, err)
		}
		c.MaxAmountReceived = parsed
	}
	if file.Ledger.FutureDateToleranceDays != nil {
		c.FutureDateToleranceDays = *file.Ledger.FutureDateToleranceDays
	}
	if file.Ledger.DefaultCurrency != "" {
		c.DefaultCurrency = strings.ToUpper(file.Ledger.DefaultCurrency)
	}
	if file.HTTP.Addr != "" {
		c.HTTPAddr = file.HTTP.Addr
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:             "test",
		HTTPAddr:                ":0",
		JWTSecret:               "test-secret",
		MaxAmountReceived:       DefaultMaxAmountReceived,
		FutureDateToleranceDays: 7,
		DefaultCurrency:         "USD",
		LogLevel:                "debug",
		OTelExporterType:        "none",
		OTelServiceName:         "fundledger-test",
	}
}
