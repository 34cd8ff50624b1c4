package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewInvoiceSettingsHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string
	// OTLPProtocol is grpc or http. OTEL_EXPORTER_OTLP_TRACES_PROTOCOL wins
	// over OTEL_EXPORTER_OTLP_PROTOCOL.
	OTLPProtocol      string
	OtelEnabled       bool
	OtelSamplingRatio float64

	LogLevel  string
	LogFormat string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// GenerationLockTTL bounds how long one invoice generation may hold the
	// distributed lock for a (sales person, period) key.
	GenerationLockTTL time.Duration
	SnowflakeNode     int64

	// GenerateRatePerMinute and GenerateBurst shape the token bucket in front
	// of the invoice generation endpoints. Zero disables it.
	GenerateRatePerMinute int
	GenerateBurst         int

	// AutoClose runs bulk generation once for each closing date that passes.
	AutoClose                bool
	AutoCloseIntervalMinutes int
	// BusinessTimeZone decides which calendar day "today" is for closing.
	BusinessTimeZone string

	// SettingsWatch enables hot reload of invoice.yml.
	SettingsWatch bool
	// SeedDefaults inserts the default discount schedules and tax rate into
	// empty tables on startup.
	SeedDefaults bool
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:                  getenv("APP_SERVICE", "salesinvoice"),
		AppVersion:               getenv("SERVICE_VERSION", getenv("APP_VERSION", "0.1.0")),
		Environment:              getenv("DEPLOYMENT_ENV", getenv("ENVIRONMENT", "development")),
		HTTPAddr:                 getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:             getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317")),
		OTLPProtocol:             getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		OtelEnabled:              getenvBool("OTEL_ENABLED", false),
		OtelSamplingRatio:        getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		LogLevel:                 getenv("LOG_LEVEL", "info"),
		LogFormat:                getenv("LOG_FORMAT", "json"),
		DBType:                   getenv("DATABASE_TYPE", "postgres"),
		DBHost:                   getenv("DATABASE_HOST", "localhost"),
		DBPort:                   getenv("DATABASE_PORT", "5432"),
		DBName:                   getenv("DATABASE_NAME", "salesinvoice"),
		DBUser:                   getenv("DATABASE_USER", "postgres"),
		DBPassword:               getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:                getenv("DATABASE_SSLMODE", "disable"),
		DBPath:                   getenv("DATABASE_PATH", "salesinvoice.db"),
		DBMaxIdleConn:            getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:            getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime:        getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime:        getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
		RedisAddr:                strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:            getenv("REDIS_PASSWORD", ""),
		RedisDB:                  getenvInt("REDIS_DB", 0),
		GenerationLockTTL:        time.Duration(getenvInt("INVOICE_LOCK_TTL_SECONDS", 30)) * time.Second,
		SnowflakeNode:            getenvInt64("SNOWFLAKE_NODE", 1),
		GenerateRatePerMinute:    getenvInt("INVOICE_GENERATE_RATE_PER_MINUTE", 60),
		GenerateBurst:            getenvInt("INVOICE_GENERATE_BURST", 10),
		AutoClose:                getenvBool("INVOICE_AUTO_CLOSE", false),
		AutoCloseIntervalMinutes: getenvInt("INVOICE_AUTO_CLOSE_INTERVAL_MINUTES", 60),
		BusinessTimeZone:         getenv("BUSINESS_TIMEZONE", "Asia/Tokyo"),
		SettingsWatch:            getenvBool("INVOICE_SETTINGS_WATCH", true),
		SeedDefaults:             getenvBool("SEED_DEFAULTS", true),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
