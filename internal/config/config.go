package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tally/internal/validator"
)

// Identity verification modes.
const (
	IdentityModeRemote = "remote"
	IdentityModeJWT    = "jwt"
)

// Config holds application configuration
type Config struct {
	// Server
	Env              string
	Port             string
	LogLevel         string
	RequestTimeout   time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string

	// Database
	DBDriver             string
	DBPath               string
	DBHost               string
	DBPort               string
	DBUser               string
	DBPassword           string
	DBName               string
	DBSSLMode            string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetime    time.Duration
	DBConnectTimeout     time.Duration
	DBSlowQueryThreshold time.Duration

	// Identity provider
	IdentityMode        string
	SupabaseURL         string
	SupabaseAnonKey     string
	SupabaseJWTSecret   string
	SupabaseJWTAudience string
	IdentityTimeout     time.Duration
	OTPRateLimit        int
	OTPRateBurst        int

	// Token cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TokenCacheTTL time.Duration

	// Events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Observability
	OTelEnabled       bool
	OTelEndpoint      string
	OTelInsecure      bool
	OTelSamplingRatio float64
	OTelServiceName   string
	MetricsAPIKey     string

	DefaultCurrency string
}

var appConfig *Config

// Load loads configuration from the environment, reading .env first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	config := &Config{
		Env:              v.GetString("ENV"),
		Port:             v.GetString("PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		RequestTimeout:   v.GetDuration("REQUEST_TIMEOUT"),
		ReadTimeout:      v.GetDuration("HTTP_READ_TIMEOUT"),
		WriteTimeout:     v.GetDuration("HTTP_WRITE_TIMEOUT"),
		ShutdownTimeout:  v.GetDuration("SHUTDOWN_TIMEOUT"),
		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),

		DBDriver:             strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:               v.GetString("DB_PATH"),
		DBHost:               v.GetString("DB_HOST"),
		DBPort:               v.GetString("DB_PORT"),
		DBUser:               v.GetString("DB_USER"),
		DBPassword:           v.GetString("DB_PASSWORD"),
		DBName:               v.GetString("DB_NAME"),
		DBSSLMode:            v.GetString("DB_SSLMODE"),
		DBMaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
		DBConnectTimeout:     v.GetDuration("DB_CONNECT_TIMEOUT"),
		DBSlowQueryThreshold: v.GetDuration("DB_SLOW_QUERY_THRESHOLD"),

		IdentityMode:        strings.ToLower(v.GetString("IDENTITY_MODE")),
		SupabaseURL:         strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseAnonKey:     v.GetString("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret:   v.GetString("SUPABASE_JWT_SECRET"),
		SupabaseJWTAudience: v.GetString("SUPABASE_JWT_AUDIENCE"),
		IdentityTimeout:     v.GetDuration("IDENTITY_TIMEOUT"),
		OTPRateLimit:        v.GetInt("OTP_RATE_LIMIT"),
		OTPRateBurst:        v.GetInt("OTP_RATE_BURST"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		TokenCacheTTL: v.GetDuration("TOKEN_CACHE_TTL"),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:    v.GetString("AMQP_QUEUE"),

		OTelEnabled:       v.GetBool("OTEL_ENABLED"),
		OTelEndpoint:      v.GetString("OTEL_ENDPOINT"),
		OTelInsecure:      v.GetBool("OTEL_INSECURE"),
		OTelSamplingRatio: v.GetFloat64("OTEL_SAMPLING_RATIO"),
		OTelServiceName:   v.GetString("OTEL_SERVICE_NAME"),
		MetricsAPIKey:     v.GetString("METRICS_API_KEY"),

		DefaultCurrency: strings.ToUpper(v.GetString("DEFAULT_CURRENCY")),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}

	switch c.IdentityMode {
	case IdentityModeRemote:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required in %s identity mode", c.IdentityMode)
		}
	case IdentityModeJWT:
		if c.SupabaseJWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET is required in %s identity mode", c.IdentityMode)
		}
	default:
		return fmt.Errorf("IDENTITY_MODE must be remote or jwt, got %q", c.IdentityMode)
	}

	if !validator.IsCurrency(c.DefaultCurrency) {
		return fmt.Errorf("DEFAULT_CURRENCY must be an ISO 4217 code, got %q", c.DefaultCurrency)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.OTelSamplingRatio < 0 || c.OTelSamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be between 0 and 1")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("HTTP_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 15*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 15*time.Second)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "tally.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "tally")
	v.SetDefault("DB_PASSWORD", "tally")
	v.SetDefault("DB_NAME", "tally")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("DB_CONNECT_TIMEOUT", 5*time.Second)
	v.SetDefault("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond)

	v.SetDefault("IDENTITY_MODE", IdentityModeRemote)
	v.SetDefault("IDENTITY_TIMEOUT", 5*time.Second)
	v.SetDefault("OTP_RATE_LIMIT", 5)
	v.SetDefault("OTP_RATE_BURST", 3)

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TOKEN_CACHE_TTL", time.Minute)

	v.SetDefault("AMQP_EXCHANGE", "tally.events")
	v.SetDefault("AMQP_QUEUE", "tally.expenses")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_INSECURE", true)
	v.SetDefault("OTEL_SAMPLING_RATIO", 1.0)
	v.SetDefault("OTEL_SERVICE_NAME", "tally-api")

	v.SetDefault("DEFAULT_CURRENCY", "ZAR")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
