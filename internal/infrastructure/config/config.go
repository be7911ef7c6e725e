package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. UMROH_DATABASE_PASSWORD
const EnvPrefix = "UMROH"

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Midtrans   MidtransConfig
	Credits    CreditsConfig
	Reconciler ReconcilerConfig
	Archive    ArchiveConfig
	Telemetry  TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the service runs with production safeguards
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings.
// When Enabled is false the in-memory idempotency store is used.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings for validating account bearer tokens
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
	MaxHeaderBytes     int
	MaxBodySize        int64
	WebhookMaxBodySize int64
	RateLimitEnabled   bool
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	CORSAllowOrigins   []string
	CORSAllowMethods   []string
	CORSAllowHeaders   []string
	TrustedProxies     []string
	SwaggerEnabled     bool     // Serve /swagger; defaults to true outside production
	SwaggerAllowedIPs  []string // IPs or CIDRs allowed to read /swagger, empty = all
}

// MidtransConfig holds the payment provider settings
type MidtransConfig struct {
	ServerKey       string
	IsProduction    bool
	VerifySignature bool
	SnapBaseURL     string // overrides the environment default, mostly for tests
	APIBaseURL      string
	Timeout         time.Duration
}

// CreditsConfig holds the price of one credit in rupiah
type CreditsConfig struct {
	UnitPrice int64
}

// ReconcilerConfig controls the sweep over stale pending transactions
type ReconcilerConfig struct {
	Enabled   bool
	Interval  time.Duration
	MinAge    time.Duration
	BatchSize int
	Timeout   time.Duration
}

// ArchiveConfig holds the S3-compatible bucket that keeps raw provider
// notifications for dispute handling
type ArchiveConfig struct {
	Enabled      bool
	Endpoint     string // e.g. "http://localhost:9000" for MinIO
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
	Prefix       string
	Timeout      time.Duration
}

// TelemetryConfig holds OpenTelemetry, Pyroscope and Prometheus configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to export traces
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool // Enable database query tracing (otelgorm)
	LogsEnabled       bool // Also export zap logs over OTLP
	MetricsEnabled    bool // Expose /metrics

	OTLPMetricsEnabled    bool          // Push OpenTelemetry metrics to the collector
	MetricsExportInterval time.Duration // OTLP push interval

	ProfilingEnabled       bool
	ProfilingServerAddress string // Pyroscope server, e.g. "http://pyroscope:4040"
}

// Load loads configuration from an optional .env file, config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with UMROH_ prefix (e.g., UMROH_DATABASE_PASSWORD)
// 2. .env (only fills variables that are not already set)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:        v.GetDuration("http.read_timeout"),
			WriteTimeout:       v.GetDuration("http.write_timeout"),
			IdleTimeout:        v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:    v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:     v.GetInt("http.max_header_bytes"),
			MaxBodySize:        v.GetInt64("http.max_body_size"),
			WebhookMaxBodySize: v.GetInt64("http.webhook_max_body_size"),
			RateLimitEnabled:   v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:  v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:    v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:   v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:   v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:   v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:     v.GetStringSlice("http.trusted_proxies"),
			SwaggerEnabled:     v.GetBool("http.swagger_enabled"),
			SwaggerAllowedIPs:  v.GetStringSlice("http.swagger_allowed_ips"),
		},
		Midtrans: MidtransConfig{
			ServerKey:       v.GetString("midtrans.server_key"),
			IsProduction:    v.GetBool("midtrans.is_production"),
			VerifySignature: v.GetBool("midtrans.verify_signature"),
			SnapBaseURL:     v.GetString("midtrans.snap_base_url"),
			APIBaseURL:      v.GetString("midtrans.api_base_url"),
			Timeout:         v.GetDuration("midtrans.timeout"),
		},
		Credits: CreditsConfig{
			UnitPrice: v.GetInt64("credits.unit_price"),
		},
		Reconciler: ReconcilerConfig{
			Enabled:   v.GetBool("reconciler.enabled"),
			Interval:  v.GetDuration("reconciler.interval"),
			MinAge:    v.GetDuration("reconciler.min_age"),
			BatchSize: v.GetInt("reconciler.batch_size"),
			Timeout:   v.GetDuration("reconciler.timeout"),
		},
		Archive: ArchiveConfig{
			Enabled:      v.GetBool("archive.enabled"),
			Endpoint:     v.GetString("archive.endpoint"),
			Region:       v.GetString("archive.region"),
			Bucket:       v.GetString("archive.bucket"),
			AccessKey:    v.GetString("archive.access_key"),
			SecretKey:    v.GetString("archive.secret_key"),
			UseSSL:       v.GetBool("archive.use_ssl"),
			UsePathStyle: v.GetBool("archive.use_path_style"),
			Prefix:       v.GetString("archive.prefix"),
			Timeout:      v.GetDuration("archive.timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			MetricsEnabled:    !v.IsSet("telemetry.metrics_enabled") || v.GetBool("telemetry.metrics_enabled"),

			OTLPMetricsEnabled:    v.GetBool("telemetry.otlp_metrics_enabled"),
			MetricsExportInterval: v.GetDuration("telemetry.metrics_export_interval"),

			ProfilingEnabled:       v.GetBool("telemetry.profiling_enabled"),
			ProfilingServerAddress: v.GetString("telemetry.profiling_server_address"),
		},
	}

	applyDefaults(cfg)
	if !v.IsSet("http.swagger_enabled") {
		cfg.HTTP.SwaggerEnabled = !cfg.App.IsProduction()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "arah-umroh-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "arah_umroh"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "arah-umroh"
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.WebhookMaxBodySize == 0 {
		cfg.HTTP.WebhookMaxBodySize = 64 << 10 // 64KiB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// No default origin: cross-origin requests stay blocked until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Midtrans.Timeout == 0 {
		cfg.Midtrans.Timeout = 30 * time.Second
	}
	if cfg.Credits.UnitPrice == 0 {
		cfg.Credits.UnitPrice = 10000
	}
	if cfg.Reconciler.Interval == 0 {
		cfg.Reconciler.Interval = 5 * time.Minute
	}
	if cfg.Reconciler.MinAge == 0 {
		cfg.Reconciler.MinAge = 15 * time.Minute
	}
	if cfg.Reconciler.BatchSize == 0 {
		cfg.Reconciler.BatchSize = 50
	}
	if cfg.Reconciler.Timeout == 0 {
		cfg.Reconciler.Timeout = 2 * time.Minute
	}
	if cfg.Archive.Region == "" {
		cfg.Archive.Region = "ap-southeast-3"
	}
	if cfg.Archive.Prefix == "" {
		cfg.Archive.Prefix = "midtrans/notifications"
	}
	if cfg.Archive.Timeout == 0 {
		cfg.Archive.Timeout = 5 * time.Second
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.MetricsExportInterval <= 0 {
		cfg.Telemetry.MetricsExportInterval = 60 * time.Second
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Credits.UnitPrice < 0 {
		return fmt.Errorf("credits.unit_price must be positive, got %d", c.Credits.UnitPrice)
	}
	if c.Reconciler.BatchSize < 0 {
		return fmt.Errorf("reconciler.batch_size cannot be negative")
	}
	if c.Archive.Enabled {
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket is required when the archive is enabled")
		}
		if c.Archive.AccessKey == "" || c.Archive.SecretKey == "" {
			return fmt.Errorf("archive.access_key and archive.secret_key are required when the archive is enabled")
		}
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServerAddress == "" {
		return fmt.Errorf("telemetry.profiling_server_address is required when profiling is enabled")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Midtrans.ServerKey == "" {
			return fmt.Errorf("midtrans.server_key is required in production")
		}
		if !c.Midtrans.VerifySignature {
			return fmt.Errorf("midtrans.verify_signature must be true in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
