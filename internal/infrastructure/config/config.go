package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Dataset modes
const (
	DatasetModeOff  = "off"
	DatasetModeFile = "file"
	DatasetModeS3   = "s3"
)

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Pricing   PricingConfig
	Providers ProvidersConfig
	Dataset   DatasetConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	RequestTimeout   time.Duration
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	StaticDir        string // client bundle served with SPA fallback; empty disables
	// PriceRateLimit caps /api/prices requests per client IP per
	// PriceRateWindow. Negative disables the limit.
	PriceRateLimit   int
	PriceRateWindow  time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig controls the price response cache
type CacheConfig struct {
	Backend   string // memory, redis
	KeyPrefix string
	MockTTL   time.Duration
	LiveTTL   time.Duration
}

// PricingConfig holds price resolution settings
type PricingConfig struct {
	DefaultZip string
	// ComparisonZips limits the non-home ZIPs priced when a metered provider
	// is configured. Empty means the first ComparisonLimit known ZIPs.
	ComparisonZips  []string
	ComparisonLimit int
	MaxItems        int
}

// ProvidersConfig groups the live price provider settings
type ProvidersConfig struct {
	Commerce CommerceProviderConfig
	Scraper  ScraperProviderConfig
}

// CommerceProviderConfig configures the commerce catalog search API
type CommerceProviderConfig struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	ResultLimit int
}

// ScraperProviderConfig configures the hosted scraping actor
type ScraperProviderConfig struct {
	APIToken     string
	BaseURL      string
	ActorID      string
	WaitSeconds  int
	DatasetLimit int
	BatchWidth   int
	Timeout      time.Duration
}

// DatasetConfig locates the pre-scraped price snapshot
type DatasetConfig struct {
	Mode       string // off, file, s3
	Path       string
	OutputPath string // build-static output
	S3         S3Config
}

// S3Config holds S3-compatible storage settings for the dataset
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsInterval   time.Duration
	LogsEnabled       bool // export zap entries over OTLP as well
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ARBICART_ prefix (e.g., ARBICART_APP_PORT)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ARBICART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider credentials keep working under their historical names.
	_ = v.BindEnv("providers.commerce.api_key", "ARBICART_PROVIDERS_COMMERCE_API_KEY", "INSTACART_API_KEY")
	_ = v.BindEnv("providers.scraper.api_token", "ARBICART_PROVIDERS_SCRAPER_API_TOKEN", "APIFY_API_TOKEN")
	_ = v.BindEnv("app.port", "ARBICART_APP_PORT", "PORT")

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			RequestTimeout:   v.GetDuration("http.request_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			StaticDir:        v.GetString("http.static_dir"),
			PriceRateLimit:   v.GetInt("http.price_rate_limit"),
			PriceRateWindow:  v.GetDuration("http.price_rate_window"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Backend:   v.GetString("cache.backend"),
			KeyPrefix: v.GetString("cache.key_prefix"),
			MockTTL:   v.GetDuration("cache.mock_ttl"),
			LiveTTL:   v.GetDuration("cache.live_ttl"),
		},
		Pricing: PricingConfig{
			DefaultZip:      v.GetString("pricing.default_zip"),
			ComparisonZips:  v.GetStringSlice("pricing.comparison_zips"),
			ComparisonLimit: v.GetInt("pricing.comparison_limit"),
			MaxItems:        v.GetInt("pricing.max_items"),
		},
		Providers: ProvidersConfig{
			Commerce: CommerceProviderConfig{
				APIKey:      v.GetString("providers.commerce.api_key"),
				BaseURL:     v.GetString("providers.commerce.base_url"),
				Timeout:     v.GetDuration("providers.commerce.timeout"),
				ResultLimit: v.GetInt("providers.commerce.result_limit"),
			},
			Scraper: ScraperProviderConfig{
				APIToken:     v.GetString("providers.scraper.api_token"),
				BaseURL:      v.GetString("providers.scraper.base_url"),
				ActorID:      v.GetString("providers.scraper.actor_id"),
				WaitSeconds:  v.GetInt("providers.scraper.wait_seconds"),
				DatasetLimit: v.GetInt("providers.scraper.dataset_limit"),
				BatchWidth:   v.GetInt("providers.scraper.batch_width"),
				Timeout:      v.GetDuration("providers.scraper.timeout"),
			},
		},
		Dataset: DatasetConfig{
			Mode:       v.GetString("dataset.mode"),
			Path:       v.GetString("dataset.path"),
			OutputPath: v.GetString("dataset.output_path"),
			S3: S3Config{
				Bucket:          v.GetString("dataset.s3.bucket"),
				Key:             v.GetString("dataset.s3.key"),
				Region:          v.GetString("dataset.s3.region"),
				Endpoint:        v.GetString("dataset.s3.endpoint"),
				AccessKeyID:     v.GetString("dataset.s3.access_key_id"),
				SecretAccessKey: v.GetString("dataset.s3.secret_access_key"),
				UsePathStyle:    v.GetBool("dataset.s3.use_path_style"),
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "arbicart"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "3000"
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
	// Live providers can block for minutes while a scrape actor runs.
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 4 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 3 * time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.HTTP.PriceRateLimit == 0 {
		cfg.HTTP.PriceRateLimit = 60
	}
	if cfg.HTTP.PriceRateWindow == 0 {
		cfg.HTTP.PriceRateWindow = time.Minute
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheBackendMemory
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "arbicart:"
	}
	if cfg.Cache.MockTTL == 0 {
		cfg.Cache.MockTTL = 15 * time.Minute
	}
	if cfg.Cache.LiveTTL == 0 {
		cfg.Cache.LiveTTL = 30 * time.Minute
	}
	if cfg.Pricing.DefaultZip == "" {
		cfg.Pricing.DefaultZip = "14850"
	}
	if cfg.Pricing.ComparisonLimit == 0 {
		cfg.Pricing.ComparisonLimit = 5
	}
	if cfg.Pricing.MaxItems == 0 {
		cfg.Pricing.MaxItems = 25
	}
	if cfg.Providers.Commerce.BaseURL == "" {
		cfg.Providers.Commerce.BaseURL = "https://connect.instacart.com/v2"
	}
	if cfg.Providers.Commerce.Timeout == 0 {
		cfg.Providers.Commerce.Timeout = 15 * time.Second
	}
	if cfg.Providers.Commerce.ResultLimit == 0 {
		cfg.Providers.Commerce.ResultLimit = 5
	}
	if cfg.Providers.Scraper.BaseURL == "" {
		cfg.Providers.Scraper.BaseURL = "https://api.apify.com/v2"
	}
	if cfg.Providers.Scraper.ActorID == "" {
		cfg.Providers.Scraper.ActorID = "rigelbytes~instacart-scraper"
	}
	if cfg.Providers.Scraper.WaitSeconds == 0 {
		cfg.Providers.Scraper.WaitSeconds = 180
	}
	if cfg.Providers.Scraper.DatasetLimit == 0 {
		cfg.Providers.Scraper.DatasetLimit = 10
	}
	if cfg.Providers.Scraper.BatchWidth == 0 {
		cfg.Providers.Scraper.BatchWidth = 3
	}
	if cfg.Providers.Scraper.Timeout == 0 {
		cfg.Providers.Scraper.Timeout = 200 * time.Second
	}
	if cfg.Dataset.Mode == "" {
		cfg.Dataset.Mode = DatasetModeOff
	}
	if cfg.Dataset.Path == "" {
		cfg.Dataset.Path = "data/prices.json"
	}
	if cfg.Dataset.OutputPath == "" {
		cfg.Dataset.OutputPath = "client/data/prices.json"
	}
	if cfg.Dataset.S3.Key == "" {
		cfg.Dataset.S3.Key = "prices.json"
	}
	if cfg.Dataset.S3.Region == "" {
		cfg.Dataset.S3.Region = "us-east-1"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "arbicart"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if len(c.Pricing.DefaultZip) != 5 {
		return fmt.Errorf("pricing.default_zip must be a 5-digit ZIP code, got %q", c.Pricing.DefaultZip)
	}
	if c.Pricing.MaxItems < 0 {
		return fmt.Errorf("pricing.max_items cannot be negative")
	}
	if c.Cache.MockTTL < 0 || c.Cache.LiveTTL < 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got %q", CacheBackendMemory, CacheBackendRedis, c.Cache.Backend)
	}
	if c.HTTP.PriceRateLimit > 0 && c.HTTP.PriceRateWindow <= 0 {
		return fmt.Errorf("http.price_rate_window must be positive when http.price_rate_limit is set, got %s", c.HTTP.PriceRateWindow)
	}
	if c.Providers.Scraper.BatchWidth < 1 || c.Providers.Scraper.BatchWidth > 10 {
		return fmt.Errorf("providers.scraper.batch_width must be between 1 and 10, got %d", c.Providers.Scraper.BatchWidth)
	}
	switch c.Dataset.Mode {
	case DatasetModeOff, DatasetModeFile:
	case DatasetModeS3:
		if c.Dataset.S3.Bucket == "" {
			return fmt.Errorf("dataset.s3.bucket is required when dataset.mode is s3")
		}
	default:
		return fmt.Errorf("dataset.mode must be off, file or s3, got %q", c.Dataset.Mode)
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
