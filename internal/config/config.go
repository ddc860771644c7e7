package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Places  PlacesConfig  `yaml:"places" mapstructure:"places"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the gym record store backend. The verification
// pipeline only ever reads from it.
type StoreConfig struct {
	Driver          string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL     string `yaml:"database_url" mapstructure:"database_url"`
	TestDatabaseURL string `yaml:"test_database_url" mapstructure:"test_database_url"`

	// Pool tuning, postgres only.
	PoolMaxConns int32 `yaml:"pool_max_conns" mapstructure:"pool_max_conns"`
	PoolMinConns int32 `yaml:"pool_min_conns" mapstructure:"pool_min_conns"`
}

// DSNFor returns the connection string for the given environment tag.
func (c StoreConfig) DSNFor(env string) string {
	if env == "test" && c.TestDatabaseURL != "" {
		return c.TestDatabaseURL
	}
	return c.DatabaseURL
}

// ScrapeConfig configures page fetching and retry behavior.
type ScrapeConfig struct {
	NavigationTimeoutSecs int    `yaml:"navigation_timeout_secs" mapstructure:"navigation_timeout_secs"`
	SettleMillis          int    `yaml:"settle_millis" mapstructure:"settle_millis"`
	RetryAttempts         int    `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryDelaysMillis     []int  `yaml:"retry_delays_ms" mapstructure:"retry_delays_ms"`
	RequestsPerSecond     int    `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	ScreenshotDir         string `yaml:"screenshot_dir" mapstructure:"screenshot_dir"`
}

// NavigationTimeout returns the per-navigation deadline.
func (c ScrapeConfig) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSecs) * time.Second
}

// SettleDelay is how long to wait after the DOM is ready for late
// JS-rendered content to land.
func (c ScrapeConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleMillis) * time.Millisecond
}

// RetryDelays returns the backoff schedule, indexed by retry number.
func (c ScrapeConfig) RetryDelays() []time.Duration {
	out := make([]time.Duration, len(c.RetryDelaysMillis))
	for i, ms := range c.RetryDelaysMillis {
		out[i] = time.Duration(ms) * time.Millisecond
	}
	return out
}

// ExtractConfig configures the price extractor.
type ExtractConfig struct {
	PriceMin float64 `yaml:"price_min" mapstructure:"price_min"`
	PriceMax float64 `yaml:"price_max" mapstructure:"price_max"`
	Currency string  `yaml:"currency" mapstructure:"currency"`
}

// ReportConfig configures report persistence.
type ReportConfig struct {
	OutputPath string `yaml:"output_path" mapstructure:"output_path"`
	SyncPath   string `yaml:"sync_path" mapstructure:"sync_path"`
}

// PlacesConfig holds Google Places API settings for the discovery sync.
type PlacesConfig struct {
	APIKey      string         `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string         `yaml:"base_url" mapstructure:"base_url"`
	SearchQuery string         `yaml:"search_query" mapstructure:"search_query"`
	Regions     []SearchRegion `yaml:"regions" mapstructure:"regions"`
}

// SearchRegion is one circular text-search area.
type SearchRegion struct {
	Name      string  `yaml:"name" mapstructure:"name"`
	Latitude  float64 `yaml:"latitude" mapstructure:"latitude"`
	Longitude float64 `yaml:"longitude" mapstructure:"longitude"`
	// RadiusMeters is capped at 50000 by the Places API.
	RadiusMeters float64 `yaml:"radius_meters" mapstructure:"radius_meters"`
}

// ServerConfig configures the report server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRICEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "pricewatch.db")
	v.SetDefault("store.pool_max_conns", 4)
	v.SetDefault("store.pool_min_conns", 1)
	v.SetDefault("scrape.navigation_timeout_secs", 30)
	v.SetDefault("scrape.settle_millis", 2000)
	v.SetDefault("scrape.retry_attempts", 2)
	v.SetDefault("scrape.retry_delays_ms", []int{1000, 2000})
	v.SetDefault("scrape.requests_per_second", 1)
	v.SetDefault("scrape.screenshot_dir", "screenshots")
	v.SetDefault("extract.price_min", 15)
	v.SetDefault("extract.price_max", 50)
	v.SetDefault("extract.currency", "CAD")
	v.SetDefault("report.output_path", "verification-report.json")
	v.SetDefault("report.sync_path", "sync-results.json")
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("places.search_query", "climbing gym Ontario")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if len(cfg.Places.Regions) == 0 {
		cfg.Places.Regions = DefaultRegions()
	}

	return &cfg, nil
}

// DefaultRegions covers Ontario with four broad text-search circles.
func DefaultRegions() []SearchRegion {
	return []SearchRegion{
		{Name: "Southern Ontario", Latitude: 43.65, Longitude: -79.38, RadiusMeters: 50000},
		{Name: "Western Ontario", Latitude: 43.0, Longitude: -81.25, RadiusMeters: 50000},
		{Name: "Eastern Ontario", Latitude: 45.42, Longitude: -75.7, RadiusMeters: 50000},
		{Name: "Northern Ontario", Latitude: 46.49, Longitude: -81.0, RadiusMeters: 50000},
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
