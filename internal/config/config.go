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
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	Overpass  OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Assistant AssistantConfig `yaml:"assistant" mapstructure:"assistant"`
	Grid      GridConfig      `yaml:"grid" mapstructure:"grid"`
	Risk      RiskConfig      `yaml:"risk" mapstructure:"risk"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// NominatimConfig configures the geocoding provider. The usage policy of the
// public instance requires a descriptive user agent, at most one request per
// second, and caching of responses.
type NominatimConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	CachePath    string  `yaml:"cache_path" mapstructure:"cache_path"`
	CacheTTLHrs  int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// OverpassConfig configures the water-body provider.
type OverpassConfig struct {
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// MetricsConfig configures the three environmental metric endpoints.
type MetricsConfig struct {
	TemperatureURL string `yaml:"temperature_url" mapstructure:"temperature_url"`
	AirQualityURL  string `yaml:"air_quality_url" mapstructure:"air_quality_url"`
	FloodRiskURL   string `yaml:"flood_risk_url" mapstructure:"flood_risk_url"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AssistantConfig configures the region-context chat proxy.
type AssistantConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// GridConfig configures the development-suitability scan.
type GridConfig struct {
	CellTimeoutSecs int `yaml:"cell_timeout_secs" mapstructure:"cell_timeout_secs"`
	CellDelayMillis int `yaml:"cell_delay_millis" mapstructure:"cell_delay_millis"`
}

// RiskConfig points at an optional scoring-weights override file.
type RiskConfig struct {
	WeightsPath string `yaml:"weights_path" mapstructure:"weights_path"`
}

// CellTimeout returns the per-cell deadline as a duration.
func (g GridConfig) CellTimeout() time.Duration {
	return time.Duration(g.CellTimeoutSecs) * time.Second
}

// CellDelay returns the inter-cell pause as a duration.
func (g GridConfig) CellDelay() time.Duration {
	return time.Duration(g.CellDelayMillis) * time.Millisecond
}

// CacheTTL returns the geocode cache TTL as a duration.
func (n NominatimConfig) CacheTTL() time.Duration {
	return time.Duration(n.CacheTTLHrs) * time.Hour
}

// MetricTimeout returns the per-fetch deadline as a duration.
func (m MetricsConfig) MetricTimeout() time.Duration {
	return time.Duration(m.TimeoutSecs) * time.Second
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TERRALENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "terralens/1.0 (climate dashboard)")
	v.SetDefault("nominatim.rate_per_sec", 1.0)
	v.SetDefault("nominatim.cache_path", "terralens-cache.db")
	v.SetDefault("nominatim.cache_ttl_hours", 168)
	v.SetDefault("overpass.endpoint", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.rate_per_sec", 0.5)
	v.SetDefault("metrics.timeout_secs", 10)
	v.SetDefault("assistant.model", "claude-haiku-4-5-20251001")
	v.SetDefault("assistant.max_tokens", 1024)
	v.SetDefault("grid.cell_timeout_secs", 5)
	v.SetDefault("grid.cell_delay_millis", 500)

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

	return &cfg, nil
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
