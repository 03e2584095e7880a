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
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Workers   WorkersConfig   `yaml:"workers" mapstructure:"workers"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ProvidersConfig holds base URLs and timeouts for the remote data sources.
// All endpoints are overridable so tests can point them at httptest servers.
type ProvidersConfig struct {
	BoundaryBaseURL  string        `yaml:"boundary_base_url" mapstructure:"boundary_base_url"`
	PowerBaseURL     string        `yaml:"power_base_url" mapstructure:"power_base_url"`
	MeteoBaseURL     string        `yaml:"meteo_base_url" mapstructure:"meteo_base_url"`
	ElevationBaseURL string        `yaml:"elevation_base_url" mapstructure:"elevation_base_url"`
	OverpassBaseURL  string        `yaml:"overpass_base_url" mapstructure:"overpass_base_url"`
	PopulationURL    string        `yaml:"population_url" mapstructure:"population_url"`
	PowerTimeout     time.Duration `yaml:"power_timeout" mapstructure:"power_timeout"`
	MeteoTimeout     time.Duration `yaml:"meteo_timeout" mapstructure:"meteo_timeout"`
	ElevationTimeout time.Duration `yaml:"elevation_timeout" mapstructure:"elevation_timeout"`
	OverpassTimeout  time.Duration `yaml:"overpass_timeout" mapstructure:"overpass_timeout"`
	UserAgent        string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxRetries       int           `yaml:"max_retries" mapstructure:"max_retries"`
}

// CacheConfig configures the local cache backend.
type CacheConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "memory"
	Path   string `yaml:"path" mapstructure:"path"`
	Dir    string `yaml:"dir" mapstructure:"dir"` // directory for downloaded raster files
}

// WorkersConfig bounds the concurrency of the aggregation engine and the
// per-fetcher sub-pools.
type WorkersConfig struct {
	Fetchers int `yaml:"fetchers" mapstructure:"fetchers"` // concurrent indicator fetchers
	Cells    int `yaml:"cells" mapstructure:"cells"`       // per-cell lookups inside one fetcher
}

// ServerConfig configures the HTTP API.
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
	v.SetEnvPrefix("HEXATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("providers.boundary_base_url", "https://raw.githubusercontent.com/open-mexico/mexico-geojson/main")
	v.SetDefault("providers.power_base_url", "https://power.larc.nasa.gov/api/temporal/daily/point")
	v.SetDefault("providers.meteo_base_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("providers.elevation_base_url", "https://api.open-elevation.com/api/v1/lookup")
	v.SetDefault("providers.overpass_base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("providers.population_url", "https://data.worldpop.org/GIS/Population/Global_2015_2030/R2024B/2025/MEX/v1/100m/constrained/mex_pop_2025_CN_100m.asc")
	v.SetDefault("providers.power_timeout", 30*time.Second)
	v.SetDefault("providers.meteo_timeout", 10*time.Second)
	v.SetDefault("providers.elevation_timeout", 10*time.Second)
	v.SetDefault("providers.overpass_timeout", 30*time.Second)
	v.SetDefault("providers.user_agent", "hexatlas/1.0")
	v.SetDefault("providers.max_retries", 3)
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.path", "hexatlas.db")
	v.SetDefault("cache.dir", "data")
	v.SetDefault("workers.fetchers", 6)
	v.SetDefault("workers.cells", 8)
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
