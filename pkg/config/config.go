// Package config loads natogrid settings from defaults, an optional YAML
// file, an optional .env file and NATOGRID_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Grid    GridConfig    `mapstructure:"grid"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Places  PlacesConfig  `mapstructure:"places"`
	PostGIS PostGISConfig `mapstructure:"postgis"`
}

// GridConfig defines the codec: box, alphabet and code length.
type GridConfig struct {
	MinLat     float64 `mapstructure:"min_lat"`
	MaxLat     float64 `mapstructure:"max_lat"`
	MinLon     float64 `mapstructure:"min_lon"`
	MaxLon     float64 `mapstructure:"max_lon"`
	Alphabet   string  `mapstructure:"alphabet"`
	CodeLength int     `mapstructure:"code_length"`
}

type ServerConfig struct {
	Port      int           `mapstructure:"port"`
	Timeout   time.Duration `mapstructure:"timeout"`
	BaseURL   string        `mapstructure:"base_url"`
	RateLimit float64       `mapstructure:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type PlacesConfig struct {
	File  string `mapstructure:"file"`
	Index string `mapstructure:"index"`
}

type PostGISConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// Load reads configuration. path may be empty, in which case config.yaml is
// looked up in the working directory and ./configs; a missing file is not an error.
func Load(path string) (*Config, error) {
	// Optional .env with NATOGRID_* variables
	_ = godotenv.Load()

	v := viper.New()

	box := gridcode.DefaultBounds()
	v.SetDefault("grid.min_lat", box.BottomLeft.Lat)
	v.SetDefault("grid.max_lat", box.TopRight.Lat)
	v.SetDefault("grid.min_lon", box.BottomLeft.Lon)
	v.SetDefault("grid.max_lon", box.TopRight.Lon)
	v.SetDefault("grid.alphabet", gridcode.NATO.Name())
	v.SetDefault("grid.code_length", gridcode.DefaultLength)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", "10s")
	v.SetDefault("server.base_url", "http://localhost:8080/")
	v.SetDefault("server.rate_limit", 0.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("places.file", "")
	v.SetDefault("places.index", "data/places.gob")
	v.SetDefault("postgis.host", "localhost")
	v.SetDefault("postgis.port", 5432)
	v.SetDefault("postgis.user", "postgres")
	v.SetDefault("postgis.password", "")
	v.SetDefault("postgis.database", "geodb")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("fatal error config file: %w", err)
			}
		}
	}

	// Environment variables: NATOGRID_GRID_MIN_LAT → grid.min_lat
	v.SetEnvPrefix("NATOGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Grid.Bounds().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := gridcode.AlphabetByName(c.Grid.Alphabet); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Grid.CodeLength <= 0 || c.Grid.CodeLength%2 != 0 || c.Grid.CodeLength > gridcode.MaxLength {
		errs = append(errs, fmt.Sprintf("grid.code_length must be an even number in 2-%d, got %d",
			gridcode.MaxLength, c.Grid.CodeLength))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, "server.timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server.rate_limit must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Bounds returns the configured bounding box.
func (g GridConfig) Bounds() models.BoundingBox {
	return models.NewBoundingBox(g.MinLat, g.MaxLat, g.MinLon, g.MaxLon)
}

// Codec builds the grid codec described by the configuration.
func (c *Config) Codec() (*gridcode.Codec, error) {
	alphabet, err := gridcode.AlphabetByName(c.Grid.Alphabet)
	if err != nil {
		return nil, err
	}
	return gridcode.New(c.Grid.Bounds(), alphabet, c.Grid.CodeLength)
}

// DSN returns the lib/pq connection string for the PostGIS store.
func (p PostGISConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}
