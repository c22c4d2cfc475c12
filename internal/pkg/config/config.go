package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/adiazny/calendar-events/internal/pkg/marker"
)

type Config struct {
	BaseURL string        `env:"EVENTS_API_URL,required"`
	Timeout time.Duration `env:"EVENTS_API_TIMEOUT" envDefault:"10s"`

	DotColor      string `env:"MARKER_DOT_COLOR" envDefault:"blue"`
	SelectedColor string `env:"MARKER_SELECTED_COLOR" envDefault:"#00adf5"`

	Timezone string `env:"TIMEZONE" envDefault:"UTC"`

	TopicARN string `env:"SHARE_TOPIC_ARN"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file from the working directory and then
// parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file %w", err)
	}

	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}

	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("error parsing environment variables %w", err)
	}

	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("error parsing environment variables: EVENTS_API_URL is empty")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("error parsing environment variables: EVENTS_API_TIMEOUT must be positive, got %s", cfg.Timeout)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Palette is the marker colour configuration.
func (c *Config) Palette() marker.Palette {
	return marker.Palette{
		DotColor:       c.DotColor,
		HighlightColor: c.SelectedColor,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("error loading timezone %q %w", c.Timezone, err)
	}
	return loc, nil
}

// NewLogger builds the component logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger(component string) *logrus.Entry {
	return NewLogger(c.LogLevel, c.LogFormat).WithField("component", component)
}

// NewLogger builds a stdout logger. Unknown levels fall back to info.
func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if strings.EqualFold(format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}
