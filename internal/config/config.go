// Package config loads valor's settings through viper: defaults, an optional
// config.yaml and VALOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/BigBadE/valor-sub000/pkg/compare"
	"github.com/BigBadE/valor-sub000/pkg/css"
	"github.com/BigBadE/valor-sub000/pkg/layout"
	"github.com/BigBadE/valor-sub000/pkg/text"
)

// EnvPrefix prefixes every environment override, e.g. VALOR_LAYOUT_VIEWPORT_WIDTH.
const EnvPrefix = "VALOR"

type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Layout  LayoutConfig  `mapstructure:"layout" yaml:"layout"`
	Compare CompareConfig `mapstructure:"compare" yaml:"compare"`
	Render  RenderConfig  `mapstructure:"render" yaml:"render"`
	Suite   SuiteConfig   `mapstructure:"suite" yaml:"suite"`
}

type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the terminal colour per log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

type LayoutConfig struct {
	ViewportWidth  float64 `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight float64 `mapstructure:"viewport_height" yaml:"viewport_height"`
	// FontFile switches text measurement from the monospace approximation
	// to a TrueType font.
	FontFile    string  `mapstructure:"font_file" yaml:"font_file"`
	CharAdvance float64 `mapstructure:"char_advance" yaml:"char_advance"`
}

type CompareConfig struct {
	Epsilon float64 `mapstructure:"epsilon" yaml:"epsilon"`
}

type RenderConfig struct {
	Background string `mapstructure:"background" yaml:"background"`
	Outline    bool   `mapstructure:"outline" yaml:"outline"`
}

type SuiteConfig struct {
	Concurrency     int           `mapstructure:"concurrency" yaml:"concurrency"`
	ReferenceSuffix string        `mapstructure:"reference_suffix" yaml:"reference_suffix"`
	ScriptTimeout   time.Duration `mapstructure:"script_timeout" yaml:"script_timeout"`
}

// NewDefaultConfig returns the configuration with only defaults applied.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "valor")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Layout --
	v.SetDefault("layout.viewport_width", 800.0)
	v.SetDefault("layout.viewport_height", 600.0)
	v.SetDefault("layout.font_file", "")
	v.SetDefault("layout.char_advance", 0.6)

	// -- Compare --
	v.SetDefault("compare.epsilon", compare.DefaultEpsilon)

	// -- Render --
	v.SetDefault("render.background", "#ffffff")
	v.SetDefault("render.outline", true)

	// -- Suite --
	v.SetDefault("suite.concurrency", 4)
	v.SetDefault("suite.reference_suffix", ".chromium.json")
	v.SetDefault("suite.script_timeout", "5s")
}

// NewViper returns a viper instance with defaults, environment binding and,
// when path is set, that config file. Without a path it looks for an
// optional config.yaml in the working directory.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks for values the layout engine and suite runner cannot use.
func (c *Config) Validate() error {
	if c.Layout.ViewportWidth <= 0 || c.Layout.ViewportHeight <= 0 {
		return fmt.Errorf("layout viewport must be positive, got %gx%g", c.Layout.ViewportWidth, c.Layout.ViewportHeight)
	}
	if c.Layout.FontFile == "" && c.Layout.CharAdvance <= 0 {
		return fmt.Errorf("layout.char_advance must be positive")
	}
	if c.Compare.Epsilon < 0 {
		return fmt.Errorf("compare.epsilon must not be negative")
	}
	if c.Suite.Concurrency <= 0 {
		return fmt.Errorf("suite.concurrency must be a positive integer")
	}
	if _, ok := css.ParseColor(c.Render.Background); !ok {
		return fmt.Errorf("render.background %q is not a colour", c.Render.Background)
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	return nil
}

// BackgroundColor parses Render.Background. Validate has already rejected
// values it cannot parse.
func (c *Config) BackgroundColor() css.Color {
	col, _ := css.ParseColor(c.Render.Background)
	return col
}

// LayoutOptions builds the engine options for the configured viewport and
// text measurer.
func (c *Config) LayoutOptions() ([]layout.Option, error) {
	var m text.Measurer = text.Monospace{Advance: c.Layout.CharAdvance}
	if c.Layout.FontFile != "" {
		fm, err := text.NewFontMeasurer(c.Layout.FontFile)
		if err != nil {
			return nil, fmt.Errorf("layout.font_file: %w", err)
		}
		m = fm
	}
	return []layout.Option{
		layout.WithViewport(c.Layout.ViewportWidth, c.Layout.ViewportHeight),
		layout.WithMeasurer(m),
	}, nil
}
