package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/writer"
)

const (
	// EnvPrefix is prepended to every key when read from the environment,
	// e.g. STMT_PORT.
	EnvPrefix = "STMT"

	DefaultHost        = "127.0.0.1"
	DefaultPort        = 8080
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 20 * 1024 * 1024 // 20MB
	DefaultFormat      = "pretty"
	DefaultEnvFile     = ".env"
)

// Config holds the settings shared by every command.
type Config struct {
	// HTTP server
	Host string
	Port int

	LogLevel string
	// MaxFileSize caps uploaded and read PDFs, in bytes.
	MaxFileSize int64

	// YearPivot maps two-digit years below it to 20xx.
	YearPivot int
	// FallThrough lets the dispatcher try later issuers when the matched
	// issuer's extractor fails.
	FallThrough bool

	Format string
}

// Default returns a configuration with the built-in defaults.
func Default() *Config {
	return &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
		YearPivot:   parser.DefaultYearPivot,
		FallThrough: false,
		Format:      DefaultFormat,
	}
}

// DefineFlags registers the configuration flags on fs.
func DefineFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "Config file (yaml, json or toml)")
	fs.String("host", d.Host, "HTTP listen host (serve)")
	fs.Int("port", d.Port, "HTTP listen port (serve)")
	fs.String("loglevel", d.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("maxfilesize", d.MaxFileSize, "Maximum PDF size in bytes")
	fs.Int("yearpivot", d.YearPivot, "Two-digit years below this are 20xx, others 19xx")
	fs.Bool("fallthrough", d.FallThrough, "Try later issuers when extraction fails")
	fs.StringP("format", "f", d.Format, "Output format (pretty, json, yaml, csv)")
}

// Load resolves the configuration from, in order of precedence, flags,
// STMT_* environment variables (including ones set by a .env file), the
// config file and the defaults.
func Load(fs *pflag.FlagSet) (*Config, error) {
	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	d := Default()
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("loglevel", d.LogLevel)
	v.SetDefault("maxfilesize", d.MaxFileSize)
	v.SetDefault("yearpivot", d.YearPivot)
	v.SetDefault("fallthrough", d.FallThrough)
	v.SetDefault("format", d.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Host:        v.GetString("host"),
		Port:        v.GetInt("port"),
		LogLevel:    strings.ToLower(v.GetString("loglevel")),
		MaxFileSize: v.GetInt64("maxfilesize"),
		YearPivot:   v.GetInt("yearpivot"),
		FallThrough: v.GetBool("fallthrough"),
		Format:      v.GetString("format"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadEnvFile exports the variables in path unless they are already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	err := gotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.YearPivot < 1 || c.YearPivot > 99 {
		return fmt.Errorf("year pivot must be between 1 and 99, got %d", c.YearPivot)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if _, err := writer.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// OutputFormat returns the validated output format.
func (c *Config) OutputFormat() writer.Format {
	f, err := writer.ParseFormat(c.Format)
	if err != nil {
		return writer.FormatPretty
	}
	return f
}

// Dispatcher builds the recognition dispatcher these settings describe.
func (c *Config) Dispatcher(opts ...parser.Option) *parser.Dispatcher {
	registry := parser.DefaultRegistry(parser.Options{YearPivot: c.YearPivot})
	if c.FallThrough {
		opts = append(opts, parser.WithPolicy(parser.FallThrough))
	}
	return parser.NewDispatcher(registry, opts...)
}
