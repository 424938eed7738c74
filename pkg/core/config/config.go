package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	propserr "github.com/winterSteve25/props/pkg/core/error"
	propslog "github.com/winterSteve25/props/pkg/core/log"
)

// EnvVar names the environment variable holding an explicit config path
const EnvVar = "PROPS_CONFIG"

// Config holds the complete application configuration
type Config struct {
	Log     LogConfig     `toml:"log" yaml:"log"`
	Render  RenderConfig  `toml:"render" yaml:"render"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// RenderConfig holds diagnostic rendering settings
type RenderConfig struct {
	Color bool `toml:"color" yaml:"color"`
}

// ParserConfig holds parser settings
type ParserConfig struct {
	Recovery           string `toml:"recovery" yaml:"recovery"`
	PrintAsEncountered bool   `toml:"print_as_encountered" yaml:"print_as_encountered"`
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// ServerConfig holds parse service settings. A negative CacheSize
// disables the parse result cache.
type ServerConfig struct {
	GRPCAddr        string   `toml:"grpc_addr" yaml:"grpc_addr"`
	WSAddr          string   `toml:"ws_addr" yaml:"ws_addr"`
	MaxSourceBytes  int      `toml:"max_source_bytes" yaml:"max_source_bytes"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	CacheSize       int      `toml:"cache_size" yaml:"cache_size"`
	CacheTTL        Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{
		Render: RenderConfig{Color: true},
		Parser: ParserConfig{PrintAsEncountered: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, propserr.New("config file not found").
				WithCode(propserr.CodeFileNotFound).
				WithOperation("config.Load").
				WithDetail("path", path)
		}
		return nil, propserr.Wrap(err, "failed to read config").
			WithCode(propserr.CodeIOFailed).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return nil, propserr.Wrap(err, "failed to parse config").
			WithCode(propserr.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by PROPS_CONFIG, or the first config
// found in the default locations. No file at all yields Default().
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}
	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// DefaultPaths lists the locations searched when no path is given
func DefaultPaths() []string {
	paths := []string{"./props.toml", "./props.yaml", "./props.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "props", "config.toml"))
	}
	return paths
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Parser.Recovery == "" {
		c.Parser.Recovery = "token"
	}
	if c.History.Path == "" {
		c.History.Path = defaultHistoryPath()
	}
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = "127.0.0.1:9470"
	}
	if c.Server.WSAddr == "" {
		c.Server.WSAddr = "127.0.0.1:9471"
	}
	if c.Server.MaxSourceBytes == 0 {
		c.Server.MaxSourceBytes = 1 << 20
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}
	if c.Server.CacheSize == 0 {
		c.Server.CacheSize = 256
	}
	if c.Server.CacheTTL.Duration == 0 {
		c.Server.CacheTTL.Duration = 5 * time.Minute
	}
}

func defaultHistoryPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "props", "history.db")
	}
	return filepath.Join(".", "props-history.db")
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// Validate checks values that have a fixed set of accepted spellings
func (c *Config) Validate() error {
	invalid := func(field string, value interface{}) error {
		return propserr.New(fmt.Sprintf("invalid value for %s: %v", field, value)).
			WithCode(propserr.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("field", field)
	}

	if _, ok := propslog.ParseLevel(c.Log.Level); !ok {
		return invalid("log.level", c.Log.Level)
	}
	if _, err := propslog.ParseFormat(c.Log.Format); err != nil {
		return invalid("log.format", c.Log.Format)
	}
	switch strings.ToLower(c.Parser.Recovery) {
	case "token", "line":
	default:
		return invalid("parser.recovery", c.Parser.Recovery)
	}
	if c.History.Enabled && c.History.Path == "" {
		return invalid("history.path", c.History.Path)
	}
	if c.Server.MaxSourceBytes < 0 {
		return invalid("server.max_source_bytes", c.Server.MaxSourceBytes)
	}
	return nil
}

// Logger builds a logger from the log section
func (c *Config) Logger() *propslog.Logger {
	level, _ := propslog.ParseLevel(c.Log.Level)
	format, _ := propslog.ParseFormat(c.Log.Format)
	return propslog.NewWithConfig(propslog.Config{
		Level:  level,
		Format: format,
		Output: os.Stderr,
		Name:   "props",
	})
}
