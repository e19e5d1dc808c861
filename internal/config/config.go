package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/whistle/internal/errors"
	"github.com/vango-dev/whistle/pkg/client"
)

// ConfigFileNames are the file names Load looks for, in order.
var ConfigFileNames = []string{"whistle.json", "whistle.jsonc", "whistle.yaml", "whistle.yml"}

const (
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "text"
)

// Config represents the complete whistle configuration file.
type Config struct {
	// Socket contains connection settings.
	Socket SocketConfig `json:"socket" yaml:"socket"`

	// Events contains event binding settings.
	Events EventsConfig `json:"events" yaml:"events"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// Debug contains the debug HTTP server settings.
	Debug DebugConfig `json:"debug" yaml:"debug"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SocketConfig contains connection settings.
type SocketConfig struct {
	// URL is the socket used by mount points without data-whistle-socket.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// BaseDelay is multiplied by the retry count between reconnects.
	BaseDelay Duration `json:"baseDelay,omitempty" yaml:"baseDelay,omitempty"`

	// MaxDelay caps the reconnect delay; zero leaves it uncapped.
	MaxDelay Duration `json:"maxDelay,omitempty" yaml:"maxDelay,omitempty"`

	// WriteTimeout bounds each message write.
	WriteTimeout Duration `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// HandshakeTimeout bounds the opening handshake.
	HandshakeTimeout Duration `json:"handshakeTimeout,omitempty" yaml:"handshakeTimeout,omitempty"`

	// MaxMessageSize is the read limit per message, in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty" yaml:"maxMessageSize,omitempty"`
}

// EventsConfig contains event binding settings.
type EventsConfig struct {
	// DebounceDelay is the input debounce window.
	DebounceDelay Duration `json:"debounceDelay,omitempty" yaml:"debounceDelay,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// DebugConfig contains the debug HTTP server settings.
type DebugConfig struct {
	// Addr is the listen address; empty disables the server.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	defaults := client.DefaultSocketConfig()
	return &Config{
		Socket: SocketConfig{
			BaseDelay:        Duration(defaults.BaseDelay),
			MaxDelay:         Duration(defaults.MaxDelay),
			WriteTimeout:     Duration(defaults.WriteTimeout),
			HandshakeTimeout: Duration(defaults.HandshakeTimeout),
			MaxMessageSize:   defaults.MaxMessageSize,
		},
		Events: EventsConfig{
			DebounceDelay: Duration(defaults.DebounceDelay),
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads configuration from the first config file found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("W102").
		WithDetail("No whistle.json, whistle.jsonc or whistle.yaml found in " + dir).
		WithSuggestion("Create whistle.json or pass --config")
}

// LoadFile reads configuration from the specified file path. JSON files
// may contain comments and trailing commas.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("W102").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("W100").Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, errors.New("W100").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("W100").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	default:
		return nil, errors.New("W103").
			WithDetail("Cannot load " + filepath.Base(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	defaults := New()
	if c.Socket.BaseDelay == 0 {
		c.Socket.BaseDelay = defaults.Socket.BaseDelay
	}
	if c.Socket.WriteTimeout == 0 {
		c.Socket.WriteTimeout = defaults.Socket.WriteTimeout
	}
	if c.Socket.HandshakeTimeout == 0 {
		c.Socket.HandshakeTimeout = defaults.Socket.HandshakeTimeout
	}
	if c.Socket.MaxMessageSize == 0 {
		c.Socket.MaxMessageSize = defaults.Socket.MaxMessageSize
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("W101").WithDetail(detail)
	}

	if c.Socket.URL != "" {
		u, err := url.Parse(c.Socket.URL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			return invalid("socket.url must be a ws:// or wss:// URL")
		}
	}
	if c.Socket.BaseDelay <= 0 {
		return invalid("socket.baseDelay must be positive")
	}
	if c.Socket.MaxDelay < 0 {
		return invalid("socket.maxDelay must not be negative")
	}
	if c.Socket.WriteTimeout < 0 || c.Socket.HandshakeTimeout < 0 {
		return invalid("socket timeouts must not be negative")
	}
	if c.Socket.MaxMessageSize < 0 {
		return invalid("socket.maxMessageSize must not be negative")
	}
	if c.Events.DebounceDelay < 0 {
		return invalid("events.debounceDelay must not be negative")
	}
	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		return invalid(fmt.Sprintf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return invalid(fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	return nil
}

// ClientConfig converts the socket and event settings.
func (c *Config) ClientConfig() *client.SocketConfig {
	return &client.SocketConfig{
		BaseDelay:        time.Duration(c.Socket.BaseDelay),
		MaxDelay:         time.Duration(c.Socket.MaxDelay),
		DebounceDelay:    time.Duration(c.Events.DebounceDelay),
		WriteTimeout:     time.Duration(c.Socket.WriteTimeout),
		HandshakeTimeout: time.Duration(c.Socket.HandshakeTimeout),
		MaxMessageSize:   c.Socket.MaxMessageSize,
	}
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger returns a logger writing to w with the configured level and
// format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, ok := logLevels[strings.ToLower(c.Log.Level)]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.Log.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the nearest directory with
// a config file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("W102").
				WithDetail("No config file found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the nearest configuration above the working
// directory, or the defaults when there is none.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		if errors.HasCode(err, "W102") {
			return New(), nil
		}
		return nil, err
	}

	return Load(root)
}
