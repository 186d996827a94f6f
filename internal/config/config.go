// ABOUTME: Configuration loading and parsing for support-relay
// ABOUTME: Supports YAML or TOML files with environment variable expansion, or env-only setup

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Store backend names. They match the names the store package accepts.
const (
	BackendFirebase = "firebase"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPebble   = "pebble"
	BackendMemory   = "memory"
)

// Config represents the complete support-relay configuration
type Config struct {
	Telegram TelegramConfig `yaml:"telegram" toml:"telegram"`
	Store    StoreConfig    `yaml:"store" toml:"store"`
	Liveness LivenessConfig `yaml:"liveness" toml:"liveness"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
	Messages MessagesConfig `yaml:"messages" toml:"messages"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// TelegramConfig holds Bot API settings
type TelegramConfig struct {
	Token string `yaml:"token" toml:"token"`
	// AdminID is the only account allowed to reply to users
	AdminID     ChatID `yaml:"admin_id" toml:"admin_id"`
	APIEndpoint string `yaml:"api_endpoint" toml:"api_endpoint"`
	Debug       bool   `yaml:"debug" toml:"debug"`

	PollTimeout    time.Duration `yaml:"-" toml:"-"`
	RequestTimeout time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	PollTimeoutRaw    string `yaml:"poll_timeout" toml:"poll_timeout"`
	RequestTimeoutRaw string `yaml:"request_timeout" toml:"request_timeout"`
}

// StoreConfig selects and configures the conversation store
type StoreConfig struct {
	Backend  string         `yaml:"backend" toml:"backend"`
	SQLite   PathConfig     `yaml:"sqlite" toml:"sqlite"`
	Pebble   PathConfig     `yaml:"pebble" toml:"pebble"`
	Redis    RedisConfig    `yaml:"redis" toml:"redis"`
	Firebase FirebaseConfig `yaml:"firebase" toml:"firebase"`

	Timeout    time.Duration `yaml:"-" toml:"-"`
	TimeoutRaw string        `yaml:"timeout" toml:"timeout"`
}

// PathConfig holds an on-disk location
type PathConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr      string `yaml:"addr" toml:"addr"`
	Username  string `yaml:"username" toml:"username"`
	Password  string `yaml:"password" toml:"password"`
	DB        int    `yaml:"db" toml:"db"`
	KeyPrefix string `yaml:"key_prefix" toml:"key_prefix"`
}

// FirebaseConfig holds Realtime Database settings
type FirebaseConfig struct {
	DatabaseURL     string `yaml:"database_url" toml:"database_url"`
	CredentialsFile string `yaml:"credentials_file" toml:"credentials_file"`
	Root            string `yaml:"root" toml:"root"`
}

// LivenessConfig holds the uptime endpoint settings
type LivenessConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
	Body string `yaml:"body" toml:"body"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Addr    string `yaml:"addr" toml:"addr"`
	Path    string `yaml:"path" toml:"path"`
}

// MessagesConfig overrides user-facing texts. Empty fields keep the built-in text.
type MessagesConfig struct {
	Greeting          string `yaml:"greeting" toml:"greeting"`
	Declined          string `yaml:"declined" toml:"declined"`
	PleaseWait        string `yaml:"please_wait" toml:"please_wait"`
	AdminNotification string `yaml:"admin_notification" toml:"admin_notification"`
	ReplyPrompt       string `yaml:"reply_prompt" toml:"reply_prompt"`
	AdminReply        string `yaml:"admin_reply" toml:"admin_reply"`
	ReplySent         string `yaml:"reply_sent" toml:"reply_sent"`
	StartMarker       string `yaml:"start_marker" toml:"start_marker"`
	AcceptLabel       string `yaml:"accept_label" toml:"accept_label"`
	DeclineLabel      string `yaml:"decline_label" toml:"decline_label"`
	ReplyLabel        string `yaml:"reply_label" toml:"reply_label"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// ChatID is a Telegram chat or user ID. It accepts a number or a quoted number.
type ChatID int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ChatID) UnmarshalYAML(node *yaml.Node) error {
	return c.parse(node.Value)
}

// UnmarshalTOML implements toml.Unmarshaler.
func (c *ChatID) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		*c = ChatID(x)
		return nil
	case string:
		return c.parse(x)
	default:
		return fmt.Errorf("chat id must be an integer, got %T", v)
	}
}

func (c *ChatID) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*c = 0
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", s, err)
	}
	*c = ChatID(id)
	return nil
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return finish(&cfg)
}

// LoadEnv builds a Config from environment variables alone:
// BOT_TOKEN, ADMIN_ID, FIREBASE_DB_URL, FIREBASE_CREDENTIALS, PORT,
// plus STORE_BACKEND, SQLITE_PATH, REDIS_ADDR and LOG_LEVEL.
// A set FIREBASE_DB_URL selects the firebase backend unless STORE_BACKEND says otherwise.
func LoadEnv() (*Config, error) {
	var cfg Config
	cfg.Telegram.Token = os.Getenv("BOT_TOKEN")
	if err := cfg.Telegram.AdminID.parse(os.Getenv("ADMIN_ID")); err != nil {
		return nil, fmt.Errorf("parsing ADMIN_ID: %w", err)
	}

	cfg.Store.Backend = os.Getenv("STORE_BACKEND")
	cfg.Store.Firebase.DatabaseURL = os.Getenv("FIREBASE_DB_URL")
	cfg.Store.Firebase.CredentialsFile = os.Getenv("FIREBASE_CREDENTIALS")
	if cfg.Store.Firebase.DatabaseURL != "" {
		if cfg.Store.Backend == "" {
			cfg.Store.Backend = BackendFirebase
		}
		if cfg.Store.Firebase.CredentialsFile == "" {
			cfg.Store.Firebase.CredentialsFile = "serviceAccountKey.json"
		}
	}
	cfg.Store.SQLite.Path = os.Getenv("SQLITE_PATH")
	cfg.Store.Redis.Addr = os.Getenv("REDIS_ADDR")

	if port := os.Getenv("PORT"); port != "" {
		cfg.Liveness.Addr = "0.0.0.0:" + port
	}
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	return finish(&cfg)
}

// finish applies defaults, parses raw values and validates.
func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Telegram.PollTimeoutRaw == "" {
		cfg.Telegram.PollTimeoutRaw = "60s"
	}
	if cfg.Telegram.RequestTimeoutRaw == "" {
		cfg.Telegram.RequestTimeoutRaw = "10s"
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendSQLite
	}
	if cfg.Store.TimeoutRaw == "" {
		cfg.Store.TimeoutRaw = "5s"
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = "support-relay.db"
	}
	if cfg.Store.Pebble.Path == "" {
		cfg.Store.Pebble.Path = "support-relay.pebble"
	}
	if cfg.Store.Redis.Addr == "" {
		cfg.Store.Redis.Addr = "localhost:6379"
	}
	if cfg.Store.Redis.KeyPrefix == "" {
		cfg.Store.Redis.KeyPrefix = "support-relay:"
	}

	if cfg.Liveness.Addr == "" {
		cfg.Liveness.Addr = "0.0.0.0:8080"
	}

	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = "127.0.0.1:9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram.token is required")
	}
	if c.Telegram.AdminID == 0 {
		return errors.New("telegram.admin_id is required")
	}

	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required")
		}
	case BackendPebble:
		if c.Store.Pebble.Path == "" {
			return errors.New("store.pebble.path is required")
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New("store.redis.addr is required")
		}
	case BackendFirebase:
		if c.Store.Firebase.DatabaseURL == "" {
			return errors.New("store.firebase.database_url is required")
		}
		if c.Store.Firebase.CredentialsFile == "" {
			return errors.New("store.firebase.credentials_file is required")
		}
		if _, err := os.Stat(c.Store.Firebase.CredentialsFile); err != nil {
			return fmt.Errorf("store.firebase.credentials_file: %w", err)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("store.backend %q is not one of firebase, sqlite, redis, pebble, memory", c.Store.Backend)
	}

	if c.Liveness.Addr == "" {
		return errors.New("liveness.addr is required")
	}
	if c.Metrics.Enabled {
		if c.Metrics.Addr == c.Liveness.Addr {
			return errors.New("metrics.addr must differ from liveness.addr")
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") || c.Metrics.Path == "/" {
			return fmt.Errorf("metrics.path %q must start with / and not be the root", c.Metrics.Path)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	cfg.Telegram.PollTimeout, err = time.ParseDuration(cfg.Telegram.PollTimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing telegram.poll_timeout %q: %w", cfg.Telegram.PollTimeoutRaw, err)
	}

	cfg.Telegram.RequestTimeout, err = time.ParseDuration(cfg.Telegram.RequestTimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing telegram.request_timeout %q: %w", cfg.Telegram.RequestTimeoutRaw, err)
	}

	cfg.Store.Timeout, err = time.ParseDuration(cfg.Store.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing store.timeout %q: %w", cfg.Store.TimeoutRaw, err)
	}

	return nil
}
