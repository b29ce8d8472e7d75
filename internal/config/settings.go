package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"console/internal/types"
)

const (
	defaultBaseURL               = "http://127.0.0.1:8001/api"
	defaultRequestTimeoutSeconds = 15
	defaultPollIntervalSeconds   = 10
	minRequestTimeoutSeconds     = 1
	maxRequestTimeoutSeconds     = 120
)

const (
	StorageBackendBbolt = "bbolt"
	StorageBackendFile  = "file"
)

const (
	envBaseURL      = "CONSOLE_BASE_URL"
	envToken        = "CONSOLE_TOKEN"
	envLogLevel     = "CONSOLE_LOG_LEVEL"
	envPollInterval = "CONSOLE_POLL_INTERVAL"
)

type Config struct {
	Remote  RemoteConfig  `toml:"remote"`
	Poll    PollConfig    `toml:"poll"`
	Auth    AuthConfig    `toml:"auth"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`

	// token is only ever taken from the environment, never from the file.
	token string
}

type RemoteConfig struct {
	BaseURL               string `toml:"base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

type PollConfig struct {
	IntervalSeconds int    `toml:"interval_seconds"`
	DefaultFilter   string `toml:"default_filter"`
}

type AuthConfig struct {
	TokenPath string `toml:"token_path"`
}

type StorageConfig struct {
	Backend string `toml:"backend"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		Remote: RemoteConfig{
			BaseURL:               defaultBaseURL,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Poll: PollConfig{
			IntervalSeconds: defaultPollIntervalSeconds,
			DefaultFilter:   string(types.StatusFilterAll),
		},
		Storage: StorageConfig{
			Backend: StorageBackendBbolt,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads .env from the working directory (if present), the TOML config
// file, then applies environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := loadFromPath(path)
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func loadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if value := strings.TrimSpace(getenv(envBaseURL)); value != "" {
		c.Remote.BaseURL = value
	}
	if value := strings.TrimSpace(getenv(envToken)); value != "" {
		c.token = value
	}
	if value := strings.TrimSpace(getenv(envLogLevel)); value != "" {
		c.Logging.Level = value
	}
	if value := strings.TrimSpace(getenv(envPollInterval)); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			c.Poll.IntervalSeconds = seconds
		}
	}
}

func (c Config) BaseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	if base == "" {
		return defaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return base
}

func (c Config) RequestTimeout() time.Duration {
	seconds := c.Remote.RequestTimeoutSeconds
	if seconds <= 0 {
		seconds = defaultRequestTimeoutSeconds
	}
	seconds = min(max(seconds, minRequestTimeoutSeconds), maxRequestTimeoutSeconds)
	return time.Duration(seconds) * time.Second
}

func (c Config) PollInterval() time.Duration {
	seconds := c.Poll.IntervalSeconds
	if seconds <= 0 {
		seconds = defaultPollIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

func (c Config) DefaultFilter() types.StatusFilter {
	filter, err := types.ParseStatusFilter(c.Poll.DefaultFilter)
	if err != nil {
		return types.StatusFilterAll
	}
	return filter
}

// Token returns the bearer token supplied through the environment, if any.
func (c Config) Token() string {
	return c.token
}

func (c Config) ResolveTokenPath() (string, error) {
	path := strings.TrimSpace(c.Auth.TokenPath)
	if path == "" {
		return TokenPath()
	}
	return resolveConfigPath(path)
}

func (c Config) StorageBackend() string {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case StorageBackendFile:
		return StorageBackendFile
	default:
		return StorageBackendBbolt
	}
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) Validate() error {
	parsed, err := url.Parse(c.BaseURL())
	if err != nil {
		return err
	}
	if parsed.Host == "" {
		return errors.New("remote.base_url must include a host")
	}
	if _, err := types.ParseStatusFilter(c.Poll.DefaultFilter); err != nil {
		return err
	}
	return nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func resolveConfigPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, path), nil
}
