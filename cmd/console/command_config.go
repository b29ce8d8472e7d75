package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"console/internal/config"
)

type ConfigCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

// configOutput is the effective configuration after defaults, the config
// file and environment overrides. The token itself is never printed.
type configOutput struct {
	ConfigPath string           `json:"config_path,omitempty" toml:"config_path,omitempty"`
	Remote     effectiveRemote  `json:"remote" toml:"remote"`
	Poll       effectivePoll    `json:"poll" toml:"poll"`
	Auth       effectiveAuth    `json:"auth" toml:"auth"`
	Storage    effectiveStorage `json:"storage" toml:"storage"`
	Logging    effectiveLogging `json:"logging" toml:"logging"`
}

type effectiveRemote struct {
	BaseURL               string `json:"base_url" toml:"base_url"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" toml:"request_timeout_seconds"`
}

type effectivePoll struct {
	IntervalSeconds int    `json:"interval_seconds" toml:"interval_seconds"`
	DefaultFilter   string `json:"default_filter" toml:"default_filter"`
}

type effectiveAuth struct {
	TokenPath   string `json:"token_path" toml:"token_path"`
	TokenSource string `json:"token_source" toml:"token_source"`
}

type effectiveStorage struct {
	Backend string `json:"backend" toml:"backend"`
}

type effectiveLogging struct {
	Level string `json:"level" toml:"level"`
}

func NewConfigCommand(stdout, stderr io.Writer, loadConfig func() (config.Config, error)) *ConfigCommand {
	return &ConfigCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	cfg := config.Default()
	if !*defaults {
		cfg, err = c.loadConfig()
		if err != nil {
			return err
		}
	}
	payload, err := buildConfigOutput(cfg)
	if err != nil {
		return err
	}
	return writeConfigOutput(c.stdout, resolvedFormat, payload)
}

func buildConfigOutput(cfg config.Config) (configOutput, error) {
	tokenPath, err := cfg.ResolveTokenPath()
	if err != nil {
		return configOutput{}, err
	}
	configPath, _ := config.ConfigPath()
	tokenSource := "file"
	if cfg.Token() != "" {
		tokenSource = "env"
	}
	return configOutput{
		ConfigPath: configPath,
		Remote: effectiveRemote{
			BaseURL:               cfg.BaseURL(),
			RequestTimeoutSeconds: int(cfg.RequestTimeout().Seconds()),
		},
		Poll: effectivePoll{
			IntervalSeconds: int(cfg.PollInterval().Seconds()),
			DefaultFilter:   string(cfg.DefaultFilter()),
		},
		Auth: effectiveAuth{
			TokenPath:   tokenPath,
			TokenSource: tokenSource,
		},
		Storage: effectiveStorage{
			Backend: cfg.StorageBackend(),
		},
		Logging: effectiveLogging{
			Level: cfg.LogLevel(),
		},
	}, nil
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	default:
		return "", errors.New("invalid format: must be json or toml")
	}
}
