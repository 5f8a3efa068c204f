package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRemoteName = "upstream"
	DefaultRemoteURL  = "https://github.com/templateops/template.git"
	DefaultRemoteRef  = "main"
)

type RemoteConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Ref  string `yaml:"ref"`
}

type TimeoutConfig struct {
	FetchSeconds   int `yaml:"fetch_seconds"`
	StartupSeconds int `yaml:"startup_seconds"`
}

type Config struct {
	Remote   RemoteConfig  `yaml:"remote"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

func DefaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{
			Name: DefaultRemoteName,
			URL:  DefaultRemoteURL,
			Ref:  DefaultRemoteRef,
		},
		Timeouts: TimeoutConfig{
			FetchSeconds:   30,
			StartupSeconds: 3,
		},
	}
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Timeouts.FetchSeconds) * time.Second
}

func (c *Config) StartupTimeout() time.Duration {
	return time.Duration(c.Timeouts.StartupSeconds) * time.Second
}

func ConfigPath(root string) string {
	return filepath.Join(root, ConfigDirName, "config.yaml")
}

// LoadConfig reads the deployment's config file, falling back to defaults for
// a missing file and for any field left unset.
func LoadConfig(root string) (*Config, error) {
	path := ConfigPath(root)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	def := DefaultConfig()
	if cfg.Remote.Name == "" {
		cfg.Remote.Name = def.Remote.Name
	}
	if cfg.Remote.URL == "" {
		cfg.Remote.URL = def.Remote.URL
	}
	if cfg.Remote.Ref == "" {
		cfg.Remote.Ref = def.Remote.Ref
	}
	if cfg.Timeouts.FetchSeconds <= 0 {
		cfg.Timeouts.FetchSeconds = def.Timeouts.FetchSeconds
	}
	if cfg.Timeouts.StartupSeconds <= 0 {
		cfg.Timeouts.StartupSeconds = def.Timeouts.StartupSeconds
	}

	return cfg, nil
}

func SaveConfig(root string, cfg *Config) error {
	path := ConfigPath(root)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
