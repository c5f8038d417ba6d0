// Package config loads this program's connection and mount settings, the
// way the teacher loads its Linear API key: a YAML file overridden by
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SSH   SSHConfig   `yaml:"ssh"`
	Mount MountConfig `yaml:"mount"`
	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`
}

// SSHConfig parameterizes the connection to the tablet. This is how the
// out-of-scope "connection bootstrap" collaborator is configured; the
// document model itself never sees these fields.
type SSHConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	User                  string `yaml:"user"`
	IdentityFile          string `yaml:"identity_file"`
	KnownHostsFingerprint string `yaml:"known_hosts_fingerprint"`
}

type MountConfig struct {
	DefaultPath string `yaml:"default_path"`
	AllowOther  bool   `yaml:"allow_other"`
	VolumeName  string `yaml:"volume_name"`
}

type CacheConfig struct {
	TemplateDir string `yaml:"template_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		SSH: SSHConfig{
			Host: "10.11.99.1",
			Port: 22,
			User: "root",
		},
		Mount: MountConfig{
			VolumeName: "remarkable",
		},
		Cache: CacheConfig{
			TemplateDir: "/usr/share/remarkable/templates",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration using the real environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment lookup
// function, so tests can supply isolated values.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	return loadFrom(getConfigPathWithEnv(getenv), getenv)
}

// LoadFile loads configuration from an explicit path, e.g. one given on
// the command line via --config, still applying environment overrides.
func LoadFile(path string) (*Config, error) {
	return loadFrom(path, os.Getenv)
}

func loadFrom(configPath string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if host := getenv("REMARKABLEFS_HOST"); host != "" {
		cfg.SSH.Host = host
	}
	if identity := getenv("REMARKABLEFS_IDENTITY_FILE"); identity != "" {
		cfg.SSH.IdentityFile = identity
	}

	return cfg, nil
}

func getConfigPath() string {
	return getConfigPathWithEnv(os.Getenv)
}

func getConfigPathWithEnv(getenv func(string) string) string {
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "remarkablefs", "config.yaml")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "remarkablefs", "config.yaml")
}
