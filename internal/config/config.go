package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// RetryConfig is the YAML shape of a txcore.RetryPolicy; durations are
// strings so the file stays human-editable ("250ms", "5s").
// BuildRetryPolicy parses them into a RetryPolicy.
type RetryConfig struct {
	MaxRetries int     `yaml:"max_retries"`
	BaseDelay  string  `yaml:"base_delay"`
	MaxDelay   string  `yaml:"max_delay"`
	Multiplier float64 `yaml:"multiplier"`
	Jitter     string  `yaml:"jitter"`
}

// RunConfig is the top-level shape of a txrunner.yaml file.
type RunConfig struct {
	Connection     ConnectionConfig  `yaml:"connection"`
	Retry          RetryConfig       `yaml:"retry"`
	IsolationLevel string            `yaml:"isolation_level"`
	Params         map[string]string `yaml:"params"`
	Timeout        string            `yaml:"timeout"`
}

const ConfigFileName = "txrunner.yaml"

// Load reads and parses ConfigFileName from sourcePath.
func Load(sourcePath string) (*RunConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
