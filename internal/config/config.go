// Package config provides configuration management for the email-sender
// operator.
//
// Configuration is loaded from a config.yaml file in a single directory
// (default ~/.config/emailsender, overridable via --config-path). Defaults
// are applied first, so a missing file or missing keys are not errors.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"emailsender/pkg/logging"
)

const (
	userConfigDir  = ".config/emailsender"
	configFileName = "config.yaml"
)

// OperatorConfig is the top-level operator configuration.
type OperatorConfig struct {
	// Namespace restricts watching to one namespace. Empty watches all
	// namespaces.
	Namespace string `yaml:"namespace"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	Controller ControllerConfig `yaml:"controller"`
}

// ControllerConfig tunes the event dispatcher wrapped around the handlers.
type ControllerConfig struct {
	// Workers is the number of concurrent reconciliation workers.
	Workers int `yaml:"workers"`

	// MaxRetries bounds dispatcher-level retries of a failed handler
	// invocation. Permanent conditions are never retried regardless.
	MaxRetries int `yaml:"maxRetries"`

	// RetryBackoffSeconds is the fixed interval between retries.
	RetryBackoffSeconds int `yaml:"retryBackoffSeconds"`

	// HandlerTimeoutSeconds caps one handler invocation end to end.
	HandlerTimeoutSeconds int `yaml:"handlerTimeoutSeconds"`
}

// RetryBackoff returns the fixed retry interval as a duration.
func (c ControllerConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffSeconds) * time.Second
}

// HandlerTimeout returns the handler timeout as a duration.
func (c ControllerConfig) HandlerTimeout() time.Duration {
	return time.Duration(c.HandlerTimeoutSeconds) * time.Second
}

// GetDefaultConfig returns the default operator configuration.
func GetDefaultConfig() OperatorConfig {
	return OperatorConfig{
		LogLevel: "info",
		Controller: ControllerConfig{
			Workers:               2,
			MaxRetries:            3,
			RetryBackoffSeconds:   30,
			HandlerTimeoutSeconds: 60,
		},
	}
}

// GetDefaultConfigPathOrPanic returns ~/.config/emailsender.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from config.yaml in the specified
// directory, on top of the defaults. A missing file yields the defaults.
func LoadConfig(configPath string) (OperatorConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("Config", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return OperatorConfig{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return OperatorConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	logging.Info("Config", "Loaded configuration from %s", configFilePath)
	return config, nil
}
