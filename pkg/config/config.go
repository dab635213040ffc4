// Package config provides configuration loading for the array engine:
// YAML files with ${ENV_VAR} substitution, plus validated defaults for
// the IPC channel and logging.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	verrors "github.com/XinyuZeng/vortex/pkg/errors"
	"github.com/XinyuZeng/vortex/pkg/logger"
)

// IPCConfig holds the tunables of the streaming message channel.
type IPCConfig struct {
	// MaxHeaderBytes bounds a single header payload. A declared length
	// beyond this is treated as protocol corruption rather than an
	// allocation request.
	MaxHeaderBytes int `yaml:"max_header_bytes"`
	// Compression names the codec applied to body buffers: "", "zstd",
	// "lz4" or "snappy".
	Compression string `yaml:"compression"`
}

// Config is the root configuration.
type Config struct {
	Logging logger.Config `yaml:"logging"`
	IPC     IPCConfig     `yaml:"ipc"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Logging: logger.Config{
			Level:    "info",
			Encoding: "json",
		},
		IPC: IPCConfig{
			MaxHeaderBytes: 1 << 20,
		},
	}
}

// Load reads a YAML configuration file, substituting ${ENV_VAR}
// references before parsing. Missing keys keep their defaults.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path is caller-controlled
	if err != nil {
		return nil, verrors.Wrap(err, verrors.ErrorTypeConfig, "reading config file")
	}

	content := substituteEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, verrors.Wrap(err, verrors.ErrorTypeConfig, "parsing config YAML")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.IPC.MaxHeaderBytes <= 0 {
		return verrors.Newf(verrors.ErrorTypeConfig,
			"ipc.max_header_bytes must be positive, got %d", c.IPC.MaxHeaderBytes)
	}
	switch c.IPC.Compression {
	case "", "zstd", "lz4", "snappy":
	default:
		return verrors.Newf(verrors.ErrorTypeConfig,
			"unknown ipc.compression %q", c.IPC.Compression)
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable
// values.
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
