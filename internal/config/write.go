package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const header = `# lifeos configuration
# Every key can be overridden with LIFEOS_<KEY>, e.g. LIFEOS_GATEWAY_WORKERS=8.
# Leave remote_url empty to use the local database.
`

// MarshalYAML writes durations as "10s" rather than nanoseconds
func (g GatewayConfig) MarshalYAML() (any, error) {
	return struct {
		Timeout        string `yaml:"timeout"`
		Workers        int    `yaml:"workers"`
		MaxAttempts    int    `yaml:"max_attempts"`
		InitialBackoff string `yaml:"initial_backoff"`
		MaxBackoff     string `yaml:"max_backoff"`
	}{
		Timeout:        g.Timeout.String(),
		Workers:        g.Workers,
		MaxAttempts:    g.MaxAttempts,
		InitialBackoff: g.InitialBackoff.String(),
		MaxBackoff:     g.MaxBackoff.String(),
	}, nil
}

// Marshal renders cfg as a commented YAML document
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path. It refuses to
// replace an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
