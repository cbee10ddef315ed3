package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StorageLocal    = "local"
	StorageDocstore = "docstore"
)

// Duration is a time.Duration written as "5s" in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func Default() *ClientConfig {
	return &ClientConfig{
		APIConfig: APIConfig{
			Timeout: Duration{10 * time.Second},
		},
		StorageConfig: StorageConfig{
			Type: StorageLocal,
			Path: defaultStatePath(),
		},
		LogConfig: LogConfig{
			Level: "info",
		},
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "radar.db"
	}
	return filepath.Join(dir, "radar", "radar.db")
}

// LoadConfigFromFile reads a YAML or TOML file, chosen by extension, over
// the defaults. A missing file yields the defaults.
func LoadConfigFromFile(filename string) (*ClientConfig, error) {
	config := Default()

	content, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		err = toml.Unmarshal(content, config)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(content, config)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return config, nil
}

// Save writes config as YAML to filename.
func Save(config *ClientConfig, filename string) error {
	content, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filename, content, 0o600)
}

func (c *ClientConfig) Validate() error {
	switch c.StorageConfig.Type {
	case StorageMemory:
	case StorageLocal:
		if c.StorageConfig.Path == "" {
			return fmt.Errorf("storage.path is required for local storage")
		}
	case StorageDocstore:
		if c.StorageConfig.URL == "" {
			return fmt.Errorf("storage.url is required for docstore storage")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.StorageConfig.Type)
	}

	loc := c.LocationConfig
	if (loc.Latitude == nil) != (loc.Longitude == nil) {
		return fmt.Errorf("location needs both latitude and longitude")
	}
	if loc.Latitude != nil && (*loc.Latitude < -90 || *loc.Latitude > 90) {
		return fmt.Errorf("location.latitude %v out of range", *loc.Latitude)
	}
	if loc.Longitude != nil && (*loc.Longitude < -180 || *loc.Longitude > 180) {
		return fmt.Errorf("location.longitude %v out of range", *loc.Longitude)
	}

	if c.APIConfig.RateLimit < 0 {
		return fmt.Errorf("api.rateLimit must not be negative")
	}
	return nil
}
