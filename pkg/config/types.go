package config

// ClientConfig configures the radar command line client.
type ClientConfig struct {
	APIConfig      APIConfig      `yaml:"api" toml:"api"`
	StorageConfig  StorageConfig  `yaml:"storage" toml:"storage"`
	DeviceConfig   DeviceConfig   `yaml:"device" toml:"device"`
	LocationConfig LocationConfig `yaml:"location" toml:"location"`
	TripsConfig    TripsConfig    `yaml:"trips" toml:"trips"`
	LogConfig      LogConfig      `yaml:"log" toml:"log"`
	MetricsConfig  MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

type APIConfig struct {
	PublishableKey string            `yaml:"publishableKey" toml:"publishableKey"`
	Host           string            `yaml:"host,omitempty" toml:"host"`
	BasePath       string            `yaml:"basePath,omitempty" toml:"basePath"`
	Headers        map[string]string `yaml:"headers,omitempty" toml:"headers"`
	RateLimit      float64           `yaml:"rateLimit,omitempty" toml:"rateLimit"`
	Timeout        Duration          `yaml:"timeout,omitempty" toml:"timeout"`
}

// StorageConfig selects where client state is kept. Type is one of memory,
// local (a bbolt file at Path) or docstore (a gocloud collection at URL).
type StorageConfig struct {
	Type string `yaml:"type" toml:"type"`
	Path string `yaml:"path,omitempty" toml:"path"`
	URL  string `yaml:"url,omitempty" toml:"url"`
}

type DeviceConfig struct {
	DeviceID    string                 `yaml:"deviceId,omitempty" toml:"deviceId"`
	InstallID   string                 `yaml:"installId,omitempty" toml:"installId"`
	DeviceType  string                 `yaml:"deviceType,omitempty" toml:"deviceType"`
	UserID      string                 `yaml:"userId,omitempty" toml:"userId"`
	Description string                 `yaml:"description,omitempty" toml:"description"`
	Metadata    map[string]interface{} `yaml:"metadata,omitempty" toml:"metadata"`
}

// LocationConfig is the position reported as the device position. Without
// it operations that need the device position fail.
type LocationConfig struct {
	Latitude  *float64 `yaml:"latitude,omitempty" toml:"latitude"`
	Longitude *float64 `yaml:"longitude,omitempty" toml:"longitude"`
	Accuracy  *float64 `yaml:"accuracy,omitempty" toml:"accuracy"`
}

// TripsConfig optionally publishes trip transitions on a pubsub topic.
type TripsConfig struct {
	TopicURL string `yaml:"topicUrl,omitempty" toml:"topicUrl"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty" toml:"addr"`
}
