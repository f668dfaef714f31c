package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the service.
type Config struct {
	Port           string
	PollInterval   Duration
	FetchTimeout   Duration
	BaselineSports []string
	Upstream       UpstreamConfig
	Metrics        MetricsConfig
}

// UpstreamConfig controls how we talk to the upstream scoreboard API.
type UpstreamConfig struct {
	BaseURL string
}

// fileConfig is the optional YAML layer; env values win over file values.
type fileConfig struct {
	Port           string   `yaml:"port"`
	PollInterval   string   `yaml:"poll_interval"`
	FetchTimeout   string   `yaml:"fetch_timeout"`
	BaselineSports []string `yaml:"baseline_sports"`
	Upstream       struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"upstream"`
	Metrics struct {
		Enabled      *bool  `yaml:"enabled"`
		Port         string `yaml:"port"`
		OtlpEndpoint string `yaml:"otlp_endpoint"`
		ServiceName  string `yaml:"service_name"`
	} `yaml:"metrics"`
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and
// environment variables, with env taking precedence and sensible defaults
// filling the rest.
func Load() Config {
	file := loadFile(os.Getenv(envConfigFile))

	return Config{
		Port:           envOrDefault(envPort, orDefault(file.Port, defaultPort)),
		PollInterval:   durationEnvOrDefault(envPollInterval, parseFileDuration(file.PollInterval, defaultPollInterval)),
		FetchTimeout:   durationEnvOrDefault(envFetchTimeout, parseFileDuration(file.FetchTimeout, defaultFetchTimeout)),
		BaselineSports: listEnvOrDefault(envBaselineSports, orDefaultList(file.BaselineSports, defaultBaselineSports)),
		Upstream: UpstreamConfig{
			BaseURL: envOrDefault(envUpstreamURL, orDefault(file.Upstream.BaseURL, defaultUpstreamURL)),
		},
		Metrics: loadMetrics(file),
	}
}

func loadFile(path string) fileConfig {
	var cfg fileConfig
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	// A broken config file falls back to env/defaults rather than failing boot.
	_ = yaml.Unmarshal(data, &cfg)
	return cfg
}

func orDefault(val, defaultValue string) string {
	if val != "" {
		return val
	}
	return defaultValue
}

func orDefaultList(val, defaultValue []string) []string {
	if len(val) > 0 {
		return val
	}
	return defaultValue
}

func parseFileDuration(raw string, defaultValue time.Duration) time.Duration {
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
