package config

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

func loadMetrics(file fileConfig) MetricsConfig {
	enabledDefault := true
	if file.Metrics.Enabled != nil {
		enabledDefault = *file.Metrics.Enabled
	}
	return MetricsConfig{
		Enabled:      boolEnvOrDefault(envMetricsOn, enabledDefault),
		Port:         envOrDefault(envMetricsPort, orDefault(file.Metrics.Port, defaultMetricsPort)),
		OtlpEndpoint: envOrDefault(envOtelEndpoint, file.Metrics.OtlpEndpoint),
		ServiceName:  envOrDefault(envOtelService, orDefault(file.Metrics.ServiceName, defaultServiceName)),
		OtlpInsecure: boolEnvOrDefault(envOtelInsecure, true),
	}
}
