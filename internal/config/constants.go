package config

import "time"

const (
	envConfigFile     = "CONFIG_FILE"
	envPort           = "PORT"
	envPollInterval   = "POLL_INTERVAL"
	envFetchTimeout   = "FETCH_TIMEOUT"
	envBaselineSports = "BASELINE_SPORTS"
	envUpstreamURL    = "UPSTREAM_BASE_URL"
	envMetricsPort    = "METRICS_PORT"
	envMetricsOn      = "METRICS_ENABLED"
	envOtelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService    = "OTEL_SERVICE_NAME"
	envOtelInsecure   = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultPort = "8080"
	// One scoreboard fetch per sport every 10s keeps the dashboard near-live
	// without hammering the upstream site API.
	defaultPollInterval = 10 * time.Second
	// Fetch timeout matches the poll interval so a hung fetch never spans cycles.
	defaultFetchTimeout = 10 * time.Second
	defaultMetricsPort  = "9090"
	defaultUpstreamURL  = "https://site.api.espn.com/apis/site/v2/sports"
	defaultServiceName  = "live-scores-service"
)

// defaultBaselineSports are polled even with no subscribers so a fresh
// subscription sees data without waiting out a full interval.
var defaultBaselineSports = []string{"nba", "nfl", "mlb", "nhl"}
