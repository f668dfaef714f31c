package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"live-scores-service/internal/domain"
	"live-scores-service/internal/providers"
)

// Config controls how the client reaches the upstream scoreboard API.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	// Resolve maps a dashboard sport id to the upstream scoreboard path
	// (e.g. "nba" -> "basketball/nba").
	Resolve func(sportID string) (string, bool)
}

// Client fetches per-sport scoreboards and maps them to domain events.
type Client struct {
	baseURL    string
	httpClient httpDoer
	resolve    func(sportID string) (string, bool)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewClient constructs a scoreboard client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: resolveHTTPClient(cfg.HTTPClient),
		resolve:    cfg.Resolve,
	}
}

// FetchScoreboard retrieves the current scoreboard for one sport.
func (c *Client) FetchScoreboard(ctx context.Context, sportID string) ([]domain.Event, error) {
	path, ok := c.resolvePath(sportID)
	if !ok {
		return nil, fmt.Errorf("espn: %w: %s", providers.ErrUnknownSport, sportID)
	}

	url := c.baseURL + "/" + path + "/scoreboard"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &providers.RateLimitError{
			Sport:      sportID,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("espn: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload scoreboardResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		return nil, fmt.Errorf("espn: decode scoreboard: %w", decodeErr)
	}

	events := make([]domain.Event, 0, len(payload.Events))
	for _, e := range payload.Events {
		events = append(events, mapEvent(sportID, e))
	}
	return events, nil
}

func (c *Client) resolvePath(sportID string) (string, bool) {
	if c.resolve == nil {
		return "", false
	}
	return c.resolve(sportID)
}

func resolveHTTPClient(client *http.Client) httpDoer {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func normalizeBaseURL(raw string) string {
	if raw == "" {
		raw = defaultBaseURL
	}
	return strings.TrimSuffix(raw, "/")
}

func parseRetryAfter(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	if secs, err := time.ParseDuration(raw + "s"); err == nil {
		return secs
	}
	return 0
}
