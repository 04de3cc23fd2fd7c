package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"attentionos/internal/analytics/models"
	"attentionos/pkg/logger"
)

// Client reads sessions from the AttentionOS tracking backend
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *logger.ColoredLogger
}

// Config contains upstream backend configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new backend client
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.CreateComponentLogger("Upstream", logger.ColorCyan),
	}, nil
}

// Name returns the name of the session source
func (c *Client) Name() string {
	return "http:" + c.config.BaseURL
}

// ListSessionRecords fetches GET /api/sessions
func (c *Client) ListSessionRecords(ctx context.Context) ([]models.SessionRecord, error) {
	body, err := c.get(ctx, "/api/sessions")
	if err != nil {
		return nil, err
	}

	var records []models.SessionRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to parse sessions: %w", err)
	}

	c.logger.Debug("Fetched %d sessions from %s", len(records), c.config.BaseURL)
	return records, nil
}

// Health checks GET /api/health
func (c *Client) Health(ctx context.Context) error {
	_, err := c.get(ctx, "/api/health")
	return err
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s failed (status %d): %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
