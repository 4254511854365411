// Package client talks to the air unit's profile API with a bounded wait on
// every request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gsweb/internal/logger"
	"gsweb/internal/models"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 2 * time.Second

// ErrUnavailable marks transport failures, timeouts and unreadable replies.
var ErrUnavailable = errors.New("profile API unavailable")

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("profile API returned status %d", e.Code)
	}
	return fmt.Sprintf("profile API returned status %d: %s", e.Code, e.Message)
}

// Client is the HTTP client for /api/v1.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     logger.Logger
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: timeout,
			},
		},
		timeout: timeout,
		logger:  log,
	}
}

// FetchProfiles returns the raw profile document. The body is guaranteed to be
// syntactically valid JSON but may be any JSON value.
func (c *Client) FetchProfiles(ctx context.Context) ([]byte, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/txprofiles", nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrUnavailable)
	}
	return data, nil
}

// ReplaceProfiles sends the whole table as one replace.
func (c *Client) ReplaceProfiles(ctx context.Context, profiles []models.TxProfile) error {
	if profiles == nil {
		profiles = []models.TxProfile{}
	}
	body, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/api/v1/txprofiles", body)
	return err
}

// Ping checks that the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/v1/ping", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + path
	c.logger.Debugf("%s %s", method, url)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response from %s: %v", ErrUnavailable, url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return nil, &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	return data, nil
}
