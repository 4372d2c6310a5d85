// Package nightscout provides a client for the Nightscout REST API.
package nightscout

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrcode/nightscout-display/internal/models"
)

// Client handles communication with the Nightscout API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Nightscout client. token may be empty, in which
// case requests are sent unauthenticated.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// getJSON executes a GET against endpoint and decodes the body into out.
// Transport failures, non-2xx statuses and malformed bodies are all plain
// errors; the caller retries on its next scheduled poll.
func (c *Client) getJSON(endpoint string, out any) error {
	fullURL := c.baseURL + endpoint
	if c.token != "" {
		params := url.Values{}
		params.Set("token", c.token)
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	return nil
}

// GetStatus retrieves the server status, including its threshold settings.
func (c *Client) GetStatus() (*models.ServerStatus, error) {
	var status models.ServerStatus
	if err := c.getJSON("/api/v1/status.json", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetProperties retrieves the latest reading snapshot.
func (c *Client) GetProperties() (*models.Properties, error) {
	var props models.Properties
	if err := c.getJSON("/api/v2/properties.json", &props); err != nil {
		return nil, err
	}
	return &props, nil
}
