package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/reviewradar/reviewradar/api/types"
)

// Client talks to a running reviewradar daemon.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	apiKey     string
}

// NewClient creates a new Client instance.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: o.Timeout}
	if o.ignoreTLSCert {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		BaseURL:    baseURL,
		HTTPClient: httpClient,
		apiKey:     o.APIKey,
	}, nil
}

// Status fetches the latest snapshot from the daemon.
func (c *Client) Status(ctx context.Context) (types.Snapshot, error) {
	var snap types.Snapshot
	if err := c.do(ctx, http.MethodGet, "/status", nil, &snap); err != nil {
		return types.Snapshot{}, err
	}
	return snap, nil
}

// Refresh triggers an on-demand refresh pass and returns the derived
// descriptor.
func (c *Client) Refresh(ctx context.Context) (types.StatusDescriptor, error) {
	var desc types.StatusDescriptor
	if err := c.do(ctx, http.MethodPost, "/refresh", nil, &desc); err != nil {
		return types.StatusDescriptor{}, err
	}
	return desc, nil
}

// Invoke sends a raw bridge request: a command name with positional
// arguments. The returned envelope carries either a value or a structured
// failure.
func (c *Client) Invoke(ctx context.Context, command string, args ...any) (types.BridgeResponse, error) {
	request := append([]any{command}, args...)
	var resp types.BridgeResponse
	if err := c.do(ctx, http.MethodPost, "/rpc", request, &resp); err != nil {
		return types.BridgeResponse{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("error marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending %s request: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("error: %s", apiErr.Error)
		}
		return fmt.Errorf("error: received status code %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}
	return nil
}
