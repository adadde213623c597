// Package remote is the HTTP client for an external bill API. Backend
// rejections are mapped onto the display sentinels the UI shows verbatim.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"billed/internal/bill"
	"billed/internal/core"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// listResponse is the wire shape of the list endpoint.
type listResponse struct {
	Data []core.Bill `json:"data"`
}

func NewClient(baseURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// List fetches the full bill collection.
func (c *Client) List(ctx context.Context) ([]core.Bill, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bills", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return nil, err
	}

	var result listResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result.Data, nil
}

// Create posts the draft and returns the bill with its assigned id.
func (c *Client) Create(ctx context.Context, draft core.Bill) (core.Bill, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return core.Bill{}, fmt.Errorf("encode draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bills", bytes.NewReader(body))
	if err != nil {
		return core.Bill{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return core.Bill{}, err
	}

	var created core.Bill
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return core.Bill{}, fmt.Errorf("decode response: %w", err)
	}
	return created, nil
}

// classifyStatus maps non-2xx responses onto the error taxonomy: 404 and 5xx
// become the fixed French sentinels, anything else keeps the backend's own
// message so the UI can display it as-is.
func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return bill.ErrNotFound
	case resp.StatusCode >= 500:
		return bill.ErrServerError
	default:
		return fmt.Errorf("%s: %s", http.StatusText(resp.StatusCode), resp.Status)
	}
}
