package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RESTConfig configures the Admin REST client.
type RESTConfig struct {
	// AccessToken authenticates API calls.
	AccessToken string

	// BaseURL overrides the per-shop https://<shop> base. Leave empty in
	// production; tests point it at an httptest server.
	BaseURL string
}

// restClient is the concrete Client backed by the platform's Admin REST API.
type restClient struct {
	cfg        RESTConfig
	httpClient *http.Client
}

// NewRESTClient returns a Client that reads shop and order data over the
// Admin REST API.
func NewRESTClient(cfg RESTConfig) Client {
	return &restClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *restClient) GetShop(ctx context.Context, shopDomain string) (Shop, error) {
	var envelope struct {
		Shop Shop `json:"shop"`
	}
	if err := c.get(ctx, shopDomain, "shop.json", &envelope); err != nil {
		return Shop{}, fmt.Errorf("platform: get shop %s: %w", shopDomain, err)
	}
	return envelope.Shop, nil
}

func (c *restClient) GetOrder(ctx context.Context, shopDomain string, orderID int64) (Order, error) {
	var envelope struct {
		Order json.RawMessage `json:"order"`
	}
	if err := c.get(ctx, shopDomain, fmt.Sprintf("orders/%d.json", orderID), &envelope); err != nil {
		return Order{}, fmt.Errorf("platform: get order %d: %w", orderID, err)
	}
	if len(envelope.Order) == 0 {
		return Order{}, fmt.Errorf("platform: order %d: empty response", orderID)
	}
	return ParseOrder(envelope.Order)
}

// get performs an authenticated GET of admin/<path> and decodes the JSON
// response into dst.
func (c *restClient) get(ctx context.Context, shopDomain, path string, dst any) error {
	base := c.cfg.BaseURL
	if base == "" {
		base = "https://" + shopDomain
	}
	url := fmt.Sprintf("%s/admin/%s", base, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Platform-Access-Token", c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %.200s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
