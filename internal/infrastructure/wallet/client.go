package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://deep-index.moralis.io/api/v2.2"
	defaultTimeout = 30 * time.Second
	apiKeyHeader   = "x-api-key"
)

// ErrMissingAPIKey is returned before any request when no key is configured.
var ErrMissingAPIKey = errors.New("wallet provider API key is not configured")

// ClientInterface defines the methods required from the wallet-data provider
type ClientInterface interface {
	GetTokens(ctx context.Context, address, chain string) ([]Token, error)
}

// Client handles communication with the wallet-data API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a wallet-data client. An empty baseURL selects the
// public endpoint and a zero timeout selects the default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// WithHTTPClient replaces the transport, e.g. to add tracing.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// TokensResponse represents the API response for a wallet's token balances
type TokensResponse struct {
	Cursor string  `json:"cursor"`
	Result []Token `json:"result"`
}

// Token is one fungible balance held by a wallet. Balance is the raw
// integer amount in the token's smallest unit.
type Token struct {
	TokenAddress string   `json:"token_address"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Balance      string   `json:"balance"`
	Decimals     *int     `json:"decimals"`
	USDPrice     *float64 `json:"usd_price"`
	USDValue     *float64 `json:"usd_value"`
	PossibleSpam bool     `json:"possible_spam"`
}

// UnmarshalJSON accepts decimals encoded either as a number or a string,
// both of which the provider emits depending on the chain.
func (t *Token) UnmarshalJSON(data []byte) error {
	type alias Token
	aux := struct {
		*alias
		Decimals json.RawMessage `json:"decimals"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := strings.Trim(string(aux.Decimals), `"`)
	if raw == "" || raw == "null" {
		t.Decimals = nil
		return nil
	}
	var d int
	if _, err := fmt.Sscanf(raw, "%d", &d); err != nil {
		return fmt.Errorf("invalid decimals %q: %w", raw, err)
	}
	t.Decimals = &d
	return nil
}

// GetTokens fetches the token balances of address on chain
func (c *Client) GetTokens(ctx context.Context, address, chain string) ([]Token, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint := fmt.Sprintf("%s/wallets/%s/tokens?chain=%s",
		c.baseURL, url.PathEscape(address), url.QueryEscape(chain))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var tokensResp TokensResponse
	if err := json.Unmarshal(body, &tokensResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return tokensResp.Result, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
