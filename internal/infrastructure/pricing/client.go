package pricing

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
	defaultBaseURL = "https://api.coingecko.com/api/v3"
	defaultTimeout = 15 * time.Second
	simplePrice    = "/simple/price"
)

// ErrUnknownSymbol is returned for symbols with no provider id.
var ErrUnknownSymbol = errors.New("no price source for symbol")

// coinIDs maps ticker symbols to the provider's coin ids.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"USDC":  "usd-coin",
	"USDT":  "tether",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
	"DOGE":  "dogecoin",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOT":   "polkadot",
}

// CoinID returns the provider id for symbol.
func CoinID(symbol string) (string, bool) {
	id, ok := coinIDs[strings.ToUpper(strings.TrimSpace(symbol))]
	return id, ok
}

// ClientInterface defines the methods required from the spot-price API client
type ClientInterface interface {
	// GetUSDPrice returns the spot price of a crypto symbol. found is false
	// when the provider has no quote for it.
	GetUSDPrice(ctx context.Context, symbol string) (price float64, found bool, err error)
}

// Client handles communication with the spot-price API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// WithHTTPClient replaces the transport, e.g. to add tracing.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// simplePriceResponse is keyed by coin id, then by currency
type simplePriceResponse map[string]map[string]float64

func (c *Client) GetUSDPrice(ctx context.Context, symbol string) (float64, bool, error) {
	id, ok := CoinID(symbol)
	if !ok {
		return 0, false, ErrUnknownSymbol
	}

	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+simplePrice+"?"+q.Encode(), nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, false, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var prices simplePriceResponse
	if err := json.Unmarshal(body, &prices); err != nil {
		return 0, false, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	price, ok := prices[id]["usd"]
	if !ok || price <= 0 {
		return 0, false, nil
	}
	return price, true, nil
}
