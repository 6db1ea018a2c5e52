package brokerage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout     = 60 * time.Second
	linkTokenPath      = "/link/token/create"
	exchangeTokenPath  = "/item/public_token/exchange"
	holdingsPath       = "/investments/holdings/get"
	clientIDHeader     = "PLAID-CLIENT-ID"
	secretHeader       = "PLAID-SECRET"
	investmentsProduct = "investments"
)

// ClientInterface defines the methods required from the brokerage-link API client
type ClientInterface interface {
	CreateLinkToken(ctx context.Context, clientUserID string) (*LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error)
	GetHoldings(ctx context.Context, accessToken string) (*HoldingsResponse, error)
}

// Client handles communication with the brokerage-link API
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
	clientName string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new brokerage-link API client
func NewClient(baseURL, clientID, secret, clientName string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		secret:     secret,
		clientName: clientName,
	}
}

// WithHTTPClient replaces the transport, e.g. to add tracing.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// LinkTokenResponse carries the short-lived token the frontend uses to open Link
type LinkTokenResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
	RequestID  string `json:"request_id"`
}

// ExchangeResponse carries the long-lived access token of a linked item
type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

// HoldingsResponse represents the API response for investment holdings
type HoldingsResponse struct {
	Accounts   []Account  `json:"accounts"`
	Holdings   []Holding  `json:"holdings"`
	Securities []Security `json:"securities"`
}

// Account represents an investment account at the linked institution
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

type Balances struct {
	Current         *float64 `json:"current"`
	ISOCurrencyCode string   `json:"iso_currency_code"`
}

// Holding is a quantity of a security in one account
type Holding struct {
	AccountID        string   `json:"account_id"`
	SecurityID       string   `json:"security_id"`
	Quantity         float64  `json:"quantity"`
	InstitutionPrice *float64 `json:"institution_price"`
	InstitutionValue *float64 `json:"institution_value"`
	CostBasis        *float64 `json:"cost_basis"`
	ISOCurrencyCode  string   `json:"iso_currency_code"`
}

// Security describes an instrument referenced by holdings
type Security struct {
	SecurityID   string   `json:"security_id"`
	TickerSymbol string   `json:"ticker_symbol"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	ClosePrice   *float64 `json:"close_price"`
}

// Symbol returns the ticker, or the security name when it has none.
func (s Security) Symbol() string {
	if s.TickerSymbol != "" {
		return s.TickerSymbol
	}
	return s.Name
}

// APIError is the error body returned on non-2xx responses
type APIError struct {
	Status       int    `json:"-"`
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (e *APIError) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("API returned status %d", e.Status)
	}
	return fmt.Sprintf("API returned status %d: %s: %s", e.Status, e.ErrorCode, e.ErrorMessage)
}

type linkTokenUser struct {
	ClientUserID string `json:"client_user_id"`
}

type linkTokenRequest struct {
	ClientName   string        `json:"client_name"`
	User         linkTokenUser `json:"user"`
	Products     []string      `json:"products"`
	CountryCodes []string      `json:"country_codes"`
	Language     string        `json:"language"`
}

// CreateLinkToken creates a link token scoped to the investments product
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID string) (*LinkTokenResponse, error) {
	reqBody := linkTokenRequest{
		ClientName:   c.clientName,
		User:         linkTokenUser{ClientUserID: clientUserID},
		Products:     []string{investmentsProduct},
		CountryCodes: []string{"US"},
		Language:     "en",
	}

	var out LinkTokenResponse
	if err := c.post(ctx, linkTokenPath, reqBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangePublicToken trades a Link public token for an access token
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error) {
	reqBody := map[string]string{"public_token": publicToken}

	var out ExchangeResponse
	if err := c.post(ctx, exchangeTokenPath, reqBody, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("exchange response has no access token")
	}
	return &out, nil
}

// GetHoldings fetches accounts, holdings and securities of a linked item
func (c *Client) GetHoldings(ctx context.Context, accessToken string) (*HoldingsResponse, error) {
	reqBody := map[string]string{"access_token": accessToken}

	var out HoldingsResponse
	if err := c.post(ctx, holdingsPath, reqBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(clientIDHeader, c.clientID)
	req.Header.Set(secretHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(body, apiErr)
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
