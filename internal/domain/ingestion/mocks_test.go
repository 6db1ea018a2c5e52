package ingestion

import (
	"context"
	"sync"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/holding"
	bkclient "networth/internal/infrastructure/brokerage"
	walletclient "networth/internal/infrastructure/wallet"
)

type mockConnections struct {
	CreateFunc func(ctx context.Context, params connection.CreateParams) (*connection.Connection, error)
	GetFunc    func(ctx context.Context, userID, id string) (*connection.Connection, error)
	ListFunc   func(ctx context.Context, userID string, provider connection.Provider) ([]*connection.Connection, error)
}

func (m *mockConnections) Create(ctx context.Context, params connection.CreateParams) (*connection.Connection, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &connection.Connection{
		ID:          "conn-new",
		UserID:      params.UserID,
		Provider:    params.Provider,
		Identifier:  params.Identifier,
		Chain:       params.Chain,
		Nickname:    params.Nickname,
		SecretToken: params.SecretToken,
	}, nil
}

func (m *mockConnections) Get(ctx context.Context, userID, id string) (*connection.Connection, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, id)
	}
	return nil, connection.ErrConnectionNotFound
}

func (m *mockConnections) List(ctx context.Context, userID string, provider connection.Provider) ([]*connection.Connection, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, provider)
	}
	return nil, nil
}

type mockAccounts struct {
	CreateAccountFunc    func(ctx context.Context, params account.CreateParams) (*account.Account, error)
	UpsertAccountFunc    func(ctx context.Context, params account.CreateParams) (*account.Account, error)
	ListByConnectionFunc func(ctx context.Context, connectionID string) ([]*account.Account, error)
}

func (m *mockAccounts) CreateAccount(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, params)
	}
	return &account.Account{ID: "acc-new", ConnectionID: params.ConnectionID, Name: params.Name, Type: params.Type}, nil
}

func (m *mockAccounts) UpsertAccount(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	if m.UpsertAccountFunc != nil {
		return m.UpsertAccountFunc(ctx, params)
	}
	return &account.Account{ID: "acc-" + params.ExternalID, ConnectionID: params.ConnectionID, Name: params.Name, Type: params.Type}, nil
}

func (m *mockAccounts) ListByConnection(ctx context.Context, connectionID string) ([]*account.Account, error) {
	if m.ListByConnectionFunc != nil {
		return m.ListByConnectionFunc(ctx, connectionID)
	}
	return []*account.Account{{ID: "acc-" + connectionID, ConnectionID: connectionID}}, nil
}

type mockHoldings struct {
	mu       sync.Mutex
	replaced map[string][]holding.CreateParams

	CreateBatchFunc       func(ctx context.Context, params []holding.CreateParams) (int, error)
	ReplaceForAccountFunc func(ctx context.Context, accountID string, params []holding.CreateParams) (int, error)
	ListByUserFunc        func(ctx context.Context, userID string) ([]*holding.Position, error)
	UpdatePriceFunc       func(ctx context.Context, id string, priceUSD, valueUSD float64, asOf time.Time) error
}

func (m *mockHoldings) CreateBatch(ctx context.Context, params []holding.CreateParams) (int, error) {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, params)
	}
	return len(params), nil
}

func (m *mockHoldings) ReplaceForAccount(ctx context.Context, accountID string, params []holding.CreateParams) (int, error) {
	if m.ReplaceForAccountFunc != nil {
		return m.ReplaceForAccountFunc(ctx, accountID, params)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaced == nil {
		m.replaced = make(map[string][]holding.CreateParams)
	}
	m.replaced[accountID] = params
	return len(params), nil
}

func (m *mockHoldings) ListByUser(ctx context.Context, userID string) ([]*holding.Position, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockHoldings) UpdatePrice(ctx context.Context, id string, priceUSD, valueUSD float64, asOf time.Time) error {
	if m.UpdatePriceFunc != nil {
		return m.UpdatePriceFunc(ctx, id, priceUSD, valueUSD, asOf)
	}
	return nil
}

type mockWalletClient struct {
	GetTokensFunc func(ctx context.Context, address, chain string) ([]walletclient.Token, error)
}

func (m *mockWalletClient) GetTokens(ctx context.Context, address, chain string) ([]walletclient.Token, error) {
	return m.GetTokensFunc(ctx, address, chain)
}

type mockBrokerageClient struct {
	CreateLinkTokenFunc     func(ctx context.Context, clientUserID string) (*bkclient.LinkTokenResponse, error)
	ExchangePublicTokenFunc func(ctx context.Context, publicToken string) (*bkclient.ExchangeResponse, error)
	GetHoldingsFunc         func(ctx context.Context, accessToken string) (*bkclient.HoldingsResponse, error)
}

func (m *mockBrokerageClient) CreateLinkToken(ctx context.Context, clientUserID string) (*bkclient.LinkTokenResponse, error) {
	return m.CreateLinkTokenFunc(ctx, clientUserID)
}

func (m *mockBrokerageClient) ExchangePublicToken(ctx context.Context, publicToken string) (*bkclient.ExchangeResponse, error) {
	return m.ExchangePublicTokenFunc(ctx, publicToken)
}

func (m *mockBrokerageClient) GetHoldings(ctx context.Context, accessToken string) (*bkclient.HoldingsResponse, error) {
	return m.GetHoldingsFunc(ctx, accessToken)
}

type mockPrices map[string]float64

func (m mockPrices) LookupPrice(ctx context.Context, symbol string, class holding.AssetClass) (float64, bool) {
	p, ok := m[symbol]
	return p, ok
}

// hookRecorder counts change-hook invocations.
type hookRecorder struct {
	mu    sync.Mutex
	users []string
}

func (h *hookRecorder) hook(ctx context.Context, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users = append(h.users, userID)
}

func (h *hookRecorder) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users)
}

func ptr[T any](v T) *T { return &v }
