package holding

import (
	"context"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
)

type MockRepository struct {
	CreateFunc            func(ctx context.Context, params CreateParams) (*Holding, error)
	CreateBatchFunc       func(ctx context.Context, params []CreateParams) (int, error)
	ReplaceForAccountFunc func(ctx context.Context, accountID string, params []CreateParams) (int, error)
	GetByIDFunc           func(ctx context.Context, id string) (*Position, error)
	ListByUserFunc        func(ctx context.Context, userID string) ([]*Position, error)
	UpdatePriceFunc       func(ctx context.Context, id string, priceUSD, valueUSD float64, asOf time.Time) error
	DeleteFunc            func(ctx context.Context, id string) error
}

func (m *MockRepository) Create(ctx context.Context, params CreateParams) (*Holding, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &Holding{
		ID:               params.ID,
		AccountID:        params.AccountID,
		Symbol:           params.Symbol,
		Quantity:         params.Quantity,
		PriceUSD:         params.PriceUSD,
		ValueUSD:         params.ValueUSD,
		PurchasePriceUSD: params.PurchasePriceUSD,
		AssetClass:       params.AssetClass,
		AsOf:             params.AsOf,
		EffectiveDate:    params.EffectiveDate,
	}, nil
}

func (m *MockRepository) CreateBatch(ctx context.Context, params []CreateParams) (int, error) {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, params)
	}
	return len(params), nil
}

func (m *MockRepository) ReplaceForAccount(ctx context.Context, accountID string, params []CreateParams) (int, error) {
	if m.ReplaceForAccountFunc != nil {
		return m.ReplaceForAccountFunc(ctx, accountID, params)
	}
	return len(params), nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Position, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrHoldingNotFound
}

func (m *MockRepository) ListByUser(ctx context.Context, userID string) ([]*Position, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) UpdatePrice(ctx context.Context, id string, priceUSD, valueUSD float64, asOf time.Time) error {
	if m.UpdatePriceFunc != nil {
		return m.UpdatePriceFunc(ctx, id, priceUSD, valueUSD, asOf)
	}
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockConnections struct {
	conn    *connection.Connection
	err     error
	lastReq connection.CreateParams
}

func (m *mockConnections) FindOrCreate(ctx context.Context, params connection.CreateParams) (*connection.Connection, bool, error) {
	m.lastReq = params
	if m.err != nil {
		return nil, false, m.err
	}
	return m.conn, false, nil
}

type mockAccounts struct {
	existing []*account.Account
	created  []account.CreateParams
}

func (m *mockAccounts) ListByConnection(ctx context.Context, connectionID string) ([]*account.Account, error) {
	return m.existing, nil
}

func (m *mockAccounts) CreateAccount(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	m.created = append(m.created, params)
	return &account.Account{ID: "acc-new", ConnectionID: params.ConnectionID, Name: params.Name, Type: params.Type}, nil
}

type priceFunc func(ctx context.Context, symbol string, class AssetClass) (float64, bool)

func (f priceFunc) LookupPrice(ctx context.Context, symbol string, class AssetClass) (float64, bool) {
	return f(ctx, symbol, class)
}
