package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"networth/internal/domain/connection"
	"networth/internal/domain/holding"
	"networth/internal/domain/ingestion"
	"networth/internal/domain/liability"
	"networth/internal/domain/portfolio"
	"networth/internal/domain/realestate"
	"networth/internal/domain/snapshot"
	bkclient "networth/internal/infrastructure/brokerage"
	"networth/internal/shared/auth"
)

const testUserID = "user-1"

// newRequest builds a request carrying the test principal. An empty userID
// produces an anonymous request.
func newRequest(method, target, body, userID string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if userID != "" {
		req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: userID}))
	}
	return req
}

type mockPortfolioService struct {
	NetWorthFunc func(ctx context.Context, userID string) (portfolio.NetWorthSummary, error)
	ExposureFunc func(ctx context.Context, userID string) (portfolio.ExposureSummary, error)
}

func (m *mockPortfolioService) NetWorth(ctx context.Context, userID string) (portfolio.NetWorthSummary, error) {
	if m.NetWorthFunc != nil {
		return m.NetWorthFunc(ctx, userID)
	}
	return portfolio.NetWorthSummary{}, nil
}

func (m *mockPortfolioService) Exposure(ctx context.Context, userID string) (portfolio.ExposureSummary, error) {
	if m.ExposureFunc != nil {
		return m.ExposureFunc(ctx, userID)
	}
	return portfolio.ExposureSummary{}, nil
}

type mockHoldingService struct {
	ListFunc      func(ctx context.Context, userID string) ([]*holding.Position, error)
	AddManualFunc func(ctx context.Context, userID string, in holding.ManualInput) (*holding.Holding, error)
	DeleteFunc    func(ctx context.Context, userID, id string) error
}

func (m *mockHoldingService) List(ctx context.Context, userID string) ([]*holding.Position, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockHoldingService) AddManual(ctx context.Context, userID string, in holding.ManualInput) (*holding.Holding, error) {
	if m.AddManualFunc != nil {
		return m.AddManualFunc(ctx, userID, in)
	}
	return &holding.Holding{}, nil
}

func (m *mockHoldingService) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

type mockLiabilityService struct {
	CreateFunc func(ctx context.Context, params liability.CreateParams) (*liability.Liability, error)
	ListFunc   func(ctx context.Context, userID string) ([]*liability.Liability, error)
}

func (m *mockLiabilityService) Create(ctx context.Context, params liability.CreateParams) (*liability.Liability, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &liability.Liability{}, nil
}

func (m *mockLiabilityService) List(ctx context.Context, userID string) ([]*liability.Liability, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return nil, nil
}

type mockRealEstateService struct {
	CreateFunc func(ctx context.Context, params realestate.CreateParams) (*realestate.Property, error)
	ListFunc   func(ctx context.Context, userID string) ([]*realestate.Property, error)
}

func (m *mockRealEstateService) Create(ctx context.Context, params realestate.CreateParams) (*realestate.Property, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &realestate.Property{}, nil
}

func (m *mockRealEstateService) List(ctx context.Context, userID string) ([]*realestate.Property, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return nil, nil
}

type mockWalletService struct {
	AddWalletFunc      func(ctx context.Context, userID string, in ingestion.WalletInput) (*connection.Connection, error)
	ListWalletsFunc    func(ctx context.Context, userID string) ([]*connection.Connection, error)
	RefreshWalletsFunc func(ctx context.Context, userID string) (*ingestion.RefreshResult, error)
}

func (m *mockWalletService) AddWallet(ctx context.Context, userID string, in ingestion.WalletInput) (*connection.Connection, error) {
	if m.AddWalletFunc != nil {
		return m.AddWalletFunc(ctx, userID, in)
	}
	return &connection.Connection{}, nil
}

func (m *mockWalletService) ListWallets(ctx context.Context, userID string) ([]*connection.Connection, error) {
	if m.ListWalletsFunc != nil {
		return m.ListWalletsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockWalletService) RefreshWallets(ctx context.Context, userID string) (*ingestion.RefreshResult, error) {
	if m.RefreshWalletsFunc != nil {
		return m.RefreshWalletsFunc(ctx, userID)
	}
	return &ingestion.RefreshResult{}, nil
}

type mockBrokerageService struct {
	CreateLinkTokenFunc     func(ctx context.Context, userID string) (*bkclient.LinkTokenResponse, error)
	ExchangePublicTokenFunc func(ctx context.Context, userID, publicToken string) (*connection.Connection, error)
	SyncHoldingsFunc        func(ctx context.Context, userID, connectionID string) (*ingestion.BrokerageSyncResult, error)
}

func (m *mockBrokerageService) CreateLinkToken(ctx context.Context, userID string) (*bkclient.LinkTokenResponse, error) {
	if m.CreateLinkTokenFunc != nil {
		return m.CreateLinkTokenFunc(ctx, userID)
	}
	return &bkclient.LinkTokenResponse{}, nil
}

func (m *mockBrokerageService) ExchangePublicToken(ctx context.Context, userID, publicToken string) (*connection.Connection, error) {
	if m.ExchangePublicTokenFunc != nil {
		return m.ExchangePublicTokenFunc(ctx, userID, publicToken)
	}
	return &connection.Connection{}, nil
}

func (m *mockBrokerageService) SyncHoldings(ctx context.Context, userID, connectionID string) (*ingestion.BrokerageSyncResult, error) {
	if m.SyncHoldingsFunc != nil {
		return m.SyncHoldingsFunc(ctx, userID, connectionID)
	}
	return &ingestion.BrokerageSyncResult{}, nil
}

type mockPriceService struct {
	RefreshPricesFunc func(ctx context.Context, userID string) (*ingestion.PriceRefreshResult, error)
}

func (m *mockPriceService) RefreshPrices(ctx context.Context, userID string) (*ingestion.PriceRefreshResult, error) {
	if m.RefreshPricesFunc != nil {
		return m.RefreshPricesFunc(ctx, userID)
	}
	return &ingestion.PriceRefreshResult{}, nil
}

type mockSnapshotService struct {
	RecordFunc func(ctx context.Context, userID string, trigger snapshot.Trigger) (*snapshot.Snapshot, error)
	ListFunc   func(ctx context.Context, userID string) ([]*snapshot.Snapshot, error)
}

func (m *mockSnapshotService) Record(ctx context.Context, userID string, trigger snapshot.Trigger) (*snapshot.Snapshot, error) {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, userID, trigger)
	}
	return &snapshot.Snapshot{}, nil
}

func (m *mockSnapshotService) List(ctx context.Context, userID string) ([]*snapshot.Snapshot, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return nil, nil
}

type mockPinger struct {
	err error
}

func (m mockPinger) PingContext(context.Context) error {
	return m.err
}
