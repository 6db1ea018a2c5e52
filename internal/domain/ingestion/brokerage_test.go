package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/holding"
	bkclient "networth/internal/infrastructure/brokerage"
	"networth/internal/shared/errs"
)

func brokerageConn(ctx context.Context, userID, id string) (*connection.Connection, error) {
	if id != "conn-1" || userID != "user-1" {
		return nil, errs.NotFound("connection.Get", connection.ErrConnectionNotFound)
	}
	return &connection.Connection{
		ID:          "conn-1",
		UserID:      "user-1",
		Provider:    connection.ProviderBrokerage,
		Identifier:  "item-1",
		SecretToken: "access-1",
	}, nil
}

func TestBrokerageSyncService_CreateLinkToken(t *testing.T) {
	tests := []struct {
		name     string
		clientFn func(ctx context.Context, id string) (*bkclient.LinkTokenResponse, error)
		wantKind errs.Kind
	}{
		{
			name: "success",
			clientFn: func(ctx context.Context, id string) (*bkclient.LinkTokenResponse, error) {
				return &bkclient.LinkTokenResponse{LinkToken: "link-" + id}, nil
			},
		},
		{
			name: "provider failure",
			clientFn: func(ctx context.Context, id string) (*bkclient.LinkTokenResponse, error) {
				return nil, errors.New("503")
			},
			wantKind: errs.KindUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBrokerageSyncService(&mockBrokerageClient{CreateLinkTokenFunc: tt.clientFn},
				&mockConnections{}, &mockAccounts{}, &mockHoldings{}, nil)

			resp, err := svc.CreateLinkToken(context.Background(), "user-1")
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "link-user-1", resp.LinkToken)
		})
	}
}

func TestBrokerageSyncService_ExchangePublicToken(t *testing.T) {
	var saved connection.CreateParams
	client := &mockBrokerageClient{ExchangePublicTokenFunc: func(ctx context.Context, publicToken string) (*bkclient.ExchangeResponse, error) {
		if publicToken == "bad" {
			return nil, &bkclient.APIError{Status: 400, ErrorCode: "INVALID_PUBLIC_TOKEN"}
		}
		return &bkclient.ExchangeResponse{AccessToken: "access-1", ItemID: "item-1"}, nil
	}}
	conns := &mockConnections{CreateFunc: func(ctx context.Context, p connection.CreateParams) (*connection.Connection, error) {
		saved = p
		return &connection.Connection{ID: "conn-1", UserID: p.UserID, Provider: p.Provider}, nil
	}}
	svc := NewBrokerageSyncService(client, conns, &mockAccounts{}, &mockHoldings{}, nil)
	ctx := context.Background()

	conn, err := svc.ExchangePublicToken(ctx, "user-1", "public-1")
	require.NoError(t, err)
	assert.Equal(t, "conn-1", conn.ID)
	assert.Equal(t, connection.ProviderBrokerage, saved.Provider)
	assert.Equal(t, "item-1", saved.Identifier)
	assert.Equal(t, "access-1", saved.SecretToken)

	_, err = svc.ExchangePublicToken(ctx, "user-1", "")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.ExchangePublicToken(ctx, "user-1", "bad")
	assert.Equal(t, errs.KindUpstream, errs.KindOf(err))
}

func TestBrokerageSyncService_SyncHoldings(t *testing.T) {
	client := &mockBrokerageClient{GetHoldingsFunc: func(ctx context.Context, accessToken string) (*bkclient.HoldingsResponse, error) {
		assert.Equal(t, "access-1", accessToken)
		return &bkclient.HoldingsResponse{
			Accounts: []bkclient.Account{
				{AccountID: "pa-1", Name: "Brokerage", Balances: bkclient.Balances{ISOCurrencyCode: "usd"}},
			},
			Holdings: []bkclient.Holding{
				{AccountID: "pa-1", SecurityID: "s-ibit", Quantity: 10},
				{AccountID: "pa-1", SecurityID: "s-fund", Quantity: 2},
				{AccountID: "pa-1", SecurityID: "s-missing", Quantity: 1},
				{AccountID: "pa-unknown", SecurityID: "s-ibit", Quantity: 1},
			},
			Securities: []bkclient.Security{
				{SecurityID: "s-ibit", TickerSymbol: "IBIT", ClosePrice: ptr(40.0)},
				{SecurityID: "s-fund", Name: "Private Fund", ClosePrice: ptr(400.0)},
			},
		}, nil
	}}

	var upserted []account.CreateParams
	accs := &mockAccounts{UpsertAccountFunc: func(ctx context.Context, p account.CreateParams) (*account.Account, error) {
		upserted = append(upserted, p)
		return &account.Account{ID: "acc-1"}, nil
	}}
	var batch []holding.CreateParams
	hs := &mockHoldings{CreateBatchFunc: func(ctx context.Context, p []holding.CreateParams) (int, error) {
		batch = p
		return len(p), nil
	}}
	hooks := &hookRecorder{}

	svc := NewBrokerageSyncService(client, &mockConnections{GetFunc: brokerageConn}, accs, hs, hooks.hook)
	result, err := svc.SyncHoldings(context.Background(), "user-1", "conn-1")
	require.NoError(t, err)

	assert.Equal(t, &BrokerageSyncResult{ConnectionID: "conn-1", AccountsSynced: 1, HoldingsWritten: 2, Skipped: 2}, result)
	assert.Equal(t, 1, hooks.calls())

	require.Len(t, upserted, 1)
	assert.Equal(t, "pa-1", upserted[0].ExternalID)
	assert.Equal(t, account.TypeInvestment, upserted[0].Type)
	assert.Equal(t, "USD", upserted[0].Currency)

	require.Len(t, batch, 2)
	assert.Equal(t, "IBIT", batch[0].Symbol)
	assert.Equal(t, holding.AssetEquity, batch[0].AssetClass)
	assert.Equal(t, 400.0, *batch[0].ValueUSD)
	assert.Equal(t, "Private Fund", batch[1].Symbol)
	assert.Equal(t, 800.0, *batch[1].ValueUSD)
	assert.Equal(t, "acc-1", batch[1].AccountID)
}

func TestBrokerageSyncService_SyncHoldings_Errors(t *testing.T) {
	walletConn := func(ctx context.Context, userID, id string) (*connection.Connection, error) {
		return &connection.Connection{ID: id, UserID: userID, Provider: connection.ProviderWallet}, nil
	}
	failingClient := &mockBrokerageClient{GetHoldingsFunc: func(ctx context.Context, accessToken string) (*bkclient.HoldingsResponse, error) {
		return nil, errors.New("ITEM_LOGIN_REQUIRED")
	}}

	tests := []struct {
		name         string
		connectionID string
		getFn        func(ctx context.Context, userID, id string) (*connection.Connection, error)
		wantKind     errs.Kind
	}{
		{name: "missing connection id", connectionID: "", getFn: brokerageConn, wantKind: errs.KindValidation},
		{name: "not owned", connectionID: "conn-2", getFn: brokerageConn, wantKind: errs.KindNotFound},
		{name: "wrong provider", connectionID: "conn-1", getFn: walletConn, wantKind: errs.KindValidation},
		{name: "provider failure", connectionID: "conn-1", getFn: brokerageConn, wantKind: errs.KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hooks := &hookRecorder{}
			svc := NewBrokerageSyncService(failingClient, &mockConnections{GetFunc: tt.getFn},
				&mockAccounts{}, &mockHoldings{}, hooks.hook)

			_, err := svc.SyncHoldings(context.Background(), "user-1", tt.connectionID)
			assert.Equal(t, tt.wantKind, errs.KindOf(err))
			assert.Zero(t, hooks.calls())
		})
	}
}
