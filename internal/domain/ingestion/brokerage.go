package ingestion

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/holding"
	bkclient "networth/internal/infrastructure/brokerage"
	"networth/internal/shared/errs"
)

const (
	brokerageProviderName   = "brokerage"
	brokerageConnectionName = "Brokerage"
)

// BrokerageSyncResult summarizes one holdings sync.
type BrokerageSyncResult struct {
	ConnectionID    string `json:"connectionId"`
	AccountsSynced  int    `json:"accountsSynced"`
	HoldingsWritten int    `json:"holdingsWritten"`
	Skipped         int    `json:"skipped"`
}

// BrokerageSyncService links brokerage accounts and imports their holdings.
// Imported holdings are appended; earlier rows are kept.
type BrokerageSyncService struct {
	client      bkclient.ClientInterface
	connections ConnectionStore
	accounts    AccountStore
	holdings    HoldingStore
	onSynced    holding.ChangeHook
	now         func() time.Time
}

func NewBrokerageSyncService(
	client bkclient.ClientInterface,
	connections ConnectionStore,
	accounts AccountStore,
	holdings HoldingStore,
	onSynced holding.ChangeHook,
) *BrokerageSyncService {
	return &BrokerageSyncService{
		client:      client,
		connections: connections,
		accounts:    accounts,
		holdings:    holdings,
		onSynced:    onSynced,
		now:         time.Now,
	}
}

// CreateLinkToken issues a token the frontend uses to start linking.
func (s *BrokerageSyncService) CreateLinkToken(ctx context.Context, userID string) (*bkclient.LinkTokenResponse, error) {
	const op = "ingestion.CreateLinkToken"

	resp, err := s.client.CreateLinkToken(ctx, userID)
	if err != nil {
		return nil, errs.Upstream(op, brokerageProviderName, err)
	}
	return resp, nil
}

// ExchangePublicToken stores the access token of a newly linked item as a
// brokerage-link connection.
func (s *BrokerageSyncService) ExchangePublicToken(ctx context.Context, userID, publicToken string) (*connection.Connection, error) {
	const op = "ingestion.ExchangePublicToken"

	if strings.TrimSpace(publicToken) == "" {
		return nil, errs.Validation(op, "public token is required")
	}

	resp, err := s.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, errs.Upstream(op, brokerageProviderName, err)
	}

	conn, err := s.connections.Create(ctx, connection.CreateParams{
		UserID:      userID,
		Provider:    connection.ProviderBrokerage,
		Identifier:  resp.ItemID,
		Nickname:    brokerageConnectionName,
		SecretToken: resp.AccessToken,
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":       userID,
		"connection_id": conn.ID,
	}).Info("brokerage connection saved")

	return conn, nil
}

// SyncHoldings upserts one investment account per provider account and
// appends the provider's holdings, priced at each security's close price.
func (s *BrokerageSyncService) SyncHoldings(ctx context.Context, userID, connectionID string) (*BrokerageSyncResult, error) {
	const op = "ingestion.SyncHoldings"

	if strings.TrimSpace(connectionID) == "" {
		return nil, errs.Validation(op, "connectionId is required")
	}

	conn, err := s.connections.Get(ctx, userID, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.Provider != connection.ProviderBrokerage {
		return nil, errs.Validation(op, "connection is not a brokerage link")
	}

	ctx, span := tracer.Start(ctx, "brokerage.sync")
	defer span.End()

	resp, err := s.client.GetHoldings(ctx, conn.SecretToken)
	if err != nil {
		return nil, errs.Upstream(op, brokerageProviderName, err)
	}

	result := &BrokerageSyncResult{ConnectionID: conn.ID}

	accountIDs := make(map[string]string, len(resp.Accounts))
	for _, pa := range resp.Accounts {
		acc, err := s.accounts.UpsertAccount(ctx, account.CreateParams{
			ConnectionID: conn.ID,
			Name:         accountName(pa),
			Type:         account.TypeInvestment,
			Currency:     strings.ToUpper(pa.Balances.ISOCurrencyCode),
			ExternalID:   pa.AccountID,
		})
		if err != nil {
			return nil, err
		}
		accountIDs[pa.AccountID] = acc.ID
		result.AccountsSynced++
	}

	securities := make(map[string]bkclient.Security, len(resp.Securities))
	for _, sec := range resp.Securities {
		securities[sec.SecurityID] = sec
	}

	asOf := s.now()
	rows := make([]holding.CreateParams, 0, len(resp.Holdings))
	for _, h := range resp.Holdings {
		sec, ok := securities[h.SecurityID]
		accountID, mapped := accountIDs[h.AccountID]
		if !ok || !mapped || sec.Symbol() == "" {
			result.Skipped++
			continue
		}

		params := holding.CreateParams{
			ID:         uuid.NewString(),
			AccountID:  accountID,
			Symbol:     sec.Symbol(),
			Quantity:   h.Quantity,
			PriceUSD:   sec.ClosePrice,
			AssetClass: holding.AssetEquity,
		}
		params.ApplyDefaults(asOf)
		rows = append(rows, params)
	}

	if len(rows) > 0 {
		written, err := s.holdings.CreateBatch(ctx, rows)
		if err != nil {
			return nil, errs.Persistence(op, err)
		}
		result.HoldingsWritten = written
	}

	log.WithFields(log.Fields{
		"user_id":          userID,
		"connection_id":    conn.ID,
		"accounts":         result.AccountsSynced,
		"holdings_written": result.HoldingsWritten,
		"skipped":          result.Skipped,
	}).Info("brokerage holdings synced")

	if s.onSynced != nil {
		s.onSynced(ctx, userID)
	}
	return result, nil
}

func accountName(a bkclient.Account) string {
	switch {
	case a.Name != "":
		return a.Name
	case a.OfficialName != "":
		return a.OfficialName
	default:
		return "Investment Account"
	}
}
