package ingestion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/holding"
	"networth/internal/domain/junk"
	walletclient "networth/internal/infrastructure/wallet"
	"networth/internal/shared/errs"
)

const (
	defaultTokenDecimals     = 18
	maxTokenDecimals         = 255
	defaultTokenSymbol       = "UNKNOWN"
	defaultWalletAccountName = "Crypto Wallet"
	defaultRefreshWorkers    = 4
)

var (
	tracer             = otel.Tracer("networth/ingestion")
	meter              = otel.Meter("networth/ingestion")
	walletRefreshes, _ = meter.Int64Counter("wallet.refresh.total",
		metric.WithDescription("Wallet refresh attempts by outcome"),
	)
	tokensRejected, _ = meter.Int64Counter("wallet.tokens.rejected.total",
		metric.WithDescription("Token rows dropped by the spam and dust filter"),
	)
)

// WalletInput links a wallet address to the user.
type WalletInput struct {
	Address  string `json:"address"`
	Chain    string `json:"chain"`
	Nickname string `json:"nickname"`
}

// RefreshResult reports aggregate counts only; per-wallet errors are logged.
type RefreshResult struct {
	WalletsTotal    int `json:"walletsTotal"`
	Synced          int `json:"synced"`
	Failed          int `json:"failed"`
	Skipped         int `json:"skipped"`
	HoldingsWritten int `json:"holdingsWritten"`
}

type walletOutcome int

const (
	outcomeSynced walletOutcome = iota
	outcomeFailed
	outcomeSkipped
)

func (o walletOutcome) String() string {
	switch o {
	case outcomeSynced:
		return "synced"
	case outcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// WalletSyncService links wallets and replaces their holdings from the
// wallet-data provider.
type WalletSyncService struct {
	client       walletclient.ClientInterface
	connections  ConnectionStore
	accounts     AccountStore
	holdings     HoldingStore
	filter       junk.Filter
	onSynced     holding.ChangeHook
	workers      int
	defaultChain string
	now          func() time.Time
}

// NewWalletSyncService wires the wallet sync. A nil client leaves the
// provider unconfigured: wallets can be linked but not refreshed.
func NewWalletSyncService(
	client walletclient.ClientInterface,
	connections ConnectionStore,
	accounts AccountStore,
	holdings HoldingStore,
	onSynced holding.ChangeHook,
	workers int,
	defaultChain string,
) *WalletSyncService {
	if workers < 1 {
		workers = defaultRefreshWorkers
	}
	if defaultChain == "" {
		defaultChain = connection.DefaultChain
	}
	return &WalletSyncService{
		client:       client,
		connections:  connections,
		accounts:     accounts,
		holdings:     holdings,
		filter:       junk.Default(),
		onSynced:     onSynced,
		workers:      workers,
		defaultChain: defaultChain,
		now:          time.Now,
	}
}

// WithoutHook returns a copy that never fires the sync hook. Callers that
// record their own snapshot after a refresh use it.
func (s *WalletSyncService) WithoutHook() *WalletSyncService {
	c := *s
	c.onSynced = nil
	return &c
}

// AddWallet creates the wallet connection and its single crypto_wallet account.
func (s *WalletSyncService) AddWallet(ctx context.Context, userID string, in WalletInput) (*connection.Connection, error) {
	const op = "ingestion.AddWallet"

	if strings.TrimSpace(in.Address) == "" {
		return nil, errs.Validation(op, "address is required")
	}
	chain := strings.TrimSpace(in.Chain)
	if chain == "" {
		chain = s.defaultChain
	}

	conn, err := s.connections.Create(ctx, connection.CreateParams{
		UserID:     userID,
		Provider:   connection.ProviderWallet,
		Identifier: in.Address,
		Chain:      chain,
		Nickname:   in.Nickname,
	})
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Nickname)
	if name == "" {
		name = defaultWalletAccountName
	}
	if _, err := s.accounts.CreateAccount(ctx, account.CreateParams{
		ConnectionID: conn.ID,
		Name:         name,
		Type:         account.TypeCryptoWallet,
		Currency:     account.DefaultCurrency,
	}); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"wallet":  conn.Identifier,
		"chain":   conn.Chain,
	}).Info("wallet linked")

	return conn, nil
}

func (s *WalletSyncService) ListWallets(ctx context.Context, userID string) ([]*connection.Connection, error) {
	return s.connections.List(ctx, userID, connection.ProviderWallet)
}

// RefreshWallets replaces the holdings of every wallet the user linked.
// Wallets refresh in parallel and fail independently: a provider error
// leaves that wallet's previous holdings untouched.
func (s *WalletSyncService) RefreshWallets(ctx context.Context, userID string) (*RefreshResult, error) {
	const op = "ingestion.RefreshWallets"

	if s.client == nil {
		return nil, errs.Validation(op, "wallet provider API key is not configured")
	}

	ctx, span := tracer.Start(ctx, "wallet.refresh", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	wallets, err := s.connections.List(ctx, userID, connection.ProviderWallet)
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{WalletsTotal: len(wallets)}
	if len(wallets) == 0 {
		return result, nil
	}

	asOf := s.now()
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.workers)

	for _, w := range wallets {
		g.Go(func() error {
			outcome, written := s.refreshWallet(ctx, w, asOf)
			walletRefreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome.String())))

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeSynced:
				result.Synced++
				result.HoldingsWritten += written
			case outcomeSkipped:
				result.Skipped++
			default:
				result.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	span.SetAttributes(
		attribute.Int("wallets.synced", result.Synced),
		attribute.Int("wallets.failed", result.Failed),
	)
	log.WithFields(log.Fields{
		"user_id":          userID,
		"wallets":          result.WalletsTotal,
		"synced":           result.Synced,
		"failed":           result.Failed,
		"skipped":          result.Skipped,
		"holdings_written": result.HoldingsWritten,
	}).Info("wallet refresh complete")

	if result.Synced > 0 && s.onSynced != nil {
		s.onSynced(ctx, userID)
	}
	return result, nil
}

func (s *WalletSyncService) refreshWallet(ctx context.Context, w *connection.Connection, asOf time.Time) (walletOutcome, int) {
	logger := log.WithFields(log.Fields{
		"user_id":       w.UserID,
		"connection_id": w.ID,
		"wallet":        w.Identifier,
	})

	accounts, err := s.accounts.ListByConnection(ctx, w.ID)
	if err != nil {
		logger.WithError(err).Error("failed to load wallet account")
		return outcomeFailed, 0
	}
	if len(accounts) == 0 {
		logger.Warn("wallet has no account, skipping")
		return outcomeSkipped, 0
	}
	accountID := accounts[0].ID

	chain := strings.ToLower(w.Chain)
	if chain == "" {
		chain = s.defaultChain
	}

	tokens, err := s.client.GetTokens(ctx, w.Identifier, chain)
	if err != nil {
		logger.WithError(err).WithField("chain", chain).Error("wallet provider request failed")
		return outcomeFailed, 0
	}

	rows, rejected := TokenHoldings(tokens, accountID, asOf, s.filter)
	if rejected > 0 {
		tokensRejected.Add(ctx, int64(rejected))
	}

	written, err := s.holdings.ReplaceForAccount(ctx, accountID, rows)
	if err != nil {
		logger.WithError(err).WithField("account_id", accountID).Error("failed to replace wallet holdings")
		return outcomeFailed, 0
	}

	logger.WithFields(log.Fields{
		"account_id": accountID,
		"tokens":     len(tokens),
		"kept":       written,
		"rejected":   rejected,
	}).Debug("wallet holdings replaced")

	return outcomeSynced, written
}

// TokenHoldings converts provider token rows into crypto holdings, dropping
// rows the filter rejects and rows whose balance cannot be parsed. It
// returns the kept rows and the number dropped.
func TokenHoldings(tokens []walletclient.Token, accountID string, asOf time.Time, filter junk.Filter) ([]holding.CreateParams, int) {
	rows := make([]holding.CreateParams, 0, len(tokens))
	dropped := 0

	for _, t := range tokens {
		symbol := strings.TrimSpace(t.Symbol)
		if symbol == "" {
			symbol = defaultTokenSymbol
		}

		qty, err := TokenQuantity(t.Balance, t.Decimals)
		if err != nil {
			log.WithError(err).WithField("symbol", symbol).Debug("unparseable token balance")
			dropped++
			continue
		}
		quantity := qty.InexactFloat64()

		price := 0.0
		if t.USDPrice != nil {
			price = *t.USDPrice
		}
		value := holding.NewValue(quantity, price)
		if t.USDValue != nil && *t.USDValue > 0 {
			value = *t.USDValue
		}

		if filter.IsJunk(symbol, &price, &value) {
			dropped++
			continue
		}

		params := holding.CreateParams{
			ID:         uuid.NewString(),
			AccountID:  accountID,
			Symbol:     symbol,
			Quantity:   quantity,
			PriceUSD:   &price,
			ValueUSD:   &value,
			AssetClass: holding.AssetCrypto,
			AsOf:       asOf,
		}
		params.ApplyDefaults(asOf)
		rows = append(rows, params)
	}

	return rows, dropped
}

// TokenQuantity scales a raw integer balance by 10^-decimals. Missing
// decimals default to 18 and an empty balance is zero. Decimals outside the
// uint8 range of ERC-20 are rejected.
func TokenQuantity(balance string, decimals *int) (decimal.Decimal, error) {
	balance = strings.TrimSpace(balance)
	if balance == "" {
		return decimal.Zero, nil
	}

	raw, err := decimal.NewFromString(balance)
	if err != nil {
		return decimal.Zero, err
	}

	d := defaultTokenDecimals
	if decimals != nil {
		d = *decimals
	}
	if d < 0 || d > maxTokenDecimals {
		return decimal.Zero, fmt.Errorf("token decimals %d out of range [0, %d]", d, maxTokenDecimals)
	}
	return raw.Shift(int32(-d)), nil
}
