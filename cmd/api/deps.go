package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/exposure"
	"networth/internal/domain/holding"
	"networth/internal/domain/ingestion"
	"networth/internal/domain/liability"
	"networth/internal/domain/portfolio"
	"networth/internal/domain/realestate"
	"networth/internal/domain/snapshot"
	bkclient "networth/internal/infrastructure/brokerage"
	"networth/internal/infrastructure/crypto"
	"networth/internal/infrastructure/postgres"
	"networth/internal/infrastructure/pricing"
	walletclient "networth/internal/infrastructure/wallet"
	httphandlers "networth/internal/interfaces/http"
	"networth/internal/interfaces/scheduler"
	"networth/internal/shared/auth"
	"networth/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	PortfolioHandler *httphandlers.PortfolioHandler
	HoldingHandler   *httphandlers.HoldingHandler
	LiabilityHandler *httphandlers.LiabilityHandler
	SyncHandler      *httphandlers.SyncHandler
	SnapshotHandler  *httphandlers.SnapshotHandler
	HealthHandler    *httphandlers.HealthHandler

	// Auth
	JWT *auth.JWT

	// Background snapshot writes, drained on shutdown
	Recorder *snapshot.Recorder

	// Scheduler job provider inputs
	ConnectionRepo  *postgres.ConnectionRepository
	RefreshServices scheduler.RefreshServices
}

// NewDependencies connects to the database, applies the schema and wires
// every service.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Info("connected to database")

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, err
	}

	classifier, err := newClassifier(cfg.Exposure.TaxonomyFile)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.WithField("taxonomy_version", classifier.TaxonomyVersion()).Info("exposure taxonomy loaded")

	// Repositories
	connectionRepo := postgres.NewConnectionRepository(db, encryptor)
	accountRepo := postgres.NewAccountRepository(db)
	holdingRepo := postgres.NewHoldingRepository(db)
	liabilityRepo := postgres.NewLiabilityRepository(db)
	propertyRepo := postgres.NewRealEstateRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)

	// Aggregation and the snapshot recorder every mutation reports to
	portfolioService := portfolio.NewService(holdingRepo, liabilityRepo, propertyRepo, classifier)
	recorder := snapshot.NewRecorder(snapshotRepo, portfolioService)

	// Domain services
	connectionService := connection.NewService(connectionRepo)
	accountService := account.NewService(accountRepo)

	tracedHTTP := func(timeout time.Duration) *http.Client {
		return &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		}
	}

	priceClient := pricing.NewClient(cfg.Pricing.BaseURL).WithHTTPClient(tracedHTTP(10 * time.Second))
	prices := pricing.NewCachedProvider(priceClient, cfg.Pricing.CacheTTL)

	holdingService := holding.NewService(holdingRepo, connectionService, accountService, prices, recorder.Hook(snapshot.TriggerHoldingChange))
	liabilityService := liability.NewService(liabilityRepo, recorder.Hook(snapshot.TriggerLiabilityChange))
	propertyService := realestate.NewService(propertyRepo, recorder.Hook(snapshot.TriggerPropertyChange))

	// A nil interface, not a typed nil, marks the wallet provider unconfigured.
	var wallets walletclient.ClientInterface
	if cfg.Wallet.APIKey != "" {
		wallets = walletclient.NewClient(cfg.Wallet.BaseURL, cfg.Wallet.APIKey, cfg.Wallet.Timeout).
			WithHTTPClient(tracedHTTP(cfg.Wallet.Timeout))
	} else {
		log.Warn("MORALIS_API_KEY not set: wallet refresh disabled")
	}
	walletService := ingestion.NewWalletSyncService(
		wallets, connectionService, accountService, holdingRepo,
		recorder.Hook(snapshot.TriggerWalletRefresh),
		cfg.Wallet.Concurrency, cfg.Wallet.DefaultChain,
	)

	brokerage := bkclient.NewClient(cfg.Brokerage.BaseURL, cfg.Brokerage.ClientID, cfg.Brokerage.Secret, cfg.Brokerage.ClientName).
		WithHTTPClient(tracedHTTP(30 * time.Second))
	brokerageService := ingestion.NewBrokerageSyncService(
		brokerage, connectionService, accountService, holdingRepo,
		recorder.Hook(snapshot.TriggerPlaidSync),
	)

	priceService := ingestion.NewPriceRefreshService(holdingRepo, prices, recorder.Hook(snapshot.TriggerPriceRefresh))

	jwt := auth.NewJWT(cfg.Auth.JWTSecret)

	return &Dependencies{
		DB:               db,
		PortfolioHandler: httphandlers.NewPortfolioHandler(portfolioService),
		HoldingHandler:   httphandlers.NewHoldingHandler(holdingService),
		LiabilityHandler: httphandlers.NewLiabilityHandler(liabilityService, propertyService),
		SyncHandler:      httphandlers.NewSyncHandler(walletService, brokerageService, priceService),
		SnapshotHandler:  httphandlers.NewSnapshotHandler(recorder),
		HealthHandler:    httphandlers.NewHealthHandler(db),
		JWT:              jwt,
		Recorder:         recorder,
		ConnectionRepo:   connectionRepo,
		// Scheduled runs record one snapshot themselves.
		RefreshServices: scheduler.RefreshServices{
			Wallets:   walletService.WithoutHook(),
			Prices:    priceService.WithoutHook(),
			Snapshots: recorder,
		},
	}, nil
}

// newClassifier loads the taxonomy file when one is configured and falls
// back to the embedded default.
func newClassifier(path string) (*exposure.Classifier, error) {
	if path == "" {
		return exposure.NewDefaultClassifier()
	}
	t, err := exposure.LoadTaxonomy(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy %s: %w", path, err)
	}
	return exposure.NewClassifier(t), nil
}

// Close waits for pending snapshot writes, then releases the database.
func (d *Dependencies) Close() {
	if d.Recorder != nil {
		d.Recorder.Wait()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
