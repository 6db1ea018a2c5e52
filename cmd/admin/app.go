package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/exposure"
	"networth/internal/domain/ingestion"
	"networth/internal/domain/portfolio"
	"networth/internal/domain/snapshot"
	"networth/internal/infrastructure/crypto"
	"networth/internal/infrastructure/postgres"
	walletclient "networth/internal/infrastructure/wallet"
	"networth/internal/shared/config"
)

// app is the subset of the API's wiring the admin commands need.
type app struct {
	db          *postgres.DB
	connections *postgres.ConnectionRepository
	portfolio   *portfolio.Service
	recorder    *snapshot.Recorder
	wallets     *ingestion.WalletSyncService
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Debug("connected to database")

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	classifier, err := newClassifier(cfg.Exposure.TaxonomyFile)
	if err != nil {
		db.Close()
		return nil, err
	}

	connectionRepo := postgres.NewConnectionRepository(db, encryptor)
	holdingRepo := postgres.NewHoldingRepository(db)

	portfolioService := portfolio.NewService(
		holdingRepo,
		postgres.NewLiabilityRepository(db),
		postgres.NewRealEstateRepository(db),
		classifier,
	)
	recorder := snapshot.NewRecorder(postgres.NewSnapshotRepository(db), portfolioService)

	var wallets walletclient.ClientInterface
	if cfg.Wallet.APIKey != "" {
		wallets = walletclient.NewClient(cfg.Wallet.BaseURL, cfg.Wallet.APIKey, cfg.Wallet.Timeout)
	}
	walletService := ingestion.NewWalletSyncService(
		wallets,
		connection.NewService(connectionRepo),
		account.NewService(postgres.NewAccountRepository(db)),
		holdingRepo,
		recorder.Hook(snapshot.TriggerWalletRefresh),
		cfg.Wallet.Concurrency,
		cfg.Wallet.DefaultChain,
	)

	return &app{
		db:          db,
		connections: connectionRepo,
		portfolio:   portfolioService,
		recorder:    recorder,
		wallets:     walletService,
	}, nil
}

// Close waits for background snapshots so a short-lived command does not
// drop them on exit.
func (a *app) Close() {
	a.recorder.Wait()
	a.db.Close()
}

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
