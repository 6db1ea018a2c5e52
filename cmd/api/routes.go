package main

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"networth/internal/shared/config"
	"networth/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", deps.HealthHandler.HandleHealth)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT, cfg.Auth.DefaultUserID)
	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authMiddleware(middleware.NoStore(h)))
	}

	protect("GET /api/networth/summary", deps.PortfolioHandler.HandleNetWorth)
	protect("GET /api/exposure/summary", deps.PortfolioHandler.HandleExposure)

	protect("GET /api/holdings", deps.HoldingHandler.HandleList)
	protect("POST /api/holdings/manual", deps.HoldingHandler.HandleAddManual)
	protect("DELETE /api/holdings/{id}", deps.HoldingHandler.HandleDelete)

	protect("GET /api/liabilities", deps.LiabilityHandler.HandleListLiabilities)
	protect("POST /api/liabilities", deps.LiabilityHandler.HandleCreateLiability)
	protect("GET /api/realestate", deps.LiabilityHandler.HandleListProperties)
	protect("POST /api/realestate", deps.LiabilityHandler.HandleCreateProperty)

	protect("GET /api/wallets", deps.SyncHandler.HandleListWallets)
	protect("POST /api/wallets", deps.SyncHandler.HandleAddWallet)
	protect("POST /api/wallets/refresh", deps.SyncHandler.HandleRefreshWallets)

	protect("POST /api/brokerage/link-token", deps.SyncHandler.HandleCreateLinkToken)
	protect("POST /api/brokerage/exchange", deps.SyncHandler.HandleExchangePublicToken)
	protect("POST /api/brokerage/sync", deps.SyncHandler.HandleSyncBrokerage)

	protect("POST /api/prices/refresh", deps.SyncHandler.HandleRefreshPrices)

	protect("GET /api/snapshots", deps.SnapshotHandler.HandleList)
	protect("POST /api/snapshots", deps.SnapshotHandler.HandleRecord)

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(middleware.Tracing(handler))
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Info("TLS security middleware enabled (HSTS)")
	}

	return handler
}
