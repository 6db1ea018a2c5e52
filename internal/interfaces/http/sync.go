package http

import (
	"context"
	"net/http"

	"networth/internal/domain/connection"
	"networth/internal/domain/ingestion"
	bkclient "networth/internal/infrastructure/brokerage"
)

type WalletService interface {
	AddWallet(ctx context.Context, userID string, in ingestion.WalletInput) (*connection.Connection, error)
	ListWallets(ctx context.Context, userID string) ([]*connection.Connection, error)
	RefreshWallets(ctx context.Context, userID string) (*ingestion.RefreshResult, error)
}

type BrokerageService interface {
	CreateLinkToken(ctx context.Context, userID string) (*bkclient.LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, userID, publicToken string) (*connection.Connection, error)
	SyncHoldings(ctx context.Context, userID, connectionID string) (*ingestion.BrokerageSyncResult, error)
}

type PriceService interface {
	RefreshPrices(ctx context.Context, userID string) (*ingestion.PriceRefreshResult, error)
}

// SyncHandler exposes the provider ingestion operations.
type SyncHandler struct {
	wallets   WalletService
	brokerage BrokerageService
	prices    PriceService
}

func NewSyncHandler(wallets WalletService, brokerage BrokerageService, prices PriceService) *SyncHandler {
	return &SyncHandler{wallets: wallets, brokerage: brokerage, prices: prices}
}

type walletListResponse struct {
	Wallets []*connection.Connection `json:"wallets"`
}

// HandleListWallets handles GET /api/wallets
func (h *SyncHandler) HandleListWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	wallets, err := h.wallets.ListWallets(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if wallets == nil {
		wallets = []*connection.Connection{}
	}
	writeJSON(w, http.StatusOK, walletListResponse{Wallets: wallets})
}

// HandleAddWallet handles POST /api/wallets
func (h *SyncHandler) HandleAddWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in ingestion.WalletInput
	if err := decodeJSON(r, &in); err != nil {
		writeValidation(w, r, "http.AddWallet", "Invalid request body")
		return
	}

	conn, err := h.wallets.AddWallet(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, conn)
}

// HandleRefreshWallets handles POST /api/wallets/refresh
func (h *SyncHandler) HandleRefreshWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.wallets.RefreshWallets(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type linkTokenResponse struct {
	LinkToken  string `json:"linkToken"`
	Expiration string `json:"expiration,omitempty"`
}

// HandleCreateLinkToken handles POST /api/brokerage/link-token
func (h *SyncHandler) HandleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	resp, err := h.brokerage.CreateLinkToken(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, linkTokenResponse{LinkToken: resp.LinkToken, Expiration: resp.Expiration})
}

type exchangeRequest struct {
	PublicToken string `json:"publicToken"`
}

// HandleExchangePublicToken handles POST /api/brokerage/exchange
func (h *SyncHandler) HandleExchangePublicToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req exchangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, r, "http.ExchangePublicToken", "Invalid request body")
		return
	}

	conn, err := h.brokerage.ExchangePublicToken(r.Context(), userID, req.PublicToken)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, conn)
}

type syncRequest struct {
	ConnectionID string `json:"connectionId"`
}

// HandleSyncBrokerage handles POST /api/brokerage/sync
func (h *SyncHandler) HandleSyncBrokerage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req syncRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, r, "http.SyncBrokerage", "Invalid request body")
		return
	}

	result, err := h.brokerage.SyncHoldings(r.Context(), userID, req.ConnectionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleRefreshPrices handles POST /api/prices/refresh
func (h *SyncHandler) HandleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.prices.RefreshPrices(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
