package http

import (
	"context"
	"net/http"
	"time"

	"networth/internal/domain/holding"
)

type HoldingService interface {
	List(ctx context.Context, userID string) ([]*holding.Position, error)
	AddManual(ctx context.Context, userID string, in holding.ManualInput) (*holding.Holding, error)
	Delete(ctx context.Context, userID, id string) error
}

type HoldingHandler struct {
	svc HoldingService
}

func NewHoldingHandler(svc HoldingService) *HoldingHandler {
	return &HoldingHandler{svc: svc}
}

// HoldingResponse is a holding flattened with the display fields of its
// account and connection.
type HoldingResponse struct {
	ID                 string             `json:"id"`
	Symbol             string             `json:"symbol"`
	Quantity           float64            `json:"quantity"`
	PriceUSD           *float64           `json:"priceUsd"`
	ValueUSD           *float64           `json:"valueUsd"`
	PurchasePriceUSD   *float64           `json:"purchasePriceUsd,omitempty"`
	AssetClass         holding.AssetClass `json:"assetClass"`
	AsOf               time.Time          `json:"asOf"`
	EffectiveDate      string             `json:"effectiveDate"`
	AccountID          string             `json:"accountId"`
	AccountName        string             `json:"accountName"`
	AccountType        string             `json:"accountType"`
	ConnectionProvider string             `json:"connectionProvider"`
	ConnectionName     string             `json:"connectionName"`
}

// manualHoldingRequest accepts effectiveDate as YYYY-MM-DD.
type manualHoldingRequest struct {
	holding.ManualInput
	EffectiveDate string `json:"effectiveDate,omitempty"`
}

// HandleList handles GET /api/holdings
func (h *HoldingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	positions, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]HoldingResponse, 0, len(positions))
	for _, p := range positions {
		response = append(response, toHoldingResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

// HandleAddManual handles POST /api/holdings/manual
func (h *HoldingHandler) HandleAddManual(w http.ResponseWriter, r *http.Request) {
	const op = "http.AddManualHolding"

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req manualHoldingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, r, op, "Invalid request body")
		return
	}

	in := req.ManualInput
	if req.EffectiveDate != "" {
		d, err := time.Parse(time.DateOnly, req.EffectiveDate)
		if err != nil {
			writeValidation(w, r, op, "effectiveDate must be YYYY-MM-DD")
			return
		}
		in.EffectiveDate = &d
	}

	created, err := h.svc.AddManual(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleDelete handles DELETE /api/holdings/{id}
func (h *HoldingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toHoldingResponse(p *holding.Position) HoldingResponse {
	resp := HoldingResponse{
		ID:               p.ID,
		Symbol:           p.Symbol,
		Quantity:         p.Quantity,
		PriceUSD:         p.PriceUSD,
		ValueUSD:         p.ValueUSD,
		PurchasePriceUSD: p.PurchasePriceUSD,
		AssetClass:       p.AssetClass,
		AsOf:             p.AsOf,
		AccountID:        p.AccountID,
	}
	if !p.EffectiveDate.IsZero() {
		resp.EffectiveDate = p.EffectiveDate.Format(time.DateOnly)
	}
	if p.Account != nil {
		resp.AccountName = p.Account.Name
		resp.AccountType = string(p.Account.Type)
	}
	if p.Connection != nil {
		resp.ConnectionProvider = string(p.Connection.Provider)
		resp.ConnectionName = p.Connection.DisplayName()
	}
	return resp
}
