package http

import (
	"context"
	"net/http"

	"networth/internal/domain/portfolio"
)

type PortfolioService interface {
	NetWorth(ctx context.Context, userID string) (portfolio.NetWorthSummary, error)
	Exposure(ctx context.Context, userID string) (portfolio.ExposureSummary, error)
}

// PortfolioHandler serves the net-worth and exposure summaries.
type PortfolioHandler struct {
	svc PortfolioService
}

func NewPortfolioHandler(svc PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{svc: svc}
}

// HandleNetWorth handles GET /api/networth/summary
func (h *PortfolioHandler) HandleNetWorth(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.NetWorth(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleExposure handles GET /api/exposure/summary
func (h *PortfolioHandler) HandleExposure(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.Exposure(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
