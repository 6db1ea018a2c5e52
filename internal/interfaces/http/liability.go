package http

import (
	"context"
	"net/http"

	"networth/internal/domain/liability"
	"networth/internal/domain/realestate"
)

type LiabilityService interface {
	Create(ctx context.Context, params liability.CreateParams) (*liability.Liability, error)
	List(ctx context.Context, userID string) ([]*liability.Liability, error)
}

type RealEstateService interface {
	Create(ctx context.Context, params realestate.CreateParams) (*realestate.Property, error)
	List(ctx context.Context, userID string) ([]*realestate.Property, error)
}

// LiabilityHandler serves liabilities and real-estate properties, the two
// user-entered balances that sit outside the holding store.
type LiabilityHandler struct {
	liabilities LiabilityService
	properties  RealEstateService
}

func NewLiabilityHandler(liabilities LiabilityService, properties RealEstateService) *LiabilityHandler {
	return &LiabilityHandler{liabilities: liabilities, properties: properties}
}

// HandleListLiabilities handles GET /api/liabilities
func (h *LiabilityHandler) HandleListLiabilities(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ls, err := h.liabilities.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ls == nil {
		ls = []*liability.Liability{}
	}
	writeJSON(w, http.StatusOK, ls)
}

// HandleCreateLiability handles POST /api/liabilities
func (h *LiabilityHandler) HandleCreateLiability(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var params liability.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		writeValidation(w, r, "http.CreateLiability", "Invalid request body")
		return
	}
	params.UserID = userID

	created, err := h.liabilities.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleListProperties handles GET /api/realestate
func (h *LiabilityHandler) HandleListProperties(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ps, err := h.properties.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ps == nil {
		ps = []*realestate.Property{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// HandleCreateProperty handles POST /api/realestate
func (h *LiabilityHandler) HandleCreateProperty(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var params realestate.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		writeValidation(w, r, "http.CreateProperty", "Invalid request body")
		return
	}
	params.UserID = userID

	created, err := h.properties.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
