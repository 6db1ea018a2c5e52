package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"networth/internal/domain/snapshot"
)

type SnapshotService interface {
	Record(ctx context.Context, userID string, trigger snapshot.Trigger) (*snapshot.Snapshot, error)
	List(ctx context.Context, userID string) ([]*snapshot.Snapshot, error)
}

type SnapshotHandler struct {
	svc SnapshotService
}

func NewSnapshotHandler(svc SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{svc: svc}
}

type snapshotCSVRow struct {
	TakenAt             string  `csv:"taken_at"`
	Source              string  `csv:"source"`
	Trigger             string  `csv:"trigger"`
	TotalNetWorthUSD    float64 `csv:"total_net_worth_usd"`
	TotalCryptoUSD      float64 `csv:"total_crypto_usd"`
	TotalTradfiUSD      float64 `csv:"total_tradfi_usd"`
	TotalRealEstateUSD  float64 `csv:"total_real_estate_usd"`
	TotalLiabilitiesUSD float64 `csv:"total_liabilities_usd"`
}

// HandleList handles GET /api/snapshots. ?format=csv streams the series
// as CSV instead of JSON.
func (h *SnapshotHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	snaps, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeSnapshotCSV(w, snaps)
		return
	}

	if snaps == nil {
		snaps = []*snapshot.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// HandleRecord handles POST /api/snapshots
func (h *SnapshotHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	snap, err := h.svc.Record(r.Context(), userID, snapshot.TriggerManualWrite)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func writeSnapshotCSV(w http.ResponseWriter, snaps []*snapshot.Snapshot) {
	rows := make([]*snapshotCSVRow, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, &snapshotCSVRow{
			TakenAt:             s.TakenAt.UTC().Format(time.RFC3339),
			Source:              string(s.Source),
			Trigger:             string(s.Trigger),
			TotalNetWorthUSD:    s.TotalNetWorthUSD,
			TotalCryptoUSD:      s.TotalCryptoUSD,
			TotalTradfiUSD:      s.TotalTradfiUSD,
			TotalRealEstateUSD:  s.TotalRealEstateUSD,
			TotalLiabilitiesUSD: s.TotalLiabilitiesUSD,
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="snapshots.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := gocsv.Marshal(rows, w); err != nil {
		log.WithError(err).Warn("failed to write snapshot csv")
	}
}
