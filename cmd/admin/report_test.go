package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"networth/internal/domain/exposure"
	"networth/internal/domain/ingestion"
	"networth/internal/domain/portfolio"
	"networth/internal/domain/snapshot"
)

func TestSplitUserIDs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "u1", want: []string{"u1"}},
		{name: "trims and drops blanks", in: " u1, ,u2 ,", want: []string{"u1", "u2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitUserIDs(tt.in))
		})
	}
}

func TestUSD(t *testing.T) {
	assert.Equal(t, "$1,234.50", usd(1234.5))
	assert.Equal(t, "$0.00", usd(0))
}

func TestRenderSnapshots(t *testing.T) {
	var buf bytes.Buffer
	renderSnapshots(&buf, []snapshotRow{{
		UserID: "u1",
		Snapshot: &snapshot.Snapshot{
			TakenAt:             time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			TotalNetWorthUSD:    1500,
			TotalCryptoUSD:      1000,
			TotalTradfiUSD:      1000,
			TotalLiabilitiesUSD: 500,
		},
	}})

	out := buf.String()
	assert.Contains(t, out, "u1")
	assert.Contains(t, out, "2025-03-01T12:00:00Z")
	assert.Contains(t, out, "$1,500.00")
	assert.Contains(t, out, "$500.00")
}

func TestRenderRefreshResults(t *testing.T) {
	var buf bytes.Buffer
	renderRefreshResults(&buf, []refreshRow{{
		UserID: "u2",
		Result: &ingestion.RefreshResult{WalletsTotal: 3, Synced: 2, Failed: 1, HoldingsWritten: 17},
	}})

	out := buf.String()
	assert.Contains(t, out, "u2")
	assert.Contains(t, out, "17")
}

func TestRenderExposure(t *testing.T) {
	var buf bytes.Buffer
	renderExposure(&buf, portfolio.ExposureSummary{
		TotalNetWorthUSD: 2000,
		CryptoBreakdown: portfolio.CryptoBreakdown{
			StablecoinUSD:          250,
			TotalCryptoExposureUSD: 250,
		},
		ExposuresByBucket: []portfolio.BucketExposure{
			{Bucket: exposure.BucketCrypto, ExposureUSD: 250, PctOfNetWorth: 12.5},
			{Bucket: exposure.BucketEquity, ExposureUSD: 1750, PctOfNetWorth: 87.5},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "equity")
	assert.Contains(t, out, "87.50%")
	assert.Contains(t, out, "$2,000.00")
	assert.Contains(t, out, exposure.SubtypeStablecoin)
}

func TestRenderClassification(t *testing.T) {
	var buf bytes.Buffer
	renderClassification(&buf, "v1", exposure.Classification{
		Bucket:           exposure.BucketCrypto,
		Subtype:          exposure.SubtypeCryptoETF,
		IsCryptoExposure: true,
		CryptoUnderlying: "BTC",
		ExposureUSD:      100,
		Rule:             "IBIT",
	})

	out := buf.String()
	assert.Contains(t, out, "crypto_etf")
	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, "IBIT")
	assert.Contains(t, out, "$100.00")
}
