package portfolio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/exposure"
	"networth/internal/domain/holding"
)

func usd(v float64) *float64 { return &v }

func TestComputeNetWorth(t *testing.T) {
	holdings := []*holding.Holding{
		{AssetClass: holding.AssetCrypto, ValueUSD: usd(1000)},
		{AssetClass: holding.AssetEquity, ValueUSD: usd(2000)},
	}

	got := ComputeNetWorth(holdings, []float64{100000}, []float64{500000})

	assert.Equal(t, NetWorthSummary{
		TotalAssetsUSD:      503000,
		TotalLiabilitiesUSD: 100000,
		TotalNetWorthUSD:    403000,
		TotalCryptoUSD:      1000,
		TotalTradfiUSD:      502000,
		TotalRealEstateUSD:  500000,
	}, got)
}

func TestComputeNetWorth_MissingAndNonPositiveValues(t *testing.T) {
	holdings := []*holding.Holding{
		{AssetClass: holding.AssetCrypto, ValueUSD: nil},
		{AssetClass: holding.AssetCrypto, ValueUSD: usd(-50)},
		{AssetClass: holding.AssetCash, ValueUSD: usd(0)},
		{AssetClass: holding.AssetCash, ValueUSD: usd(300)},
	}

	got := ComputeNetWorth(holdings, nil, nil)

	assert.Equal(t, -50.0, got.TotalCryptoUSD, "net-worth sums never exclude rows")
	assert.Equal(t, 300.0, got.TotalTradfiUSD)
	assert.Equal(t, 250.0, got.TotalNetWorthUSD)
}

func TestComputeNetWorth_SkipsNilHoldings(t *testing.T) {
	holdings := []*holding.Holding{nil, {AssetClass: holding.AssetEquity, ValueUSD: usd(75)}, nil}

	var got NetWorthSummary
	require.NotPanics(t, func() { got = ComputeNetWorth(holdings, nil, nil) })
	assert.Equal(t, 75.0, got.TotalTradfiUSD)
	assert.Equal(t, 75.0, got.TotalNetWorthUSD)
}

func TestComputeNetWorth_Empty(t *testing.T) {
	assert.Equal(t, NetWorthSummary{}, ComputeNetWorth(nil, nil, nil))
}

func position(symbol string, class holding.AssetClass, v *float64, acc *account.Account, conn *connection.Connection) *holding.Position {
	return &holding.Position{
		Holding:    holding.Holding{Symbol: symbol, AssetClass: class, ValueUSD: v},
		Account:    acc,
		Connection: conn,
	}
}

func testPositions() []*holding.Position {
	wallet := &connection.Connection{Provider: connection.ProviderWallet}
	walletAcc := &account.Account{Type: account.TypeCryptoWallet}
	manual := &connection.Connection{Provider: connection.ProviderManual}
	manualAcc := &account.Account{Type: account.TypeManual}

	return []*holding.Position{
		position("ETH", holding.AssetCrypto, usd(3000), walletAcc, wallet),
		position("USDC", holding.AssetCrypto, usd(1000), walletAcc, wallet),
		position("BTC", holding.AssetCrypto, usd(2000), manualAcc, manual),
		position("IBIT", holding.AssetEquity, usd(1500), manualAcc, manual),
		position("MSTR", holding.AssetEquity, usd(500), manualAcc, manual),
		position("VTI", holding.AssetEquity, usd(1500), manualAcc, manual),
		position("GLD", holding.AssetEquity, usd(500), manualAcc, manual),
		position("DUST", holding.AssetCrypto, usd(0), walletAcc, wallet),
		position("NOPRICE", holding.AssetEquity, nil, manualAcc, manual),
	}
}

func TestComputeExposureSummary(t *testing.T) {
	c, err := exposure.NewDefaultClassifier()
	require.NoError(t, err)

	got := ComputeExposureSummary(testPositions(), c)

	assert.Equal(t, 10000.0, got.TotalNetWorthUSD)
	assert.Equal(t, 8000.0, got.TotalCryptoExposureUSD)
	assert.Equal(t, 2000.0, got.TotalTradfiExposureUSD)
	assert.Equal(t, CryptoBreakdown{
		SpotOnChainUSD:         3000,
		SpotCustodialUSD:       2000,
		StablecoinUSD:          1000,
		CryptoETFUSD:           1500,
		CryptoEquityUSD:        500,
		TotalCryptoExposureUSD: 8000,
	}, got.CryptoBreakdown)
	assert.Equal(t, []BucketExposure{
		{Bucket: exposure.BucketCommodities, ExposureUSD: 500, PctOfNetWorth: 5},
		{Bucket: exposure.BucketCrypto, ExposureUSD: 8000, PctOfNetWorth: 80},
		{Bucket: exposure.BucketEquity, ExposureUSD: 1500, PctOfNetWorth: 15},
	}, got.ExposuresByBucket)
}

func TestComputeExposureSummary_NoPositiveHoldings(t *testing.T) {
	c, err := exposure.NewDefaultClassifier()
	require.NoError(t, err)

	got := ComputeExposureSummary([]*holding.Position{
		position("X", holding.AssetCash, usd(0), nil, nil),
		nil,
	}, c)

	assert.Zero(t, got.TotalNetWorthUSD)
	assert.NotNil(t, got.ExposuresByBucket)
	assert.Empty(t, got.ExposuresByBucket)
}

func TestComputeExposureSummary_OtherCrypto(t *testing.T) {
	classifier := classifierFunc(func(h *holding.Holding, acc *account.Account, conn *connection.Connection) exposure.Classification {
		return exposure.Classification{Bucket: exposure.BucketCrypto, Subtype: "staked", IsCryptoExposure: true, ExposureUSD: h.Value()}
	})

	got := ComputeExposureSummary([]*holding.Position{position("stETH", holding.AssetCrypto, usd(40), nil, nil)}, classifier)

	assert.Equal(t, 40.0, got.CryptoBreakdown.OtherCryptoUSD)
	assert.Equal(t, 100.0, got.ExposuresByBucket[0].PctOfNetWorth)
}

func TestComputeExposureSummary_Deterministic(t *testing.T) {
	c, err := exposure.NewDefaultClassifier()
	require.NoError(t, err)

	first, err := json.Marshal(ComputeExposureSummary(testPositions(), c))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(ComputeExposureSummary(testPositions(), c))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

type classifierFunc func(h *holding.Holding, acc *account.Account, conn *connection.Connection) exposure.Classification

func (f classifierFunc) Classify(h *holding.Holding, acc *account.Account, conn *connection.Connection) exposure.Classification {
	return f(h, acc, conn)
}
