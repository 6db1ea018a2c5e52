// Package portfolio folds holdings, liabilities and real estate into
// net-worth and exposure summaries.
package portfolio

import (
	"sort"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/exposure"
	"networth/internal/domain/holding"
)

// NetWorthSummary is the full balance-sheet view: real estate counts as a
// tradfi asset and liabilities are subtracted.
type NetWorthSummary struct {
	TotalAssetsUSD      float64 `json:"totalAssetsUsd"`
	TotalLiabilitiesUSD float64 `json:"totalLiabilitiesUsd"`
	TotalNetWorthUSD    float64 `json:"totalNetWorthUsd"`
	TotalCryptoUSD      float64 `json:"totalCryptoUsd"`
	TotalTradfiUSD      float64 `json:"totalTradfiUsd"`
	TotalRealEstateUSD  float64 `json:"totalRealEstateUsd"`
}

// ComputeNetWorth splits holding values by asset class (crypto versus
// everything else), adds real estate to assets and tradfi, and subtracts
// liability balances. Missing values count as 0; no row is excluded.
func ComputeNetWorth(holdings []*holding.Holding, liabilityBalances, realEstateValues []float64) NetWorthSummary {
	var s NetWorthSummary

	for _, h := range holdings {
		if h == nil {
			continue
		}
		v := h.Value()
		if h.AssetClass == holding.AssetCrypto {
			s.TotalCryptoUSD += v
		} else {
			s.TotalTradfiUSD += v
		}
	}
	for _, v := range realEstateValues {
		s.TotalRealEstateUSD += v
	}
	for _, b := range liabilityBalances {
		s.TotalLiabilitiesUSD += b
	}

	s.TotalTradfiUSD += s.TotalRealEstateUSD
	s.TotalAssetsUSD = s.TotalCryptoUSD + s.TotalTradfiUSD
	s.TotalNetWorthUSD = s.TotalAssetsUSD - s.TotalLiabilitiesUSD
	return s
}

type Classifier interface {
	Classify(h *holding.Holding, acc *account.Account, conn *connection.Connection) exposure.Classification
}

type CryptoBreakdown struct {
	SpotOnChainUSD         float64 `json:"spotOnChainUsd"`
	SpotCustodialUSD       float64 `json:"spotCustodialUsd"`
	StablecoinUSD          float64 `json:"stablecoinUsd"`
	CryptoETFUSD           float64 `json:"cryptoEtfUsd"`
	CryptoEquityUSD        float64 `json:"cryptoEquityUsd"`
	OtherCryptoUSD         float64 `json:"otherCryptoUsd"`
	TotalCryptoExposureUSD float64 `json:"totalCryptoExposureUsd"`
}

type BucketExposure struct {
	Bucket        exposure.Bucket `json:"bucket"`
	ExposureUSD   float64         `json:"exposureUsd"`
	PctOfNetWorth float64         `json:"pctOfNetWorth"`
}

// ExposureSummary describes risk exposure over positively valued holdings.
// Its TotalNetWorthUSD is holdings-only: no real estate and no liabilities,
// unlike NetWorthSummary.
type ExposureSummary struct {
	TotalNetWorthUSD       float64          `json:"totalNetWorthUsd"`
	TotalCryptoExposureUSD float64          `json:"totalCryptoExposureUsd"`
	TotalTradfiExposureUSD float64          `json:"totalTradfiExposureUsd"`
	CryptoBreakdown        CryptoBreakdown  `json:"cryptoBreakdown"`
	ExposuresByBucket      []BucketExposure `json:"exposuresByBucket"`
}

// ComputeExposureSummary classifies every position with a positive value and
// accumulates per bucket and per crypto subtype. Buckets are sorted by name
// so equal inputs always produce identical output.
func ComputeExposureSummary(positions []*holding.Position, c Classifier) ExposureSummary {
	var s ExposureSummary
	byBucket := make(map[exposure.Bucket]float64)

	for _, p := range positions {
		if p == nil || p.Value() <= 0 {
			continue
		}
		s.TotalNetWorthUSD += p.Value()

		cls := c.Classify(&p.Holding, p.Account, p.Connection)
		byBucket[cls.Bucket] += cls.ExposureUSD

		if !cls.IsCryptoExposure {
			s.TotalTradfiExposureUSD += cls.ExposureUSD
			continue
		}
		s.TotalCryptoExposureUSD += cls.ExposureUSD
		switch cls.Subtype {
		case exposure.SubtypeSpotOnChain:
			s.CryptoBreakdown.SpotOnChainUSD += cls.ExposureUSD
		case exposure.SubtypeSpotCustodial:
			s.CryptoBreakdown.SpotCustodialUSD += cls.ExposureUSD
		case exposure.SubtypeStablecoin:
			s.CryptoBreakdown.StablecoinUSD += cls.ExposureUSD
		case exposure.SubtypeCryptoETF:
			s.CryptoBreakdown.CryptoETFUSD += cls.ExposureUSD
		case exposure.SubtypeCryptoEquity:
			s.CryptoBreakdown.CryptoEquityUSD += cls.ExposureUSD
		default:
			s.CryptoBreakdown.OtherCryptoUSD += cls.ExposureUSD
		}
	}
	s.CryptoBreakdown.TotalCryptoExposureUSD = s.TotalCryptoExposureUSD

	s.ExposuresByBucket = make([]BucketExposure, 0, len(byBucket))
	for b, v := range byBucket {
		s.ExposuresByBucket = append(s.ExposuresByBucket, BucketExposure{
			Bucket:        b,
			ExposureUSD:   v,
			PctOfNetWorth: pct(v, s.TotalNetWorthUSD),
		})
	}
	sort.Slice(s.ExposuresByBucket, func(i, j int) bool {
		return s.ExposuresByBucket[i].Bucket < s.ExposuresByBucket[j].Bucket
	})

	return s
}

func pct(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}
