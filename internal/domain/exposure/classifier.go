// Package exposure maps holdings to exposure buckets and subtypes.
package exposure

import (
	"strings"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/holding"
)

type Bucket string

const (
	BucketCrypto      Bucket = "crypto"
	BucketEquity      Bucket = "equity"
	BucketCash        Bucket = "cash"
	BucketFixedIncome Bucket = "fixed_income"
	BucketRealEstate  Bucket = "real_estate"
	BucketCommodities Bucket = "commodities"
	BucketUnknown     Bucket = "unknown"
)

func (b Bucket) Valid() bool {
	switch b {
	case BucketCrypto, BucketEquity, BucketCash, BucketFixedIncome,
		BucketRealEstate, BucketCommodities, BucketUnknown:
		return true
	}
	return false
}

// Subtypes produced outside the equity rules.
const (
	SubtypeStablecoin     = "stablecoin"
	SubtypeSpotOnChain    = "spot_on_chain"
	SubtypeSpotCustodial  = "spot_custodial"
	SubtypeCryptoETF      = "crypto_etf"
	SubtypeCryptoEquity   = "crypto_equity"
	SubtypeUSEquity       = "us_equity"
	SubtypeCash           = "cash"
	SubtypeFixedIncome    = "fixed_income"
	SubtypeDirectProperty = "direct_property"
	SubtypeUnknown        = "unknown"
)

// Classification is the taxonomy leaf of one holding.
type Classification struct {
	Bucket           Bucket  `json:"bucket"`
	Subtype          string  `json:"subtype"`
	IsCryptoExposure bool    `json:"isCryptoExposure"`
	CryptoUnderlying string  `json:"cryptoUnderlying,omitempty"`
	ExposureUSD      float64 `json:"exposureUsd"`
	// Rule names the equity rule that matched, if any.
	Rule string `json:"rule,omitempty"`
}

// Classifier is safe for concurrent use; it never mutates after construction.
type Classifier struct {
	taxonomy    *Taxonomy
	stablecoins map[string]struct{}
	rules       map[string]*Rule
}

func NewClassifier(t *Taxonomy) *Classifier {
	c := &Classifier{
		taxonomy:    t,
		stablecoins: make(map[string]struct{}, len(t.Stablecoins)),
		rules:       make(map[string]*Rule),
	}
	for _, s := range t.Stablecoins {
		c.stablecoins[s] = struct{}{}
	}
	// Rules are walked in priority order, so an earlier rule keeps a symbol
	// even if validation was skipped.
	for i := range t.EquityRules {
		r := &t.EquityRules[i]
		for _, s := range r.Symbols {
			if _, taken := c.rules[s]; !taken {
				c.rules[s] = r
			}
		}
	}
	return c
}

// NewDefaultClassifier builds a classifier over the embedded taxonomy.
func NewDefaultClassifier() (*Classifier, error) {
	t, err := DefaultTaxonomy()
	if err != nil {
		return nil, err
	}
	return NewClassifier(t), nil
}

func (c *Classifier) TaxonomyVersion() string {
	return c.taxonomy.Version
}

// Classify assigns h to a bucket and subtype. acc and conn supply venue
// context and may be nil. Holdings without a positive value are unknown with
// zero exposure.
func (c *Classifier) Classify(h *holding.Holding, acc *account.Account, conn *connection.Connection) Classification {
	value := h.Value()
	if value <= 0 {
		return Classification{Bucket: BucketUnknown, Subtype: SubtypeUnknown}
	}

	symbol := normalizeSymbol(h.Symbol)
	var accountType account.Type
	if acc != nil {
		accountType = acc.Type
	}
	var provider connection.Provider
	if conn != nil {
		provider = conn.Provider
	}

	out := Classification{Bucket: BucketUnknown, Subtype: SubtypeUnknown, ExposureUSD: value}

	switch {
	case h.AssetClass == holding.AssetCrypto:
		out.Bucket = BucketCrypto
		out.IsCryptoExposure = true
		switch {
		case c.isStablecoin(symbol):
			out.Subtype = SubtypeStablecoin
		case provider == connection.ProviderWallet || accountType == account.TypeCryptoWallet:
			out.Subtype = SubtypeSpotOnChain
		default:
			out.Subtype = SubtypeSpotCustodial
		}

	case h.AssetClass == holding.AssetEquity:
		if r, ok := c.rules[symbol]; ok {
			out.Bucket = r.Bucket
			out.Subtype = r.Subtype
			out.IsCryptoExposure = r.CryptoExposure
			out.CryptoUnderlying = r.Underlying
			out.Rule = r.Name
		} else {
			out.Bucket = BucketEquity
			out.Subtype = SubtypeUSEquity
		}

	case h.AssetClass == holding.AssetCash:
		out.Bucket = BucketCash
		out.Subtype = SubtypeCash

	case h.AssetClass == holding.AssetFixedIncome:
		out.Bucket = BucketFixedIncome
		out.Subtype = SubtypeFixedIncome

	case h.AssetClass == holding.AssetRealEstate || accountType == account.TypeRealEstate:
		out.Bucket = BucketRealEstate
		out.Subtype = SubtypeDirectProperty
	}

	return out
}

func (c *Classifier) isStablecoin(symbol string) bool {
	if _, ok := c.stablecoins[symbol]; ok {
		return true
	}
	suffix := c.taxonomy.StablecoinSuffix
	return suffix != "" && strings.HasSuffix(symbol, suffix)
}
