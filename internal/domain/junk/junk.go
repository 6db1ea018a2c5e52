// Package junk rejects spam and dust token rows before they reach storage.
package junk

import "strings"

// DefaultDustThreshold is the USD value below which a priced row is dust.
const DefaultDustThreshold = 1.0

// Reason names the first rule a row tripped.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonNoPrice   Reason = "missing_price"
	ReasonURL       Reason = "url_in_symbol"
	ReasonSpamTerm  Reason = "spam_phrase"
	ReasonDustValue Reason = "dust_value"
)

var (
	urlIndicators = []string{"http", "https", ".com", ".net", ".org", ".io"}
	spamPhrases   = []string{
		"visit ", "claim ", "rewards", "reward", "bonus",
		"gift", "airdrop", "notice", "urgent", "secure your funds",
	}
)

// Filter evaluates the junk rules in order. The zero value has no dust
// threshold; use Default for the production rule set.
type Filter struct {
	DustThreshold float64
}

func Default() Filter {
	return Filter{DustThreshold: DefaultDustThreshold}
}

// Reason returns why the row is junk, or ReasonNone.
func (f Filter) Reason(symbol string, priceUSD, valueUSD *float64) Reason {
	if priceUSD == nil || *priceUSD <= 0 {
		return ReasonNoPrice
	}

	lower := strings.ToLower(symbol)
	if containsAny(lower, urlIndicators) {
		return ReasonURL
	}
	if containsAny(lower, spamPhrases) {
		return ReasonSpamTerm
	}

	if valueUSD != nil && *valueUSD < f.DustThreshold {
		return ReasonDustValue
	}
	return ReasonNone
}

func (f Filter) IsJunk(symbol string, priceUSD, valueUSD *float64) bool {
	return f.Reason(symbol, priceUSD, valueUSD) != ReasonNone
}

// IsJunk applies the default rule set.
func IsJunk(symbol string, priceUSD, valueUSD *float64) bool {
	return Default().IsJunk(symbol, priceUSD, valueUSD)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
