package account

import (
	"errors"
	"strings"
	"time"
)

type Type string

const (
	TypeManual       Type = "manual"
	TypeCryptoWallet Type = "crypto_wallet"
	TypeInvestment   Type = "investment"
	TypeRealEstate   Type = "real_estate"
)

const DefaultCurrency = "USD"

// Domain errors
var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCurrency    = errors.New("currency must be a 3-letter ISO 4217 code")
)

// Account is a container of holdings owned by exactly one connection.
type Account struct {
	ID           string    `json:"id"`
	ConnectionID string    `json:"connectionId"`
	Name         string    `json:"name"`
	Type         Type      `json:"type"`
	Currency     string    `json:"currency"`
	// ExternalID is the provider's account id for brokerage-backed accounts.
	ExternalID string    `json:"externalId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateParams contains parameters for creating or upserting an account
type CreateParams struct {
	ID           string
	ConnectionID string
	Name         string
	Type         Type
	Currency     string
	ExternalID   string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.ID == "" {
		return errors.New("account ID is required")
	}
	if p.ConnectionID == "" {
		return errors.New("connection ID is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("account name is required")
	}
	if !IsValidType(p.Type) {
		return ErrInvalidAccountType
	}
	if !IsValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// IsValidType checks if the provided account type is valid.
func IsValidType(t Type) bool {
	switch t {
	case TypeManual, TypeCryptoWallet, TypeInvestment, TypeRealEstate:
		return true
	}
	return false
}

// IsValidCurrency checks for a 3-letter upper-case code. Values are always
// reported in USD; the field records the provider's native currency.
func IsValidCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
