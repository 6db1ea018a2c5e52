package connection

import (
	"errors"
	"strings"
	"time"
)

type Provider string

const (
	ProviderManual    Provider = "manual"
	ProviderWallet    Provider = "wallet"
	ProviderBrokerage Provider = "brokerage-link"
)

// DefaultChain is used for wallet connections created without a chain.
const DefaultChain = "eth"

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrInvalidProvider    = errors.New("invalid connection provider")
)

// Connection links a user to one external data source.
type Connection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Provider    Provider  `json:"provider"`
	Identifier  string    `json:"identifier"`
	Chain       string    `json:"chain,omitempty"`
	Nickname    string    `json:"nickname,omitempty"`
	SecretToken string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DisplayName is the label shown next to positions sourced from c.
func (c *Connection) DisplayName() string {
	if c.Nickname != "" {
		return c.Nickname
	}
	return c.Identifier
}

type CreateParams struct {
	ID          string
	UserID      string
	Provider    Provider
	Identifier  string
	Chain       string
	Nickname    string
	SecretToken string
}

// Normalize lower-cases wallet addresses and chains so the same wallet is
// never linked twice under different spellings.
func (p *CreateParams) Normalize() {
	p.Identifier = strings.TrimSpace(p.Identifier)
	p.Nickname = strings.TrimSpace(p.Nickname)
	if p.Provider == ProviderWallet {
		p.Identifier = strings.ToLower(p.Identifier)
		p.Chain = strings.ToLower(strings.TrimSpace(p.Chain))
		if p.Chain == "" {
			p.Chain = DefaultChain
		}
	}
}

func (p CreateParams) Validate() error {
	if p.ID == "" {
		return errors.New("connection ID is required")
	}
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if !IsValidProvider(p.Provider) {
		return ErrInvalidProvider
	}
	if p.Identifier == "" {
		return errors.New("connection identifier is required")
	}
	if p.Provider == ProviderBrokerage && p.SecretToken == "" {
		return errors.New("access token is required for brokerage connections")
	}
	return nil
}

func IsValidProvider(p Provider) bool {
	switch p {
	case ProviderManual, ProviderWallet, ProviderBrokerage:
		return true
	}
	return false
}
