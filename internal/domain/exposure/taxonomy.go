package exposure

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_taxonomy.yaml
var defaultTaxonomyYAML []byte

// Taxonomy is the versioned membership data the classifier runs on.
type Taxonomy struct {
	Version          string   `yaml:"version"`
	Stablecoins      []string `yaml:"stablecoins"`
	StablecoinSuffix string   `yaml:"stablecoin_suffix"`
	// EquityRules are checked in order; the first match wins.
	EquityRules []Rule `yaml:"equity_rules"`
}

// Rule maps a set of equity symbols to a taxonomy leaf.
type Rule struct {
	Name           string   `yaml:"name"`
	Bucket         Bucket   `yaml:"bucket"`
	Subtype        string   `yaml:"subtype"`
	CryptoExposure bool     `yaml:"crypto_exposure"`
	Underlying     string   `yaml:"underlying"`
	Symbols        []string `yaml:"symbols"`
}

var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// DefaultTaxonomy returns the taxonomy compiled into the binary.
func DefaultTaxonomy() (*Taxonomy, error) {
	return ParseTaxonomy(defaultTaxonomyYAML)
}

// LoadTaxonomy reads and validates a taxonomy file.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}
	return ParseTaxonomy(data)
}

func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Taxonomy) normalize() {
	for i, s := range t.Stablecoins {
		t.Stablecoins[i] = normalizeSymbol(s)
	}
	t.StablecoinSuffix = normalizeSymbol(t.StablecoinSuffix)
	for i := range t.EquityRules {
		r := &t.EquityRules[i]
		r.Underlying = normalizeSymbol(r.Underlying)
		for j, s := range r.Symbols {
			r.Symbols[j] = normalizeSymbol(s)
		}
	}
}

// Validate checks the version, every rule's leaf and that no symbol belongs
// to two rules.
func (t *Taxonomy) Validate() error {
	if strings.TrimSpace(t.Version) == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidTaxonomy)
	}

	seen := make(map[string]string)
	for i, r := range t.EquityRules {
		if r.Name == "" {
			return fmt.Errorf("%w: rule %d has no name", ErrInvalidTaxonomy, i)
		}
		if !r.Bucket.Valid() || r.Bucket == BucketUnknown {
			return fmt.Errorf("%w: rule %q has unknown bucket %q", ErrInvalidTaxonomy, r.Name, r.Bucket)
		}
		if r.Subtype == "" {
			return fmt.Errorf("%w: rule %q has no subtype", ErrInvalidTaxonomy, r.Name)
		}
		if r.Underlying != "" && !r.CryptoExposure {
			return fmt.Errorf("%w: rule %q has an underlying but no crypto exposure", ErrInvalidTaxonomy, r.Name)
		}
		for _, s := range r.Symbols {
			if s == "" {
				return fmt.Errorf("%w: rule %q has an empty symbol", ErrInvalidTaxonomy, r.Name)
			}
			if prev, dup := seen[s]; dup {
				return fmt.Errorf("%w: symbol %s in both %q and %q", ErrInvalidTaxonomy, s, prev, r.Name)
			}
			seen[s] = r.Name
		}
	}
	return nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
