package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"

	"networth/internal/domain/holding"
)

// DefaultTTL bounds how long a quote is served from memory.
const DefaultTTL = time.Minute

// CachedProvider serves spot prices through a TTL cache. It is safe for
// concurrent use and is shared by reference between the services that
// price holdings.
type CachedProvider struct {
	client ClientInterface
	cache  *gocache.Cache
}

func NewCachedProvider(client ClientInterface, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedProvider{
		client: client,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// LookupPrice returns a USD price for symbol. Only crypto is priced; every
// other asset class reports no price. Provider failures are logged and
// reported as no price.
func (p *CachedProvider) LookupPrice(ctx context.Context, symbol string, class holding.AssetClass) (float64, bool) {
	if class != holding.AssetCrypto {
		return 0, false
	}
	key := cacheKey(symbol)
	if key == "" {
		return 0, false
	}

	if v, ok := p.cache.Get(key); ok {
		return v.(float64), true
	}

	price, found, err := p.client.GetUSDPrice(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrUnknownSymbol) {
			log.WithError(err).WithField("symbol", key).Warn("price lookup failed")
		}
		return 0, false
	}
	if !found {
		return 0, false
	}

	p.cache.SetDefault(key, price)
	return price, true
}

// Invalidate drops the cached quote for symbol.
func (p *CachedProvider) Invalidate(symbol string) {
	p.cache.Delete(cacheKey(symbol))
}

// Flush drops every cached quote.
func (p *CachedProvider) Flush() {
	p.cache.Flush()
}

func cacheKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
