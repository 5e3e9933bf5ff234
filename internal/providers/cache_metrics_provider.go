package providers

import "ecometrics/internal/structures"

// CountingCache reports every stats or history lookup as a hit or a miss.
// Writes and invalidations pass straight through.
type CountingCache struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *CountingCache) Get(key string) ([]byte, bool) {
	body, found := c.inner.Get(key)
	if found {
		c.metrics.IncCacheHits()
		return body, true
	}
	c.metrics.IncCacheMisses()
	return nil, false
}

func (c *CountingCache) Set(key string, body []byte) {
	c.inner.Set(key, body)
}

// Del drops a cached read model after the ledger changed underneath it.
func (c *CountingCache) Del(key string) {
	c.inner.Del(key)
}

// NewInstrumentedCacheProvider builds the read-model cache. With caching
// switched off the noop cache is returned as is, so the miss counter stays
// flat.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if _, disabled := inner.(*noopCache); disabled {
		return inner
	}
	return &CountingCache{inner: inner, metrics: metrics}
}
