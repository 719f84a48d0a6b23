// Package cached wraps another provider with a ristretto-backed cache of
// evaluation results, keyed by flag key and attribute fingerprint. It trades
// freshness for latency on hot flags; failures are never cached.
package cached

import (
	"context"
	"encoding/binary"
	"hash"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/OrlandoBitencourt/pennant"
)

// Config holds cache sizing and TTL.
type Config struct {
	// MaxCost is the maximum cache size (entry count, each entry costs 1).
	MaxCost int64
	// NumCounters is the number of keys tracked for admission.
	NumCounters int64
	// BufferItems is the ristretto get-buffer size.
	BufferItems int64
	// TTL bounds how long a cached result may be served.
	TTL time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxCost:     100_000,
		NumCounters: 1_000_000,
		BufferItems: 64,
		TTL:         time.Minute,
	}
}

// Provider decorates an inner provider with result caching. Lifecycle calls
// pass through to the inner provider; Shutdown also releases the cache.
type Provider struct {
	inner pennant.Provider
	cache *ristretto.Cache
	ttl   time.Duration
}

// New wraps inner with a result cache.
func New(inner pennant.Provider, cfg Config) (*Provider, error) {
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = DefaultConfig().MaxCost
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = DefaultConfig().NumCounters
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = DefaultConfig().BufferItems
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	return &Provider{inner: inner, cache: cache, ttl: cfg.TTL}, nil
}

func (p *Provider) Metadata() pennant.ProviderMetadata {
	return pennant.ProviderMetadata{Name: "cached(" + p.inner.Metadata().Name + ")"}
}

func (p *Provider) State() pennant.ProviderState {
	return p.inner.State()
}

func (p *Provider) Initialize(ctx context.Context) error {
	return p.inner.Initialize(ctx)
}

func (p *Provider) Shutdown(ctx context.Context) error {
	err := p.inner.Shutdown(ctx)
	p.cache.Close()
	return err
}

// Evaluate serves from cache when possible; misses fall through to the inner
// provider and successful results are cached with the configured TTL.
func (p *Provider) Evaluate(ctx context.Context, flagKey string, attrs pennant.Attributes) (pennant.Value, error) {
	key := fingerprint(flagKey, attrs)

	if cached, ok := p.cache.Get(key); ok {
		return cached.(pennant.Value), nil
	}

	value, err := p.inner.Evaluate(ctx, flagKey, attrs)
	if err != nil {
		return pennant.Null, err
	}

	p.cache.SetWithTTL(key, value, 1, p.ttl)
	return value, nil
}

// Invalidate drops every cached result. Ristretto has no per-flag scan, so
// invalidation is whole-cache.
func (p *Provider) Invalidate() {
	p.cache.Clear()
}

// Metrics exposes cache hit/miss counters.
func (p *Provider) Metrics() (hits, misses uint64) {
	m := p.cache.Metrics
	return m.Hits(), m.Misses()
}

// fingerprint builds a stable cache key from the flag key and the attribute
// set. Attribute order must not matter, so keys are visited sorted. Every
// component is length-prefixed and values carry their kind tag, so distinct
// attribute sets never share a key: the number 42 and the string "42" hash
// differently, and attribute names or values containing any delimiter
// characters cannot run into each other.
func fingerprint(flagKey string, attrs pennant.Attributes) string {
	h := fnv.New64a()
	writeField(h, flagKey)
	for _, k := range attrs.Keys() {
		writeField(h, k)
		writeValue(h, attrs[k])
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func writeField(h hash.Hash64, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}

func writeValue(h hash.Hash64, v pennant.Value) {
	h.Write([]byte{byte(v.Kind())})
	if items, ok := v.AsList(); ok {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(items)))
		h.Write(n[:])
		for _, item := range items {
			writeValue(h, item)
		}
		return
	}
	writeField(h, v.String())
}
