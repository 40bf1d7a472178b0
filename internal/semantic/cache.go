// Package semantic provides the LLM-backed extraction path.
// This file contains the in-memory result cache.
package semantic

import (
	"context"
	"sync"
)

// CachedParser wraps a Parser with an in-memory result cache keyed by
// model and cell text. Identical cells are common across a timetable
// (the same course repeats weekly), so the cache saves real money.
// Errors are never cached; a transient failure should not poison the
// cell for the rest of the process lifetime.
type CachedParser struct {
	inner    Parser
	observer CacheObserver

	mu    sync.Mutex
	cache map[string]*Result
	hits  int64
}

// CacheObserver receives cache hit and miss notifications. Satisfied by
// metrics.Metrics.
type CacheObserver interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// cacheName labels this cache in hit/miss metrics.
const cacheName = "semantic"

// NewCachedParser wraps parser with a result cache.
func NewCachedParser(parser Parser) *CachedParser {
	return &CachedParser{
		inner: parser,
		cache: make(map[string]*Result),
	}
}

// SetObserver registers an observer for hit/miss accounting. Pass nil
// to detach.
func (p *CachedParser) SetObserver(obs CacheObserver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observer = obs
}

// Parse returns the cached result for the cell when present, otherwise
// delegates to the wrapped parser and caches a successful answer.
func (p *CachedParser) Parse(ctx context.Context, rawText string) (*Result, error) {
	key := p.inner.Model() + ":" + rawText

	p.mu.Lock()
	obs := p.observer
	if cached, ok := p.cache[key]; ok {
		p.hits++
		p.mu.Unlock()
		if obs != nil {
			obs.RecordCacheHit(cacheName)
		}
		return cached, nil
	}
	p.mu.Unlock()
	if obs != nil {
		obs.RecordCacheMiss(cacheName)
	}

	result, err := p.inner.Parse(ctx, rawText)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[key] = result
	p.mu.Unlock()
	return result, nil
}

// Hits returns the number of cache hits since creation or the last Clear.
func (p *CachedParser) Hits() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits
}

// Clear drops all cached results and resets the hit counter.
func (p *CachedParser) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]*Result)
	p.hits = 0
}

// IsEnabled reports whether the wrapped parser is enabled.
func (p *CachedParser) IsEnabled() bool {
	return p != nil && p.inner.IsEnabled()
}

// Provider returns the wrapped parser's provider.
func (p *CachedParser) Provider() Provider {
	return p.inner.Provider()
}

// Model returns the wrapped parser's model name.
func (p *CachedParser) Model() string {
	return p.inner.Model()
}

// Close closes the wrapped parser.
func (p *CachedParser) Close() error {
	return p.inner.Close()
}
