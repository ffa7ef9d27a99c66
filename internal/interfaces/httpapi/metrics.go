package httpapi

import (
	"sync"
	"time"
)

// Metrics tracks scoring activity for the /metrics endpoint. It doubles as
// the analyzer and cache observers.
type Metrics struct {
	mu           sync.RWMutex
	startTime    time.Time
	scoredTotal  uint64
	lastAddress  string
	lastScore    int
	lastDuration time.Duration
	lastScoredAt time.Time
	providerErrs map[string]uint64
	cacheHits    map[string]uint64
	cacheMisses  map[string]uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime:    time.Now(),
		providerErrs: make(map[string]uint64),
		cacheHits:    make(map[string]uint64),
		cacheMisses:  make(map[string]uint64),
	}
}

func (m *Metrics) OnScore(address string, score int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoredTotal++
	m.lastAddress = address
	m.lastScore = score
	m.lastDuration = duration
	m.lastScoredAt = time.Now()
}

func (m *Metrics) OnProviderError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providerErrs[kind]++
}

func (m *Metrics) OnCacheHit(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits[kind]++
}

func (m *Metrics) OnCacheMiss(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses[kind]++
}

func (m *Metrics) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	providerErrs := make(map[string]uint64, len(m.providerErrs))
	for kind, count := range m.providerErrs {
		providerErrs[kind] = count
	}
	cacheHits := make(map[string]uint64, len(m.cacheHits))
	for kind, count := range m.cacheHits {
		cacheHits[kind] = count
	}
	cacheMisses := make(map[string]uint64, len(m.cacheMisses))
	for kind, count := range m.cacheMisses {
		cacheMisses[kind] = count
	}

	snapshot := map[string]any{
		"uptime_seconds":  int64(time.Since(m.startTime).Seconds()),
		"scored_total":    m.scoredTotal,
		"provider_errors": providerErrs,
		"cache_hits":      cacheHits,
		"cache_misses":    cacheMisses,
	}
	if m.lastAddress != "" {
		snapshot["last_address"] = m.lastAddress
		snapshot["last_score"] = m.lastScore
		snapshot["last_duration_ms"] = m.lastDuration.Milliseconds()
		snapshot["last_scored_at"] = m.lastScoredAt.UTC().Format(time.RFC3339)
	}
	return snapshot
}
