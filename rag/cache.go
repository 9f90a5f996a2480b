package rag

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/satyalearn/satyarag/rag/types"
)

const (
	// DefaultCacheSize caps the number of live cache records.
	DefaultCacheSize = 100
	// DefaultCacheTTL is how long a record stays valid.
	DefaultCacheTTL = time.Hour
	// DefaultSemanticThreshold is the minimum cosine similarity for a
	// semantic cache hit on the general lookup path.
	DefaultSemanticThreshold float32 = 0.88
	// ConservativeSemanticThreshold is used by UI-facing callers that
	// prefer a recomputation over a borderline reuse.
	ConservativeSemanticThreshold float32 = 0.92
)

type cacheRecord struct {
	key       string
	value     *types.QueryResult
	embedding []float32
	createdAt time.Time
	subject   string
	grade     string
	rawQuery  string
}

func (r *cacheRecord) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.createdAt) > ttl
}

// SemanticCache avoids recomputation for repeated or near-duplicate
// questions. Tier one is an exact hash lookup, tier two a linear scan
// over stored embeddings filtered by (subject, grade). Eviction is
// insertion-time LRU: reads do not refresh recency.
type SemanticCache struct {
	mu      sync.RWMutex
	records map[string]*cacheRecord
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewSemanticCache creates a cache with the given capacity and TTL.
// Non-positive arguments fall back to the defaults.
func NewSemanticCache(maxSize int, ttl time.Duration) *SemanticCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &SemanticCache{
		records: map[string]*cacheRecord{},
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// CacheKey derives the deterministic exact-lookup key for a normalized
// question and its filters.
func CacheKey(normalizedQuery, subject, grade string) string {
	seed := fmt.Sprintf("%s|%s|%s",
		strings.ToLower(strings.TrimSpace(normalizedQuery)),
		strings.ToLower(subject),
		grade,
	)
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// GetExact returns a deep copy of the cached result for key, or nil on a
// miss. Expired records are purged lazily on access.
func (c *SemanticCache) GetExact(key string) *types.QueryResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[key]
	if !ok {
		return nil
	}
	if rec.expired(c.now(), c.ttl) {
		delete(c.records, key)
		return nil
	}
	return rec.value.Clone()
}

// FindSemantic scans live records matching (subject, grade) and returns a
// copy of the best match whose cosine similarity reaches threshold.
// A zero-norm embedding never matches. On a similarity tie the most
// recently written record wins.
func (c *SemanticCache) FindSemantic(embedding []float32, subject, grade string, threshold float32) *types.QueryResult {
	if types.IsZeroVector(embedding) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var best *cacheRecord
	var bestScore float32
	for key, rec := range c.records {
		if rec.expired(now, c.ttl) {
			delete(c.records, key)
			continue
		}
		if rec.subject != subject || rec.grade != grade || len(rec.embedding) == 0 {
			continue
		}
		score := types.CosineSimilarity(embedding, rec.embedding)
		if score < threshold {
			continue
		}
		if best == nil || score > bestScore ||
			(score == bestScore && rec.createdAt.After(best.createdAt)) {
			best = rec
			bestScore = score
		}
	}
	if best == nil {
		return nil
	}
	return best.value.Clone()
}

// Set inserts or overwrites a record. When the cache is full and key is
// new, the record with the oldest insertion time is evicted first. The
// result and embedding are copied, never aliased.
func (c *SemanticCache) Set(key string, result *types.QueryResult, embedding []float32, subject, grade, rawQuery string) {
	if result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[key]; !exists && len(c.records) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.records[key] = &cacheRecord{
		key:       key,
		value:     result.Clone(),
		embedding: append([]float32(nil), embedding...),
		createdAt: c.now(),
		subject:   subject,
		grade:     grade,
		rawQuery:  rawQuery,
	}
}

func (c *SemanticCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, rec := range c.records {
		if oldestKey == "" || rec.createdAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = rec.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.records, oldestKey)
	}
}

// Clear drops all records.
func (c *SemanticCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = map[string]*cacheRecord{}
}

// CacheStats is a point-in-time view of the cache.
type CacheStats struct {
	Size       int `json:"size"`
	MaxSize    int `json:"max_size"`
	TTLSeconds int `json:"ttl_seconds"`
}

// Stats reports the live record count. Expired records are swept as a
// side effect so the count reflects only entries that can still hit.
func (c *SemanticCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, rec := range c.records {
		if rec.expired(now, c.ttl) {
			delete(c.records, key)
		}
	}
	return CacheStats{
		Size:       len(c.records),
		MaxSize:    c.maxSize,
		TTLSeconds: int(c.ttl / time.Second),
	}
}
