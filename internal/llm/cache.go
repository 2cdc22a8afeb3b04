package llm

import (
	"sync"
	"time"

	"github.com/Veraticus/hscode/internal/model"
)

// cacheEntry represents a cached prediction.
type cacheEntry struct {
	expiry     time.Time
	prediction model.Prediction
}

// predictionCache keeps recent predictions keyed by image digest and language.
// Expired entries are dropped lazily on access.
type predictionCache struct {
	entries    map[string]cacheEntry
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	mu         sync.Mutex
}

const defaultCacheEntries = 64

// newPredictionCache creates a cache. A negative ttl disables caching.
func newPredictionCache(ttl time.Duration) *predictionCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	return &predictionCache{
		entries:    make(map[string]cacheEntry),
		now:        time.Now,
		ttl:        ttl,
		maxEntries: defaultCacheEntries,
	}
}

func cacheKey(img model.Image, lang model.Language) string {
	return string(lang) + ":" + img.Digest()
}

// get returns a copy of the cached prediction if present and unexpired.
func (c *predictionCache) get(key string) (model.Prediction, bool) {
	if c.ttl < 0 {
		return model.Prediction{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return model.Prediction{}, false
	}
	if c.now().After(entry.expiry) {
		delete(c.entries, key)
		return model.Prediction{}, false
	}
	return clonePrediction(entry.prediction), true
}

// set stores a copy of prediction, evicting the entry closest to expiry when full.
func (c *predictionCache) set(key string, prediction model.Prediction) {
	if c.ttl < 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = cacheEntry{
		prediction: clonePrediction(prediction),
		expiry:     c.now().Add(c.ttl),
	}
}

func (c *predictionCache) evictLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiry.Before(oldest) {
			oldestKey = key
			oldest = entry.expiry
		}
	}
	delete(c.entries, oldestKey)
}

// size returns the number of entries in the cache.
func (c *predictionCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func clonePrediction(p model.Prediction) model.Prediction {
	out := model.Prediction{Candidates: model.CloneRecords(p.Candidates)}
	if p.Clarification != nil {
		clar := p.Clarification.Clone()
		out.Clarification = &clar
	}
	return out
}
