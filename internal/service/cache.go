package service

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/footy-better/internal/models"
)

// PredictionCacheKey identifies one cacheable prediction. StatsDay and
// OddsVersion are part of the key so a prediction is recomputed when the
// underlying statistics roll over or the market moves.
type PredictionCacheKey struct {
	MatchID     uuid.UUID
	StatsDay    string
	OddsVersion string
}

// String returns string representation of cache key
func (k PredictionCacheKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.MatchID, k.StatsDay, k.OddsVersion)
}

// NewPredictionCacheKey builds the key for a fixture given the day its
// statistics were computed on and its current odds.
func NewPredictionCacheKey(match *models.Match, statsDay time.Time) PredictionCacheKey {
	oddsVersion := "none"
	if match.Odds != nil {
		if match.Odds.UpdatedAt != nil {
			oddsVersion = fmt.Sprintf("%d", match.Odds.UpdatedAt.Unix())
		} else {
			oddsVersion = fmt.Sprintf("%.2f-%.2f-%.2f", match.Odds.Home, match.Odds.Draw, match.Odds.Away)
		}
	}
	return PredictionCacheKey{
		MatchID:     match.ID,
		StatsDay:    statsDay.Format("2006-01-02"),
		OddsVersion: oddsVersion,
	}
}

// PredictionCache provides in-memory caching for model predictions
type PredictionCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached prediction, nil on miss
func (pc *PredictionCache) Get(key PredictionCacheKey) *models.Prediction {
	if cached, found := pc.cache.Get(key.String()); found {
		if pred, ok := cached.(*models.Prediction); ok {
			pc.hitCount.Add(1)
			return pred
		}
	}
	pc.missCount.Add(1)
	return nil
}

// Set stores a prediction in cache
func (pc *PredictionCache) Set(key PredictionCacheKey, prediction *models.Prediction) {
	if pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
	}
	pc.cache.Set(key.String(), prediction, pc.ttl)
}

// Stats returns hit and miss counts since startup
func (pc *PredictionCache) Stats() (hits, misses uint64) {
	return pc.hitCount.Load(), pc.missCount.Load()
}

// Flush clears the cache
func (pc *PredictionCache) Flush() {
	pc.cache.Flush()
}
