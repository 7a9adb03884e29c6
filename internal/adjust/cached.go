package adjust

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const snapshotKey = "market_adjustments"

// Store loads the persisted multiplier table.
type Store interface {
	GetAdjustments(ctx context.Context) (map[string]float64, error)
}

// Cached serves multipliers from a Store through a short-lived in-memory
// snapshot, so the pick-generation loop never waits on storage per market.
type Cached struct {
	store   Store
	cache   *cache.Cache
	timeout time.Duration
	logger  *logrus.Logger
	mu      sync.Mutex
}

// NewCached wraps a Store with a snapshot cache refreshed at most once per
// ttl.
func NewCached(store Store, ttl time.Duration, logger *logrus.Logger) *Cached {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Cached{
		store:   store,
		cache:   cache.New(ttl, ttl*2),
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// AdjustmentFor returns the learned multiplier for the market key, 1.0 when
// none is stored or the snapshot cannot be refreshed.
func (c *Cached) AdjustmentFor(marketKey string) float64 {
	return Static(c.snapshot()).AdjustmentFor(marketKey)
}

// Refresh forces the snapshot to be reloaded from the Store, returning the
// load error if any. Scheduled jobs call this after writing new feedback.
func (c *Cached) Refresh(ctx context.Context) error {
	table, err := c.store.GetAdjustments(ctx)
	if err != nil {
		return err
	}
	c.cache.Set(snapshotKey, table, cache.DefaultExpiration)
	return nil
}

func (c *Cached) snapshot() map[string]float64 {
	if cached, found := c.cache.Get(snapshotKey); found {
		if table, ok := cached.(map[string]float64); ok {
			return table
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, found := c.cache.Get(snapshotKey); found {
		if table, ok := cached.(map[string]float64); ok {
			return table
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	table, err := c.store.GetAdjustments(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to load market adjustments, using neutral multipliers")
		table = map[string]float64{}
	}
	c.cache.Set(snapshotKey, table, cache.DefaultExpiration)
	return table
}
