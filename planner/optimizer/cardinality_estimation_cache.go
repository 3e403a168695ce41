package optimizer

import (
	"fmt"
	"io"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ryogrid/joinordering/common"
	"github.com/ryogrid/joinordering/types"
	deadlock "github.com/sasha-s/go-deadlock"
)

/**
 * CardinalityEstimationCache stores measured or estimated cardinalities
 * by lookup key and counts hits and misses, cumulatively and per distinct
 * key. The distinct counters are reset once per completed query so that
 * distinct rates stay meaningful when queries share one cache. An
 * optional log sink receives one line per cache operation; it serves
 * offline analysis, not correctness.
 */
type CardinalityEstimationCache struct {
	cache            map[string]types.Cardinality
	hitCount         uint64
	missCount        uint64
	distinctHitKeys  mapset.Set[string]
	distinctMissKeys mapset.Set[string]
	log              io.Writer
	mutex            deadlock.Mutex
}

func NewCardinalityEstimationCache() *CardinalityEstimationCache {
	return &CardinalityEstimationCache{
		cache:            make(map[string]types.Cardinality),
		distinctHitKeys:  mapset.NewSet[string](),
		distinctMissKeys: mapset.NewSet[string](),
	}
}

func (c *CardinalityEstimationCache) Get(key string) (types.Cardinality, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	card, ok := c.cache[key]
	if ok {
		c.hitCount += 1
		c.distinctHitKeys.Add(key)
		c.appendLog("HIT  %s -> %v\n", key, card)
	} else {
		c.missCount += 1
		c.distinctMissKeys.Add(key)
		c.appendLog("MISS %s\n", key)
	}
	return card, ok
}

func (c *CardinalityEstimationCache) Put(key string, card types.Cardinality) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache[key] = card
	c.appendLog("PUT  %s -> %v\n", key, card)
}

func (c *CardinalityEstimationCache) Size() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return uint64(len(c.cache))
}

func (c *CardinalityEstimationCache) HitCount() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.hitCount
}

func (c *CardinalityEstimationCache) MissCount() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.missCount
}

func (c *CardinalityEstimationCache) DistinctHitCount() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return uint64(c.distinctHitKeys.Cardinality())
}

func (c *CardinalityEstimationCache) DistinctMissCount() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return uint64(c.distinctMissKeys.Cardinality())
}

// ResetDistinctHitMissCounts clears only the distinct counters, not the
// cumulative ones. Call once per completed query.
func (c *CardinalityEstimationCache) ResetDistinctHitMissCounts() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.distinctHitKeys = mapset.NewSet[string]()
	c.distinctMissKeys = mapset.NewSet[string]()
	c.appendLog("RESET-DISTINCT\n")
}

// Clear empties the cache entirely, used between isolated queries.
func (c *CardinalityEstimationCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache = make(map[string]types.Cardinality)
	c.appendLog("CLEAR\n")
}

func (c *CardinalityEstimationCache) SetLog(log io.Writer) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.log = log
}

func (c *CardinalityEstimationCache) appendLog(format string, a ...interface{}) {
	if c.log != nil {
		fmt.Fprintf(c.log, format, a...)
	}
}

/**
 * CardinalityEstimatorCached decorates a fallback estimator with the
 * cache. ReadOnly answers from the cache but never stores fallback
 * results; ReadAndUpdate stores them for future lookups.
 */
type CardinalityEstimatorCached struct {
	cache    *CardinalityEstimationCache
	mode     common.CardinalityEstimationCacheMode
	fallback AbstractCardinalityEstimator
}

func NewCardinalityEstimatorCached(cache *CardinalityEstimationCache, mode common.CardinalityEstimationCacheMode,
	fallback AbstractCardinalityEstimator) *CardinalityEstimatorCached {
	return &CardinalityEstimatorCached{cache, mode, fallback}
}

func (e *CardinalityEstimatorCached) EstimateCardinality(vertexSet VertexSet, joinGraph *JoinGraph) (types.Cardinality, error) {
	key := CacheKeyOfVertexSet(vertexSet, joinGraph)
	if card, ok := e.cache.Get(key); ok {
		return card, nil
	}
	card, err := e.fallback.EstimateCardinality(vertexSet, joinGraph)
	if err != nil {
		return 0, err
	}
	if e.mode == common.CacheModeReadAndUpdate {
		e.cache.Put(key, card)
	}
	return card, nil
}
