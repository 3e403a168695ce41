package optimizer

import (
	"strings"
	"testing"

	"github.com/dsnet/golib/memfile"
	"github.com/ryogrid/joinordering/common"
	testingpkg "github.com/ryogrid/joinordering/testing/testing_util"
	"github.com/ryogrid/joinordering/types"
)

// countingEstimator records how often the fallback is consulted.
type countingEstimator struct {
	callCount int
	result    types.Cardinality
}

func (e *countingEstimator) EstimateCardinality(vertexSet VertexSet, joinGraph *JoinGraph) (types.Cardinality, error) {
	e.callCount += 1
	return e.result, nil
}

func TestCacheCountsHitsAndMisses(t *testing.T) {
	cache := NewCardinalityEstimationCache()

	_, ok := cache.Get("k1")
	testingpkg.Assert(t, !ok, "empty cache must miss")
	cache.Put("k1", 42)
	card, ok := cache.Get("k1")
	testingpkg.Assert(t, ok, "stored key must hit")
	testingpkg.Equals(t, types.Cardinality(42), card)
	cache.Get("k1")

	testingpkg.Equals(t, uint64(2), cache.HitCount())
	testingpkg.Equals(t, uint64(1), cache.MissCount())
	testingpkg.Equals(t, uint64(1), cache.DistinctHitCount())
	testingpkg.Equals(t, uint64(1), cache.DistinctMissCount())
	testingpkg.Equals(t, uint64(1), cache.Size())
}

func TestCacheResetDistinctKeepsCumulative(t *testing.T) {
	cache := NewCardinalityEstimationCache()
	cache.Get("k1")
	cache.Put("k1", 1)
	cache.Get("k1")

	cache.ResetDistinctHitMissCounts()
	testingpkg.Equals(t, uint64(0), cache.DistinctHitCount())
	testingpkg.Equals(t, uint64(0), cache.DistinctMissCount())
	testingpkg.Equals(t, uint64(1), cache.HitCount())
	testingpkg.Equals(t, uint64(1), cache.MissCount())
	testingpkg.Equals(t, uint64(1), cache.Size())

	cache.Clear()
	testingpkg.Equals(t, uint64(0), cache.Size())
}

func TestCacheLogSinkReceivesOperations(t *testing.T) {
	cache := NewCardinalityEstimationCache()
	sink := memfile.New([]byte{})
	cache.SetLog(sink)

	cache.Get("k1")
	cache.Put("k1", 7)
	cache.Get("k1")
	cache.ResetDistinctHitMissCounts()
	cache.Clear()

	logged := string(sink.Bytes())
	testingpkg.Assert(t, strings.Contains(logged, "MISS k1"), "log should record the miss, got: %s", logged)
	testingpkg.Assert(t, strings.Contains(logged, "PUT  k1"), "log should record the put, got: %s", logged)
	testingpkg.Assert(t, strings.Contains(logged, "HIT  k1"), "log should record the hit, got: %s", logged)
	testingpkg.Assert(t, strings.Contains(logged, "RESET-DISTINCT"), "log should record the reset, got: %s", logged)
	testingpkg.Assert(t, strings.Contains(logged, "CLEAR"), "log should record the clear, got: %s", logged)
}

func TestCachedEstimatorReadOnlyNeverStores(t *testing.T) {
	graph, err := JoinGraphFromPlan(chainPlan())
	testingpkg.Ok(t, err)

	cache := NewCardinalityEstimationCache()
	fallback := &countingEstimator{result: 99}
	estimator := NewCardinalityEstimatorCached(cache, common.CacheModeReadOnly, fallback)

	vs := NewVertexSet(0, 1)
	card, err := estimator.EstimateCardinality(vs, graph)
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, types.Cardinality(99), card)
	_, err = estimator.EstimateCardinality(vs, graph)
	testingpkg.Ok(t, err)

	// every lookup falls through, nothing is stored
	testingpkg.Equals(t, 2, fallback.callCount)
	testingpkg.Equals(t, uint64(0), cache.Size())
}

func TestCachedEstimatorReadAndUpdateStoresOnce(t *testing.T) {
	graph, err := JoinGraphFromPlan(chainPlan())
	testingpkg.Ok(t, err)

	cache := NewCardinalityEstimationCache()
	fallback := &countingEstimator{result: 99}
	estimator := NewCardinalityEstimatorCached(cache, common.CacheModeReadAndUpdate, fallback)

	vs := NewVertexSet(0, 1)
	_, err = estimator.EstimateCardinality(vs, graph)
	testingpkg.Ok(t, err)
	card, err := estimator.EstimateCardinality(vs, graph)
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, types.Cardinality(99), card)

	testingpkg.Equals(t, 1, fallback.callCount)
	testingpkg.Equals(t, uint64(1), cache.Size())
	testingpkg.Equals(t, uint64(1), cache.HitCount())
}

func TestCacheKeyIsOrderInsensitive(t *testing.T) {
	graph, err := JoinGraphFromPlan(chainPlan())
	testingpkg.Ok(t, err)

	// the key of {a,b} matches the key derived from the equivalent plan
	vs := NewVertexSet(0, 1)
	keyFromSet := CacheKeyOfVertexSet(vs, graph)
	plan, err := buildLeftDeepPlan(vs, graph)
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, keyFromSet, CacheKeyOfPlan(plan))
}
