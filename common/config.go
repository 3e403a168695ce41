package common

import "time"

const EnableDebug bool = false //true

const (
	// invalid transaction id
	InvalidTxnID = -1
	// upper bound of relations joined in one query (a vertex set is a 64bit bitmap)
	MaxJoinVertexNum = 64
	// grace period added to a plan timeout before the watchdog fires
	PlanTimeoutGraceSeconds = 2
	// factor applied to the best observed plan duration when dynamic timeout is enabled
	DynamicTimeoutFactor = 1.2
	ActiveLogKindSetting = INFO //| CACHE_OP_INFO | DEBUGGING | DEBUG_INFO
	KernelThreadNum      = 24
)

var LogTimeout time.Duration

// CardinalityEstimationCacheMode selects the update discipline of the
// cardinality estimation cache when it decorates a fallback estimator.
type CardinalityEstimationCacheMode int32

const (
	CacheModeReadOnly CardinalityEstimationCacheMode = iota
	CacheModeReadAndUpdate
)

/**
 * EvaluatorConfig carries the knobs of one evaluation session.
 * The core consumes this surface but does not own its parsing.
 */
type EvaluatorConfig struct {
	// max number of plans retained per vertex set (NoEntryLimit keeps all)
	MaxPlanGenerationCount uint32
	// max number of plans executed per query iteration (0 means all)
	MaxPlanExecutionCount uint32
	// per candidate timeout in seconds (0 means no timeout)
	PlanTimeoutSeconds int64
	// per query wall clock timeout in seconds (0 means no timeout)
	QueryTimeoutSeconds int64
	DynamicPlanTimeoutEnabled bool
	// number of leading candidates kept in rank order before shuffling (negative disables shuffling)
	PlanOrderShuffling int32
	// skip candidates whose plan was already executed in this query
	UniquePlans bool
	// execute the rank 0 candidate even when dedup would skip it
	ForcePlanZero bool
	CacheMode          CardinalityEstimationCacheMode
	IsolateQueries     bool
	IterationsPerQuery uint32
}

func NewDefaultEvaluatorConfig() *EvaluatorConfig {
	return &EvaluatorConfig{
		MaxPlanGenerationCount:    100,
		MaxPlanExecutionCount:     0,
		PlanTimeoutSeconds:        0,
		QueryTimeoutSeconds:       0,
		DynamicPlanTimeoutEnabled: true,
		PlanOrderShuffling:        -1,
		UniquePlans:               true,
		ForcePlanZero:             false,
		CacheMode:                 CacheModeReadAndUpdate,
		IsolateQueries:            false,
		IterationsPerQuery:        1,
	}
}
