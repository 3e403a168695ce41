package evaluation

import (
	"errors"
	"math"
	"math/rand"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ryogrid/joinordering/catalog"
	"github.com/ryogrid/joinordering/common"
	"github.com/ryogrid/joinordering/concurrency"
	"github.com/ryogrid/joinordering/execution/executors"
	"github.com/ryogrid/joinordering/execution/plans"
	"github.com/ryogrid/joinordering/planner/optimizer"
	"github.com/ryogrid/joinordering/scheduler"
	"github.com/ryogrid/joinordering/types"
)

// PlanExecutor is the boundary to the physical execution engine.
type PlanExecutor interface {
	Execute(plan plans.Plan, context *executors.ExecutorContext) ([]executors.Tuple, *executors.ExecutedOperator, error)
	SetPostOperatorCallback(callback executors.PostOperatorCallback)
}

type queryState struct {
	name             string
	executionBegin   time.Time
	lqpRoot          plans.Plan
	joinGraph        *optimizer.JoinGraph
	executedPlans    mapset.Set[uint64]
	measurements     []*QueryIterationMeasurement
	planMeasurements [][]*PlanMeasurement
	bestPlanDuration time.Duration
	bestPlanHash     uint64
}

type queryIterationState struct {
	idx                       uint32
	currentPlanTimeoutSeconds int64
	measurements              []*PlanMeasurement
	bestPlanDuration          time.Duration
	executedPlansCount        uint32
}

/**
 * PlanEvaluator turns the ranked candidate plans of a query into verified,
 * measured executions: splice the candidate back into the surrounding
 * plan, skip structural duplicates, run it in its own transaction with a
 * watchdog enforcing the timeout, measure, and tighten the timeout as
 * better plans are found.
 */
type PlanEvaluator struct {
	config            *common.EvaluatorConfig
	catalog_          *catalog.Catalog
	costModel         optimizer.AbstractCostModel
	cache             *optimizer.CardinalityEstimationCache
	mainEstimator     optimizer.AbstractCardinalityEstimator
	txnManager        *concurrency.TransactionManager
	scheduler_        *scheduler.Scheduler
	engine            PlanExecutor
	rng               *rand.Rand
	queryMeasurements []*QueryMeasurement
	// measurements of the most recently evaluated query, per iteration
	lastIterationMeasurements []*QueryIterationMeasurement
	lastPlanMeasurements      [][]*PlanMeasurement
}

func NewPlanEvaluator(config *common.EvaluatorConfig, c *catalog.Catalog, costModel optimizer.AbstractCostModel,
	txnManager *concurrency.TransactionManager, sched *scheduler.Scheduler) *PlanEvaluator {
	cache := optimizer.NewCardinalityEstimationCache()
	var fallback optimizer.AbstractCardinalityEstimator
	if config.CacheMode == common.CacheModeReadOnly {
		fallback = optimizer.NewCardinalityEstimatorColumnStatistics(c)
	} else {
		fallback = optimizer.NewCardinalityEstimatorExecution(c, txnManager, sched)
	}
	return &PlanEvaluator{
		config:        config,
		catalog_:      c,
		costModel:     costModel,
		cache:         cache,
		mainEstimator: optimizer.NewCardinalityEstimatorCached(cache, config.CacheMode, fallback),
		txnManager:    txnManager,
		scheduler_:    sched,
		engine:        executors.NewExecutionEngine(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *PlanEvaluator) CardinalityEstimationCache() *optimizer.CardinalityEstimationCache {
	return e.cache
}

func (e *PlanEvaluator) QueryMeasurements() []*QueryMeasurement { return e.queryMeasurements }

// LastIterationMeasurements returns the per iteration measurements of the
// most recently evaluated query.
func (e *PlanEvaluator) LastIterationMeasurements() []*QueryIterationMeasurement {
	return e.lastIterationMeasurements
}

// LastPlanMeasurements returns the per candidate measurements of the most
// recently evaluated query, one slice per iteration, in rank order.
func (e *PlanEvaluator) LastPlanMeasurements() [][]*PlanMeasurement {
	return e.lastPlanMeasurements
}

// SetPlanExecutor swaps the execution engine boundary (used by tests).
func (e *PlanEvaluator) SetPlanExecutor(engine PlanExecutor) { e.engine = engine }

// SetRandSeed makes the shuffle order reproducible.
func (e *PlanEvaluator) SetRandSeed(seed int64) { e.rng = rand.New(rand.NewSource(seed)) }

func (e *PlanEvaluator) EvaluateQuery(queryName string, lqpRoot plans.Plan) (*QueryMeasurement, error) {
	joinGraph, err := optimizer.JoinGraphFromPlan(lqpRoot)
	if err != nil {
		return nil, err
	}

	state := &queryState{
		name:             queryName,
		executionBegin:   time.Now(),
		lqpRoot:          lqpRoot,
		joinGraph:        joinGraph,
		executedPlans:    mapset.NewSet[uint64](),
		measurements:     make([]*QueryIterationMeasurement, e.config.IterationsPerQuery),
		bestPlanDuration: time.Duration(math.MaxInt64),
	}

	common.ShPrintf(common.INFO, "-- Evaluating Query: %s\n", state.name)

	for iterIdx := uint32(0); iterIdx < e.config.IterationsPerQuery; iterIdx++ {
		iterState := &queryIterationState{
			idx:                       iterIdx,
			currentPlanTimeoutSeconds: e.config.PlanTimeoutSeconds,
			bestPlanDuration:          time.Duration(math.MaxInt64),
		}
		if err := e.evaluateQueryIteration(state, iterState); err != nil {
			return nil, err
		}
	}

	e.lastIterationMeasurements = state.measurements
	e.lastPlanMeasurements = state.planMeasurements

	if e.config.IsolateQueries {
		e.cache.Clear()
	}

	queryMeasurement := &QueryMeasurement{state.name, state.bestPlanDuration, state.bestPlanHash}
	e.queryMeasurements = append(e.queryMeasurements, queryMeasurement)
	return queryMeasurement, nil
}

func (e *PlanEvaluator) topKLimit() uint32 {
	if e.config.MaxPlanGenerationCount == 0 {
		return optimizer.NoEntryLimit
	}
	return e.config.MaxPlanGenerationCount
}

func (e *PlanEvaluator) evaluateQueryIteration(state *queryState, iterState *queryIterationState) error {
	dp := optimizer.NewDpCcpTopK(e.topKLimit(), e.costModel, e.mainEstimator)
	if err := dp.Run(state.joinGraph); err != nil {
		return err
	}

	measurement := &QueryIterationMeasurement{
		CacheHitCount:          e.cache.HitCount(),
		CacheMissCount:         e.cache.MissCount(),
		CacheSize:              e.cache.Size(),
		CacheDistinctHitCount:  e.cache.DistinctHitCount(),
		CacheDistinctMissCount: e.cache.DistinctMissCount(),
	}

	fullSet := optimizer.FullVertexSet(state.joinGraph.VertexCount())
	joinPlans := dp.SubplanCache().GetBestPlans(fullSet)
	iterState.measurements = make([]*PlanMeasurement, len(joinPlans))

	common.ShPrintf(common.INFO, "--- Query Iteration %d - Generated plans: %d\n", iterState.idx, len(joinPlans))

	planIdxs := make([]int, len(joinPlans))
	for ii := range planIdxs {
		planIdxs[ii] = ii
	}
	if e.config.PlanOrderShuffling >= 0 && len(planIdxs) > int(e.config.PlanOrderShuffling) {
		prefix := int(e.config.PlanOrderShuffling)
		suffix := planIdxs[prefix:]
		e.rng.Shuffle(len(suffix), func(ii, jj int) { suffix[ii], suffix[jj] = suffix[jj], suffix[ii] })
	}

	for _, planIdx := range planIdxs {
		if e.config.MaxPlanExecutionCount > 0 && iterState.executedPlansCount >= e.config.MaxPlanExecutionCount {
			common.ShPrintf(common.INFO, "---- Requested number of plans (%d) executed, stopping\n", e.config.MaxPlanExecutionCount)
			break
		}
		if e.config.QueryTimeoutSeconds > 0 &&
			time.Since(state.executionBegin) >= time.Duration(e.config.QueryTimeoutSeconds)*time.Second {
			common.ShPrintf(common.INFO, "---- Query timeout\n")
			break
		}
		if err := e.evaluateJoinPlan(state, iterState, planIdx, joinPlans[planIdx]); err != nil {
			return err
		}
	}

	if len(iterState.measurements) > 0 && iterState.measurements[0] != nil {
		measurement.Duration = iterState.measurements[0].Duration
	}
	state.measurements[iterState.idx] = measurement
	state.planMeasurements = append(state.planMeasurements, iterState.measurements)

	e.cache.ResetDistinctHitMissCounts()
	return nil
}

func (e *PlanEvaluator) evaluateJoinPlan(state *queryState, iterState *queryIterationState,
	planIdx int, joinPlan *optimizer.JoinPlanNode) error {
	common.ShPrintf(common.DEBUG_INFO, "---- JoinPlan %d, estimated cost: %v\n", planIdx, joinPlan.PlanCost())

	// splice the candidate back into the surrounding logical plan
	for _, outputRelation := range state.joinGraph.OutputRelations() {
		outputRelation.Output().SetChildAt(outputRelation.InputSideIdx(), joinPlan.Lqp())
	}

	planHash := plans.StructuralHash(state.lqpRoot)
	if e.config.UniquePlans && state.executedPlans.Contains(planHash) {
		if e.config.ForcePlanZero && planIdx == 0 {
			common.ShPrintf(common.DEBUG_INFO, "----- Plan was already executed, but is rank#0 and force-plan-zero is set, so it is executed again\n")
		} else {
			common.ShPrintf(common.DEBUG_INFO, "----- Plan was already executed, skipping\n")
			iterState.measurements[planIdx] = &PlanMeasurement{Outcome: PlanSkippedDuplicate}
			return nil
		}
	}
	state.executedPlans.Add(planHash)

	txn := e.txnManager.Begin()

	// fire-and-forget watchdog; the lenient rollback loses silently when
	// the evaluator commits first
	if iterState.currentPlanTimeoutSeconds > 0 {
		timeoutSeconds := iterState.currentPlanTimeoutSeconds
		go func() {
			time.Sleep(time.Duration(timeoutSeconds+common.PlanTimeoutGraceSeconds) * time.Second)
			if txn.Rollback(concurrency.Lenient) {
				common.ShPrintf(common.DEBUG_INFO, "----- Query timeout signalled\n")
			}
		}()
	}

	if e.config.CacheMode == common.CacheModeReadAndUpdate {
		e.engine.SetPostOperatorCallback(func(plan plans.Plan, outputRowCount types.Cardinality) {
			e.cache.Put(optimizer.CacheKeyOfPlan(plan), outputRowCount)
		})
	} else {
		e.engine.SetPostOperatorCallback(nil)
	}

	context := executors.NewExecutorContext(e.catalog_, txn, e.scheduler_)
	timer := time.Now()
	_, opTree, err := e.engine.Execute(state.lqpRoot, context)
	iterState.executedPlansCount += 1

	if err != nil {
		if errors.Is(err, executors.ErrTransactionRolledBack) {
			iterState.measurements[planIdx] = &PlanMeasurement{Outcome: PlanTimedOut}
			return nil
		}
		txn.Rollback(concurrency.Lenient)
		iterState.measurements[planIdx] = &PlanMeasurement{Outcome: PlanFailed}
		common.ShPrintf(common.WARN, "----- Plan %d of query %s failed: %v\n", planIdx, state.name, err)
		return nil
	}

	if !txn.Commit(concurrency.Lenient) {
		common.ShPrintf(common.DEBUG_INFO, "----- Query timeout accepted\n")
		iterState.measurements[planIdx] = &PlanMeasurement{Outcome: PlanTimedOut}
		return nil
	}

	planDuration := time.Since(timer)
	sample, err := CreatePlanMeasurement(e.costModel, executors.FlattenOperators(opTree))
	if err != nil {
		return err
	}
	sample.Duration = planDuration
	iterState.measurements[planIdx] = sample

	if planDuration < iterState.bestPlanDuration {
		iterState.bestPlanDuration = planDuration
		if planDuration < state.bestPlanDuration {
			state.bestPlanDuration = planDuration
			state.bestPlanHash = planHash
		}
		if e.config.DynamicPlanTimeoutEnabled {
			iterState.currentPlanTimeoutSeconds =
				int64(planDuration.Seconds()*common.DynamicTimeoutFactor) + common.PlanTimeoutGraceSeconds
			common.ShPrintf(common.DEBUG_INFO, "----- New dynamic timeout is %d seconds\n", iterState.currentPlanTimeoutSeconds)
		}
	}
	return nil
}
