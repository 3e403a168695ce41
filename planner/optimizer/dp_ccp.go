package optimizer

import (
	"errors"

	pair "github.com/notEpsilon/go-pair"
	"github.com/ryogrid/joinordering/common"
	"github.com/ryogrid/joinordering/execution/plans"
)

/**
 * DpCcpTopK enumerates join orders bottom-up over connected subgraph /
 * complement pairs, keeping the best K plans per vertex set. Vertex sets
 * are processed in strictly increasing size, so when a set is split both
 * halves already carry their final plans. Single-threaded and
 * deterministic; performs no I/O itself (the injected cardinality
 * estimator may execute plans, which is invisible at this level).
 *
 * When enumeration returns an error the subplan cache holds partial
 * entries for the aborted size and must not be consulted.
 */
type DpCcpTopK struct {
	costModel            AbstractCostModel
	cardinalityEstimator AbstractCardinalityEstimator
	subplanCache         *DpSubplanCacheTopK
}

func NewDpCcpTopK(maxEntryCount uint32, costModel AbstractCostModel,
	cardinalityEstimator AbstractCardinalityEstimator) *DpCcpTopK {
	return &DpCcpTopK{costModel, cardinalityEstimator, NewDpSubplanCacheTopK(maxEntryCount)}
}

func (dp *DpCcpTopK) SubplanCache() *DpSubplanCacheTopK { return dp.subplanCache }

func (dp *DpCcpTopK) Run(joinGraph *JoinGraph) error {
	if joinGraph == nil || joinGraph.VertexCount() == 0 {
		return errors.New("cannot enumerate join orders over an empty join graph")
	}
	dp.subplanCache.Clear()

	vertexNum := joinGraph.VertexCount()

	// size 1: the base scans
	for vertexIdx := uint32(0); vertexIdx < vertexNum; vertexIdx++ {
		singleton := NewVertexSet(vertexIdx)
		card, err := dp.cardinalityEstimator.EstimateCardinality(singleton, joinGraph)
		if err != nil {
			return err
		}
		scanPlan := joinGraph.GetVertex(vertexIdx).GetPlan()
		scanPlan.SetEstimatedCardinality(card)
		cost, err := dp.costModel.EstimateCost(NewCostFeatureLQPNodeProxy(scanPlan))
		if err != nil {
			return err
		}
		dp.subplanCache.InsertPlan(singleton, NewJoinPlanNode(scanPlan, cost, singleton))
	}

	// sizes 2..n, each size closed before the next starts. The full set
	// terminates the walk explicitly because at 64 vertices it is the
	// all-ones mask and an inclusive upper bound would wrap.
	fullSet := FullVertexSet(vertexNum)
	for size := uint32(2); size <= vertexNum; size++ {
		for mask := VertexSet(1); ; mask++ {
			if mask.Count() == size && joinGraph.IsEnumerable(mask) {
				if err := dp.enumerateVertexSet(mask, joinGraph); err != nil {
					return err
				}
			}
			if mask == fullSet {
				break
			}
		}
	}
	return nil
}

// complementPairsOf splits the set into every unordered pair of
// enumerable halves, the half holding the lowest vertex first. Pairs
// without a crossing edge are returned separately and used only when no
// edge-connected split exists (cross product fallback).
func (dp *DpCcpTopK) complementPairsOf(vertexSet VertexSet, joinGraph *JoinGraph) (
	[]pair.Pair[VertexSet, VertexSet], []pair.Pair[VertexSet, VertexSet]) {
	lowBit := NewVertexSet(vertexSet.LowestVertex())
	rest := vertexSet.Without(lowBit)

	withEdges := make([]pair.Pair[VertexSet, VertexSet], 0)
	crossOnly := make([]pair.Pair[VertexSet, VertexSet], 0)

	// ascending enumeration of the subsets of rest, lowBit pinned to S1
	// so that each unordered pair is visited exactly once
	sub := VertexSet(0)
	for {
		setA := sub.Union(lowBit)
		setB := vertexSet.Without(setA)
		if !setB.IsEmpty() && joinGraph.IsEnumerable(setA) && joinGraph.IsEnumerable(setB) {
			if len(joinGraph.EdgesCrossing(setA, setB)) > 0 {
				withEdges = append(withEdges, pair.Pair[VertexSet, VertexSet]{First: setA, Second: setB})
			} else {
				crossOnly = append(crossOnly, pair.Pair[VertexSet, VertexSet]{First: setA, Second: setB})
			}
		}
		sub = VertexSet((uint64(sub) - uint64(rest)) & uint64(rest))
		if sub == 0 {
			break
		}
	}
	return withEdges, crossOnly
}

func (dp *DpCcpTopK) enumerateVertexSet(vertexSet VertexSet, joinGraph *JoinGraph) error {
	withEdges, crossOnly := dp.complementPairsOf(vertexSet, joinGraph)
	splits := withEdges
	if len(splits) == 0 {
		splits = crossOnly
	}
	if len(splits) == 0 {
		return nil
	}

	card, err := dp.cardinalityEstimator.EstimateCardinality(vertexSet, joinGraph)
	if err != nil {
		return err
	}

	for _, split := range splits {
		crossingEdges := joinGraph.EdgesCrossing(split.First, split.Second)
		for _, leftPlan := range dp.subplanCache.GetBestPlans(split.First) {
			for _, rightPlan := range dp.subplanCache.GetBestPlans(split.Second) {
				var joined plans.Plan
				if len(crossingEdges) > 0 {
					joined = plans.NewHashJoinPlanNode(leftPlan.Lqp(), rightPlan.Lqp(), edgePredicates(crossingEdges))
				} else {
					joined = plans.NewCrossProductPlanNode(leftPlan.Lqp(), rightPlan.Lqp())
				}
				joined.SetEstimatedCardinality(card)

				joinCost, err := dp.costModel.EstimateCost(NewCostFeatureLQPNodeProxy(joined))
				if err != nil {
					return err
				}
				planCost := leftPlan.PlanCost() + rightPlan.PlanCost() + joinCost
				dp.subplanCache.InsertPlan(vertexSet, NewJoinPlanNode(joined, planCost, vertexSet))
			}
		}
	}

	common.ShPrintf(common.DEBUG_INFO_DETAIL, "DpCcpTopK: %s -> %d plans\n",
		vertexSet.String(), len(dp.subplanCache.GetBestPlans(vertexSet)))
	return nil
}

/**
 * DpCcp is the classic single-plan dynamic programming enumeration: a
 * DpCcpTopK keeping exactly one plan per vertex set.
 */
type DpCcp struct {
	*DpCcpTopK
}

func NewDpCcp(costModel AbstractCostModel, cardinalityEstimator AbstractCardinalityEstimator) *DpCcp {
	return &DpCcp{NewDpCcpTopK(1, costModel, cardinalityEstimator)}
}
