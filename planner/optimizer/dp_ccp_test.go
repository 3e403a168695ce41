package optimizer

import (
	"errors"
	"testing"

	"github.com/ryogrid/joinordering/catalog"
	"github.com/ryogrid/joinordering/execution/expression"
	"github.com/ryogrid/joinordering/execution/plans"
	testingpkg "github.com/ryogrid/joinordering/testing/testing_util"
	"github.com/ryogrid/joinordering/types"
)

type failingEstimator struct{}

func (e *failingEstimator) EstimateCardinality(vertexSet VertexSet, joinGraph *JoinGraph) (types.Cardinality, error) {
	return 0, errors.New("estimation failed")
}

func chainCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.NewCatalog()
	_, err := c.CreateTable("a", catalog.NewSchema([]*catalog.Column{catalog.NewColumn("x")}),
		[][]int32{{0}, {1}, {2}, {3}})
	testingpkg.Ok(t, err)
	_, err = c.CreateTable("b", catalog.NewSchema([]*catalog.Column{catalog.NewColumn("x"), catalog.NewColumn("y")}),
		[][]int32{{0, 0}, {1, 1}, {2, 0}, {3, 1}, {0, 0}, {1, 1}})
	testingpkg.Ok(t, err)
	_, err = c.CreateTable("c", catalog.NewSchema([]*catalog.Column{catalog.NewColumn("y")}),
		[][]int32{{0}, {1}, {0}})
	testingpkg.Ok(t, err)
	return c
}

func TestDpCcpChainCoversEveryEnumerableSet(t *testing.T) {
	graph, err := JoinGraphFromPlan(chainPlan())
	testingpkg.Ok(t, err)
	estimator := NewCardinalityEstimatorColumnStatistics(chainCatalog(t))

	dp := NewDpCcpTopK(NoEntryLimit, NewCostModelNaive(), estimator)
	testingpkg.Ok(t, dp.Run(graph))

	// singletons
	for idx := uint32(0); idx < 3; idx++ {
		best := dp.SubplanCache().GetBestPlan(NewVertexSet(idx))
		testingpkg.Assert(t, best != nil, "singleton %d should hold a plan", idx)
		testingpkg.Equals(t, plans.TableScan, best.Lqp().GetType())
	}

	// {a,c} has no crossing edge inside the chain's component
	testingpkg.Assert(t, dp.SubplanCache().GetBestPlan(NewVertexSet(0, 2)) == nil,
		"non enumerable set must hold no plan")

	// full set exists and covers all three relations
	full := dp.SubplanCache().GetBestPlan(FullVertexSet(3))
	testingpkg.Assert(t, full != nil, "full set should hold a plan")
	testingpkg.Equals(t, FullVertexSet(3), full.GetVertexSet())

	// ranked ascending by cost
	fullPlans := dp.SubplanCache().GetBestPlans(FullVertexSet(3))
	for ii := 1; ii < len(fullPlans); ii++ {
		testingpkg.Assert(t, fullPlans[ii-1].PlanCost() <= fullPlans[ii].PlanCost(),
			"plans must be sorted ascending by cost")
	}
}

func TestDpCcpIsDeterministic(t *testing.T) {
	graph, err := JoinGraphFromPlan(chainPlan())
	testingpkg.Ok(t, err)
	estimator := NewCardinalityEstimatorColumnStatistics(chainCatalog(t))

	runCosts := func() []types.Cost {
		dp := NewDpCcpTopK(NoEntryLimit, NewCostModelNaive(), estimator)
		testingpkg.Ok(t, dp.Run(graph))
		costs := make([]types.Cost, 0)
		for _, plan := range dp.SubplanCache().GetBestPlans(FullVertexSet(3)) {
			costs = append(costs, plan.PlanCost())
		}
		return costs
	}
	testingpkg.Equals(t, runCosts(), runCosts())
}

// leftDeepBaselineCost folds the graph's vertices in index order and sums
// the per node costs the same additive way the enumeration does, giving
// the cost of the unoptimized input order plan.
func leftDeepBaselineCost(t *testing.T, graph *JoinGraph, costModel AbstractCostModel,
	estimator AbstractCardinalityEstimator) types.Cost {
	t.Helper()
	total := types.Cost(0)
	var acc plans.Plan
	seen := VertexSet(0)
	for vertexIdx := uint32(0); vertexIdx < graph.VertexCount(); vertexIdx++ {
		next := graph.GetVertex(vertexIdx).GetPlan()
		card, err := estimator.EstimateCardinality(NewVertexSet(vertexIdx), graph)
		testingpkg.Ok(t, err)
		next.SetEstimatedCardinality(card)
		scanCost, err := costModel.EstimateCost(NewCostFeatureLQPNodeProxy(next))
		testingpkg.Ok(t, err)
		total += scanCost
		if acc == nil {
			acc = next
			seen = NewVertexSet(vertexIdx)
			continue
		}
		crossing := graph.EdgesCrossing(seen, NewVertexSet(vertexIdx))
		if len(crossing) > 0 {
			acc = plans.NewHashJoinPlanNode(acc, next, edgePredicates(crossing))
		} else {
			acc = plans.NewCrossProductPlanNode(acc, next)
		}
		seen = seen.WithVertex(vertexIdx)
		card, err = estimator.EstimateCardinality(seen, graph)
		testingpkg.Ok(t, err)
		acc.SetEstimatedCardinality(card)
		joinCost, err := costModel.EstimateCost(NewCostFeatureLQPNodeProxy(acc))
		testingpkg.Ok(t, err)
		total += joinCost
	}
	return total
}

func TestDpCcpFullyConnectedFourVertexCompleteness(t *testing.T) {
	// an edge between every pair of a,b,c,d
	scanA := plans.NewTableScanPlanNode("a", 1)
	scanB := plans.NewTableScanPlanNode("b", 2)
	scanC := plans.NewTableScanPlanNode("c", 3)
	scanD := plans.NewTableScanPlanNode("d", 4)
	joinAB := plans.NewHashJoinPlanNode(scanA, scanB,
		[]*expression.Comparison{joinPredicate("a", "x", "b", "x")})
	joinABC := plans.NewHashJoinPlanNode(joinAB, scanC,
		[]*expression.Comparison{
			joinPredicate("a", "x", "c", "y"),
			joinPredicate("b", "y", "c", "y"),
		})
	joinABCD := plans.NewHashJoinPlanNode(joinABC, scanD,
		[]*expression.Comparison{
			joinPredicate("a", "x", "d", "z"),
			joinPredicate("b", "y", "d", "z"),
			joinPredicate("c", "y", "d", "z"),
		})
	graph, err := JoinGraphFromPlan(plans.NewRootPlanNode(joinABCD))
	testingpkg.Ok(t, err)

	c := chainCatalog(t)
	_, err = c.CreateTable("d", catalog.NewSchema([]*catalog.Column{catalog.NewColumn("z")}),
		[][]int32{{0}, {1}, {2}, {0}, {1}})
	testingpkg.Ok(t, err)
	estimator := NewCardinalityEstimatorColumnStatistics(c)
	costModel := NewCostModelNaive()

	dp := NewDpCcpTopK(NoEntryLimit, costModel, estimator)
	testingpkg.Ok(t, dp.Run(graph))

	// every non empty subset is connected here, so all 15 must be keyed
	for mask := VertexSet(1); mask <= FullVertexSet(4); mask++ {
		testingpkg.Assert(t, dp.SubplanCache().GetBestPlan(mask) != nil,
			"subset %s of a fully connected graph must hold a plan", mask.String())
	}

	// the input order plan is one of the enumerated candidates, so the
	// winner can never cost more than it
	best := dp.SubplanCache().GetBestPlan(FullVertexSet(4))
	baseline := leftDeepBaselineCost(t, graph, costModel, estimator)
	testingpkg.Assert(t, best.PlanCost() <= baseline,
		"best plan cost %f must not exceed the left deep baseline %f", best.PlanCost(), baseline)
}

func TestDpCcpStarGraphSkipsSatellitePairs(t *testing.T) {
	// star with center a: edges a-b and a-c, none between b and c
	scanA := plans.NewTableScanPlanNode("a", 1)
	scanB := plans.NewTableScanPlanNode("b", 2)
	scanC := plans.NewTableScanPlanNode("c", 3)
	joinAB := plans.NewHashJoinPlanNode(scanA, scanB,
		[]*expression.Comparison{joinPredicate("a", "x", "b", "x")})
	joinABC := plans.NewHashJoinPlanNode(joinAB, scanC,
		[]*expression.Comparison{joinPredicate("a", "x", "c", "y")})
	graph, err := JoinGraphFromPlan(plans.NewRootPlanNode(joinABC))
	testingpkg.Ok(t, err)

	estimator := NewCardinalityEstimatorColumnStatistics(chainCatalog(t))
	dp := NewDpCcpTopK(NoEntryLimit, NewCostModelNaive(), estimator)
	testingpkg.Ok(t, dp.Run(graph))

	testingpkg.Assert(t, dp.SubplanCache().GetBestPlan(NewVertexSet(0, 1)) != nil, "{a,b} is connected")
	testingpkg.Assert(t, dp.SubplanCache().GetBestPlan(NewVertexSet(0, 2)) != nil, "{a,c} is connected")
	testingpkg.Assert(t, dp.SubplanCache().GetBestPlan(NewVertexSet(1, 2)) == nil,
		"{b,c} without an edge must not be enumerated in a connected graph")
	// only the orders joining a satellite into the center first are
	// feasible, so the full set holds exactly two candidates
	testingpkg.Equals(t, 2, len(dp.SubplanCache().GetBestPlans(FullVertexSet(3))))
}

func TestDpCcpFallsBackToCrossProduct(t *testing.T) {
	scanA := plans.NewTableScanPlanNode("a", 1)
	scanB := plans.NewTableScanPlanNode("b", 2)
	cross := plans.NewCrossProductPlanNode(scanA, scanB)
	graph, err := JoinGraphFromPlan(plans.NewRootPlanNode(cross))
	testingpkg.Ok(t, err)

	estimator := NewCardinalityEstimatorColumnStatistics(chainCatalog(t))
	dp := NewDpCcp(NewCostModelNaive(), estimator)
	testingpkg.Ok(t, dp.Run(graph))

	best := dp.SubplanCache().GetBestPlan(FullVertexSet(2))
	testingpkg.Assert(t, best != nil, "edgeless pair should still get a plan")
	testingpkg.Equals(t, plans.CrossProduct, best.Lqp().GetType())
}

func TestDpCcpTopKBoundsPlansPerSet(t *testing.T) {
	graph, err := JoinGraphFromPlan(chainPlan())
	testingpkg.Ok(t, err)
	estimator := NewCardinalityEstimatorColumnStatistics(chainCatalog(t))

	dp := NewDpCcpTopK(1, NewCostModelNaive(), estimator)
	testingpkg.Ok(t, dp.Run(graph))
	for _, vs := range dp.SubplanCache().VertexSets() {
		testingpkg.Assert(t, len(dp.SubplanCache().GetBestPlans(vs)) == 1,
			"top-1 enumeration must keep one plan per set")
	}
}

func TestDpCcpRejectsEmptyGraph(t *testing.T) {
	estimator := NewCardinalityEstimatorColumnStatistics(chainCatalog(t))
	dp := NewDpCcp(NewCostModelNaive(), estimator)
	testingpkg.Nok(t, dp.Run(nil))
}

func TestDpCcpPropagatesEstimatorError(t *testing.T) {
	graph, err := JoinGraphFromPlan(chainPlan())
	testingpkg.Ok(t, err)
	dp := NewDpCcp(NewCostModelNaive(), &failingEstimator{})
	testingpkg.Nok(t, dp.Run(graph))
}
