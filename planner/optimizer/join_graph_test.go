package optimizer

import (
	"testing"

	"github.com/ryogrid/joinordering/execution/expression"
	"github.com/ryogrid/joinordering/execution/plans"
	testingpkg "github.com/ryogrid/joinordering/testing/testing_util"
)

func joinPredicate(leftTable string, leftCol string, rightTable string, rightCol string) *expression.Comparison {
	return expression.NewComparison(
		expression.NewColumnValue(leftTable, leftCol),
		expression.NewColumnValue(rightTable, rightCol),
		expression.Equal)
}

// chainPlan builds Root(HashJoin(HashJoin(A, B), C)) with edges A-B and B-C.
func chainPlan() plans.Plan {
	scanA := plans.NewTableScanPlanNode("a", 1)
	scanB := plans.NewTableScanPlanNode("b", 2)
	scanC := plans.NewTableScanPlanNode("c", 3)
	joinAB := plans.NewHashJoinPlanNode(scanA, scanB,
		[]*expression.Comparison{joinPredicate("a", "x", "b", "x")})
	joinABC := plans.NewHashJoinPlanNode(joinAB, scanC,
		[]*expression.Comparison{joinPredicate("b", "y", "c", "y")})
	return plans.NewRootPlanNode(joinABC)
}

func TestJoinGraphFromPlanChain(t *testing.T) {
	root := chainPlan()
	graph, err := JoinGraphFromPlan(root)
	testingpkg.Ok(t, err)

	testingpkg.Assert(t, graph.VertexCount() == 3, "chain of 3 tables should yield 3 vertices")
	testingpkg.Equals(t, "a", graph.GetVertex(0).GetTableName())
	testingpkg.Equals(t, "b", graph.GetVertex(1).GetTableName())
	testingpkg.Equals(t, "c", graph.GetVertex(2).GetTableName())

	testingpkg.Assert(t, len(graph.Edges()) == 2, "two predicates should yield two edges")
	testingpkg.Equals(t, NewVertexSet(0, 1), graph.Edges()[0].GetVertexSet())
	testingpkg.Equals(t, NewVertexSet(1, 2), graph.Edges()[1].GetVertexSet())

	testingpkg.Assert(t, len(graph.OutputRelations()) == 1, "one attachment point expected")
	testingpkg.Assert(t, graph.OutputRelations()[0].Output() == root, "attachment parent should be the root")
	testingpkg.Equals(t, uint32(0), graph.OutputRelations()[0].InputSideIdx())
}

func TestJoinGraphFromPlanRejectsDuplicateTable(t *testing.T) {
	scanA1 := plans.NewTableScanPlanNode("a", 1)
	scanA2 := plans.NewTableScanPlanNode("a", 1)
	join := plans.NewHashJoinPlanNode(scanA1, scanA2,
		[]*expression.Comparison{joinPredicate("a", "x", "a", "x")})
	_, err := JoinGraphFromPlan(plans.NewRootPlanNode(join))
	testingpkg.Nok(t, err)
}

func TestJoinGraphFromPlanRejectsForeignPredicate(t *testing.T) {
	scanA := plans.NewTableScanPlanNode("a", 1)
	scanB := plans.NewTableScanPlanNode("b", 2)
	join := plans.NewHashJoinPlanNode(scanA, scanB,
		[]*expression.Comparison{joinPredicate("a", "x", "zz", "x")})
	_, err := JoinGraphFromPlan(plans.NewRootPlanNode(join))
	testingpkg.Nok(t, err)
}

func TestJoinGraphFromPlanRejectsRootWithoutChildren(t *testing.T) {
	scan := plans.NewTableScanPlanNode("a", 1)
	_, err := JoinGraphFromPlan(scan)
	testingpkg.Nok(t, err)
}

func TestJoinGraphConnectivity(t *testing.T) {
	graph, err := JoinGraphFromPlan(chainPlan())
	testingpkg.Ok(t, err)

	testingpkg.Assert(t, graph.IsConnected(NewVertexSet(0)), "singleton is connected")
	testingpkg.Assert(t, graph.IsConnected(NewVertexSet(0, 1)), "{a,b} is connected")
	testingpkg.Assert(t, graph.IsConnected(NewVertexSet(0, 1, 2)), "the whole chain is connected")
	testingpkg.Assert(t, !graph.IsConnected(NewVertexSet(0, 2)), "{a,c} has no edge and is not connected")
	testingpkg.Assert(t, !graph.IsConnected(NewVertexSet()), "the empty set is not connected")
}

func TestJoinGraphEnumerableRespectsComponents(t *testing.T) {
	graph, err := JoinGraphFromPlan(chainPlan())
	testingpkg.Ok(t, err)
	testingpkg.Assert(t, graph.IsEnumerable(NewVertexSet(0, 1, 2)), "full chain is enumerable")
	testingpkg.Assert(t, !graph.IsEnumerable(NewVertexSet(0, 2)), "disconnected part of one component is not enumerable")

	// edgeless graph: every subset may only meet via cross products and is enumerable
	scanA := plans.NewTableScanPlanNode("a", 1)
	scanB := plans.NewTableScanPlanNode("b", 2)
	cross := plans.NewCrossProductPlanNode(scanA, scanB)
	edgeless, err := JoinGraphFromPlan(plans.NewRootPlanNode(cross))
	testingpkg.Ok(t, err)
	testingpkg.Assert(t, edgeless.IsEnumerable(NewVertexSet(0, 1)), "cross component set is enumerable")
}

func TestJoinGraphEdgeQueries(t *testing.T) {
	graph, err := JoinGraphFromPlan(chainPlan())
	testingpkg.Ok(t, err)

	crossing := graph.EdgesCrossing(NewVertexSet(0, 1), NewVertexSet(2))
	testingpkg.Assert(t, len(crossing) == 1, "one edge crosses {a,b}|{c}")
	testingpkg.Equals(t, NewVertexSet(1, 2), crossing[0].GetVertexSet())

	within := graph.EdgesWithin(NewVertexSet(0, 1))
	testingpkg.Assert(t, len(within) == 1, "one edge lies within {a,b}")
	testingpkg.Equals(t, NewVertexSet(0, 1), within[0].GetVertexSet())

	testingpkg.Assert(t, len(graph.EdgesWithin(NewVertexSet(0, 2))) == 0, "no edge within {a,c}")
}
