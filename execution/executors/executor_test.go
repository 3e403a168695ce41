package executors

import (
	"testing"

	"github.com/ryogrid/joinordering/catalog"
	"github.com/ryogrid/joinordering/concurrency"
	"github.com/ryogrid/joinordering/execution/expression"
	"github.com/ryogrid/joinordering/execution/plans"
	"github.com/ryogrid/joinordering/scheduler"
	testingpkg "github.com/ryogrid/joinordering/testing/testing_util"
	"github.com/ryogrid/joinordering/types"
)

func executorCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.NewCatalog()
	_, err := c.CreateTable("staff", catalog.NewSchema(
		[]*catalog.Column{catalog.NewColumn("id"), catalog.NewColumn("dept")}),
		[][]int32{{1, 10}, {2, 20}, {3, 10}})
	testingpkg.Ok(t, err)
	_, err = c.CreateTable("depts", catalog.NewSchema(
		[]*catalog.Column{catalog.NewColumn("dept"), catalog.NewColumn("floor")}),
		[][]int32{{10, 1}, {20, 2}})
	testingpkg.Ok(t, err)
	return c
}

func executorContext(t *testing.T, c *catalog.Catalog) (*ExecutorContext, *concurrency.Transaction) {
	t.Helper()
	txnManager := concurrency.NewTransactionManager()
	txn := txnManager.Begin()
	return NewExecutorContext(c, txn, scheduler.NewScheduler(2)), txn
}

func TestSeqScanReturnsAllRows(t *testing.T) {
	c := executorCatalog(t)
	context, _ := executorContext(t, c)

	executor := NewSeqScanExecutor(context, plans.NewTableScanPlanNode("staff", 1))
	tuples, err := executor.Execute()
	testingpkg.Ok(t, err)
	testingpkg.Assert(t, len(tuples) == 3, "staff has 3 rows but scan returned %d", len(tuples))
	testingpkg.Equals(t, Tuple{1, 10}, tuples[0])

	columns := executor.GetOutputColumns()
	testingpkg.Assert(t, len(columns) == 2, "staff has 2 columns")
	testingpkg.Equals(t, "staff.id", columns[0].String())
}

func TestSeqScanUnknownTable(t *testing.T) {
	context, _ := executorContext(t, executorCatalog(t))
	executor := NewSeqScanExecutor(context, plans.NewTableScanPlanNode("nope", 9))
	_, err := executor.Execute()
	testingpkg.Nok(t, err)
}

func TestSeqScanCancelledByRollback(t *testing.T) {
	c := executorCatalog(t)
	context, txn := executorContext(t, c)
	txn.Rollback(concurrency.Lenient)

	executor := NewSeqScanExecutor(context, plans.NewTableScanPlanNode("staff", 1))
	_, err := executor.Execute()
	testingpkg.Assert(t, err == ErrTransactionRolledBack, "rolled back transaction must cancel the scan")
}

func TestHashJoinMatchesOnKey(t *testing.T) {
	c := executorCatalog(t)
	context, _ := executorContext(t, c)

	scanStaff := plans.NewTableScanPlanNode("staff", 1)
	scanDepts := plans.NewTableScanPlanNode("depts", 2)
	joinPlan := plans.NewHashJoinPlanNode(scanStaff, scanDepts, []*expression.Comparison{
		expression.NewComparison(expression.NewColumnValue("staff", "dept"),
			expression.NewColumnValue("depts", "dept"), expression.Equal)})

	executor := NewHashJoinExecutor(context, joinPlan,
		NewSeqScanExecutor(context, scanStaff), NewSeqScanExecutor(context, scanDepts))
	tuples, err := executor.Execute()
	testingpkg.Ok(t, err)
	testingpkg.Assert(t, len(tuples) == 3, "every staff row matches one dept but got %d rows", len(tuples))
	for _, tuple_ := range tuples {
		testingpkg.Assert(t, len(tuple_) == 4, "joined tuple should carry both sides")
		testingpkg.Equals(t, tuple_[1], tuple_[2])
	}
}

func TestHashJoinHandlesSwappedPredicateSides(t *testing.T) {
	c := executorCatalog(t)
	context, _ := executorContext(t, c)

	scanStaff := plans.NewTableScanPlanNode("staff", 1)
	scanDepts := plans.NewTableScanPlanNode("depts", 2)
	// predicate written depts-first while depts is the right child
	joinPlan := plans.NewHashJoinPlanNode(scanStaff, scanDepts, []*expression.Comparison{
		expression.NewComparison(expression.NewColumnValue("depts", "dept"),
			expression.NewColumnValue("staff", "dept"), expression.Equal)})

	executor := NewHashJoinExecutor(context, joinPlan,
		NewSeqScanExecutor(context, scanStaff), NewSeqScanExecutor(context, scanDepts))
	tuples, err := executor.Execute()
	testingpkg.Ok(t, err)
	testingpkg.Assert(t, len(tuples) == 3, "swapped predicate should join identically, got %d rows", len(tuples))
}

func TestHashJoinRejectsNonEquality(t *testing.T) {
	c := executorCatalog(t)
	context, _ := executorContext(t, c)

	scanStaff := plans.NewTableScanPlanNode("staff", 1)
	scanDepts := plans.NewTableScanPlanNode("depts", 2)
	joinPlan := plans.NewHashJoinPlanNode(scanStaff, scanDepts, []*expression.Comparison{
		expression.NewComparison(expression.NewColumnValue("staff", "dept"),
			expression.NewColumnValue("depts", "dept"), expression.LessThan)})

	executor := NewHashJoinExecutor(context, joinPlan,
		NewSeqScanExecutor(context, scanStaff), NewSeqScanExecutor(context, scanDepts))
	_, err := executor.Execute()
	testingpkg.Nok(t, err)
}

func TestCrossProductPairsEverything(t *testing.T) {
	c := executorCatalog(t)
	context, _ := executorContext(t, c)

	scanStaff := plans.NewTableScanPlanNode("staff", 1)
	scanDepts := plans.NewTableScanPlanNode("depts", 2)
	crossPlan := plans.NewCrossProductPlanNode(scanStaff, scanDepts)

	executor := NewCrossProductExecutor(context, crossPlan,
		NewSeqScanExecutor(context, scanStaff), NewSeqScanExecutor(context, scanDepts))
	tuples, err := executor.Execute()
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, 3*2, len(tuples))
}

func TestExecutionEngineBuildsOperatorTree(t *testing.T) {
	c := executorCatalog(t)
	context, _ := executorContext(t, c)

	scanStaff := plans.NewTableScanPlanNode("staff", 1)
	scanDepts := plans.NewTableScanPlanNode("depts", 2)
	joinPlan := plans.NewHashJoinPlanNode(scanStaff, scanDepts, []*expression.Comparison{
		expression.NewComparison(expression.NewColumnValue("staff", "dept"),
			expression.NewColumnValue("depts", "dept"), expression.Equal)})
	root := plans.NewRootPlanNode(joinPlan)

	engine := NewExecutionEngine()
	callbackCounts := make(map[plans.Plan]types.Cardinality)
	engine.SetPostOperatorCallback(func(plan plans.Plan, outputRowCount types.Cardinality) {
		callbackCounts[plan] = outputRowCount
	})

	tuples, opTree, err := engine.Execute(root, context)
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, 3, len(tuples))

	// operator tree mirrors the join shape with actual counts
	testingpkg.Equals(t, types.Cardinality(3), opTree.OutputRowCount())
	testingpkg.Assert(t, len(opTree.GetChildren()) == 2, "join operator has two children")
	testingpkg.Equals(t, types.Cardinality(3), opTree.GetChildAt(0).OutputRowCount())
	testingpkg.Equals(t, types.Cardinality(2), opTree.GetChildAt(1).OutputRowCount())

	// one callback per operator
	testingpkg.Equals(t, 3, len(callbackCounts))
	testingpkg.Equals(t, types.Cardinality(3), callbackCounts[joinPlan])

	flattened := FlattenOperators(opTree)
	testingpkg.Equals(t, 3, len(flattened))
}
