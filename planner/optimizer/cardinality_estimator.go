package optimizer

import (
	"fmt"
	"sort"

	stack "github.com/golang-collections/collections/stack"
	"github.com/ryogrid/joinordering/catalog"
	"github.com/ryogrid/joinordering/common"
	"github.com/ryogrid/joinordering/concurrency"
	"github.com/ryogrid/joinordering/execution/executors"
	"github.com/ryogrid/joinordering/execution/expression"
	"github.com/ryogrid/joinordering/execution/plans"
	"github.com/ryogrid/joinordering/scheduler"
	"github.com/ryogrid/joinordering/types"
)

/**
 * AbstractCardinalityEstimator estimates the output row count of joining
 * a vertex set. Whether the estimate comes from statistics or from
 * actually executing the subplan is an implementation choice invisible to
 * callers. Deterministic for a fixed graph and statistics snapshot.
 */
type AbstractCardinalityEstimator interface {
	EstimateCardinality(vertexSet VertexSet, joinGraph *JoinGraph) (types.Cardinality, error)
}

/**
 * CardinalityEstimatorColumnStatistics derives the estimate from base
 * relation row counts and per column distinct counts: the product of the
 * base cardinalities damped by 1/max(distinct_l, distinct_r) for every
 * join predicate inside the set.
 */
type CardinalityEstimatorColumnStatistics struct {
	catalog_ *catalog.Catalog
}

func NewCardinalityEstimatorColumnStatistics(c *catalog.Catalog) *CardinalityEstimatorColumnStatistics {
	return &CardinalityEstimatorColumnStatistics{c}
}

func (e *CardinalityEstimatorColumnStatistics) distinctCountOf(tableName string, columnName string) (int64, error) {
	tableMetadata := e.catalog_.GetTableByName(tableName)
	if tableMetadata == nil {
		return 0, fmt.Errorf("table %s not found in catalog", tableName)
	}
	colIdx := tableMetadata.Schema().GetColIndex(columnName)
	if colIdx < 0 {
		return 0, fmt.Errorf("column %s.%s not found", tableName, columnName)
	}
	return tableMetadata.GetStatistics().GetColumnStatistics(colIdx).DistinctCount(), nil
}

func (e *CardinalityEstimatorColumnStatistics) EstimateCardinality(vertexSet VertexSet, joinGraph *JoinGraph) (types.Cardinality, error) {
	card := 1.0
	for _, vertexIdx := range vertexSet.Vertices() {
		tableMetadata := e.catalog_.GetTableByName(joinGraph.GetVertex(vertexIdx).GetTableName())
		if tableMetadata == nil {
			return 0, fmt.Errorf("table %s not found in catalog", joinGraph.GetVertex(vertexIdx).GetTableName())
		}
		card *= float64(tableMetadata.GetStatistics().RowCount())
	}
	for _, edge := range joinGraph.EdgesWithin(vertexSet) {
		pred := edge.GetPredicate()
		leftDistinct, err := e.distinctCountOf(pred.GetLeft().TableName(), pred.GetLeft().ColumnName())
		if err != nil {
			return 0, err
		}
		rightDistinct, err := e.distinctCountOf(pred.GetRight().TableName(), pred.GetRight().ColumnName())
		if err != nil {
			return 0, err
		}
		maxDistinct := leftDistinct
		if rightDistinct > maxDistinct {
			maxDistinct = rightDistinct
		}
		if maxDistinct > 0 {
			card /= float64(maxDistinct)
		}
	}
	return types.Cardinality(card), nil
}

/**
 * CardinalityEstimatorExecution obtains the exact count by building a
 * left deep plan over the vertex set and running it in its own
 * transaction against the live engine.
 */
type CardinalityEstimatorExecution struct {
	catalog_   *catalog.Catalog
	txnManager *concurrency.TransactionManager
	scheduler_ *scheduler.Scheduler
}

func NewCardinalityEstimatorExecution(c *catalog.Catalog, txnManager *concurrency.TransactionManager,
	sched *scheduler.Scheduler) *CardinalityEstimatorExecution {
	return &CardinalityEstimatorExecution{c, txnManager, sched}
}

func (e *CardinalityEstimatorExecution) EstimateCardinality(vertexSet VertexSet, joinGraph *JoinGraph) (types.Cardinality, error) {
	plan, err := buildLeftDeepPlan(vertexSet, joinGraph)
	if err != nil {
		return 0, err
	}

	txn := e.txnManager.Begin()
	engine := executors.NewExecutionEngine()
	context := executors.NewExecutorContext(e.catalog_, txn, e.scheduler_)
	tuples, _, err := engine.Execute(plan, context)
	if err != nil {
		txn.Rollback(concurrency.Lenient)
		return 0, err
	}
	committed := txn.Commit(concurrency.Strict)
	common.SH_Assert(committed, "estimation transaction must commit")
	return types.Cardinality(len(tuples)), nil
}

// buildLeftDeepPlan folds the vertices of the set in index order, joining
// with every predicate that becomes available and falling back to a cross
// product when none does.
func buildLeftDeepPlan(vertexSet VertexSet, joinGraph *JoinGraph) (plans.Plan, error) {
	vertexIdxs := vertexSet.Vertices()
	if len(vertexIdxs) == 0 {
		return nil, fmt.Errorf("cannot build a plan over an empty vertex set")
	}
	var acc plans.Plan = joinGraph.GetVertex(vertexIdxs[0]).GetPlan()
	seen := NewVertexSet(vertexIdxs[0])
	for _, vertexIdx := range vertexIdxs[1:] {
		next := joinGraph.GetVertex(vertexIdx).GetPlan()
		crossing := joinGraph.EdgesCrossing(seen, NewVertexSet(vertexIdx))
		if len(crossing) > 0 {
			acc = plans.NewHashJoinPlanNode(acc, next, edgePredicates(crossing))
		} else {
			acc = plans.NewCrossProductPlanNode(acc, next)
		}
		seen = seen.WithVertex(vertexIdx)
	}
	return acc, nil
}

func edgePredicates(edges []*JoinEdge) []*expression.Comparison {
	ret := make([]*expression.Comparison, 0, len(edges))
	for _, edge := range edges {
		ret = append(ret, edge.GetPredicate())
	}
	return ret
}

// CacheKeyOfVertexSet renders a vertex set plus its predicate shape into
// the key used by the cardinality estimation cache. Table names and
// predicates are sorted so that structurally equal lookups collide.
func CacheKeyOfVertexSet(vertexSet VertexSet, joinGraph *JoinGraph) string {
	tableNames := make([]string, 0, vertexSet.Count())
	for _, vertexIdx := range vertexSet.Vertices() {
		tableNames = append(tableNames, joinGraph.GetVertex(vertexIdx).GetTableName())
	}
	predStrs := make([]string, 0)
	for _, edge := range joinGraph.EdgesWithin(vertexSet) {
		predStrs = append(predStrs, edge.GetPredicate().String())
	}
	return renderCacheKey(tableNames, predStrs)
}

// CacheKeyOfPlan derives the same key shape from an executed plan subtree
// so that measured counts can be fed back under the key the estimator
// will look up.
func CacheKeyOfPlan(plan plans.Plan) string {
	tableNames := make([]string, 0)
	predStrs := make([]string, 0)
	visit := stack.New()
	visit.Push(plan)
	for visit.Len() > 0 {
		node := visit.Pop().(plans.Plan)
		switch p := node.(type) {
		case *plans.TableScanPlanNode:
			tableNames = append(tableNames, p.GetTableName())
		case *plans.HashJoinPlanNode:
			for _, pred := range p.OnPredicates() {
				predStrs = append(predStrs, pred.String())
			}
		}
		for _, child := range node.GetChildren() {
			visit.Push(child)
		}
	}
	return renderCacheKey(tableNames, predStrs)
}

func renderCacheKey(tableNames []string, predStrs []string) string {
	sort.Strings(tableNames)
	sort.Strings(predStrs)
	key := ""
	for ii, name := range tableNames {
		if ii > 0 {
			key += ","
		}
		key += name
	}
	key += "|"
	for ii, predStr := range predStrs {
		if ii > 0 {
			key += ";"
		}
		key += predStr
	}
	return key
}
