package planner

import (
	"fmt"

	"github.com/ryogrid/joinordering/catalog"
	"github.com/ryogrid/joinordering/execution/expression"
	"github.com/ryogrid/joinordering/execution/plans"
	"github.com/ryogrid/joinordering/parser"
)

/**
 * SimplePlanner turns a parsed multi way join query into an initial
 * left deep logical plan. The plan carries every join predicate on the
 * join introducing its second table; its shape is a starting point for
 * enumeration, not an optimized one.
 */
type SimplePlanner struct {
	catalog_ *catalog.Catalog
}

func NewSimplePlanner(c *catalog.Catalog) *SimplePlanner {
	return &SimplePlanner{c}
}

func (p *SimplePlanner) MakePlan(queryInfo *parser.QueryInfo) (plans.Plan, error) {
	if *queryInfo.QueryType_ != parser.SELECT {
		return nil, fmt.Errorf("only SELECT queries can be planned")
	}
	if len(queryInfo.JoinTables_) == 0 {
		return nil, fmt.Errorf("query references no table")
	}

	predicates := make([]*expression.Comparison, 0)
	for _, onExpression := range queryInfo.OnExpressions_ {
		predicates = append(predicates, parser.ExtractEqualityPredicates(onExpression)...)
	}
	predicates = append(predicates, parser.ExtractEqualityPredicates(queryInfo.WhereExpression_)...)

	scans := make([]*plans.TableScanPlanNode, 0, len(queryInfo.JoinTables_))
	for _, tableName := range queryInfo.JoinTables_ {
		tableMetadata := p.catalog_.GetTableByName(*tableName)
		if tableMetadata == nil {
			return nil, fmt.Errorf("table %s not found in catalog", *tableName)
		}
		scan := plans.NewTableScanPlanNode(*tableName, tableMetadata.OID())
		scan.SetEstimatedCardinality(tableMetadata.GetStatistics().RowCount())
		scans = append(scans, scan)
	}

	// fold left to right, attaching every predicate joinable at that step
	var acc plans.Plan = scans[0]
	joinedTables := map[string]bool{scans[0].GetTableName(): true}
	for _, scan := range scans[1:] {
		available := make([]*expression.Comparison, 0)
		for _, pred := range predicates {
			leftIn := joinedTables[pred.GetLeft().TableName()]
			rightIn := joinedTables[pred.GetRight().TableName()]
			nextTable := scan.GetTableName()
			if (leftIn && pred.GetRight().TableName() == nextTable) ||
				(rightIn && pred.GetLeft().TableName() == nextTable) {
				available = append(available, pred)
			}
		}
		if len(available) > 0 {
			acc = plans.NewHashJoinPlanNode(acc, scan, available)
		} else {
			acc = plans.NewCrossProductPlanNode(acc, scan)
		}
		joinedTables[scan.GetTableName()] = true
	}

	return plans.NewRootPlanNode(acc), nil
}
