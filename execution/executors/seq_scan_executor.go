package executors

import (
	"fmt"

	"github.com/ryogrid/joinordering/execution/expression"
	"github.com/ryogrid/joinordering/execution/plans"
)

/**
 * SeqScanExecutor executes a sequential scan over an in-memory table.
 */
type SeqScanExecutor struct {
	context *ExecutorContext
	plan    *plans.TableScanPlanNode
}

func NewSeqScanExecutor(context *ExecutorContext, plan *plans.TableScanPlanNode) *SeqScanExecutor {
	return &SeqScanExecutor{context, plan}
}

func (e *SeqScanExecutor) GetOutputColumns() []*expression.ColumnValue {
	tableMetadata := e.context.GetCatalog().GetTableByName(e.plan.GetTableName())
	columns := make([]*expression.ColumnValue, 0, tableMetadata.Schema().GetColumnCount())
	for _, col := range tableMetadata.Schema().GetColumns() {
		columns = append(columns, expression.NewColumnValue(e.plan.GetTableName(), col.ColumnName()))
	}
	return columns
}

func (e *SeqScanExecutor) Execute() ([]Tuple, error) {
	tableMetadata := e.context.GetCatalog().GetTableByName(e.plan.GetTableName())
	if tableMetadata == nil {
		return nil, fmt.Errorf("table %s not found in catalog", e.plan.GetTableName())
	}

	txn := e.context.GetTransaction()
	rows := tableMetadata.Rows()
	ret := make([]Tuple, 0, len(rows))
	for rowIdx, row := range rows {
		if rowIdx%cancelCheckInterval == 0 && txn.IsRolledBack() {
			return nil, ErrTransactionRolledBack
		}
		tuple_ := make(Tuple, len(row))
		copy(tuple_, row)
		ret = append(ret, tuple_)
	}
	return ret, nil
}
