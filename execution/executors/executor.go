package executors

import (
	"errors"

	"github.com/ryogrid/joinordering/execution/expression"
)

// Tuple is one materialized output row.
type Tuple []int32

// ErrTransactionRolledBack is surfaced when an executor observes that its
// transaction was rolled back (watchdog timeout) while producing rows.
var ErrTransactionRolledBack = errors.New("transaction rolled back during execution")

// rows between two cancellation checks
const cancelCheckInterval = 1024

/**
 * Executor materializes its whole output at once. The output column list
 * maps qualified column references to tuple slots for parent executors.
 */
type Executor interface {
	Execute() ([]Tuple, error)
	GetOutputColumns() []*expression.ColumnValue
}

func colIndexOf(columns []*expression.ColumnValue, target *expression.ColumnValue) int {
	for idx, col := range columns {
		if col.TableName() == target.TableName() && col.ColumnName() == target.ColumnName() {
			return idx
		}
	}
	return -1
}
