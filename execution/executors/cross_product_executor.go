package executors

import (
	"github.com/ryogrid/joinordering/execution/expression"
	"github.com/ryogrid/joinordering/execution/plans"
	"github.com/ryogrid/joinordering/scheduler"
)

/**
 * CrossProductExecutor pairs every left tuple with every right tuple.
 */
type CrossProductExecutor struct {
	context *ExecutorContext
	plan    *plans.CrossProductPlanNode
	left    Executor
	right   Executor
}

func NewCrossProductExecutor(context *ExecutorContext, plan *plans.CrossProductPlanNode, left Executor, right Executor) *CrossProductExecutor {
	return &CrossProductExecutor{context, plan, left, right}
}

func (e *CrossProductExecutor) GetOutputColumns() []*expression.ColumnValue {
	ret := make([]*expression.ColumnValue, 0)
	ret = append(ret, e.left.GetOutputColumns()...)
	ret = append(ret, e.right.GetOutputColumns()...)
	return ret
}

func (e *CrossProductExecutor) Execute() ([]Tuple, error) {
	var leftTuples, rightTuples []Tuple
	var leftErr, rightErr error
	e.context.GetScheduler().ScheduleAndWaitForTasks([]scheduler.Task{
		func() { leftTuples, leftErr = e.left.Execute() },
		func() { rightTuples, rightErr = e.right.Execute() },
	})
	if leftErr != nil {
		return nil, leftErr
	}
	if rightErr != nil {
		return nil, rightErr
	}

	txn := e.context.GetTransaction()
	ret := make([]Tuple, 0, len(leftTuples)*len(rightTuples))
	cnt := 0
	for _, leftTuple := range leftTuples {
		for _, rightTuple := range rightTuples {
			if cnt%cancelCheckInterval == 0 && txn.IsRolledBack() {
				return nil, ErrTransactionRolledBack
			}
			cnt += 1
			joined := make(Tuple, 0, len(leftTuple)+len(rightTuple))
			joined = append(joined, leftTuple...)
			joined = append(joined, rightTuple...)
			ret = append(ret, joined)
		}
	}
	return ret, nil
}
