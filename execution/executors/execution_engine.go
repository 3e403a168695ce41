package executors

import (
	"fmt"

	"github.com/ryogrid/joinordering/execution/expression"
	"github.com/ryogrid/joinordering/execution/plans"
	"github.com/ryogrid/joinordering/scheduler"
	"github.com/ryogrid/joinordering/types"
)

// PostOperatorCallback is invoked once per executed operator with its
// actual output row count. Used to feed measured cardinalities back into
// the cardinality estimation cache.
type PostOperatorCallback func(plan plans.Plan, outputRowCount types.Cardinality)

// materializedExecutor replays tuples a child subtree already produced.
type materializedExecutor struct {
	tuples  []Tuple
	columns []*expression.ColumnValue
}

func (e *materializedExecutor) Execute() ([]Tuple, error) { return e.tuples, nil }
func (e *materializedExecutor) GetOutputColumns() []*expression.ColumnValue { return e.columns }

type ExecutionEngine struct {
	postOperatorCallback PostOperatorCallback
}

func NewExecutionEngine() *ExecutionEngine {
	return &ExecutionEngine{nil}
}

func (e *ExecutionEngine) SetPostOperatorCallback(callback PostOperatorCallback) {
	e.postOperatorCallback = callback
}

// Execute runs the plan to completion inside the context's transaction and
// returns the produced tuples together with the executed operator tree.
func (e *ExecutionEngine) Execute(plan plans.Plan, context *ExecutorContext) ([]Tuple, *ExecutedOperator, error) {
	tuples, _, opTree, err := e.executeNode(plan, context)
	if err != nil {
		return nil, nil, err
	}
	return tuples, opTree, nil
}

func (e *ExecutionEngine) executeNode(plan plans.Plan, context *ExecutorContext) ([]Tuple, []*expression.ColumnValue, *ExecutedOperator, error) {
	switch p := plan.(type) {
	case *plans.RootPlanNode:
		return e.executeNode(p.GetChildAt(0), context)
	case *plans.TableScanPlanNode:
		executor := NewSeqScanExecutor(context, p)
		tuples, err := executor.Execute()
		if err != nil {
			return nil, nil, nil, err
		}
		op := NewExecutedOperator(p, types.Cardinality(len(tuples)), nil)
		e.fireCallback(op)
		return tuples, executor.GetOutputColumns(), op, nil
	case *plans.HashJoinPlanNode:
		leftTuples, leftCols, leftOp, rightTuples, rightCols, rightOp, err := e.executeChildren(p.GetChildAt(0), p.GetChildAt(1), context)
		if err != nil {
			return nil, nil, nil, err
		}
		executor := NewHashJoinExecutor(context, p,
			&materializedExecutor{leftTuples, leftCols},
			&materializedExecutor{rightTuples, rightCols})
		tuples, err := executor.Execute()
		if err != nil {
			return nil, nil, nil, err
		}
		op := NewExecutedOperator(p, types.Cardinality(len(tuples)), []*ExecutedOperator{leftOp, rightOp})
		e.fireCallback(op)
		return tuples, executor.GetOutputColumns(), op, nil
	case *plans.CrossProductPlanNode:
		leftTuples, leftCols, leftOp, rightTuples, rightCols, rightOp, err := e.executeChildren(p.GetChildAt(0), p.GetChildAt(1), context)
		if err != nil {
			return nil, nil, nil, err
		}
		executor := NewCrossProductExecutor(context, p,
			&materializedExecutor{leftTuples, leftCols},
			&materializedExecutor{rightTuples, rightCols})
		tuples, err := executor.Execute()
		if err != nil {
			return nil, nil, nil, err
		}
		op := NewExecutedOperator(p, types.Cardinality(len(tuples)), []*ExecutedOperator{leftOp, rightOp})
		e.fireCallback(op)
		return tuples, executor.GetOutputColumns(), op, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported plan node type: %d", plan.GetType())
	}
}

// executeChildren runs two independent subtrees as parallel scheduler tasks.
func (e *ExecutionEngine) executeChildren(left plans.Plan, right plans.Plan, context *ExecutorContext) (
	[]Tuple, []*expression.ColumnValue, *ExecutedOperator,
	[]Tuple, []*expression.ColumnValue, *ExecutedOperator, error) {
	var leftTuples, rightTuples []Tuple
	var leftCols, rightCols []*expression.ColumnValue
	var leftOp, rightOp *ExecutedOperator
	var leftErr, rightErr error
	context.GetScheduler().ScheduleAndWaitForTasks([]scheduler.Task{
		func() { leftTuples, leftCols, leftOp, leftErr = e.executeNode(left, context) },
		func() { rightTuples, rightCols, rightOp, rightErr = e.executeNode(right, context) },
	})
	if leftErr != nil {
		return nil, nil, nil, nil, nil, nil, leftErr
	}
	if rightErr != nil {
		return nil, nil, nil, nil, nil, nil, rightErr
	}
	return leftTuples, leftCols, leftOp, rightTuples, rightCols, rightOp, nil
}

func (e *ExecutionEngine) fireCallback(op *ExecutedOperator) {
	if e.postOperatorCallback != nil {
		e.postOperatorCallback(op.GetPlan(), op.OutputRowCount())
	}
}
