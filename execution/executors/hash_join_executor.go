package executors

import (
	"fmt"

	pair "github.com/notEpsilon/go-pair"
	"github.com/ryogrid/joinordering/execution/expression"
	"github.com/ryogrid/joinordering/execution/plans"
	"github.com/ryogrid/joinordering/scheduler"
)

/**
 * HashJoinExecutor executes hash join operations.
 * The left child builds the hash table and the right child probes it.
 */
type HashJoinExecutor struct {
	context *ExecutorContext
	plan    *plans.HashJoinPlanNode
	left    Executor
	right   Executor
}

func NewHashJoinExecutor(context *ExecutorContext, plan *plans.HashJoinPlanNode, left Executor, right Executor) *HashJoinExecutor {
	return &HashJoinExecutor{context, plan, left, right}
}

func (e *HashJoinExecutor) GetOutputColumns() []*expression.ColumnValue {
	ret := make([]*expression.ColumnValue, 0)
	ret = append(ret, e.left.GetOutputColumns()...)
	ret = append(ret, e.right.GetOutputColumns()...)
	return ret
}

// resolveKeyColumns orients each predicate so that First indexes into the
// left child's output and Second into the right child's.
func (e *HashJoinExecutor) resolveKeyColumns() ([]pair.Pair[int, int], error) {
	leftCols := e.left.GetOutputColumns()
	rightCols := e.right.GetOutputColumns()

	keyIdxs := make([]pair.Pair[int, int], 0, len(e.plan.OnPredicates()))
	for _, pred := range e.plan.OnPredicates() {
		if pred.GetComparisonType() != expression.Equal {
			return nil, fmt.Errorf("hash join supports only equality predicates: %s", pred.String())
		}
		lIdx := colIndexOf(leftCols, pred.GetLeft())
		rIdx := colIndexOf(rightCols, pred.GetRight())
		if lIdx < 0 || rIdx < 0 {
			// predicate was written with sides swapped
			lIdx = colIndexOf(leftCols, pred.GetRight())
			rIdx = colIndexOf(rightCols, pred.GetLeft())
		}
		if lIdx < 0 || rIdx < 0 {
			return nil, fmt.Errorf("join predicate %s does not match children outputs", pred.String())
		}
		keyIdxs = append(keyIdxs, pair.Pair[int, int]{First: lIdx, Second: rIdx})
	}
	return keyIdxs, nil
}

func joinKeyOf(tuple_ Tuple, idxs []int) string {
	key := ""
	for _, idx := range idxs {
		key += fmt.Sprintf("%d|", tuple_[idx])
	}
	return key
}

func (e *HashJoinExecutor) Execute() ([]Tuple, error) {
	keyIdxs, err := e.resolveKeyColumns()
	if err != nil {
		return nil, err
	}

	// left and right subtrees are independent, run them as parallel tasks
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

	leftKeyIdxs := make([]int, len(keyIdxs))
	rightKeyIdxs := make([]int, len(keyIdxs))
	for ii, keyIdx := range keyIdxs {
		leftKeyIdxs[ii] = keyIdx.First
		rightKeyIdxs[ii] = keyIdx.Second
	}

	// build phase
	jht := make(map[string][]Tuple, len(leftTuples))
	for _, leftTuple := range leftTuples {
		key := joinKeyOf(leftTuple, leftKeyIdxs)
		jht[key] = append(jht[key], leftTuple)
	}

	// probe phase
	txn := e.context.GetTransaction()
	ret := make([]Tuple, 0)
	for rowIdx, rightTuple := range rightTuples {
		if rowIdx%cancelCheckInterval == 0 && txn.IsRolledBack() {
			return nil, ErrTransactionRolledBack
		}
		key := joinKeyOf(rightTuple, rightKeyIdxs)
		for _, leftTuple := range jht[key] {
			joined := make(Tuple, 0, len(leftTuple)+len(rightTuple))
			joined = append(joined, leftTuple...)
			joined = append(joined, rightTuple...)
			ret = append(ret, joined)
		}
	}
	return ret, nil
}
