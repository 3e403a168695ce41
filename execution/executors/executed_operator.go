package executors

import (
	stack "github.com/golang-collections/collections/stack"
	"github.com/ryogrid/joinordering/execution/plans"
	"github.com/ryogrid/joinordering/types"
)

/**
 * ExecutedOperator records what one plan node actually produced. The tree
 * mirrors the executed plan and feeds post-execution cost estimation.
 */
type ExecutedOperator struct {
	plan           plans.Plan
	outputRowCount types.Cardinality
	children       []*ExecutedOperator
}

func NewExecutedOperator(plan plans.Plan, outputRowCount types.Cardinality, children []*ExecutedOperator) *ExecutedOperator {
	return &ExecutedOperator{plan, outputRowCount, children}
}

func (op *ExecutedOperator) GetPlan() plans.Plan { return op.plan }
func (op *ExecutedOperator) OutputRowCount() types.Cardinality { return op.outputRowCount }
func (op *ExecutedOperator) GetChildren() []*ExecutedOperator { return op.children }

func (op *ExecutedOperator) GetChildAt(childIndex uint32) *ExecutedOperator {
	return op.children[childIndex]
}

// FlattenOperators returns every operator of the tree, children before parents.
func FlattenOperators(root *ExecutedOperator) []*ExecutedOperator {
	ordered := make([]*ExecutedOperator, 0)
	visit := stack.New()
	visit.Push(root)
	for visit.Len() > 0 {
		op := visit.Pop().(*ExecutedOperator)
		ordered = append(ordered, op)
		for _, child := range op.GetChildren() {
			visit.Push(child)
		}
	}
	for ii, jj := 0, len(ordered)-1; ii < jj; ii, jj = ii+1, jj-1 {
		ordered[ii], ordered[jj] = ordered[jj], ordered[ii]
	}
	return ordered
}
