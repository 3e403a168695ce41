package plans

import (
	"github.com/ryogrid/joinordering/common"
	"github.com/ryogrid/joinordering/execution/expression"
)

/**
 * HashJoinPlanNode represents an equi join of two children plan nodes.
 * By convention, the left child (index 0) is used to build the hash table,
 * and the right child (index 1) is used in probing the hash table.
 */
type HashJoinPlanNode struct {
	*AbstractPlanNode
	/** The join predicates. Conjunctive, all equality comparisons. */
	onPredicates []*expression.Comparison
}

func NewHashJoinPlanNode(left Plan, right Plan, onPredicates []*expression.Comparison) *HashJoinPlanNode {
	common.SH_Assert(len(onPredicates) > 0, "hash join needs at least one predicate")
	return &HashJoinPlanNode{&AbstractPlanNode{[]Plan{left, right}, 0}, onPredicates}
}

func (p *HashJoinPlanNode) GetType() PlanType { return HashJoin }

func (p *HashJoinPlanNode) OnPredicates() []*expression.Comparison { return p.onPredicates }

/** @return the left plan node of the hash join, by convention this is used to build the table */
func (p *HashJoinPlanNode) GetLeftPlan() Plan {
	common.SH_Assert(len(p.GetChildren()) == 2, "Hash joins should have exactly two children plans.")
	return p.GetChildAt(0)
}

/** @return the right plan node of the hash join */
func (p *HashJoinPlanNode) GetRightPlan() Plan {
	common.SH_Assert(len(p.GetChildren()) == 2, "Hash joins should have exactly two children plans.")
	return p.GetChildAt(1)
}

func (p *HashJoinPlanNode) GetDebugStr() string {
	ret := "HashJoin("
	for idx, pred := range p.onPredicates {
		if idx > 0 {
			ret += " AND "
		}
		ret += pred.String()
	}
	return ret + ")"
}
