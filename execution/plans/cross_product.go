package plans

import "github.com/ryogrid/joinordering/common"

/**
 * CrossProductPlanNode joins two children without a predicate.
 * Generated only when the join graph offers no edge crossing a split.
 */
type CrossProductPlanNode struct {
	*AbstractPlanNode
}

func NewCrossProductPlanNode(left Plan, right Plan) *CrossProductPlanNode {
	return &CrossProductPlanNode{&AbstractPlanNode{[]Plan{left, right}, 0}}
}

func (p *CrossProductPlanNode) GetType() PlanType { return CrossProduct }

func (p *CrossProductPlanNode) GetLeftPlan() Plan {
	common.SH_Assert(len(p.GetChildren()) == 2, "cross product should have exactly two children plans.")
	return p.GetChildAt(0)
}

func (p *CrossProductPlanNode) GetRightPlan() Plan {
	common.SH_Assert(len(p.GetChildren()) == 2, "cross product should have exactly two children plans.")
	return p.GetChildAt(1)
}

func (p *CrossProductPlanNode) GetDebugStr() string { return "CrossProduct" }
