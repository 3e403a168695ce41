package plans

/**
 * RootPlanNode sits above the whole logical plan so that an optimized join
 * subtree can be spliced back in without special casing the topmost node.
 */
type RootPlanNode struct {
	*AbstractPlanNode
}

func NewRootPlanNode(child Plan) *RootPlanNode {
	return &RootPlanNode{&AbstractPlanNode{[]Plan{child}, 0}}
}

func (p *RootPlanNode) GetType() PlanType { return Root }

func (p *RootPlanNode) GetDebugStr() string { return "Root" }
