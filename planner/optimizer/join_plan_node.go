package optimizer

import (
	"github.com/ryogrid/joinordering/execution/plans"
	"github.com/ryogrid/joinordering/types"
)

/**
 * JoinPlanNode is one candidate plan for a vertex set: the materialized
 * logical plan fragment plus its estimated cost. Singleton sets carry the
 * base scan; larger sets a join of two plans partitioning the set.
 */
type JoinPlanNode struct {
	lqp       plans.Plan
	planCost  types.Cost
	vertexSet VertexSet
}

func NewJoinPlanNode(lqp plans.Plan, planCost types.Cost, vertexSet VertexSet) *JoinPlanNode {
	return &JoinPlanNode{lqp, planCost, vertexSet}
}

func (n *JoinPlanNode) Lqp() plans.Plan { return n.lqp }
func (n *JoinPlanNode) PlanCost() types.Cost { return n.planCost }
func (n *JoinPlanNode) GetVertexSet() VertexSet { return n.vertexSet }
