package plans

import "github.com/ryogrid/joinordering/types"

type PlanType int

const (
	TableScan PlanType = iota
	HashJoin
	CrossProduct
	Root
)

type Plan interface {
	GetType() PlanType
	GetChildAt(childIndex uint32) Plan
	GetChildren() []Plan
	SetChildAt(childIndex uint32, child Plan)
	// estimated output row count attached when the node was constructed
	GetEstimatedCardinality() types.Cardinality
	SetEstimatedCardinality(card types.Cardinality)
	GetDebugStr() string
}

type AbstractPlanNode struct {
	children             []Plan
	estimatedCardinality types.Cardinality
}

func (p *AbstractPlanNode) GetChildAt(childIndex uint32) Plan {
	return p.children[childIndex]
}

func (p *AbstractPlanNode) GetChildren() []Plan {
	return p.children
}

func (p *AbstractPlanNode) SetChildAt(childIndex uint32, child Plan) {
	p.children[childIndex] = child
}

func (p *AbstractPlanNode) GetEstimatedCardinality() types.Cardinality {
	return p.estimatedCardinality
}

func (p *AbstractPlanNode) SetEstimatedCardinality(card types.Cardinality) {
	p.estimatedCardinality = card
}
