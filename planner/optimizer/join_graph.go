package optimizer

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	stack "github.com/golang-collections/collections/stack"
	"github.com/ryogrid/joinordering/execution/expression"
	"github.com/ryogrid/joinordering/execution/plans"
)

// JoinVertex is one base relation participating in the join.
type JoinVertex struct {
	plan      *plans.TableScanPlanNode
	tableName string
}

func (v *JoinVertex) GetPlan() *plans.TableScanPlanNode { return v.plan }
func (v *JoinVertex) GetTableName() string { return v.tableName }

// JoinEdge is one join predicate connecting two vertices. Multiple edges
// between the same vertex pair represent conjunctive predicates.
type JoinEdge struct {
	vertexSet VertexSet
	predicate *expression.Comparison
}

func (e *JoinEdge) GetVertexSet() VertexSet { return e.vertexSet }
func (e *JoinEdge) GetPredicate() *expression.Comparison { return e.predicate }

// OutputRelation is an attachment point in the surrounding logical plan
// where the optimized join subtree has to be spliced back in.
type OutputRelation struct {
	output       plans.Plan
	inputSideIdx uint32
}

func (o *OutputRelation) Output() plans.Plan { return o.output }
func (o *OutputRelation) InputSideIdx() uint32 { return o.inputSideIdx }

/**
 * JoinGraph is the immutable view over the relations and predicates of one
 * join computation. Built once from a logical plan and read-only afterwards.
 */
type JoinGraph struct {
	vertices        []*JoinVertex
	edges           []*JoinEdge
	outputRelations []*OutputRelation
	vertexIdxByName map[string]uint32
	// connected components of the whole graph, computed once
	components []VertexSet
}

var ErrNotAJoinPlan = errors.New("plan does not represent a well formed multi way join")

func isJoinNode(plan plans.Plan) bool {
	return plan.GetType() == plans.HashJoin || plan.GetType() == plans.CrossProduct
}

/**
 * JoinGraphFromPlan decomposes the join tree fragment below root into a
 * join graph. Descends through non-join nodes until the topmost join (or
 * single scan) is found; that parent edge becomes the output relation.
 * Fails when the fragment contains anything but joins over base scans.
 */
func JoinGraphFromPlan(root plans.Plan) (*JoinGraph, error) {
	// locate the join fragment and its attachment point
	parent := root
	if len(parent.GetChildren()) == 0 {
		return nil, ErrNotAJoinPlan
	}
	childIdx := uint32(0)
	fragment := parent.GetChildAt(childIdx)
	for !isJoinNode(fragment) && fragment.GetType() != plans.TableScan {
		if len(fragment.GetChildren()) != 1 {
			return nil, ErrNotAJoinPlan
		}
		parent = fragment
		fragment = parent.GetChildAt(childIdx)
	}

	vertices := make([]*JoinVertex, 0)
	edges := make([]*JoinEdge, 0)
	seenTables := mapset.NewSet[string]()
	vertexIdxByName := make(map[string]uint32)

	// collect scan leaves left to right so that vertex indices are stable
	var collect func(plan plans.Plan) error
	collect = func(plan plans.Plan) error {
		switch p := plan.(type) {
		case *plans.TableScanPlanNode:
			if !seenTables.Add(p.GetTableName()) {
				return fmt.Errorf("table %s appears twice in the join", p.GetTableName())
			}
			vertexIdxByName[p.GetTableName()] = uint32(len(vertices))
			vertices = append(vertices, &JoinVertex{p, p.GetTableName()})
			return nil
		case *plans.HashJoinPlanNode, *plans.CrossProductPlanNode:
			if err := collect(plan.GetChildAt(0)); err != nil {
				return err
			}
			return collect(plan.GetChildAt(1))
		default:
			return ErrNotAJoinPlan
		}
	}
	if err := collect(fragment); err != nil {
		return nil, err
	}

	// every join predicate of the fragment becomes an edge
	visit := stack.New()
	visit.Push(fragment)
	for visit.Len() > 0 {
		node := visit.Pop().(plans.Plan)
		if joinNode, ok := node.(*plans.HashJoinPlanNode); ok {
			for _, pred := range joinNode.OnPredicates() {
				leftIdx, lOk := vertexIdxByName[pred.GetLeft().TableName()]
				rightIdx, rOk := vertexIdxByName[pred.GetRight().TableName()]
				if !lOk || !rOk {
					return nil, fmt.Errorf("join predicate %s references a table outside the join", pred.String())
				}
				edges = append(edges, &JoinEdge{NewVertexSet(leftIdx, rightIdx), pred})
			}
		}
		for _, child := range node.GetChildren() {
			visit.Push(child)
		}
	}

	outputRelations := []*OutputRelation{{parent, childIdx}}
	return NewJoinGraph(vertices, edges, outputRelations)
}

func NewJoinGraph(vertices []*JoinVertex, edges []*JoinEdge, outputRelations []*OutputRelation) (*JoinGraph, error) {
	if len(vertices) == 0 {
		return nil, errors.New("join graph needs at least one vertex")
	}
	if len(outputRelations) == 0 {
		return nil, errors.New("join graph needs at least one output relation")
	}
	vertexIdxByName := make(map[string]uint32, len(vertices))
	for idx, vertex := range vertices {
		vertexIdxByName[vertex.GetTableName()] = uint32(idx)
	}
	graph := &JoinGraph{vertices, edges, outputRelations, vertexIdxByName, nil}
	graph.components = graph.connectedComponents()
	return graph, nil
}

func (g *JoinGraph) VertexCount() uint32 { return uint32(len(g.vertices)) }

func (g *JoinGraph) GetVertex(idx uint32) *JoinVertex { return g.vertices[idx] }

func (g *JoinGraph) Edges() []*JoinEdge { return g.edges }

func (g *JoinGraph) OutputRelations() []*OutputRelation { return g.outputRelations }

func (g *JoinGraph) VertexIdxOfTable(tableName string) (uint32, bool) {
	idx, ok := g.vertexIdxByName[tableName]
	return idx, ok
}

// EdgesCrossing returns the edges with one endpoint in each of the two
// disjoint vertex sets.
func (g *JoinGraph) EdgesCrossing(setA VertexSet, setB VertexSet) []*JoinEdge {
	ret := make([]*JoinEdge, 0)
	for _, edge := range g.edges {
		if !edge.GetVertexSet().Intersect(setA).IsEmpty() &&
			!edge.GetVertexSet().Intersect(setB).IsEmpty() {
			ret = append(ret, edge)
		}
	}
	return ret
}

// EdgesWithin returns the edges whose both endpoints lie inside the set.
func (g *JoinGraph) EdgesWithin(set VertexSet) []*JoinEdge {
	ret := make([]*JoinEdge, 0)
	for _, edge := range g.edges {
		if edge.GetVertexSet().IsSubsetOf(set) {
			ret = append(ret, edge)
		}
	}
	return ret
}

// IsConnected reports whether the induced subgraph on the set is join
// reachable as one unit. Singleton sets are connected.
func (g *JoinGraph) IsConnected(set VertexSet) bool {
	if set.IsEmpty() {
		return false
	}
	reached := NewVertexSet(set.LowestVertex())
	for {
		grown := reached
		for _, edge := range g.edges {
			if edge.GetVertexSet().IsSubsetOf(set) && !edge.GetVertexSet().Intersect(grown).IsEmpty() {
				grown = grown.Union(edge.GetVertexSet())
			}
		}
		if grown == reached {
			break
		}
		reached = grown
	}
	return reached == set
}

func (g *JoinGraph) connectedComponents() []VertexSet {
	remaining := FullVertexSet(g.VertexCount())
	components := make([]VertexSet, 0)
	for !remaining.IsEmpty() {
		component := NewVertexSet(remaining.LowestVertex())
		for {
			grown := component
			for _, edge := range g.edges {
				if !edge.GetVertexSet().Intersect(grown).IsEmpty() {
					grown = grown.Union(edge.GetVertexSet())
				}
			}
			if grown == component {
				break
			}
			component = grown
		}
		components = append(components, component)
		remaining = remaining.Without(component)
	}
	return components
}

// IsEnumerable reports whether a vertex set can carry a subplan: inside
// every component of the whole graph the covered part must be connected.
// Vertices of different components may only meet via cross products.
func (g *JoinGraph) IsEnumerable(set VertexSet) bool {
	if set.IsEmpty() {
		return false
	}
	for _, component := range g.components {
		part := set.Intersect(component)
		if !part.IsEmpty() && !g.IsConnected(part) {
			return false
		}
	}
	return true
}
