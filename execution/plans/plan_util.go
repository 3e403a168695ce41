package plans

import (
	"encoding/binary"
	"fmt"

	stack "github.com/golang-collections/collections/stack"
	"github.com/spaolacci/murmur3"
)

// FlattenPlan returns every node of the plan tree, children before parents.
func FlattenPlan(plan Plan) []Plan {
	ordered := make([]Plan, 0)
	visit := stack.New()
	visit.Push(plan)
	for visit.Len() > 0 {
		node := visit.Pop().(Plan)
		ordered = append(ordered, node)
		for _, child := range node.GetChildren() {
			visit.Push(child)
		}
	}
	// reverse into bottom-up order
	for ii, jj := 0, len(ordered)-1; ii < jj; ii, jj = ii+1, jj-1 {
		ordered[ii], ordered[jj] = ordered[jj], ordered[ii]
	}
	return ordered
}

func nodeParamStr(plan Plan) string {
	switch p := plan.(type) {
	case *TableScanPlanNode:
		return p.GetTableName()
	case *HashJoinPlanNode:
		ret := ""
		for _, pred := range p.OnPredicates() {
			ret += pred.String() + ";"
		}
		return ret
	default:
		return ""
	}
}

/**
 * StructuralHash computes an identity over the plan tree so that two plans
 * joining the same relations in the same shape with the same predicates
 * collide. Nodes are flattened into an arena (node kind + children indices
 * + parameters) and the arena is hashed, so comparing two plans is an
 * integer comparison instead of a tree walk.
 */
func StructuralHash(plan Plan) uint64 {
	ordered := FlattenPlan(plan)
	arenaIdx := make(map[Plan]int, len(ordered))
	for idx, node := range ordered {
		arenaIdx[node] = idx
	}

	hasher := murmur3.New64()
	buf := make([]byte, 4)
	for _, node := range ordered {
		binary.LittleEndian.PutUint32(buf, uint32(node.GetType()))
		hasher.Write(buf)
		for _, child := range node.GetChildren() {
			binary.LittleEndian.PutUint32(buf, uint32(arenaIdx[child]))
			hasher.Write(buf)
		}
		hasher.Write([]byte(nodeParamStr(node)))
	}
	return hasher.Sum64()
}

func PrintPlanTree(plan Plan, indent int) {
	for ii := 0; ii < indent; ii++ {
		fmt.Print(" ")
	}
	fmt.Print(plan.GetDebugStr())
	fmt.Println("")

	for _, child := range plan.GetChildren() {
		PrintPlanTree(child, indent+2)
	}
}
