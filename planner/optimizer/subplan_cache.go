package optimizer

import "math"

// NoEntryLimit keeps every candidate plan of a vertex set.
const NoEntryLimit = uint32(math.MaxUint32)

/**
 * DpSubplanCacheTopK maps a vertex set to the best K plans known for it,
 * sorted ascending by estimated cost. Insertion is a bounded priority
 * insert: a candidate is kept while the entry has room or the candidate
 * beats the current worst kept plan. Candidates whose cost ties a kept
 * plan rank behind it (earliest inserted wins), which keeps enumeration
 * deterministic for a fixed traversal order. A limit of zero retains
 * nothing ("always miss").
 */
type DpSubplanCacheTopK struct {
	maxEntryCount    uint32
	plansByVertexSet map[VertexSet][]*JoinPlanNode
}

func NewDpSubplanCacheTopK(maxEntryCount uint32) *DpSubplanCacheTopK {
	return &DpSubplanCacheTopK{maxEntryCount, make(map[VertexSet][]*JoinPlanNode)}
}

func (c *DpSubplanCacheTopK) MaxEntryCount() uint32 { return c.maxEntryCount }

// GetBestPlans returns the plans kept for the vertex set, best first.
func (c *DpSubplanCacheTopK) GetBestPlans(vertexSet VertexSet) []*JoinPlanNode {
	return c.plansByVertexSet[vertexSet]
}

// GetBestPlan returns the cheapest plan kept for the vertex set, or nil.
func (c *DpSubplanCacheTopK) GetBestPlan(vertexSet VertexSet) *JoinPlanNode {
	entry := c.plansByVertexSet[vertexSet]
	if len(entry) == 0 {
		return nil
	}
	return entry[0]
}

func (c *DpSubplanCacheTopK) InsertPlan(vertexSet VertexSet, plan *JoinPlanNode) {
	if c.maxEntryCount == 0 {
		return
	}
	entry := c.plansByVertexSet[vertexSet]

	if uint32(len(entry)) >= c.maxEntryCount {
		worst := entry[len(entry)-1]
		if plan.PlanCost() >= worst.PlanCost() {
			return
		}
		entry = entry[:len(entry)-1]
	}

	// insert behind every kept plan of equal or lower cost
	insertIdx := len(entry)
	for insertIdx > 0 && entry[insertIdx-1].PlanCost() > plan.PlanCost() {
		insertIdx -= 1
	}
	entry = append(entry, nil)
	copy(entry[insertIdx+1:], entry[insertIdx:])
	entry[insertIdx] = plan
	c.plansByVertexSet[vertexSet] = entry
}

// VertexSets returns every vertex set holding at least one plan.
func (c *DpSubplanCacheTopK) VertexSets() []VertexSet {
	ret := make([]VertexSet, 0, len(c.plansByVertexSet))
	for vertexSet := range c.plansByVertexSet {
		ret = append(ret, vertexSet)
	}
	return ret
}

func (c *DpSubplanCacheTopK) Clear() {
	c.plansByVertexSet = make(map[VertexSet][]*JoinPlanNode)
}
