package optimizer

import (
	"math/bits"
	"strconv"

	"github.com/ryogrid/joinordering/common"
)

/**
 * VertexSet is a bitmap over the vertex indices of one join graph. It is
 * the canonical key of every subset indexed structure (subplan cache,
 * cardinality estimation cache).
 */
type VertexSet uint64

func NewVertexSet(indices ...uint32) VertexSet {
	ret := VertexSet(0)
	for _, idx := range indices {
		ret = ret.WithVertex(idx)
	}
	return ret
}

// FullVertexSet returns the set holding all n vertices of a graph.
func FullVertexSet(n uint32) VertexSet {
	common.SH_Assert(n <= common.MaxJoinVertexNum, "too many join vertices for a 64bit vertex set")
	if n == common.MaxJoinVertexNum {
		return VertexSet(^uint64(0))
	}
	return VertexSet((uint64(1) << n) - 1)
}

func (vs VertexSet) WithVertex(idx uint32) VertexSet { return vs | VertexSet(uint64(1)<<idx) }

func (vs VertexSet) Test(idx uint32) bool { return vs&VertexSet(uint64(1)<<idx) != 0 }

func (vs VertexSet) Count() uint32 { return uint32(bits.OnesCount64(uint64(vs))) }

func (vs VertexSet) IsEmpty() bool { return vs == 0 }

func (vs VertexSet) Union(other VertexSet) VertexSet { return vs | other }

func (vs VertexSet) Intersect(other VertexSet) VertexSet { return vs & other }

func (vs VertexSet) Without(other VertexSet) VertexSet { return vs &^ other }

func (vs VertexSet) IsSubsetOf(other VertexSet) bool { return vs&^other == 0 }

// LowestVertex returns the smallest vertex index of a non-empty set.
func (vs VertexSet) LowestVertex() uint32 {
	common.SH_Assert(!vs.IsEmpty(), "LowestVertex called on empty vertex set")
	return uint32(bits.TrailingZeros64(uint64(vs)))
}

// Vertices returns the member indices in ascending order.
func (vs VertexSet) Vertices() []uint32 {
	ret := make([]uint32, 0, vs.Count())
	rest := uint64(vs)
	for rest != 0 {
		idx := uint32(bits.TrailingZeros64(rest))
		ret = append(ret, idx)
		rest &= rest - 1
	}
	return ret
}

func (vs VertexSet) String() string {
	ret := "{"
	for ii, idx := range vs.Vertices() {
		if ii > 0 {
			ret += ","
		}
		ret += strconv.Itoa(int(idx))
	}
	return ret + "}"
}
