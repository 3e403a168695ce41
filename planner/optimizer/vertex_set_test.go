package optimizer

import (
	"testing"

	testingpkg "github.com/ryogrid/joinordering/testing/testing_util"
)

func TestVertexSetBasicOps(t *testing.T) {
	vs := NewVertexSet(0, 2, 5)
	testingpkg.Assert(t, vs.Count() == 3, "count should be 3 but was %d", vs.Count())
	testingpkg.Assert(t, vs.Test(0) && vs.Test(2) && vs.Test(5), "members 0,2,5 should be set")
	testingpkg.Assert(t, !vs.Test(1) && !vs.Test(3), "members 1,3 should not be set")
	testingpkg.Assert(t, vs.LowestVertex() == 0, "lowest vertex should be 0")

	other := NewVertexSet(2, 3)
	testingpkg.Equals(t, NewVertexSet(0, 2, 3, 5), vs.Union(other))
	testingpkg.Equals(t, NewVertexSet(2), vs.Intersect(other))
	testingpkg.Equals(t, NewVertexSet(0, 5), vs.Without(other))
	testingpkg.Assert(t, NewVertexSet(2, 5).IsSubsetOf(vs), "{2,5} should be subset of {0,2,5}")
	testingpkg.Assert(t, !other.IsSubsetOf(vs), "{2,3} should not be subset of {0,2,5}")
}

func TestVertexSetFullSet(t *testing.T) {
	testingpkg.Equals(t, NewVertexSet(0, 1, 2), FullVertexSet(3))
	testingpkg.Assert(t, FullVertexSet(0).IsEmpty(), "full set over zero vertices should be empty")
	testingpkg.Assert(t, FullVertexSet(64).Count() == 64, "full set over 64 vertices should hold 64 members")
}

func TestVertexSetVerticesAscending(t *testing.T) {
	vs := NewVertexSet(7, 1, 4)
	testingpkg.Equals(t, []uint32{1, 4, 7}, vs.Vertices())
	testingpkg.Equals(t, "{1,4,7}", vs.String())
}
