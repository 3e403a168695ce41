package catalog

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ryogrid/joinordering/types"
)

/**
 * ColumnStatistics keeps the per column figures consumed by the
 * statistics based cardinality estimator.
 */
type ColumnStatistics struct {
	distinctCount int64
	min           int32
	max           int32
}

func (cs *ColumnStatistics) DistinctCount() int64 { return cs.distinctCount }
func (cs *ColumnStatistics) Min() int32 { return cs.min }
func (cs *ColumnStatistics) Max() int32 { return cs.max }

/**
 * TableStatistics holds the row count and per column statistics of one
 * base relation. Built once from the table rows and read-only afterwards.
 */
type TableStatistics struct {
	rowCount  int64
	colStats_ []*ColumnStatistics
}

func NewTableStatistics(rows [][]int32, colNum int) *TableStatistics {
	colStats := make([]*ColumnStatistics, colNum)
	for colIdx := 0; colIdx < colNum; colIdx++ {
		distincts := mapset.NewSet[int32]()
		min := int32(0)
		max := int32(0)
		for rowIdx, row := range rows {
			val := row[colIdx]
			distincts.Add(val)
			if rowIdx == 0 || val < min {
				min = val
			}
			if rowIdx == 0 || val > max {
				max = val
			}
		}
		colStats[colIdx] = &ColumnStatistics{int64(distincts.Cardinality()), min, max}
	}
	return &TableStatistics{int64(len(rows)), colStats}
}

func (ts *TableStatistics) RowCount() types.Cardinality { return types.Cardinality(ts.rowCount) }

func (ts *TableStatistics) GetColumnStatistics(colIdx int) *ColumnStatistics {
	return ts.colStats_[colIdx]
}
