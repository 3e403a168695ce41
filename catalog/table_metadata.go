package catalog

import "github.com/ryogrid/joinordering/common"

type Column struct {
	columnName string
}

func NewColumn(name string) *Column { return &Column{name} }
func (c *Column) ColumnName() string { return c.columnName }

type Schema struct {
	columns []*Column
}

func NewSchema(columns []*Column) *Schema { return &Schema{columns} }

func (s *Schema) GetColumns() []*Column { return s.columns }

func (s *Schema) GetColumnCount() int { return len(s.columns) }

// GetColIndex returns -1 when the column is not part of the schema.
func (s *Schema) GetColIndex(columnName string) int {
	for idx, col := range s.columns {
		if col.ColumnName() == columnName {
			return idx
		}
	}
	return -1
}

/**
 * TableMetadata wraps one in-memory base relation: name, schema, rows
 * and the statistics snapshot derived from the rows.
 */
type TableMetadata struct {
	tableName string
	schema    *Schema
	rows      [][]int32
	stats     *TableStatistics
	oid       uint32
}

func NewTableMetadata(tableName string, schema *Schema, rows [][]int32, oid uint32) *TableMetadata {
	for _, row := range rows {
		common.SH_Assert(len(row) == schema.GetColumnCount(), "row width does not match schema")
	}
	return &TableMetadata{tableName, schema, rows, NewTableStatistics(rows, schema.GetColumnCount()), oid}
}

func (tm *TableMetadata) GetTableName() string { return tm.tableName }
func (tm *TableMetadata) Schema() *Schema { return tm.schema }
func (tm *TableMetadata) Rows() [][]int32 { return tm.rows }
func (tm *TableMetadata) GetStatistics() *TableStatistics { return tm.stats }
func (tm *TableMetadata) OID() uint32 { return tm.oid }
