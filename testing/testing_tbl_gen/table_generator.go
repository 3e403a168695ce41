package testing_tbl_gen

import (
	"math/rand"

	"github.com/ryogrid/joinordering/catalog"
)

type ColumnInsertMeta struct {
	/**
	 * Name of the column
	 */
	Name_ string
	/**
	 * Distribution of values
	 */
	Dist_ int32
	/**
	 * max value of the column (exclusive, uniform distribution only)
	 */
	Max_ int32
	/**
	 * Counter to generate serial data
	 */
	Serial_counter_ int32
}

type TableInsertMeta struct {
	/**
	 * Name of the table
	 */
	Name_ string
	/**
	 * Number of rows
	 */
	Num_rows_ uint32
	/**
	 * Columns
	 */
	Col_meta_ []*ColumnInsertMeta
}

const DistSerial int32 = 0
const DistUniform int32 = 1

func MakeValues(col_meta *ColumnInsertMeta, count uint32, rnd *rand.Rand) []int32 {
	var values []int32
	if col_meta.Dist_ == DistSerial {
		for i := 0; i < int(count); i++ {
			values = append(values, col_meta.Serial_counter_)
			col_meta.Serial_counter_ += 1
		}
		return values
	}

	for i := 0; i < int(count); i++ {
		values = append(values, rnd.Int31n(col_meta.Max_))
	}
	return values
}

// GenerateTable builds the rows described by table_meta and registers the
// table in the catalog. The rand source is passed in so that callers can
// pin a seed and get reproducible contents.
func GenerateTable(c *catalog.Catalog, table_meta *TableInsertMeta, rnd *rand.Rand) (*catalog.TableMetadata, error) {
	columns := make([]*catalog.Column, 0, len(table_meta.Col_meta_))
	values := make([][]int32, 0, len(table_meta.Col_meta_))
	for _, col_meta := range table_meta.Col_meta_ {
		columns = append(columns, catalog.NewColumn(col_meta.Name_))
		values = append(values, MakeValues(col_meta, table_meta.Num_rows_, rnd))
	}

	rows := make([][]int32, table_meta.Num_rows_)
	for i := range rows {
		row := make([]int32, len(table_meta.Col_meta_))
		for idx := range table_meta.Col_meta_ {
			row[idx] = values[idx][i]
		}
		rows[i] = row
	}

	return c.CreateTable(table_meta.Name_, catalog.NewSchema(columns), rows)
}
