package expression

type ComparisonType int32

const (
	Equal ComparisonType = iota
	NotEqual
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
)

type LogicalOpType int32

const (
	AND LogicalOpType = iota
	OR
)

/**
 * ColumnValue is a qualified column reference (table name + column name).
 */
type ColumnValue struct {
	tableName  string
	columnName string
}

func NewColumnValue(tableName string, columnName string) *ColumnValue {
	return &ColumnValue{tableName, columnName}
}

func (cv *ColumnValue) TableName() string { return cv.tableName }
func (cv *ColumnValue) ColumnName() string { return cv.columnName }

func (cv *ColumnValue) String() string { return cv.tableName + "." + cv.columnName }

/**
 * Comparison is one predicate comparing two column values.
 * Join predicates are equality comparisons between columns of two relations.
 */
type Comparison struct {
	left     *ColumnValue
	right    *ColumnValue
	compType ComparisonType
}

func NewComparison(left *ColumnValue, right *ColumnValue, compType ComparisonType) *Comparison {
	return &Comparison{left, right, compType}
}

func (c *Comparison) GetLeft() *ColumnValue { return c.left }
func (c *Comparison) GetRight() *ColumnValue { return c.right }
func (c *Comparison) GetComparisonType() ComparisonType { return c.compType }

func (c *Comparison) String() string {
	op := "="
	switch c.compType {
	case NotEqual:
		op = "!="
	case GreaterThan:
		op = ">"
	case GreaterThanOrEqual:
		op = ">="
	case LessThan:
		op = "<"
	case LessThanOrEqual:
		op = "<="
	}
	return c.left.String() + op + c.right.String()
}
