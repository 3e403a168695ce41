package parser

import (
	"strings"

	"github.com/ryogrid/joinordering/execution/expression"
)

type QueryType int32

const (
	SELECT QueryType = iota
	NOT_SUPPORTED
)

/**
 * BinaryOpExpression is the parsed form of a WHERE or ON clause: a binary
 * tree whose inner nodes carry a logical operator (AND/OR) and whose
 * leaves carry a comparison between two operands. Operands are *string
 * column references ("table.column") or nested *BinaryOpExpression.
 */
type BinaryOpExpression struct {
	LogicalOperationType_    expression.LogicalOpType
	ComparisonOperationType_ expression.ComparisonType
	Left_                    interface{}
	Right_                   interface{}
}

func (e *BinaryOpExpression) isLeafComparison() bool {
	return e.LogicalOperationType_ == -1 && e.ComparisonOperationType_ != -1
}

func columnValueOf(operand interface{}) *expression.ColumnValue {
	colRef, ok := operand.(*string)
	if !ok {
		return nil
	}
	parts := strings.SplitN(*colRef, ".", 2)
	if len(parts) != 2 {
		return nil
	}
	return expression.NewColumnValue(parts[0], parts[1])
}

// ExtractEqualityPredicates flattens the AND tree of the expression into
// the column equality comparisons usable as join predicates. Leaves that
// are not column-to-column equalities and OR subtrees are skipped.
func ExtractEqualityPredicates(e *BinaryOpExpression) []*expression.Comparison {
	ret := make([]*expression.Comparison, 0)
	if e == nil {
		return ret
	}
	if e.isLeafComparison() {
		if e.ComparisonOperationType_ != expression.Equal {
			return ret
		}
		left := columnValueOf(e.Left_)
		right := columnValueOf(e.Right_)
		if left == nil || right == nil {
			return ret
		}
		return append(ret, expression.NewComparison(left, right, expression.Equal))
	}
	if e.LogicalOperationType_ == expression.AND {
		if child, ok := e.Left_.(*BinaryOpExpression); ok {
			ret = append(ret, ExtractEqualityPredicates(child)...)
		}
		if child, ok := e.Right_.(*BinaryOpExpression); ok {
			ret = append(ret, ExtractEqualityPredicates(child)...)
		}
	}
	return ret
}
