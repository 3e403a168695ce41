package parser

import (
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/opcode"
	"github.com/ryogrid/joinordering/execution/expression"
)

type BinaryOpVisitor struct {
	BinaryOpExpression_ *BinaryOpExpression
}

func (v *BinaryOpVisitor) Enter(in ast.Node) (ast.Node, bool) {
	switch node := in.(type) {
	case *ast.BinaryOperationExpr:
		l_visitor := &BinaryOpVisitor{new(BinaryOpExpression)}
		node.L.Accept(l_visitor)
		r_visitor := &BinaryOpVisitor{new(BinaryOpExpression)}
		node.R.Accept(r_visitor)

		logicType, compType := GetTypesForBOperationExpr(node.Op)
		v.BinaryOpExpression_.LogicalOperationType_ = logicType
		v.BinaryOpExpression_.ComparisonOperationType_ = compType

		if logicType != -1 {
			v.BinaryOpExpression_.Left_ = l_visitor.BinaryOpExpression_
			v.BinaryOpExpression_.Right_ = r_visitor.BinaryOpExpression_
		} else {
			v.BinaryOpExpression_.Left_ = l_visitor.BinaryOpExpression_.Left_
			v.BinaryOpExpression_.Right_ = r_visitor.BinaryOpExpression_.Left_
		}
		return in, true
	case *ast.ColumnNameExpr:
		v.BinaryOpExpression_.LogicalOperationType_ = -1
		v.BinaryOpExpression_.ComparisonOperationType_ = -1
		left_val := node.Name.String()
		v.BinaryOpExpression_.Left_ = &left_val
		return in, true
	default:
	}

	return in, false
}

func (v *BinaryOpVisitor) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}

func GetTypesForBOperationExpr(opcode_ opcode.Op) (expression.LogicalOpType, expression.ComparisonType) {
	switch opcode_ {
	case opcode.EQ:
		return -1, expression.Equal
	case opcode.GT:
		return -1, expression.GreaterThan
	case opcode.GE:
		return -1, expression.GreaterThanOrEqual
	case opcode.LT:
		return -1, expression.LessThan
	case opcode.LE:
		return -1, expression.LessThanOrEqual
	case opcode.NE:
		return -1, expression.NotEqual
	case opcode.LogicAnd:
		return expression.AND, -1
	case opcode.LogicOr:
		return expression.OR, -1
	default:
		panic("unknown opcode")
	}
}
