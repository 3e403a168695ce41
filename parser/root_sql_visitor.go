package parser

import (
	"github.com/pingcap/parser/ast"
)

type RootSQLVisitor struct {
	QueryInfo_ *QueryInfo
}

func NewRootSQLVisitor() *RootSQLVisitor {
	ret := new(RootSQLVisitor)
	qinfo := new(QueryInfo)
	qinfo.QueryType_ = new(QueryType)
	qinfo.SelectFields_ = make([]*string, 0)
	qinfo.JoinTables_ = make([]*string, 0)
	qinfo.OnExpressions_ = make([]*BinaryOpExpression, 0)
	ret.QueryInfo_ = qinfo

	return ret
}

func (v *RootSQLVisitor) Enter(in ast.Node) (ast.Node, bool) {
	switch node := in.(type) {
	case *ast.SelectStmt:
		*v.QueryInfo_.QueryType_ = SELECT
	case *ast.FieldList:
	case *ast.SelectField:
		if node.WildCard != nil {
			wildcard := "*"
			v.QueryInfo_.SelectFields_ = append(v.QueryInfo_.SelectFields_, &wildcard)
			return in, true
		}
		if colExpr, ok := node.Expr.(*ast.ColumnNameExpr); ok {
			cname := colExpr.Name.String()
			v.QueryInfo_.SelectFields_ = append(v.QueryInfo_.SelectFields_, &cname)
		}
		return in, true
	case *ast.TableRefsClause:
	case *ast.Join:
		jv := new(JoinVisitor)
		jv.QueryInfo_ = v.QueryInfo_
		node.Accept(jv)
		return in, true
	case *ast.BinaryOperationExpr:
		// the WHERE clause; ON clauses are handled by the JoinVisitor
		bv := &BinaryOpVisitor{new(BinaryOpExpression)}
		node.Accept(bv)
		v.QueryInfo_.WhereExpression_ = bv.BinaryOpExpression_
		return in, true
	default:
		*v.QueryInfo_.QueryType_ = NOT_SUPPORTED
		return in, true
	}
	return in, false
}

func (v *RootSQLVisitor) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}
