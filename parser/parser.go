package parser

import (
	"github.com/pingcap/parser"
	"github.com/pingcap/parser/ast"
	_ "github.com/pingcap/tidb/types/parser_driver"
)

type QueryInfo struct {
	QueryType_       *QueryType
	SelectFields_    []*string             // SELECT
	JoinTables_      []*string             // SELECT (FROM and JOIN)
	OnExpressions_   []*BinaryOpExpression // SELECT (with JOIN)
	WhereExpression_ *BinaryOpExpression   // SELECT
}

func extractInfoFromAST(rootNode *ast.StmtNode) *QueryInfo {
	v := NewRootSQLVisitor()
	(*rootNode).Accept(v)
	return v.QueryInfo_
}

func parse(sql string) (*ast.StmtNode, error) {
	p := parser.New()

	stmtNodes, _, err := p.Parse(sql, "", "")
	if err != nil {
		return nil, err
	}

	return &stmtNodes[0], nil
}

// ProcessSQLStr parses one SELECT statement joining two or more tables and
// returns the extracted table list and predicate expressions.
func ProcessSQLStr(sql string) (*QueryInfo, error) {
	astNode, err := parse(sql)
	if err != nil {
		return nil, err
	}
	return extractInfoFromAST(astNode), nil
}
