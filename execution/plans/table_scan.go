package plans

type TableScanPlanNode struct {
	*AbstractPlanNode
	tableName string
	tableOID  uint32
}

func NewTableScanPlanNode(tableName string, tableOID uint32) *TableScanPlanNode {
	return &TableScanPlanNode{&AbstractPlanNode{nil, 0}, tableName, tableOID}
}

func (p *TableScanPlanNode) GetType() PlanType { return TableScan }

func (p *TableScanPlanNode) GetTableName() string { return p.tableName }

func (p *TableScanPlanNode) GetTableOID() uint32 { return p.tableOID }

func (p *TableScanPlanNode) GetDebugStr() string { return "TableScan(" + p.tableName + ")" }
