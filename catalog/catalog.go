package catalog

import (
	"fmt"

	deadlock "github.com/sasha-s/go-deadlock"
)

/**
 * Catalog maps table names to their metadata and statistics.
 * Tables are registered up front; lookups during optimization are read-only.
 */
type Catalog struct {
	tableIds map[string]*TableMetadata
	nextOID  uint32
	mutex    deadlock.Mutex
}

func NewCatalog() *Catalog {
	return &Catalog{tableIds: make(map[string]*TableMetadata), nextOID: 0}
}

func (c *Catalog) CreateTable(tableName string, schema *Schema, rows [][]int32) (*TableMetadata, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.tableIds[tableName]; ok {
		return nil, fmt.Errorf("table %s already exists", tableName)
	}
	c.nextOID += 1
	tm := NewTableMetadata(tableName, schema, rows, c.nextOID)
	c.tableIds[tableName] = tm
	return tm, nil
}

func (c *Catalog) GetTableByName(tableName string) *TableMetadata {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if tm, ok := c.tableIds[tableName]; ok {
		return tm
	}
	return nil
}

func (c *Catalog) GetAllTables() []*TableMetadata {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	ret := make([]*TableMetadata, 0, len(c.tableIds))
	for _, tm := range c.tableIds {
		ret = append(ret, tm)
	}
	return ret
}
