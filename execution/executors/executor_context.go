package executors

import (
	"github.com/ryogrid/joinordering/catalog"
	"github.com/ryogrid/joinordering/concurrency"
	"github.com/ryogrid/joinordering/scheduler"
)

/**
 * ExecutorContext stores all the context necessary to run an executor.
 */
type ExecutorContext struct {
	catalog   *catalog.Catalog
	txn       *concurrency.Transaction
	scheduler *scheduler.Scheduler
}

func NewExecutorContext(c *catalog.Catalog, txn *concurrency.Transaction, sched *scheduler.Scheduler) *ExecutorContext {
	return &ExecutorContext{c, txn, sched}
}

func (ctx *ExecutorContext) GetCatalog() *catalog.Catalog { return ctx.catalog }
func (ctx *ExecutorContext) GetTransaction() *concurrency.Transaction { return ctx.txn }
func (ctx *ExecutorContext) GetScheduler() *scheduler.Scheduler { return ctx.scheduler }
