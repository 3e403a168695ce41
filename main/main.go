package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/ryogrid/joinordering/catalog"
	"github.com/ryogrid/joinordering/common"
	"github.com/ryogrid/joinordering/concurrency"
	"github.com/ryogrid/joinordering/evaluation"
	"github.com/ryogrid/joinordering/parser"
	"github.com/ryogrid/joinordering/planner"
	"github.com/ryogrid/joinordering/planner/optimizer"
	"github.com/ryogrid/joinordering/scheduler"
	"github.com/ryogrid/joinordering/testing/testing_tbl_gen"
	flag "github.com/spf13/pflag"
)

var workloadQueries = []struct {
	name string
	sql  string
}{
	{"q_chain_3", "SELECT * FROM orders INNER JOIN customers ON orders.customer_id = customers.customer_id INNER JOIN nations ON customers.nation_id = nations.nation_id;"},
	{"q_chain_4", "SELECT * FROM lineitems INNER JOIN orders ON lineitems.order_id = orders.order_id INNER JOIN customers ON orders.customer_id = customers.customer_id INNER JOIN nations ON customers.nation_id = nations.nation_id;"},
	{"q_star_3", "SELECT * FROM orders INNER JOIN customers ON orders.customer_id = customers.customer_id INNER JOIN lineitems ON lineitems.order_id = orders.order_id;"},
}

func generateWorkloadTables(c *catalog.Catalog, seed int64) error {
	rnd := rand.New(rand.NewSource(seed))
	tableMetas := []*testing_tbl_gen.TableInsertMeta{
		{Name_: "nations", Num_rows_: 25, Col_meta_: []*testing_tbl_gen.ColumnInsertMeta{
			{Name_: "nation_id", Dist_: testing_tbl_gen.DistSerial, Max_: 0, Serial_counter_: 0},
			{Name_: "region_id", Dist_: testing_tbl_gen.DistUniform, Max_: 5, Serial_counter_: 0},
		}},
		{Name_: "customers", Num_rows_: 1000, Col_meta_: []*testing_tbl_gen.ColumnInsertMeta{
			{Name_: "customer_id", Dist_: testing_tbl_gen.DistSerial, Max_: 0, Serial_counter_: 0},
			{Name_: "nation_id", Dist_: testing_tbl_gen.DistUniform, Max_: 25, Serial_counter_: 0},
		}},
		{Name_: "orders", Num_rows_: 3000, Col_meta_: []*testing_tbl_gen.ColumnInsertMeta{
			{Name_: "order_id", Dist_: testing_tbl_gen.DistSerial, Max_: 0, Serial_counter_: 0},
			{Name_: "customer_id", Dist_: testing_tbl_gen.DistUniform, Max_: 1000, Serial_counter_: 0},
		}},
		{Name_: "lineitems", Num_rows_: 8000, Col_meta_: []*testing_tbl_gen.ColumnInsertMeta{
			{Name_: "lineitem_id", Dist_: testing_tbl_gen.DistSerial, Max_: 0, Serial_counter_: 0},
			{Name_: "order_id", Dist_: testing_tbl_gen.DistUniform, Max_: 3000, Serial_counter_: 0},
			{Name_: "quantity", Dist_: testing_tbl_gen.DistUniform, Max_: 50, Serial_counter_: 0},
		}},
	}
	for _, tableMeta := range tableMetas {
		if _, err := testing_tbl_gen.GenerateTable(c, tableMeta, rnd); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

func main() {
	config := common.NewDefaultEvaluatorConfig()

	var cacheMode string
	var costModelName string
	var outDir string
	var workloadSeed int64

	flag.Uint32Var(&config.MaxPlanGenerationCount, "max-plan-generation-count", config.MaxPlanGenerationCount, "max number of plans retained per vertex set, 0 keeps all")
	flag.Uint32Var(&config.MaxPlanExecutionCount, "max-plan-execution-count", config.MaxPlanExecutionCount, "max number of plans executed per query iteration, 0 executes all")
	flag.Int64Var(&config.PlanTimeoutSeconds, "plan-timeout", config.PlanTimeoutSeconds, "per candidate timeout in seconds, 0 disables")
	flag.Int64Var(&config.QueryTimeoutSeconds, "query-timeout", config.QueryTimeoutSeconds, "per query wall clock timeout in seconds, 0 disables")
	flag.BoolVar(&config.DynamicPlanTimeoutEnabled, "dynamic-plan-timeout", config.DynamicPlanTimeoutEnabled, "tighten the plan timeout as better plans are found")
	flag.Int32Var(&config.PlanOrderShuffling, "shuffle-idx", config.PlanOrderShuffling, "number of leading candidates kept in rank order before shuffling, negative disables")
	flag.BoolVar(&config.UniquePlans, "unique-plans", config.UniquePlans, "skip structurally duplicate plans")
	flag.BoolVar(&config.ForcePlanZero, "force-plan-zero", config.ForcePlanZero, "execute the rank 0 candidate even when dedup would skip it")
	flag.BoolVar(&config.IsolateQueries, "isolate-queries", config.IsolateQueries, "clear the cardinality estimation cache between queries")
	flag.Uint32Var(&config.IterationsPerQuery, "iterations-per-query", config.IterationsPerQuery, "number of evaluation iterations per query")
	flag.StringVar(&cacheMode, "cache-mode", "readwrite", "cardinality estimation cache mode: readonly or readwrite")
	flag.StringVar(&costModelName, "cost-model", "linear", "cost model: naive or linear")
	flag.StringVar(&outDir, "out", ".", "directory receiving the measurement CSV files")
	flag.Int64Var(&workloadSeed, "workload-seed", 42, "seed of the generated workload tables")
	flag.Parse()

	switch cacheMode {
	case "readonly":
		config.CacheMode = common.CacheModeReadOnly
	case "readwrite":
		config.CacheMode = common.CacheModeReadAndUpdate
	default:
		fmt.Fprintf(os.Stderr, "unknown cache mode: %s\n", cacheMode)
		os.Exit(1)
	}

	var costModel optimizer.AbstractCostModel
	switch costModelName {
	case "naive":
		costModel = optimizer.NewCostModelNaive()
	case "linear":
		costModel = optimizer.NewCostModelLinear()
	default:
		fmt.Fprintf(os.Stderr, "unknown cost model: %s\n", costModelName)
		os.Exit(1)
	}

	c := catalog.NewCatalog()
	if err := generateWorkloadTables(c, workloadSeed); err != nil {
		fmt.Fprintf(os.Stderr, "workload generation failed: %v\n", err)
		os.Exit(1)
	}

	txnManager := concurrency.NewTransactionManager()
	sched := scheduler.NewScheduler(common.KernelThreadNum)
	evaluator := evaluation.NewPlanEvaluator(config, c, costModel, txnManager, sched)
	simplePlanner := planner.NewSimplePlanner(c)

	for _, query := range workloadQueries {
		queryInfo, err := parser.ProcessSQLStr(query.sql)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse of %s failed: %v\n", query.name, err)
			os.Exit(1)
		}
		lqpRoot, err := simplePlanner.MakePlan(queryInfo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "planning of %s failed: %v\n", query.name, err)
			os.Exit(1)
		}
		if _, err := evaluator.EvaluateQuery(query.name, lqpRoot); err != nil {
			fmt.Fprintf(os.Stderr, "evaluation of %s failed: %v\n", query.name, err)
			os.Exit(1)
		}

		err = writeCSV(filepath.Join(outDir, query.name+".iterations.csv"), func(f *os.File) error {
			return evaluation.WriteQueryIterationMeasurementsCSV(f, evaluator.LastIterationMeasurements())
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "writing iteration measurements of %s failed: %v\n", query.name, err)
			os.Exit(1)
		}
		for iterIdx, planMeasurements := range evaluator.LastPlanMeasurements() {
			fileName := fmt.Sprintf("%s.plans.%d.csv", query.name, iterIdx)
			err = writeCSV(filepath.Join(outDir, fileName), func(f *os.File) error {
				return evaluation.WritePlanMeasurementsCSV(f, planMeasurements)
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "writing plan measurements of %s failed: %v\n", query.name, err)
				os.Exit(1)
			}
		}
	}

	err := writeCSV(filepath.Join(outDir, "queries.csv"), func(f *os.File) error {
		return evaluation.WriteQueryMeasurementsCSV(f, evaluator.QueryMeasurements())
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "writing query measurements failed: %v\n", err)
		os.Exit(1)
	}
}
