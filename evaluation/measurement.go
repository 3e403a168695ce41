package evaluation

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ryogrid/joinordering/execution/executors"
	"github.com/ryogrid/joinordering/planner/optimizer"
	"github.com/ryogrid/joinordering/types"
)

type PlanOutcome int32

const (
	PlanNotExecuted PlanOutcome = iota
	PlanExecuted
	PlanSkippedDuplicate
	PlanTimedOut
	PlanFailed
)

func (o PlanOutcome) String() string {
	switch o {
	case PlanExecuted:
		return "executed"
	case PlanSkippedDuplicate:
		return "skipped"
	case PlanTimedOut:
		return "timeout"
	case PlanFailed:
		return "failed"
	default:
		return "not-executed"
	}
}

/**
 * PlanMeasurement captures one candidate execution: wall clock duration,
 * the cost summed from the reference oracle (aim), the cost re-estimated
 * from pre-execution logical features (est) and from post-execution
 * physical features (re-est), plus absolute errors against the aim cost.
 */
type PlanMeasurement struct {
	Outcome           PlanOutcome
	Duration          time.Duration
	EstCost           types.Cost
	ReEstCost         types.Cost
	AimCost           types.Cost
	AbsEstCostError   types.Cost
	AbsReEstCostError types.Cost
}

type QueryIterationMeasurement struct {
	Duration               time.Duration
	CacheHitCount          uint64
	CacheMissCount         uint64
	CacheSize              uint64
	CacheDistinctHitCount  uint64
	CacheDistinctMissCount uint64
}

type QueryMeasurement struct {
	Name             string
	BestPlanDuration time.Duration
	BestPlanHash     uint64
}

// CreatePlanMeasurement walks the executed operators and accumulates the
// three cost figures together with the calibration errors.
func CreatePlanMeasurement(costModel optimizer.AbstractCostModel, operators []*executors.ExecutedOperator) (*PlanMeasurement, error) {
	sample := &PlanMeasurement{Outcome: PlanExecuted}

	for _, op := range operators {
		aimCost := costModel.GetReferenceOperatorCost(op)
		sample.AimCost += aimCost

		estCost, err := costModel.EstimateCost(optimizer.NewCostFeatureLQPNodeProxy(op.GetPlan()))
		if err != nil {
			return nil, err
		}
		sample.EstCost += estCost
		if aimCost != 0 {
			sample.AbsEstCostError += types.Cost(math.Abs(float64(estCost - aimCost)))
		}

		reEstCost, err := costModel.EstimateCost(optimizer.NewCostFeatureOperatorProxy(op))
		if err != nil {
			return nil, err
		}
		sample.ReEstCost += reEstCost
		sample.AbsReEstCostError += types.Cost(math.Abs(float64(reEstCost - aimCost)))
	}
	return sample, nil
}

// WritePlanMeasurementsCSV renders per candidate rows, one per rank.
func WritePlanMeasurementsCSV(w io.Writer, measurements []*PlanMeasurement) error {
	if _, err := fmt.Fprintln(w, "Idx,Outcome,Duration,EstCost,ReEstCost,AimCost,AbsEstCostError,AbsReEstCostError"); err != nil {
		return err
	}
	for idx, m := range measurements {
		if m == nil {
			m = &PlanMeasurement{}
		}
		if _, err := fmt.Fprintf(w, "%d,%s,%d,%f,%f,%f,%f,%f\n", idx, m.Outcome, m.Duration.Microseconds(),
			m.EstCost, m.ReEstCost, m.AimCost, m.AbsEstCostError, m.AbsReEstCostError); err != nil {
			return err
		}
	}
	return nil
}

func WriteQueryIterationMeasurementsCSV(w io.Writer, measurements []*QueryIterationMeasurement) error {
	if _, err := fmt.Fprintln(w, "Idx,Duration,CECacheHitCount,CECacheMissCount,CECacheSize,CECacheDistinctHitCount,CECacheDistinctMissCount"); err != nil {
		return err
	}
	for idx, m := range measurements {
		if m == nil {
			m = &QueryIterationMeasurement{}
		}
		if _, err := fmt.Fprintf(w, "%d,%d,%d,%d,%d,%d,%d\n", idx, m.Duration.Microseconds(),
			m.CacheHitCount, m.CacheMissCount, m.CacheSize,
			m.CacheDistinctHitCount, m.CacheDistinctMissCount); err != nil {
			return err
		}
	}
	return nil
}

func WriteQueryMeasurementsCSV(w io.Writer, measurements []*QueryMeasurement) error {
	if _, err := fmt.Fprintln(w, "Idx,Name,BestPlanDuration"); err != nil {
		return err
	}
	for idx, m := range measurements {
		if _, err := fmt.Fprintf(w, "%d,%s,%d\n", idx, m.Name, m.BestPlanDuration.Microseconds()); err != nil {
			return err
		}
	}
	return nil
}
