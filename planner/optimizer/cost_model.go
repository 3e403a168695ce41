package optimizer

import (
	"fmt"

	"github.com/ryogrid/joinordering/execution/executors"
	"github.com/ryogrid/joinordering/execution/plans"
	"github.com/ryogrid/joinordering/types"
)

/**
 * CostFeatureProxy exposes the figures a cost model reads, independent of
 * whether they come from a not yet executed logical plan node (estimated
 * cardinalities) or from an executed physical operator (actual counts).
 */
type CostFeatureProxy interface {
	OperatorType() plans.PlanType
	LeftInputRowCount() types.Cardinality
	RightInputRowCount() types.Cardinality
	OutputRowCount() types.Cardinality
}

// CostFeatureLQPNodeProxy reads the estimated cardinalities attached to a
// logical plan node and its children.
type CostFeatureLQPNodeProxy struct {
	node plans.Plan
}

func NewCostFeatureLQPNodeProxy(node plans.Plan) *CostFeatureLQPNodeProxy {
	return &CostFeatureLQPNodeProxy{node}
}

func (p *CostFeatureLQPNodeProxy) OperatorType() plans.PlanType { return p.node.GetType() }

func (p *CostFeatureLQPNodeProxy) LeftInputRowCount() types.Cardinality {
	if len(p.node.GetChildren()) < 1 {
		return 0
	}
	return p.node.GetChildAt(0).GetEstimatedCardinality()
}

func (p *CostFeatureLQPNodeProxy) RightInputRowCount() types.Cardinality {
	if len(p.node.GetChildren()) < 2 {
		return 0
	}
	return p.node.GetChildAt(1).GetEstimatedCardinality()
}

func (p *CostFeatureLQPNodeProxy) OutputRowCount() types.Cardinality {
	return p.node.GetEstimatedCardinality()
}

// CostFeatureOperatorProxy reads the actual row counts recorded while the
// physical operator executed.
type CostFeatureOperatorProxy struct {
	op *executors.ExecutedOperator
}

func NewCostFeatureOperatorProxy(op *executors.ExecutedOperator) *CostFeatureOperatorProxy {
	return &CostFeatureOperatorProxy{op}
}

func (p *CostFeatureOperatorProxy) OperatorType() plans.PlanType { return p.op.GetPlan().GetType() }

func (p *CostFeatureOperatorProxy) LeftInputRowCount() types.Cardinality {
	if len(p.op.GetChildren()) < 1 {
		return 0
	}
	return p.op.GetChildAt(0).OutputRowCount()
}

func (p *CostFeatureOperatorProxy) RightInputRowCount() types.Cardinality {
	if len(p.op.GetChildren()) < 2 {
		return 0
	}
	return p.op.GetChildAt(1).OutputRowCount()
}

func (p *CostFeatureOperatorProxy) OutputRowCount() types.Cardinality {
	return p.op.OutputRowCount()
}

/**
 * AbstractCostModel turns operator features into a scalar cost. Must be
 * stateless and side effect free; never mutates what it inspects.
 */
type AbstractCostModel interface {
	Name() string
	EstimateCost(features CostFeatureProxy) (types.Cost, error)
	// reference cost over actual counts, used only for calibration
	GetReferenceOperatorCost(op *executors.ExecutedOperator) types.Cost
}

func validateFeatures(features CostFeatureProxy) error {
	if features.LeftInputRowCount() < 0 || features.RightInputRowCount() < 0 || features.OutputRowCount() < 0 {
		return fmt.Errorf("negative row count in cost features")
	}
	return nil
}

func referenceCostOfCounts(opType plans.PlanType, left types.Cardinality, right types.Cardinality, out types.Cardinality) types.Cost {
	switch opType {
	case plans.TableScan:
		return types.Cost(out)
	case plans.HashJoin:
		return types.Cost(left) + types.Cost(right) + types.Cost(out)
	case plans.CrossProduct:
		return types.Cost(left) * types.Cost(right)
	default:
		return 0
	}
}

/**
 * CostModelNaive prices operators from row counts alone: a scan costs its
 * output, a hash join build plus probe plus output, a cross product the
 * product of its inputs.
 */
type CostModelNaive struct{}

func NewCostModelNaive() *CostModelNaive { return &CostModelNaive{} }

func (m *CostModelNaive) Name() string { return "naive" }

func (m *CostModelNaive) EstimateCost(features CostFeatureProxy) (types.Cost, error) {
	if err := validateFeatures(features); err != nil {
		return 0, err
	}
	return referenceCostOfCounts(features.OperatorType(),
		features.LeftInputRowCount(), features.RightInputRowCount(), features.OutputRowCount()), nil
}

func (m *CostModelNaive) GetReferenceOperatorCost(op *executors.ExecutedOperator) types.Cost {
	proxy := NewCostFeatureOperatorProxy(op)
	return referenceCostOfCounts(proxy.OperatorType(),
		proxy.LeftInputRowCount(), proxy.RightInputRowCount(), proxy.OutputRowCount())
}

// linearCoefficients weight the three row counts for one operator kind.
type linearCoefficients struct {
	left      float64
	right     float64
	out       float64
	intercept float64
}

/**
 * CostModelLinear prices operators with per operator kind coefficients
 * obtained from offline calibration runs.
 */
type CostModelLinear struct {
	scanCoefficients  linearCoefficients
	joinCoefficients  linearCoefficients
	crossCoefficients linearCoefficients
}

func NewCostModelLinear() *CostModelLinear {
	return &CostModelLinear{
		scanCoefficients:  linearCoefficients{0, 0, 0.8, 10},
		joinCoefficients:  linearCoefficients{1.2, 0.9, 0.6, 25},
		crossCoefficients: linearCoefficients{1.5, 1.5, 1.0, 25},
	}
}

func (m *CostModelLinear) Name() string { return "linear" }

func (m *CostModelLinear) coefficientsFor(opType plans.PlanType) linearCoefficients {
	switch opType {
	case plans.HashJoin:
		return m.joinCoefficients
	case plans.CrossProduct:
		return m.crossCoefficients
	default:
		return m.scanCoefficients
	}
}

func (m *CostModelLinear) EstimateCost(features CostFeatureProxy) (types.Cost, error) {
	if err := validateFeatures(features); err != nil {
		return 0, err
	}
	coeffs := m.coefficientsFor(features.OperatorType())
	cost := coeffs.left*float64(features.LeftInputRowCount()) +
		coeffs.right*float64(features.RightInputRowCount()) +
		coeffs.out*float64(features.OutputRowCount()) +
		coeffs.intercept
	return types.Cost(cost), nil
}

func (m *CostModelLinear) GetReferenceOperatorCost(op *executors.ExecutedOperator) types.Cost {
	proxy := NewCostFeatureOperatorProxy(op)
	return referenceCostOfCounts(proxy.OperatorType(),
		proxy.LeftInputRowCount(), proxy.RightInputRowCount(), proxy.OutputRowCount())
}
