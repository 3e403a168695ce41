package types

// Cost is the scalar a cost model assigns to a plan or operator.
// Costs are non-negative; ties are broken by the caller.
type Cost float64

// Cardinality is an estimated or measured output row count.
type Cardinality float64

type TxnID int32 // transaction id type
