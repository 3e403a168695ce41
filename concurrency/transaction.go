package concurrency

import (
	"github.com/ryogrid/joinordering/common"
	"github.com/ryogrid/joinordering/types"
	deadlock "github.com/sasha-s/go-deadlock"
)

type TransactionPhase int32

const (
	Active TransactionPhase = iota
	Committed
	RolledBack
)

// PhaseSwitch selects how a commit or rollback behaves when the
// transaction already reached a terminal phase. Strict panics, Lenient
// reports false and leaves the terminal phase untouched.
type PhaseSwitch int32

const (
	Strict PhaseSwitch = iota
	Lenient
)

/**
 * Transaction is the per candidate execution context. A watchdog may try
 * to roll it back while the evaluator tries to commit it: the phase change
 * is guarded so that exactly one of the two wins and the loser observes
 * the outcome through the boolean result.
 */
type Transaction struct {
	txnId types.TxnID
	phase TransactionPhase
	mutex deadlock.Mutex
}

func NewTransaction(txnId types.TxnID) *Transaction {
	return &Transaction{txnId: txnId, phase: Active}
}

func (txn *Transaction) GetTransactionId() types.TxnID { return txn.txnId }

func (txn *Transaction) GetPhase() TransactionPhase {
	txn.mutex.Lock()
	defer txn.mutex.Unlock()
	return txn.phase
}

// IsRolledBack is polled by executors for cooperative cancellation.
func (txn *Transaction) IsRolledBack() bool {
	txn.mutex.Lock()
	defer txn.mutex.Unlock()
	return txn.phase == RolledBack
}

// Commit moves the transaction to Committed and reports whether this call
// won the phase transition.
func (txn *Transaction) Commit(phaseSwitch PhaseSwitch) bool {
	txn.mutex.Lock()
	defer txn.mutex.Unlock()
	if txn.phase != Active {
		common.SH_Assert(phaseSwitch == Lenient, "Commit called on a finished transaction with Strict phase switch")
		return false
	}
	txn.phase = Committed
	return true
}

// Rollback moves the transaction to RolledBack and reports whether this
// call won the phase transition. With Lenient it no-ops silently when the
// transaction already committed or rolled back concurrently.
func (txn *Transaction) Rollback(phaseSwitch PhaseSwitch) bool {
	txn.mutex.Lock()
	defer txn.mutex.Unlock()
	if txn.phase != Active {
		common.SH_Assert(phaseSwitch == Lenient, "Rollback called on a finished transaction with Strict phase switch")
		return false
	}
	txn.phase = RolledBack
	return true
}
