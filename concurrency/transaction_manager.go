package concurrency

import (
	"github.com/ryogrid/joinordering/types"
	deadlock "github.com/sasha-s/go-deadlock"
)

/**
 * TransactionManager keeps track of all the transactions running in the system.
 */
type TransactionManager struct {
	nextTxnId types.TxnID
	txnMap    map[types.TxnID]*Transaction
	mutex     deadlock.Mutex
}

func NewTransactionManager() *TransactionManager {
	return &TransactionManager{0, make(map[types.TxnID]*Transaction), deadlock.Mutex{}}
}

func (tm *TransactionManager) Begin() *Transaction {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	tm.nextTxnId += 1
	txn := NewTransaction(tm.nextTxnId)
	tm.txnMap[txn.GetTransactionId()] = txn
	return txn
}

func (tm *TransactionManager) GetTransaction(txnId types.TxnID) *Transaction {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	return tm.txnMap[txnId]
}

func (tm *TransactionManager) ActiveTransactionCount() int {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	cnt := 0
	for _, txn := range tm.txnMap {
		if txn.GetPhase() == Active {
			cnt += 1
		}
	}
	return cnt
}
