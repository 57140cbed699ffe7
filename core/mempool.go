package core

import "sync"

// Mempool is an unbounded ordered sequence of pending transactions, guarded
// by its own lock disjoint from State. Submission is a pure append; it does
// no validation (signature, nonce, fee) before admitting a transaction
// (spec §5, §9 Open Question 2 — preserved as specified, not "fixed").
type Mempool struct {
	mu  sync.Mutex
	txs []*Transaction
}

// NewMempool returns an empty mempool.
func NewMempool() *Mempool {
	return &Mempool{}
}

// Submit appends tx to the pool unconditionally.
func (mp *Mempool) Submit(tx *Transaction) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.txs = append(mp.txs, tx)
}

// Drain returns every pending transaction in submission order and empties
// the pool.
func (mp *Mempool) Drain() []*Transaction {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	out := mp.txs
	mp.txs = nil
	return out
}

// Len reports the number of pending transactions.
func (mp *Mempool) Len() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return len(mp.txs)
}
