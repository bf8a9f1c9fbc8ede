// Package sequence allocates transaction sequence numbers per account. The
// tracker keeps an optimistic local counter over a chain-reported baseline so
// several transactions can be prepared before the first one confirms. The
// cache is advisory: the chain's sequence is the source of truth, and a
// mismatch reported at broadcast invalidates the local state.
package sequence

import (
	"context"
	"sync"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/util"
)

// Source reads the authoritative next sequence of an account from the chain,
// including transactions still waiting in the mempool.
type Source interface {
	AccountSequence(ctx context.Context, addr address.Address) (uint64, error)
}

type Tracker struct {
	source Source

	mut      util.Mutex
	accounts map[address.Address]*account
}

// account.mut is held across the baseline fetch, which can block for the
// full RPC timeout. It must stay a plain sync.Mutex: the deadlock watchdog
// on util.Mutex would treat that wait as a stuck lock and abort the process.
type account struct {
	mut    sync.Mutex
	synced bool
	next   uint64
}

func NewTracker(source Source) *Tracker {
	return &Tracker{
		source:   source,
		accounts: make(map[address.Address]*account),
	}
}

// Next returns the sequence to use for addr's next transaction and advances
// the local counter. The first call for an account (and the first call after
// Invalidate) adopts the chain-reported sequence as the baseline. Allocation
// is serialized per account, so concurrent callers never receive the same
// sequence twice.
func (t *Tracker) Next(ctx context.Context, addr address.Address) (uint64, error) {
	acc := t.account(addr)

	acc.mut.Lock()
	defer acc.mut.Unlock()

	if !acc.synced {
		seq, err := t.source.AccountSequence(ctx, addr)
		if err != nil {
			return 0, err
		}
		acc.next = seq
		acc.synced = true
	}

	seq := acc.next
	acc.next++
	return seq, nil
}

// Invalidate drops the cached baseline for addr. The next allocation
// re-queries the chain.
func (t *Tracker) Invalidate(addr address.Address) {
	acc := t.account(addr)

	acc.mut.Lock()
	acc.synced = false
	acc.mut.Unlock()
}

func (t *Tracker) account(addr address.Address) *account {
	t.mut.Lock()
	defer t.mut.Unlock()

	acc := t.accounts[addr]
	if acc == nil {
		acc = &account{}
		t.accounts[addr] = acc
	}
	return acc
}
