package sequence_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/sequence"
	"github.com/calyx-network/calyx-client/util"
	"github.com/sasha-s/go-deadlock"
)

type fakeSource struct {
	mut   util.Mutex
	seqs  map[address.Address]uint64
	calls int
	err   error
	delay time.Duration
}

func (f *fakeSource) AccountSequence(_ context.Context, addr address.Address) (uint64, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mut.Lock()
	defer f.mut.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.seqs[addr], nil
}

func addr(b byte) address.Address {
	var a address.Address
	a[0] = b
	return a
}

func TestStrictlyIncreasing(t *testing.T) {
	src := &fakeSource{seqs: map[address.Address]uint64{addr(1): 5}}
	tr := sequence.NewTracker(src)

	for want := uint64(5); want < 15; want++ {
		got, err := tr.Next(context.Background(), addr(1))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("Next = %d, want %d", got, want)
		}
	}
	if src.calls != 1 {
		t.Errorf("chain queried %d times, want 1", src.calls)
	}
}

func TestConcurrentAllocationIsUnique(t *testing.T) {
	src := &fakeSource{seqs: map[address.Address]uint64{}}
	tr := sequence.NewTracker(src)

	const n = 64
	results := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := tr.Next(context.Background(), addr(2))
			if err != nil {
				t.Error(err)
				return
			}
			results <- seq
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[uint64]bool)
	for seq := range results {
		if seen[seq] {
			t.Fatalf("sequence %d allocated twice", seq)
		}
		seen[seq] = true
	}
	if len(seen) != n {
		t.Fatalf("allocated %d sequences, want %d", len(seen), n)
	}
}

func TestInvalidateResyncsFromChain(t *testing.T) {
	src := &fakeSource{seqs: map[address.Address]uint64{addr(3): 10}}
	tr := sequence.NewTracker(src)

	if seq, _ := tr.Next(context.Background(), addr(3)); seq != 10 {
		t.Fatalf("first Next = %d, want 10", seq)
	}
	if seq, _ := tr.Next(context.Background(), addr(3)); seq != 11 {
		t.Fatalf("second Next = %d, want 11", seq)
	}

	// the chain moved on while we were allocating optimistically
	src.mut.Lock()
	src.seqs[addr(3)] = 42
	src.mut.Unlock()

	tr.Invalidate(addr(3))
	if seq, _ := tr.Next(context.Background(), addr(3)); seq != 42 {
		t.Fatalf("Next after Invalidate = %d, want 42", seq)
	}
	if src.calls != 2 {
		t.Errorf("chain queried %d times, want 2", src.calls)
	}
}

func TestAccountsAreIndependent(t *testing.T) {
	src := &fakeSource{seqs: map[address.Address]uint64{addr(4): 100, addr(5): 200}}
	tr := sequence.NewTracker(src)

	if seq, _ := tr.Next(context.Background(), addr(4)); seq != 100 {
		t.Fatalf("addr(4) Next = %d, want 100", seq)
	}
	if seq, _ := tr.Next(context.Background(), addr(5)); seq != 200 {
		t.Fatalf("addr(5) Next = %d, want 200", seq)
	}

	tr.Invalidate(addr(4))
	if seq, _ := tr.Next(context.Background(), addr(5)); seq != 201 {
		t.Fatalf("addr(5) unaffected by addr(4) invalidation, Next = %d, want 201", seq)
	}
}

// A slow node makes the baseline fetch block, and a second caller for the
// same account waits on it for the whole fetch. That wait must not trip the
// deadlock watchdog: its default handler terminates the process.
func TestSlowBaselineFetchIsNotReportedAsDeadlock(t *testing.T) {
	prevTimeout := deadlock.Opts.DeadlockTimeout
	prevHook := deadlock.Opts.OnPotentialDeadlock
	var tripped atomic.Bool
	deadlock.Opts.DeadlockTimeout = 50 * time.Millisecond
	deadlock.Opts.OnPotentialDeadlock = func() { tripped.Store(true) }
	t.Cleanup(func() {
		deadlock.Opts.DeadlockTimeout = prevTimeout
		deadlock.Opts.OnPotentialDeadlock = prevHook
	})

	src := &fakeSource{
		seqs:  map[address.Address]uint64{addr(6): 7},
		delay: 300 * time.Millisecond,
	}
	tr := sequence.NewTracker(src)

	results := make(chan uint64, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := tr.Next(context.Background(), addr(6))
			if err != nil {
				t.Error(err)
				return
			}
			results <- seq
		}()
	}
	wg.Wait()
	close(results)

	if tripped.Load() {
		t.Fatal("deadlock watchdog tripped on a slow baseline fetch")
	}
	seen := make(map[uint64]bool)
	for seq := range results {
		if seen[seq] {
			t.Fatalf("sequence %d allocated twice", seq)
		}
		seen[seq] = true
	}
	for _, want := range []uint64{7, 8} {
		if !seen[want] {
			t.Fatalf("sequence %d not allocated, got %v", want, seen)
		}
	}
}
