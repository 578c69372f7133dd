package rescue

import "sync"

// ResourcePool is the part of the ledger an encounter needs.
type ResourcePool interface {
	Count(kind ResourceKind) int
	TrySpend(kind ResourceKind, n int) bool
}

type LedgerCounts map[ResourceKind]int

type Ledger struct {
	mu        sync.Mutex
	counts    map[ResourceKind]int
	observers observerSet[LedgerCounts]
}

func NewLedger() *Ledger {
	return &Ledger{counts: map[ResourceKind]int{}}
}

// Add changes the count by n, clamping at zero. It always notifies;
// ResourceNone is never stored.
func (l *Ledger) Add(kind ResourceKind, n int) {
	l.mu.Lock()
	if kind != ResourceNone {
		l.counts[kind] = max(0, l.counts[kind]+n)
	}
	snap, fns := l.snapshotLocked(), l.observers.snapshot()
	l.mu.Unlock()
	notifyAll(fns, snap)
}

// TrySpend decrements by n only when count >= n. A false return leaves the
// ledger untouched and does not notify; spending zero succeeds without a
// change. Negative n is refused.
func (l *Ledger) TrySpend(kind ResourceKind, n int) bool {
	if n < 0 {
		return false
	}
	l.mu.Lock()
	if l.counts[kind] < n {
		l.mu.Unlock()
		return false
	}
	if n == 0 {
		l.mu.Unlock()
		return true
	}
	l.counts[kind] -= n
	snap, fns := l.snapshotLocked(), l.observers.snapshot()
	l.mu.Unlock()
	notifyAll(fns, snap)
	return true
}

func (l *Ledger) Count(kind ResourceKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[kind]
}

func (l *Ledger) Snapshot() LedgerCounts {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Ledger) Reset() {
	l.mu.Lock()
	l.counts = map[ResourceKind]int{}
	snap, fns := l.snapshotLocked(), l.observers.snapshot()
	l.mu.Unlock()
	notifyAll(fns, snap)
}

// Subscribe replays the current counts to fn before returning.
func (l *Ledger) Subscribe(fn func(LedgerCounts)) (unsubscribe func()) {
	l.mu.Lock()
	id := l.observers.add(fn)
	snap := l.snapshotLocked()
	l.mu.Unlock()
	fn(snap)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.observers.remove(id)
	}
}

func (l *Ledger) snapshotLocked() LedgerCounts {
	out := LedgerCounts{
		ResourceSugar:  l.counts[ResourceSugar],
		ResourceBottle: l.counts[ResourceBottle],
	}
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}
