package rescue

import "sync"

// OutcomeSink receives the single result of each encounter.
type OutcomeSink interface {
	AddSaved()
	AddLost()
}

type Outcome struct {
	Saved int `json:"saved"`
	Lost  int `json:"lost"`
}

func (o Outcome) Resolved() int {
	return o.Saved + o.Lost
}

type OutcomeTracker struct {
	mu        sync.Mutex
	outcome   Outcome
	observers observerSet[Outcome]
}

func NewOutcomeTracker() *OutcomeTracker {
	return &OutcomeTracker{}
}

func (t *OutcomeTracker) AddSaved() {
	t.update(func(o *Outcome) { o.Saved++ })
}

func (t *OutcomeTracker) AddLost() {
	t.update(func(o *Outcome) { o.Lost++ })
}

func (t *OutcomeTracker) Reset() {
	t.update(func(o *Outcome) { *o = Outcome{} })
}

func (t *OutcomeTracker) Current() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome
}

// Subscribe replays the current counts to fn before returning.
func (t *OutcomeTracker) Subscribe(fn func(Outcome)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.observers.add(fn)
	cur := t.outcome
	t.mu.Unlock()
	fn(cur)
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.observers.remove(id)
	}
}

func (t *OutcomeTracker) update(mutate func(*Outcome)) {
	t.mu.Lock()
	mutate(&t.outcome)
	cur, fns := t.outcome, t.observers.snapshot()
	t.mu.Unlock()
	notifyAll(fns, cur)
}
