package rescue

import "sync"

// SessionEndEvaluator decides once, and only once, why a run is over.
type SessionEndEvaluator struct {
	mu        sync.Mutex
	total     int
	outcome   Outcome
	remaining int
	timeKnown bool
	ended     bool
	reason    EndReason
	onEnd     []func(EndReason)
}

// NewSessionEndEvaluator ends on resolution once saved+lost reaches
// totalEncounters. A non-positive total leaves only the clock as an end condition.
func NewSessionEndEvaluator(totalEncounters int) *SessionEndEvaluator {
	return &SessionEndEvaluator{total: totalEncounters}
}

func (e *SessionEndEvaluator) OnEnd(fn func(EndReason)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnd = append(e.onEnd, fn)
}

// Watch subscribes to both sources and returns a func that detaches them.
func (e *SessionEndEvaluator) Watch(outcomes *OutcomeTracker, countdown *Countdown) (stop func()) {
	var stops []func()
	if outcomes != nil {
		stops = append(stops, outcomes.Subscribe(e.ObserveOutcome))
	}
	if countdown != nil {
		stops = append(stops, countdown.Subscribe(e.ObserveTime))
	}
	return func() {
		for _, s := range stops {
			s()
		}
	}
}

func (e *SessionEndEvaluator) ObserveOutcome(o Outcome) {
	e.mu.Lock()
	e.outcome = o
	e.evaluateLocked()
}

func (e *SessionEndEvaluator) ObserveTime(remaining int) {
	e.mu.Lock()
	e.remaining = remaining
	e.timeKnown = true
	e.evaluateLocked()
}

func (e *SessionEndEvaluator) Ended() (EndReason, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reason, e.ended
}

// evaluateLocked releases e.mu.
func (e *SessionEndEvaluator) evaluateLocked() {
	if e.ended {
		e.mu.Unlock()
		return
	}
	switch {
	case e.total > 0 && e.outcome.Resolved() >= e.total:
		e.reason = EndReasonAllResolved
	case e.timeKnown && e.remaining <= 0:
		e.reason = EndReasonTimeUp
	default:
		e.mu.Unlock()
		return
	}
	e.ended = true
	reason := e.reason
	fns := append([]func(EndReason){}, e.onEnd...)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(reason)
	}
}
