package rescue

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type RunConfig struct {
	DurationSeconds int
	// TotalEncounters defaults to the number of configured encounters.
	TotalEncounters int
	Encounters      []EncounterConfig
	Pickups         []PickupConfig
	Sound           SoundPlayer
	OnTransition    func(snap EncounterSnapshot, from State)
	NewSessionID    func() string
	Now             func() time.Time
}

type Summary struct {
	SessionID            string    `json:"session_id"`
	Saved                int       `json:"saved"`
	Lost                 int       `json:"lost"`
	TimeRemainingSeconds int       `json:"time_remaining_seconds"`
	GameDurationSeconds  int       `json:"game_duration_seconds"`
	EndedReason          EndReason `json:"ended_reason"`
	Ended                bool      `json:"ended"`
	CreatedAt            time.Time `json:"created_at"`
}

// Run owns everything shared by one play-through and hands references to each
// encounter it builds. Nothing advances after the run has ended.
type Run struct {
	cfg RunConfig

	ledger    *Ledger
	outcomes  *OutcomeTracker
	countdown *Countdown

	mu         sync.Mutex
	sessionID  string
	encounters []*Encounter
	pickups    []*Pickup
	evaluator  *SessionEndEvaluator
	stopWatch  func()
	onEnd      []func(EndReason)
}

func NewRun(cfg RunConfig) *Run {
	if cfg.NewSessionID == nil {
		cfg.NewSessionID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TotalEncounters <= 0 {
		cfg.TotalEncounters = len(cfg.Encounters)
	}
	r := &Run{
		cfg:       cfg,
		ledger:    NewLedger(),
		outcomes:  NewOutcomeTracker(),
		countdown: NewCountdown(CountdownConfig{StartSeconds: cfg.DurationSeconds}),
	}
	r.begin()
	return r
}

func (r *Run) Ledger() *Ledger {
	return r.ledger
}

func (r *Run) Outcomes() *OutcomeTracker {
	return r.outcomes
}

func (r *Run) Countdown() *Countdown {
	return r.countdown
}

func (r *Run) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

func (r *Run) OnEnd(fn func(EndReason)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEnd = append(r.onEnd, fn)
}

func (r *Run) Ended() (EndReason, bool) {
	r.mu.Lock()
	ev := r.evaluator
	r.mu.Unlock()
	return ev.Ended()
}

// Step advances pickups, encounters and then the clock by one frame. When an
// encounter ends the run mid-frame, the remaining encounters stay frozen.
func (r *Run) Step(dt time.Duration, in FrameInput) {
	if _, ended := r.Ended(); ended {
		return
	}
	r.mu.Lock()
	pickups := r.pickups
	encounters := r.encounters
	r.mu.Unlock()

	for _, p := range pickups {
		p.Step(in, r.ledger)
	}
	for _, e := range encounters {
		if _, ended := r.Ended(); ended {
			return
		}
		e.Step(dt, in)
	}
	if _, ended := r.Ended(); ended {
		return
	}
	r.countdown.Tick(dt)
}

func (r *Run) Encounters() []EncounterSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EncounterSnapshot, 0, len(r.encounters))
	for _, e := range r.encounters {
		out = append(out, e.Snapshot())
	}
	return out
}

func (r *Run) Pickups() []PickupSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PickupSnapshot, 0, len(r.pickups))
	for _, p := range r.pickups {
		out = append(out, p.Snapshot())
	}
	return out
}

func (r *Run) Summary() Summary {
	o := r.outcomes.Current()
	reason, ended := r.Ended()
	if !ended {
		reason = EndReasonUnknown
	}
	return Summary{
		SessionID:            r.SessionID(),
		Saved:                o.Saved,
		Lost:                 o.Lost,
		TimeRemainingSeconds: r.countdown.Remaining(),
		GameDurationSeconds:  r.countdown.StartSeconds(),
		EndedReason:          reason,
		Ended:                ended,
		CreatedAt:            r.cfg.Now().UTC(),
	}
}

// Restart discards all progress and starts a fresh session.
func (r *Run) Restart() {
	r.mu.Lock()
	stop := r.stopWatch
	r.mu.Unlock()
	if stop != nil {
		stop()
	}
	r.ledger.Reset()
	r.outcomes.Reset()
	r.countdown.Reset(-1)
	r.countdown.Start()
	r.begin()
}

func (r *Run) begin() {
	encounters := make([]*Encounter, 0, len(r.cfg.Encounters))
	for _, ec := range r.cfg.Encounters {
		opts := []EncounterOption{WithSound(r.cfg.Sound)}
		if r.cfg.OnTransition != nil {
			opts = append(opts, WithTransitionHook(r.cfg.OnTransition))
		}
		encounters = append(encounters, NewEncounter(ec, r.ledger, r.outcomes, opts...))
	}
	pickups := make([]*Pickup, 0, len(r.cfg.Pickups))
	for _, pc := range r.cfg.Pickups {
		pickups = append(pickups, NewPickup(pc))
	}

	ev := NewSessionEndEvaluator(r.cfg.TotalEncounters)
	ev.OnEnd(r.handleEnd)

	r.mu.Lock()
	r.sessionID = r.cfg.NewSessionID()
	r.encounters = encounters
	r.pickups = pickups
	r.evaluator = ev
	r.mu.Unlock()

	stop := ev.Watch(r.outcomes, r.countdown)
	r.mu.Lock()
	r.stopWatch = stop
	r.mu.Unlock()
}

func (r *Run) handleEnd(reason EndReason) {
	r.countdown.Pause()
	r.mu.Lock()
	fns := append([]func(EndReason){}, r.onEnd...)
	r.mu.Unlock()
	for _, fn := range fns {
		fn(reason)
	}
}
