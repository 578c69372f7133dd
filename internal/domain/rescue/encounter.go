package rescue

import "time"

type State string

const (
	StateIdle    State = "idle"
	StateDizzy   State = "dizzy"
	StateFalling State = "falling"
	StateLying   State = "lying"
	StateRevived State = "revived"
	StateDead    State = "dead"
)

func (s State) Terminal() bool {
	return s == StateRevived || s == StateDead
}

const (
	DefaultProximityThreshold = 3.0
	DefaultHoldRequired       = 3 * time.Second
	DefaultReviveWindow       = 8 * time.Second
)

type EncounterConfig struct {
	ID                 string
	Position           Vec3
	ReviveKey          Key
	RequiredResource   ResourceKind
	ProximityThreshold float64
	HoldRequired       time.Duration
	ReviveWindow       time.Duration
	DizzyDuration      time.Duration
	FallDuration       time.Duration
	FallSound          string
}

func (c EncounterConfig) withDefaults() EncounterConfig {
	if c.ProximityThreshold <= 0 {
		c.ProximityThreshold = DefaultProximityThreshold
	}
	if c.HoldRequired <= 0 {
		c.HoldRequired = DefaultHoldRequired
	}
	if c.ReviveWindow <= 0 {
		c.ReviveWindow = DefaultReviveWindow
	}
	if c.FallSound == "" {
		c.FallSound = "fall"
	}
	return c
}

type EncounterSnapshot struct {
	ID                 string        `json:"id"`
	State              State         `json:"state"`
	Position           Vec3          `json:"position"`
	ReviveKey          Key           `json:"revive_key"`
	RequiredResource   ResourceKind  `json:"required_resource,omitempty"`
	ProximityThreshold float64       `json:"proximity_threshold"`
	ElapsedHold        time.Duration `json:"elapsed_hold"`
	ElapsedWindow      time.Duration `json:"elapsed_window"`
	FallSoundPlayed    bool          `json:"fall_sound_played"`
}

type EncounterOption func(*Encounter)

func WithAnimator(a Animator) EncounterOption {
	return func(e *Encounter) { e.animator = a }
}

func WithSound(p SoundPlayer) EncounterOption {
	return func(e *Encounter) {
		if p != nil {
			e.sound = p
		}
	}
}

// WithTransitionHook is called after every state change.
func WithTransitionHook(fn func(snap EncounterSnapshot, from State)) EncounterOption {
	return func(e *Encounter) { e.onTransition = fn }
}

// Encounter is one character's fall, lie, then revive-or-die sequence.
// Reaching a terminal state reports to the outcome sink exactly once and
// makes the encounter ignore all further input.
type Encounter struct {
	cfg          EncounterConfig
	resources    ResourcePool
	outcomes     OutcomeSink
	animator     Animator
	sound        SoundPlayer
	onTransition func(EncounterSnapshot, State)

	state     State
	hold      time.Duration
	window    time.Duration
	sfxPlayed bool
	reported  bool
}

func NewEncounter(cfg EncounterConfig, resources ResourcePool, outcomes OutcomeSink, opts ...EncounterOption) *Encounter {
	cfg = cfg.withDefaults()
	e := &Encounter{
		cfg:       cfg,
		resources: resources,
		outcomes:  outcomes,
		sound:     silentSound{},
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.animator == nil {
		e.animator = NewTimedAnimator(cfg.DizzyDuration, cfg.FallDuration)
	}
	return e
}

func (e *Encounter) ID() string {
	return e.cfg.ID
}

func (e *Encounter) State() State {
	return e.state
}

func (e *Encounter) Snapshot() EncounterSnapshot {
	return EncounterSnapshot{
		ID:                 e.cfg.ID,
		State:              e.state,
		Position:           e.cfg.Position,
		ReviveKey:          e.cfg.ReviveKey,
		RequiredResource:   e.cfg.RequiredResource,
		ProximityThreshold: e.cfg.ProximityThreshold,
		ElapsedHold:        e.hold,
		ElapsedWindow:      e.window,
		FallSoundPlayed:    e.sfxPlayed,
	}
}

// Step advances the encounter by one frame.
func (e *Encounter) Step(dt time.Duration, in FrameInput) {
	if e.state.Terminal() {
		return
	}
	e.animator.Advance(dt)

	if e.state == StateIdle {
		if !e.near(in) {
			return
		}
		e.animator.Trigger(TriggerNear)
		e.setState(StateDizzy)
	}
	if e.state == StateDizzy {
		if e.animator.Pose() < PoseFalling {
			return
		}
		e.setState(StateFalling)
		if !e.sfxPlayed {
			e.sfxPlayed = true
			e.sound.PlayOneShot(e.cfg.FallSound)
		}
	}
	if e.state == StateFalling {
		if e.animator.Pose() < PoseLying {
			return
		}
		e.setState(StateLying)
		return
	}
	e.stepLying(dt, in)
}

func (e *Encounter) stepLying(dt time.Duration, in FrameInput) {
	e.window += dt

	if e.near(in) && in.IsHeld(e.cfg.ReviveKey) && e.hasResource() {
		e.hold += dt
	} else {
		e.hold = 0
	}

	if e.hold >= e.cfg.HoldRequired {
		if e.spend() {
			e.animator.Trigger(TriggerRevive)
			e.finish(StateRevived)
			return
		}
		// resource vanished at the last instant; a full hold is needed again
		e.hold = 0
	}

	if e.window >= e.cfg.ReviveWindow {
		e.animator.Trigger(TriggerDie)
		e.finish(StateDead)
	}
}

func (e *Encounter) near(in FrameInput) bool {
	return in.PlayerPos.Distance(e.cfg.Position) <= e.cfg.ProximityThreshold
}

func (e *Encounter) hasResource() bool {
	if e.cfg.RequiredResource == ResourceNone {
		return true
	}
	return e.resources != nil && e.resources.Count(e.cfg.RequiredResource) > 0
}

func (e *Encounter) spend() bool {
	if e.cfg.RequiredResource == ResourceNone {
		return true
	}
	return e.resources != nil && e.resources.TrySpend(e.cfg.RequiredResource, 1)
}

func (e *Encounter) finish(terminal State) {
	e.setState(terminal)
	if e.reported || e.outcomes == nil {
		return
	}
	e.reported = true
	if terminal == StateRevived {
		e.outcomes.AddSaved()
		return
	}
	e.outcomes.AddLost()
}

func (e *Encounter) setState(next State) {
	from := e.state
	e.state = next
	if next != StateLying {
		e.hold = 0
	}
	if e.onTransition != nil {
		e.onTransition(e.Snapshot(), from)
	}
}
