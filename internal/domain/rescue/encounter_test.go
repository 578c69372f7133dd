package rescue

import (
	"testing"
	"time"
)

const frame = 100 * time.Millisecond

func at(pos Vec3, keys ...Key) FrameInput {
	held := map[Key]bool{}
	for _, k := range keys {
		held[k] = true
	}
	return FrameInput{PlayerPos: pos, Held: held}
}

func stepUntil(t *testing.T, e *Encounter, in FrameInput, want State, maxFrames int) {
	t.Helper()
	for i := 0; i < maxFrames; i++ {
		if e.State() == want {
			return
		}
		e.Step(frame, in)
	}
	if e.State() != want {
		t.Fatalf("expected state %s within %d frames, got %s", want, maxFrames, e.State())
	}
}

func stepN(e *Encounter, in FrameInput, n int) {
	for i := 0; i < n; i++ {
		e.Step(frame, in)
	}
}

type fakePool struct {
	count      int
	failSpends int
	spends     int
}

func (p *fakePool) Count(ResourceKind) int { return p.count }

func (p *fakePool) TrySpend(_ ResourceKind, n int) bool {
	if p.failSpends > 0 {
		p.failSpends--
		return false
	}
	if p.count < n {
		return false
	}
	p.count -= n
	p.spends++
	return true
}

type countingSound struct{ plays []string }

func (s *countingSound) PlayOneShot(clip string) { s.plays = append(s.plays, clip) }

// manualAnimator only changes pose when the test says so.
type manualAnimator struct {
	pose     Pose
	triggers []Trigger
}

func (a *manualAnimator) Trigger(t Trigger)     { a.triggers = append(a.triggers, t) }
func (a *manualAnimator) Advance(time.Duration) {}
func (a *manualAnimator) Pose() Pose            { return a.pose }

var origin = Vec3{}

func TestEncounter_CPRReviveAfterFullHold(t *testing.T) {
	tracker := NewOutcomeTracker()
	e := NewEncounter(CPRPreset("cpr", origin), NewLedger(), tracker)

	stepUntil(t, e, at(origin), StateLying, 50)
	if snap := e.Snapshot(); snap.ElapsedWindow != 0 || snap.ElapsedHold != 0 {
		t.Fatalf("expected clean timers on entering lying, got %+v", snap)
	}

	stepN(e, at(origin, KeyCPR), 29)
	if e.State() != StateLying {
		t.Fatalf("expected still lying before 3s hold, got %s", e.State())
	}
	e.Step(frame, at(origin, KeyCPR))
	if e.State() != StateRevived {
		t.Fatalf("expected revived after 3s hold, got %s", e.State())
	}
	if got := tracker.Current(); got != (Outcome{Saved: 1}) {
		t.Fatalf("expected one save, got %+v", got)
	}
}

func TestEncounter_DiesWhenWindowExpires(t *testing.T) {
	tracker := NewOutcomeTracker()
	e := NewEncounter(CPRPreset("cpr", origin), NewLedger(), tracker)
	stepUntil(t, e, at(origin), StateLying, 50)

	stepN(e, at(origin), 79)
	if e.State() != StateLying {
		t.Fatalf("expected lying at 7.9s, got %s", e.State())
	}
	e.Step(frame, at(origin))
	if e.State() != StateDead {
		t.Fatalf("expected dead at 8s, got %s", e.State())
	}
	if got := tracker.Current(); got != (Outcome{Lost: 1}) {
		t.Fatalf("expected one loss, got %+v", got)
	}
}

func TestEncounter_TerminalStateIsInert(t *testing.T) {
	tracker := NewOutcomeTracker()
	e := NewEncounter(CPRPreset("cpr", origin), NewLedger(), tracker)
	stepUntil(t, e, at(origin), StateLying, 50)
	stepUntil(t, e, at(origin, KeyCPR), StateRevived, 50)
	before := e.Snapshot()

	stepN(e, at(origin, KeyCPR), 200)
	stepN(e, at(Vec3{X: 100}), 200)

	if after := e.Snapshot(); after != before {
		t.Fatalf("expected snapshot unchanged after terminal, before=%+v after=%+v", before, after)
	}
	if got := tracker.Current(); got != (Outcome{Saved: 1}) {
		t.Fatalf("expected exactly one report, got %+v", got)
	}
}

func TestEncounter_HoldResetsOnAnyInterruption(t *testing.T) {
	e := NewEncounter(CPRPreset("cpr", origin), NewLedger(), NewOutcomeTracker())
	stepUntil(t, e, at(origin), StateLying, 50)

	stepN(e, at(origin, KeyCPR), 20)
	if got := e.Snapshot().ElapsedHold; got != 2*time.Second {
		t.Fatalf("expected 2s hold, got %s", got)
	}
	e.Step(frame, at(origin))
	if got := e.Snapshot().ElapsedHold; got != 0 {
		t.Fatalf("expected hold reset on key release, got %s", got)
	}

	stepN(e, at(origin, KeyCPR), 20)
	e.Step(frame, at(Vec3{X: 5}, KeyCPR))
	if got := e.Snapshot().ElapsedHold; got != 0 {
		t.Fatalf("expected hold reset on leaving range, got %s", got)
	}

	e.Step(frame, at(origin, KeySugar))
	if got := e.Snapshot().ElapsedHold; got != 0 {
		t.Fatalf("expected wrong key not to count, got %s", got)
	}

	stepN(e, at(origin, KeyCPR), 30)
	if e.State() != StateRevived {
		t.Fatalf("expected revive after an uninterrupted hold, got %s", e.State())
	}
}

func TestEncounter_MissingResourceNeverAccumulates(t *testing.T) {
	tracker := NewOutcomeTracker()
	e := NewEncounter(SugarPreset("sugar", origin), NewLedger(), tracker)
	stepUntil(t, e, at(origin), StateLying, 50)

	stepN(e, at(origin, KeySugar), 40)
	if got := e.Snapshot().ElapsedHold; got != 0 {
		t.Fatalf("expected no hold without sugar, got %s", got)
	}
	stepUntil(t, e, at(origin, KeySugar), StateDead, 50)
	if got := tracker.Current(); got != (Outcome{Lost: 1}) {
		t.Fatalf("expected one loss, got %+v", got)
	}
}

func TestEncounter_FailedSpendRequiresFullHoldAgain(t *testing.T) {
	pool := &fakePool{count: 1, failSpends: 1}
	tracker := NewOutcomeTracker()
	e := NewEncounter(SugarPreset("sugar", origin), pool, tracker)
	stepUntil(t, e, at(origin), StateLying, 50)

	stepN(e, at(origin, KeySugar), 30)
	snap := e.Snapshot()
	if snap.State != StateLying || snap.ElapsedHold != 0 {
		t.Fatalf("expected lying with hold reset after failed spend, got %+v", snap)
	}
	if got := tracker.Current(); got != (Outcome{}) {
		t.Fatalf("expected no report after failed spend, got %+v", got)
	}

	stepN(e, at(origin, KeySugar), 29)
	if e.State() != StateLying {
		t.Fatalf("expected a fresh 3s hold to be required, got %s", e.State())
	}
	e.Step(frame, at(origin, KeySugar))
	if e.State() != StateRevived {
		t.Fatalf("expected revived, got %s", e.State())
	}
	if pool.spends != 1 || pool.count != 0 {
		t.Fatalf("expected exactly one unit spent, got spends=%d count=%d", pool.spends, pool.count)
	}
}

func TestEncounter_FallSoundPlaysOnceEvenWhenFramesSkipStates(t *testing.T) {
	sound := &countingSound{}
	var path []State
	e := NewEncounter(SugarPreset("sugar", origin), NewLedger(), NewOutcomeTracker(),
		WithSound(sound),
		WithTransitionHook(func(snap EncounterSnapshot, from State) {
			path = append(path, snap.State)
		}),
	)

	e.Step(frame, at(origin))
	if e.State() != StateDizzy {
		t.Fatalf("expected dizzy, got %s", e.State())
	}
	e.Step(5*time.Second, at(origin))
	if e.State() != StateLying {
		t.Fatalf("expected lying after a long frame, got %s", e.State())
	}
	if len(sound.plays) != 1 || sound.plays[0] != "fall" {
		t.Fatalf("expected one fall sound, got %v", sound.plays)
	}

	want := []State{StateDizzy, StateFalling, StateLying}
	if len(path) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("expected transitions %v, got %v", want, path)
		}
	}
}

func TestEncounter_WaitsForAnimatorBeforeLying(t *testing.T) {
	anim := &manualAnimator{}
	tracker := NewOutcomeTracker()
	e := NewEncounter(CPRPreset("cpr", origin), NewLedger(), tracker, WithAnimator(anim))

	e.Step(frame, at(origin, KeyCPR))
	if e.State() != StateDizzy {
		t.Fatalf("expected dizzy, got %s", e.State())
	}
	stepN(e, at(origin, KeyCPR), 200)
	if e.State() != StateDizzy {
		t.Fatalf("expected encounter to wait on the animator, got %s", e.State())
	}
	if got := tracker.Current(); got != (Outcome{}) {
		t.Fatalf("expected no outcome before lying, got %+v", got)
	}

	anim.pose = PoseLying
	e.Step(frame, at(origin, KeyCPR))
	if e.State() != StateLying {
		t.Fatalf("expected lying, got %s", e.State())
	}
	stepUntil(t, e, at(origin, KeyCPR), StateRevived, 40)
	if len(anim.triggers) != 2 || anim.triggers[0] != TriggerNear || anim.triggers[1] != TriggerRevive {
		t.Fatalf("unexpected animator triggers: %v", anim.triggers)
	}
}

func TestEncounter_FarPlayerNeverTriggers(t *testing.T) {
	tracker := NewOutcomeTracker()
	e := NewEncounter(CPRPreset("cpr", origin), NewLedger(), tracker)
	stepN(e, at(Vec3{X: 3.01}, KeyCPR), 500)
	if e.State() != StateIdle {
		t.Fatalf("expected idle, got %s", e.State())
	}
	e.Step(frame, at(Vec3{X: 3}))
	if e.State() == StateIdle {
		t.Fatalf("expected threshold distance to count as near")
	}
}

func TestEncounter_SharedResourceRevivesOnlyOne(t *testing.T) {
	ledger := NewLedger()
	ledger.Add(ResourceSugar, 1)
	tracker := NewOutcomeTracker()
	a := NewEncounter(SugarPreset("a", origin), ledger, tracker)
	b := NewEncounter(SugarPreset("b", origin), ledger, tracker)

	in := at(origin, KeySugar)
	for i := 0; i < 200 && !(a.State().Terminal() && b.State().Terminal()); i++ {
		a.Step(frame, in)
		b.Step(frame, in)
	}

	if a.State() != StateRevived || b.State() != StateDead {
		t.Fatalf("expected a revived and b dead, got a=%s b=%s", a.State(), b.State())
	}
	if got := tracker.Current(); got != (Outcome{Saved: 1, Lost: 1}) {
		t.Fatalf("expected 1 saved 1 lost, got %+v", got)
	}
	if got := ledger.Count(ResourceSugar); got != 0 {
		t.Fatalf("expected sugar spent, got %d", got)
	}
}
