// Package autopilot drives a rescue run without a human: it walks to the
// next unresolved character, fetches the resource it needs on the way and
// holds the revive key once the character is down.
package autopilot

import (
	"time"

	"rescuesim/internal/domain/rescue"
)

const (
	DefaultSpeed = 4.0
	// fraction of the proximity threshold the pilot closes to before stopping
	approachFactor = 0.5
)

type Config struct {
	Start rescue.Vec3
	// Speed is in world units per second.
	Speed float64
}

type Pilot struct {
	run   *rescue.Run
	pos   rescue.Vec3
	speed float64
}

func New(run *rescue.Run, cfg Config) *Pilot {
	if cfg.Speed <= 0 {
		cfg.Speed = DefaultSpeed
	}
	return &Pilot{run: run, pos: cfg.Start, speed: cfg.Speed}
}

func (p *Pilot) Position() rescue.Vec3 {
	return p.pos
}

// Next moves the pilot for one frame and returns the input to feed the run.
func (p *Pilot) Next(dt time.Duration) rescue.FrameInput {
	target, ok := p.currentEncounter()
	if !ok {
		return rescue.FrameInput{PlayerPos: p.pos}
	}

	if p.needsResource(target) {
		if pickup, found := p.nearestPickup(target.RequiredResource); found {
			p.moveToward(pickup.Position, 0, dt)
			return rescue.FrameInput{PlayerPos: p.pos}
		}
	}

	p.moveToward(target.Position, target.ProximityThreshold*approachFactor, dt)
	in := rescue.FrameInput{PlayerPos: p.pos, Held: map[rescue.Key]bool{}}
	if target.State == rescue.StateLying && p.pos.Distance(target.Position) <= target.ProximityThreshold {
		in.Held[target.ReviveKey] = true
	}
	return in
}

func (p *Pilot) currentEncounter() (rescue.EncounterSnapshot, bool) {
	for _, snap := range p.run.Encounters() {
		if !snap.State.Terminal() {
			return snap, true
		}
	}
	return rescue.EncounterSnapshot{}, false
}

func (p *Pilot) needsResource(e rescue.EncounterSnapshot) bool {
	if e.RequiredResource == rescue.ResourceNone {
		return false
	}
	return p.run.Ledger().Count(e.RequiredResource) == 0
}

func (p *Pilot) nearestPickup(kind rescue.ResourceKind) (rescue.PickupSnapshot, bool) {
	var (
		best  rescue.PickupSnapshot
		found bool
	)
	for _, snap := range p.run.Pickups() {
		if snap.Collected || snap.Kind != kind {
			continue
		}
		if !found || p.pos.Distance(snap.Position) < p.pos.Distance(best.Position) {
			best, found = snap, true
		}
	}
	return best, found
}

func (p *Pilot) moveToward(goal rescue.Vec3, stopAt float64, dt time.Duration) {
	dist := p.pos.Distance(goal)
	if dist <= stopAt || dist == 0 {
		return
	}
	step := p.speed * dt.Seconds()
	if step >= dist-stopAt {
		step = dist - stopAt
	}
	f := step / dist
	p.pos = rescue.Vec3{
		X: p.pos.X + (goal.X-p.pos.X)*f,
		Y: p.pos.Y + (goal.Y-p.pos.Y)*f,
		Z: p.pos.Z + (goal.Z-p.pos.Z)*f,
	}
}

// Play steps the run until it ends or maxFrames have elapsed.
func Play(run *rescue.Run, pilot *Pilot, dt time.Duration, maxFrames int) rescue.Summary {
	for i := 0; i < maxFrames; i++ {
		if _, ended := run.Ended(); ended {
			break
		}
		run.Step(dt, pilot.Next(dt))
	}
	return run.Summary()
}
