package rescue

import "time"

type Pose int

const (
	PoseStanding Pose = iota
	PoseDizzy
	PoseFalling
	PoseLying
	PoseDead
)

type Trigger string

const (
	TriggerNear   Trigger = "near"
	TriggerRevive Trigger = "revive"
	TriggerDie    Trigger = "die"
)

// Animator drives the character's clips. Encounters poll Pose once per frame.
type Animator interface {
	Trigger(t Trigger)
	Advance(dt time.Duration)
	Pose() Pose
}

type SoundPlayer interface {
	PlayOneShot(clip string)
}

// TimedAnimator plays dizzy then fall clips of fixed length and settles on the
// lying pose. A zero dizzy duration goes straight from standing to falling.
type TimedAnimator struct {
	DizzyDuration time.Duration
	FallDuration  time.Duration

	pose   Pose
	inPose time.Duration
}

func NewTimedAnimator(dizzy, fall time.Duration) *TimedAnimator {
	return &TimedAnimator{DizzyDuration: dizzy, FallDuration: fall}
}

func (a *TimedAnimator) Trigger(t Trigger) {
	switch t {
	case TriggerNear:
		if a.pose != PoseStanding {
			return
		}
		a.inPose = 0
		if a.DizzyDuration > 0 {
			a.pose = PoseDizzy
			return
		}
		a.pose = PoseFalling
	case TriggerRevive:
		if a.pose == PoseLying {
			a.pose, a.inPose = PoseStanding, 0
		}
	case TriggerDie:
		if a.pose == PoseLying {
			a.pose, a.inPose = PoseDead, 0
		}
	}
}

func (a *TimedAnimator) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	a.inPose += dt
	if a.pose == PoseDizzy && a.inPose >= a.DizzyDuration {
		a.inPose -= a.DizzyDuration
		a.pose = PoseFalling
	}
	if a.pose == PoseFalling && a.inPose >= a.FallDuration {
		a.inPose -= a.FallDuration
		a.pose = PoseLying
	}
}

func (a *TimedAnimator) Pose() Pose {
	return a.pose
}

type silentSound struct{}

func (silentSound) PlayOneShot(string) {}
