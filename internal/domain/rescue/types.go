// Package rescue holds the headless gameplay core: the shared resource ledger,
// the saved/lost tracker, the countdown and the per-character fall encounter
// state machine, all advanced by one frame tick at a time.
package rescue

import "math"

type ResourceKind string

const (
	ResourceNone   ResourceKind = ""
	ResourceSugar  ResourceKind = "sugar"
	ResourceBottle ResourceKind = "bottle"
)

type Key string

const (
	KeyCPR    Key = "C"
	KeySugar  Key = "M"
	KeyBottle Key = "N"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Distance(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// FrameInput is what the player does during one frame.
type FrameInput struct {
	PlayerPos Vec3
	Held      map[Key]bool
}

func (in FrameInput) IsHeld(k Key) bool {
	return in.Held[k]
}

type EndReason string

const (
	EndReasonTimeUp      EndReason = "Time Up"
	EndReasonAllResolved EndReason = "All Cases Resolved"
	EndReasonUnknown     EndReason = "Unknown"
)

// ParseEndReason keeps the known reasons and folds anything else into Unknown.
func ParseEndReason(raw string) EndReason {
	switch EndReason(raw) {
	case EndReasonTimeUp, EndReasonAllResolved:
		return EndReason(raw)
	default:
		return EndReasonUnknown
	}
}
