package rescue

const DefaultPickupRadius = 1.0

type PickupConfig struct {
	ID       string
	Kind     ResourceKind
	Position Vec3
	Radius   float64
}

type PickupSnapshot struct {
	ID        string       `json:"id"`
	Kind      ResourceKind `json:"kind"`
	Position  Vec3         `json:"position"`
	Collected bool         `json:"collected"`
}

// Pickup adds one unit to the ledger the first time the player enters it.
type Pickup struct {
	cfg       PickupConfig
	collected bool
}

func NewPickup(cfg PickupConfig) *Pickup {
	if cfg.Radius <= 0 {
		cfg.Radius = DefaultPickupRadius
	}
	return &Pickup{cfg: cfg}
}

func (p *Pickup) Step(in FrameInput, ledger *Ledger) bool {
	if p.collected || ledger == nil || p.cfg.Kind == ResourceNone {
		return false
	}
	if in.PlayerPos.Distance(p.cfg.Position) > p.cfg.Radius {
		return false
	}
	p.collected = true
	ledger.Add(p.cfg.Kind, 1)
	return true
}

func (p *Pickup) Snapshot() PickupSnapshot {
	return PickupSnapshot{
		ID:        p.cfg.ID,
		Kind:      p.cfg.Kind,
		Position:  p.cfg.Position,
		Collected: p.collected,
	}
}
