package rescue

import "time"

const (
	DefaultDizzyDuration = 1500 * time.Millisecond
	DefaultFallDuration  = 1 * time.Second
)

// CPRPreset needs no resource and falls without a dizzy spell.
func CPRPreset(id string, pos Vec3) EncounterConfig {
	return EncounterConfig{
		ID:               id,
		Position:         pos,
		ReviveKey:        KeyCPR,
		RequiredResource: ResourceNone,
		FallDuration:     DefaultFallDuration,
	}
}

func SugarPreset(id string, pos Vec3) EncounterConfig {
	return EncounterConfig{
		ID:               id,
		Position:         pos,
		ReviveKey:        KeySugar,
		RequiredResource: ResourceSugar,
		DizzyDuration:    DefaultDizzyDuration,
		FallDuration:     DefaultFallDuration,
	}
}

func BottlePreset(id string, pos Vec3) EncounterConfig {
	return EncounterConfig{
		ID:               id,
		Position:         pos,
		ReviveKey:        KeyBottle,
		RequiredResource: ResourceBottle,
		DizzyDuration:    DefaultDizzyDuration,
		FallDuration:     DefaultFallDuration,
	}
}

// DefaultRunConfig is the training scene: three elders and one pickup per resource.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		DurationSeconds: DefaultCountdownSeconds,
		TotalEncounters: 3,
		Encounters: []EncounterConfig{
			CPRPreset("elder-cpr", Vec3{X: 10}),
			SugarPreset("elder-sugar", Vec3{X: 20, Z: 10}),
			BottlePreset("elder-bottle", Vec3{X: -15, Z: 15}),
		},
		Pickups: []PickupConfig{
			{ID: "sugar-1", Kind: ResourceSugar, Position: Vec3{X: 14, Z: 4}},
			{ID: "bottle-1", Kind: ResourceBottle, Position: Vec3{X: -6, Z: 8}},
		},
	}
}
