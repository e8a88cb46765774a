package rules

import (
	"math"
	"math/rand"

	"github.com/nstehr/deadeye/model"
)

// Opening is the first goal a doctrine commits to.
type Opening uint8

const (
	OpeningBanditRush Opening = iota
	OpeningExpand
	OpeningBunker
)

func (o Opening) String() string {
	switch o {
	case OpeningBanditRush:
		return "bandit_rush"
	case OpeningExpand:
		return "expand"
	case OpeningBunker:
		return "bunker"
	}
	return "unknown"
}

// Composition is the unit mix a doctrine trains.
type Composition uint8

const (
	CompositionOutlaws Composition = iota
	CompositionSoldiers
	CompositionRiders
)

func (c Composition) String() string {
	switch c {
	case CompositionOutlaws:
		return "outlaws"
	case CompositionSoldiers:
		return "soldiers"
	case CompositionRiders:
		return "riders"
	}
	return "unknown"
}

// Core returns the two unit types the composition fields in bulk.
func (c Composition) Core() [2]model.EntityType {
	switch c {
	case CompositionSoldiers:
		return [2]model.EntityType{model.EntitySoldier, model.EntityCannon}
	case CompositionRiders:
		return [2]model.EntityType{model.EntityJockey, model.EntityCowboy}
	}
	return [2]model.EntityType{model.EntityCowboy, model.EntityBandit}
}

// Raider returns the fast unit used for harassment.
func (c Composition) Raider() model.EntityType {
	switch c {
	case CompositionSoldiers:
		return model.EntityCowboy
	case CompositionRiders:
		return model.EntityJockey
	}
	return model.EntityBandit
}

// Detector returns the unit the composition uses to counter stealth.
func (c Composition) Detector() model.EntityType {
	if c == CompositionSoldiers {
		return model.EntityDetective
	}
	return model.EntityBalloon
}

// Specialist returns the support unit mixed into pushes.
func (c Composition) Specialist() model.EntityType {
	switch c {
	case CompositionSoldiers:
		return model.EntitySapper
	case CompositionRiders:
		return model.EntityWagon
	}
	return model.EntityPyro
}

// LaysMines reports whether the composition issues the one-time mines goal.
func (c Composition) LaysMines() bool { return c == CompositionSoldiers }

// Doctrine is a strategic posture. Weights are 0.0–1.0; the compiler maps
// them to concrete rule thresholds.
type Doctrine struct {
	Name            string
	Opening         Opening
	Composition     Composition
	Aggression      float64
	EconomyPriority float64
	DefensePriority float64
}

// Doctrines is the fixed table a bot draws its strategy from.
var Doctrines = []Doctrine{
	{Name: "Gunslinger", Opening: OpeningBanditRush, Composition: CompositionOutlaws, Aggression: 0.8, EconomyPriority: 0.3, DefensePriority: 0.3},
	{Name: "Prospector", Opening: OpeningExpand, Composition: CompositionRiders, Aggression: 0.4, EconomyPriority: 0.9, DefensePriority: 0.4},
	{Name: "Marshal", Opening: OpeningBunker, Composition: CompositionSoldiers, Aggression: 0.3, EconomyPriority: 0.5, DefensePriority: 0.8},
	{Name: "Drifter", Opening: OpeningExpand, Composition: CompositionOutlaws, Aggression: 0.6, EconomyPriority: 0.6, DefensePriority: 0.5},
	{Name: "Cavalry", Opening: OpeningBanditRush, Composition: CompositionRiders, Aggression: 0.9, EconomyPriority: 0.3, DefensePriority: 0.2},
	{Name: "Sapper", Opening: OpeningExpand, Composition: CompositionSoldiers, Aggression: 0.5, EconomyPriority: 0.7, DefensePriority: 0.6},
}

// DefaultDoctrine returns a balanced baseline doctrine.
func DefaultDoctrine() Doctrine {
	return Doctrine{
		Name:            "Balanced",
		Opening:         OpeningExpand,
		Composition:     CompositionOutlaws,
		Aggression:      0.5,
		EconomyPriority: 0.5,
		DefensePriority: 0.5,
	}
}

// PickDoctrine draws a doctrine from the table using the bot's own stream.
func PickDoctrine(r *rand.Rand) Doctrine {
	return Doctrines[r.Intn(len(Doctrines))]
}

// Validate clamps all weights to their valid ranges.
func (d *Doctrine) Validate() {
	d.Aggression = clamp(d.Aggression, 0, 1)
	d.EconomyPriority = clamp(d.EconomyPriority, 0, 1)
	d.DefensePriority = clamp(d.DefensePriority, 0, 1)
	if d.Opening > OpeningBunker {
		d.Opening = OpeningExpand
	}
	if d.Composition > CompositionRiders {
		d.Composition = CompositionOutlaws
	}
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// lerp linearly interpolates between min and max by t (0–1), returning an int.
func lerp(min, max int, t float64) int {
	return min + int(math.Round(float64(max-min)*t))
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
