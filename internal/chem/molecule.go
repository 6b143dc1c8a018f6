package chem

import (
	"math"
	"strings"
)

// maxSpeed bounds the magnitude of a molecule's Brownian velocity.
const maxSpeed = 0.05

// velocityJitter is the standard deviation of the per-step velocity kick.
const velocityJitter = 0.005

// Vec2 is a 2-D position or velocity.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Molecule represents one molecular type in the system. Identity is the
// name: two molecules are the same type iff their names are equal, and
// population counts are tracked externally in a name-keyed pool. The
// position and velocity describe a bounded Brownian walk used only for
// rendering and compartment placement.
type Molecule struct {
	Name                string  `json:"name"`
	Complexity          float64 `json:"complexity"`
	Amphiphilic         bool    `json:"amphiphilic"`
	HydrophobicStrength float64 `json:"hydrophobic_strength"`
	Position            Vec2    `json:"position"`
	Velocity            Vec2    `json:"velocity"`
}

// NewMolecule creates a molecule type with a random position inside
// [0, bounds] and a small random initial velocity. HydrophobicStrength is
// zero for non-amphiphilic molecules.
func NewMolecule(name string, complexity float64, amphiphilic bool, bounds float64, rng Rand) *Molecule {
	m := &Molecule{
		Name:        name,
		Complexity:  complexity,
		Amphiphilic: amphiphilic,
		Position:    Vec2{X: rng.Float64() * bounds, Y: rng.Float64() * bounds},
		Velocity: Vec2{
			X: (rng.Float64()*2 - 1) * maxSpeed,
			Y: (rng.Float64()*2 - 1) * maxSpeed,
		},
	}
	if amphiphilic {
		m.HydrophobicStrength = 0.5 + 0.5*rng.Float64()
	}
	return m
}

// UpdatePosition advances the Brownian walk by one step: move by velocity,
// reflect elastically at the [0, bounds] box, add Gaussian jitter to the
// velocity and clamp its magnitude to maxSpeed.
func (m *Molecule) UpdatePosition(bounds float64, rng Rand) {
	m.Position.X += m.Velocity.X
	m.Position.Y += m.Velocity.Y

	if m.Position.X < 0 {
		m.Position.X = -m.Position.X
		m.Velocity.X = -m.Velocity.X
	} else if m.Position.X > bounds {
		m.Position.X = 2*bounds - m.Position.X
		m.Velocity.X = -m.Velocity.X
	}
	if m.Position.Y < 0 {
		m.Position.Y = -m.Position.Y
		m.Velocity.Y = -m.Velocity.Y
	} else if m.Position.Y > bounds {
		m.Position.Y = 2*bounds - m.Position.Y
		m.Velocity.Y = -m.Velocity.Y
	}

	m.Velocity.X += rng.NormFloat64() * velocityJitter
	m.Velocity.Y += rng.NormFloat64() * velocityJitter

	speed := math.Hypot(m.Velocity.X, m.Velocity.Y)
	if speed > maxSpeed {
		scale := maxSpeed / speed
		m.Velocity.X *= scale
		m.Velocity.Y *= scale
	}
}

// CanCatalyze reports whether this molecule can catalyze the reaction. The
// heuristic is name-based: the molecule catalyzes if its name is a substring
// of, or contains, any reactant or product name. Names shorter than three
// characters never match, to avoid trivial single-letter catalysis. This is
// an approximation of catalytic specificity, not real chemistry.
func (m *Molecule) CanCatalyze(r *Reaction) bool {
	if len(m.Name) < 3 {
		return false
	}
	for _, other := range r.Reactants {
		if nameAffinity(m.Name, other.Name) {
			return true
		}
	}
	for _, other := range r.Products {
		if nameAffinity(m.Name, other.Name) {
			return true
		}
	}
	return false
}

func nameAffinity(a, b string) bool {
	if len(b) < 3 {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
