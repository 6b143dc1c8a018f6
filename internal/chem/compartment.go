package chem

import (
	"math"

	"github.com/google/uuid"
)

const (
	// DefaultDivisionThreshold is the radius above which a compartment
	// becomes eligible for division.
	DefaultDivisionThreshold = 0.15

	// dissolutionStability is the stability at or below which a
	// compartment dissolves.
	dissolutionStability = 0.1

	// maxStability caps compartment stability.
	maxStability = 0.9

	initialRadius    = 0.05
	initialStability = 0.5
)

// Compartment is a membrane-bound region modeling a protocell: a spatial
// boundary holding interior molecule counts and the amphiphilic molecules
// forming its membrane. Lifecycle: forming -> stable/growing -> either
// division into two daughters or dissolution.
type Compartment struct {
	ID                string         `json:"id"`
	Position          Vec2           `json:"position"`
	Radius            float64        `json:"radius"`
	Molecules         map[string]int `json:"molecules"`
	Boundary          []*Molecule    `json:"-"`
	Stability         float64        `json:"stability"`
	Age               int            `json:"age"`
	DivisionThreshold float64        `json:"division_threshold"`
	MetabolicActivity float64        `json:"metabolic_activity"`
}

// NewCompartment creates a forming compartment at the given position with
// an empty interior and boundary.
func NewCompartment(pos Vec2) *Compartment {
	return &Compartment{
		ID:                uuid.NewString(),
		Position:          pos,
		Radius:            initialRadius,
		Molecules:         make(map[string]int),
		Stability:         initialStability,
		DivisionThreshold: DefaultDivisionThreshold,
	}
}

// TotalInterior returns the total number of molecule units inside the
// compartment.
func (c *Compartment) TotalInterior() int {
	total := 0
	for _, n := range c.Molecules {
		total += n
	}
	return total
}

// AddInterior adds n units of the named molecule to the interior.
func (c *Compartment) AddInterior(name string, n int) {
	if n <= 0 {
		return
	}
	c.Molecules[name] += n
}

// Update advances the compartment by one step: age increments, stability is
// recomputed from the boundary composition (or decays by 0.05 when the
// boundary is empty), the radius grows when the compartment is stable and
// has interior contents, and metabolic activity is derived. The environment
// can further penalize stability (dry phase, wet-phase dissolution of weak
// compartments, extreme temperature).
func (c *Compartment) Update(env Environment) {
	c.Age++

	if len(c.Boundary) > 0 {
		c.Stability = math.Min(maxStability, 0.4+0.5*float64(len(c.Boundary))/(100+1000*c.Radius))
	} else {
		c.Stability = math.Max(0, c.Stability-0.05)
	}

	if env != nil {
		c.applyEnvironment(env)
	}

	total := c.TotalInterior()
	if c.Stability > 0.5 && total > 0 {
		c.Radius += 0.001 * c.Stability * math.Log(1+float64(total))
	}

	c.MetabolicActivity = float64(len(c.Molecules)) * math.Log(1+float64(total))
}

func (c *Compartment) applyEnvironment(env Environment) {
	wet := env.WetPhase()
	if wet < 0.2 {
		// Dry phase stresses all membranes.
		c.Stability -= 0.1
	} else if wet > 0.8 && c.Stability < 0.5 {
		// Strong wet phase dissolves weak compartments.
		c.Stability -= 0.05
	}

	temp := env.Temperature()
	if temp < 0.1 || temp > 0.9 {
		c.Stability -= 0.05
	}

	if c.Stability < 0 {
		c.Stability = 0
	} else if c.Stability > maxStability {
		c.Stability = maxStability
	}
}

// Dissolved reports whether the compartment has become too unstable to
// persist.
func (c *Compartment) Dissolved() bool {
	return c.Stability <= dissolutionStability
}

// CanDivide reports division eligibility. All three comparisons are strict,
// so a compartment sitting exactly at a threshold is not eligible.
func (c *Compartment) CanDivide() bool {
	return c.Radius > c.DivisionThreshold && c.Stability > 0.6 && c.Age > 10
}

// Divide splits the compartment into two forming daughters placed on
// opposite sides of the parent. Each interior molecule type is split with a
// ratio drawn from U(0.4, 0.6), with the two halves always summing to the
// parent's count. Each boundary molecule is independently assigned to one
// daughter. Stability is inherited with an independent U(-0.1, 0.1)
// mutation per daughter, clamped to [0.1, 0.9]. The parent must be
// discarded by the caller.
func (c *Compartment) Divide(rng Rand) (*Compartment, *Compartment) {
	theta := 2 * math.Pi * rng.Float64()
	offset := Vec2{
		X: 0.5 * c.Radius * math.Cos(theta),
		Y: 0.5 * c.Radius * math.Sin(theta),
	}

	d1 := NewCompartment(Vec2{X: c.Position.X + offset.X, Y: c.Position.Y + offset.Y})
	d2 := NewCompartment(Vec2{X: c.Position.X - offset.X, Y: c.Position.Y - offset.Y})
	d1.Radius = 0.6 * c.Radius
	d2.Radius = 0.6 * c.Radius
	d1.DivisionThreshold = c.DivisionThreshold
	d2.DivisionThreshold = c.DivisionThreshold

	for name, count := range c.Molecules {
		ratio := uniform(rng, 0.4, 0.6)
		n1 := int(math.Round(float64(count) * ratio))
		if n1 > count {
			n1 = count
		}
		d1.AddInterior(name, n1)
		d2.AddInterior(name, count-n1)
	}

	for _, b := range c.Boundary {
		if rng.Float64() < 0.5 {
			d1.Boundary = append(d1.Boundary, b)
		} else {
			d2.Boundary = append(d2.Boundary, b)
		}
	}

	d1.Stability = clampStability(c.Stability + uniform(rng, -0.1, 0.1))
	d2.Stability = clampStability(c.Stability + uniform(rng, -0.1, 0.1))

	return d1, d2
}

func clampStability(s float64) float64 {
	if s < 0.1 {
		return 0.1
	}
	if s > maxStability {
		return maxStability
	}
	return s
}
