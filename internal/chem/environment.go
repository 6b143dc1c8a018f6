package chem

import "math"

// Environment is the external environment model consumed by the network.
// It supplies a scalar rate modifier per reaction and two ambient readings
// used by compartment updates. Implementations live outside the engine; two
// simple ones are provided here.
type Environment interface {
	// AffectReaction returns a multiplier applied to the reaction's
	// firing probability. 1.0 means no modulation.
	AffectReaction(r *Reaction) float64

	// WetPhase is the current hydration level in [0, 1]. Values below 0.2
	// count as a dry phase; above 0.8 as a strong wet phase.
	WetPhase() float64

	// Temperature is the normalized temperature in [0, 1].
	Temperature() float64
}

// NeutralEnvironment applies no modulation at all.
type NeutralEnvironment struct{}

func (NeutralEnvironment) AffectReaction(*Reaction) float64 { return 1.0 }
func (NeutralEnvironment) WetPhase() float64                { return 0.5 }
func (NeutralEnvironment) Temperature() float64             { return 0.5 }

// CyclingEnvironment oscillates hydration and temperature on a fixed period,
// modeling wet/dry cycles around a tidal pool. The network advances it once
// per step.
type CyclingEnvironment struct {
	Period int
	step   int
}

// NewCyclingEnvironment creates a cycling environment. Periods below 2 are
// raised to the default of 100 steps.
func NewCyclingEnvironment(period int) *CyclingEnvironment {
	if period < 2 {
		period = 100
	}
	return &CyclingEnvironment{Period: period}
}

// Advance moves the cycle forward one step.
func (e *CyclingEnvironment) Advance() { e.step++ }

// WetPhase follows a sinusoid over the period.
func (e *CyclingEnvironment) WetPhase() float64 {
	phase := 2 * math.Pi * float64(e.step) / float64(e.Period)
	return 0.5 + 0.5*math.Sin(phase)
}

// Temperature follows the same cycle, a quarter period out of phase with
// hydration.
func (e *CyclingEnvironment) Temperature() float64 {
	phase := 2 * math.Pi * float64(e.step) / float64(e.Period)
	return 0.5 + 0.4*math.Cos(phase)
}

// AffectReaction speeds reactions up in warm phases and slows them in cold
// ones. Energy-releasing reactions are slightly less sensitive.
func (e *CyclingEnvironment) AffectReaction(r *Reaction) float64 {
	f := 0.6 + 0.8*e.Temperature()
	if r.Energy > 0 {
		f = 0.8 + 0.4*e.Temperature()
	}
	return f
}
