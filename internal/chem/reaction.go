package chem

import (
	"math"
	"sort"
	"strings"
)

// catalystBoost scales the logarithmic rate amplification per catalyst.
const catalystBoost = 5.0

// Reaction is a transformation from a reactant multiset to a product
// multiset. Reactions are immutable after creation except for the catalyst
// set, which only grows.
type Reaction struct {
	Reactants []*Molecule
	Products  []*Molecule
	BaseRate  float64
	Energy    float64

	catalysts map[string]struct{}
}

// NewReaction creates a reaction with an empty catalyst set.
func NewReaction(reactants, products []*Molecule, baseRate, energy float64) *Reaction {
	return &Reaction{
		Reactants: reactants,
		Products:  products,
		BaseRate:  baseRate,
		Energy:    energy,
		catalysts: make(map[string]struct{}),
	}
}

// AddCatalyst records a molecule as a catalyst for this reaction.
// Idempotent: adding the same molecule twice has no effect.
func (r *Reaction) AddCatalyst(m *Molecule) {
	r.catalysts[m.Name] = struct{}{}
}

// IsCatalyzedBy reports whether the named molecule is already a catalyst.
func (r *Reaction) IsCatalyzedBy(name string) bool {
	_, ok := r.catalysts[name]
	return ok
}

// Catalyzed reports whether the reaction has at least one catalyst.
func (r *Reaction) Catalyzed() bool {
	return len(r.catalysts) > 0
}

// CatalystCount returns the number of distinct catalysts.
func (r *Reaction) CatalystCount() int {
	return len(r.catalysts)
}

// Catalysts returns the catalyst names in sorted order.
func (r *Reaction) Catalysts() []string {
	names := make([]string, 0, len(r.catalysts))
	for name := range r.catalysts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EffectiveRate returns the base rate amplified by the catalyst set:
// base · (1 + 5·ln(1+k)) for k catalysts. Monotonically non-decreasing
// in k, with logarithmic diminishing returns.
func (r *Reaction) EffectiveRate() float64 {
	k := len(r.catalysts)
	if k == 0 {
		return r.BaseRate
	}
	return r.BaseRate * (1 + catalystBoost*math.Log(1+float64(k)))
}

// EntropyReduction is a proxy for order creation: the aggregate complexity
// gained across the reaction, amplified by 1.5 when catalyzed. Positive
// values mean the products are more complex than the reactants.
func (r *Reaction) EntropyReduction() float64 {
	var in, out float64
	for _, m := range r.Reactants {
		in += m.Complexity
	}
	for _, m := range r.Products {
		out += m.Complexity
	}
	factor := 1.0
	if r.Catalyzed() {
		factor = 1.5
	}
	return -(in - out) * factor
}

// HasReactant reports whether the named molecule appears among the reactants.
func (r *Reaction) HasReactant(name string) bool {
	for _, m := range r.Reactants {
		if m.Name == name {
			return true
		}
	}
	return false
}

// String renders the reaction as "A + B -> C".
func (r *Reaction) String() string {
	in := make([]string, len(r.Reactants))
	for i, m := range r.Reactants {
		in[i] = m.Name
	}
	out := make([]string, len(r.Products))
	for i, m := range r.Products {
		out[i] = m.Name
	}
	return strings.Join(in, " + ") + " -> " + strings.Join(out, " + ")
}
