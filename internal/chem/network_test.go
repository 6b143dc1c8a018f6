package chem

import (
	"testing"
)

func seedPrimordial(n *ChemicalNetwork) {
	n.AddMolecules("H2O", 1.0, false, 100)
	n.AddMolecules("CO2", 1.2, false, 100)
	n.AddMolecules("CH4", 1.1, false, 80)
	n.AddMolecules("NH3", 1.1, false, 80)
	n.AddMolecules("HCN", 1.5, false, 40)
}

func TestGenerateInitialReactions_CondensationDiscovery(t *testing.T) {
	n := NewChemicalNetwork(NewRand(7))
	n.AddMolecules("H2O", 1.0, false, 100)
	n.AddMolecules("CO2", 1.2, false, 100)

	n.GenerateInitialReactions()

	var found *Reaction
	for _, r := range n.Reactions() {
		if r.HasReactant("H2O") && r.HasReactant("CO2") {
			found = r
			break
		}
	}
	if found == nil {
		t.Fatal("Expected a reaction with reactants {H2O, CO2}")
	}
	if len(found.Products) != 1 || found.Products[0].Name != "H2CO3" {
		t.Errorf("Expected product H2CO3, got %v", found.Products)
	}

	product, ok := n.Species("H2CO3")
	if !ok {
		t.Fatal("Expected H2CO3 registered as a species")
	}
	min := (1.0 + 1.2) * 1.0
	max := (1.0 + 1.2) * 1.2
	if product.Complexity < min || product.Complexity > max {
		t.Errorf("Expected product complexity in [%f,%f], got %f", min, max, product.Complexity)
	}
}

func TestGenerateInitialReactions_SkipsLongPairs(t *testing.T) {
	n := NewChemicalNetwork(NewRand(7))
	n.AddMolecules("glycerol", 3.0, false, 50) // length 8
	n.AddMolecules("stearate", 3.0, false, 50) // length 8

	n.GenerateInitialReactions()

	for _, r := range n.Reactions() {
		if r.HasReactant("glycerol") && r.HasReactant("stearate") {
			t.Error("Expected pair with both names longer than 4 to be skipped")
		}
	}
}

func TestGenerateInitialReactions_Decomposition(t *testing.T) {
	n := NewChemicalNetwork(NewRand(7))
	n.AddMolecules("H2CO3", 2.0, false, 50) // length 5: decomposes
	n.AddMolecules("H2O", 1.0, false, 50)

	n.GenerateInitialReactions()

	found := false
	for _, r := range n.Reactions() {
		if len(r.Reactants) == 1 && r.Reactants[0].Name == "H2CO3" {
			found = true
			if len(r.Products) != 2 {
				t.Errorf("Expected 2 decomposition fragments, got %d", len(r.Products))
			}
			if r.BaseRate >= 0.005 {
				t.Errorf("Expected slow decomposition rate, got %f", r.BaseRate)
			}
		}
	}
	if !found {
		t.Error("Expected a decomposition reaction for H2CO3")
	}
}

func TestUpdate_MassAccounting(t *testing.T) {
	// All trials fire: Float64 always returns 0, below any positive
	// probability.
	n := NewChemicalNetwork(&stubRand{Value: 0})
	n.AddMolecules("AA", 1.0, false, 5)
	n.AddMolecules("BB", 1.0, false, 5)
	n.AddMolecules("AB", 2.0, false, 0)

	a, _ := n.Species("AA")
	b, _ := n.Species("BB")
	p, _ := n.Species("AB")
	n.AddReaction(NewReaction([]*Molecule{a, b}, []*Molecule{p}, 1.0, 0))

	n.Update()

	counts := n.GetMoleculeCounts()
	if _, ok := counts["AA"]; ok {
		t.Errorf("Expected AA fully consumed and removed, got %d", counts["AA"])
	}
	if _, ok := counts["BB"]; ok {
		t.Errorf("Expected BB fully consumed and removed, got %d", counts["BB"])
	}
	if counts["AB"] != 5 {
		t.Errorf("Expected 5 units of AB produced, got %d", counts["AB"])
	}
}

func TestUpdate_EventCap(t *testing.T) {
	n := NewChemicalNetwork(&stubRand{Value: 0})
	n.AddMolecules("AA", 1.0, false, 100)
	n.AddMolecules("BB", 1.0, false, 100)
	n.AddMolecules("AB", 2.0, false, 0)

	a, _ := n.Species("AA")
	b, _ := n.Species("BB")
	p, _ := n.Species("AB")
	n.AddReaction(NewReaction([]*Molecule{a, b}, []*Molecule{p}, 1.0, 0))

	n.Update()

	counts := n.GetMoleculeCounts()
	if counts["AB"] != 10 {
		t.Errorf("Expected events capped at 10 per reaction per step, got %d", counts["AB"])
	}
	if counts["AA"] != 90 || counts["BB"] != 90 {
		t.Errorf("Expected 10 units consumed of each reactant, got AA=%d BB=%d", counts["AA"], counts["BB"])
	}
}

func TestUpdate_NonNegativeCounts(t *testing.T) {
	n := NewChemicalNetwork(NewRand(23))
	seedPrimordial(n)
	n.GenerateInitialReactions()

	for step := 0; step < 50; step++ {
		n.Update()
		for name, count := range n.GetMoleculeCounts() {
			if count <= 0 {
				t.Fatalf("step %d: molecule %s has non-positive count %d still in pool", step, name, count)
			}
		}
	}
}

func TestUpdate_CatalystRescan(t *testing.T) {
	n := NewChemicalNetwork(&stubRand{Value: 0.999})
	n.AddMolecules("abc", 1.0, false, 10)
	n.AddMolecules("def", 1.0, false, 10)
	n.AddMolecules("abcdef", 2.0, false, 5)

	a, _ := n.Species("abc")
	b, _ := n.Species("def")
	p, _ := n.Species("abcdef")
	r := NewReaction([]*Molecule{a, b}, []*Molecule{p}, 0.01, 0)
	n.AddReaction(r)

	n.Update()

	// "abcdef" contains the reactant name "abc", so it should have been
	// picked up as a catalyst; "abc" matches the product name too.
	if !r.IsCatalyzedBy("abcdef") {
		t.Error("Expected abcdef registered as catalyst")
	}
	if !r.IsCatalyzedBy("abc") {
		t.Error("Expected abc registered as catalyst")
	}
}

func TestUpdate_CompartmentFormation(t *testing.T) {
	n := NewChemicalNetwork(&stubRand{Value: 0})
	n.AddMolecules("lipid", 3.0, true, 25)

	n.Update()

	comps := n.Compartments()
	if len(comps) != 1 {
		t.Fatalf("Expected exactly 1 compartment, got %d", len(comps))
	}
	c := comps[0]
	if len(c.Boundary) == 0 || len(c.Boundary) > 10 {
		t.Errorf("Expected 1-10 boundary molecules, got %d", len(c.Boundary))
	}

	free := n.GetMoleculeCounts()["lipid"]
	if free >= 25 {
		t.Errorf("Expected free amphiphile count reduced below 25, got %d", free)
	}
}

func TestUpdate_NoFormationBelowThreshold(t *testing.T) {
	n := NewChemicalNetwork(&stubRand{Value: 0})
	n.AddMolecules("lipid", 3.0, true, 19)

	n.Update()

	if got := len(n.Compartments()); got != 0 {
		t.Errorf("Expected no compartment below the amphiphile threshold, got %d", got)
	}
}

func TestUpdate_Dissolution(t *testing.T) {
	n := NewChemicalNetwork(&stubRand{Value: 0.999})
	n.AddMolecules("AAA", 1.0, false, 5)

	c := NewCompartment(Vec2{X: 0.5, Y: 0.5})
	c.Stability = 0.5
	c.AddInterior("AAA", 3)
	n.AddCompartment(c)

	prev := c.Stability
	steps := 0
	for len(n.Compartments()) > 0 {
		n.Update()
		steps++
		if comps := n.Compartments(); len(comps) > 0 {
			if comps[0].Stability >= prev {
				t.Fatalf("Expected strictly decreasing stability, got %f", comps[0].Stability)
			}
			prev = comps[0].Stability
		}
		if steps > 20 {
			t.Fatal("Compartment never dissolved")
		}
	}

	// Interior molecules return to the free pool on dissolution.
	if got := n.GetMoleculeCounts()["AAA"]; got != 8 {
		t.Errorf("Expected 8 units of AAA back in the pool, got %d", got)
	}
}

func TestUpdate_Division(t *testing.T) {
	n := NewChemicalNetwork(NewRand(31))
	n.AddMolecules("AAA", 1.0, false, 5)

	c := NewCompartment(Vec2{X: 0.5, Y: 0.5})
	c.Radius = 0.2
	c.Age = 20
	// 150 boundary molecules at radius 0.2 puts recomputed stability at
	// 0.65, above the division threshold.
	lipid := &Molecule{Name: "lipid", Amphiphilic: true}
	for i := 0; i < 150; i++ {
		c.Boundary = append(c.Boundary, lipid)
	}
	c.AddInterior("AAA", 10)
	n.AddCompartment(c)

	n.Update()

	comps := n.Compartments()
	if len(comps) != 2 {
		t.Fatalf("Expected division into 2 daughters, got %d compartments", len(comps))
	}
	if got := comps[0].Molecules["AAA"] + comps[1].Molecules["AAA"]; got != 10 {
		t.Errorf("Expected interior conserved across division, got %d", got)
	}
}

func TestUpdate_DivisionPreservesSibling(t *testing.T) {
	n := NewChemicalNetwork(NewRand(31))

	lipid := &Molecule{Name: "lipid", Amphiphilic: true}

	parent := NewCompartment(Vec2{X: 0.3, Y: 0.3})
	parent.Radius = 0.2
	parent.Age = 20
	for i := 0; i < 150; i++ {
		parent.Boundary = append(parent.Boundary, lipid)
	}
	parent.AddInterior("AAA", 10)
	n.AddCompartment(parent)

	// Below the division radius, so the sibling only ages this step.
	sibling := NewCompartment(Vec2{X: 0.7, Y: 0.7})
	sibling.Radius = 0.1
	sibling.Age = 5
	for i := 0; i < 150; i++ {
		sibling.Boundary = append(sibling.Boundary, lipid)
	}
	sibling.AddInterior("BBB", 7)
	n.AddCompartment(sibling)

	n.Update()

	comps := n.Compartments()
	if len(comps) != 3 {
		t.Fatalf("Expected 2 daughters plus the sibling, got %d compartments", len(comps))
	}

	seen := make(map[string]int)
	for _, c := range comps {
		seen[c.ID]++
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("Expected compartment %s to appear once, got %d", id, count)
		}
	}
	if seen[sibling.ID] != 1 {
		t.Error("Expected the sibling to survive the division")
	}

	bbb := 0
	for _, c := range comps {
		bbb += c.Molecules["BBB"]
	}
	if bbb != 7 {
		t.Errorf("Expected sibling interior intact, got %d BBB inside compartments", bbb)
	}
}

func TestUpdate_MetricsRecorded(t *testing.T) {
	n := NewChemicalNetwork(NewRand(5))
	seedPrimordial(n)
	n.GenerateInitialReactions()

	for i := 0; i < 15; i++ {
		n.Update()
	}

	m := n.MetricsSnapshot()
	if m.Len() != 15 {
		t.Fatalf("Expected 15 metric entries, got %d", m.Len())
	}
	if len(m.EntropyReduction) != 15 || len(m.CatalyticActivity) != 15 || len(m.AvgStability) != 15 {
		t.Error("Expected all series to advance in parallel")
	}
	if n.TimeStep() != 15 {
		t.Errorf("Expected time step 15, got %d", n.TimeStep())
	}
}

func TestDiscoverNewReactions_BoundedNames(t *testing.T) {
	n := NewChemicalNetwork(NewRand(13))
	seedPrimordial(n)
	n.GenerateInitialReactions()
	initial := len(n.Reactions())

	for i := 0; i < 40; i++ {
		n.Update()
	}

	reactions := n.Reactions()
	if len(reactions) < initial {
		t.Errorf("Reaction catalog shrank from %d to %d", initial, len(reactions))
	}
	for _, r := range reactions {
		for _, p := range r.Products {
			if len(p.Name) > maxProductNameLen+1 {
				t.Errorf("Product name %q exceeds the discovery bound", p.Name)
			}
		}
	}
}

// countingChemistry counts Combine calls while delegating to an inner
// strategy.
type countingChemistry struct {
	inner    Chemistry
	combines int
}

func (c *countingChemistry) Combine(a, b *Molecule) (string, bool) {
	c.combines++
	return c.inner.Combine(a, b)
}

func (c *countingChemistry) Decompose(m *Molecule) []string {
	return c.inner.Decompose(m)
}

func TestDiscoverNewReactions_CombinesOncePerPair(t *testing.T) {
	rng := &stubRand{Value: 0}
	n := NewChemicalNetwork(rng)
	cc := &countingChemistry{inner: NewNameChemistry(rng)}
	n.SetChemistry(cc)
	n.AddMolecules("AA", 1.0, false, 10)
	n.AddMolecules("BB", 1.0, false, 10)

	// Discovery runs on the tenth step; the single uncovered pair must be
	// combined exactly once.
	for i := 0; i < 10; i++ {
		n.Update()
	}

	if cc.combines != 1 {
		t.Errorf("Expected 1 combine for the discovered pair, got %d", cc.combines)
	}
	if got := len(n.Reactions()); got != 1 {
		t.Errorf("Expected 1 discovered reaction, got %d", got)
	}
}

func TestEmptyNetworkDegenerates(t *testing.T) {
	n := NewChemicalNetwork(NewRand(1))

	n.Update() // must not panic

	s := n.GetStatistics()
	if s.TotalMolecules != 0 || s.DistinctTypes != 0 || s.ActiveReactions != 0 {
		t.Errorf("Expected zeroed statistics for empty network, got %+v", s)
	}
	if got := n.CalculateFeedbackCoefficient(); got != 0 {
		t.Errorf("Expected feedback coefficient 0, got %f", got)
	}
	fa := n.GetFinalAnalysis()
	if fa.AutocatalyticCycles != 0 || fa.ComplexityScore != 0 {
		t.Errorf("Expected zeroed final analysis, got %+v", fa)
	}
}
