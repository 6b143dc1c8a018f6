package chem

import (
	"math"
	"testing"
)

func TestFeedbackCoefficient(t *testing.T) {
	linear := func(n int, slope float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = slope * float64(i)
		}
		return out
	}

	tests := []struct {
		name      string
		entropy   []float64
		catalytic []float64
		want      float64
	}{
		{
			name:      "too few samples",
			entropy:   linear(9, 1),
			catalytic: linear(9, 1),
			want:      0,
		},
		{
			name:      "constant entropy series",
			entropy:   make([]float64, 20),
			catalytic: linear(20, 1),
			want:      0,
		},
		{
			name:      "constant catalytic series",
			entropy:   linear(20, 1),
			catalytic: make([]float64, 20),
			want:      0,
		},
		{
			name:      "perfect positive correlation",
			entropy:   linear(20, 2),
			catalytic: linear(20, 0.5),
			want:      1,
		},
		{
			name:      "perfect negative correlation",
			entropy:   linear(20, 1),
			catalytic: linear(20, -1),
			want:      -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feedbackCoefficient(tt.entropy, tt.catalytic)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected coefficient %f, got %f", tt.want, got)
			}
		})
	}
}

func TestFeedbackCoefficient_UsesRecentWindow(t *testing.T) {
	// Old anticorrelated history beyond the window must not leak in.
	entropy := make([]float64, 100)
	catalytic := make([]float64, 100)
	for i := 0; i < 100; i++ {
		entropy[i] = float64(i)
		if i < 50 {
			catalytic[i] = -float64(i)
		} else {
			catalytic[i] = float64(i)
		}
	}
	got := feedbackCoefficient(entropy, catalytic)
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("Expected coefficient 1 over the recent window, got %f", got)
	}
}

func TestGetStatistics(t *testing.T) {
	n := NewChemicalNetwork(NewRand(3))
	n.AddMolecules("H2O", 1.0, false, 10)
	n.AddMolecules("lipid", 3.0, true, 4)

	s := n.GetStatistics()
	if s.TotalMolecules != 14 {
		t.Errorf("Expected 14 total molecules, got %d", s.TotalMolecules)
	}
	if s.DistinctTypes != 2 {
		t.Errorf("Expected 2 distinct types, got %d", s.DistinctTypes)
	}
	if s.AmphiphilicCount != 4 {
		t.Errorf("Expected 4 amphiphilic units, got %d", s.AmphiphilicCount)
	}
	want := (10*1.0 + 4*3.0) / 14.0
	if math.Abs(s.AvgComplexity-want) > 1e-9 {
		t.Errorf("Expected average complexity %f, got %f", want, s.AvgComplexity)
	}
}

func TestGetStatistics_CatalystCountDistinct(t *testing.T) {
	n := NewChemicalNetwork(NewRand(3))
	a := &Molecule{Name: "abc", Complexity: 1}
	b := &Molecule{Name: "def", Complexity: 1}
	p := &Molecule{Name: "abcdef", Complexity: 2}
	cat := &Molecule{Name: "abcdef", Complexity: 2}

	r1 := NewReaction([]*Molecule{a}, []*Molecule{p}, 0.01, 0)
	r2 := NewReaction([]*Molecule{b}, []*Molecule{p}, 0.01, 0)
	r1.AddCatalyst(cat)
	r2.AddCatalyst(cat)
	n.AddReaction(r1)
	n.AddReaction(r2)

	s := n.GetStatistics()
	if s.CatalystCount != 1 {
		t.Errorf("Expected 1 distinct catalyst across reactions, got %d", s.CatalystCount)
	}
}

func TestComplexityScore_Bounds(t *testing.T) {
	n := NewChemicalNetwork(NewRand(9))
	seedPrimordial(n)
	n.GenerateInitialReactions()
	for i := 0; i < 30; i++ {
		n.Update()
	}

	fa := n.GetFinalAnalysis()
	if fa.ComplexityScore < 0 || fa.ComplexityScore > 10 {
		t.Errorf("Expected complexity score in [0,10], got %f", fa.ComplexityScore)
	}
	if fa.ComplexityScore == 0 {
		t.Error("Expected non-zero score for a populated network")
	}
	if fa.FeedbackCoefficient < -1 || fa.FeedbackCoefficient > 1 {
		t.Errorf("Expected feedback coefficient in [-1,1], got %f", fa.FeedbackCoefficient)
	}
	if fa.Information.MoleculeTypes == 0 || fa.Information.ReactionCount == 0 {
		t.Error("Expected populated information metrics")
	}
}
