package chem

import (
	"math"
	"testing"
)

func TestNewMolecule(t *testing.T) {
	rng := NewRand(1)

	m := NewMolecule("H2O", 1.5, false, 1.0, rng)
	if m.Name != "H2O" {
		t.Errorf("Expected name 'H2O', got '%s'", m.Name)
	}
	if m.Complexity != 1.5 {
		t.Errorf("Expected complexity 1.5, got %f", m.Complexity)
	}
	if m.HydrophobicStrength != 0 {
		t.Errorf("Expected zero hydrophobic strength for non-amphiphile, got %f", m.HydrophobicStrength)
	}
	if m.Position.X < 0 || m.Position.X > 1 || m.Position.Y < 0 || m.Position.Y > 1 {
		t.Errorf("Expected position inside [0,1] box, got %+v", m.Position)
	}

	a := NewMolecule("lipid", 3.0, true, 1.0, rng)
	if !a.Amphiphilic {
		t.Error("Expected amphiphilic molecule")
	}
	if a.HydrophobicStrength < 0.5 || a.HydrophobicStrength > 1.0 {
		t.Errorf("Expected hydrophobic strength in [0.5,1.0], got %f", a.HydrophobicStrength)
	}
}

func TestUpdatePosition_ReflectsAtBounds(t *testing.T) {
	rng := &stubRand{}

	m := &Molecule{Name: "X", Position: Vec2{X: 0.005, Y: 0.5}, Velocity: Vec2{X: -0.01, Y: 0}}
	m.UpdatePosition(1.0, rng)
	if math.Abs(m.Position.X-0.005) > 1e-12 {
		t.Errorf("Expected reflected position 0.005, got %f", m.Position.X)
	}
	if m.Velocity.X <= 0 {
		t.Errorf("Expected velocity to flip positive, got %f", m.Velocity.X)
	}

	m = &Molecule{Name: "X", Position: Vec2{X: 0.5, Y: 0.995}, Velocity: Vec2{X: 0, Y: 0.01}}
	m.UpdatePosition(1.0, rng)
	if math.Abs(m.Position.Y-0.995) > 1e-12 {
		t.Errorf("Expected reflected position 0.995, got %f", m.Position.Y)
	}
	if m.Velocity.Y >= 0 {
		t.Errorf("Expected velocity to flip negative, got %f", m.Velocity.Y)
	}
}

func TestUpdatePosition_ClampsSpeed(t *testing.T) {
	rng := &stubRand{}
	m := &Molecule{Name: "X", Position: Vec2{X: 0.5, Y: 0.5}, Velocity: Vec2{X: 0.04, Y: 0.04}}
	m.UpdatePosition(1.0, rng)
	speed := math.Hypot(m.Velocity.X, m.Velocity.Y)
	if speed > maxSpeed+1e-12 {
		t.Errorf("Expected speed clamped to %f, got %f", maxSpeed, speed)
	}
}

func TestCanCatalyze(t *testing.T) {
	rng := &stubRand{}
	reactantA := &Molecule{Name: "abc"}
	reactantB := &Molecule{Name: "def"}
	product := &Molecule{Name: "abcdef"}
	r := NewReaction([]*Molecule{reactantA, reactantB}, []*Molecule{product}, 0.1, 0)
	_ = rng

	tests := []struct {
		name     string
		molecule string
		want     bool
	}{
		{"substring of product", "bcd", true},
		{"contains a reactant", "xxdefxx", true},
		{"identical to reactant", "abc", true},
		{"too short", "ab", false},
		{"no overlap", "xyz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Molecule{Name: tt.molecule}
			if got := m.CanCatalyze(r); got != tt.want {
				t.Errorf("CanCatalyze(%q) = %v, want %v", tt.molecule, got, tt.want)
			}
		})
	}
}

func TestCanCatalyze_ShortTargetGuard(t *testing.T) {
	// Targets shorter than 3 characters never match, even against a long
	// catalyst name.
	r := NewReaction([]*Molecule{{Name: "ab"}}, []*Molecule{{Name: "cd"}}, 0.1, 0)
	m := &Molecule{Name: "abcd"}
	if m.CanCatalyze(r) {
		t.Error("Expected no catalysis against sub-3-character names")
	}
}
