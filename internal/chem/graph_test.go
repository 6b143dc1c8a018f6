package chem

import "testing"

func edge(t *testing.T, rg *ReactionGraph, from, to string) {
	t.Helper()
	a := &Molecule{Name: from}
	b := &Molecule{Name: to}
	rg.AddReaction(NewReaction([]*Molecule{a}, []*Molecule{b}, 0.01, 0))
}

func TestAutocatalyticCycles(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  int
	}{
		{
			name: "three cycle counts",
			edges: [][2]string{
				{"AAA", "BBB"}, {"BBB", "CCC"}, {"CCC", "AAA"},
			},
			want: 1,
		},
		{
			name: "two cycle ignored",
			edges: [][2]string{
				{"AAA", "BBB"}, {"BBB", "AAA"},
			},
			want: 0,
		},
		{
			name: "acyclic chain",
			edges: [][2]string{
				{"AAA", "BBB"}, {"BBB", "CCC"}, {"AAA", "CCC"},
			},
			want: 0,
		},
		{
			name:  "empty graph",
			edges: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rg := NewReactionGraph()
			for _, e := range tt.edges {
				edge(t, rg, e[0], e[1])
			}
			if got := rg.AutocatalyticCycles(); got != tt.want {
				t.Errorf("Expected %d cycles, got %d", tt.want, got)
			}
		})
	}
}

func TestAddReaction_CollapsesParallelAndSelfEdges(t *testing.T) {
	rg := NewReactionGraph()
	edge(t, rg, "AAA", "BBB")
	edge(t, rg, "AAA", "BBB") // duplicate
	edge(t, rg, "CCC", "CCC") // self edge

	if got := rg.EdgeCount(); got != 1 {
		t.Errorf("Expected 1 edge after dedup, got %d", got)
	}
	if got := rg.NodeCount(); got != 2 {
		t.Errorf("Expected 2 nodes, got %d", got)
	}
}

func TestConnectivity(t *testing.T) {
	rg := NewReactionGraph()
	if got := rg.Connectivity(); got != 0 {
		t.Errorf("Expected 0 connectivity for empty graph, got %f", got)
	}

	edge(t, rg, "AAA", "BBB")
	edge(t, rg, "BBB", "CCC")
	// 3 nodes, 2 of 6 possible directed edges.
	want := 2.0 / 6.0
	if got := rg.Connectivity(); got != want {
		t.Errorf("Expected connectivity %f, got %f", want, got)
	}
}
