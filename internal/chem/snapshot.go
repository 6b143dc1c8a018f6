package chem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SpeciesRecord is the serialized form of a molecule type.
type SpeciesRecord struct {
	Name                string  `json:"name"`
	Complexity          float64 `json:"complexity"`
	Amphiphilic         bool    `json:"amphiphilic"`
	HydrophobicStrength float64 `json:"hydrophobic_strength,omitempty"`
}

// CompartmentSnapshot is the serialized form of a compartment.
type CompartmentSnapshot struct {
	ID            string         `json:"id"`
	Position      Vec2           `json:"position"`
	Radius        float64        `json:"radius"`
	Stability     float64        `json:"stability"`
	Age           int            `json:"age"`
	Molecules     map[string]int `json:"molecules"`
	BoundaryCount int            `json:"boundary_count"`
}

// Snapshot is a point-in-time capture of a network's state.
type Snapshot struct {
	NetworkID    string                `json:"network_id"`
	TimeStep     int                   `json:"time_step"`
	Molecules    map[string]int        `json:"molecules"`
	Species      []SpeciesRecord       `json:"species"`
	Compartments []CompartmentSnapshot `json:"compartments"`
}

// Snapshot captures the current network state.
func (n *ChemicalNetwork) Snapshot() Snapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.snapshotLocked()
}

func (n *ChemicalNetwork) snapshotLocked() Snapshot {
	s := Snapshot{
		NetworkID: n.id,
		TimeStep:  n.timeStep,
		Molecules: make(map[string]int, len(n.molecules)),
	}
	for name, count := range n.molecules {
		s.Molecules[name] = count
	}
	for _, name := range n.sortedSpeciesNames() {
		m := n.species[name]
		s.Species = append(s.Species, SpeciesRecord{
			Name:                m.Name,
			Complexity:          m.Complexity,
			Amphiphilic:         m.Amphiphilic,
			HydrophobicStrength: m.HydrophobicStrength,
		})
	}
	for _, c := range n.compartments {
		cs := CompartmentSnapshot{
			ID:            c.ID,
			Position:      c.Position,
			Radius:        c.Radius,
			Stability:     c.Stability,
			Age:           c.Age,
			Molecules:     make(map[string]int, len(c.Molecules)),
			BoundaryCount: len(c.Boundary),
		}
		for name, count := range c.Molecules {
			cs.Molecules[name] = count
		}
		s.Compartments = append(s.Compartments, cs)
	}
	return s
}

// writeSnapshotLocked writes the current state to the snapshot directory as
// <id>-<step>.json. Caller holds the lock.
func (n *ChemicalNetwork) writeSnapshotLocked() error {
	s := n.snapshotLocked()
	data, err := EncodeSnapshotJSON(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(n.snapshotDir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}
	id := n.id
	if id == "" {
		id = "network"
	}
	path := filepath.Join(n.snapshotDir, fmt.Sprintf("%s-%08d.json", id, n.timeStep))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// ValidateSnapshot checks a snapshot for internal consistency: no negative
// counts, no duplicate or unknown species, non-empty compartment IDs.
func ValidateSnapshot(s Snapshot) error {
	known := make(map[string]struct{}, len(s.Species))
	for i, sp := range s.Species {
		if sp.Name == "" {
			return fmt.Errorf("species at index %d has empty name", i)
		}
		if _, dup := known[sp.Name]; dup {
			return fmt.Errorf("duplicate species: %s", sp.Name)
		}
		if sp.Complexity < 0 {
			return fmt.Errorf("species %s has negative complexity", sp.Name)
		}
		known[sp.Name] = struct{}{}
	}

	for name, count := range s.Molecules {
		if count < 0 {
			return fmt.Errorf("molecule %s has negative count %d", name, count)
		}
		if _, ok := known[name]; !ok {
			return fmt.Errorf("molecule %s not present in species table", name)
		}
	}

	for i, c := range s.Compartments {
		if c.ID == "" {
			return fmt.Errorf("compartment at index %d has empty ID", i)
		}
		if c.Radius <= 0 {
			return fmt.Errorf("compartment %s has non-positive radius", c.ID)
		}
		for name, count := range c.Molecules {
			if count < 0 {
				return fmt.Errorf("compartment %s holds negative count of %s", c.ID, name)
			}
		}
	}

	return nil
}

// EncodeSnapshotJSON encodes a snapshot to JSON.
func EncodeSnapshotJSON(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}
