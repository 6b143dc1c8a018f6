package chem

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedMoleculeConfig describes one food molecule seeded into the pool.
type SeedMoleculeConfig struct {
	Name        string  `yaml:"name" json:"name"`
	Complexity  float64 `yaml:"complexity" json:"complexity"`
	Amphiphilic bool    `yaml:"amphiphilic" json:"amphiphilic"`
	Count       int     `yaml:"count" json:"count"`
}

// ScenarioConfig describes a full simulation setup: the seed molecules,
// the spatial bounds, the environment model, and the random seed.
type ScenarioConfig struct {
	Name        string               `yaml:"name" json:"name"`
	Seed        int64                `yaml:"seed" json:"seed"`
	Bounds      float64              `yaml:"bounds" json:"bounds"`
	Environment string               `yaml:"environment" json:"environment"`
	CyclePeriod int                  `yaml:"cycle_period" json:"cycle_period"`
	Molecules   []SeedMoleculeConfig `yaml:"molecules" json:"molecules"`
}

// LoadScenarioFile reads and validates a YAML scenario file.
func LoadScenarioFile(path string) (ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScenarioConfig{}, fmt.Errorf("reading scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates YAML scenario bytes.
func ParseScenario(data []byte) (ScenarioConfig, error) {
	var cfg ScenarioConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ScenarioConfig{}, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := ValidateScenarioConfig(cfg); err != nil {
		return ScenarioConfig{}, err
	}
	return cfg, nil
}

// BuildNetworkFromConfig validates the scenario, seeds a network from it,
// and generates the initial reaction catalog.
func BuildNetworkFromConfig(cfg ScenarioConfig) (*ChemicalNetwork, error) {
	if err := ValidateScenarioConfig(cfg); err != nil {
		return nil, err
	}

	rng := NewRand(cfg.Seed)
	n := NewChemicalNetwork(rng)
	n.SetID(cfg.Name)
	if cfg.Bounds > 0 {
		n.SetBounds(cfg.Bounds)
	}

	switch cfg.Environment {
	case "", "neutral":
		// Default already neutral.
	case "cycling":
		n.SetEnvironment(NewCyclingEnvironment(cfg.CyclePeriod))
	}

	for _, m := range cfg.Molecules {
		n.AddMolecules(m.Name, m.Complexity, m.Amphiphilic, m.Count)
	}
	n.GenerateInitialReactions()

	return n, nil
}
