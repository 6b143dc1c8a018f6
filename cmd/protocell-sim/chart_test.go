package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oparinlab/protocell/internal/chem"
)

func TestRenderMetricsChart(t *testing.T) {
	cfg := chem.ScenarioConfig{
		Name: "chart-test",
		Seed: 5,
		Molecules: []chem.SeedMoleculeConfig{
			{Name: "H2O", Complexity: 1.0, Count: 100},
			{Name: "CO2", Complexity: 1.2, Count: 100},
		},
	}
	network, err := chem.BuildNetworkFromConfig(cfg)
	if err != nil {
		t.Fatalf("Building network: %v", err)
	}
	for i := 0; i < 20; i++ {
		network.Update()
	}

	path := filepath.Join(t.TempDir(), "metrics.png")
	if err := renderMetricsChart(network.MetricsSnapshot(), path); err != nil {
		t.Fatalf("Expected chart render to succeed, got %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected chart file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected non-empty chart file")
	}
}

func TestRenderMetricsChart_TooFewSteps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.png")
	if err := renderMetricsChart(chem.Metrics{}, path); err == nil {
		t.Error("Expected error for empty metric series")
	}
}
