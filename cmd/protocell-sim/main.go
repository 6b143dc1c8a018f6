package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/oparinlab/protocell/internal/chem"
)

func main() {
	var (
		scenarioFile = flag.String("scenario", "", "path to scenario YAML file (required)")
		steps        = flag.Int("steps", 500, "number of simulation steps to run")
		seed         = flag.Int64("seed", 0, "random seed override (0 keeps the scenario's seed)")
		chartFile    = flag.String("chart", "", "optional path for a PNG chart of the metric series")
		snapshotFile = flag.String("snapshot", "", "optional path to write the final snapshot JSON")
	)
	flag.Parse()

	if *scenarioFile == "" {
		fmt.Fprintf(os.Stderr, "error: --scenario is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := chem.LoadScenarioFile(*scenarioFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading scenario: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	network, err := chem.BuildNetworkFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building network: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < *steps; i++ {
		network.Update()
	}

	printSummary(cfg.Name, *steps, network)

	if *chartFile != "" {
		if err := renderMetricsChart(network.MetricsSnapshot(), *chartFile); err != nil {
			fmt.Fprintf(os.Stderr, "error rendering chart: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Metrics chart written to %s\n", *chartFile)
	}

	if *snapshotFile != "" {
		data, err := chem.EncodeSnapshotJSON(network.Snapshot())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error encoding snapshot: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*snapshotFile, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snapshot written to %s\n", *snapshotFile)
	}
}

func printSummary(name string, steps int, network *chem.ChemicalNetwork) {
	stats := network.GetStatistics()
	analysis := network.GetFinalAnalysis()

	fmt.Printf("Simulation finished (scenario=%s, steps=%d)\n", name, steps)
	fmt.Printf("  Molecules:            %d units across %d types\n", stats.TotalMolecules, stats.DistinctTypes)
	fmt.Printf("  Reactions:            %d (%d active, %d distinct catalysts)\n", stats.TotalReactions, stats.ActiveReactions, stats.CatalystCount)
	fmt.Printf("  Compartments:         %d\n", stats.CompartmentCount)
	fmt.Printf("  Avg complexity:       %.3f\n", stats.AvgComplexity)
	fmt.Printf("  Energy currency:      %.3f\n", stats.EnergyCurrency)
	fmt.Printf("  Autocatalytic cycles: %d\n", analysis.AutocatalyticCycles)
	fmt.Printf("  Feedback coefficient: %.3f\n", analysis.FeedbackCoefficient)
	fmt.Printf("  Complexity score:     %.2f / 10\n", analysis.ComplexityScore)

	counts := network.GetMoleculeCounts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 10 {
		names = names[:10]
	}

	fmt.Println("Top molecule counts:")
	for _, name := range names {
		fmt.Printf("  %s: %d\n", name, counts[name])
	}
}
