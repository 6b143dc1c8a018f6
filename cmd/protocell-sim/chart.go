package main

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/oparinlab/protocell/internal/chem"
)

// renderMetricsChart writes a PNG of the recorded metric series: population
// and reaction-catalog size on the primary axis, catalytic activity and
// average compartment stability (both in [0,1]) on the secondary axis.
func renderMetricsChart(m chem.Metrics, path string) error {
	n := m.Len()
	if n < 2 {
		return fmt.Errorf("need at least 2 recorded steps to render a chart, have %d", n)
	}

	xs := make([]float64, n)
	molecules := make([]float64, n)
	reactions := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(i + 1)
		molecules[i] = float64(m.MoleculeCounts[i])
		reactions[i] = float64(m.ReactionCounts[i])
	}

	graph := chart.Chart{
		Title: "chemical network evolution",
		XAxis: chart.XAxis{Name: "step"},
		YAxis: chart.YAxis{Name: "count"},
		YAxisSecondary: chart.YAxis{
			Name:  "ratio",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "molecules",
				XValues: xs,
				YValues: molecules,
			},
			chart.ContinuousSeries{
				Name:    "reactions",
				XValues: xs,
				YValues: reactions,
			},
			chart.ContinuousSeries{
				Name:    "catalytic activity",
				YAxis:   chart.YAxisSecondary,
				XValues: xs,
				YValues: m.CatalyticActivity,
			},
			chart.ContinuousSeries{
				Name:    "avg stability",
				YAxis:   chart.YAxisSecondary,
				XValues: xs,
				YValues: m.AvgStability,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
