package chem

// Metrics records one entry per simulation step across a set of parallel
// time series. The series are consumed by emergence detectors and by the
// feedback-coefficient analysis; all slices always have equal length.
type Metrics struct {
	MoleculeCounts    []int     `json:"molecule_counts"`
	ReactionCounts    []int     `json:"reaction_counts"`
	Complexity        []float64 `json:"complexity"`
	EnergyCurrency    []float64 `json:"energy_currency"`
	EntropyReduction  []float64 `json:"entropy_reduction"`
	CatalyticActivity []float64 `json:"catalytic_activity"`
	CompartmentCount  []int     `json:"compartment_count"`
	AvgStability      []float64 `json:"avg_stability"`
}

// NewMetrics creates an empty metrics recorder.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Len returns the number of recorded steps.
func (m *Metrics) Len() int {
	return len(m.MoleculeCounts)
}

// Copy returns a deep copy, safe to hand to readers outside the network
// lock.
func (m *Metrics) Copy() Metrics {
	return Metrics{
		MoleculeCounts:    append([]int(nil), m.MoleculeCounts...),
		ReactionCounts:    append([]int(nil), m.ReactionCounts...),
		Complexity:        append([]float64(nil), m.Complexity...),
		EnergyCurrency:    append([]float64(nil), m.EnergyCurrency...),
		EntropyReduction:  append([]float64(nil), m.EntropyReduction...),
		CatalyticActivity: append([]float64(nil), m.CatalyticActivity...),
		CompartmentCount:  append([]int(nil), m.CompartmentCount...),
		AvgStability:      append([]float64(nil), m.AvgStability...),
	}
}

// lastFloat returns the final value of a series, or 0 for an empty one.
func lastFloat(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// tail returns at most the last n elements of a series.
func tail(s []float64, n int) []float64 {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
