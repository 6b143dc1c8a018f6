package chem

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// feedbackWindow bounds how far back the feedback coefficient looks.
	feedbackWindow = 50

	// feedbackMinSamples is the smallest history that yields a
	// non-degenerate correlation.
	feedbackMinSamples = 10

	// varianceEpsilon: below this a series counts as constant.
	varianceEpsilon = 1e-12
)

// Statistics is the per-step summary consumed by emergence detectors.
type Statistics struct {
	TimeStep         int     `json:"time_step"`
	TotalMolecules   int     `json:"total_molecules"`
	DistinctTypes    int     `json:"distinct_types"`
	ActiveReactions  int     `json:"active_reactions"`
	TotalReactions   int     `json:"total_reactions"`
	CatalystCount    int     `json:"catalyst_count"`
	AmphiphilicCount int     `json:"amphiphilic_count"`
	AvgComplexity    float64 `json:"avg_complexity"`
	EnergyCurrency   float64 `json:"energy_currency"`
	CompartmentCount int     `json:"compartment_count"`
}

// InformationMetrics are simple structural measures of the reaction
// network.
type InformationMetrics struct {
	MoleculeTypes int     `json:"molecule_types"`
	ReactionCount int     `json:"reaction_count"`
	Connectivity  float64 `json:"connectivity"`
}

// FinalAnalysis is the end-of-run summary.
type FinalAnalysis struct {
	AutocatalyticCycles int                `json:"autocatalytic_cycles"`
	FeedbackCoefficient float64            `json:"feedback_coefficient"`
	ComplexityScore     float64            `json:"complexity_score"`
	Information         InformationMetrics `json:"information"`
}

// GetStatistics summarizes the current simulation state. An empty network
// returns all zeros.
func (n *ChemicalNetwork) GetStatistics() Statistics {
	n.mu.RLock()
	defer n.mu.RUnlock()

	s := Statistics{
		TimeStep:        n.timeStep,
		DistinctTypes:   len(n.molecules),
		ActiveReactions: len(n.active),
		TotalReactions:  len(n.reactions),
		EnergyCurrency:  lastFloat(n.metrics.EnergyCurrency),
	}
	s.CompartmentCount = len(n.compartments)

	var weighted float64
	for name, count := range n.molecules {
		s.TotalMolecules += count
		m := n.species[name]
		if m == nil {
			continue
		}
		weighted += float64(count) * m.Complexity
		if m.Amphiphilic {
			s.AmphiphilicCount += count
		}
	}
	if s.TotalMolecules > 0 {
		s.AvgComplexity = weighted / float64(s.TotalMolecules)
	}

	catalysts := make(map[string]struct{})
	for _, r := range n.reactions {
		for _, name := range r.Catalysts() {
			catalysts[name] = struct{}{}
		}
	}
	s.CatalystCount = len(catalysts)

	return s
}

// CalculateFeedbackCoefficient returns the Pearson correlation between the
// recent entropy-reduction and catalytic-activity series, a proxy for a
// self-reinforcing order-creating loop. Returns 0 when fewer than ten
// samples exist or either series has near-zero variance; the result is
// always in [-1, 1].
func (n *ChemicalNetwork) CalculateFeedbackCoefficient() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return feedbackCoefficient(n.metrics.EntropyReduction, n.metrics.CatalyticActivity)
}

func feedbackCoefficient(entropy, catalytic []float64) float64 {
	x := tail(entropy, feedbackWindow)
	y := tail(catalytic, feedbackWindow)
	if len(x) != len(y) || len(x) < feedbackMinSamples {
		return 0
	}
	if stat.Variance(x, nil) < varianceEpsilon || stat.Variance(y, nil) < varianceEpsilon {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// GetFinalAnalysis computes the end-of-run summary: autocatalytic cycle
// count, the feedback coefficient, a 0-10 complexity score, and structural
// information metrics. Every component degrades to zero on degenerate
// state.
func (n *ChemicalNetwork) GetFinalAnalysis() FinalAnalysis {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return FinalAnalysis{
		AutocatalyticCycles: n.graph.AutocatalyticCycles(),
		FeedbackCoefficient: feedbackCoefficient(n.metrics.EntropyReduction, n.metrics.CatalyticActivity),
		ComplexityScore:     n.complexityScore(),
		Information: InformationMetrics{
			MoleculeTypes: len(n.species),
			ReactionCount: len(n.reactions),
			Connectivity:  n.graph.Connectivity(),
		},
	}
}

// complexityScore blends average complexity, type diversity, reaction
// density, catalyst ratio, and amphiphile ratio into a 0-10 score. Caller
// holds at least a read lock.
func (n *ChemicalNetwork) complexityScore() float64 {
	types := len(n.species)
	if types == 0 {
		return 0
	}

	var complexitySum float64
	amphiphilic := 0
	for _, m := range n.species {
		complexitySum += m.Complexity
		if m.Amphiphilic {
			amphiphilic++
		}
	}
	avgComplexity := complexitySum / float64(types)

	catalyzed := 0
	for _, r := range n.reactions {
		if r.Catalyzed() {
			catalyzed++
		}
	}
	catalystRatio := 0.0
	if len(n.reactions) > 0 {
		catalystRatio = float64(catalyzed) / float64(len(n.reactions))
	}
	reactionDensity := float64(len(n.reactions)) / float64(types)
	amphRatio := float64(amphiphilic) / float64(types)

	score := 2.5*math.Tanh(avgComplexity/20) +
		2.5*math.Tanh(float64(types)/30) +
		2.0*math.Tanh(reactionDensity/3) +
		1.5*catalystRatio +
		1.5*amphRatio

	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
