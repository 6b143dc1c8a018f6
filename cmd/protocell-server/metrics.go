package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oparinlab/protocell/internal/chem"
)

// serverMetrics exposes per-simulation gauges and counters on /metrics.
// Each server instance carries its own registry so tests can spin up
// multiple servers without collector collisions.
type serverMetrics struct {
	registry *prometheus.Registry

	steps        *prometheus.CounterVec
	molecules    *prometheus.GaugeVec
	species      *prometheus.GaugeVec
	reactions    *prometheus.GaugeVec
	compartments *prometheus.GaugeVec
	energy       *prometheus.GaugeVec
}

func newServerMetrics() *serverMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	labels := []string{"simulation"}

	return &serverMetrics{
		registry: registry,
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "protocell_steps_total",
			Help: "Total simulation steps executed via the API.",
		}, labels),
		molecules: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "protocell_molecules",
			Help: "Total molecule units in the free pool.",
		}, labels),
		species: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "protocell_molecule_types",
			Help: "Distinct molecule types in the free pool.",
		}, labels),
		reactions: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "protocell_reactions",
			Help: "Reactions in the catalog.",
		}, labels),
		compartments: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "protocell_compartments",
			Help: "Live compartments.",
		}, labels),
		energy: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "protocell_energy_currency",
			Help: "Accumulated reaction energy currency.",
		}, labels),
	}
}

// observe refreshes the gauges for one simulation from its statistics.
func (m *serverMetrics) observe(id chem.NetworkID, s chem.Statistics) {
	label := string(id)
	m.molecules.WithLabelValues(label).Set(float64(s.TotalMolecules))
	m.species.WithLabelValues(label).Set(float64(s.DistinctTypes))
	m.reactions.WithLabelValues(label).Set(float64(s.TotalReactions))
	m.compartments.WithLabelValues(label).Set(float64(s.CompartmentCount))
	m.energy.WithLabelValues(label).Set(s.EnergyCurrency)
}

// countSteps adds executed steps to the counter.
func (m *serverMetrics) countSteps(id chem.NetworkID, n int) {
	m.steps.WithLabelValues(string(id)).Add(float64(n))
}

// forget drops all series for a deleted simulation.
func (m *serverMetrics) forget(id chem.NetworkID) {
	labels := prometheus.Labels{"simulation": string(id)}
	m.steps.DeletePartialMatch(labels)
	m.molecules.DeletePartialMatch(labels)
	m.species.DeletePartialMatch(labels)
	m.reactions.DeletePartialMatch(labels)
	m.compartments.DeletePartialMatch(labels)
	m.energy.DeletePartialMatch(labels)
}

// handler returns the /metrics HTTP handler for this registry.
func (m *serverMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
