package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Scenario is the wire form of a simulation setup accepted by the server.
type Scenario struct {
	Name        string         `json:"name" yaml:"name"`
	Seed        int64          `json:"seed" yaml:"seed"`
	Bounds      float64        `json:"bounds" yaml:"bounds"`
	Environment string         `json:"environment" yaml:"environment"`
	CyclePeriod int            `json:"cycle_period" yaml:"cycle_period"`
	Molecules   []SeedMolecule `json:"molecules" yaml:"molecules"`
}

// SeedMolecule describes one food molecule seeded into the pool.
type SeedMolecule struct {
	Name        string  `json:"name" yaml:"name"`
	Complexity  float64 `json:"complexity" yaml:"complexity"`
	Amphiphilic bool    `json:"amphiphilic" yaml:"amphiphilic"`
	Count       int     `json:"count" yaml:"count"`
}

// Statistics is the per-step summary returned by the statistics endpoint.
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

// InformationMetrics are structural measures of the reaction network.
type InformationMetrics struct {
	MoleculeTypes int     `json:"molecule_types"`
	ReactionCount int     `json:"reaction_count"`
	Connectivity  float64 `json:"connectivity"`
}

// FinalAnalysis is the end-of-run summary returned by the analysis endpoint.
type FinalAnalysis struct {
	AutocatalyticCycles int                `json:"autocatalytic_cycles"`
	FeedbackCoefficient float64            `json:"feedback_coefficient"`
	ComplexityScore     float64            `json:"complexity_score"`
	Information         InformationMetrics `json:"information"`
}

// Compartment is one live compartment as reported by the server.
type Compartment struct {
	ID                string  `json:"id"`
	Radius            float64 `json:"radius"`
	Stability         float64 `json:"stability"`
	Age               int     `json:"age"`
	InteriorTotal     int     `json:"interior_total"`
	BoundarySize      int     `json:"boundary_size"`
	MetabolicActivity float64 `json:"metabolic_activity"`
}

// ScenarioBuilder provides a fluent API for assembling a Scenario.
// Use it to define the seed molecules and environment of a simulation
// before creating it on a server.
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenario creates a scenario builder with the given name. The name
// doubles as the default simulation ID on the server.
func NewScenario(name string) *ScenarioBuilder {
	return &ScenarioBuilder{scenario: Scenario{Name: name}}
}

// Seed fixes the random seed, making the run reproducible.
func (sb *ScenarioBuilder) Seed(seed int64) *ScenarioBuilder {
	sb.scenario.Seed = seed
	return sb
}

// Bounds sets the side length of the spatial box.
func (sb *ScenarioBuilder) Bounds(bounds float64) *ScenarioBuilder {
	sb.scenario.Bounds = bounds
	return sb
}

// CyclingEnvironment selects the wet/dry cycling environment with the given
// period in steps. Without this, the scenario uses the neutral environment.
func (sb *ScenarioBuilder) CyclingEnvironment(period int) *ScenarioBuilder {
	sb.scenario.Environment = "cycling"
	sb.scenario.CyclePeriod = period
	return sb
}

// Molecule seeds count units of a plain molecule type.
func (sb *ScenarioBuilder) Molecule(name string, complexity float64, count int) *ScenarioBuilder {
	sb.scenario.Molecules = append(sb.scenario.Molecules, SeedMolecule{
		Name:       name,
		Complexity: complexity,
		Count:      count,
	})
	return sb
}

// Amphiphile seeds count units of an amphiphilic molecule type, the raw
// material for compartment membranes.
func (sb *ScenarioBuilder) Amphiphile(name string, complexity float64, count int) *ScenarioBuilder {
	sb.scenario.Molecules = append(sb.scenario.Molecules, SeedMolecule{
		Name:        name,
		Complexity:  complexity,
		Amphiphilic: true,
		Count:       count,
	})
	return sb
}

// Build returns the assembled scenario.
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// Client is a typed HTTP client for a protocell server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL
// (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient creates a client using a caller-supplied http.Client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type createSimulationRequest struct {
	ID       string   `json:"id"`
	Scenario Scenario `json:"scenario"`
}

// CreateSimulation creates a simulation from a scenario. An empty id falls
// back to the scenario name.
func (c *Client) CreateSimulation(ctx context.Context, id string, scenario Scenario) error {
	body, err := json.Marshal(createSimulationRequest{ID: id, Scenario: scenario})
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/simulations", bytes.NewReader(body), nil)
}

// ResetSimulation rebuilds an existing simulation from a new scenario,
// keeping its ID.
func (c *Client) ResetSimulation(ctx context.Context, id string, scenario Scenario) error {
	body, err := json.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	return c.do(ctx, http.MethodPut, c.simPath(id, ""), bytes.NewReader(body), nil)
}

// ListSimulations returns the IDs of all simulations on the server.
func (c *Client) ListSimulations(ctx context.Context) ([]string, error) {
	var resp map[string][]string
	if err := c.do(ctx, http.MethodGet, "/simulations", nil, &resp); err != nil {
		return nil, err
	}
	return resp["simulations"], nil
}

// DeleteSimulation stops and removes a simulation.
func (c *Client) DeleteSimulation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.simPath(id, ""), nil, nil)
}

// Step advances the simulation n steps and returns the resulting time step.
func (c *Client) Step(ctx context.Context, id string, n int) (int, error) {
	path := c.simPath(id, "/step")
	if n > 1 {
		path += "?n=" + strconv.Itoa(n)
	}
	var resp map[string]int
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp["time_step"], nil
}

// Run starts ticker-driven stepping with the given interval.
func (c *Client) Run(ctx context.Context, id string, interval time.Duration) error {
	path := c.simPath(id, "/run") + "?interval=" + strconv.Itoa(int(interval.Milliseconds()))
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// Stop halts ticker-driven stepping.
func (c *Client) Stop(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, c.simPath(id, "/stop"), nil, nil)
}

// Statistics fetches the current summary of a simulation.
func (c *Client) Statistics(ctx context.Context, id string) (Statistics, error) {
	var stats Statistics
	err := c.do(ctx, http.MethodGet, c.simPath(id, "/statistics"), nil, &stats)
	return stats, err
}

// Analysis fetches the end-of-run analysis of a simulation.
func (c *Client) Analysis(ctx context.Context, id string) (FinalAnalysis, error) {
	var analysis FinalAnalysis
	err := c.do(ctx, http.MethodGet, c.simPath(id, "/analysis"), nil, &analysis)
	return analysis, err
}

// Molecules fetches the free molecule pool of a simulation.
func (c *Client) Molecules(ctx context.Context, id string) (map[string]int, error) {
	var counts map[string]int
	err := c.do(ctx, http.MethodGet, c.simPath(id, "/molecules"), nil, &counts)
	return counts, err
}

// Compartments fetches the live compartments of a simulation.
func (c *Client) Compartments(ctx context.Context, id string) ([]Compartment, error) {
	var compartments []Compartment
	err := c.do(ctx, http.MethodGet, c.simPath(id, "/compartments"), nil, &compartments)
	return compartments, err
}

// Snapshot fetches the raw snapshot JSON of a simulation.
func (c *Client) Snapshot(ctx context.Context, id string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.simPath(id, "/snapshot"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// NotifierInfo describes one registered notifier.
type NotifierInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type registerWebhookRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

// RegisterWebhook registers a webhook notifier that receives lifecycle
// events. Secret enables HMAC request signing when non-empty.
func (c *Client) RegisterWebhook(ctx context.Context, id, webhookURL, secret string) error {
	cfg := map[string]any{"url": webhookURL}
	if secret != "" {
		cfg["secret"] = secret
	}
	body, err := json.Marshal(registerWebhookRequest{Type: "webhook", ID: id, Config: cfg})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/notifiers", bytes.NewReader(body), nil)
}

// ListNotifiers returns all registered notifiers.
func (c *Client) ListNotifiers(ctx context.Context) ([]NotifierInfo, error) {
	var resp map[string][]NotifierInfo
	if err := c.do(ctx, http.MethodGet, "/notifiers", nil, &resp); err != nil {
		return nil, err
	}
	return resp["notifiers"], nil
}

// UnregisterNotifier removes a notifier by ID.
func (c *Client) UnregisterNotifier(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifiers/"+url.PathEscape(id), nil, nil)
}

func (c *Client) simPath(id, suffix string) string {
	return "/simulations/" + url.PathEscape(id) + suffix
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends a request and decodes the JSON response into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
}
