package chem

import (
	"sort"
	"sync"
	"time"
)

const (
	// maxEventsPerReaction caps the Bernoulli trials sampled for one
	// reaction in one step, bounding per-step cost.
	maxEventsPerReaction = 10

	// discoveryInterval is how often (in steps) new reactions are probed.
	discoveryInterval = 10

	// discoverySampleSize bounds how many molecule types are sampled when
	// probing for new reactions.
	discoverySampleSize = 5

	// discoveryProbability is the chance an uncovered sampled pair yields
	// a new reaction.
	discoveryProbability = 0.3

	// maxProductNameLen bounds discovered product names, keeping the
	// combinatorial growth of the type space in check.
	maxProductNameLen = 15

	// formationThreshold is the free amphiphile count at which spontaneous
	// compartment formation becomes possible.
	formationThreshold = 20

	// maxBoundaryPull is how many free amphiphiles a newly formed
	// compartment can recruit into its membrane.
	maxBoundaryPull = 10

	defaultBounds = 1.0
)

// advancer is implemented by environments that carry per-step state.
type advancer interface {
	Advance()
}

// ChemicalNetwork owns a full simulation: the molecule pool, the reaction
// catalog and its graph view, and the active compartments. One Update call
// advances the simulation by one time step. All mutation happens inside
// Update under the network mutex; concurrent readers use the exposed
// accessors.
type ChemicalNetwork struct {
	mu sync.RWMutex

	id        string
	molecules map[string]int       // free pool, name -> count, zero entries removed
	species   map[string]*Molecule // every molecule type ever synthesized or seeded
	reactions []*Reaction
	active    []*Reaction
	covered   map[string]struct{} // reactant pairs already covered by a condensation
	decomped  map[string]struct{} // molecule names that already have a decomposition
	graph     *ReactionGraph

	compartments []*Compartment

	timeStep       int
	energyCurrency float64
	metrics        *Metrics
	bounds         float64

	rng       Rand
	env       Environment
	chemistry Chemistry
	logger    Logger
	notifier  *NotificationManager

	snapshotDir   string
	snapshotEvery int

	stopCh    chan struct{}
	isRunning bool
}

// NewChemicalNetwork creates an empty network with a neutral environment,
// the default name chemistry, and no logging.
func NewChemicalNetwork(rng Rand) *ChemicalNetwork {
	if rng == nil {
		rng = NewRand(0)
	}
	return &ChemicalNetwork{
		molecules: make(map[string]int),
		species:   make(map[string]*Molecule),
		covered:   make(map[string]struct{}),
		decomped:  make(map[string]struct{}),
		graph:     NewReactionGraph(),
		metrics:   NewMetrics(),
		bounds:    defaultBounds,
		rng:       rng,
		env:       NeutralEnvironment{},
		chemistry: NewNameChemistry(rng),
		logger:    NewNoOpLogger(),
		stopCh:    make(chan struct{}),
	}
}

// SetID sets the identifier used in snapshots and notification events.
func (n *ChemicalNetwork) SetID(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.id = id
}

// SetEnvironment replaces the environment model.
func (n *ChemicalNetwork) SetEnvironment(env Environment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if env == nil {
		env = NeutralEnvironment{}
	}
	n.env = env
}

// SetChemistry replaces the product-name strategy.
func (n *ChemicalNetwork) SetChemistry(c Chemistry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if c != nil {
		n.chemistry = c
	}
}

// SetLogger replaces the logger.
func (n *ChemicalNetwork) SetLogger(l Logger) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if l != nil {
		n.logger = l
	}
}

// SetNotificationManager attaches a notification manager; lifecycle events
// are published to it.
func (n *ChemicalNetwork) SetNotificationManager(nm *NotificationManager) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifier = nm
}

// SetBounds sets the side length of the square Brownian-motion box.
func (n *ChemicalNetwork) SetBounds(b float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if b > 0 {
		n.bounds = b
	}
}

// SetSnapshotDir sets the directory periodic snapshots are written to.
// Empty disables snapshotting.
func (n *ChemicalNetwork) SetSnapshotDir(dir string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshotDir = dir
}

// SetSnapshotEveryNSteps sets the snapshot period. Zero or negative
// disables periodic snapshots.
func (n *ChemicalNetwork) SetSnapshotEveryNSteps(every int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshotEvery = every
}

// AddMolecules registers the molecule type if needed and adds count units
// to the free pool. Seeding food molecules goes through here.
func (n *ChemicalNetwork) AddMolecules(name string, complexity float64, amphiphilic bool, count int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ensureSpecies(name, complexity, amphiphilic)
	if count > 0 {
		n.molecules[name] += count
	}
}

// AddReaction inserts a reaction into the catalog and the graph view.
func (n *ChemicalNetwork) AddReaction(r *Reaction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.insertReaction(r)
}

// ensureSpecies returns the molecule type for name, creating it if unknown.
// An existing type is never overwritten.
func (n *ChemicalNetwork) ensureSpecies(name string, complexity float64, amphiphilic bool) *Molecule {
	if m, ok := n.species[name]; ok {
		return m
	}
	m := NewMolecule(name, complexity, amphiphilic, n.bounds, n.rng)
	n.species[name] = m
	return m
}

func (n *ChemicalNetwork) insertReaction(r *Reaction) {
	n.reactions = append(n.reactions, r)
	n.graph.AddReaction(r)
	if len(r.Reactants) == 2 {
		n.covered[pairKey(r.Reactants[0].Name, r.Reactants[1].Name)] = struct{}{}
	}
	if len(r.Reactants) == 1 {
		n.decomped[r.Reactants[0].Name] = struct{}{}
	}
}

// GenerateInitialReactions builds the starting reaction catalog from every
// unordered pair of current molecule types. Pairs where both names exceed
// four characters are skipped to bound the combinatorial explosion. Each
// pair yields a condensation; inputs with names of five or more characters
// also get a slow decomposition.
func (n *ChemicalNetwork) GenerateInitialReactions() {
	n.mu.Lock()
	defer n.mu.Unlock()

	names := n.sortedSpeciesNames()
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := n.species[names[i]], n.species[names[j]]
			if len(a.Name) > 4 && len(b.Name) > 4 {
				continue
			}
			n.synthesizeCondensation(a, b)
			for _, m := range []*Molecule{a, b} {
				if len(m.Name) >= 5 {
					n.synthesizeDecomposition(m)
				}
			}
		}
	}
	n.logger.Infof("generated %d initial reactions from %d molecule types", len(n.reactions), len(names))
}

// synthesizeCondensation creates a+b -> product via the chemistry strategy.
// Caller holds the lock. Returns nil if the pair is already covered.
func (n *ChemicalNetwork) synthesizeCondensation(a, b *Molecule) *Reaction {
	if _, done := n.covered[pairKey(a.Name, b.Name)]; done {
		return nil
	}
	name, amphiphilic := n.chemistry.Combine(a, b)
	return n.condense(a, b, name, amphiphilic)
}

// condense registers a+b -> name. Caller holds the lock and has already
// combined the pair and screened it against the covered set.
func (n *ChemicalNetwork) condense(a, b *Molecule, name string, amphiphilic bool) *Reaction {
	complexity := (a.Complexity + b.Complexity) * uniform(n.rng, 1.0, 1.2)
	product := n.ensureSpecies(name, complexity, amphiphilic)
	if amphiphilic && !product.Amphiphilic {
		product.Amphiphilic = true
		product.HydrophobicStrength = 0.5 + 0.5*n.rng.Float64()
	}

	energy := a.Complexity + b.Complexity - product.Complexity
	r := NewReaction([]*Molecule{a, b}, []*Molecule{product}, uniform(n.rng, 0.01, 0.1), energy)
	n.insertReaction(r)
	return r
}

// synthesizeDecomposition creates m -> fragments at a slow rate. Caller
// holds the lock.
func (n *ChemicalNetwork) synthesizeDecomposition(m *Molecule) {
	if _, done := n.decomped[m.Name]; done {
		return
	}
	fragments := n.chemistry.Decompose(m)
	if len(fragments) == 0 {
		return
	}
	products := make([]*Molecule, 0, len(fragments))
	var productComplexity float64
	for _, f := range fragments {
		p := n.ensureSpecies(f, m.Complexity/2, false)
		products = append(products, p)
		productComplexity += p.Complexity
	}
	r := NewReaction([]*Molecule{m}, products, uniform(n.rng, 0.001, 0.005), m.Complexity-productComplexity)
	n.insertReaction(r)
}

// Update advances the simulation one time step: rescan active reactions,
// sample and apply reaction events (two-phase stage/apply), rescan
// catalysts, update compartments, check spontaneous formation, record
// metrics, and periodically probe for new reactions.
func (n *ChemicalNetwork) Update() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.timeStep++
	if adv, ok := n.env.(advancer); ok {
		adv.Advance()
	}

	n.rescanActive()
	stepEntropy, stepEnergy := n.executeReactions()
	n.energyCurrency += stepEnergy
	n.rescanCatalysts()
	n.updateCompartments()
	n.checkCompartmentFormation()
	n.movePool()
	n.recordMetrics(stepEntropy)

	if n.timeStep%discoveryInterval == 0 {
		n.discoverNewReactions()
	}

	if n.snapshotDir != "" && n.snapshotEvery > 0 && n.timeStep%n.snapshotEvery == 0 {
		if err := n.writeSnapshotLocked(); err != nil {
			n.logger.Errorf("snapshot write failed: %v", err)
		}
	}
}

// rescanActive recomputes the active subset: reactions whose reactants are
// all present in the pool. A missing reactant is not an error, the reaction
// just sits out the step.
func (n *ChemicalNetwork) rescanActive() {
	n.active = n.active[:0]
	for _, r := range n.reactions {
		ok := true
		for _, m := range r.Reactants {
			if n.molecules[m.Name] <= 0 {
				ok = false
				break
			}
		}
		if ok {
			n.active = append(n.active, r)
		}
	}
}

// executeReactions samples events for each active reaction and applies the
// staged consumption/production to the pool in a second phase, so no
// reaction observes a partially updated pool within the step.
func (n *ChemicalNetwork) executeReactions() (stepEntropy, stepEnergy float64) {
	consumed := make(map[string]int)
	produced := make(map[string]int)

	for _, r := range n.active {
		avail := n.minAvailable(r)
		trials := avail
		if trials > maxEventsPerReaction {
			trials = maxEventsPerReaction
		}
		probability := r.EffectiveRate() * n.env.AffectReaction(r)
		events := 0
		for t := 0; t < trials; t++ {
			if n.rng.Float64() < probability {
				events++
			}
		}
		if events == 0 {
			continue
		}
		for _, m := range r.Reactants {
			consumed[m.Name] += events
		}
		for _, m := range r.Products {
			produced[m.Name] += events
		}
		stepEntropy += float64(events) * r.EntropyReduction()
		stepEnergy += float64(events) * r.Energy
	}

	// Commit phase.
	for name, d := range consumed {
		n.molecules[name] -= d
	}
	for name, d := range produced {
		n.molecules[name] += d
	}
	for name, count := range n.molecules {
		if count <= 0 {
			delete(n.molecules, name)
		}
	}
	return stepEntropy, stepEnergy
}

func (n *ChemicalNetwork) minAvailable(r *Reaction) int {
	m := 0
	for i, reac := range r.Reactants {
		c := n.molecules[reac.Name]
		if i == 0 || c < m {
			m = c
		}
	}
	return m
}

// rescanCatalysts probes every (present molecule type, reaction) pair for
// new catalytic relationships.
func (n *ChemicalNetwork) rescanCatalysts() {
	for name, m := range n.species {
		if n.molecules[name] <= 0 {
			continue
		}
		for _, r := range n.reactions {
			if !r.IsCatalyzedBy(name) && m.CanCatalyze(r) {
				r.AddCatalyst(m)
				n.logger.Debugf("catalyst found: %s for %s", name, r)
			}
		}
	}
}

// updateCompartments steps every compartment, removing dissolved ones and
// replacing dividing parents with their daughters. Contents of dissolved
// compartments return to the free pool.
func (n *ChemicalNetwork) updateCompartments() {
	// A division turns one element into two, so next must not share the
	// backing array with the slice being ranged.
	next := make([]*Compartment, 0, len(n.compartments))
	for _, c := range n.compartments {
		c.Update(n.env)

		if c.Dissolved() {
			n.releaseCompartment(c)
			n.publishEvent(Event{
				Type:          EventCompartmentDissolved,
				CompartmentID: c.ID,
				Stability:     c.Stability,
			})
			continue
		}

		if c.CanDivide() {
			d1, d2 := c.Divide(n.rng)
			next = append(next, d1, d2)
			n.publishEvent(Event{
				Type:          EventCompartmentDivided,
				CompartmentID: c.ID,
				DaughterIDs:   []string{d1.ID, d2.ID},
				Radius:        c.Radius,
			})
			continue
		}

		next = append(next, c)
	}
	n.compartments = next
}

func (n *ChemicalNetwork) releaseCompartment(c *Compartment) {
	for name, count := range c.Molecules {
		if count > 0 {
			n.molecules[name] += count
		}
	}
	for _, b := range c.Boundary {
		n.molecules[b.Name]++
	}
}

// checkCompartmentFormation probabilistically forms a new compartment when
// enough free amphiphiles exist. Probability scales linearly with how far
// past the threshold the amphiphile count is.
func (n *ChemicalNetwork) checkCompartmentFormation() {
	amph := n.freeAmphiphileCount()
	if amph < formationThreshold {
		return
	}
	probability := 0.01 * float64(amph) / float64(formationThreshold)
	if n.rng.Float64() >= probability {
		return
	}
	c := n.formCompartment()
	n.publishEvent(Event{
		Type:          EventCompartmentFormed,
		CompartmentID: c.ID,
		Radius:        c.Radius,
		Stability:     c.Stability,
	})
}

func (n *ChemicalNetwork) freeAmphiphileCount() int {
	total := 0
	for name, count := range n.molecules {
		if m := n.species[name]; m != nil && m.Amphiphilic {
			total += count
		}
	}
	return total
}

// formCompartment places a compartment at a random position, recruits up to
// ten free amphiphiles into its boundary, and seeds the interior with 1-5
// units of every molecule type whose free count exceeds ten.
func (n *ChemicalNetwork) formCompartment() *Compartment {
	pos := Vec2{X: n.rng.Float64() * n.bounds, Y: n.rng.Float64() * n.bounds}
	c := NewCompartment(pos)

	budget := maxBoundaryPull
	for _, name := range n.sortedPoolNames() {
		if budget == 0 {
			break
		}
		m := n.species[name]
		if m == nil || !m.Amphiphilic {
			continue
		}
		take := n.molecules[name]
		if take > budget {
			take = budget
		}
		for i := 0; i < take; i++ {
			c.Boundary = append(c.Boundary, m)
		}
		budget -= take
		n.molecules[name] -= take
		if n.molecules[name] <= 0 {
			delete(n.molecules, name)
		}
	}

	for _, name := range n.sortedPoolNames() {
		count := n.molecules[name]
		if count <= 10 {
			continue
		}
		take := 1 + n.rng.Intn(5)
		if take > count {
			take = count
		}
		c.AddInterior(name, take)
		n.molecules[name] -= take
		if n.molecules[name] <= 0 {
			delete(n.molecules, name)
		}
	}

	n.compartments = append(n.compartments, c)
	n.logger.Infof("compartment %s formed with %d boundary molecules", c.ID, len(c.Boundary))
	return c
}

// movePool advances the Brownian walk of every type still present in the
// pool.
func (n *ChemicalNetwork) movePool() {
	for name, m := range n.species {
		if n.molecules[name] > 0 {
			m.UpdatePosition(n.bounds, n.rng)
		}
	}
}

func (n *ChemicalNetwork) recordMetrics(stepEntropy float64) {
	total := 0
	var weightedComplexity float64
	for name, count := range n.molecules {
		total += count
		if m := n.species[name]; m != nil {
			weightedComplexity += float64(count) * m.Complexity
		}
	}
	avgComplexity := 0.0
	if total > 0 {
		avgComplexity = weightedComplexity / float64(total)
	}

	catalyzed := 0
	for _, r := range n.reactions {
		if r.Catalyzed() {
			catalyzed++
		}
	}
	catalyticActivity := 0.0
	if len(n.reactions) > 0 {
		catalyticActivity = float64(catalyzed) / float64(len(n.reactions))
	}

	var stabilitySum float64
	for _, c := range n.compartments {
		stabilitySum += c.Stability
	}
	avgStability := 0.0
	if len(n.compartments) > 0 {
		avgStability = stabilitySum / float64(len(n.compartments))
	}

	n.metrics.MoleculeCounts = append(n.metrics.MoleculeCounts, total)
	n.metrics.ReactionCounts = append(n.metrics.ReactionCounts, len(n.reactions))
	n.metrics.Complexity = append(n.metrics.Complexity, avgComplexity)
	n.metrics.EnergyCurrency = append(n.metrics.EnergyCurrency, n.energyCurrency)
	n.metrics.EntropyReduction = append(n.metrics.EntropyReduction, stepEntropy)
	n.metrics.CatalyticActivity = append(n.metrics.CatalyticActivity, catalyticActivity)
	n.metrics.CompartmentCount = append(n.metrics.CompartmentCount, len(n.compartments))
	n.metrics.AvgStability = append(n.metrics.AvgStability, avgStability)
}

// discoverNewReactions samples up to five present molecule types and, for
// each uncovered unordered pair, synthesizes a condensation with
// probability 0.3. Products whose names would exceed fifteen characters are
// skipped.
func (n *ChemicalNetwork) discoverNewReactions() {
	names := n.sortedPoolNames()
	if len(names) < 2 {
		return
	}
	perm := n.rng.Perm(len(names))
	sampleSize := discoverySampleSize
	if sampleSize > len(names) {
		sampleSize = len(names)
	}
	sample := make([]*Molecule, 0, sampleSize)
	for _, idx := range perm[:sampleSize] {
		sample = append(sample, n.species[names[idx]])
	}

	for i := 0; i < len(sample); i++ {
		for j := i + 1; j < len(sample); j++ {
			a, b := sample[i], sample[j]
			if _, done := n.covered[pairKey(a.Name, b.Name)]; done {
				continue
			}
			if n.rng.Float64() >= discoveryProbability {
				continue
			}
			name, amphiphilic := n.chemistry.Combine(a, b)
			if len(name) > maxProductNameLen {
				continue
			}
			r := n.condense(a, b, name, amphiphilic)
			n.logger.Infof("discovered reaction: %s", r)
			n.publishEvent(Event{Type: EventReactionDiscovered, Reaction: r.String()})
		}
	}
}

func (n *ChemicalNetwork) publishEvent(e Event) {
	if n.notifier == nil {
		return
	}
	e.NetworkID = n.id
	e.TimeStep = n.timeStep
	n.notifier.Publish(e)
}

func (n *ChemicalNetwork) sortedSpeciesNames() []string {
	names := make([]string, 0, len(n.species))
	for name := range n.species {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n *ChemicalNetwork) sortedPoolNames() []string {
	names := make([]string, 0, len(n.molecules))
	for name := range n.molecules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run starts ticker-driven stepping in a goroutine until Stop is called.
// Calling Run on a running network is a no-op; Run can be called again
// after Stop.
func (n *ChemicalNetwork) Run(interval time.Duration) {
	n.mu.Lock()
	if n.isRunning {
		n.mu.Unlock()
		return
	}
	n.stopCh = make(chan struct{})
	n.isRunning = true
	n.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n.Update()
			case <-n.stopCh:
				n.mu.Lock()
				n.isRunning = false
				n.mu.Unlock()
				return
			}
		}
	}()
}

// Stop halts ticker-driven stepping.
func (n *ChemicalNetwork) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.isRunning {
		return
	}
	close(n.stopCh)
}

// TimeStep returns the current step counter.
func (n *ChemicalNetwork) TimeStep() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.timeStep
}

// GetMoleculeCounts returns a copy of the free molecule pool.
func (n *ChemicalNetwork) GetMoleculeCounts() map[string]int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]int, len(n.molecules))
	for name, count := range n.molecules {
		out[name] = count
	}
	return out
}

// CompartmentData is a raw compartment snapshot for rendering.
type CompartmentData struct {
	ID                string  `json:"id"`
	Position          Vec2    `json:"position"`
	Radius            float64 `json:"radius"`
	Stability         float64 `json:"stability"`
	Age               int     `json:"age"`
	InteriorTotal     int     `json:"interior_total"`
	BoundarySize      int     `json:"boundary_size"`
	MetabolicActivity float64 `json:"metabolic_activity"`
}

// GetCompartmentData returns raw snapshots of all live compartments.
func (n *ChemicalNetwork) GetCompartmentData() []CompartmentData {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]CompartmentData, 0, len(n.compartments))
	for _, c := range n.compartments {
		out = append(out, CompartmentData{
			ID:                c.ID,
			Position:          c.Position,
			Radius:            c.Radius,
			Stability:         c.Stability,
			Age:               c.Age,
			InteriorTotal:     c.TotalInterior(),
			BoundarySize:      len(c.Boundary),
			MetabolicActivity: c.MetabolicActivity,
		})
	}
	return out
}

// Compartments returns the live compartment list. Exposed for tests and
// for callers that set up scenarios by hand; not safe to mutate during Run.
func (n *ChemicalNetwork) Compartments() []*Compartment {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]*Compartment(nil), n.compartments...)
}

// AddCompartment inserts a pre-built compartment.
func (n *ChemicalNetwork) AddCompartment(c *Compartment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.compartments = append(n.compartments, c)
}

// Reactions returns the reaction catalog.
func (n *ChemicalNetwork) Reactions() []*Reaction {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]*Reaction(nil), n.reactions...)
}

// Species returns the molecule type registered under name, if any.
func (n *ChemicalNetwork) Species(name string) (*Molecule, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	m, ok := n.species[name]
	return m, ok
}

// MetricsSnapshot returns a deep copy of the recorded series.
func (n *ChemicalNetwork) MetricsSnapshot() Metrics {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.metrics.Copy()
}
