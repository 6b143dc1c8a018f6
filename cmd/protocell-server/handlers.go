package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oparinlab/protocell/internal/chem"
	chemnotifiers "github.com/oparinlab/protocell/internal/chem/notifiers"
)

// extractSimID extracts the simulation ID from a path like
// "/simulations/{id}/...". Returns the ID and the remaining path, or empty
// strings if the path has no ID segment.
func extractSimID(path string) (chem.NetworkID, string) {
	if !strings.HasPrefix(path, "/simulations/") {
		return "", ""
	}

	rest := strings.TrimPrefix(path, "/simulations/")
	idx := strings.Index(rest, "/")
	if idx == -1 {
		return chem.NetworkID(rest), ""
	}
	return chem.NetworkID(rest[:idx]), rest[idx:]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /simulations
// Body: { "id": "...", "scenario": { ...ScenarioConfig... } }
// The ID falls back to the scenario name when omitted.
type createSimulationRequest struct {
	ID       string              `json:"id"`
	Scenario chem.ScenarioConfig `json:"scenario"`
}

func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req createSimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	id := chem.NetworkID(req.ID)
	if id == "" {
		id = chem.NetworkID(req.Scenario.Name)
	}
	if id == "" {
		http.Error(w, "simulation ID is required", http.StatusBadRequest)
		return
	}

	n, err := s.manager.CreateNetwork(id, req.Scenario)
	if err != nil {
		s.logger.Warnf("Failed to create simulation: sim_id=%s error=%v", id, err)
		http.Error(w, "cannot create simulation: "+err.Error(), http.StatusBadRequest)
		return
	}

	n.SetNotificationManager(s.notifierMgr)
	if s.snapshotDir != "" {
		n.SetSnapshotDir(s.snapshotDir)
	}
	if s.snapshotEverySteps >= 0 {
		n.SetSnapshotEveryNSteps(s.snapshotEverySteps)
	}
	s.metrics.observe(id, n.GetStatistics())
	s.logger.Infof("Simulation created: sim_id=%s scenario=%s", id, req.Scenario.Name)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": string(id)})
}

// GET /simulations
// List all simulation IDs
func (s *Server) handleListSimulations(w http.ResponseWriter, _ *http.Request) {
	simIDs := s.manager.ListNetworks()

	ids := make([]string, len(simIDs))
	for i, id := range simIDs {
		ids[i] = string(id)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"simulations": ids}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// DELETE /simulations/{id}
func (s *Server) handleDeleteSimulation(w http.ResponseWriter, r *http.Request) {
	simID, _ := extractSimID(r.URL.Path)
	if simID == "" {
		http.Error(w, "simulation ID is required in path: /simulations/{id}", http.StatusBadRequest)
		return
	}

	if err := s.manager.DeleteNetwork(simID); err != nil {
		s.logger.Warnf("Failed to delete simulation: sim_id=%s error=%v", simID, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.metrics.forget(simID)

	s.logger.Infof("Simulation deleted: sim_id=%s", simID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("simulation deleted"))
}

// PUT /simulations/{id}
// Rebuild an existing simulation from a new scenario, keeping its ID.
func (s *Server) handleResetSimulation(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	simID, _ := extractSimID(r.URL.Path)
	var cfg chem.ScenarioConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	n, err := s.manager.ResetNetwork(simID, cfg)
	if err != nil {
		s.logger.Warnf("Failed to reset simulation: sim_id=%s error=%v", simID, err)
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "does not exist") {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	n.SetNotificationManager(s.notifierMgr)
	if s.snapshotDir != "" {
		n.SetSnapshotDir(s.snapshotDir)
	}
	if s.snapshotEverySteps >= 0 {
		n.SetSnapshotEveryNSteps(s.snapshotEverySteps)
	}
	s.metrics.observe(simID, n.GetStatistics())
	s.logger.Infof("Simulation reset: sim_id=%s scenario=%s", simID, cfg.Name)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"id": string(simID)})
}

// POST /simulations/{id}/step?n=10
// Advance the simulation a fixed number of steps (default 1).
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	simID, _ := extractSimID(r.URL.Path)
	n, exists := s.manager.GetNetwork(simID)
	if !exists {
		http.Error(w, "simulation not found", http.StatusNotFound)
		return
	}

	steps := 1
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		val, err := strconv.Atoi(nStr)
		if err != nil || val <= 0 {
			http.Error(w, "invalid n: must be a positive integer", http.StatusBadRequest)
			return
		}
		steps = val
	}

	for i := 0; i < steps; i++ {
		n.Update()
	}
	s.metrics.countSteps(simID, steps)
	s.metrics.observe(simID, n.GetStatistics())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"time_step": n.TimeStep()})
}

// POST /simulations/{id}/run?interval=1000
// Start ticker-driven stepping with the given interval in milliseconds.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	simID, _ := extractSimID(r.URL.Path)
	n, exists := s.manager.GetNetwork(simID)
	if !exists {
		http.Error(w, "simulation not found", http.StatusNotFound)
		return
	}

	interval := 1000 * time.Millisecond
	if intervalStr := r.URL.Query().Get("interval"); intervalStr != "" {
		if ms, err := strconv.Atoi(intervalStr); err == nil && ms > 0 {
			interval = time.Duration(ms) * time.Millisecond
		} else {
			http.Error(w, "invalid interval: must be a positive integer (milliseconds)", http.StatusBadRequest)
			return
		}
	}

	n.Run(interval)
	s.logger.Infof("Simulation started: sim_id=%s interval=%v", simID, interval)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("simulation started"))
}

// POST /simulations/{id}/stop
func (s *Server) handleStopSim(w http.ResponseWriter, r *http.Request) {
	simID, _ := extractSimID(r.URL.Path)
	n, exists := s.manager.GetNetwork(simID)
	if !exists {
		http.Error(w, "simulation not found", http.StatusNotFound)
		return
	}

	n.Stop()
	s.logger.Infof("Simulation stopped: sim_id=%s", simID)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("simulation stopped"))
}

// GET /simulations/{id}/statistics
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	simID, _ := extractSimID(r.URL.Path)
	n, exists := s.manager.GetNetwork(simID)
	if !exists {
		http.Error(w, "simulation not found", http.StatusNotFound)
		return
	}

	stats := n.GetStatistics()
	s.metrics.observe(simID, stats)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /simulations/{id}/analysis
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	simID, _ := extractSimID(r.URL.Path)
	n, exists := s.manager.GetNetwork(simID)
	if !exists {
		http.Error(w, "simulation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(n.GetFinalAnalysis()); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /simulations/{id}/molecules
func (s *Server) handleListMolecules(w http.ResponseWriter, r *http.Request) {
	simID, _ := extractSimID(r.URL.Path)
	n, exists := s.manager.GetNetwork(simID)
	if !exists {
		http.Error(w, "simulation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(n.GetMoleculeCounts()); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /simulations/{id}/compartments
func (s *Server) handleListCompartments(w http.ResponseWriter, r *http.Request) {
	simID, _ := extractSimID(r.URL.Path)
	n, exists := s.manager.GetNetwork(simID)
	if !exists {
		http.Error(w, "simulation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(n.GetCompartmentData()); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /simulations/{id}/snapshot
// Returns a point-in-time snapshot as JSON.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	simID, _ := extractSimID(r.URL.Path)
	n, exists := s.manager.GetNetwork(simID)
	if !exists {
		http.Error(w, "simulation not found", http.StatusNotFound)
		return
	}

	snap := n.Snapshot()
	data, err := chem.EncodeSnapshotJSON(snap)
	if err != nil {
		http.Error(w, "cannot encode snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handleSimulationRoutes routes requests under /simulations/{id}/...
func (s *Server) handleSimulationRoutes(w http.ResponseWriter, r *http.Request) {
	simID, remainingPath := extractSimID(r.URL.Path)
	if simID == "" {
		http.Error(w, "simulation ID is required in path: /simulations/{id}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remainingPath == "/step" && r.Method == http.MethodPost:
		s.handleStep(w, r)
	case remainingPath == "/run" && r.Method == http.MethodPost:
		s.handleRun(w, r)
	case remainingPath == "/stop" && r.Method == http.MethodPost:
		s.handleStopSim(w, r)
	case remainingPath == "/statistics" && r.Method == http.MethodGet:
		s.handleStatistics(w, r)
	case remainingPath == "/analysis" && r.Method == http.MethodGet:
		s.handleAnalysis(w, r)
	case remainingPath == "/molecules" && r.Method == http.MethodGet:
		s.handleListMolecules(w, r)
	case remainingPath == "/compartments" && r.Method == http.MethodGet:
		s.handleListCompartments(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodGet:
		s.handleGetSnapshot(w, r)
	case remainingPath == "" && r.Method == http.MethodPut:
		s.handleResetSimulation(w, r)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteSimulation(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleSimulationsCollection routes /simulations (no ID segment).
func (s *Server) handleSimulationsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSimulation(w, r)
	case http.MethodGet:
		s.handleListSimulations(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
// List all registered notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.notifierMgr.ListNotifiers()

	notifierList := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.notifierMgr.GetNotifier(id)
		if exists {
			notifierList = append(notifierList, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"notifiers": notifierList}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /notifiers
// Register a new notifier
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://...", "secret": "..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier chem.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := chemnotifiers.NewWebhookNotifier(req.ID, url)

		if secret, ok := req.Config["secret"].(string); ok && secret != "" {
			wh.SetSecret(secret)
		}
		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		notifier = wh
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
// Unregister a notifier
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// GET /ws
// Upgrade to a WebSocket connection streaming lifecycle events.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.wsNotifier.Upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	s.wsNotifier.RegisterClient(conn)
	s.logger.Debugf("WebSocket client connected: %s", conn.RemoteAddr())

	// Reader loop: discard inbound frames, unregister on disconnect.
	go func() {
		defer s.wsNotifier.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// routes builds the HTTP mux for the server.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/simulations", s.handleSimulationsCollection)
	mux.HandleFunc("/simulations/", s.handleSimulationRoutes)
	mux.HandleFunc("/notifiers", s.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", s.handleNotifiersRoutes)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", s.metrics.handler())
	return mux
}
