package main

import (
	"net/http"

	"github.com/oparinlab/protocell/internal/chem"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	srv := NewServer(logger)
	srv.SetSnapshotDir(cfg.SnapshotDir)
	srv.SetSnapshotEverySteps(cfg.SnapshotEverySteps)

	if cfg.ScenarioFile != "" {
		if err := applyStartupScenario(srv, cfg.ScenarioFile, chem.NetworkID(cfg.DefaultSimID), cfg.SnapshotDir, cfg.SnapshotEverySteps, cfg.Seed); err != nil {
			logger.Fatalf("Failed to load startup scenario %s: %v", cfg.ScenarioFile, err)
		}
		logger.Infof("Startup scenario loaded: sim_id=%s file=%s", cfg.DefaultSimID, cfg.ScenarioFile)
	}

	logger.Infof("protocell-server listening on %s (log level: %s)", cfg.Addr, logger.level)
	if err := http.ListenAndServe(cfg.Addr, srv.routes()); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
