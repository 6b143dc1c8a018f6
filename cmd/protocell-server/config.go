package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/oparinlab/protocell/internal/chem"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr               string
	DefaultSimID       string
	ScenarioFile       string
	SnapshotDir        string
	SnapshotEverySteps int
	Seed               int64
	LogLevel           string
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and environment variables.
// Uses a resolver pattern to make it easy to add new configuration options.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	// Define all configuration resolvers
	// To add a new option, just add a new resolver here
	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "PROTOCELL_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "sim-id",
			envVarName:  "PROTOCELL_SIM_ID",
			defaultVal:  "default",
			description: "simulation ID used for the startup scenario",
			setter:      func(c *ServerConfig, v string) { c.DefaultSimID = v },
		},
		{
			flagName:    "scenario-file",
			envVarName:  "PROTOCELL_SCENARIO_FILE",
			defaultVal:  "",
			description: "optional path to a YAML scenario file to load at startup",
			setter:      func(c *ServerConfig, v string) { c.ScenarioFile = v },
		},
		{
			flagName:    "snapshot-dir",
			envVarName:  "PROTOCELL_SNAPSHOT_DIR",
			defaultVal:  "./data",
			description: "Directory where simulation snapshots are stored",
			setter:      func(c *ServerConfig, v string) { c.SnapshotDir = v },
		},
		{
			flagName:    "snapshot-every-steps",
			envVarName:  "PROTOCELL_SNAPSHOT_EVERY_STEPS",
			defaultVal:  "1000",
			description: "How often to write snapshots (in number of steps); 0 disables periodic snapshots",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil {
					c.SnapshotEverySteps = val
				} else {
					log.Printf("Invalid value for snapshot-every-steps: %s, using default 1000", v)
					c.SnapshotEverySteps = 1000
				}
			},
		},
		{
			flagName:    "seed",
			envVarName:  "PROTOCELL_SEED",
			defaultVal:  "0",
			description: "Random seed override for the startup scenario; 0 keeps the scenario file's seed",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.ParseInt(v, 10, 64); err == nil {
					c.Seed = val
				} else {
					log.Printf("Invalid value for seed: %s, ignoring", v)
				}
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "PROTOCELL_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	// Register string flags first
	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	// Parse flags once
	flag.Parse()

	// Resolve values for each resolver
	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}

// applyStartupScenario loads a scenario file and creates the startup
// simulation under the given ID, wiring in notifications and snapshots.
func applyStartupScenario(s *Server, scenarioFile string, simID chem.NetworkID, snapshotDir string, snapshotEverySteps int, seed int64) error {
	cfg, err := chem.LoadScenarioFile(scenarioFile)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Seed = seed
	}

	n, err := s.manager.CreateNetwork(simID, cfg)
	if err != nil {
		return err
	}

	n.SetNotificationManager(s.notifierMgr)
	if snapshotDir != "" {
		n.SetSnapshotDir(snapshotDir)
	}
	if snapshotEverySteps >= 0 {
		n.SetSnapshotEveryNSteps(snapshotEverySteps)
	}
	return nil
}
