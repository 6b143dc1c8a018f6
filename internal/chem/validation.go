package chem

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation issues.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid scenario: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "scenario validation errors: " + strings.Join(e.Issues, "; ")
}

// Add appends an issue.
func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

// HasIssues reports whether any issue was recorded.
func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

var validEnvironments = map[string]bool{
	"":        true,
	"neutral": true,
	"cycling": true,
}

// ValidateScenarioConfig performs comprehensive validation of a scenario.
// All issues are collected into a single error.
func ValidateScenarioConfig(cfg ScenarioConfig) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("scenario name is required")
	}
	if len(cfg.Molecules) == 0 {
		err.Add("scenario must seed at least one molecule")
	}
	if cfg.Bounds < 0 {
		err.Add("bounds must be positive")
	}
	if !validEnvironments[cfg.Environment] {
		err.Add(fmt.Sprintf("unknown environment %q (want neutral or cycling)", cfg.Environment))
	}
	if cfg.Environment == "cycling" && cfg.CyclePeriod < 0 {
		err.Add("cycle_period must be non-negative")
	}

	seen := make(map[string]bool)
	for i, m := range cfg.Molecules {
		if m.Name == "" {
			err.Add(fmt.Sprintf("molecule at index %d has empty name", i))
			continue
		}
		if seen[m.Name] {
			err.Add("duplicate seed molecule: " + m.Name)
		}
		seen[m.Name] = true
		if m.Count <= 0 {
			err.Add(fmt.Sprintf("molecule %s must have a positive count", m.Name))
		}
		if m.Complexity < 0 {
			err.Add(fmt.Sprintf("molecule %s must have non-negative complexity", m.Name))
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}
