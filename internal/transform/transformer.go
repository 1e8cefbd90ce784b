// Package transform converts raw Dify workflow output into the internal
// scenario/test-case shape. All functions are pure: no I/O, deterministic
// apart from UUID fallbacks for records the engine left unidentified.
package transform

import (
	"fmt"
	"strings"

	"testops/internal/domain"

	"github.com/google/uuid"
)

// Keyword sets for the priority heuristic. Matching is a case-insensitive
// substring check over the scenario name.
var (
	highPriorityIndicators   = []string{"critical", "security", "payment", "login", "authentication", "performance"}
	mediumPriorityIndicators = []string{"report", "export", "search", "filter", "sort", "pagination"}
)

// Output renames the engine's field names into the internal schema.
// A payload without a structured_output key (or without scenarios inside
// it) passes through unchanged; that is not an error.
func Output(workflowOutput map[string]any) map[string]any {
	structured, ok := workflowOutput["structured_output"].(map[string]any)
	if !ok {
		return workflowOutput
	}

	rawScenarios, _ := structured["scenarios"].([]any)
	scenarios := make([]any, 0, len(rawScenarios))
	for _, raw := range rawScenarios {
		scenario, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		scenarios = append(scenarios, Scenario(scenario))
	}

	return map[string]any{
		"project_id": structured["project_id"],
		"scenarios":  scenarios,
	}
}

// Scenario maps a single engine scenario: scenario_id becomes id,
// scenario_name becomes name, priority is derived from the name and the
// version defaults to 1.0.
func Scenario(scenario map[string]any) map[string]any {
	rawCases, _ := scenario["test_cases"].([]any)
	testCases := make([]any, 0, len(rawCases))
	for _, raw := range rawCases {
		testCase, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		testCases = append(testCases, TestCase(testCase))
	}

	name := stringField(scenario, "scenario_name")
	return map[string]any{
		"id":          stringFieldOr(scenario, "scenario_id", uuid.NewString()),
		"name":        name,
		"description": stringField(scenario, "description"),
		"priority":    DeterminePriority(name),
		"version":     "1.0",
		"test_cases":  testCases,
	}
}

// TestCase maps a single engine test case. The steps array is synthesized
// from the flat descriptive fields, one labeled line per present field, in
// the fixed order requirement, test_objective, scenario.
func TestCase(testCase map[string]any) map[string]any {
	steps := []any{}
	if v := stringField(testCase, "requirement"); v != "" {
		steps = append(steps, "Requirement: "+v)
	}
	if v := stringField(testCase, "test_objective"); v != "" {
		steps = append(steps, "Objective: "+v)
	}
	if v := stringField(testCase, "scenario"); v != "" {
		steps = append(steps, "Steps: "+v)
	}

	return map[string]any{
		"id":              stringFieldOr(testCase, "test_case_id", uuid.NewString()),
		"title":           stringField(testCase, "test_case_name"),
		"description":     stringField(testCase, "test_objective"),
		"steps":           steps,
		"expected_result": stringField(testCase, "expected_result"),
		"status":          string(domain.TestCaseUntested),
		"version":         "1.0",
	}
}

// DeterminePriority derives a scenario priority from its name. Names
// touching critical flows rate High, reporting and list plumbing rate
// Medium, and Medium is also the default for everything else.
func DeterminePriority(scenarioName string) string {
	lower := strings.ToLower(scenarioName)
	for _, indicator := range highPriorityIndicators {
		if strings.Contains(lower, indicator) {
			return "High"
		}
	}
	for _, indicator := range mediumPriorityIndicators {
		if strings.Contains(lower, indicator) {
			return "Medium"
		}
	}
	return "Medium"
}

var scenarioRequiredFields = []string{"id", "name", "description", "priority", "version"}
var testCaseRequiredFields = []string{"id", "title", "description", "steps", "expected_result", "status", "version"}

// Validate checks that every transformed scenario and test case carries
// the full internal schema. The error is deliberately generic: callers
// treat any validation failure the same way.
func Validate(transformed map[string]any) error {
	if transformed == nil {
		return fmt.Errorf("%w: empty payload", domain.ErrValidation)
	}
	rawScenarios, present := transformed["scenarios"]
	if !present {
		// Pass-through payload with nothing to validate.
		return nil
	}
	scenarios, ok := rawScenarios.([]any)
	if !ok {
		return fmt.Errorf("%w: scenarios is not a list", domain.ErrValidation)
	}
	for _, raw := range scenarios {
		scenario, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: malformed scenario", domain.ErrValidation)
		}
		for _, field := range scenarioRequiredFields {
			if _, present := scenario[field]; !present {
				return fmt.Errorf("%w: incomplete scenario", domain.ErrValidation)
			}
		}
		testCases, ok := scenario["test_cases"].([]any)
		if !ok {
			continue
		}
		for _, rawCase := range testCases {
			testCase, ok := rawCase.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: malformed test case", domain.ErrValidation)
			}
			for _, field := range testCaseRequiredFields {
				if _, present := testCase[field]; !present {
					return fmt.Errorf("%w: incomplete test case", domain.ErrValidation)
				}
			}
			if _, isList := testCase["steps"].([]any); !isList {
				return fmt.Errorf("%w: incomplete test case", domain.ErrValidation)
			}
		}
	}
	return nil
}

// Process transforms and validates in one call, the shape persistence
// consumes.
func Process(workflowOutput map[string]any) (map[string]any, error) {
	transformed := Output(workflowOutput)
	if err := Validate(transformed); err != nil {
		return nil, err
	}
	return transformed, nil
}
