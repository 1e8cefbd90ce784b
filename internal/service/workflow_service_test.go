package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"testops/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func newWorkflowFixture(t *testing.T, engine *fakeEngine) (WorkflowService, *fakeWorkflowRepo, *fakeExecutionRepo, *fakeScenarioRepo, *fakeConfigRepo, *fakeBus) {
	t.Helper()
	workflows := newFakeWorkflowRepo()
	executions := newFakeExecutionRepo()
	configs := newFakeConfigRepo()
	scenarios := &fakeScenarioRepo{}
	bus := &fakeBus{}
	scenarioSvc := NewScenarioService(scenarios, &fakeTestCaseRepo{}, zap.NewNop())
	svc := NewWorkflowService(workflows, executions, configs, engine, scenarioSvc, bus, "tester", zap.NewNop())
	return svc, workflows, executions, scenarios, configs, bus
}

func TestCreateWorkflowVerifiesKey(t *testing.T) {
	engine := &fakeEngine{info: map[string]any{"name": "Scenario Generator", "mode": "workflow"}}
	svc, _, _, _, _, _ := newWorkflowFixture(t, engine)

	workflow, err := svc.Create(context.Background(), uuid.New(), "", "app-key")
	require.NoError(t, err)
	assert.Equal(t, "Scenario Generator", workflow.Name)
	assert.Equal(t, "workflow", workflow.Mode)
	assert.NotEmpty(t, workflow.Inputs)
}

func TestCreateWorkflowRejectsBadKey(t *testing.T) {
	engine := &fakeEngine{infoErr: errors.New("status 401")}
	svc, workflows, _, _, _, _ := newWorkflowFixture(t, engine)

	_, err := svc.Create(context.Background(), uuid.New(), "x", "bad-key")
	require.Error(t, err)

	stored, err := workflows.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRunRecordsLifecycleAndSavesScenarios(t *testing.T) {
	engine := &fakeEngine{
		runResult: &domain.EngineRunResult{
			Status: "succeeded",
			Outputs: map[string]any{
				"structured_output": map[string]any{
					"scenarios": []any{
						map[string]any{
							"scenario_id":   "SC-01",
							"scenario_name": "Critical Login Flow",
							"description":   "covers auth",
							"test_cases": []any{
								map[string]any{
									"test_case_id":    "TC-01",
									"test_case_name":  "valid credentials",
									"requirement":     "users must log in",
									"test_objective":  "verify login",
									"scenario":        "open page, enter credentials",
									"expected_result": "dashboard shown",
								},
							},
						},
					},
				},
			},
			TotalSteps:  5,
			TotalTokens: 900,
		},
	}
	svc, workflows, _, scenarios, _, bus := newWorkflowFixture(t, engine)

	projectID := uuid.New()
	workflow := domain.NewWorkflow(projectID, "gen", "app-key", "workflow")
	require.NoError(t, workflows.Create(context.Background(), workflow))

	execution, err := svc.Run(context.Background(), workflow.ID, map[string]any{"doc": "file-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionSucceeded, execution.Status)
	assert.Equal(t, 5, execution.TotalSteps)
	assert.Equal(t, 900, execution.TotalTokens)

	// Generated scenarios land additively, stamped with the execution id.
	saved, err := scenarios.ListByProject(context.Background(), projectID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "SC-01", saved[0].ScenarioID)
	assert.Equal(t, "High", saved[0].Priority)
	assert.Equal(t, execution.ID.String(), saved[0].ExecutionID)
	require.Len(t, saved[0].TestCases, 1)
	assert.Equal(t, "TC-01", saved[0].TestCases[0].CaseID)
	assert.Equal(t, "untested", string(saved[0].TestCases[0].Status))

	require.Len(t, bus.executionEvents, 2)
	assert.Equal(t, domain.ExecutionRunning, bus.executionEvents[0].Status)
	assert.Equal(t, domain.ExecutionSucceeded, bus.executionEvents[1].Status)
}

func TestRunEngineErrorFailsExecution(t *testing.T) {
	engine := &fakeEngine{runErr: errors.New("connection refused")}
	svc, workflows, executions, _, _, bus := newWorkflowFixture(t, engine)

	workflow := domain.NewWorkflow(uuid.New(), "gen", "app-key", "workflow")
	require.NoError(t, workflows.Create(context.Background(), workflow))

	_, err := svc.Run(context.Background(), workflow.ID, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	// The execution is marked failed before the error is surfaced.
	stored, listErr := executions.ListByWorkflow(context.Background(), workflow.ID)
	require.NoError(t, listErr)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.ExecutionFailed, stored[0].Status)
	assert.Contains(t, stored[0].Error, "connection refused")

	require.NotEmpty(t, bus.executionEvents)
	last := bus.executionEvents[len(bus.executionEvents)-1]
	assert.Equal(t, domain.ExecutionFailed, last.Status)
}

func TestRunScenarioSaveFailureDoesNotFailRun(t *testing.T) {
	engine := &fakeEngine{
		runResult: &domain.EngineRunResult{
			Status: "succeeded",
			Outputs: map[string]any{
				"structured_output": map[string]any{
					"scenarios": []any{
						map[string]any{"scenario_id": "SC-01", "scenario_name": "orphan"},
					},
				},
			},
		},
	}
	svc, workflows, _, scenarios, _, _ := newWorkflowFixture(t, engine)
	scenarios.insertErr = errors.New("connection reset")

	workflow := domain.NewWorkflow(uuid.New(), "gen", "app-key", "workflow")
	require.NoError(t, workflows.Create(context.Background(), workflow))

	execution, err := svc.Run(context.Background(), workflow.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionSucceeded, execution.Status)
	assert.Empty(t, scenarios.scenarios)
}

func TestRunMergesConfigVariables(t *testing.T) {
	engine := &fakeEngine{runResult: &domain.EngineRunResult{Status: "succeeded"}}
	svc, workflows, _, _, configs, _ := newWorkflowFixture(t, engine)

	projectID := uuid.New()
	workflow := domain.NewWorkflow(projectID, "gen", "app-key", "workflow")
	require.NoError(t, workflows.Create(context.Background(), workflow))

	variables, _ := json.Marshal(map[string]any{"env": "staging", "doc": "stored-doc"})
	require.NoError(t, configs.Save(context.Background(), &domain.WorkflowConfig{
		ProjectID: projectID,
		Variables: datatypes.JSON(variables),
	}))

	_, err := svc.Run(context.Background(), workflow.ID, map[string]any{"doc": "explicit-doc"})
	require.NoError(t, err)

	// Stored variables fill gaps; explicit inputs win.
	assert.Equal(t, "staging", engine.runInputs["env"])
	assert.Equal(t, "explicit-doc", engine.runInputs["doc"])
}

func TestCancelRunningExecution(t *testing.T) {
	engine := &fakeEngine{}
	svc, _, executions, _, _, bus := newWorkflowFixture(t, engine)

	execution := domain.NewWorkflowExecution(uuid.New(), uuid.New(), nil)
	execution.Status = domain.ExecutionRunning
	require.NoError(t, executions.Create(context.Background(), execution))

	cancelled, err := svc.Cancel(context.Background(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionCancelled, cancelled.Status)
	require.Len(t, bus.executionEvents, 1)
	assert.Equal(t, domain.ExecutionCancelled, bus.executionEvents[0].Status)
}

func TestCancelTerminalExecutionConflicts(t *testing.T) {
	engine := &fakeEngine{}
	svc, _, executions, _, _, _ := newWorkflowFixture(t, engine)

	for _, status := range []domain.ExecutionStatus{domain.ExecutionSucceeded, domain.ExecutionFailed, domain.ExecutionCancelled} {
		execution := domain.NewWorkflowExecution(uuid.New(), uuid.New(), nil)
		execution.Status = status
		require.NoError(t, executions.Create(context.Background(), execution))

		_, err := svc.Cancel(context.Background(), execution.ID)
		require.ErrorIs(t, err, domain.ErrConflict)
	}
}

func TestSaveConfigUpserts(t *testing.T) {
	engine := &fakeEngine{}
	svc, _, _, _, _, _ := newWorkflowFixture(t, engine)
	projectID := uuid.New()

	first, err := svc.SaveConfig(context.Background(), projectID, map[string]any{"env": "dev"})
	require.NoError(t, err)

	second, err := svc.SaveConfig(context.Background(), projectID, map[string]any{"env": "prod"})
	require.NoError(t, err)
	assert.Equal(t, first.ProjectID, second.ProjectID)

	var variables map[string]any
	require.NoError(t, json.Unmarshal(second.Variables, &variables))
	assert.Equal(t, "prod", variables["env"])
}
