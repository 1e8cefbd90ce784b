package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type WorkflowService interface {
	// Create registers a Dify workflow. The engine is queried for the app
	// info and input schema, which are stored alongside the key.
	Create(ctx context.Context, projectID uuid.UUID, name, apiKey string) (*domain.Workflow, error)

	Get(ctx context.Context, id uuid.UUID) (*domain.Workflow, error)
	List(ctx context.Context, projectID *uuid.UUID) ([]domain.Workflow, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Workflow, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Engine passthroughs, keyed by the stored workflow's api key.
	Info(ctx context.Context, workflowID uuid.UUID) (map[string]any, error)
	Site(ctx context.Context, workflowID uuid.UUID) (map[string]any, error)
	Parameters(ctx context.Context, workflowID uuid.UUID) (map[string]any, error)
	UploadFile(ctx context.Context, workflowID uuid.UUID, path, filename, mimetype string) (string, error)

	// Run executes the workflow in blocking mode, records the execution
	// lifecycle and, on success, saves any generated scenarios.
	Run(ctx context.Context, workflowID uuid.UUID, inputs map[string]any) (*domain.WorkflowExecution, error)

	GetExecution(ctx context.Context, id uuid.UUID) (*domain.WorkflowExecution, error)
	ListExecutions(ctx context.Context, projectID uuid.UUID) ([]domain.WorkflowExecution, error)
	ListExecutionsByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowExecution, error)

	// Cancel moves a non-terminal execution to cancelled. Terminal
	// executions return domain.ErrConflict.
	Cancel(ctx context.Context, executionID uuid.UUID) (*domain.WorkflowExecution, error)

	GetConfig(ctx context.Context, projectID uuid.UUID) (*domain.WorkflowConfig, error)
	SaveConfig(ctx context.Context, projectID uuid.UUID, variables map[string]any) (*domain.WorkflowConfig, error)
}

type workflowService struct {
	workflows  ports.WorkflowRepository
	executions ports.ExecutionRepository
	configs    ports.ConfigRepository
	engine     ports.WorkflowEngine
	scenarios  ScenarioService
	bus        ports.EventBus
	engineUser string
	logger     *zap.Logger
}

// NewWorkflowService wires workflow persistence to the Dify engine. bus
// may be nil when the event bus is disabled.
func NewWorkflowService(
	workflows ports.WorkflowRepository,
	executions ports.ExecutionRepository,
	configs ports.ConfigRepository,
	engine ports.WorkflowEngine,
	scenarios ScenarioService,
	bus ports.EventBus,
	engineUser string,
	logger *zap.Logger,
) WorkflowService {
	return &workflowService{
		workflows:  workflows,
		executions: executions,
		configs:    configs,
		engine:     engine,
		scenarios:  scenarios,
		bus:        bus,
		engineUser: engineUser,
		logger:     logger,
	}
}

func (s *workflowService) Create(ctx context.Context, projectID uuid.UUID, name, apiKey string) (*domain.Workflow, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key is required", domain.ErrValidation)
	}

	workflow := domain.NewWorkflow(projectID, name, apiKey, "workflow")

	// The engine is the authority on the app's name and mode; a reachable
	// key also proves the credentials before anything is stored.
	info, err := s.engine.Info(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("verify workflow key: %w", err)
	}
	if name == "" {
		workflow.Name, _ = info["name"].(string)
	}
	if mode, ok := info["mode"].(string); ok && mode != "" {
		workflow.Mode = mode
	}

	if params, err := s.engine.Parameters(ctx, apiKey); err == nil {
		if encoded, err := json.Marshal(params); err == nil {
			workflow.Inputs = datatypes.JSON(encoded)
		}
	} else {
		s.logger.Warn("could not fetch workflow parameters", zap.Error(err))
	}

	if err := s.workflows.Create(ctx, workflow); err != nil {
		return nil, err
	}
	s.logger.Info("workflow registered",
		zap.String("workflow_id", workflow.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("name", workflow.Name))
	return workflow, nil
}

func (s *workflowService) Get(ctx context.Context, id uuid.UUID) (*domain.Workflow, error) {
	return s.workflows.GetByID(ctx, id)
}

func (s *workflowService) List(ctx context.Context, projectID *uuid.UUID) ([]domain.Workflow, error) {
	return s.workflows.List(ctx, projectID)
}

func (s *workflowService) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Workflow, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	return s.workflows.Update(ctx, id, fields)
}

func (s *workflowService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.workflows.Delete(ctx, id)
}

func (s *workflowService) Info(ctx context.Context, workflowID uuid.UUID) (map[string]any, error) {
	workflow, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return s.engine.Info(ctx, workflow.APIKey)
}

func (s *workflowService) Site(ctx context.Context, workflowID uuid.UUID) (map[string]any, error) {
	workflow, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return s.engine.Site(ctx, workflow.APIKey)
}

func (s *workflowService) Parameters(ctx context.Context, workflowID uuid.UUID) (map[string]any, error) {
	workflow, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return s.engine.Parameters(ctx, workflow.APIKey)
}

func (s *workflowService) UploadFile(ctx context.Context, workflowID uuid.UUID, path, filename, mimetype string) (string, error) {
	workflow, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return "", err
	}
	return s.engine.UploadFile(ctx, workflow.APIKey, path, filename, mimetype, s.engineUser)
}

func (s *workflowService) Run(ctx context.Context, workflowID uuid.UUID, inputs map[string]any) (*domain.WorkflowExecution, error) {
	workflow, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	inputs = s.mergeConfigVariables(ctx, workflow.ProjectID, inputs)

	encodedInputs, err := json.Marshal(inputs)
	if err != nil {
		return nil, err
	}
	execution := domain.NewWorkflowExecution(workflow.ID, workflow.ProjectID, datatypes.JSON(encodedInputs))
	if err := s.executions.Create(ctx, execution); err != nil {
		return nil, err
	}

	execution, err = s.executions.Update(ctx, execution.ID, map[string]any{"status": domain.ExecutionRunning})
	if err != nil {
		return nil, err
	}
	s.publishExecutionStatus(ctx, execution)

	result, err := s.engine.RunWorkflow(ctx, workflow.APIKey, inputs, s.engineUser, "blocking")
	if err != nil {
		// Record the failed execution, then surface the engine error.
		if _, updateErr := s.finishExecution(ctx, execution, domain.ExecutionFailed, nil, err.Error(), 0, 0); updateErr != nil {
			s.logger.Warn("could not record failed execution",
				zap.String("execution_id", execution.ID.String()),
				zap.Error(updateErr))
		}
		return nil, err
	}

	status := domain.ExecutionFailed
	if result.Status == "succeeded" {
		status = domain.ExecutionSucceeded
	}
	execution, err = s.finishExecution(ctx, execution, status, result.Outputs, result.Error, result.TotalSteps, result.TotalTokens)
	if err != nil {
		return nil, err
	}

	// Auto-saving generated scenarios is best effort. The execution record
	// already holds the outputs; a save failure must not fail the run.
	if status == domain.ExecutionSucceeded {
		_, saveErr := s.scenarios.SaveFromOutput(ctx, workflow.ProjectID, execution.ID.String(), result.Outputs)
		if saveErr != nil {
			s.logger.Warn("could not save scenarios from workflow output",
				zap.String("execution_id", execution.ID.String()),
				zap.Error(saveErr))
		}
	}
	return execution, nil
}

// mergeConfigVariables fills missing inputs from the project's saved
// workflow configuration. Explicit inputs always win.
func (s *workflowService) mergeConfigVariables(ctx context.Context, projectID uuid.UUID, inputs map[string]any) map[string]any {
	if inputs == nil {
		inputs = map[string]any{}
	}
	cfg, err := s.configs.Get(ctx, projectID)
	if err != nil {
		return inputs
	}
	var variables map[string]any
	if err := json.Unmarshal(cfg.Variables, &variables); err != nil {
		return inputs
	}
	for key, value := range variables {
		if _, present := inputs[key]; !present {
			inputs[key] = value
		}
	}
	return inputs
}

func (s *workflowService) finishExecution(ctx context.Context, execution *domain.WorkflowExecution, status domain.ExecutionStatus, outputs map[string]any, errMessage string, steps, tokens int) (*domain.WorkflowExecution, error) {
	fields := map[string]any{
		"status":       status,
		"error":        errMessage,
		"total_steps":  steps,
		"total_tokens": tokens,
		"finished_at":  time.Now().UTC(),
	}
	if outputs != nil {
		if encoded, err := json.Marshal(outputs); err == nil {
			fields["outputs"] = datatypes.JSON(encoded)
		}
	}
	updated, err := s.executions.Update(ctx, execution.ID, fields)
	if err != nil {
		return nil, err
	}
	s.publishExecutionStatus(ctx, updated)
	s.logger.Info("workflow execution finished",
		zap.String("execution_id", updated.ID.String()),
		zap.String("status", string(status)),
		zap.Int("total_steps", steps),
		zap.Int("total_tokens", tokens))
	return updated, nil
}

func (s *workflowService) GetExecution(ctx context.Context, id uuid.UUID) (*domain.WorkflowExecution, error) {
	return s.executions.GetByID(ctx, id)
}

func (s *workflowService) ListExecutions(ctx context.Context, projectID uuid.UUID) ([]domain.WorkflowExecution, error) {
	return s.executions.ListByProject(ctx, projectID)
}

func (s *workflowService) ListExecutionsByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowExecution, error) {
	return s.executions.ListByWorkflow(ctx, workflowID)
}

func (s *workflowService) Cancel(ctx context.Context, executionID uuid.UUID) (*domain.WorkflowExecution, error) {
	execution, err := s.executions.GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if execution.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: execution is already %s", domain.ErrConflict, execution.Status)
	}

	updated, err := s.executions.Update(ctx, executionID, map[string]any{
		"status":      domain.ExecutionCancelled,
		"finished_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.publishExecutionStatus(ctx, updated)
	return updated, nil
}

func (s *workflowService) GetConfig(ctx context.Context, projectID uuid.UUID) (*domain.WorkflowConfig, error) {
	return s.configs.Get(ctx, projectID)
}

func (s *workflowService) SaveConfig(ctx context.Context, projectID uuid.UUID, variables map[string]any) (*domain.WorkflowConfig, error) {
	encoded, err := json.Marshal(variables)
	if err != nil {
		return nil, err
	}
	config := &domain.WorkflowConfig{
		ProjectID: projectID,
		Variables: datatypes.JSON(encoded),
	}
	if err := s.configs.Save(ctx, config); err != nil {
		return nil, err
	}
	return s.configs.Get(ctx, projectID)
}

func (s *workflowService) publishExecutionStatus(ctx context.Context, execution *domain.WorkflowExecution) {
	if s.bus == nil {
		return
	}
	event := domain.ExecutionStatusEvent{
		ExecutionID: execution.ID,
		WorkflowID:  execution.WorkflowID,
		ProjectID:   execution.ProjectID,
		Status:      execution.Status,
		Error:       execution.Error,
	}
	if err := s.bus.PublishExecutionStatus(ctx, event); err != nil {
		s.logger.Warn("could not publish execution status", zap.Error(err))
	}
}
