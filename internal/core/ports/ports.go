// Package ports declares the boundaries the service layer depends on:
// repositories over the document store, the workflow engine, the browser
// automation runner and the event bus. Implementations live under
// internal/core/postgres, internal/dify, internal/browser and
// internal/infrastructure/redis.
package ports

import (
	"context"

	"testops/internal/domain"

	"github.com/google/uuid"
)

// ProjectRepository persists the root aggregate.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)

	// Update applies the given fields and returns the fresh row.
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskRepository persists automation tasks and owns the run guard.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ClaimRun flips the task to running in a single conditional update.
	// Returns domain.ErrConflict when the task is already running, so two
	// concurrent starts cannot both win.
	ClaimRun(ctx context.Context, id uuid.UUID) error

	MarkCompleted(ctx context.Context, id uuid.UUID, output string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMessage string) error
}

// ScenarioRepository persists scenarios together with their embedded test
// cases. Scenario identities are not unique across executions; reads are
// project-scoped.
type ScenarioRepository interface {
	// Replace is the delete-then-insert save path for a whole project.
	Replace(ctx context.Context, projectID uuid.UUID, scenarios []domain.Scenario) error

	// Insert is the additive save path used after workflow executions.
	Insert(ctx context.Context, scenarios []domain.Scenario) error

	Create(ctx context.Context, scenario *domain.Scenario) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Scenario, error)
	GetByID(ctx context.Context, projectID uuid.UUID, scenarioID string) (*domain.Scenario, error)
	Update(ctx context.Context, projectID uuid.UUID, scenarioID string, fields map[string]any) error
	Delete(ctx context.Context, projectID uuid.UUID, scenarioID string) error
}

type TestCaseRepository interface {
	Create(ctx context.Context, testCase *domain.TestCase) error
	ListByScenario(ctx context.Context, projectID uuid.UUID, scenarioID string) ([]domain.TestCase, error)
	GetByID(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string) (*domain.TestCase, error)
	Update(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string, fields map[string]any) error
	Delete(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string) error
}

// TestRunRepository is an append-only log with a few read shapes.
type TestRunRepository interface {
	Create(ctx context.Context, run *domain.TestRun) error
	ListByCase(ctx context.Context, projectID uuid.UUID, caseID string) ([]domain.TestRun, error)
	ListByScenario(ctx context.Context, projectID uuid.UUID, scenarioID string) ([]domain.TestRun, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]domain.TestRun, error)
	LatestForCase(ctx context.Context, projectID uuid.UUID, caseID string) (*domain.TestRun, error)
	GetByID(ctx context.Context, runID uuid.UUID) (*domain.TestRun, error)
	Update(ctx context.Context, runID uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, runID uuid.UUID) error
}

// BugRepository persists bugs and their fixes.
type BugRepository interface {
	Create(ctx context.Context, bug *domain.Bug) error
	CreateBatch(ctx context.Context, bugs []domain.Bug) error
	ListByProject(ctx context.Context, projectID uuid.UUID, filters map[string]any) ([]domain.Bug, error)
	GetByID(ctx context.Context, bugID uuid.UUID) (*domain.Bug, error)
	Update(ctx context.Context, bugID uuid.UUID, fields map[string]any) (*domain.Bug, error)
	Delete(ctx context.Context, bugID uuid.UUID) error

	CreateFix(ctx context.Context, fix *domain.BugFix) error
	GetFix(ctx context.Context, fixID uuid.UUID) (*domain.BugFix, error)
	UpdateFix(ctx context.Context, fixID uuid.UUID, fields map[string]any) error
	ListFixes(ctx context.Context, bugID uuid.UUID) ([]domain.BugFix, error)

	// MarkFixed sets status=fixed only while the bug is open or
	// in_progress; any other state is left untouched.
	MarkFixed(ctx context.Context, bugID uuid.UUID) error
	SetStatus(ctx context.Context, bugID uuid.UUID, status domain.BugStatus) error
}

type WorkflowRepository interface {
	Create(ctx context.Context, workflow *domain.Workflow) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error)

	// List returns all workflows, or only a project's when projectID is
	// non-nil.
	List(ctx context.Context, projectID *uuid.UUID) ([]domain.Workflow, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Workflow, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ExecutionRepository interface {
	Create(ctx context.Context, execution *domain.WorkflowExecution) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkflowExecution, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.WorkflowExecution, error)
	ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowExecution, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.WorkflowExecution, error)
}

type DocumentRepository interface {
	// Save inserts the document. When IsCurrent is set, the flag is
	// cleared on the project's other documents in the same transaction,
	// keeping the per-project singleton.
	Save(ctx context.Context, document *domain.Document) error

	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ConfigRepository interface {
	Get(ctx context.Context, projectID uuid.UUID) (*domain.WorkflowConfig, error)
	// Save upserts, preserving created_at on existing rows.
	Save(ctx context.Context, config *domain.WorkflowConfig) error
}

// WorkflowEngine is the Dify HTTP API surface the services consume. The
// api_key is per-workflow, not per-client.
type WorkflowEngine interface {
	Info(ctx context.Context, apiKey string) (map[string]any, error)
	Site(ctx context.Context, apiKey string) (map[string]any, error)
	Parameters(ctx context.Context, apiKey string) (map[string]any, error)
	UploadFile(ctx context.Context, apiKey, filepath, filename, mimetype, user string) (string, error)
	RunWorkflow(ctx context.Context, apiKey string, inputs map[string]any, user, responseMode string) (*domain.EngineRunResult, error)
}

// WebTask describes one browser-automation job.
type WebTask struct {
	URL     string
	Name    string
	Context []string
	WorkDir string
}

// AutomationRunner drives a real browser. One browser per invocation;
// Cleanup kills stray processes and scratch state between retries.
type AutomationRunner interface {
	RunWebTask(ctx context.Context, task WebTask) (string, error)
	SubmitPrompt(ctx context.Context, prompt, repository string) (map[string]any, error)
	ListRepositories(ctx context.Context) ([]string, error)
	Cleanup() error
}

// EventBus broadcasts status transitions. Publish failures are logged by
// callers and never propagate.
type EventBus interface {
	PublishExecutionStatus(ctx context.Context, event domain.ExecutionStatusEvent) error
	PublishTaskStatus(ctx context.Context, event domain.TaskStatusEvent) error
	SubscribeExecutionStatus(ctx context.Context) (<-chan domain.ExecutionStatusEvent, error)
}
