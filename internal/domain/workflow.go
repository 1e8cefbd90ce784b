package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Workflow wraps a third-party Dify workflow definition: the credentials
// used to call it plus the parsed input form schema reported by the engine.
type Workflow struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"workflow_id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	Name      string         `gorm:"type:varchar(200)" json:"name"`
	APIKey    string         `gorm:"type:varchar(200);not null" json:"api_key"`
	Mode      string         `gorm:"type:varchar(50)" json:"mode"`
	Inputs    datatypes.JSON `gorm:"type:jsonb" json:"inputs"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWorkflow(projectID uuid.UUID, name, apiKey, mode string) *Workflow {
	return &Workflow{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      name,
		APIKey:    apiKey,
		Mode:      mode,
	}
}

type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionSucceeded ExecutionStatus = "succeeded"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// IsTerminal reports whether the status can no longer change. Cancellation
// is only allowed while this returns false.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionSucceeded || s == ExecutionFailed || s == ExecutionCancelled
}

// WorkflowExecution is one invocation record of a workflow run against the
// Dify engine, with captured inputs, outputs and status.
type WorkflowExecution struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"execution_id"`
	WorkflowID uuid.UUID       `gorm:"type:uuid;index;not null" json:"workflow_id"`
	ProjectID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"project_id"`
	Status     ExecutionStatus `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	Inputs     datatypes.JSON  `gorm:"type:jsonb" json:"inputs"`
	Outputs    datatypes.JSON  `gorm:"type:jsonb" json:"outputs"`
	Error      string          `gorm:"type:text" json:"error"`

	TotalSteps  int `gorm:"default:0" json:"total_steps"`
	TotalTokens int `gorm:"default:0" json:"total_tokens"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func NewWorkflowExecution(workflowID, projectID uuid.UUID, inputs datatypes.JSON) *WorkflowExecution {
	return &WorkflowExecution{
		ID:         uuid.New(),
		WorkflowID: workflowID,
		ProjectID:  projectID,
		Status:     ExecutionPending,
		Inputs:     inputs,
		StartedAt:  time.Now().UTC(),
	}
}

// EngineRunResult is the shape the Dify engine returns for a workflow
// run. It is trusted as-is; Status is whatever status string the engine
// reported.
type EngineRunResult struct {
	Status      string         `json:"status"`
	Outputs     map[string]any `json:"outputs"`
	TotalSteps  int            `json:"total_steps"`
	TotalTokens int            `json:"total_tokens"`
	Error       string         `json:"error,omitempty"`
}

// WorkflowConfig holds the per-project test-data variables fed into
// workflow runs. One row per project, upserted on save.
type WorkflowConfig struct {
	ProjectID uuid.UUID      `gorm:"type:uuid;primary_key" json:"project_id"`
	Variables datatypes.JSON `gorm:"type:jsonb" json:"variables"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
