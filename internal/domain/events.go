package domain

import (
	"github.com/google/uuid"
)

// ExecutionStatusEvent is published to the event bus whenever a workflow
// execution changes status. Publishing is fire-and-forget: a bus failure
// never fails the execution itself.
type ExecutionStatusEvent struct {
	ExecutionID uuid.UUID       `json:"execution_id"`
	WorkflowID  uuid.UUID       `json:"workflow_id"`
	ProjectID   uuid.UUID       `json:"project_id"`
	Status      ExecutionStatus `json:"status"`
	Error       string          `json:"error,omitempty"`
}

// TaskStatusEvent is published when an automation task transitions between
// pending, running, completed and failed.
type TaskStatusEvent struct {
	TaskID    uuid.UUID  `json:"task_id"`
	ProjectID uuid.UUID  `json:"project_id"`
	Status    TaskStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
}
