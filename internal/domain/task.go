package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Task is a browser-automation job scoped to a project. Context holds the
// ordered instruction lines fed to the automation runner, stored as JSONB.
type Task struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"task_id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	Name      string         `gorm:"type:varchar(200);not null" json:"task_name"`
	URL       string         `gorm:"type:text" json:"url"`
	Context   datatypes.JSON `gorm:"type:jsonb" json:"context"`
	Status    TaskStatus     `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	Output    string         `gorm:"type:text" json:"output"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTask(projectID uuid.UUID, name, url string, context datatypes.JSON) *Task {
	return &Task{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      name,
		URL:       url,
		Context:   context,
		Status:    TaskPending,
	}
}

func (t *Task) IsRunning() bool {
	return t.Status == TaskRunning
}
