package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectDraft    ProjectStatus = "draft"
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
)

// Project is the root aggregate. Tasks, scenarios, documents and workflows
// all hang off a project, keyed by its application-assigned UUID.
type Project struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key" json:"project_id"`
	Name        string        `gorm:"type:varchar(200);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Version     string        `gorm:"type:varchar(20)" json:"version"`
	Owner       string        `gorm:"type:varchar(100)" json:"owner"`
	Status      ProjectStatus `gorm:"type:varchar(20);default:'draft'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated on detail reads only, never persisted as a column.
	Tasks     []Task     `gorm:"-" json:"tasks,omitempty"`
	Scenarios []Scenario `gorm:"-" json:"scenarios,omitempty"`
}

func NewProject(name, description, version, owner string, status ProjectStatus) *Project {
	if version == "" {
		version = "1.0"
	}
	if status == "" {
		status = ProjectDraft
	}
	return &Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Version:     version,
		Owner:       owner,
		Status:      status,
	}
}
