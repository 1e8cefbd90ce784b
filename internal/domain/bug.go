package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BugStatus string

const (
	BugOpen       BugStatus = "open"
	BugInProgress BugStatus = "in_progress"
	BugFixed      BugStatus = "fixed"
	BugClosed     BugStatus = "closed"
)

type FixStatus string

const (
	FixPending  FixStatus = "pending"
	FixVerified FixStatus = "verified"
	FixRejected FixStatus = "rejected"
)

// Bug is a defect report, optionally tied to the task or scenario it was
// found in. Images are base64 attachments kept as a JSONB array.
type Bug struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"bug_id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	TaskID      *uuid.UUID     `gorm:"type:uuid;index" json:"task_id,omitempty"`
	ScenarioID  string         `gorm:"type:varchar(100);index" json:"scenario_id,omitempty"`
	Summary     string         `gorm:"type:varchar(300);not null" json:"summary"`
	Description string         `gorm:"type:text" json:"description"`
	Severity    string         `gorm:"type:varchar(20);not null" json:"severity"`
	Status      BugStatus      `gorm:"type:varchar(20);index;default:'open'" json:"status"`
	Images      datatypes.JSON `gorm:"type:jsonb" json:"images"`
	CreatedBy   string         `gorm:"type:varchar(100)" json:"created_by"`
	Environment datatypes.JSON `gorm:"type:jsonb" json:"environment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated on detail reads only.
	Fixes []BugFix `gorm:"-" json:"fixes,omitempty"`
}

func NewBug(projectID uuid.UUID, summary, description, severity string) *Bug {
	return &Bug{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Summary:     summary,
		Description: description,
		Severity:    severity,
		Status:      BugOpen,
	}
}

// BugFix records one attempt to fix a bug. Creating a fix flips an
// open/in_progress bug to fixed; verification closes or reopens it.
type BugFix struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"fix_id"`
	BugID       uuid.UUID      `gorm:"type:uuid;index;not null" json:"bug_id"`
	Description string         `gorm:"type:text" json:"fix_description"`
	FixStatus   FixStatus      `gorm:"type:varchar(20);default:'pending'" json:"fix_status"`
	FixedBy     string         `gorm:"type:varchar(100)" json:"fixed_by"`
	VerifiedBy  string         `gorm:"type:varchar(100)" json:"verified_by,omitempty"`
	Images      datatypes.JSON `gorm:"type:jsonb" json:"images"`
	FixedAt     time.Time      `json:"fixed_at"`
	VerifiedAt  *time.Time     `json:"verified_at,omitempty"`
}

func NewBugFix(bugID uuid.UUID, description, fixedBy string) *BugFix {
	return &BugFix{
		ID:          uuid.New(),
		BugID:       bugID,
		Description: description,
		FixStatus:   FixPending,
		FixedBy:     fixedBy,
		FixedAt:     time.Now().UTC(),
	}
}
