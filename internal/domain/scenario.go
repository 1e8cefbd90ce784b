package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Scenario is a named grouping of related test cases within a project.
// Its identity (`ScenarioID`) may be assigned by the workflow engine
// ("SC-01" style) and is deliberately not unique: each workflow execution
// saves its scenarios additively, so the row key is a surrogate that never
// leaves the repository layer.
type Scenario struct {
	RowID       uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ScenarioID  string    `gorm:"type:varchar(100);index" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`
	Name        string    `gorm:"type:varchar(200)" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Priority    string    `gorm:"type:varchar(10);default:'Medium'" json:"priority"`
	Version     string    `gorm:"type:varchar(20);default:'1.0'" json:"version"`
	ExecutionID string    `gorm:"type:varchar(100);index" json:"execution_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TestCases []TestCase `gorm:"-" json:"test_cases"`
}

type TestCaseStatus string

const (
	TestCaseUntested TestCaseStatus = "untested"
	TestCasePassed   TestCaseStatus = "passed"
	TestCaseFailed   TestCaseStatus = "failed"
	TestCaseBlocked  TestCaseStatus = "blocked"
)

// TestCase is a single verifiable expectation with ordered steps and an
// expected result. Steps are synthesized strings, stored as a JSONB array.
type TestCase struct {
	RowID          uint           `gorm:"primaryKey;autoIncrement" json:"-"`
	CaseID         string         `gorm:"type:varchar(100);index" json:"id"`
	ScenarioID     string         `gorm:"type:varchar(100);index" json:"scenario_id"`
	ProjectID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	Title          string         `gorm:"type:varchar(300)" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Steps          datatypes.JSON `gorm:"type:jsonb" json:"steps"`
	ExpectedResult string         `gorm:"type:text" json:"expected_result"`
	Status         TestCaseStatus `gorm:"type:varchar(20);default:'untested'" json:"status"`
	Version        string         `gorm:"type:varchar(20);default:'1.0'" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TestRun is one append-only execution record of a test case.
type TestRun struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"run_id"`
	TestCaseID string         `gorm:"type:varchar(100);index;not null" json:"test_case_id"`
	ScenarioID string         `gorm:"type:varchar(100);index" json:"scenario_id"`
	ProjectID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	Result     string         `gorm:"type:varchar(20)" json:"result"`
	Notes      string         `gorm:"type:text" json:"notes"`
	ExecutedBy string         `gorm:"type:varchar(100)" json:"executed_by"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	Version    string         `gorm:"type:varchar(20);default:'1.0'" json:"version"`
	ExecutedAt time.Time      `gorm:"index" json:"executed_at"`

	CreatedAt time.Time `json:"created_at"`
}

func NewTestRun(projectID uuid.UUID, testCaseID, scenarioID string) *TestRun {
	return &TestRun{
		ID:         uuid.New(),
		TestCaseID: testCaseID,
		ScenarioID: scenarioID,
		ProjectID:  projectID,
		Version:    "1.0",
		ExecutedAt: time.Now().UTC(),
	}
}
