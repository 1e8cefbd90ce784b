// Package dto declares the request payloads the API binds. Identifiers
// arrive as strings and are parsed by the handlers so a malformed UUID is a
// 400, never a 500.
package dto

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Owner       string `json:"owner"`
	Status      string `json:"status"`
}

type UpdateProjectRequest struct {
	ProjectID   string         `json:"project_id" binding:"required"`
	UpdatedData map[string]any `json:"updated_data" binding:"required"`
}

type CreateTaskRequest struct {
	ProjectID string   `json:"project_id" binding:"required"`
	TaskName  string   `json:"task_name" binding:"required"`
	URL       string   `json:"url" binding:"required"`
	Context   []string `json:"context"`
}

type UpdateTaskRequest struct {
	TaskID      string         `json:"task_id" binding:"required"`
	UpdatedData map[string]any `json:"updated_data" binding:"required"`
}

type TestCasePayload struct {
	ID             string   `json:"id"`
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	Steps          []string `json:"steps"`
	ExpectedResult string   `json:"expected_result"`
	Status         string   `json:"status"`
	Version        string   `json:"version"`
}

type ScenarioPayload struct {
	ID          string            `json:"id"`
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Priority    string            `json:"priority"`
	Version     string            `json:"version"`
	TestCases   []TestCasePayload `json:"test_cases"`
}

type SaveScenariosRequest struct {
	ProjectID string            `json:"project_id" binding:"required"`
	Scenarios []ScenarioPayload `json:"scenarios" binding:"required"`
}

type SaveFromWorkflowRequest struct {
	ProjectID   string         `json:"project_id" binding:"required"`
	ExecutionID string         `json:"execution_id"`
	Output      map[string]any `json:"output" binding:"required"`
}

type CreateScenarioRequest struct {
	ProjectID string          `json:"project_id" binding:"required"`
	Scenario  ScenarioPayload `json:"scenario" binding:"required"`
}

type UpdateScenarioRequest struct {
	ProjectID   string         `json:"project_id" binding:"required"`
	ScenarioID  string         `json:"scenario_id" binding:"required"`
	UpdatedData map[string]any `json:"updated_data" binding:"required"`
}

type CreateTestCaseRequest struct {
	ProjectID  string          `json:"project_id" binding:"required"`
	ScenarioID string          `json:"scenario_id" binding:"required"`
	TestCase   TestCasePayload `json:"test_case" binding:"required"`
}

type UpdateTestCaseRequest struct {
	ProjectID   string         `json:"project_id" binding:"required"`
	ScenarioID  string         `json:"scenario_id" binding:"required"`
	TestCaseID  string         `json:"test_case_id" binding:"required"`
	UpdatedData map[string]any `json:"updated_data" binding:"required"`
}

type RecordTestRunRequest struct {
	ProjectID  string         `json:"project_id" binding:"required"`
	TestCaseID string         `json:"test_case_id" binding:"required"`
	ScenarioID string         `json:"scenario_id"`
	Result     string         `json:"result" binding:"required"`
	Notes      string         `json:"notes"`
	ExecutedBy string         `json:"executed_by"`
	Details    map[string]any `json:"details"`
}

type CreateBugRequest struct {
	ProjectID   string         `json:"project_id" binding:"required"`
	TaskID      string         `json:"task_id"`
	ScenarioID  string         `json:"scenario_id"`
	Summary     string         `json:"summary" binding:"required"`
	Description string         `json:"description"`
	Severity    string         `json:"severity" binding:"required"`
	Images      []string       `json:"images"`
	CreatedBy   string         `json:"created_by"`
	Environment map[string]any `json:"environment"`
}

type CreateBugBatchRequest struct {
	ProjectID string             `json:"project_id" binding:"required"`
	Bugs      []CreateBugRequest `json:"bugs" binding:"required,min=1"`
}

type UpdateBugRequest struct {
	BugID       string         `json:"bug_id" binding:"required"`
	UpdatedData map[string]any `json:"updated_data" binding:"required"`
}

type CreateFixRequest struct {
	BugID       string   `json:"bug_id" binding:"required"`
	Description string   `json:"fix_description" binding:"required"`
	FixedBy     string   `json:"fixed_by"`
	Images      []string `json:"images"`
}

type VerifyFixRequest struct {
	FixID      string `json:"fix_id" binding:"required"`
	Verified   *bool  `json:"verified" binding:"required"`
	VerifiedBy string `json:"verified_by"`
}

type CreateWorkflowRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Name      string `json:"name"`
	APIKey    string `json:"api_key" binding:"required"`
}

type UpdateWorkflowRequest struct {
	WorkflowID  string         `json:"workflow_id" binding:"required"`
	UpdatedData map[string]any `json:"updated_data" binding:"required"`
}

type RunWorkflowRequest struct {
	WorkflowID string         `json:"workflow_id" binding:"required"`
	Inputs     map[string]any `json:"inputs"`
}

type SaveConfigRequest struct {
	ProjectID string         `json:"project_id" binding:"required"`
	Variables map[string]any `json:"variables" binding:"required"`
}

type SubmitPromptRequest struct {
	Prompt     string `json:"prompt" binding:"required"`
	Repository string `json:"repository"`
}
