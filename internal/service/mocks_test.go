package service

import (
	"context"
	"sort"
	"sync"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
)

// In-memory fakes for the ports the services depend on. They implement
// just enough semantics for the behaviors under test.

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uuid.UUID]*domain.Task{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, task := range r.tasks {
		if task.ProjectID == projectID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Task, error) {
	r.mu.Lock()
	task, ok := r.tasks[id]
	if ok {
		if name, found := fields["name"].(string); found {
			task.Name = name
		}
		if status, found := fields["status"].(domain.TaskStatus); found {
			task.Status = status
		}
	}
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) ClaimRun(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	if task.Status == domain.TaskRunning {
		return domain.ErrConflict
	}
	task.Status = domain.TaskRunning
	return nil
}

func (r *fakeTaskRepo) MarkCompleted(_ context.Context, id uuid.UUID, output string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	task.Status = domain.TaskCompleted
	task.Output = output
	return nil
}

func (r *fakeTaskRepo) MarkFailed(_ context.Context, id uuid.UUID, errMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	task.Status = domain.TaskFailed
	task.Output = errMessage
	return nil
}

// fakeRunner scripts RunWebTask outcomes per attempt and counts calls.
type fakeRunner struct {
	mu          sync.Mutex
	runErrs     []error
	runOutput   string
	runCalls    int
	cleanups    int
	submitted   []string
	submitErr   error
	repos       []string
	listReposE  error
	submitReply map[string]any
}

func (f *fakeRunner) RunWebTask(_ context.Context, _ ports.WebTask) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.runCalls
	f.runCalls++
	if call < len(f.runErrs) && f.runErrs[call] != nil {
		return "", f.runErrs[call]
	}
	return f.runOutput, nil
}

func (f *fakeRunner) SubmitPrompt(_ context.Context, prompt, _ string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, prompt)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if f.submitReply != nil {
		return f.submitReply, nil
	}
	return map[string]any{"submitted": true}, nil
}

func (f *fakeRunner) ListRepositories(_ context.Context) ([]string, error) {
	return f.repos, f.listReposE
}

func (f *fakeRunner) Cleanup() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups++
	return nil
}

// fakeBus records published events.
type fakeBus struct {
	mu              sync.Mutex
	taskEvents      []domain.TaskStatusEvent
	executionEvents []domain.ExecutionStatusEvent
}

func (b *fakeBus) PublishExecutionStatus(_ context.Context, event domain.ExecutionStatusEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.executionEvents = append(b.executionEvents, event)
	return nil
}

func (b *fakeBus) PublishTaskStatus(_ context.Context, event domain.TaskStatusEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.taskEvents = append(b.taskEvents, event)
	return nil
}

func (b *fakeBus) SubscribeExecutionStatus(_ context.Context) (<-chan domain.ExecutionStatusEvent, error) {
	ch := make(chan domain.ExecutionStatusEvent)
	close(ch)
	return ch, nil
}

type fakeBugRepo struct {
	mu    sync.Mutex
	bugs  map[uuid.UUID]*domain.Bug
	fixes map[uuid.UUID]*domain.BugFix
}

func newFakeBugRepo() *fakeBugRepo {
	return &fakeBugRepo{
		bugs:  map[uuid.UUID]*domain.Bug{},
		fixes: map[uuid.UUID]*domain.BugFix{},
	}
}

func (r *fakeBugRepo) Create(_ context.Context, bug *domain.Bug) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *bug
	r.bugs[bug.ID] = &copied
	return nil
}

func (r *fakeBugRepo) CreateBatch(ctx context.Context, bugs []domain.Bug) error {
	for i := range bugs {
		if err := r.Create(ctx, &bugs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeBugRepo) ListByProject(_ context.Context, projectID uuid.UUID, _ map[string]any) ([]domain.Bug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Bug
	for _, bug := range r.bugs {
		if bug.ProjectID == projectID {
			out = append(out, *bug)
		}
	}
	return out, nil
}

func (r *fakeBugRepo) GetByID(_ context.Context, bugID uuid.UUID) (*domain.Bug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bug, ok := r.bugs[bugID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *bug
	for _, fix := range r.fixes {
		if fix.BugID == bugID {
			copied.Fixes = append(copied.Fixes, *fix)
		}
	}
	return &copied, nil
}

func (r *fakeBugRepo) Update(ctx context.Context, bugID uuid.UUID, fields map[string]any) (*domain.Bug, error) {
	r.mu.Lock()
	bug, ok := r.bugs[bugID]
	if ok {
		if status, found := fields["status"].(domain.BugStatus); found {
			bug.Status = status
		}
	}
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, bugID)
}

func (r *fakeBugRepo) Delete(_ context.Context, bugID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bugs[bugID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.bugs, bugID)
	return nil
}

func (r *fakeBugRepo) CreateFix(_ context.Context, fix *domain.BugFix) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *fix
	r.fixes[fix.ID] = &copied
	return nil
}

func (r *fakeBugRepo) GetFix(_ context.Context, fixID uuid.UUID) (*domain.BugFix, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fix, ok := r.fixes[fixID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *fix
	return &copied, nil
}

func (r *fakeBugRepo) UpdateFix(_ context.Context, fixID uuid.UUID, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fix, ok := r.fixes[fixID]
	if !ok {
		return domain.ErrNotFound
	}
	if status, found := fields["fix_status"].(domain.FixStatus); found {
		fix.FixStatus = status
	}
	if verifiedBy, found := fields["verified_by"].(string); found {
		fix.VerifiedBy = verifiedBy
	}
	return nil
}

func (r *fakeBugRepo) ListFixes(_ context.Context, bugID uuid.UUID) ([]domain.BugFix, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.BugFix{}
	for _, fix := range r.fixes {
		if fix.BugID == bugID {
			out = append(out, *fix)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FixedAt.After(out[j].FixedAt)
	})
	return out, nil
}

func (r *fakeBugRepo) MarkFixed(_ context.Context, bugID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bug, ok := r.bugs[bugID]
	if !ok {
		return nil
	}
	if bug.Status == domain.BugOpen || bug.Status == domain.BugInProgress {
		bug.Status = domain.BugFixed
	}
	return nil
}

func (r *fakeBugRepo) SetStatus(_ context.Context, bugID uuid.UUID, status domain.BugStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bug, ok := r.bugs[bugID]
	if !ok {
		return domain.ErrNotFound
	}
	bug.Status = status
	return nil
}

type fakeScenarioRepo struct {
	mu        sync.Mutex
	scenarios []domain.Scenario
	replaced  int
	insertErr error
}

func (r *fakeScenarioRepo) Replace(_ context.Context, projectID uuid.UUID, scenarios []domain.Scenario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.scenarios[:0]
	for _, scenario := range r.scenarios {
		if scenario.ProjectID != projectID {
			kept = append(kept, scenario)
		}
	}
	r.scenarios = append(kept, scenarios...)
	r.replaced++
	return nil
}

func (r *fakeScenarioRepo) Insert(_ context.Context, scenarios []domain.Scenario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.scenarios = append(r.scenarios, scenarios...)
	return nil
}

func (r *fakeScenarioRepo) Create(ctx context.Context, scenario *domain.Scenario) error {
	return r.Insert(ctx, []domain.Scenario{*scenario})
}

func (r *fakeScenarioRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]domain.Scenario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Scenario
	for _, scenario := range r.scenarios {
		if scenario.ProjectID == projectID {
			out = append(out, scenario)
		}
	}
	return out, nil
}

func (r *fakeScenarioRepo) GetByID(_ context.Context, projectID uuid.UUID, scenarioID string) (*domain.Scenario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.scenarios) - 1; i >= 0; i-- {
		if r.scenarios[i].ProjectID == projectID && r.scenarios[i].ScenarioID == scenarioID {
			copied := r.scenarios[i]
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeScenarioRepo) Update(_ context.Context, projectID uuid.UUID, scenarioID string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.scenarios {
		if r.scenarios[i].ProjectID == projectID && r.scenarios[i].ScenarioID == scenarioID {
			if name, found := fields["name"].(string); found {
				r.scenarios[i].Name = name
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeScenarioRepo) Delete(_ context.Context, projectID uuid.UUID, scenarioID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.scenarios[:0]
	found := false
	for _, scenario := range r.scenarios {
		if scenario.ProjectID == projectID && scenario.ScenarioID == scenarioID {
			found = true
			continue
		}
		kept = append(kept, scenario)
	}
	r.scenarios = kept
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

type fakeTestCaseRepo struct {
	mu    sync.Mutex
	cases []domain.TestCase
}

func (r *fakeTestCaseRepo) Create(_ context.Context, testCase *domain.TestCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cases = append(r.cases, *testCase)
	return nil
}

func (r *fakeTestCaseRepo) ListByScenario(_ context.Context, projectID uuid.UUID, scenarioID string) ([]domain.TestCase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TestCase
	for _, testCase := range r.cases {
		if testCase.ProjectID == projectID && testCase.ScenarioID == scenarioID {
			out = append(out, testCase)
		}
	}
	return out, nil
}

func (r *fakeTestCaseRepo) GetByID(_ context.Context, projectID uuid.UUID, scenarioID, caseID string) (*domain.TestCase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.cases {
		if r.cases[i].ProjectID == projectID && r.cases[i].ScenarioID == scenarioID && r.cases[i].CaseID == caseID {
			copied := r.cases[i]
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTestCaseRepo) Update(_ context.Context, projectID uuid.UUID, scenarioID, caseID string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.cases {
		if r.cases[i].ProjectID == projectID && r.cases[i].ScenarioID == scenarioID && r.cases[i].CaseID == caseID {
			if status, found := fields["status"].(domain.TestCaseStatus); found {
				r.cases[i].Status = status
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeTestCaseRepo) Delete(_ context.Context, projectID uuid.UUID, scenarioID, caseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.cases[:0]
	found := false
	for _, testCase := range r.cases {
		if testCase.ProjectID == projectID && testCase.ScenarioID == scenarioID && testCase.CaseID == caseID {
			found = true
			continue
		}
		kept = append(kept, testCase)
	}
	r.cases = kept
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

type fakeTestRunRepo struct {
	mu   sync.Mutex
	runs []domain.TestRun
}

func (r *fakeTestRunRepo) Create(_ context.Context, run *domain.TestRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *run)
	return nil
}

func (r *fakeTestRunRepo) ListByCase(_ context.Context, projectID uuid.UUID, caseID string) ([]domain.TestRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TestRun
	for _, run := range r.runs {
		if run.ProjectID == projectID && run.TestCaseID == caseID {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *fakeTestRunRepo) ListByScenario(_ context.Context, projectID uuid.UUID, scenarioID string) ([]domain.TestRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TestRun
	for _, run := range r.runs {
		if run.ProjectID == projectID && run.ScenarioID == scenarioID {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *fakeTestRunRepo) ListByProject(_ context.Context, projectID uuid.UUID, limit int) ([]domain.TestRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TestRun
	for _, run := range r.runs {
		if run.ProjectID == projectID {
			out = append(out, run)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTestRunRepo) LatestForCase(ctx context.Context, projectID uuid.UUID, caseID string) (*domain.TestRun, error) {
	runs, _ := r.ListByCase(ctx, projectID, caseID)
	if len(runs) == 0 {
		return nil, domain.ErrNotFound
	}
	latest := runs[0]
	for _, run := range runs[1:] {
		if run.ExecutedAt.After(latest.ExecutedAt) {
			latest = run
		}
	}
	return &latest, nil
}

func (r *fakeTestRunRepo) GetByID(_ context.Context, runID uuid.UUID) (*domain.TestRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.ID == runID {
			copied := run
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTestRunRepo) Update(_ context.Context, runID uuid.UUID, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID == runID {
			if notes, found := fields["notes"].(string); found {
				r.runs[i].Notes = notes
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeTestRunRepo) Delete(_ context.Context, runID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.runs[:0]
	found := false
	for _, run := range r.runs {
		if run.ID == runID {
			found = true
			continue
		}
		kept = append(kept, run)
	}
	r.runs = kept
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

type fakeWorkflowRepo struct {
	mu        sync.Mutex
	workflows map[uuid.UUID]*domain.Workflow
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{workflows: map[uuid.UUID]*domain.Workflow{}}
}

func (r *fakeWorkflowRepo) Create(_ context.Context, workflow *domain.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *workflow
	r.workflows[workflow.ID] = &copied
	return nil
}

func (r *fakeWorkflowRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workflow, ok := r.workflows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *workflow
	return &copied, nil
}

func (r *fakeWorkflowRepo) List(_ context.Context, projectID *uuid.UUID) ([]domain.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Workflow
	for _, workflow := range r.workflows {
		if projectID == nil || workflow.ProjectID == *projectID {
			out = append(out, *workflow)
		}
	}
	return out, nil
}

func (r *fakeWorkflowRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Workflow, error) {
	r.mu.Lock()
	workflow, ok := r.workflows[id]
	if ok {
		if name, found := fields["name"].(string); found {
			workflow.Name = name
		}
	}
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *fakeWorkflowRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workflows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.workflows, id)
	return nil
}

type fakeExecutionRepo struct {
	mu         sync.Mutex
	executions map[uuid.UUID]*domain.WorkflowExecution
}

func newFakeExecutionRepo() *fakeExecutionRepo {
	return &fakeExecutionRepo{executions: map[uuid.UUID]*domain.WorkflowExecution{}}
}

func (r *fakeExecutionRepo) Create(_ context.Context, execution *domain.WorkflowExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *execution
	r.executions[execution.ID] = &copied
	return nil
}

func (r *fakeExecutionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.WorkflowExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	execution, ok := r.executions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *execution
	return &copied, nil
}

func (r *fakeExecutionRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]domain.WorkflowExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkflowExecution
	for _, execution := range r.executions {
		if execution.ProjectID == projectID {
			out = append(out, *execution)
		}
	}
	return out, nil
}

func (r *fakeExecutionRepo) ListByWorkflow(_ context.Context, workflowID uuid.UUID) ([]domain.WorkflowExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkflowExecution
	for _, execution := range r.executions {
		if execution.WorkflowID == workflowID {
			out = append(out, *execution)
		}
	}
	return out, nil
}

func (r *fakeExecutionRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.WorkflowExecution, error) {
	r.mu.Lock()
	execution, ok := r.executions[id]
	if ok {
		if status, found := fields["status"].(domain.ExecutionStatus); found {
			execution.Status = status
		}
		if errMessage, found := fields["error"].(string); found {
			execution.Error = errMessage
		}
		if steps, found := fields["total_steps"].(int); found {
			execution.TotalSteps = steps
		}
		if tokens, found := fields["total_tokens"].(int); found {
			execution.TotalTokens = tokens
		}
	}
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

type fakeConfigRepo struct {
	mu      sync.Mutex
	configs map[uuid.UUID]*domain.WorkflowConfig
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{configs: map[uuid.UUID]*domain.WorkflowConfig{}}
}

func (r *fakeConfigRepo) Get(_ context.Context, projectID uuid.UUID) (*domain.WorkflowConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	config, ok := r.configs[projectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *config
	return &copied, nil
}

func (r *fakeConfigRepo) Save(_ context.Context, config *domain.WorkflowConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *config
	r.configs[config.ProjectID] = &copied
	return nil
}

// fakeEngine scripts the workflow engine responses.
type fakeEngine struct {
	mu         sync.Mutex
	info       map[string]any
	infoErr    error
	parameters map[string]any
	paramsErr  error
	site       map[string]any
	uploadID   string
	runResult  *domain.EngineRunResult
	runErr     error
	runInputs  map[string]any
	runCalls   int
}

func (e *fakeEngine) Info(_ context.Context, _ string) (map[string]any, error) {
	if e.infoErr != nil {
		return nil, e.infoErr
	}
	if e.info != nil {
		return e.info, nil
	}
	return map[string]any{"name": "fake workflow", "mode": "workflow"}, nil
}

func (e *fakeEngine) Site(_ context.Context, _ string) (map[string]any, error) {
	return e.site, nil
}

func (e *fakeEngine) Parameters(_ context.Context, _ string) (map[string]any, error) {
	if e.paramsErr != nil {
		return nil, e.paramsErr
	}
	if e.parameters != nil {
		return e.parameters, nil
	}
	return map[string]any{"user_input_form": []any{}}, nil
}

func (e *fakeEngine) UploadFile(_ context.Context, _, _, _, _, _ string) (string, error) {
	return e.uploadID, nil
}

func (e *fakeEngine) RunWorkflow(_ context.Context, _ string, inputs map[string]any, _, _ string) (*domain.EngineRunResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runCalls++
	e.runInputs = inputs
	if e.runErr != nil {
		return nil, e.runErr
	}
	return e.runResult, nil
}

type fakeDocumentRepo struct {
	mu        sync.Mutex
	documents map[uuid.UUID]*domain.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{documents: map[uuid.UUID]*domain.Document{}}
}

func (r *fakeDocumentRepo) Save(_ context.Context, document *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if document.IsCurrent {
		for _, existing := range r.documents {
			if existing.ProjectID == document.ProjectID {
				existing.IsCurrent = false
			}
		}
	}
	copied := *document
	r.documents[document.ID] = &copied
	return nil
}

func (r *fakeDocumentRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Document
	for _, document := range r.documents {
		if document.ProjectID == projectID {
			out = append(out, *document)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	document, ok := r.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *document
	return &copied, nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.documents, id)
	return nil
}
