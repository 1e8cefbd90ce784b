package service

import (
	"context"
	"encoding/json"
	"fmt"

	"testops/internal/core/ports"
	"testops/internal/domain"
	"testops/internal/transform"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"go.uber.org/zap"
)

type ScenarioService interface {
	// SaveAll replaces the project's scenarios and test cases wholesale.
	SaveAll(ctx context.Context, projectID uuid.UUID, scenarios []domain.Scenario) error

	// SaveFromOutput transforms a raw workflow engine output document and
	// appends its scenarios to the project, stamped with executionID. The
	// existing rows are kept; history accumulates across executions.
	SaveFromOutput(ctx context.Context, projectID uuid.UUID, executionID string, output map[string]any) ([]domain.Scenario, error)

	Create(ctx context.Context, scenario *domain.Scenario) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Scenario, error)
	Get(ctx context.Context, projectID uuid.UUID, scenarioID string) (*domain.Scenario, error)
	Update(ctx context.Context, projectID uuid.UUID, scenarioID string, fields map[string]any) error
	Delete(ctx context.Context, projectID uuid.UUID, scenarioID string) error

	CreateTestCase(ctx context.Context, testCase *domain.TestCase) error
	ListTestCases(ctx context.Context, projectID uuid.UUID, scenarioID string) ([]domain.TestCase, error)
	GetTestCase(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string) (*domain.TestCase, error)
	UpdateTestCase(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string, fields map[string]any) error
	DeleteTestCase(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string) error
}

type scenarioService struct {
	scenarios ports.ScenarioRepository
	testCases ports.TestCaseRepository
	logger    *zap.Logger
}

func NewScenarioService(scenarios ports.ScenarioRepository, testCases ports.TestCaseRepository, logger *zap.Logger) ScenarioService {
	return &scenarioService{
		scenarios: scenarios,
		testCases: testCases,
		logger:    logger,
	}
}

func (s *scenarioService) SaveAll(ctx context.Context, projectID uuid.UUID, scenarios []domain.Scenario) error {
	for i := range scenarios {
		scenarios[i].ProjectID = projectID
		for j := range scenarios[i].TestCases {
			scenarios[i].TestCases[j].ProjectID = projectID
		}
	}
	if err := s.scenarios.Replace(ctx, projectID, scenarios); err != nil {
		return err
	}
	s.logger.Info("scenarios replaced",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(scenarios)))
	return nil
}

func (s *scenarioService) SaveFromOutput(ctx context.Context, projectID uuid.UUID, executionID string, output map[string]any) ([]domain.Scenario, error) {
	if output == nil {
		return nil, nil
	}
	transformed := transform.Output(output)
	if err := transform.Validate(transformed); err != nil {
		return nil, err
	}

	rawScenarios, ok := transformed["scenarios"].([]any)
	if !ok {
		// No structured output; nothing to save.
		return nil, nil
	}

	scenarios := make([]domain.Scenario, 0, len(rawScenarios))
	for _, raw := range rawScenarios {
		doc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		scenarios = append(scenarios, scenarioFromDoc(projectID, executionID, doc))
	}

	if err := s.scenarios.Insert(ctx, scenarios); err != nil {
		return nil, err
	}
	s.logger.Info("scenarios saved from workflow output",
		zap.String("project_id", projectID.String()),
		zap.String("execution_id", executionID),
		zap.Int("count", len(scenarios)))
	return scenarios, nil
}

func scenarioFromDoc(projectID uuid.UUID, executionID string, doc map[string]any) domain.Scenario {
	scenario := domain.Scenario{
		ScenarioID:  stringValue(doc["id"]),
		ProjectID:   projectID,
		Name:        stringValue(doc["name"]),
		Description: stringValue(doc["description"]),
		Priority:    stringValue(doc["priority"]),
		Version:     stringValue(doc["version"]),
		ExecutionID: executionID,
	}

	rawCases, _ := doc["test_cases"].([]any)
	for _, rawCase := range rawCases {
		caseDoc, ok := rawCase.(map[string]any)
		if !ok {
			continue
		}
		steps, _ := json.Marshal(caseDoc["steps"])
		scenario.TestCases = append(scenario.TestCases, domain.TestCase{
			CaseID:         stringValue(caseDoc["id"]),
			ScenarioID:     scenario.ScenarioID,
			ProjectID:      projectID,
			Title:          stringValue(caseDoc["title"]),
			Description:    stringValue(caseDoc["description"]),
			Steps:          datatypes.JSON(steps),
			ExpectedResult: stringValue(caseDoc["expected_result"]),
			Status:         domain.TestCaseStatus(stringValue(caseDoc["status"])),
			Version:        stringValue(caseDoc["version"]),
		})
	}
	return scenario
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func (s *scenarioService) Create(ctx context.Context, scenario *domain.Scenario) error {
	if scenario.Name == "" {
		return fmt.Errorf("%w: scenario name is required", domain.ErrValidation)
	}
	if scenario.ScenarioID == "" {
		scenario.ScenarioID = uuid.New().String()
	}
	if scenario.Priority == "" {
		scenario.Priority = transform.DeterminePriority(scenario.Name)
	}
	if scenario.Version == "" {
		scenario.Version = "1.0"
	}
	return s.scenarios.Create(ctx, scenario)
}

func (s *scenarioService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Scenario, error) {
	return s.scenarios.ListByProject(ctx, projectID)
}

func (s *scenarioService) Get(ctx context.Context, projectID uuid.UUID, scenarioID string) (*domain.Scenario, error) {
	return s.scenarios.GetByID(ctx, projectID, scenarioID)
}

func (s *scenarioService) Update(ctx context.Context, projectID uuid.UUID, scenarioID string, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	return s.scenarios.Update(ctx, projectID, scenarioID, fields)
}

func (s *scenarioService) Delete(ctx context.Context, projectID uuid.UUID, scenarioID string) error {
	return s.scenarios.Delete(ctx, projectID, scenarioID)
}

func (s *scenarioService) CreateTestCase(ctx context.Context, testCase *domain.TestCase) error {
	if testCase.Title == "" {
		return fmt.Errorf("%w: test case title is required", domain.ErrValidation)
	}
	if testCase.ScenarioID == "" {
		return fmt.Errorf("%w: scenario id is required", domain.ErrValidation)
	}
	if testCase.CaseID == "" {
		testCase.CaseID = uuid.New().String()
	}
	if testCase.Status == "" {
		testCase.Status = domain.TestCaseUntested
	}
	if testCase.Version == "" {
		testCase.Version = "1.0"
	}
	return s.testCases.Create(ctx, testCase)
}

func (s *scenarioService) ListTestCases(ctx context.Context, projectID uuid.UUID, scenarioID string) ([]domain.TestCase, error) {
	return s.testCases.ListByScenario(ctx, projectID, scenarioID)
}

func (s *scenarioService) GetTestCase(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string) (*domain.TestCase, error) {
	return s.testCases.GetByID(ctx, projectID, scenarioID, caseID)
}

func (s *scenarioService) UpdateTestCase(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	return s.testCases.Update(ctx, projectID, scenarioID, caseID, fields)
}

func (s *scenarioService) DeleteTestCase(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string) error {
	return s.testCases.Delete(ctx, projectID, scenarioID, caseID)
}
