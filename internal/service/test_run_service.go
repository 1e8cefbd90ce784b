package service

import (
	"context"
	"errors"
	"fmt"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validRunResults = map[string]bool{
	string(domain.TestCasePassed):  true,
	string(domain.TestCaseFailed):  true,
	string(domain.TestCaseBlocked): true,
}

type TestRunService interface {
	// Record appends the run and moves the test case to the run's result.
	Record(ctx context.Context, run *domain.TestRun) error

	ListByCase(ctx context.Context, projectID uuid.UUID, caseID string) ([]domain.TestRun, error)
	ListByScenario(ctx context.Context, projectID uuid.UUID, scenarioID string) ([]domain.TestRun, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]domain.TestRun, error)
	LatestForCase(ctx context.Context, projectID uuid.UUID, caseID string) (*domain.TestRun, error)
	Get(ctx context.Context, runID uuid.UUID) (*domain.TestRun, error)
	Update(ctx context.Context, runID uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, runID uuid.UUID) error
}

type testRunService struct {
	runs      ports.TestRunRepository
	testCases ports.TestCaseRepository
	logger    *zap.Logger
}

func NewTestRunService(runs ports.TestRunRepository, testCases ports.TestCaseRepository, logger *zap.Logger) TestRunService {
	return &testRunService{runs: runs, testCases: testCases, logger: logger}
}

func (s *testRunService) Record(ctx context.Context, run *domain.TestRun) error {
	if run.TestCaseID == "" {
		return fmt.Errorf("%w: test case id is required", domain.ErrValidation)
	}
	if !validRunResults[run.Result] {
		return fmt.Errorf("%w: result must be passed, failed or blocked", domain.ErrValidation)
	}

	if err := s.runs.Create(ctx, run); err != nil {
		return err
	}

	// The case mirrors its latest run result. A missing case is tolerated:
	// runs can reference cases imported from an earlier engine output.
	err := s.testCases.Update(ctx, run.ProjectID, run.ScenarioID, run.TestCaseID, map[string]any{
		"status": domain.TestCaseStatus(run.Result),
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	s.logger.Info("test run recorded",
		zap.String("run_id", run.ID.String()),
		zap.String("test_case_id", run.TestCaseID),
		zap.String("result", run.Result))
	return nil
}

func (s *testRunService) ListByCase(ctx context.Context, projectID uuid.UUID, caseID string) ([]domain.TestRun, error) {
	return s.runs.ListByCase(ctx, projectID, caseID)
}

func (s *testRunService) ListByScenario(ctx context.Context, projectID uuid.UUID, scenarioID string) ([]domain.TestRun, error) {
	return s.runs.ListByScenario(ctx, projectID, scenarioID)
}

func (s *testRunService) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]domain.TestRun, error) {
	return s.runs.ListByProject(ctx, projectID, limit)
}

func (s *testRunService) LatestForCase(ctx context.Context, projectID uuid.UUID, caseID string) (*domain.TestRun, error) {
	return s.runs.LatestForCase(ctx, projectID, caseID)
}

func (s *testRunService) Get(ctx context.Context, runID uuid.UUID) (*domain.TestRun, error) {
	return s.runs.GetByID(ctx, runID)
}

func (s *testRunService) Update(ctx context.Context, runID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	return s.runs.Update(ctx, runID, fields)
}

func (s *testRunService) Delete(ctx context.Context, runID uuid.UUID) error {
	return s.runs.Delete(ctx, runID)
}
