package repository

import (
	"context"
	"errors"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type testRunRepository struct {
	db *gorm.DB
}

// NewTestRunRepository creates a new instance of TestRunRepository.
func NewTestRunRepository(db *gorm.DB) ports.TestRunRepository {
	return &testRunRepository{db: db}
}

func (r *testRunRepository) Create(ctx context.Context, run *domain.TestRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *testRunRepository) ListByCase(ctx context.Context, projectID uuid.UUID, caseID string) ([]domain.TestRun, error) {
	var runs []domain.TestRun
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND test_case_id = ?", projectID, caseID).
		Order("executed_at DESC").
		Find(&runs).Error
	return runs, err
}

func (r *testRunRepository) ListByScenario(ctx context.Context, projectID uuid.UUID, scenarioID string) ([]domain.TestRun, error) {
	var runs []domain.TestRun
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND scenario_id = ?", projectID, scenarioID).
		Order("executed_at DESC").
		Find(&runs).Error
	return runs, err
}

func (r *testRunRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]domain.TestRun, error) {
	var runs []domain.TestRun
	query := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("executed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&runs).Error
	return runs, err
}

func (r *testRunRepository) LatestForCase(ctx context.Context, projectID uuid.UUID, caseID string) (*domain.TestRun, error) {
	var run domain.TestRun
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND test_case_id = ?", projectID, caseID).
		Order("executed_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *testRunRepository) GetByID(ctx context.Context, runID uuid.UUID) (*domain.TestRun, error) {
	var run domain.TestRun
	err := r.db.WithContext(ctx).Where("id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *testRunRepository) Update(ctx context.Context, runID uuid.UUID, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&domain.TestRun{}).
		Where("id = ?", runID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *testRunRepository) Delete(ctx context.Context, runID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", runID).Delete(&domain.TestRun{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
