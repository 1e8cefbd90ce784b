package repository

import (
	"context"
	"errors"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type testCaseRepository struct {
	db *gorm.DB
}

// NewTestCaseRepository creates a new instance of TestCaseRepository.
func NewTestCaseRepository(db *gorm.DB) ports.TestCaseRepository {
	return &testCaseRepository{db: db}
}

func (r *testCaseRepository) Create(ctx context.Context, testCase *domain.TestCase) error {
	return r.db.WithContext(ctx).Create(testCase).Error
}

func (r *testCaseRepository) ListByScenario(ctx context.Context, projectID uuid.UUID, scenarioID string) ([]domain.TestCase, error) {
	var testCases []domain.TestCase
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND scenario_id = ?", projectID, scenarioID).
		Order("created_at ASC").
		Find(&testCases).Error
	return testCases, err
}

func (r *testCaseRepository) GetByID(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string) (*domain.TestCase, error) {
	var testCase domain.TestCase
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND scenario_id = ? AND case_id = ?", projectID, scenarioID, caseID).
		Order("created_at DESC").
		First(&testCase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &testCase, nil
}

func (r *testCaseRepository) Update(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&domain.TestCase{}).
		Where("project_id = ? AND scenario_id = ? AND case_id = ?", projectID, scenarioID, caseID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *testCaseRepository) Delete(ctx context.Context, projectID uuid.UUID, scenarioID, caseID string) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND scenario_id = ? AND case_id = ?", projectID, scenarioID, caseID).
		Delete(&domain.TestCase{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
