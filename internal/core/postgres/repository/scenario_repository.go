package repository

import (
	"context"
	"errors"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type scenarioRepository struct {
	db *gorm.DB
}

// NewScenarioRepository creates a new instance of ScenarioRepository.
func NewScenarioRepository(db *gorm.DB) ports.ScenarioRepository {
	return &scenarioRepository{db: db}
}

// Replace deletes every scenario and test case for the project, then
// inserts the new set. This is the plain save path; workflow-derived
// saves go through Insert and never delete.
func (r *scenarioRepository) Replace(ctx context.Context, projectID uuid.UUID, scenarios []domain.Scenario) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&domain.TestCase{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&domain.Scenario{}).Error; err != nil {
			return err
		}
		return insertScenarios(tx, scenarios)
	})
}

func (r *scenarioRepository) Insert(ctx context.Context, scenarios []domain.Scenario) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertScenarios(tx, scenarios)
	})
}

func insertScenarios(tx *gorm.DB, scenarios []domain.Scenario) error {
	for i := range scenarios {
		scenario := &scenarios[i]
		testCases := scenario.TestCases
		if err := tx.Create(scenario).Error; err != nil {
			return err
		}
		for j := range testCases {
			testCases[j].RowID = 0
			testCases[j].ScenarioID = scenario.ScenarioID
			testCases[j].ProjectID = scenario.ProjectID
			if err := tx.Create(&testCases[j]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *scenarioRepository) Create(ctx context.Context, scenario *domain.Scenario) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertScenarios(tx, []domain.Scenario{*scenario})
	})
}

func (r *scenarioRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Scenario, error) {
	var scenarios []domain.Scenario
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&scenarios).Error
	if err != nil {
		return nil, err
	}
	for i := range scenarios {
		if err := r.attachTestCases(ctx, &scenarios[i]); err != nil {
			return nil, err
		}
	}
	return scenarios, nil
}

func (r *scenarioRepository) GetByID(ctx context.Context, projectID uuid.UUID, scenarioID string) (*domain.Scenario, error) {
	var scenario domain.Scenario
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND scenario_id = ?", projectID, scenarioID).
		Order("created_at DESC").
		First(&scenario).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachTestCases(ctx, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (r *scenarioRepository) attachTestCases(ctx context.Context, scenario *domain.Scenario) error {
	var testCases []domain.TestCase
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND scenario_id = ?", scenario.ProjectID, scenario.ScenarioID).
		Order("created_at ASC").
		Find(&testCases).Error
	if err != nil {
		return err
	}
	if testCases == nil {
		testCases = []domain.TestCase{}
	}
	scenario.TestCases = testCases
	return nil
}

func (r *scenarioRepository) Update(ctx context.Context, projectID uuid.UUID, scenarioID string, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Scenario{}).
		Where("project_id = ? AND scenario_id = ?", projectID, scenarioID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *scenarioRepository) Delete(ctx context.Context, projectID uuid.UUID, scenarioID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND scenario_id = ?", projectID, scenarioID).Delete(&domain.TestCase{}).Error; err != nil {
			return err
		}
		result := tx.Where("project_id = ? AND scenario_id = ?", projectID, scenarioID).Delete(&domain.Scenario{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
