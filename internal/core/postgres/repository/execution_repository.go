package repository

import (
	"context"
	"errors"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type executionRepository struct {
	db *gorm.DB
}

// NewExecutionRepository creates a new instance of ExecutionRepository.
func NewExecutionRepository(db *gorm.DB) ports.ExecutionRepository {
	return &executionRepository{db: db}
}

func (r *executionRepository) Create(ctx context.Context, execution *domain.WorkflowExecution) error {
	return r.db.WithContext(ctx).Create(execution).Error
}

func (r *executionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkflowExecution, error) {
	var execution domain.WorkflowExecution
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&execution).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &execution, nil
}

func (r *executionRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.WorkflowExecution, error) {
	var executions []domain.WorkflowExecution
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("started_at DESC").
		Find(&executions).Error
	return executions, err
}

func (r *executionRepository) ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowExecution, error) {
	var executions []domain.WorkflowExecution
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("started_at DESC").
		Find(&executions).Error
	return executions, err
}

func (r *executionRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.WorkflowExecution, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.WorkflowExecution{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}
