package repository

import (
	"context"
	"errors"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new instance of WorkflowRepository.
func NewWorkflowRepository(db *gorm.DB) ports.WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) Create(ctx context.Context, workflow *domain.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

func (r *workflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&workflow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *workflowRepository) List(ctx context.Context, projectID *uuid.UUID) ([]domain.Workflow, error) {
	var workflows []domain.Workflow
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	err := query.Find(&workflows).Error
	return workflows, err
}

func (r *workflowRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Workflow, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
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

func (r *workflowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Workflow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
