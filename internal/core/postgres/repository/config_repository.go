package repository

import (
	"context"
	"errors"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new instance of ConfigRepository.
func NewConfigRepository(db *gorm.DB) ports.ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) Get(ctx context.Context, projectID uuid.UUID) (*domain.WorkflowConfig, error) {
	var config domain.WorkflowConfig
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Save upserts the per-project row. Updates keep the original created_at.
func (r *configRepository) Save(ctx context.Context, config *domain.WorkflowConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.WorkflowConfig
		err := tx.Where("project_id = ?", config.ProjectID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(config).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&domain.WorkflowConfig{}).
			Where("project_id = ?", config.ProjectID).
			Update("variables", config.Variables).Error
	})
}
