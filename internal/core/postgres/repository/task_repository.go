package repository

import (
	"context"
	"errors"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *gorm.DB) ports.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Task, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
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

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimRun is the run guard: a single conditional update so that of two
// concurrent starts only one sees RowsAffected == 1.
func (r *taskRepository) ClaimRun(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND status <> ?", id, domain.TaskRunning).
		Update("status", domain.TaskRunning)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the task does not exist or it is already running;
		// distinguish for the caller.
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *taskRepository) MarkCompleted(ctx context.Context, id uuid.UUID, output string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": domain.TaskCompleted,
			"output": output,
		}).Error
}

func (r *taskRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMessage string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": domain.TaskFailed,
			"output": errMessage,
		}).Error
}
