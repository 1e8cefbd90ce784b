package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"testops/internal/config"
	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskService interface {
	Create(ctx context.Context, task *domain.Task) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Run claims the task and drives the browser automation with bounded
	// retries. Returns domain.ErrConflict when the task is already running.
	Run(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

type taskService struct {
	tasks  ports.TaskRepository
	runner ports.AutomationRunner
	bus    ports.EventBus
	retry  config.RetryPolicy
	root   string
	logger *zap.Logger
}

// NewTaskService wires task persistence to the automation runner. bus may
// be nil when the event bus is disabled.
func NewTaskService(tasks ports.TaskRepository, runner ports.AutomationRunner, bus ports.EventBus, retry config.RetryPolicy, root string, logger *zap.Logger) TaskService {
	return &taskService{
		tasks:  tasks,
		runner: runner,
		bus:    bus,
		retry:  retry,
		root:   root,
		logger: logger,
	}
}

func (s *taskService) Create(ctx context.Context, task *domain.Task) error {
	if task.Name == "" {
		return fmt.Errorf("%w: task name is required", domain.ErrValidation)
	}
	if task.URL == "" {
		return fmt.Errorf("%w: task url is required", domain.ErrValidation)
	}
	return s.tasks.Create(ctx, task)
}

func (s *taskService) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *taskService) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Task, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	return s.tasks.Update(ctx, id, fields)
}

func (s *taskService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tasks.Delete(ctx, id)
}

// Run executes the task's browser automation. The claim is a conditional
// update, so a task can never be started twice concurrently. Each failed
// attempt cleans up browser state and backs off exponentially before the
// next one.
func (s *taskService) Run(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.ClaimRun(ctx, id); err != nil {
		return nil, err
	}
	s.publishTaskStatus(ctx, task, domain.TaskRunning, "")

	webTask := ports.WebTask{
		URL:     task.URL,
		Name:    task.Name,
		Context: decodeContextLines(task.Context),
		WorkDir: filepath.Join(s.root, task.ProjectID.String(), "tasks", task.ID.String()),
	}

	output, runErr := s.runWithRetry(ctx, task, webTask)
	if runErr != nil {
		if err := s.tasks.MarkFailed(ctx, id, runErr.Error()); err != nil {
			s.logger.Error("could not mark task failed", zap.String("task_id", id.String()), zap.Error(err))
		}
		s.publishTaskStatus(ctx, task, domain.TaskFailed, runErr.Error())
		return nil, runErr
	}

	if err := s.tasks.MarkCompleted(ctx, id, output); err != nil {
		return nil, err
	}
	s.publishTaskStatus(ctx, task, domain.TaskCompleted, "")
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) runWithRetry(ctx context.Context, task *domain.Task, webTask ports.WebTask) (string, error) {
	attempts := s.retry.Attempts()
	delay := s.retry.Delay()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		output, err := s.runner.RunWebTask(ctx, webTask)
		if err == nil {
			return output, nil
		}
		lastErr = err
		s.logger.Warn("task attempt failed",
			zap.String("task_id", task.ID.String()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err))

		if cleanupErr := s.runner.Cleanup(); cleanupErr != nil {
			s.logger.Warn("browser cleanup failed", zap.Error(cleanupErr))
		}

		if attempt < attempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			delay *= time.Duration(s.retry.Backoff())
		}
	}
	return "", fmt.Errorf("task failed after %d attempts: %w", attempts, lastErr)
}

func (s *taskService) publishTaskStatus(ctx context.Context, task *domain.Task, status domain.TaskStatus, errMessage string) {
	if s.bus == nil {
		return
	}
	event := domain.TaskStatusEvent{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		Status:    status,
		Error:     errMessage,
	}
	if err := s.bus.PublishTaskStatus(ctx, event); err != nil {
		s.logger.Warn("could not publish task status", zap.Error(err))
	}
}

func decodeContextLines(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil
	}
	return lines
}
