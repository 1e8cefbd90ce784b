package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProjectService interface {
	Create(ctx context.Context, project *domain.Project) error
	List(ctx context.Context) ([]domain.Project, error)

	// Get returns the project with its tasks and scenarios attached.
	Get(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectService struct {
	projects  ports.ProjectRepository
	tasks     ports.TaskRepository
	scenarios ports.ScenarioRepository
	root      string
	logger    *zap.Logger
}

// NewProjectService wires the project aggregate. root is the filesystem
// directory project workspaces are created under.
func NewProjectService(projects ports.ProjectRepository, tasks ports.TaskRepository, scenarios ports.ScenarioRepository, root string, logger *zap.Logger) ProjectService {
	return &projectService{
		projects:  projects,
		tasks:     tasks,
		scenarios: scenarios,
		root:      root,
		logger:    logger,
	}
}

func (s *projectService) Create(ctx context.Context, project *domain.Project) error {
	if project.Name == "" {
		return fmt.Errorf("%w: project name is required", domain.ErrValidation)
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return err
	}

	// The workspace directory holds uploaded documents and task logs.
	// Creating it is best effort; a failure is logged, not fatal.
	dir := filepath.Join(s.root, project.ID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Warn("could not create project directory",
			zap.String("project_id", project.ID.String()),
			zap.String("dir", dir),
			zap.Error(err))
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("name", project.Name))
	return nil
}

func (s *projectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Tasks = tasks

	scenarios, err := s.scenarios.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Scenarios = scenarios

	return project, nil
}

func (s *projectService) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Project, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	return s.projects.Update(ctx, id, fields)
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	dir := filepath.Join(s.root, id.String())
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("could not remove project directory",
			zap.String("dir", dir), zap.Error(err))
	}
	s.logger.Info("project deleted", zap.String("project_id", id.String()))
	return nil
}
