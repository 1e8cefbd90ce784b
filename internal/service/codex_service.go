package service

import (
	"context"
	"fmt"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"go.uber.org/zap"
)

type CodexService interface {
	// SubmitPrompt drives the logged-in Codex session in the browser and
	// returns what the page reported about the created task.
	SubmitPrompt(ctx context.Context, prompt, repository string) (map[string]any, error)

	ListRepositories(ctx context.Context) ([]string, error)
}

type codexService struct {
	runner ports.AutomationRunner
	logger *zap.Logger
}

func NewCodexService(runner ports.AutomationRunner, logger *zap.Logger) CodexService {
	return &codexService{runner: runner, logger: logger}
}

func (s *codexService) SubmitPrompt(ctx context.Context, prompt, repository string) (map[string]any, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	}
	result, err := s.runner.SubmitPrompt(ctx, prompt, repository)
	if err != nil {
		// Leave no half-open browser behind for the next submission.
		if cleanupErr := s.runner.Cleanup(); cleanupErr != nil {
			s.logger.Warn("browser cleanup failed", zap.Error(cleanupErr))
		}
		return nil, err
	}
	s.logger.Info("codex prompt submitted", zap.String("repository", repository))
	return result, nil
}

func (s *codexService) ListRepositories(ctx context.Context) ([]string, error) {
	return s.runner.ListRepositories(ctx)
}
