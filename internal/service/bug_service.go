package service

import (
	"context"
	"fmt"
	"time"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BugService interface {
	Create(ctx context.Context, bug *domain.Bug) error
	CreateBatch(ctx context.Context, bugs []domain.Bug) error
	ListByProject(ctx context.Context, projectID uuid.UUID, filters map[string]any) ([]domain.Bug, error)

	// Get returns the bug with its fix history attached.
	Get(ctx context.Context, bugID uuid.UUID) (*domain.Bug, error)
	Update(ctx context.Context, bugID uuid.UUID, fields map[string]any) (*domain.Bug, error)
	Delete(ctx context.Context, bugID uuid.UUID) error

	// AddFix records a fix attempt. An open or in_progress bug moves to
	// fixed; a closed or already-fixed bug keeps its status.
	AddFix(ctx context.Context, fix *domain.BugFix) error

	// VerifyFix records the verification verdict. A verified fix closes
	// the bug; a rejected one reopens it.
	VerifyFix(ctx context.Context, fixID uuid.UUID, verified bool, verifiedBy string) (*domain.BugFix, error)

	ListFixes(ctx context.Context, bugID uuid.UUID) ([]domain.BugFix, error)
}

type bugService struct {
	bugs   ports.BugRepository
	logger *zap.Logger
}

func NewBugService(bugs ports.BugRepository, logger *zap.Logger) BugService {
	return &bugService{bugs: bugs, logger: logger}
}

func (s *bugService) Create(ctx context.Context, bug *domain.Bug) error {
	if bug.Summary == "" {
		return fmt.Errorf("%w: bug summary is required", domain.ErrValidation)
	}
	if bug.Severity == "" {
		return fmt.Errorf("%w: bug severity is required", domain.ErrValidation)
	}
	if err := s.bugs.Create(ctx, bug); err != nil {
		return err
	}
	s.logger.Info("bug created",
		zap.String("bug_id", bug.ID.String()),
		zap.String("project_id", bug.ProjectID.String()),
		zap.String("severity", bug.Severity))
	return nil
}

func (s *bugService) CreateBatch(ctx context.Context, bugs []domain.Bug) error {
	for i := range bugs {
		if bugs[i].Summary == "" {
			return fmt.Errorf("%w: bug %d has no summary", domain.ErrValidation, i)
		}
		if bugs[i].ID == uuid.Nil {
			bugs[i].ID = uuid.New()
		}
		if bugs[i].Status == "" {
			bugs[i].Status = domain.BugOpen
		}
	}
	if err := s.bugs.CreateBatch(ctx, bugs); err != nil {
		return err
	}
	s.logger.Info("bug batch created", zap.Int("count", len(bugs)))
	return nil
}

func (s *bugService) ListByProject(ctx context.Context, projectID uuid.UUID, filters map[string]any) ([]domain.Bug, error) {
	return s.bugs.ListByProject(ctx, projectID, filters)
}

func (s *bugService) Get(ctx context.Context, bugID uuid.UUID) (*domain.Bug, error) {
	return s.bugs.GetByID(ctx, bugID)
}

func (s *bugService) Update(ctx context.Context, bugID uuid.UUID, fields map[string]any) (*domain.Bug, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	return s.bugs.Update(ctx, bugID, fields)
}

func (s *bugService) Delete(ctx context.Context, bugID uuid.UUID) error {
	return s.bugs.Delete(ctx, bugID)
}

func (s *bugService) AddFix(ctx context.Context, fix *domain.BugFix) error {
	if fix.Description == "" {
		return fmt.Errorf("%w: fix description is required", domain.ErrValidation)
	}

	// Verify the bug exists before writing anything.
	if _, err := s.bugs.GetByID(ctx, fix.BugID); err != nil {
		return err
	}

	if err := s.bugs.CreateFix(ctx, fix); err != nil {
		return err
	}
	if err := s.bugs.MarkFixed(ctx, fix.BugID); err != nil {
		return err
	}

	s.logger.Info("fix recorded",
		zap.String("bug_id", fix.BugID.String()),
		zap.String("fix_id", fix.ID.String()))
	return nil
}

func (s *bugService) VerifyFix(ctx context.Context, fixID uuid.UUID, verified bool, verifiedBy string) (*domain.BugFix, error) {
	fix, err := s.bugs.GetFix(ctx, fixID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fixStatus := domain.FixRejected
	bugStatus := domain.BugOpen
	if verified {
		fixStatus = domain.FixVerified
		bugStatus = domain.BugClosed
	}

	err = s.bugs.UpdateFix(ctx, fixID, map[string]any{
		"fix_status":  fixStatus,
		"verified_by": verifiedBy,
		"verified_at": now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.bugs.SetStatus(ctx, fix.BugID, bugStatus); err != nil {
		return nil, err
	}

	s.logger.Info("fix verified",
		zap.String("fix_id", fixID.String()),
		zap.String("bug_id", fix.BugID.String()),
		zap.Bool("verified", verified))
	return s.bugs.GetFix(ctx, fixID)
}

func (s *bugService) ListFixes(ctx context.Context, bugID uuid.UUID) ([]domain.BugFix, error) {
	return s.bugs.ListFixes(ctx, bugID)
}
