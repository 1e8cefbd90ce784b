package repository

import (
	"context"
	"errors"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bugRepository struct {
	db *gorm.DB
}

// NewBugRepository creates a new instance of BugRepository.
func NewBugRepository(db *gorm.DB) ports.BugRepository {
	return &bugRepository{db: db}
}

func (r *bugRepository) Create(ctx context.Context, bug *domain.Bug) error {
	return r.db.WithContext(ctx).Create(bug).Error
}

func (r *bugRepository) CreateBatch(ctx context.Context, bugs []domain.Bug) error {
	if len(bugs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&bugs).Error
}

func (r *bugRepository) ListByProject(ctx context.Context, projectID uuid.UUID, filters map[string]any) ([]domain.Bug, error) {
	var bugs []domain.Bug
	query := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC")
	for key, value := range filters {
		query = query.Where(key+" = ?", value)
	}
	if err := query.Find(&bugs).Error; err != nil {
		return nil, err
	}
	return bugs, nil
}

func (r *bugRepository) GetByID(ctx context.Context, bugID uuid.UUID) (*domain.Bug, error) {
	var bug domain.Bug
	err := r.db.WithContext(ctx).Where("id = ?", bugID).First(&bug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	fixes, err := r.ListFixes(ctx, bugID)
	if err != nil {
		return nil, err
	}
	bug.Fixes = fixes
	return &bug, nil
}

func (r *bugRepository) Update(ctx context.Context, bugID uuid.UUID, fields map[string]any) (*domain.Bug, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Bug{}).
		Where("id = ?", bugID).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, bugID)
}

func (r *bugRepository) Delete(ctx context.Context, bugID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bug_id = ?", bugID).Delete(&domain.BugFix{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", bugID).Delete(&domain.Bug{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *bugRepository) CreateFix(ctx context.Context, fix *domain.BugFix) error {
	return r.db.WithContext(ctx).Create(fix).Error
}

func (r *bugRepository) GetFix(ctx context.Context, fixID uuid.UUID) (*domain.BugFix, error) {
	var fix domain.BugFix
	err := r.db.WithContext(ctx).Where("id = ?", fixID).First(&fix).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fix, nil
}

func (r *bugRepository) UpdateFix(ctx context.Context, fixID uuid.UUID, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&domain.BugFix{}).
		Where("id = ?", fixID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListFixes returns the fix history newest first.
func (r *bugRepository) ListFixes(ctx context.Context, bugID uuid.UUID) ([]domain.BugFix, error) {
	var fixes []domain.BugFix
	err := r.db.WithContext(ctx).
		Where("bug_id = ?", bugID).
		Order("fixed_at DESC").
		Find(&fixes).Error
	if err != nil {
		return nil, err
	}
	if fixes == nil {
		fixes = []domain.BugFix{}
	}
	return fixes, nil
}

// MarkFixed advances the bug to fixed only from open or in_progress.
// A closed or already-fixed bug is left untouched; that is not an error.
func (r *bugRepository) MarkFixed(ctx context.Context, bugID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Bug{}).
		Where("id = ? AND status IN ?", bugID, []domain.BugStatus{domain.BugOpen, domain.BugInProgress}).
		Update("status", domain.BugFixed).Error
}

func (r *bugRepository) SetStatus(ctx context.Context, bugID uuid.UUID, status domain.BugStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Bug{}).
		Where("id = ?", bugID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
