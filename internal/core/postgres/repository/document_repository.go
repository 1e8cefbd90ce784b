package repository

import (
	"context"
	"errors"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *gorm.DB) ports.DocumentRepository {
	return &documentRepository{db: db}
}

// Save inserts the document record. When the new document is marked
// current, every other document of the project loses the flag inside the
// same transaction, so at most one row per project carries it.
func (r *documentRepository) Save(ctx context.Context, document *domain.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if document.IsCurrent {
			err := tx.Model(&domain.Document{}).
				Where("project_id = ? AND is_current = ?", document.ProjectID, true).
				Update("is_current", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(document).Error
	})
}

func (r *documentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Document, error) {
	var documents []domain.Document
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("uploaded_at DESC").
		Find(&documents).Error
	return documents, err
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var document domain.Document
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&document).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
