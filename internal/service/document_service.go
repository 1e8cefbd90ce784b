package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowedDocumentExtensions is the upload allow-list. Anything else is
// rejected with a validation error before touching the disk.
var allowedDocumentExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

type DocumentService interface {
	// Upload stores the content under the project's workspace and records
	// the document. When markCurrent is set, the project's previous
	// current document loses the flag.
	Upload(ctx context.Context, projectID uuid.UUID, filename string, content io.Reader, markCurrent bool) (*domain.Document, error)

	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	documents ports.DocumentRepository
	root      string
	logger    *zap.Logger
}

func NewDocumentService(documents ports.DocumentRepository, root string, logger *zap.Logger) DocumentService {
	return &documentService{documents: documents, root: root, logger: logger}
}

func (s *documentService) Upload(ctx context.Context, projectID uuid.UUID, filename string, content io.Reader, markCurrent bool) (*domain.Document, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedDocumentExtensions[ext] {
		return nil, fmt.Errorf("%w: file type %q is not allowed", domain.ErrValidation, ext)
	}

	// Strip any path components a client may have smuggled in.
	filename = filepath.Base(filename)

	dir := filepath.Join(s.root, projectID.String(), "documents")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}

	document := domain.NewDocument(projectID, filename, "", markCurrent)

	// Prefix with the document id so repeated uploads of the same name
	// never clobber each other.
	path := filepath.Join(dir, document.ID.String()+"_"+filename)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create document file: %w", err)
	}
	written, err := io.Copy(f, content)
	closeErr := f.Close()
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write document file: %w", err)
	}
	if closeErr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close document file: %w", closeErr)
	}
	document.Filepath = path

	if err := s.documents.Save(ctx, document); err != nil {
		os.Remove(path)
		return nil, err
	}

	s.logger.Info("document uploaded",
		zap.String("document_id", document.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("filename", filename),
		zap.Int64("bytes", written),
		zap.Bool("is_current", markCurrent))
	return document, nil
}

func (s *documentService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Document, error) {
	return s.documents.ListByProject(ctx, projectID)
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return s.documents.GetByID(ctx, id)
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	document, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(document.Filepath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("could not remove document file",
			zap.String("path", document.Filepath), zap.Error(err))
	}
	return nil
}
