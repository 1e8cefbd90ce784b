package service

import (
	"context"
	"os"
	"strings"
	"testing"

	"testops/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUploadWritesFileAndRecord(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := NewDocumentService(repo, t.TempDir(), zap.NewNop())
	projectID := uuid.New()

	document, err := svc.Upload(context.Background(), projectID, "requirements.txt", strings.NewReader("login must work"), true)
	require.NoError(t, err)
	assert.True(t, document.IsCurrent)

	content, err := os.ReadFile(document.Filepath)
	require.NoError(t, err)
	assert.Equal(t, "login must work", string(content))

	stored, err := svc.Get(context.Background(), document.ID)
	require.NoError(t, err)
	assert.Equal(t, "requirements.txt", stored.Filename)
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo(), t.TempDir(), zap.NewNop())

	for _, name := range []string{"malware.exe", "script.sh", "archive.zip", "noextension"} {
		_, err := svc.Upload(context.Background(), uuid.New(), name, strings.NewReader("x"), false)
		require.ErrorIs(t, err, domain.ErrValidation, name)
	}
}

func TestUploadCurrentReplacesPrevious(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := NewDocumentService(repo, t.TempDir(), zap.NewNop())
	projectID := uuid.New()

	first, err := svc.Upload(context.Background(), projectID, "v1.txt", strings.NewReader("one"), true)
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), projectID, "v2.txt", strings.NewReader("two"), true)
	require.NoError(t, err)

	documents, err := svc.ListByProject(context.Background(), projectID)
	require.NoError(t, err)
	require.Len(t, documents, 2)

	currentCount := 0
	for _, document := range documents {
		if document.IsCurrent {
			currentCount++
			assert.Equal(t, second.ID, document.ID)
		}
	}
	assert.Equal(t, 1, currentCount)
	_ = first
}

func TestDeleteRemovesFile(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := NewDocumentService(repo, t.TempDir(), zap.NewNop())

	document, err := svc.Upload(context.Background(), uuid.New(), "notes.txt", strings.NewReader("x"), false)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), document.ID))
	_, err = os.Stat(document.Filepath)
	assert.True(t, os.IsNotExist(err))
	_, err = svc.Get(context.Background(), document.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
