package service

import (
	"context"
	"testing"
	"time"

	"testops/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAddFixMarksOpenBugFixed(t *testing.T) {
	repo := newFakeBugRepo()
	svc := NewBugService(repo, zap.NewNop())

	bug := domain.NewBug(uuid.New(), "login button unresponsive", "nothing happens on click", "high")
	require.NoError(t, svc.Create(context.Background(), bug))

	fix := domain.NewBugFix(bug.ID, "debounced the click handler", "dev1")
	require.NoError(t, svc.AddFix(context.Background(), fix))

	stored, err := svc.Get(context.Background(), bug.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BugFixed, stored.Status)
	require.Len(t, stored.Fixes, 1)
	assert.Equal(t, domain.FixPending, stored.Fixes[0].FixStatus)
}

func TestAddFixLeavesClosedBugClosed(t *testing.T) {
	repo := newFakeBugRepo()
	svc := NewBugService(repo, zap.NewNop())

	bug := domain.NewBug(uuid.New(), "stale report", "", "low")
	bug.Status = domain.BugClosed
	require.NoError(t, repo.Create(context.Background(), bug))

	fix := domain.NewBugFix(bug.ID, "late fix", "dev2")
	require.NoError(t, svc.AddFix(context.Background(), fix))

	stored, err := svc.Get(context.Background(), bug.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BugClosed, stored.Status)
}

func TestVerifyFixClosesBug(t *testing.T) {
	repo := newFakeBugRepo()
	svc := NewBugService(repo, zap.NewNop())

	bug := domain.NewBug(uuid.New(), "broken export", "", "medium")
	require.NoError(t, svc.Create(context.Background(), bug))
	fix := domain.NewBugFix(bug.ID, "fixed csv encoding", "dev1")
	require.NoError(t, svc.AddFix(context.Background(), fix))

	verified, err := svc.VerifyFix(context.Background(), fix.ID, true, "qa1")
	require.NoError(t, err)
	assert.Equal(t, domain.FixVerified, verified.FixStatus)
	assert.Equal(t, "qa1", verified.VerifiedBy)

	stored, err := svc.Get(context.Background(), bug.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BugClosed, stored.Status)
}

func TestRejectedFixReopensBug(t *testing.T) {
	repo := newFakeBugRepo()
	svc := NewBugService(repo, zap.NewNop())

	bug := domain.NewBug(uuid.New(), "broken export", "", "medium")
	require.NoError(t, svc.Create(context.Background(), bug))
	fix := domain.NewBugFix(bug.ID, "tried a patch", "dev1")
	require.NoError(t, svc.AddFix(context.Background(), fix))

	rejected, err := svc.VerifyFix(context.Background(), fix.ID, false, "qa1")
	require.NoError(t, err)
	assert.Equal(t, domain.FixRejected, rejected.FixStatus)

	stored, err := svc.Get(context.Background(), bug.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BugOpen, stored.Status)
}

func TestAddFixUnknownBug(t *testing.T) {
	svc := NewBugService(newFakeBugRepo(), zap.NewNop())
	fix := domain.NewBugFix(uuid.New(), "orphan fix", "dev1")
	require.ErrorIs(t, svc.AddFix(context.Background(), fix), domain.ErrNotFound)
}

func TestListFixesNewestFirst(t *testing.T) {
	repo := newFakeBugRepo()
	svc := NewBugService(repo, zap.NewNop())

	bug := domain.NewBug(uuid.New(), "intermittent timeout", "", "medium")
	require.NoError(t, svc.Create(context.Background(), bug))

	first := domain.NewBugFix(bug.ID, "raised the connection timeout", "dev1")
	first.FixedAt = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.AddFix(context.Background(), first))

	second := domain.NewBugFix(bug.ID, "added retry on transient errors", "dev2")
	second.FixedAt = time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.AddFix(context.Background(), second))

	fixes, err := svc.ListFixes(context.Background(), bug.ID)
	require.NoError(t, err)
	require.Len(t, fixes, 2)
	assert.Equal(t, second.ID, fixes[0].ID)
	assert.Equal(t, first.ID, fixes[1].ID)
}

func TestCreateBatchFillsDefaults(t *testing.T) {
	repo := newFakeBugRepo()
	svc := NewBugService(repo, zap.NewNop())
	projectID := uuid.New()

	bugs := []domain.Bug{
		{ProjectID: projectID, Summary: "first", Severity: "low"},
		{ProjectID: projectID, Summary: "second", Severity: "high"},
	}
	require.NoError(t, svc.CreateBatch(context.Background(), bugs))

	stored, err := svc.ListByProject(context.Background(), projectID, nil)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, bug := range stored {
		assert.NotEqual(t, uuid.Nil, bug.ID)
		assert.Equal(t, domain.BugOpen, bug.Status)
	}
}

func TestCreateBatchRejectsMissingSummary(t *testing.T) {
	svc := NewBugService(newFakeBugRepo(), zap.NewNop())
	err := svc.CreateBatch(context.Background(), []domain.Bug{{ProjectID: uuid.New()}})
	require.ErrorIs(t, err, domain.ErrValidation)
}
