package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelgate/reelgate/pkg/models"
)

func setup(t *testing.T) (*SQLiteLedger, context.Context) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ledger_test.db")
	l, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, context.Background()
}

func entry(authorized bool, amount models.Cents) models.LedgerEntry {
	now := time.Now().UTC()
	status := models.StatusApproved
	if !authorized {
		status = models.StatusRejected
	}
	return models.LedgerEntry{
		ID:              uuid.NewString(),
		Period:          models.PeriodOf(now),
		CreatedAt:       now,
		DurationSeconds: 60,
		Tier:            models.TierLow,
		Aspect:          models.AspectWidescreen,
		PromptChars:     42,
		Amount:          amount,
		Authorized:      authorized,
		Status:          status,
	}
}

func TestAppendAndGet(t *testing.T) {
	l, ctx := setup(t)

	e := entry(true, 120)
	require.NoError(t, l.Append(ctx, e))

	got, err := l.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, models.Cents(120), got.Amount)
	assert.True(t, got.Authorized)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, 42, got.PromptChars)
	assert.WithinDuration(t, e.CreatedAt, got.CreatedAt, time.Second)
}

func TestGetMissing(t *testing.T) {
	l, ctx := setup(t)

	_, err := l.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSpentInPeriodCountsOnlyAuthorized(t *testing.T) {
	l, ctx := setup(t)
	period := models.PeriodOf(time.Now())

	require.NoError(t, l.Append(ctx, entry(true, 300)))
	require.NoError(t, l.Append(ctx, entry(true, 200)))
	require.NoError(t, l.Append(ctx, entry(false, 9999)))

	spent, err := l.SpentInPeriod(ctx, period)
	require.NoError(t, err)
	assert.Equal(t, models.Cents(500), spent)
}

func TestSpentInPeriodIgnoresOtherPeriods(t *testing.T) {
	l, ctx := setup(t)

	old := entry(true, 400)
	old.Period = "2020-01"
	require.NoError(t, l.Append(ctx, old))
	require.NoError(t, l.Append(ctx, entry(true, 100)))

	spent, err := l.SpentInPeriod(ctx, models.PeriodOf(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, models.Cents(100), spent)
}

func TestStatsForPeriod(t *testing.T) {
	l, ctx := setup(t)

	require.NoError(t, l.Append(ctx, entry(true, 150)))
	require.NoError(t, l.Append(ctx, entry(false, 100)))
	require.NoError(t, l.Append(ctx, entry(false, 100)))

	stats, err := l.StatsForPeriod(ctx, models.PeriodOf(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, models.Cents(150), stats.Spent)
	assert.Equal(t, 3, stats.EntryCount)
	assert.Equal(t, 2, stats.RejectedCount)
}

func TestMarkSubmittedOnce(t *testing.T) {
	l, ctx := setup(t)

	e := entry(true, 120)
	require.NoError(t, l.Append(ctx, e))

	require.NoError(t, l.MarkSubmitted(ctx, e.ID, "job-1"))

	got, err := l.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, got.Status)
	assert.Equal(t, "job-1", got.JobID)

	// Second attach is refused; the first job id stays.
	err = l.MarkSubmitted(ctx, e.ID, "job-2")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	got, err = l.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.JobID)
}

func TestMarkSubmittedRejectedEntry(t *testing.T) {
	l, ctx := setup(t)

	e := entry(false, 120)
	require.NoError(t, l.Append(ctx, e))

	err := l.MarkSubmitted(ctx, e.ID, "job-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkTerminalFromSubmitted(t *testing.T) {
	l, ctx := setup(t)

	e := entry(true, 120)
	require.NoError(t, l.Append(ctx, e))
	require.NoError(t, l.MarkSubmitted(ctx, e.ID, "job-1"))
	require.NoError(t, l.MarkTerminal(ctx, e.ID, models.StatusCompleted))

	got, err := l.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	// Terminal entries never transition again.
	err = l.MarkTerminal(ctx, e.ID, models.StatusFailed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	got, _ = l.Get(ctx, e.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestMarkTerminalDirectlyFromApproved(t *testing.T) {
	// Submission that errors before a job id: approved -> failed.
	l, ctx := setup(t)

	e := entry(true, 120)
	require.NoError(t, l.Append(ctx, e))
	require.NoError(t, l.MarkTerminal(ctx, e.ID, models.StatusFailed))

	got, err := l.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, models.Cents(120), got.Amount) // charge unchanged
}

func TestMarkTerminalRejectsNonTerminalStatus(t *testing.T) {
	l, ctx := setup(t)

	e := entry(true, 120)
	require.NoError(t, l.Append(ctx, e))

	err := l.MarkTerminal(ctx, e.ID, models.StatusApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFindByJobID(t *testing.T) {
	l, ctx := setup(t)

	e := entry(true, 120)
	require.NoError(t, l.Append(ctx, e))
	require.NoError(t, l.MarkSubmitted(ctx, e.ID, "job-42"))

	got, err := l.FindByJobID(ctx, "job-42")
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	_, err = l.FindByJobID(ctx, "job-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrderAndFilters(t *testing.T) {
	l, ctx := setup(t)

	first := entry(true, 100)
	second := entry(false, 200)
	third := entry(true, 300)
	require.NoError(t, l.Append(ctx, first))
	require.NoError(t, l.Append(ctx, second))
	require.NoError(t, l.Append(ctx, third))

	all, err := l.List(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first by insertion order.
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)

	rejected, err := l.List(ctx, ListOpts{Status: models.StatusRejected})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, second.ID, rejected[0].ID)

	limited, err := l.List(ctx, ListOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestReopenResumesSpend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger_test.db")
	ctx := context.Background()

	l, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, l.Append(ctx, entry(true, 250)))
	require.NoError(t, l.Append(ctx, entry(true, 250)))
	require.NoError(t, l.Close())

	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	spent, err := reopened.SpentInPeriod(ctx, models.PeriodOf(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, models.Cents(500), spent)
}
