package rdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguru/dotty-dns/internal/model"
)

func newTestRepository(t *testing.T) *HistoryRepository {
	t.Helper()
	db, err := OpenFromURL("sqlite:" + filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return NewHistoryRepository(db)
}

func TestOpenFromURLRejectsUnknownScheme(t *testing.T) {
	_, err := OpenFromURL("postgres://localhost/dotty")
	assert.Error(t, err)
}

func TestHistoryRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	entry := &model.HistoryEntry{
		UserID:         "u1",
		Domain:         "example.com",
		Command:        "Set up email for Gmail",
		Interpretation: "Gmail MX",
		Actions: []model.Action{
			{Type: model.ActionCreate, Record: model.Record{Type: model.RecordTypeMX, Name: "example.com", Content: "aspmx.l.google.com", Priority: model.Uint16(1)}},
		},
		Results: []model.ExecutionResult{
			{Success: false, Action: model.ActionCreate, Error: "rate limited"},
		},
		Timestamp: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Append(ctx, entry))
	assert.NotEmpty(t, entry.ID)

	got, err := repo.List(ctx, "u1", "example.com", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entry.ID, got[0].ID)
	assert.Equal(t, entry.Actions, got[0].Actions)
	assert.Equal(t, entry.Results, got[0].Results)
	assert.True(t, entry.Timestamp.Equal(got[0].Timestamp))
}

func TestHistoryRepositoryListNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i, cmd := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Append(ctx, &model.HistoryEntry{
			UserID: "u1", Domain: "example.com", Command: cmd, Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Append(ctx, &model.HistoryEntry{UserID: "u2", Domain: "example.com", Command: "foreign"}))

	got, err := repo.List(ctx, "u1", "example.com", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Command)
	assert.Equal(t, "two", got[1].Command)
}
