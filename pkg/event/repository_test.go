package event

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/Pending-Status/CalendarMeet/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl) {
	if pgContainer == nil {
		t.Skip("skipping database test in short mode")
	}
	ctx := context.Background()
	db := openDb()
	repository := NewRepository(db)
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, repository
}

func TestRepositoryImpl_StoreEvent(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	start := time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC)

	stored, err := repo.StoreEvent(ctx, Event{
		Title:         "Study group",
		Start:         start,
		End:           ptr(start.Add(time.Hour)),
		Type:          "study",
		Recurrence:    json.RawMessage(`{"freq":"weekly"}`),
		ExtendedProps: map[string]any{"location": "Library"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, stored.Id)
	assert.False(t, stored.CreatedAt.IsZero())

	fetched, err := repo.GetEvent(ctx, stored.Id)
	require.NoError(t, err)
	assert.Equal(t, "Study group", fetched.Title)
	assert.Equal(t, start, fetched.Start)
	require.NotNil(t, fetched.End)
	assert.Equal(t, start.Add(time.Hour), *fetched.End)
	assert.Equal(t, "study", fetched.Type)
	assert.JSONEq(t, `{"freq":"weekly"}`, string(fetched.Recurrence))
	assert.Equal(t, map[string]any{"location": "Library"}, fetched.ExtendedProps)
}

func TestRepositoryImpl_StoreEventWithoutEnd(t *testing.T) {
	ctx, repo := setupTestRepository(t)

	stored, err := repo.StoreEvent(ctx, Event{Title: "Deadline", Start: time.Date(2025, 10, 24, 23, 59, 0, 0, time.UTC)})

	require.NoError(t, err)
	fetched, err := repo.GetEvent(ctx, stored.Id)
	require.NoError(t, err)
	assert.Nil(t, fetched.End)
	assert.Nil(t, fetched.Recurrence)
	assert.Equal(t, map[string]any{}, fetched.ExtendedProps)
}

func TestRepositoryImpl_GetEvents(t *testing.T) {
	base := time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC)
	testCases := []struct {
		name          string
		eventStart    time.Duration
		eventEnd      *time.Duration
		shouldBeFound bool
	}{
		{"Event fully inside query period", 15 * time.Minute, durationPtr(45 * time.Minute), true},
		{"Event fully contains query period", -time.Hour, durationPtr(2 * time.Hour), true},
		{"Event ends exactly at query start", -time.Hour, durationPtr(0), true},
		{"Event starts exactly at query end", time.Hour, durationPtr(2 * time.Hour), true},
		{"Event ends before query start", -time.Hour, durationPtr(-time.Second), false},
		{"Event starts after query end", time.Hour + time.Second, durationPtr(2 * time.Hour), false},
		{"Endless event inside query period", 30 * time.Minute, nil, true},
		{"Endless event at query start", 0, nil, true},
		{"Endless event at query end", time.Hour, nil, true},
		{"Endless event before query period", -time.Minute, nil, false},
		{"Endless event after query period", time.Hour + time.Minute, nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, repo := setupTestRepository(t)
			event := Event{Title: tc.name, Start: base.Add(tc.eventStart)}
			if tc.eventEnd != nil {
				event.End = ptr(base.Add(*tc.eventEnd))
			}
			stored, err := repo.StoreEvent(ctx, event)
			require.NoError(t, err)

			events, err := repo.GetEvents(ctx, base, base.Add(time.Hour))

			require.NoError(t, err)
			if tc.shouldBeFound {
				require.Len(t, events, 1)
				assert.Equal(t, stored.Id, events[0].Id)
			} else {
				assert.Empty(t, events)
			}
		})
	}
}

func TestRepositoryImpl_GetAllEventsOrderedByStart(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	base := time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		_, err := repo.StoreEvent(ctx, Event{Title: offset.String(), Start: base.Add(offset)})
		require.NoError(t, err)
	}

	events, err := repo.GetAllEvents(ctx)

	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, base, events[0].Start)
	assert.Equal(t, base.Add(time.Hour), events[1].Start)
	assert.Equal(t, base.Add(2*time.Hour), events[2].Start)
}

func TestRepositoryImpl_UpdateEvent(t *testing.T) {
	t.Run("should update all columns", func(t *testing.T) {
		ctx, repo := setupTestRepository(t)
		start := time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC)
		stored, err := repo.StoreEvent(ctx, Event{Title: "Study group", Start: start, End: ptr(start.Add(time.Hour))})
		require.NoError(t, err)

		stored.Title = "Exam prep"
		stored.End = nil
		stored.AllDay = true
		stored.ExtendedProps = map[string]any{"room": "B12"}
		updated, err := repo.UpdateEvent(ctx, stored)

		require.NoError(t, err)
		assert.Equal(t, "Exam prep", updated.Title)
		assert.Nil(t, updated.End)
		assert.True(t, updated.AllDay)
		assert.Equal(t, map[string]any{"room": "B12"}, updated.ExtendedProps)
		assert.False(t, updated.UpdatedAt.Before(stored.UpdatedAt))
	})

	t.Run("should return not found", func(t *testing.T) {
		ctx, repo := setupTestRepository(t)

		_, err := repo.UpdateEvent(ctx, Event{Id: "missing", Title: "x", Start: time.Now()})

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestRepositoryImpl_DeleteEvent(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	stored, err := repo.StoreEvent(ctx, Event{Title: "Study group", Start: time.Now()})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteEvent(ctx, stored.Id))

	_, err = repo.GetEvent(ctx, stored.Id)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, repo.DeleteEvent(ctx, stored.Id), ErrEventNotFound)
	count, err := repo.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRepositoryImpl_WithTransactionRollsBack(t *testing.T) {
	ctx, repo := setupTestRepository(t)

	err := repo.WithTransaction(ctx, func(txRepo Repository) error {
		if _, err := txRepo.StoreEvent(ctx, Event{Title: "Study group", Start: time.Now()}); err != nil {
			return err
		}
		return ErrInvalidEvent
	})

	assert.ErrorIs(t, err, ErrInvalidEvent)
	count, err := repo.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
