package rsvp

import (
	"context"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/Pending-Status/CalendarMeet/internal/test_utils"
	"github.com/Pending-Status/CalendarMeet/pkg/event"
	"github.com/Pending-Status/CalendarMeet/pkg/user"
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

type dbFixture struct {
	ctx    context.Context
	repo   *RepositoryImpl
	events *event.RepositoryImpl
	users  *user.UserRepoImpl
}

func setupTestRepository(t *testing.T) dbFixture {
	if pgContainer == nil {
		t.Skip("skipping database test in short mode")
	}
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return dbFixture{
		ctx:    ctx,
		repo:   NewRepository(db),
		events: event.NewRepository(db),
		users:  user.NewUserRepo(db),
	}
}

func (f dbFixture) storeEvent(t *testing.T, title string, start time.Time, end *time.Time) event.Event {
	t.Helper()
	stored, err := f.events.StoreEvent(f.ctx, event.Event{Title: title, Start: start, End: end, ExtendedProps: map[string]any{}})
	require.NoError(t, err)
	return stored
}

func (f dbFixture) storeUser(t *testing.T, uid string) {
	t.Helper()
	_, err := f.users.CreateUser(f.ctx, user.User{Uid: uid, Email: uid + "@example.com", DisplayName: uid})
	require.NoError(t, err)
}

func TestRepositoryImpl_Upsert(t *testing.T) {
	f := setupTestRepository(t)
	f.storeUser(t, "alice")
	evt := f.storeEvent(t, "Study group", baseTime, nil)

	first, err := f.repo.Upsert(f.ctx, Attendee{EventId: evt.Id, UserUid: "alice", Status: StatusMaybe})
	require.NoError(t, err)
	second, err := f.repo.Upsert(f.ctx, Attendee{EventId: evt.Id, UserUid: "alice", Status: StatusGoing})
	require.NoError(t, err)

	assert.Equal(t, StatusGoing, second.Status)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	attendees, err := f.repo.GetAttendees(f.ctx, evt.Id)
	require.NoError(t, err)
	assert.Len(t, attendees, 1)
}

func TestRepositoryImpl_GoingEvents(t *testing.T) {
	f := setupTestRepository(t)
	f.storeUser(t, "alice")
	end := baseTime.Add(4 * time.Hour)
	later := f.storeEvent(t, "Later", baseTime.Add(3*time.Hour), &end)
	deadline := f.storeEvent(t, "Deadline", baseTime, nil)
	maybe := f.storeEvent(t, "Maybe", baseTime.Add(time.Hour), nil)
	for evt, status := range map[string]Status{later.Id: StatusGoing, deadline.Id: StatusGoing, maybe.Id: StatusMaybe} {
		_, err := f.repo.Upsert(f.ctx, Attendee{EventId: evt, UserUid: "alice", Status: status})
		require.NoError(t, err)
	}

	going, err := f.repo.GoingEvents(f.ctx, "alice")

	require.NoError(t, err)
	require.Len(t, going, 2)
	assert.Equal(t, deadline.Id, going[0].EventId)
	assert.Nil(t, going[0].End)
	assert.Equal(t, later.Id, going[1].EventId)
	assert.Equal(t, end, *going[1].End)

	counts, err := f.repo.CountByStatus(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusGoing: 2, StatusMaybe: 1}, counts)
}

func TestRepositoryImpl_DeleteAttendee(t *testing.T) {
	f := setupTestRepository(t)
	f.storeUser(t, "alice")
	evt := f.storeEvent(t, "Study group", baseTime, nil)
	_, err := f.repo.Upsert(f.ctx, Attendee{EventId: evt.Id, UserUid: "alice", Status: StatusGoing})
	require.NoError(t, err)

	require.NoError(t, f.repo.DeleteAttendee(f.ctx, evt.Id, "alice"))
	assert.ErrorIs(t, f.repo.DeleteAttendee(f.ctx, evt.Id, "alice"), ErrAttendeeNotFound)
}

func TestRepositoryImpl_CascadeOnEventDelete(t *testing.T) {
	f := setupTestRepository(t)
	f.storeUser(t, "alice")
	evt := f.storeEvent(t, "Study group", baseTime, nil)
	_, err := f.repo.Upsert(f.ctx, Attendee{EventId: evt.Id, UserUid: "alice", Status: StatusGoing})
	require.NoError(t, err)

	require.NoError(t, f.events.DeleteEvent(f.ctx, evt.Id))

	attendees, err := f.repo.GetAttendees(f.ctx, evt.Id)
	require.NoError(t, err)
	assert.Empty(t, attendees)
}
