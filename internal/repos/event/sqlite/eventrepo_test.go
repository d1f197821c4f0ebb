package sqlite

import (
	"io"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/migrate"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos"
)

func testRepo(t *testing.T) *EventRepo {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// The in-memory database only exists on one connection
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	l := logrus.New()
	l.Out = io.Discard
	logger := logrus.NewEntry(l)
	require.NoError(t, migrate.ExecuteMigrationsOnDb(db, logger))
	return New(db, logger)
}

func storedEvent(t *testing.T, r *EventRepo, name string, start time.Time) *models.Event {
	t.Helper()
	ev := &models.Event{
		Name:        name,
		Status:      models.EventScheduled,
		StartsAt:    start,
		EndsAt:      start.Add(time.Hour),
		Location:    "Hall A",
		OrganizerID: 1,
		MajorID:     1,
	}
	require.NoError(t, r.Create(ev))
	return ev
}

func TestEventRepoCreateAndGet(t *testing.T) {
	r := testRepo(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ev := storedEvent(t, r, "Alumni Meetup", start)
	assert.NotZero(t, ev.ID)

	got, err := r.GetByID(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alumni Meetup", got.Name)
	assert.Equal(t, models.EventScheduled, got.Status)

	_, err = r.GetByID(99)
	assert.Equal(t, repos.ErrEntityNotExisting, err)
}

func TestEventRepoFindPaged(t *testing.T) {
	r := testRepo(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	storedEvent(t, r, "Career Fair", start)
	storedEvent(t, r, "Alumni Meetup", start.Add(2*time.Hour))
	storedEvent(t, r, "Mentoring Kickoff", start.Add(4*time.Hour))

	// The row count reflects the whole result, not just the returned page
	list, numRows, err := r.Find("", 0, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, uint(3), numRows)

	list, numRows, err = r.Find("Meetup", 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint(1), numRows)
	assert.Equal(t, "Alumni Meetup", list[0].Name)
}

func TestEventRepoUpdateStatusGuard(t *testing.T) {
	r := testRepo(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	ev := storedEvent(t, r, "Alumni Meetup", start)

	require.NoError(t, r.UpdateStatus(ev.ID, models.EventScheduled, models.EventCancelled))

	// The expected current status no longer matches
	err := r.UpdateStatus(ev.ID, models.EventScheduled, models.EventCancelled)
	assert.Equal(t, repos.ErrEntityNotExisting, err)

	got, err := r.GetByID(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventCancelled, got.Status)
}

func TestEventRepoFindActiveOverlapping(t *testing.T) {
	r := testRepo(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inside := storedEvent(t, r, "Inside", start)
	storedEvent(t, r, "Later", start.Add(3*time.Hour))
	cancelled := storedEvent(t, r, "Cancelled", start)
	require.NoError(t, r.UpdateStatus(cancelled.ID, models.EventScheduled, models.EventCancelled))

	list, err := r.FindActiveOverlapping(start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, inside.ID, list[0].ID)

	// Adjacent windows do not overlap
	list, err = r.FindActiveOverlapping(start.Add(time.Hour), start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEventRepoJoins(t *testing.T) {
	r := testRepo(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	ev := storedEvent(t, r, "Alumni Meetup", start)

	require.NoError(t, r.AddJoin(&models.UserJoinEvent{EventID: ev.ID, UserID: 1, Rating: 4}))
	require.NoError(t, r.AddJoin(&models.UserJoinEvent{EventID: ev.ID, UserID: 2}))

	// The UNIQUE(eventId, userId) constraint rejects a second join of the same user
	err := r.AddJoin(&models.UserJoinEvent{EventID: ev.ID, UserID: 1})
	assert.Equal(t, repos.ErrDuplicateEntity, err)

	joins, err := r.GetJoins(ev.ID)
	require.NoError(t, err)
	assert.Len(t, joins, 2)

	counts, err := r.CountJoins()
	require.NoError(t, err)
	assert.Equal(t, uint(2), counts[ev.ID])
}
