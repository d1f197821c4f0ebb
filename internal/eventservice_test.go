package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	majorinmem "github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos/major/inmem"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/schedule"
)

func testMajorRepo() *majorinmem.MajorRepo {
	return majorinmem.New([]models.Major{
		{ID: 1, Name: "Computer Science"},
		{ID: 2, Name: "Business Administration"},
	})
}

func newTestEventService(repo *fakeEventRepo) EventService {
	users := testUserRepo()
	majors := testMajorRepo()
	cs := NewConfigService("unused.json")
	scheduling := NewSchedulingService(repo, majors, cs, testLogger())
	return NewEventService(repo, users, majors, scheduling, testLogger())
}

func eventAt(organizer, major uint, location string, start, end time.Time) *models.Event {
	return &models.Event{
		Name:        "Alumni Meetup",
		Status:      models.EventScheduled,
		StartsAt:    start,
		EndsAt:      end,
		Location:    location,
		OrganizerID: organizer,
		MajorID:     major,
	}
}

func TestEventCreate(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ev, err := svc.Create(ctx, eventAt(1, 1, "Hall A", start, start.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.NotZero(t, ev.ID)
	assert.Equal(t, models.EventScheduled, ev.Status)
}

func TestEventCreateValidation(t *testing.T) {
	svc := newTestEventService(newFakeEventRepo())
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ev := eventAt(1, 1, "Hall A", start, start.Add(time.Hour))
	ev.Name = "   "
	_, err := svc.Create(ctx, ev)
	require.Error(t, err)
	assert.Equal(t, ErrCodeRequiredFieldMissing, err.(*HTTPError).ErrorCode())

	_, err = svc.Create(ctx, eventAt(1, 1, "Hall A", start.Add(time.Hour), start))
	require.Error(t, err)
	assert.Equal(t, ErrCodeIllegalTimeRange, err.(*HTTPError).ErrorCode())

	_, err = svc.Create(ctx, eventAt(99, 1, "Hall A", start, start.Add(time.Hour)))
	require.Error(t, err)
	assert.Equal(t, ErrCodeUserNotFound, err.(*HTTPError).ErrorCode())

	_, err = svc.Create(ctx, eventAt(1, 99, "Hall A", start, start.Add(time.Hour)))
	require.Error(t, err)
	assert.Equal(t, ErrCodeMajorNotFound, err.(*HTTPError).ErrorCode())
}

func TestEventCreateConflictRejected(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	first, err := svc.Create(ctx, eventAt(1, 1, "Hall A", start, start.Add(2*time.Hour)))
	require.NoError(t, err)

	// Same organizer, overlapping slot
	_, err = svc.Create(ctx, eventAt(1, 2, "Hall B", start.Add(time.Hour), start.Add(3*time.Hour)))
	require.Error(t, err)
	httpErr := err.(*HTTPError)
	assert.Equal(t, ErrCodeScheduleConflict, httpErr.ErrorCode())
	hits := httpErr.Data().([]schedule.ConflictHit)
	require.NotEmpty(t, hits)
	assert.Equal(t, first.ID, hits[0].EventID)
	assert.Equal(t, schedule.ReasonOrganizer, hits[0].Reason)
}

func TestEventCreateAdjacentAllowed(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, eventAt(1, 1, "Hall A", start, start.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, eventAt(1, 1, "Hall A", start.Add(2*time.Hour), start.Add(3*time.Hour)))
	assert.NoError(t, err)
}

func TestEventCancelFreesSlot(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ev, err := svc.Create(ctx, eventAt(1, 1, "Hall A", start, start.Add(2*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, ev.ID))
	// Cancelling twice is a no-op
	require.NoError(t, svc.Cancel(ctx, ev.ID))

	_, err = svc.Create(ctx, eventAt(1, 1, "Hall A", start, start.Add(2*time.Hour)))
	assert.NoError(t, err)
}

func TestEventUpdateRecheckExcludesSelf(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ev, err := svc.Create(ctx, eventAt(1, 1, "Hall A", start, start.Add(2*time.Hour)))
	require.NoError(t, err)

	// Shifting the event inside its own slot must not trip over itself
	ev.StartsAt = start.Add(30 * time.Minute)
	require.NoError(t, svc.Update(ctx, ev))

	stored, err := svc.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, start.Add(30*time.Minute), stored.StartsAt)
}

func TestEventTimelineValidation(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ev, err := svc.Create(ctx, eventAt(1, 1, "Hall A", start, start.Add(4*time.Hour)))
	require.NoError(t, err)

	// Outside the event's span
	_, err = svc.AddTimelineEntry(ctx, &models.EventTimeLine{
		EventID:  ev.ID,
		Title:    "Keynote",
		StartsAt: start.Add(-time.Hour),
		EndsAt:   start.Add(time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, ErrCodeIllegalValue, err.(*HTTPError).ErrorCode())

	// Inside the span is fine
	first, err := svc.AddTimelineEntry(ctx, &models.EventTimeLine{
		EventID:  ev.ID,
		Title:    "Keynote",
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	// Overlapping a same-day sibling is rejected
	_, err = svc.AddTimelineEntry(ctx, &models.EventTimeLine{
		EventID:  ev.ID,
		Title:    "Workshop",
		StartsAt: start.Add(30 * time.Minute),
		EndsAt:   start.Add(90 * time.Minute),
	})
	require.Error(t, err)
	assert.Equal(t, ErrCodeScheduleConflict, err.(*HTTPError).ErrorCode())

	// Adjacent to the sibling goes through
	_, err = svc.AddTimelineEntry(ctx, &models.EventTimeLine{
		EventID:  ev.ID,
		Title:    "Workshop",
		StartsAt: start.Add(time.Hour),
		EndsAt:   start.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	entries, err := svc.ListTimeline(ctx, ev.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEventJoin(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ev, err := svc.Create(ctx, eventAt(1, 1, "Hall A", start, start.Add(time.Hour)))
	require.NoError(t, err)

	join, err := svc.Join(ctx, &JoinRequest{EventID: ev.ID, UserID: 2, Rating: 4})
	require.NoError(t, err)
	assert.NotZero(t, join.ID)

	// A second join of the same user is rejected
	_, err = svc.Join(ctx, &JoinRequest{EventID: ev.ID, UserID: 2})
	require.Error(t, err)
	assert.Equal(t, ErrCodeAlreadyJoined, err.(*HTTPError).ErrorCode())

	// Another user may still join
	_, err = svc.Join(ctx, &JoinRequest{EventID: ev.ID, UserID: 3})
	assert.NoError(t, err)
}

func TestEventListJoins(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ev, err := svc.Create(ctx, eventAt(1, 1, "Hall A", start, start.Add(time.Hour)))
	require.NoError(t, err)

	_, err = svc.Join(ctx, &JoinRequest{EventID: ev.ID, UserID: 2, Rating: 4})
	require.NoError(t, err)
	_, err = svc.Join(ctx, &JoinRequest{EventID: ev.ID, UserID: 3})
	require.NoError(t, err)

	joins, err := svc.ListJoins(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, joins, 2)
	assert.Equal(t, uint(2), joins[0].UserID)
	assert.Equal(t, uint(3), joins[1].UserID)

	_, err = svc.ListJoins(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, ErrCodeEventNotFound, err.(*HTTPError).ErrorCode())
}

func TestEventJoinValidation(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ev, err := svc.Create(ctx, eventAt(1, 1, "Hall A", start, start.Add(time.Hour)))
	require.NoError(t, err)

	_, err = svc.Join(ctx, &JoinRequest{EventID: 99, UserID: 2})
	require.Error(t, err)
	assert.Equal(t, ErrCodeEventNotFound, err.(*HTTPError).ErrorCode())

	_, err = svc.Join(ctx, &JoinRequest{EventID: ev.ID, UserID: 99})
	require.Error(t, err)
	assert.Equal(t, ErrCodeUserNotFound, err.(*HTTPError).ErrorCode())

	_, err = svc.Join(ctx, &JoinRequest{EventID: ev.ID, UserID: 2, Rating: 6})
	require.Error(t, err)
	assert.Equal(t, ErrCodeIllegalValue, err.(*HTTPError).ErrorCode())
}
