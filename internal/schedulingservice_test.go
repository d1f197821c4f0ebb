package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/schedule"
)

func newTestSchedulingService(repo *fakeEventRepo) *schedulingService {
	cs := NewConfigService("unused.json")
	svc := NewSchedulingService(repo, testMajorRepo(), cs, testLogger()).(*schedulingService)
	svc.now = func() time.Time { return testClock }
	return svc
}

func TestCheckConflictInvalidRange(t *testing.T) {
	svc := newTestSchedulingService(newFakeEventRepo())

	_, err := svc.CheckConflict(context.Background(), schedule.Candidate{
		OrganizerID: 1,
		StartsAt:    testClock.Add(time.Hour),
		EndsAt:      testClock,
	})
	require.Error(t, err)
	assert.Equal(t, ErrCodeIllegalTimeRange, err.(*HTTPError).ErrorCode())
}

func TestCheckConflictAgainstStoredEvents(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestSchedulingService(repo)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(&models.Event{
		Name: "Existing", Status: models.EventScheduled,
		StartsAt: start, EndsAt: start.Add(2 * time.Hour),
		Location: "Hall A", OrganizerID: 1, MajorID: 1,
	}))

	hits, err := svc.CheckConflict(context.Background(), schedule.Candidate{
		OrganizerID: 2,
		MajorID:     1,
		StartsAt:    start.Add(time.Hour),
		EndsAt:      start.Add(3 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, schedule.ReasonAudience, hits[0].Reason)

	// The free slot right after reports nothing
	hits, err = svc.CheckConflict(context.Background(), schedule.Candidate{
		OrganizerID: 2,
		MajorID:     1,
		StartsAt:    start.Add(2 * time.Hour),
		EndsAt:      start.Add(3 * time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRecheckEvent(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestSchedulingService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	stored := &models.Event{
		Name: "Stored", Status: models.EventScheduled,
		StartsAt: start, EndsAt: start.Add(2 * time.Hour),
		Location: "Hall A", OrganizerID: 1, MajorID: 1,
	}
	require.NoError(t, repo.Create(stored))

	// The event never conflicts with itself
	hits, err := svc.RecheckEvent(ctx, stored.ID)
	require.NoError(t, err)
	assert.Empty(t, hits)

	// A later booking of the same organizer turns the re-check red
	rival := &models.Event{
		Name: "Rival", Status: models.EventScheduled,
		StartsAt: start.Add(time.Hour), EndsAt: start.Add(3 * time.Hour),
		Location: "Hall B", OrganizerID: 1, MajorID: 2,
	}
	require.NoError(t, repo.Create(rival))

	hits, err = svc.RecheckEvent(ctx, stored.ID)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, rival.ID, hits[0].EventID)
	assert.Equal(t, schedule.ReasonOrganizer, hits[0].Reason)
}

func TestRecheckEventUnknownID(t *testing.T) {
	svc := newTestSchedulingService(newFakeEventRepo())

	_, err := svc.RecheckEvent(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, ErrCodeEventNotFound, err.(*HTTPError).ErrorCode())
}

func TestSuggestBestTimeValidation(t *testing.T) {
	svc := newTestSchedulingService(newFakeEventRepo())
	ctx := context.Background()

	_, err := svc.SuggestBestTime(ctx, &SuggestionRequest{MajorID: 1, DurationMinutes: 0})
	require.Error(t, err)
	assert.Equal(t, ErrCodeIllegalValue, err.(*HTTPError).ErrorCode())

	_, err = svc.SuggestBestTime(ctx, &SuggestionRequest{MajorID: 99, DurationMinutes: 60})
	require.Error(t, err)
	assert.Equal(t, ErrCodeMajorNotFound, err.(*HTTPError).ErrorCode())
}

func TestSuggestBestTimeReturnsViableSlot(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestSchedulingService(repo)

	res, err := svc.SuggestBestTime(context.Background(), &SuggestionRequest{MajorID: 1, DurationMinutes: 60})
	require.NoError(t, err)
	require.NotNil(t, res.Primary)
	// The suggester stays inside the configured working hours
	conf := models.GetDefaultSchedulingConfig()
	assert.GreaterOrEqual(t, res.Primary.StartsAt.Hour(), int(conf.WorkdayStartHour))
	assert.False(t, res.Primary.StartsAt.Before(testClock))
}

func TestScorePopularity(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestSchedulingService(repo)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	evA := &models.Event{Name: "A", Status: models.EventScheduled, StartsAt: start, EndsAt: start.Add(time.Hour), OrganizerID: 1, MajorID: 1}
	evB := &models.Event{Name: "B", Status: models.EventScheduled, StartsAt: start.Add(2 * time.Hour), EndsAt: start.Add(3 * time.Hour), OrganizerID: 2, MajorID: 1}
	require.NoError(t, repo.Create(evA))
	require.NoError(t, repo.Create(evB))
	for user := uint(1); user <= 4; user++ {
		require.NoError(t, repo.AddJoin(&models.UserJoinEvent{EventID: evA.ID, UserID: user}))
	}
	require.NoError(t, repo.AddJoin(&models.UserJoinEvent{EventID: evB.ID, UserID: 1}))

	// Baseline is the major average (4+1)/2 = 2.5; A is above it and clamps to 1
	pop, err := svc.ScorePopularity(ctx, evA.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(4), pop.ParticipantCount)
	assert.InDelta(t, 1, pop.Score, 1e-9)

	pop, err = svc.ScorePopularity(ctx, evB.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), pop.ParticipantCount)
	assert.InDelta(t, 0.4, pop.Score, 1e-9)

	_, err = svc.ScorePopularity(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, ErrCodeEventNotFound, err.(*HTTPError).ErrorCode())
}

func TestRankEvents(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestSchedulingService(repo)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	evA := &models.Event{Name: "Quiet", Status: models.EventScheduled, StartsAt: start, EndsAt: start.Add(time.Hour), OrganizerID: 1, MajorID: 1}
	evB := &models.Event{Name: "Busy", Status: models.EventScheduled, StartsAt: start.Add(2 * time.Hour), EndsAt: start.Add(3 * time.Hour), OrganizerID: 2, MajorID: 1}
	require.NoError(t, repo.Create(evA))
	require.NoError(t, repo.Create(evB))
	for user := uint(1); user <= 3; user++ {
		require.NoError(t, repo.AddJoin(&models.UserJoinEvent{EventID: evB.ID, UserID: user}))
	}

	ranked, err := svc.RankEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, evB.ID, ranked[0].EventID)
	assert.Equal(t, evA.ID, ranked[1].EventID)
}
