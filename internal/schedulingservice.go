package internal

import (
	"fmt"
	"net/http"
	"time"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/log"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/monitoring"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/schedule"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// SchedulingService provides the computed views on the event calendar: conflict checks,
// popularity scores and best-time suggestions. It never mutates state - all results are
// derived from a single repository snapshot per call
type SchedulingService interface {
	// CheckConflict checks the candidate against all non-cancelled events and returns the
	// collisions found. An empty result means the slot is free; the result is advisory
	CheckConflict(ctx context.Context, cand schedule.Candidate) ([]schedule.ConflictHit, error)
	// RecheckEvent re-runs the conflict check for a stored event, with the event itself
	// excluded from the comparison set
	RecheckEvent(ctx context.Context, eventID uint) ([]schedule.ConflictHit, error)
	// SuggestBestTime searches the next days for the most promising start time for a new
	// event targeting the given major. A result without a primary suggestion means the
	// window is fully booked
	SuggestBestTime(ctx context.Context, req *SuggestionRequest) (*schedule.SuggestionResult, error)
	// ScorePopularity recomputes the popularity metric of the given event from its
	// participation records
	ScorePopularity(ctx context.Context, eventID uint) (*schedule.Popularity, error)
	// RankEvents returns all active events ordered by popularity
	RankEvents(ctx context.Context) ([]schedule.RankedEvent, error)
}

// -- SchedulingService implementation ---------------------------------------------------------------------------------

type schedulingService struct {
	events repos.EventRepo
	majors repos.MajorRepo
	cs     ConfigService
	logger *logrus.Entry
	now    func() time.Time
}

// NewSchedulingService creates a new scheduling service instance
func NewSchedulingService(events repos.EventRepo, majors repos.MajorRepo, cs ConfigService, logger *logrus.Entry) SchedulingService {
	return &schedulingService{
		events: events,
		majors: majors,
		cs:     cs,
		logger: logger,
		now:    time.Now,
	}
}

// CheckConflict checks the candidate against all non-cancelled events overlapping its
// time range
func (s *schedulingService) CheckConflict(ctx context.Context, cand schedule.Candidate) ([]schedule.ConflictHit, error) {
	if !cand.Interval().Valid() {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalTimeRange,
			"The candidate's start time has to lie before its end time",
		)
	}
	// One snapshot per check - the scan below never re-reads storage
	existing, err := s.events.FindActiveOverlapping(cand.StartsAt, cand.EndsAt)
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading events for conflict check", err,
		)
	}
	hits := schedule.DetectConflicts(cand, existing)
	byReason := make(map[string]uint)
	for _, h := range hits {
		byReason[string(h.Reason)]++
	}
	monitoring.ConflictCheck(byReason)
	return hits, nil
}

// RecheckEvent re-runs the conflict check for an event that is already stored
func (s *schedulingService) RecheckEvent(ctx context.Context, eventID uint) ([]schedule.ConflictHit, error) {
	ev, err := s.events.GetByID(eventID)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, MakeError(http.StatusNotFound, ErrCodeEventNotFound,
				fmt.Sprintf("Event #%d does not exist", eventID),
			)
		}
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while retrieving event #%d", eventID), err,
		)
	}
	return s.CheckConflict(ctx, schedule.Candidate{
		EventID:     ev.ID,
		OrganizerID: ev.OrganizerID,
		MajorID:     ev.MajorID,
		Location:    ev.Location,
		StartsAt:    ev.StartsAt,
		EndsAt:      ev.EndsAt,
	})
}

// SuggestBestTime enumerates and scores candidate slots over the configured search window
func (s *schedulingService) SuggestBestTime(ctx context.Context, req *SuggestionRequest) (*schedule.SuggestionResult, error) {
	if req.DurationMinutes == 0 {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalValue,
			"A duration of at least one minute is required",
		)
	}
	if err := s.checkMajor(req.MajorID); err != nil {
		return nil, err
	}
	conf := s.cs.SchedulingConfig(ctx)
	days := req.SearchDays
	if days == 0 {
		days = conf.DefaultSearchDays
	}
	windowStart := s.now()
	window := schedule.NewInterval(windowStart, windowStart.AddDate(0, 0, int(days)))

	existing, err := s.events.FindActiveOverlapping(window.Start, window.End)
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading events for suggestion", err,
		)
	}
	joinCounts, err := s.events.CountJoins()
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading participation counts", err,
		)
	}
	res := schedule.SuggestBestTime(
		schedule.SuggestParamsFromConfig(conf),
		req.MajorID,
		time.Duration(req.DurationMinutes)*time.Minute,
		window,
		existing,
		joinCounts,
	)
	monitoring.Suggestion(res.Primary != nil)
	if res.Primary == nil {
		s.logger.WithField(log.FldMajor, req.MajorID).Info("No viable slot in search window")
	}
	return &res, nil
}

// ScorePopularity recomputes the popularity metric of the given event
func (s *schedulingService) ScorePopularity(ctx context.Context, eventID uint) (*schedule.Popularity, error) {
	ev, err := s.events.GetByID(eventID)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, MakeError(http.StatusNotFound, ErrCodeEventNotFound,
				fmt.Sprintf("Event #%d does not exist", eventID),
			)
		}
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while retrieving event #%d", eventID), err,
		)
	}
	all, err := s.events.FindAllActive()
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading events for popularity baseline", err,
		)
	}
	joinCounts, err := s.events.CountJoins()
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading participation counts", err,
		)
	}
	count := joinCounts[ev.ID]
	baseline := schedule.MajorBaseline(all, joinCounts, ev.MajorID)
	return &schedule.Popularity{
		ParticipantCount: count,
		Score:            schedule.PopularityScore(count, baseline),
	}, nil
}

// RankEvents returns all active events ordered by popularity, most popular first
func (s *schedulingService) RankEvents(ctx context.Context) ([]schedule.RankedEvent, error) {
	all, err := s.events.FindAllActive()
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading events for ranking", err,
		)
	}
	joinCounts, err := s.events.CountJoins()
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading participation counts", err,
		)
	}
	return schedule.RankByPopularity(all, joinCounts), nil
}

func (s *schedulingService) checkMajor(id uint) error {
	m, err := s.majors.GetByID(id)
	if err != nil {
		return MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while retrieving major #%d", id), err,
		)
	}
	if m == nil {
		return MakeError(http.StatusNotFound, ErrCodeMajorNotFound,
			fmt.Sprintf("Major #%d does not exist", id),
		)
	}
	return nil
}
