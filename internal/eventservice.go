package internal

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/schedule"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// EventService provides service functions for working with events
type EventService interface {
	List(ctx context.Context, search *Search) ([]models.Event, uint, error)
	Get(ctx context.Context, id uint) (*models.Event, error)
	// Create validates the event, runs the conflict check and persists the event when the
	// slot is free. A collision is returned as a conflict error carrying the hits
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	// Cancel retires the event. Cancelled events keep their participation records but no
	// longer take part in conflict detection
	Cancel(ctx context.Context, id uint) error
	// AddTimelineEntry adds an agenda entry after validating it against the event's span
	// and its sibling entries
	AddTimelineEntry(ctx context.Context, entry *models.EventTimeLine) (*models.EventTimeLine, error)
	ListTimeline(ctx context.Context, eventID uint) ([]models.EventTimeLine, error)
	// Join records a user's participation in an event
	Join(ctx context.Context, req *JoinRequest) (*models.UserJoinEvent, error)
	// ListJoins returns the participation records of an event
	ListJoins(ctx context.Context, eventID uint) ([]models.UserJoinEvent, error)
}

// -- EventService implementation --------------------------------------------------------------------------------------

type eventService struct {
	repo       repos.EventRepo
	users      repos.UserRepo
	majors     repos.MajorRepo
	scheduling SchedulingService
	logger     *logrus.Entry
	// Serializes create/update per organizer so the conflict check and the write form one
	// critical section
	organizerLocks *keyedMutex
}

// NewEventService creates a new event service instance
func NewEventService(repo repos.EventRepo, users repos.UserRepo, majors repos.MajorRepo, scheduling SchedulingService, logger *logrus.Entry) EventService {
	return &eventService{
		repo:           repo,
		users:          users,
		majors:         majors,
		scheduling:     scheduling,
		logger:         logger,
		organizerLocks: newKeyedMutex(),
	}
}

// List searches for events matching the given search term
func (s *eventService) List(ctx context.Context, search *Search) ([]models.Event, uint, error) {
	lists, numRows, err := s.repo.Find(search.Search, search.Offset, search.Limit)
	if err != nil {
		return nil, 0, MakeErrorWithData(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			"Error while searching events",
			err,
		)
	}
	return lists, numRows, nil
}

// Get returns the event with the given ID
func (s *eventService) Get(ctx context.Context, id uint) (*models.Event, error) {
	ev, err := s.repo.GetByID(id)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, MakeError(http.StatusNotFound, ErrCodeEventNotFound,
				fmt.Sprintf("Event #%d does not exist", id),
			)
		}
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while retrieving event #%d", id), err,
		)
	}
	return ev, nil
}

// Create creates a new event after validating it and checking the slot for conflicts
func (s *eventService) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := s.validate(event); err != nil {
		return nil, err
	}
	if event.Status == "" {
		event.Status = models.EventScheduled
	}

	// Conflict check and write have to happen under the same lock - otherwise two
	// concurrent requests could both pass the check against the same snapshot
	s.organizerLocks.Lock(event.OrganizerID)
	defer s.organizerLocks.Unlock(event.OrganizerID)

	hits, err := s.scheduling.CheckConflict(ctx, schedule.Candidate{
		OrganizerID: event.OrganizerID,
		MajorID:     event.MajorID,
		Location:    event.Location,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
	})
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 {
		return nil, MakeErrorWithData(
			http.StatusConflict,
			ErrCodeScheduleConflict,
			"The event collides with existing events",
			hits,
		)
	}
	if err := s.repo.Create(event); err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while storing the event", err,
		)
	}
	return event, nil
}

// Update updates an existing event. A changed time range or venue is re-checked for
// conflicts, with the event itself excluded from the comparison set
func (s *eventService) Update(ctx context.Context, event *models.Event) error {
	originalEvent, err := s.Get(ctx, event.ID)
	if err != nil {
		return err
	}
	event.Name = strings.TrimSpace(event.Name)
	if event.Name != "" {
		originalEvent.Name = event.Name
	}
	originalEvent.Description = event.Description
	originalEvent.Image = event.Image
	originalEvent.Location = event.Location
	if !event.StartsAt.IsZero() {
		originalEvent.StartsAt = event.StartsAt
	}
	if !event.EndsAt.IsZero() {
		originalEvent.EndsAt = event.EndsAt
	}
	if err := s.validate(originalEvent); err != nil {
		return err
	}

	s.organizerLocks.Lock(originalEvent.OrganizerID)
	defer s.organizerLocks.Unlock(originalEvent.OrganizerID)

	hits, err := s.scheduling.CheckConflict(ctx, schedule.Candidate{
		EventID:     originalEvent.ID,
		OrganizerID: originalEvent.OrganizerID,
		MajorID:     originalEvent.MajorID,
		Location:    originalEvent.Location,
		StartsAt:    originalEvent.StartsAt,
		EndsAt:      originalEvent.EndsAt,
	})
	if err != nil {
		return err
	}
	if len(hits) > 0 {
		return MakeErrorWithData(
			http.StatusConflict,
			ErrCodeScheduleConflict,
			"The updated time range collides with existing events",
			hits,
		)
	}
	err = s.repo.Update(originalEvent)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return MakeError(http.StatusNotFound, ErrCodeEventNotFound,
				fmt.Sprintf("Event #%d does not exist", event.ID),
			)
		}
		return MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while updating event #%d", event.ID), err,
		)
	}
	return nil
}

// Cancel retires the event by moving it into the Cancelled status. Cancelling an already
// cancelled event is a no-op
func (s *eventService) Cancel(ctx context.Context, id uint) error {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if ev.Status == models.EventCancelled {
		return nil
	}
	err = s.repo.UpdateStatus(id, ev.Status, models.EventCancelled)
	if err == repos.ErrEntityNotExisting {
		// Status changed concurrently - reload and retry once on the fresh status
		ev, err = s.Get(ctx, id)
		if err != nil {
			return err
		}
		if ev.Status == models.EventCancelled {
			return nil
		}
		err = s.repo.UpdateStatus(id, ev.Status, models.EventCancelled)
	}
	if err != nil {
		return MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while cancelling event #%d", id), err,
		)
	}
	return nil
}

// AddTimelineEntry adds an agenda entry to an event. The entry has to lie inside the
// event's span and must not overlap a sibling entry on the same day
func (s *eventService) AddTimelineEntry(ctx context.Context, entry *models.EventTimeLine) (*models.EventTimeLine, error) {
	ev, err := s.Get(ctx, entry.EventID)
	if err != nil {
		return nil, err
	}
	entry.Title = strings.TrimSpace(entry.Title)
	if entry.Title == "" {
		return nil, MakeErrorWithData(
			http.StatusBadRequest,
			ErrCodeRequiredFieldMissing,
			"Timeline entry title missing",
			map[string]string{"field": "title"},
		)
	}
	iv := schedule.NewInterval(entry.StartsAt, entry.EndsAt)
	if !iv.Valid() {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalTimeRange,
			"The entry's start time has to lie before its end time",
		)
	}
	if !iv.WithinHorizon(schedule.NewInterval(ev.StartsAt, ev.EndsAt)) {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalValue,
			"The entry has to lie within the event's date span",
		)
	}
	siblings, err := s.repo.GetTimeline(entry.EventID)
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading the event's timeline", err,
		)
	}
	for i := range siblings {
		sib := &siblings[i]
		if !sameDay(sib.StartsAt, entry.StartsAt) {
			continue
		}
		if iv.Overlaps(schedule.NewInterval(sib.StartsAt, sib.EndsAt)) {
			return nil, MakeErrorWithData(
				http.StatusConflict,
				ErrCodeScheduleConflict,
				"The entry overlaps another agenda item on the same day",
				sib,
			)
		}
	}
	if err := s.repo.AddTimelineEntry(entry); err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while storing the timeline entry", err,
		)
	}
	return entry, nil
}

// ListTimeline returns the agenda entries of the given event
func (s *eventService) ListTimeline(ctx context.Context, eventID uint) ([]models.EventTimeLine, error) {
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}
	entries, err := s.repo.GetTimeline(eventID)
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading the event's timeline", err,
		)
	}
	return entries, nil
}

// Join records a user's participation in an event
func (s *eventService) Join(ctx context.Context, req *JoinRequest) (*models.UserJoinEvent, error) {
	if _, err := s.Get(ctx, req.EventID); err != nil {
		return nil, err
	}
	if err := s.checkUser(req.UserID); err != nil {
		return nil, err
	}
	if req.Rating > 5 {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalValue,
			"Rating has to be between 1 and 5",
		)
	}
	join := &models.UserJoinEvent{
		EventID: req.EventID,
		UserID:  req.UserID,
		Content: req.Content,
		Rating:  req.Rating,
	}
	err := s.repo.AddJoin(join)
	if err != nil {
		if err == repos.ErrDuplicateEntity {
			return nil, MakeError(http.StatusConflict, ErrCodeAlreadyJoined,
				fmt.Sprintf("User #%d has already joined event #%d", req.UserID, req.EventID),
			)
		}
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while storing the participation record", err,
		)
	}
	return join, nil
}

// ListJoins returns the participation records of the given event
func (s *eventService) ListJoins(ctx context.Context, eventID uint) ([]models.UserJoinEvent, error) {
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}
	joins, err := s.repo.GetJoins(eventID)
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading the event's participation records", err,
		)
	}
	return joins, nil
}

// validate checks the fields every stored event has to provide
func (s *eventService) validate(event *models.Event) error {
	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return MakeErrorWithData(
			http.StatusBadRequest,
			ErrCodeRequiredFieldMissing,
			"Event name missing",
			map[string]string{"field": "name"},
		)
	}
	if !schedule.NewInterval(event.StartsAt, event.EndsAt).Valid() {
		return MakeError(http.StatusBadRequest, ErrCodeIllegalTimeRange,
			"The event's start time has to lie before its end time",
		)
	}
	if err := s.checkUser(event.OrganizerID); err != nil {
		return err
	}
	m, err := s.majors.GetByID(event.MajorID)
	if err != nil {
		return MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while retrieving major #%d", event.MajorID), err,
		)
	}
	if m == nil {
		return MakeError(http.StatusNotFound, ErrCodeMajorNotFound,
			fmt.Sprintf("Major #%d does not exist", event.MajorID),
		)
	}
	return nil
}

func (s *eventService) checkUser(id uint) error {
	u, err := s.users.GetByID(id)
	if err != nil {
		return MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while retrieving user #%d", id), err,
		)
	}
	if u == nil {
		return MakeError(http.StatusNotFound, ErrCodeUserNotFound,
			fmt.Sprintf("User #%d does not exist", id),
		)
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
