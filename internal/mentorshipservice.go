package internal

import (
	"fmt"
	"net/http"
	"time"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/log"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/monitoring"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/schedule"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// SessionStats is the read-only aggregation over the session store that feeds the
// reporting endpoints. It observes the lifecycle but takes no part in it
type SessionStats struct {
	// Number of sessions per lifecycle status
	ByStatus map[models.SessionStatus]uint `json:"byStatus"`
	// Number of sessions per mentor ID
	ByMentor map[uint]uint `json:"byMentor"`
}

// MentorshipService manages the lifecycle of mentor/alumni meeting sessions:
// Pending -> Confirmed -> Completed, with Cancelled reachable from Pending and Confirmed
// and Expired produced only by the auto-cancel sweep
type MentorshipService interface {
	// Request creates a new session in Pending, subject to the mentor-overlap invariant
	Request(ctx context.Context, req *SessionRequest) (*models.Session, error)
	Get(ctx context.Context, id uint) (*models.Session, error)
	List(ctx context.Context, p *Pagination) ([]models.Session, uint, error)
	// Confirm moves a Pending session to Confirmed. The session's start time still has to
	// lie in the future
	Confirm(ctx context.Context, id uint) error
	// Cancel moves a Pending or Confirmed session to Cancelled. Cancelling a session that
	// is already in a terminal status is a no-op, not an error
	Cancel(ctx context.Context, id uint) error
	// CompleteAndRate moves a Confirmed session whose end time has passed to Completed and
	// stores the rating. Only Completed sessions accept a rating, and only once
	CompleteAndRate(ctx context.Context, req *RateRequest) error
	// RunAutoCancelSweep expires all Pending sessions whose start time lies before the
	// given instant and returns how many sessions this run transitioned. The sweep is
	// idempotent and safe to run concurrently with itself; per-record failures are logged
	// and skipped rather than aborting the run
	RunAutoCancelSweep(ctx context.Context, now time.Time) (uint, error)
	// Stats counts sessions by status and by mentor
	Stats(ctx context.Context) (*SessionStats, error)
}

// -- MentorshipService implementation ---------------------------------------------------------------------------------

type mentorshipService struct {
	repo   repos.SessionRepo
	users  repos.UserRepo
	logger *logrus.Entry
	// Serializes request/confirm per mentor so the overlap check and the write form one
	// critical section
	mentorLocks *keyedMutex
	now         func() time.Time
}

// NewMentorshipService creates a new mentorship service instance
func NewMentorshipService(repo repos.SessionRepo, users repos.UserRepo, logger *logrus.Entry) MentorshipService {
	return &mentorshipService{
		repo:        repo,
		users:       users,
		logger:      logger,
		mentorLocks: newKeyedMutex(),
		now:         time.Now,
	}
}

// Request creates a new session in Pending
func (s *mentorshipService) Request(ctx context.Context, req *SessionRequest) (*models.Session, error) {
	iv := schedule.NewInterval(req.StartsAt, req.EndsAt)
	if !iv.Valid() {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalTimeRange,
			"The session's start time has to lie before its end time",
		)
	}
	mentor, err := s.checkUser(req.MentorID)
	if err != nil {
		return nil, err
	}
	alumni, err := s.checkUser(req.AlumniID)
	if err != nil {
		return nil, err
	}

	s.mentorLocks.Lock(req.MentorID)
	defer s.mentorLocks.Unlock(req.MentorID)

	// The mentor may not hold two overlapping sessions, regardless of the alumni involved
	existing, err := s.repo.FindByMentorOverlapping(req.MentorID, req.StartsAt, req.EndsAt)
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading the mentor's sessions", err,
		)
	}
	if hits := schedule.SessionConflicts(0, iv, existing); len(hits) > 0 {
		return nil, MakeErrorWithData(
			http.StatusConflict,
			ErrCodeScheduleConflict,
			fmt.Sprintf("Mentor #%d already has a session in this time range", req.MentorID),
			hits,
		)
	}

	sess := &models.Session{
		MentorshipID: req.MentorshipID,
		MentorID:     req.MentorID,
		AlumniID:     req.AlumniID,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Content:      req.Content,
		Status:       models.SessionPending,
	}
	if err := s.repo.Create(sess); err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while storing the session", err,
		)
	}
	monitoring.SessionTransition(string(models.SessionPending))
	sess.MentorName = mentor.FullName
	sess.AlumniName = alumni.FullName
	return sess, nil
}

// Get returns the session with the given ID, with the participant names resolved
func (s *mentorshipService) Get(ctx context.Context, id uint) (*models.Session, error) {
	sess, err := s.load(id)
	if err != nil {
		return nil, err
	}
	s.resolveNames(sess)
	return sess, nil
}

// List returns all sessions - supports pagination
func (s *mentorshipService) List(ctx context.Context, p *Pagination) ([]models.Session, uint, error) {
	list, numRows, err := s.repo.Find(p.Offset, p.Limit)
	if err != nil {
		return nil, 0, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while listing sessions", err,
		)
	}
	for i := range list {
		s.resolveNames(&list[i])
	}
	return list, numRows, nil
}

// Confirm moves a Pending session to Confirmed
func (s *mentorshipService) Confirm(ctx context.Context, id uint) error {
	sess, err := s.load(id)
	if err != nil {
		return err
	}

	s.mentorLocks.Lock(sess.MentorID)
	defer s.mentorLocks.Unlock(sess.MentorID)

	if sess.Status != models.SessionPending {
		return s.transitionError(sess, models.SessionConfirmed)
	}
	if !sess.StartsAt.After(s.now()) {
		return MakeError(http.StatusConflict, ErrCodeIllegalTransition,
			fmt.Sprintf("Session #%d can no longer be confirmed - its start time has passed", id),
		)
	}
	done, err := s.repo.UpdateStatus(id, models.SessionPending, models.SessionConfirmed)
	if err != nil {
		return MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while confirming session #%d", id), err,
		)
	}
	if !done {
		// Lost the race against a cancel or the sweep
		sess, err = s.load(id)
		if err != nil {
			return err
		}
		return s.transitionError(sess, models.SessionConfirmed)
	}
	monitoring.SessionTransition(string(models.SessionConfirmed))
	return nil
}

// Cancel moves a Pending or Confirmed session to Cancelled. Terminal sessions stay
// untouched - repeating a cancellation is a no-op
func (s *mentorshipService) Cancel(ctx context.Context, id uint) error {
	// The CAS can lose against a concurrent confirm or the sweep. Retrying on the fresh
	// status terminates because a session only ever moves towards a terminal status
	for {
		sess, err := s.load(id)
		if err != nil {
			return err
		}
		if sess.Status.Terminal() {
			return nil
		}
		done, err := s.repo.UpdateStatus(id, sess.Status, models.SessionCancelled)
		if err != nil {
			return MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
				fmt.Sprintf("Error while cancelling session #%d", id), err,
			)
		}
		if done {
			monitoring.SessionTransition(string(models.SessionCancelled))
			return nil
		}
	}
}

// CompleteAndRate completes a Confirmed session whose end time has passed and stores the
// one-time rating
func (s *mentorshipService) CompleteAndRate(ctx context.Context, req *RateRequest) error {
	if req.Rating < 1 || req.Rating > 5 {
		return MakeError(http.StatusBadRequest, ErrCodeIllegalValue,
			"Rating has to be between 1 and 5",
		)
	}
	sess, err := s.load(req.SessionID)
	if err != nil {
		return err
	}
	if sess.Status == models.SessionConfirmed {
		if sess.EndsAt.After(s.now()) {
			return MakeError(http.StatusConflict, ErrCodeIllegalTransition,
				fmt.Sprintf("Session #%d has not ended yet", req.SessionID),
			)
		}
		if _, err := s.repo.UpdateStatus(req.SessionID, models.SessionConfirmed, models.SessionCompleted); err != nil {
			return MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
				fmt.Sprintf("Error while completing session #%d", req.SessionID), err,
			)
		}
		monitoring.SessionTransition(string(models.SessionCompleted))
		sess.Status = models.SessionCompleted
	}
	if sess.Status != models.SessionCompleted {
		return s.transitionError(sess, models.SessionCompleted)
	}
	done, err := s.repo.SetRating(req.SessionID, req.Rating, req.Comment)
	if err != nil {
		return MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while storing the rating for session #%d", req.SessionID), err,
		)
	}
	if !done {
		return MakeError(http.StatusConflict, ErrCodeAlreadyRated,
			fmt.Sprintf("Session #%d has already been rated", req.SessionID),
		)
	}
	return nil
}

// RunAutoCancelSweep expires all stale Pending sessions. Each transition is a
// compare-and-swap on the Pending status, so a session is expired exactly once even when
// two sweeps run back to back or overlap
func (s *mentorshipService) RunAutoCancelSweep(ctx context.Context, now time.Time) (uint, error) {
	stale, err := s.repo.FindPendingStartedBefore(now)
	if err != nil {
		return 0, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while loading stale sessions", err,
		)
	}
	var count uint
	for i := range stale {
		sess := &stale[i]
		done, err := s.repo.UpdateStatus(sess.ID, models.SessionPending, models.SessionExpired)
		if err != nil {
			// One broken record must not block the rest of the sweep
			s.logger.WithError(err).WithField(log.FldSession, sess.ID).Error("Failed to expire session - skipping")
			continue
		}
		if done {
			monitoring.SessionTransition(string(models.SessionExpired))
			count++
		}
	}
	if count > 0 {
		monitoring.SweepExpired(count)
		s.logger.WithField(log.FldCount, count).Info("Auto-cancel sweep expired stale sessions")
	}
	return count, nil
}

// Stats counts sessions by status and by mentor
func (s *mentorshipService) Stats(ctx context.Context) (*SessionStats, error) {
	byStatus, err := s.repo.CountByStatus()
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while counting sessions by status", err,
		)
	}
	byMentor, err := s.repo.CountByMentor()
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			"Error while counting sessions by mentor", err,
		)
	}
	return &SessionStats{ByStatus: byStatus, ByMentor: byMentor}, nil
}

func (s *mentorshipService) load(id uint) (*models.Session, error) {
	sess, err := s.repo.GetByID(id)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, MakeError(http.StatusNotFound, ErrCodeSessionNotFound,
				fmt.Sprintf("Session #%d does not exist", id),
			)
		}
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while retrieving session #%d", id), err,
		)
	}
	return sess, nil
}

func (s *mentorshipService) transitionError(sess *models.Session, target models.SessionStatus) error {
	return MakeErrorWithData(
		http.StatusConflict,
		ErrCodeIllegalTransition,
		fmt.Sprintf("Session #%d cannot move from %s to %s", sess.ID, sess.Status, target),
		map[string]string{"from": string(sess.Status), "to": string(target)},
	)
}

func (s *mentorshipService) checkUser(id uint) (*models.User, error) {
	u, err := s.users.GetByID(id)
	if err != nil {
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError,
			fmt.Sprintf("Error while retrieving user #%d", id), err,
		)
	}
	if u == nil {
		return nil, MakeError(http.StatusNotFound, ErrCodeUserNotFound,
			fmt.Sprintf("User #%d does not exist", id),
		)
	}
	return u, nil
}

func (s *mentorshipService) resolveNames(sess *models.Session) {
	if u, err := s.users.GetByID(sess.MentorID); err == nil && u != nil {
		sess.MentorName = u.FullName
	}
	if u, err := s.users.GetByID(sess.AlumniID); err == nil && u != nil {
		sess.AlumniName = u.FullName
	}
}
