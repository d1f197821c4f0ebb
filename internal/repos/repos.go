// Package repos contains the repository interfaces needed by the scheduling service
// It exists to prevent circular dependencies between the service and the repo implementations
package repos

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
)

var (
	// ErrEntityNotExisting is fired by a repository when an entity that is updated or deleted does not exist
	ErrEntityNotExisting = fmt.Errorf("cannot update: Entity does not exist")
	// ErrDuplicateEntity is fired by a repository when a uniqueness constraint would be violated
	ErrDuplicateEntity = fmt.Errorf("cannot create: Entity does already exist")
)

// EventRepo defines a repository that handles storing and querying events, their agenda
// entries and their participation records
type EventRepo interface {
	// Create creates a new event
	Create(ev *models.Event) error
	// Update updates the given event
	Update(ev *models.Event) error
	// UpdateStatus moves an event from one status to another. The update only happens when
	// the event still is in the expected current status; otherwise ErrEntityNotExisting
	// is returned
	UpdateStatus(id uint, from, to models.EventStatus) error
	// GetByID returns the Event with the given ID
	GetByID(id uint) (*models.Event, error)
	// Find searches for events matching the given search string - supports pagination
	Find(search string, offset uint, limit uint) ([]models.Event, uint, error)
	// FindActiveOverlapping returns all non-cancelled events whose time range overlaps the
	// given window, ordered by start time. This is the snapshot query the conflict
	// detector and the suggester run over
	FindActiveOverlapping(start, end time.Time) ([]models.Event, error)
	// FindAllActive returns all non-cancelled events, ordered by start time
	FindAllActive() ([]models.Event, error)
	// AddTimelineEntry adds an agenda entry to an existing event
	AddTimelineEntry(entry *models.EventTimeLine) error
	// GetTimeline returns the agenda entries of the given event, ordered by start time
	GetTimeline(eventID uint) ([]models.EventTimeLine, error)
	// AddJoin records a user's participation in an event. At most one record may exist
	// per (user, event) pair - a second attempt returns ErrDuplicateEntity
	AddJoin(join *models.UserJoinEvent) error
	// GetJoins returns the participation records of the given event
	GetJoins(eventID uint) ([]models.UserJoinEvent, error)
	// CountJoins returns the number of participation records per event ID
	CountJoins() (map[uint]uint, error)
}

// SessionRepo defines a repository that handles storing and querying mentorship sessions
type SessionRepo interface {
	// Create creates a new session
	Create(s *models.Session) error
	// GetByID returns the session with the given ID
	GetByID(id uint) (*models.Session, error)
	// Find returns all sessions - supports pagination
	Find(offset uint, limit uint) ([]models.Session, uint, error)
	// FindByMentorOverlapping returns the mentor's non-terminal sessions whose time range
	// overlaps the given window, ordered by start time
	FindByMentorOverlapping(mentorID uint, start, end time.Time) ([]models.Session, error)
	// UpdateStatus moves a session from one status to another. The update only happens
	// when the session still is in the expected current status; the returned flag tells
	// whether this call performed the transition. An unknown session ID is not an error
	// here - it simply reports false
	UpdateStatus(id uint, from, to models.SessionStatus) (bool, error)
	// SetRating stores the post-session rating. The update only happens when the session
	// is Completed and has not been rated yet; the returned flag tells whether the rating
	// was stored
	SetRating(id uint, rating uint, comment string) (bool, error)
	// FindPendingStartedBefore returns all Pending sessions whose start time lies before
	// the given instant - the work list of the auto-cancel sweep
	FindPendingStartedBefore(deadline time.Time) ([]models.Session, error)
	// CountByStatus returns the number of sessions per status
	CountByStatus() (map[models.SessionStatus]uint, error)
	// CountByMentor returns the number of sessions per mentor ID
	CountByMentor() (map[uint]uint, error)
}

// UserRepo is the narrow read-only view on the (external) user directory
type UserRepo interface {
	// GetByID returns the user with the given ID, or nil if no such user exists
	GetByID(id uint) (*models.User, error)
}

// MajorRepo is the narrow read-only view on the (external) major directory
type MajorRepo interface {
	// GetByID returns the major with the given ID, or nil if no such major exists
	GetByID(id uint) (*models.Major, error)
	// List returns all known majors
	List() ([]models.Major, error)
}

// -- Helpers for SQLX repos -------------------------------------------------------------------------------------------

// DoRollback rolls back a transaction and catches any error resulting from it while appending the original error
func DoRollback(tx *sqlx.Tx, originalError error) error {
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("doRollback: Transaction rollback failed: %v; Recent error: %v", err, originalError)
	}
	return originalError
}
