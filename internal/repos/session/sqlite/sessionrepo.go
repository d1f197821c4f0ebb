// Package sqlite provides a mentorship session repository that stores its data inside a
// SQLite database
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/log"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos"
	"github.com/jmoiron/sqlx"
)

const (
	sessionFields = `mentorshipId, mentorId, alumniId, startsAt, endsAt, content, status, rating, ratingComment, createdAt, updatedAt`
)

// SessionRepo is a repository that stores its data inside a SQLite database
type SessionRepo struct {
	db     *sqlx.DB
	logger *logrus.Entry
}

// New creates a new session repository instance with the given database and logger
func New(db *sqlx.DB, logger *logrus.Entry) *SessionRepo {
	return &SessionRepo{
		db:     db,
		logger: logger,
	}
}

// Create creates a new session
func (r *SessionRepo) Create(s *models.Session) error {
	r.logger.WithField(log.FldMentor, s.MentorID).Debug("Adding new mentorship session")
	query := fmt.Sprintf(
		"INSERT INTO Schedules(%s) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now'))",
		sessionFields,
	)
	res, err := r.db.Exec(query,
		s.MentorshipID, s.MentorID, s.AlumniID, s.StartsAt, s.EndsAt, s.Content, s.Status,
		s.Rating, s.RatingComment,
	)
	if err != nil {
		return err
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	var id int64
	if id, err = res.LastInsertId(); err == nil {
		s.ID = uint(id)
	}
	return err
}

// GetByID returns the session with the given ID
func (r *SessionRepo) GetByID(id uint) (*models.Session, error) {
	r.logger.WithField(log.FldID, id).Debug("Loading mentorship session")
	query := fmt.Sprintf("SELECT id, %s FROM Schedules WHERE id = ?", sessionFields)
	var s models.Session
	err := r.db.Get(&s, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			// Nothing found
			return nil, repos.ErrEntityNotExisting
		}
		return nil, err
	}
	return &s, nil
}

// Find returns all sessions - supports pagination
func (r *SessionRepo) Find(offset uint, limit uint) ([]models.Session, uint, error) {
	if limit == 0 {
		limit = 50
	}
	// Page and count have to come from the same database state
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT id, %s FROM Schedules ORDER BY startsAt LIMIT $1 OFFSET $2`, sessionFields)
	var ret []models.Session
	if err = tx.Select(&ret, query, limit, offset); err != nil {
		return nil, 0, repos.DoRollback(tx, err)
	}
	var numRows uint
	if err = tx.Get(&numRows, `SELECT COUNT(*) FROM Schedules`); err != nil {
		return nil, 0, repos.DoRollback(tx, err)
	}
	if err = tx.Commit(); err != nil {
		return nil, 0, err
	}
	return ret, numRows, nil
}

// FindByMentorOverlapping returns the mentor's non-terminal sessions overlapping the given
// half-open window, ordered by start time
func (r *SessionRepo) FindByMentorOverlapping(mentorID uint, start, end time.Time) ([]models.Session, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM Schedules
        WHERE mentorId = ? AND status IN (?, ?) AND startsAt < ? AND endsAt > ?
        ORDER BY startsAt`, sessionFields)
	var ret []models.Session
	err := r.db.Select(&ret, query, mentorID, models.SessionPending, models.SessionConfirmed, end, start)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// UpdateStatus moves a session from one status to another. The WHERE clause on the
// expected current status makes the transition a compare-and-swap: of two concurrent
// callers only one sees a row change, so re-running the sweep or double-clicking a
// cancel button stays a no-op
func (r *SessionRepo) UpdateStatus(id uint, from, to models.SessionStatus) (bool, error) {
	r.logger.WithFields(logrus.Fields{
		log.FldID:     id,
		log.FldStatus: to,
	}).Debug("Updating session status")
	query := `UPDATE Schedules SET status = ?, updatedAt = datetime('now') WHERE id = ? AND status = ?`
	res, err := r.db.Exec(query, to, id, from)
	if err != nil {
		return false, err
	}
	num, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return num > 0, nil
}

// SetRating stores the post-session rating. The guard on status and the empty rating
// column makes a second rating attempt report false instead of overwriting the first
func (r *SessionRepo) SetRating(id uint, rating uint, comment string) (bool, error) {
	r.logger.WithField(log.FldID, id).Debug("Storing session rating")
	query := `UPDATE Schedules SET rating = ?, ratingComment = ?, updatedAt = datetime('now')
        WHERE id = ? AND status = ? AND rating = 0`
	res, err := r.db.Exec(query, rating, comment, id, models.SessionCompleted)
	if err != nil {
		return false, err
	}
	num, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return num > 0, nil
}

// FindPendingStartedBefore returns all Pending sessions whose start time lies before the
// given instant
func (r *SessionRepo) FindPendingStartedBefore(deadline time.Time) ([]models.Session, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM Schedules WHERE status = ? AND startsAt < ? ORDER BY startsAt`, sessionFields)
	var ret []models.Session
	err := r.db.Select(&ret, query, models.SessionPending, deadline)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// CountByStatus returns the number of sessions per status
func (r *SessionRepo) CountByStatus() (map[models.SessionStatus]uint, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM Schedules GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make(map[models.SessionStatus]uint)
	for rows.Next() {
		var status models.SessionStatus
		var num uint
		if err := rows.Scan(&status, &num); err != nil {
			return nil, err
		}
		ret[status] = num
	}
	return ret, rows.Err()
}

// CountByMentor returns the number of sessions per mentor ID
func (r *SessionRepo) CountByMentor() (map[uint]uint, error) {
	rows, err := r.db.Query(`SELECT mentorId, COUNT(*) FROM Schedules GROUP BY mentorId`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make(map[uint]uint)
	for rows.Next() {
		var mentorID, num uint
		if err := rows.Scan(&mentorID, &num); err != nil {
			return nil, err
		}
		ret[mentorID] = num
	}
	return ret, rows.Err()
}
