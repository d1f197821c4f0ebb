// Package sqlite provides an event repository that stores its data inside a SQLite database
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/log"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos"
	"github.com/jmoiron/sqlx"
)

const (
	eventFields    = `name, description, image, status, startsAt, endsAt, location, organizerId, majorId, createdAt, updatedAt`
	timelineFields = `eventId, title, description, speaker, startsAt, endsAt`
	joinFields     = `eventId, userId, content, rating, joinedAt`
)

// EventRepo is a repository that stores its data inside a SQLite database
type EventRepo struct {
	db     *sqlx.DB
	logger *logrus.Entry
}

// New creates a new event repository instance with the given database and logger
func New(db *sqlx.DB, logger *logrus.Entry) *EventRepo {
	return &EventRepo{
		db:     db,
		logger: logger,
	}
}

// Create creates a new event
func (r *EventRepo) Create(ev *models.Event) error {
	r.logger.WithField("name", ev.Name).Debug("Adding new event")
	query := fmt.Sprintf(
		"INSERT INTO Events(%s) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now'))",
		eventFields,
	)
	res, err := r.db.Exec(query,
		ev.Name, ev.Description, ev.Image, ev.Status, ev.StartsAt, ev.EndsAt, ev.Location,
		ev.OrganizerID, ev.MajorID,
	)
	if err != nil {
		return err
	}
	// Setting the dates like this should be enough for now
	ev.CreatedAt = time.Now()
	ev.UpdatedAt = time.Now()
	var id int64
	if id, err = res.LastInsertId(); err == nil {
		ev.ID = uint(id)
	}
	return err
}

// Update updates the given event
func (r *EventRepo) Update(ev *models.Event) error {
	r.logger.WithField(log.FldID, ev.ID).Debug("Updating event")
	query := `UPDATE Events SET name = ?, description = ?, image = ?, status = ?, startsAt = ?, endsAt = ?,
        location = ?, organizerId = ?, majorId = ?, updatedAt = datetime('now') WHERE id = ?`
	res, err := r.db.Exec(query,
		ev.Name, ev.Description, ev.Image, ev.Status, ev.StartsAt, ev.EndsAt, ev.Location,
		ev.OrganizerID, ev.MajorID, ev.ID,
	)
	if err != nil {
		return err
	}
	ev.UpdatedAt = time.Now()
	var num int64
	if num, err = res.RowsAffected(); err == nil {
		if num == 0 {
			return repos.ErrEntityNotExisting
		}
	}
	return err
}

// UpdateStatus moves an event from one status to another, guarded by the expected current
// status so that two concurrent writers cannot both apply the same transition
func (r *EventRepo) UpdateStatus(id uint, from, to models.EventStatus) error {
	r.logger.WithFields(logrus.Fields{
		log.FldID:     id,
		log.FldStatus: to,
	}).Debug("Updating event status")
	query := `UPDATE Events SET status = ?, updatedAt = datetime('now') WHERE id = ? AND status = ?`
	res, err := r.db.Exec(query, to, id, from)
	if err != nil {
		return err
	}
	var num int64
	if num, err = res.RowsAffected(); err == nil {
		if num == 0 {
			return repos.ErrEntityNotExisting
		}
	}
	return err
}

// GetByID returns the Event with the given ID
func (r *EventRepo) GetByID(id uint) (*models.Event, error) {
	r.logger.WithField(log.FldID, id).Debug("Loading event")
	query := fmt.Sprintf("SELECT id, %s FROM Events WHERE id = ?", eventFields)
	var ev models.Event
	err := r.db.Get(&ev, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			// Nothing found
			return nil, repos.ErrEntityNotExisting
		}
		return nil, err
	}
	return &ev, nil
}

// Find searches for events matching the given search string - supports pagination
func (r *EventRepo) Find(search string, offset uint, limit uint) ([]models.Event, uint, error) {
	if limit == 0 {
		limit = 50
	}
	r.logger.WithFields(logrus.Fields{
		log.FldSearch: search,
		log.FldOffset: offset,
		log.FldLimit:  limit,
	}).Debug("Searching for event")
	// For now, we're using a simple LIKE search
	search = "%" + search + "%"
	// Page and count have to come from the same database state
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT id, %s FROM Events WHERE
        name LIKE $1 OR description LIKE $1 OR location LIKE $1
        ORDER BY startsAt
        LIMIT $2 OFFSET $3`, eventFields)
	var ret []models.Event
	if err = tx.Select(&ret, query, search, limit, offset); err != nil {
		return nil, 0, repos.DoRollback(tx, err)
	}
	// Query the full count
	query = `SELECT COUNT(*) FROM Events WHERE name LIKE $1 OR description LIKE $1 OR location LIKE $1`
	var numRows uint
	if err = tx.Get(&numRows, query, search); err != nil {
		return nil, 0, repos.DoRollback(tx, err)
	}
	if err = tx.Commit(); err != nil {
		return nil, 0, err
	}
	return ret, numRows, nil
}

// FindActiveOverlapping returns all non-cancelled events overlapping the given half-open
// window, ordered by start time
func (r *EventRepo) FindActiveOverlapping(start, end time.Time) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM Events
        WHERE status != ? AND startsAt < ? AND endsAt > ?
        ORDER BY startsAt`, eventFields)
	var ret []models.Event
	err := r.db.Select(&ret, query, models.EventCancelled, end, start)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// FindAllActive returns all non-cancelled events, ordered by start time
func (r *EventRepo) FindAllActive() ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM Events WHERE status != ? ORDER BY startsAt`, eventFields)
	var ret []models.Event
	err := r.db.Select(&ret, query, models.EventCancelled)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// AddTimelineEntry adds an agenda entry to an existing event
func (r *EventRepo) AddTimelineEntry(entry *models.EventTimeLine) error {
	r.logger.WithField(log.FldEvent, entry.EventID).Debug("Adding timeline entry")
	query := fmt.Sprintf("INSERT INTO EventTimelines(%s) VALUES(?, ?, ?, ?, ?, ?)", timelineFields)
	res, err := r.db.Exec(query,
		entry.EventID, entry.Title, entry.Description, entry.Speaker, entry.StartsAt, entry.EndsAt,
	)
	if err != nil {
		return err
	}
	var id int64
	if id, err = res.LastInsertId(); err == nil {
		entry.ID = uint(id)
	}
	return err
}

// GetTimeline returns the agenda entries of the given event, ordered by start time
func (r *EventRepo) GetTimeline(eventID uint) ([]models.EventTimeLine, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM EventTimelines WHERE eventId = ? ORDER BY startsAt`, timelineFields)
	var ret []models.EventTimeLine
	err := r.db.Select(&ret, query, eventID)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// AddJoin records a user's participation in an event. The UNIQUE(eventId, userId)
// constraint turns a second join of the same user into ErrDuplicateEntity
func (r *EventRepo) AddJoin(join *models.UserJoinEvent) error {
	r.logger.WithFields(logrus.Fields{
		log.FldEvent: join.EventID,
		log.FldUser:  join.UserID,
	}).Debug("Adding participation record")
	query := fmt.Sprintf("INSERT INTO UserJoinEvents(%s) VALUES(?, ?, ?, ?, datetime('now'))", joinFields)
	res, err := r.db.Exec(query, join.EventID, join.UserID, join.Content, join.Rating)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return repos.ErrDuplicateEntity
		}
		return err
	}
	join.JoinedAt = time.Now()
	var id int64
	if id, err = res.LastInsertId(); err == nil {
		join.ID = uint(id)
	}
	return err
}

// GetJoins returns the participation records of the given event
func (r *EventRepo) GetJoins(eventID uint) ([]models.UserJoinEvent, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM UserJoinEvents WHERE eventId = ? ORDER BY joinedAt`, joinFields)
	var ret []models.UserJoinEvent
	err := r.db.Select(&ret, query, eventID)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// CountJoins returns the number of participation records per event ID
func (r *EventRepo) CountJoins() (map[uint]uint, error) {
	rows, err := r.db.Query(`SELECT eventId, COUNT(*) FROM UserJoinEvents GROUP BY eventId`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make(map[uint]uint)
	for rows.Next() {
		var eventID, num uint
		if err := rows.Scan(&eventID, &num); err != nil {
			return nil, err
		}
		ret[eventID] = num
	}
	return ret, rows.Err()
}
