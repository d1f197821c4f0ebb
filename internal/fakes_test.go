package internal

import (
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.Out = io.Discard
	return logrus.NewEntry(l)
}

// -- In-memory event repo ---------------------------------------------------------------------------------------------

type fakeEventRepo struct {
	sync.Mutex
	events   []models.Event
	timeline []models.EventTimeLine
	joins    []models.UserJoinEvent
	nextID   uint
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (r *fakeEventRepo) assignID() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeEventRepo) Create(ev *models.Event) error {
	r.Lock()
	defer r.Unlock()
	ev.ID = r.assignID()
	ev.CreatedAt = time.Now()
	ev.UpdatedAt = ev.CreatedAt
	r.events = append(r.events, *ev)
	return nil
}

func (r *fakeEventRepo) Update(ev *models.Event) error {
	r.Lock()
	defer r.Unlock()
	for i := range r.events {
		if r.events[i].ID == ev.ID {
			ev.CreatedAt = r.events[i].CreatedAt
			ev.UpdatedAt = time.Now()
			r.events[i] = *ev
			return nil
		}
	}
	return repos.ErrEntityNotExisting
}

func (r *fakeEventRepo) UpdateStatus(id uint, from, to models.EventStatus) error {
	r.Lock()
	defer r.Unlock()
	for i := range r.events {
		if r.events[i].ID == id && r.events[i].Status == from {
			r.events[i].Status = to
			return nil
		}
	}
	return repos.ErrEntityNotExisting
}

func (r *fakeEventRepo) GetByID(id uint) (*models.Event, error) {
	r.Lock()
	defer r.Unlock()
	for i := range r.events {
		if r.events[i].ID == id {
			ret := r.events[i]
			return &ret, nil
		}
	}
	return nil, repos.ErrEntityNotExisting
}

func (r *fakeEventRepo) Find(search string, offset uint, limit uint) ([]models.Event, uint, error) {
	r.Lock()
	defer r.Unlock()
	ret := append([]models.Event(nil), r.events...)
	total := uint(len(ret))
	if offset > total {
		offset = total
	}
	ret = ret[offset:]
	if limit > 0 && uint(len(ret)) > limit {
		ret = ret[:limit]
	}
	return ret, total, nil
}

func (r *fakeEventRepo) FindActiveOverlapping(start, end time.Time) ([]models.Event, error) {
	r.Lock()
	defer r.Unlock()
	var ret []models.Event
	for i := range r.events {
		ev := r.events[i]
		if ev.Active() && ev.StartsAt.Before(end) && start.Before(ev.EndsAt) {
			ret = append(ret, ev)
		}
	}
	return ret, nil
}

func (r *fakeEventRepo) FindAllActive() ([]models.Event, error) {
	r.Lock()
	defer r.Unlock()
	var ret []models.Event
	for i := range r.events {
		if r.events[i].Active() {
			ret = append(ret, r.events[i])
		}
	}
	return ret, nil
}

func (r *fakeEventRepo) AddTimelineEntry(entry *models.EventTimeLine) error {
	r.Lock()
	defer r.Unlock()
	entry.ID = r.assignID()
	r.timeline = append(r.timeline, *entry)
	return nil
}

func (r *fakeEventRepo) GetTimeline(eventID uint) ([]models.EventTimeLine, error) {
	r.Lock()
	defer r.Unlock()
	var ret []models.EventTimeLine
	for i := range r.timeline {
		if r.timeline[i].EventID == eventID {
			ret = append(ret, r.timeline[i])
		}
	}
	return ret, nil
}

func (r *fakeEventRepo) AddJoin(join *models.UserJoinEvent) error {
	r.Lock()
	defer r.Unlock()
	for i := range r.joins {
		if r.joins[i].EventID == join.EventID && r.joins[i].UserID == join.UserID {
			return repos.ErrDuplicateEntity
		}
	}
	join.ID = r.assignID()
	join.JoinedAt = time.Now()
	r.joins = append(r.joins, *join)
	return nil
}

func (r *fakeEventRepo) GetJoins(eventID uint) ([]models.UserJoinEvent, error) {
	r.Lock()
	defer r.Unlock()
	var ret []models.UserJoinEvent
	for i := range r.joins {
		if r.joins[i].EventID == eventID {
			ret = append(ret, r.joins[i])
		}
	}
	return ret, nil
}

func (r *fakeEventRepo) CountJoins() (map[uint]uint, error) {
	r.Lock()
	defer r.Unlock()
	ret := make(map[uint]uint)
	for i := range r.joins {
		ret[r.joins[i].EventID]++
	}
	return ret, nil
}

// -- In-memory session repo -------------------------------------------------------------------------------------------

type fakeSessionRepo struct {
	sync.Mutex
	sessions []models.Session
	nextID   uint
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{}
}

func (r *fakeSessionRepo) Create(s *models.Session) error {
	r.Lock()
	defer r.Unlock()
	r.nextID++
	s.ID = r.nextID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	r.sessions = append(r.sessions, *s)
	return nil
}

func (r *fakeSessionRepo) GetByID(id uint) (*models.Session, error) {
	r.Lock()
	defer r.Unlock()
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			ret := r.sessions[i]
			return &ret, nil
		}
	}
	return nil, repos.ErrEntityNotExisting
}

func (r *fakeSessionRepo) Find(offset uint, limit uint) ([]models.Session, uint, error) {
	r.Lock()
	defer r.Unlock()
	ret := append([]models.Session(nil), r.sessions...)
	total := uint(len(ret))
	if offset > total {
		offset = total
	}
	ret = ret[offset:]
	if limit > 0 && uint(len(ret)) > limit {
		ret = ret[:limit]
	}
	return ret, total, nil
}

func (r *fakeSessionRepo) FindByMentorOverlapping(mentorID uint, start, end time.Time) ([]models.Session, error) {
	r.Lock()
	defer r.Unlock()
	var ret []models.Session
	for i := range r.sessions {
		sess := r.sessions[i]
		if sess.MentorID != mentorID || sess.Status.Terminal() {
			continue
		}
		if sess.StartsAt.Before(end) && start.Before(sess.EndsAt) {
			ret = append(ret, sess)
		}
	}
	return ret, nil
}

// setStatus overwrites a session's status without the compare-and-swap guard
func (r *fakeSessionRepo) setStatus(id uint, status models.SessionStatus) {
	r.Lock()
	defer r.Unlock()
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			r.sessions[i].Status = status
			return
		}
	}
}

func (r *fakeSessionRepo) UpdateStatus(id uint, from, to models.SessionStatus) (bool, error) {
	r.Lock()
	defer r.Unlock()
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			if r.sessions[i].Status != from {
				return false, nil
			}
			r.sessions[i].Status = to
			r.sessions[i].UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSessionRepo) SetRating(id uint, rating uint, comment string) (bool, error) {
	r.Lock()
	defer r.Unlock()
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			if r.sessions[i].Status != models.SessionCompleted || r.sessions[i].Rating != 0 {
				return false, nil
			}
			r.sessions[i].Rating = rating
			r.sessions[i].RatingComment = comment
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSessionRepo) FindPendingStartedBefore(deadline time.Time) ([]models.Session, error) {
	r.Lock()
	defer r.Unlock()
	var ret []models.Session
	for i := range r.sessions {
		sess := r.sessions[i]
		if sess.Status == models.SessionPending && sess.StartsAt.Before(deadline) {
			ret = append(ret, sess)
		}
	}
	return ret, nil
}

func (r *fakeSessionRepo) CountByStatus() (map[models.SessionStatus]uint, error) {
	r.Lock()
	defer r.Unlock()
	ret := make(map[models.SessionStatus]uint)
	for i := range r.sessions {
		ret[r.sessions[i].Status]++
	}
	return ret, nil
}

func (r *fakeSessionRepo) CountByMentor() (map[uint]uint, error) {
	r.Lock()
	defer r.Unlock()
	ret := make(map[uint]uint)
	for i := range r.sessions {
		ret[r.sessions[i].MentorID]++
	}
	return ret, nil
}
