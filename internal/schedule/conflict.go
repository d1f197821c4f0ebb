package schedule

import (
	"strings"
	"time"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
)

// ConflictReason names the rule a conflict hit was produced by
type ConflictReason string

const (
	// ReasonOrganizer marks a hit where the same organizer already has an overlapping event
	ReasonOrganizer = ConflictReason("organizer")
	// ReasonVenue marks a hit where the same location is already booked at an overlapping time
	ReasonVenue = ConflictReason("venue")
	// ReasonAudience marks a hit where another event targets the same major at an
	// overlapping time, competing for the same attendee pool
	ReasonAudience = ConflictReason("audience")
)

// ConflictHit is one detected collision between a candidate and an existing event
type ConflictHit struct {
	// The ID of the conflicting event
	EventID uint `json:"eventId"`
	// Name of the conflicting event
	EventName string `json:"eventName"`
	// The rule that produced this hit
	Reason ConflictReason `json:"reason"`
	// Start of the conflicting event
	StartsAt time.Time `json:"startsAt"`
	// End of the conflicting event
	EndsAt time.Time `json:"endsAt"`
}

// Candidate is the proposed event a conflict check runs for. A zero EventID means the
// candidate has not been persisted yet; a non-zero one excludes the event itself from the
// comparison set (used when re-checking a stored event)
type Candidate struct {
	// The ID of the event being checked - zero for unsaved candidates
	EventID uint `json:"eventId,omitempty"`
	// The ID of the organizing user
	OrganizerID uint `json:"organizerId"`
	// The ID of the targeted major
	MajorID uint `json:"majorId"`
	// Free-text venue - compared trimmed and case-insensitive; an empty location never
	// produces venue conflicts
	Location string `json:"location,omitempty"`
	// Proposed start of the event
	StartsAt time.Time `json:"startsAt"`
	// Proposed end of the event
	EndsAt time.Time `json:"endsAt"`
}

// Interval returns the candidate's time range
func (c Candidate) Interval() Interval {
	return NewInterval(c.StartsAt, c.EndsAt)
}

// normalizeLocation flattens a venue string for comparison
func normalizeLocation(loc string) string {
	return strings.ToLower(strings.TrimSpace(loc))
}

// DetectConflicts checks the candidate against the given snapshot of existing events and
// returns all collisions, in snapshot order. The three rules (organizer, venue, audience)
// are evaluated independently, so a single event can produce up to three hits. Cancelled
// events and the candidate itself never produce hits. The scan is linear over the
// snapshot; with an active event count in the hundreds this is cheap enough that no
// interval index is needed.
//
// The result is advisory - this function never mutates anything; whether a conflict
// rejects the candidate or merely warns is the caller's decision.
func DetectConflicts(c Candidate, existing []models.Event) []ConflictHit {
	candidateIv := c.Interval()
	candidateLoc := normalizeLocation(c.Location)

	var hits []ConflictHit
	for i := range existing {
		ev := &existing[i]
		if !ev.Active() || (c.EventID != 0 && ev.ID == c.EventID) {
			continue
		}
		if !candidateIv.Overlaps(NewInterval(ev.StartsAt, ev.EndsAt)) {
			continue
		}
		if ev.OrganizerID == c.OrganizerID && c.OrganizerID != 0 {
			hits = append(hits, makeHit(ev, ReasonOrganizer))
		}
		if candidateLoc != "" && normalizeLocation(ev.Location) == candidateLoc {
			hits = append(hits, makeHit(ev, ReasonVenue))
		}
		if ev.MajorID == c.MajorID && c.MajorID != 0 {
			hits = append(hits, makeHit(ev, ReasonAudience))
		}
	}
	return hits
}

func makeHit(ev *models.Event, reason ConflictReason) ConflictHit {
	return ConflictHit{
		EventID:   ev.ID,
		EventName: ev.Name,
		Reason:    reason,
		StartsAt:  ev.StartsAt,
		EndsAt:    ev.EndsAt,
	}
}

// SessionConflicts checks a proposed mentor session against the mentor's existing
// sessions using the same half-open overlap test as the event rules. Sessions in a
// terminal status and, for updates, the session itself are skipped. A mentor may not
// hold two overlapping sessions regardless of which alumni they are with.
func SessionConflicts(sessionID uint, iv Interval, existing []models.Session) []models.Session {
	var hits []models.Session
	for i := range existing {
		sess := existing[i]
		if sess.Status.Terminal() || (sessionID != 0 && sess.ID == sessionID) {
			continue
		}
		if iv.Overlaps(NewInterval(sess.StartsAt, sess.EndsAt)) {
			hits = append(hits, sess)
		}
	}
	return hits
}
