package models

import "time"

// SessionStatus describes where a mentorship session currently is in its lifecycle
type SessionStatus string

const (
	// SessionPending is the status of a session that has been requested but not yet
	// accepted by the mentor
	SessionPending = SessionStatus("Pending")
	// SessionConfirmed is the status of a session the mentor has accepted
	SessionConfirmed = SessionStatus("Confirmed")
	// SessionCompleted is the status of a confirmed session whose end time has passed.
	// Only completed sessions can be rated
	SessionCompleted = SessionStatus("Completed")
	// SessionCancelled is the status of a session that one of the participants has
	// called off
	SessionCancelled = SessionStatus("Cancelled")
	// SessionExpired is the status of a pending session whose start time passed without
	// the mentor confirming it. It is only ever set by the auto-cancel sweep and is kept
	// separate from SessionCancelled so that reporting can tell the two apart
	SessionExpired = SessionStatus("Expired")
)

// The allowed session status transitions. Terminal states have no outgoing edges
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionPending:   {SessionConfirmed, SessionCancelled, SessionExpired},
	SessionConfirmed: {SessionCompleted, SessionCancelled},
}

// CanTransitionTo checks whether moving from this status to the given one is allowed
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	for _, t := range sessionTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Terminal checks whether the status has no outgoing transitions left
func (s SessionStatus) Terminal() bool {
	return len(sessionTransitions[s]) == 0
}

// Session describes a single scheduled one-on-one meeting between a mentor and an alumnus
type Session struct {
	// Internal ID
	ID uint `db:"id" json:"id"`
	// The ID of the mentorship relation this session belongs to
	MentorshipID uint `db:"mentorshipId" json:"mentorshipId"`
	// The ID of the mentor
	MentorID uint `db:"mentorId" json:"mentorId"`
	// The ID of the alumnus
	AlumniID uint `db:"alumniId" json:"alumniId"`
	// Display name of the mentor - resolved from the user directory for response convenience
	MentorName string `db:"-" json:"mentorName,omitempty"`
	// Display name of the alumnus - resolved from the user directory for response convenience
	AlumniName string `db:"-" json:"alumniName,omitempty"`
	// When does the session start?
	StartsAt time.Time `db:"startsAt" json:"startsAt"`
	// When does the session end?
	EndsAt time.Time `db:"endsAt" json:"endsAt"`
	// Free-text agenda for the session
	Content string `db:"content" json:"content,omitempty"`
	// Current lifecycle status
	Status SessionStatus `db:"status" json:"status"`
	// Post-session rating (1-5); 0 means "not rated yet"
	Rating uint `db:"rating" json:"rating,omitempty"`
	// Optional comment accompanying the rating
	RatingComment string `db:"ratingComment" json:"ratingComment,omitempty"`
	// Creation date of this entry
	CreatedAt time.Time `db:"createdAt" json:"createdAt"`
	// Date of the last update of this entry
	UpdatedAt time.Time `db:"updatedAt" json:"updatedAt"`
}

// Rated checks if a rating has already been recorded for this session
func (s *Session) Rated() bool {
	return s.Rating > 0
}
