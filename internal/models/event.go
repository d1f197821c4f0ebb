package models

import "time"

// EventStatus describes where an event currently is in its lifecycle
type EventStatus string

const (
	// EventDraft is the status of an event that has been created but not yet published
	EventDraft = EventStatus("Draft")
	// EventScheduled is the status of a published event that has not started yet
	EventScheduled = EventStatus("Scheduled")
	// EventOngoing is the status of an event that is currently running
	EventOngoing = EventStatus("Ongoing")
	// EventCompleted is the status of an event whose end time has passed
	EventCompleted = EventStatus("Completed")
	// EventCancelled is the status of an event that has been called off. Cancelled events
	// are kept for history but no longer take part in conflict detection
	EventCancelled = EventStatus("Cancelled")
)

// Event describes a scheduled alumni event
// Events are never deleted - they are retired by moving them into a terminal status so that
// their participation records stay available for popularity scoring
type Event struct {
	// Internal ID
	ID uint `db:"id" json:"id"`
	// Name of the event
	Name string `db:"name" json:"name"`
	// A little description of the event
	Description string `db:"description" json:"description,omitempty"`
	// Optional image URL for the event
	Image string `db:"image" json:"image,omitempty"`
	// Current lifecycle status
	Status EventStatus `db:"status" json:"status"`
	// When does/did the event start?
	StartsAt time.Time `db:"startsAt" json:"startsAt"`
	// When does/did the event end?
	EndsAt time.Time `db:"endsAt" json:"endsAt"`
	// Free-text venue of the event
	Location string `db:"location" json:"location,omitempty"`
	// The ID of the user organizing the event
	OrganizerID uint `db:"organizerId" json:"organizerId"`
	// The ID of the major (department) the event is targeted at
	MajorID uint `db:"majorId" json:"majorId"`
	// Creation date of this entry
	CreatedAt time.Time `db:"createdAt" json:"createdAt"`
	// Date of the last update of this entry
	UpdatedAt time.Time `db:"updatedAt" json:"updatedAt"`
}

// Active checks whether the event still takes part in conflict detection
func (e *Event) Active() bool {
	return e.Status != EventCancelled
}

// EventTimeLine is a single agenda item belonging to an event
// Its time span has to lie inside the parent event's date span and must not overlap a
// sibling entry on the same day
type EventTimeLine struct {
	// Internal ID
	ID uint `db:"id" json:"id"`
	// The ID of the event this entry belongs to
	EventID uint `db:"eventId" json:"eventId"`
	// Title of the agenda item
	Title string `db:"title" json:"title"`
	// A little description of the agenda item
	Description string `db:"description" json:"description,omitempty"`
	// Name of the speaker for this item
	Speaker string `db:"speaker" json:"speaker,omitempty"`
	// Start of the agenda item
	StartsAt time.Time `db:"startsAt" json:"startsAt"`
	// End of the agenda item
	EndsAt time.Time `db:"endsAt" json:"endsAt"`
}

// UserJoinEvent is the participation record of one user for one event
// There is at most one record per (user, event) pair
type UserJoinEvent struct {
	// Internal ID
	ID uint `db:"id" json:"id"`
	// The ID of the event that has been joined
	EventID uint `db:"eventId" json:"eventId"`
	// The ID of the joining user
	UserID uint `db:"userId" json:"userId"`
	// Optional free-text feedback of the participant
	Content string `db:"content" json:"content,omitempty"`
	// Optional rating (1-5); 0 means "not rated"
	Rating uint `db:"rating" json:"rating,omitempty"`
	// When did the user join the event?
	JoinedAt time.Time `db:"joinedAt" json:"joinedAt"`
}
