package internal

import "time"

// -- Request data -----------------------------------------------------------------------------------------------------

// Pagination describes a request that uses paging data to retrieve only a subset of the full result
type Pagination struct {
	// Position in the resultset to start the returned result at
	Offset uint
	// Number of items to return
	Limit uint
}

// Search describes a typical search request with a search term and pagination information
type Search struct {
	Pagination
	// The string to search for
	Search string
}

// SuggestionRequest describes a best-time search request
type SuggestionRequest struct {
	// The ID of the major the planned event is targeted at
	MajorID uint
	// Desired length of the event in minutes
	DurationMinutes uint
	// Length of the search window in days; 0 uses the configured default
	SearchDays uint
}

// SessionRequest describes a request for a new mentorship session
type SessionRequest struct {
	// The ID of the mentorship relation the session belongs to
	MentorshipID uint `json:"mentorshipId"`
	// The ID of the requested mentor
	MentorID uint `json:"mentorId"`
	// The ID of the requesting alumnus
	AlumniID uint `json:"alumniId"`
	// Proposed start of the session
	StartsAt time.Time `json:"startsAt"`
	// Proposed end of the session
	EndsAt time.Time `json:"endsAt"`
	// Free-text agenda for the session
	Content string `json:"content"`
}

// RateRequest carries a post-session rating
type RateRequest struct {
	// The ID of the session to rate - taken from the path
	SessionID uint `json:"-"`
	// Rating value (1-5)
	Rating uint `json:"rating"`
	// Optional comment accompanying the rating
	Comment string `json:"comment"`
}

// JoinRequest records a user joining an event
type JoinRequest struct {
	// The ID of the event to join - taken from the path
	EventID uint `json:"-"`
	// The ID of the joining user
	UserID uint `json:"userId"`
	// Optional free-text feedback
	Content string `json:"content"`
	// Optional rating (1-5)
	Rating uint `json:"rating"`
}
