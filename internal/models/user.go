package models

// User is a minimal view on a user from the (external) user directory
// Only the fields the scheduling subsystem needs for display and identity are carried here
type User struct {
	// Internal ID
	ID uint `db:"id" json:"id"`
	// Login name of the user
	Name string `db:"name" json:"name"`
	// Full (display) name of the user
	FullName string `db:"fullName" json:"fullName"`
	// Whether this user may act as a mentor
	IsMentor bool `db:"isMentor" json:"isMentor,omitempty"`
}

// Major is a study major (department) from the (external) major directory
type Major struct {
	// Internal ID
	ID uint `db:"id" json:"id"`
	// Name of the major
	Name string `db:"name" json:"name"`
}
