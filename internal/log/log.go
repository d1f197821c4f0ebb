package log

const (
	// FldVersion is the version number of the application
	FldVersion = "ver"
	// FldTransport is the name of the log field for storing a transport name
	FldTransport = "transport"
	// FldID is the ID of an entity used in the log entry
	FldID = "id"
	// FldEvent is the ID of the event the log entry belongs to
	FldEvent = "event"
	// FldSession is the ID of the mentorship session the log entry belongs to
	FldSession = "session"
	// FldMentor is the ID of the mentor the log entry belongs to
	FldMentor = "mentor"
	// FldUser is the ID of the user the log entry belongs to
	FldUser = "user"
	// FldMajor is the ID of the major the log entry belongs to
	FldMajor = "major"
	// FldStatus is a lifecycle status used in the log entry
	FldStatus = "status"
	// FldCount is a result count used in the log entry
	FldCount = "count"
	// FldPath is the name of the log field for storing path name information
	FldPath = "path"
	// FldFile is the name of the log field for storing file name information
	FldFile = "file"
	// FldSearch is a search term used in a search
	FldSearch = "search"
	// FldOffset is the requested offset value in a search
	FldOffset = "offset"
	// FldLimit is the requested result limit in a search
	FldLimit = "limit"
)
