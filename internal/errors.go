package internal

const (
	// ErrCodeUnknown is the error code for unknown errors
	ErrCodeUnknown = "UNKNOWN_ERROR"
	// ErrCodeRepoError is returned when the request to a repo fails with an error
	ErrCodeRepoError = "STORAGE_QUERY_FAILED"
	// ErrCodeRequiredFieldMissing is returned when at least one required field has not been populated on an incoming
	// request
	ErrCodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	// ErrCodeIllegalJSON is returned when the request did not contain a valid JSON body
	ErrCodeIllegalJSON = "ILLEGAL_JSON_REQUEST"
	// ErrCodeIllegalValue is returned when any field in the transferred data does not validate for some reason
	ErrCodeIllegalValue = "ILLEGAL_VALUE"
	// ErrCodeIllegalTimeRange is returned when a start/end pair is inverted or empty
	ErrCodeIllegalTimeRange = "ILLEGAL_TIME_RANGE"
	// ErrCodeInvalidUint is returned when an ID is required inside a request, but is not provided or in a wrong format
	ErrCodeInvalidUint = "INVALID_UINT"
	// ErrCodeEventNotFound is returned when an operation works on an event that does not exist
	ErrCodeEventNotFound = "EVENT_NOT_FOUND"
	// ErrCodeSessionNotFound is returned when an operation works on a mentorship session that does not exist
	ErrCodeSessionNotFound = "SESSION_NOT_FOUND"
	// ErrCodeUserNotFound is returned when a referenced user is not known to the user directory
	ErrCodeUserNotFound = "USER_NOT_FOUND"
	// ErrCodeMajorNotFound is returned when a referenced major is not known to the major directory
	ErrCodeMajorNotFound = "MAJOR_NOT_FOUND"
	// ErrCodeScheduleConflict is returned when a create or confirm operation collides with an existing
	// non-cancelled record under the overlap rules. The error's data element carries the
	// conflicting records and the rules they triggered
	ErrCodeScheduleConflict = "SCHEDULE_CONFLICT"
	// ErrCodeIllegalTransition is returned when an operation is requested on a session or event whose
	// current status does not permit it
	ErrCodeIllegalTransition = "ILLEGAL_STATE_TRANSITION"
	// ErrCodeAlreadyRated is returned when a rating is submitted for a session that has already been rated
	ErrCodeAlreadyRated = "ALREADY_RATED"
	// ErrCodeAlreadyJoined is returned when a user tries to join an event a second time
	ErrCodeAlreadyJoined = "ALREADY_JOINED"
)

// HTTPError is an error that contains information about the error message to return to the client
type HTTPError struct {
	message string
	code    string
	status  int
	data    interface{}
}

// MakeError creates a new HTTPError with the given contents
func MakeError(status int, code, message string) *HTTPError {
	return MakeErrorWithData(status, code, message, nil)
}

// MakeErrorWithData creates a new HTTPError with the given contents and an additional data element
func MakeErrorWithData(status int, code, message string, data interface{}) *HTTPError {
	return &HTTPError{message, code, status, data}
}

// Error implements the errorer interface
func (e *HTTPError) Error() string {
	return e.message
}

// Status returns the HTTP status that should be returned
func (e *HTTPError) Status() int {
	return e.status
}

// ErrorCode returns the machine-readable error code
func (e *HTTPError) ErrorCode() string {
	return e.code
}

// Data returns additional data about the error
func (e *HTTPError) Data() interface{} {
	return e.data
}
