/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both inside the
server and in responses sent to browsers and the CLI.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrValidationFailed indicates that one or more form fields were rejected.
	// The offending fields travel in CustomError.Fields.
	ErrValidationFailed = 1008
)

// 2xxx: Pattern Catalog and Download Errors
const (
	// ErrPatternNotFound indicates that the requested pattern id is not in the catalog.
	ErrPatternNotFound = 2101

	// ErrDownloadUnavailable indicates that a download link could not be produced.
	ErrDownloadUnavailable = 2102
)

// 3xxx: User, Session, and Profile Errors
const (
	// ErrUnauthorized indicates the request needs an active session.
	ErrUnauthorized = 3001

	// ErrProfileRequired indicates that no valid browser profile token accompanied the request.
	ErrProfileRequired = 3002

	// ErrAlreadyLoggedIn indicates that the profile already holds a session.
	ErrAlreadyLoggedIn = 3003

	// ErrFlowInProgress indicates that a login or registration for the profile is still running.
	ErrFlowInProgress = 3004

	// ErrSessionReplaced indicates that the tab connection was taken over by a newer one.
	ErrSessionReplaced = 3005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStoreUnavailable indicates the preference store could not be reached.
	ErrStoreUnavailable = 5001
)
