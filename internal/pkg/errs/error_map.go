/*
Package errs provides custom error types and application-level error code constants.

This file maps error codes to their CustomError template (user message and HTTP status).
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrValidationFailed:      {Code: ErrValidationFailed, Message: "Please correct the highlighted fields.", Status: http.StatusUnprocessableEntity},

	// 2xxx: Pattern Catalog and Download Errors
	ErrPatternNotFound:     {Code: ErrPatternNotFound, Message: "Pattern not found.", Status: http.StatusNotFound},
	ErrDownloadUnavailable: {Code: ErrDownloadUnavailable, Message: "Download is not available right now. Please try again.", Status: http.StatusServiceUnavailable},

	// 3xxx: User, Session, and Profile Errors
	ErrUnauthorized:    {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrProfileRequired: {Code: ErrProfileRequired, Message: "Browser profile missing or expired.", Status: http.StatusUnauthorized},
	ErrAlreadyLoggedIn: {Code: ErrAlreadyLoggedIn, Message: "You are already signed in."},
	ErrFlowInProgress:  {Code: ErrFlowInProgress, Message: "Please wait, your request is still being processed.", Status: http.StatusConflict},
	ErrSessionReplaced: {Code: ErrSessionReplaced, Message: "This page was opened again in another tab."},

	// 5xxx: Internal System Errors
	ErrUnknown:          {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStoreUnavailable: {Code: ErrStoreUnavailable, Message: "Service temporarily unavailable.", Status: http.StatusServiceUnavailable},
}
