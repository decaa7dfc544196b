package errors

import "errors"

var (
	// Load-time failures.
	ErrMalformedLog = errors.New("malformed replay log")
	ErrFetchFailed  = errors.New("failed to fetch replay log")

	// Lookup failures.
	ErrSessionNotFound = errors.New("session not found")
	ErrLogNotFound     = errors.New("replay log not found")

	// Navigation input validation.
	ErrTurnOutOfRange  = errors.New("turn number out of range")
	ErrRoundOutOfRange = errors.New("round number out of range")
	ErrRoundNotFound   = errors.New("round not found in log")
	ErrInvalidFraction = errors.New("seek fraction out of range")
	ErrInvalidSpeed    = errors.New("unsupported playback speed")

	ErrUnauthorized = errors.New("unauthorized")
)
