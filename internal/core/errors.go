// Package core provides the workflow state machine and orchestration
// for parcel listings: the three review collections, the side table
// of additional details, and the ingestion pipeline that feeds them.
// This package has no HTTP dependencies and is driven by the web
// layer.
package core

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when a transition is attempted without
// the required role. Nothing is mutated.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound is returned when an operation references an identifier
// absent from the expected collection. Nothing is mutated.
var ErrNotFound = errors.New("not found")

// SourceError reports a backing file or registry that was missing or
// corrupt at load time. It fails only the triggering operation and
// carries the path for diagnosis.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source unavailable: %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// UserMessage is a user-facing error with a stable code for support
// reference. The web layer renders these; technical details stay in
// the logs.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

// MapError converts a core error into a user-facing message.
func MapError(err error) UserMessage {
	var srcErr *SourceError

	switch {
	case errors.Is(err, ErrUnauthorized):
		return UserMessage{
			Code:    "AUTH001",
			Message: "You are not allowed to perform this action",
			Action:  "Log in with an account that has the required role",
		}
	case errors.Is(err, ErrNotFound):
		return UserMessage{
			Code:    "WF001",
			Message: "The listing was not found in this stage",
			Action:  "Refresh the page; the listing may have moved on",
		}
	case errors.As(err, &srcErr):
		return UserMessage{
			Code:    "SRC001",
			Message: "A data source is unavailable: " + srcErr.Path,
			Action:  "Check that the file exists and is valid JSON/CSV",
		}
	default:
		return UserMessage{
			Code:    "ERR000",
			Message: "An unexpected error occurred",
			Action:  "Please try again or contact support",
		}
	}
}
