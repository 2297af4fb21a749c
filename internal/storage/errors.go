package storage

import "errors"

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrUnknownAction is returned for a label action outside the recognized set.
var ErrUnknownAction = errors.New("storage: unknown label action")

// ErrMissingIdentifier is returned when a label action names no target event.
var ErrMissingIdentifier = errors.New("storage: missing event identifier")

// ErrMissingScore is returned when the score action carries no score value.
var ErrMissingScore = errors.New("storage: score action requires a score")
