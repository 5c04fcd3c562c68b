package manager

import (
	"errors"
	"fmt"

	"trackd/internal/config"
	"trackd/internal/registry"
)

// ErrNotInitialized is returned when a run is reconciled before its tracker
// set was built, or after it was closed.
var ErrNotInitialized = errors.New("tracker set not initialized")

// ErrInvalidTopology wraps malformed batch topology (batch size, source kind).
var ErrInvalidTopology = errors.New("invalid batch topology")

// BatchMismatchError signals that a batch does not fit the tracker set the
// run was initialized with. The caller must reinitialize without persist.
type BatchMismatchError struct {
	Slots    int
	Trackers int
	Frames   int
}

func (e *BatchMismatchError) Error() string {
	if e.Frames != e.Slots {
		return fmt.Sprintf("batch mismatch: %d result slots but %d frames", e.Slots, e.Frames)
	}
	return fmt.Sprintf("batch mismatch: %d slots but tracker set has %d per-slot trackers; reinitialize without persist", e.Slots, e.Trackers)
}

// IsBatchMismatch reports whether err indicates a topology mismatch.
func IsBatchMismatch(err error) bool {
	var e *BatchMismatchError
	return errors.As(err, &e)
}

type runNotFoundError struct{ id string }

func (e runNotFoundError) Error() string { return "run not found: " + e.id }

// ErrRunNotFound returns an error for an unknown run id.
func ErrRunNotFound(id string) error { return runNotFoundError{id: id} }

// IsRunNotFound reports whether the error indicates a missing run id.
func IsRunNotFound(err error) bool {
	var e runNotFoundError
	return errors.As(err, &e)
}

// IsConfigError reports whether err comes from tracker configuration: an
// unsupported kind, an unknown or malformed profile, or an invalid topology.
func IsConfigError(err error) bool {
	if registry.IsUnsupportedTrackerKind(err) || errors.Is(err, ErrInvalidTopology) || errors.Is(err, config.ErrProfileNotFound) {
		return true
	}
	var ve *config.ValidationError
	return errors.As(err, &ve)
}
