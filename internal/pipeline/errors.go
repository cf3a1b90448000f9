package pipeline

import (
	"errors"
	"fmt"

	"vidscribe/internal/artifact"
)

// ErrNoVideosSucceeded is returned by Run when videos were found but every
// one of them failed. It is the only per-video condition that surfaces as a
// process-level error.
var ErrNoVideosSucceeded = errors.New("no videos processed successfully")

// StageError is a per-video collaborator or grouping-input failure. It never
// unwinds past the video it belongs to: the orchestrator records it and
// moves on to the next video.
type StageError struct {
	Video string
	Stage artifact.Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s stage: %v", e.Video, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
