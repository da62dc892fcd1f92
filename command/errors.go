package command

import "errors"

// Pool errors. All of them are raised as panics: they indicate a producer bug
// or a frame that records far more work than its budget allows.
var (
	// ErrPoolExhausted is raised when a kind's pool has no free record.
	ErrPoolExhausted = errors.New("command: pool exhausted")

	// ErrStaleHandle is raised when a handle is used after its record was released.
	ErrStaleHandle = errors.New("command: stale handle")

	// ErrUnknownKind is raised for a Kind outside the closed set.
	ErrUnknownKind = errors.New("command: unknown kind")

	// ErrKindMismatch is raised when a handle is passed to the pool of another kind.
	ErrKindMismatch = errors.New("command: handle kind mismatch")
)
