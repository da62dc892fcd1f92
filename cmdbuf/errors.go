package cmdbuf

import "errors"

// Buffer contract violations. All are raised as panics.
var (
	// ErrConcurrentAppend is raised when two goroutines mutate a buffer at once.
	ErrConcurrentAppend = errors.New("cmdbuf: concurrent append")

	// ErrSealed is raised when appending to a buffer handed to submission.
	ErrSealed = errors.New("cmdbuf: append to sealed buffer")

	// ErrUnbalancedScope is raised for an End without a matching Begin, or
	// for sealing or merging a buffer with open scopes.
	ErrUnbalancedScope = errors.New("cmdbuf: unbalanced scope")

	// ErrTooManyBindings is raised when a BindResources call exceeds command.MaxBindings.
	ErrTooManyBindings = errors.New("cmdbuf: too many bindings")

	// ErrPushConstantsTooLarge is raised when push-constant data exceeds command.MaxPushConstantBytes.
	ErrPushConstantsTooLarge = errors.New("cmdbuf: push constants too large")

	// ErrSelfAppend is raised when a buffer is appended to itself.
	ErrSelfAppend = errors.New("cmdbuf: append buffer to itself")
)
