// Package fault reports programmer-contract violations.
//
// A violation is logged at Error through the gfxcmd logger and then raised
// as a panic whose value is the error, so callers that recover can match it
// with errors.Is.
package fault

import (
	"fmt"

	"github.com/gogpu/gfxcmd"
)

// Raise logs err with the given attributes and panics with it.
func Raise(err error, attrs ...any) {
	gfxcmd.Logger().Error(err.Error(), attrs...)
	panic(err)
}

// Raisef wraps sentinel with a formatted message, logs it and panics.
// The panic value satisfies errors.Is(v, sentinel).
func Raisef(sentinel error, format string, args ...any) {
	Raise(fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...))
}

// Catch runs fn and returns the error it raised, or nil if it returned
// normally. A panic value that is not an error is re-raised.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	fn()
	return nil
}
