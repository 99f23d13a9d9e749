package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDefinition is returned when a test is registered without a name
	// or without a function.
	ErrInvalidDefinition = errors.New("lifecycle: invalid test definition")
	// ErrSealed is returned when registering after the session was sealed.
	ErrSealed = errors.New("lifecycle: session sealed")
	// ErrUnknownNaming is returned by NamerFor for an unsupported style.
	ErrUnknownNaming = errors.New("lifecycle: unknown naming style")
	// ErrPanic wraps a value recovered from a panicking hook or test body.
	ErrPanic = errors.New("lifecycle: panic")
)

// HookError reports a failing hook together with the scope it belongs to.
type HookError struct {
	// Err is the underlying error.
	Err error

	// Kind is the hook slot that failed.
	Kind HookKind

	// Scope is the name of the group owning the hook. Empty for the root scope.
	Scope string
}

// Error implements the error interface.
func (e *HookError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Scope, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, r)
}
