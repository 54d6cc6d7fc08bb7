package app

import (
	"errors"
	"fmt"
)

// Sentinel errors for building and running an application.
var (
	// ErrNoDocument is returned by Finish when Mount was not called with a
	// document.
	ErrNoDocument = errors.New("app: no document to mount on")

	// ErrNoMountTarget is returned by Finish when the mount target is nil.
	ErrNoMountTarget = errors.New("app: no mount target")

	// ErrNoView is returned by Finish when the view function is nil.
	ErrNoView = errors.New("app: view function is nil")

	// ErrNoUpdate is returned by Finish when the update function is nil.
	ErrNoUpdate = errors.New("app: update function is nil")

	// ErrAlreadyRunning is returned by Run on a running application.
	ErrAlreadyRunning = errors.New("app: already running")

	// ErrClosed is returned by Run after Close.
	ErrClosed = errors.New("app: closed")
)

// PanicError carries a panic recovered from application code.
type PanicError struct {
	// Where names the phase that panicked: "update", "view", "command",
	// "dispatch" or "after_render".
	Where string
	Panic any
	Stack []byte
}

// Error returns the error message.
func (e *PanicError) Error() string {
	return fmt.Sprintf("app: panic in %s: %v", e.Where, e.Panic)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Panic.(error); ok {
		return err
	}
	return nil
}
