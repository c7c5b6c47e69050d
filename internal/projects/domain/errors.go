package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("project not found")
	ErrInvalidStatus        = errors.New("invalid project status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrGenerationInProgress = errors.New("generation already in progress")
	ErrPersistence          = errors.New("persistence failed")
	ErrUnknownColumn        = errors.New("unknown project column")

	// ErrNotInProgress means a write that requires IN_PROGRESS matched no row,
	// usually because the generation was cancelled meanwhile.
	ErrNotInProgress = errors.New("project is not in progress")
)

// PersistenceError wraps a failed write of generated fields. It matches
// ErrPersistence and unwraps to the storage error.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", ErrPersistence, e.Err) }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }
