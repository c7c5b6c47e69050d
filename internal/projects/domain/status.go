package domain

import "fmt"

// Status is the generation lifecycle of a project.
//
//	PENDING -> IN_PROGRESS -> SUCCESS | CANCELLED
//	SUCCESS | CANCELLED -> PENDING (a new attempt)
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
	StatusCancelled  Status = "CANCELLED"
)

// ParseStatus accepts the stored representation. An empty value is a row that
// predates the status column and is treated as PENDING.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "":
		return StatusPending, nil
	case StatusPending, StatusInProgress, StatusSuccess, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Terminal reports whether the current attempt is over.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusCancelled
}

// CanTransition reports whether to is a legal next state.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusSuccess || to == StatusCancelled
	case StatusSuccess, StatusCancelled:
		return to == StatusPending
	default:
		return false
	}
}

// Transition returns to when the edge is legal.
func (s Status) Transition(to Status) (Status, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
	}
	return to, nil
}

func (s Status) String() string { return string(s) }
