package model

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Status is the lifecycle state of an appointment. Pending is the only
// non-terminal value.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var ErrUnknownStatus = errors.New("unknown appointment status")

// ParseStatus accepts the English wire tokens and the legacy Spanish ones.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "pendiente":
		return StatusPending, nil
	case "completed", "completada":
		return StatusCompleted, nil
	case "cancelled", "canceled", "cancelada":
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Label is the patient-facing name of the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "pendiente"
	case StatusCompleted:
		return "completada"
	case StatusCancelled:
		return "cancelada"
	}
	return string(s)
}

type Action string

const (
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

func (a Action) Label() string {
	if a == ActionComplete {
		return "completada"
	}
	return "cancelada"
}

var (
	ErrTerminalStatus       = errors.New("appointment is no longer pending")
	ErrTransitionNotAllowed = errors.New("transition not allowed for this role")
)

// Transition returns the status reached by applying action to an
// appointment in status from. Admins may complete or cancel; a user may only
// cancel an appointment they own.
func Transition(from Status, action Action, actor Role, owner bool) (Status, error) {
	if from.Terminal() {
		return from, fmt.Errorf("%w: %s", ErrTerminalStatus, from)
	}
	switch action {
	case ActionComplete:
		if actor != RoleAdmin {
			return from, ErrTransitionNotAllowed
		}
		return StatusCompleted, nil
	case ActionCancel:
		if actor != RoleAdmin && !owner {
			return from, ErrTransitionNotAllowed
		}
		return StatusCancelled, nil
	}
	return from, fmt.Errorf("unknown action %q", action)
}
