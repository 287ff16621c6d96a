package patient

import (
	"errors"
	"fmt"
)

var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoBedSelected     = errors.New("no bed selected")
	ErrUnknownWard       = errors.New("unknown ward")
	ErrBedUnavailable    = errors.New("bed is not available")
	ErrDuplicateID       = errors.New("patient id already exists")
)

// TransitionError describes a rejected status move.
type TransitionError struct {
	PatientID string
	From      Status
	To        Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("patient %s cannot move from %s to %s", e.PatientID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ValidationError reports a rejected intake field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
