package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrSeatTaken        = errors.New("seat already taken")
	ErrNoSeatsAvailable = errors.New("no seats available")
	ErrTicketUsed       = errors.New("cannot cancel used ticket")
	ErrTicketNotActive  = errors.New("ticket is not active")
	ErrAlreadyCheckedIn = errors.New("ticket already used")
	ErrTicketCancelled  = errors.New("cannot check in cancelled ticket")
	ErrForbidden        = errors.New("access denied")
	ErrEventHasTickets  = errors.New("event has booked tickets")
	ErrSeatAdjustment   = errors.New("seat adjustment out of range")
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field failure for a request so the
// transport can surface them as one 400 response.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}
