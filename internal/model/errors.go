package model

import (
	"fmt"
	"time"
)

// ValidationError rejects malformed input before anything reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError is returned when a schedule window overlaps an existing item.
type ConflictError struct {
	Candidate Window
	With      ScheduleItem
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time window overlaps %q (%s - %s)",
		e.With.Title,
		e.With.StartTime.Format(time.RFC3339),
		e.With.EndTime.Format(time.RFC3339),
	)
}
