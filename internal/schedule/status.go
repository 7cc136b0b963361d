package schedule

import (
	"time"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusLive     Status = "live"
	StatusFinished Status = "finished"
)

// StatusAt classifies an item relative to now for the management list.
func StatusAt(item model.ScheduleItem, now time.Time) Status {
	switch {
	case item.Window().Contains(now):
		return StatusLive
	case now.After(item.EndTime):
		return StatusFinished
	default:
		return StatusUpcoming
	}
}

// RejectPast refuses new windows that start before now. Edits of existing items
// are not subject to this rule.
func RejectPast(w model.Window, now time.Time) error {
	if w.Start.Before(now.Truncate(time.Minute)) {
		return &model.ValidationError{Field: "start_time", Message: "cannot schedule content in the past"}
	}
	return nil
}
