package schedule

import (
	"fmt"
	"time"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// WindowFields are the ways the admin form can describe a window: explicit
// instants, or a calendar date plus HH:mm clock times (or a duration) read in
// the display's time zone.
type WindowFields struct {
	Start           *time.Time
	End             *time.Time
	Date            string
	StartClock      string
	EndClock        string
	DurationMinutes int
}

// ParseWindow turns form fields into a concrete window.
func ParseWindow(f WindowFields, loc *time.Location) (model.Window, error) {
	if loc == nil {
		loc = time.UTC
	}

	if f.Start != nil {
		w := model.Window{Start: *f.Start}
		switch {
		case f.End != nil:
			w.End = *f.End
		case f.DurationMinutes > 0:
			w.End = w.Start.Add(time.Duration(f.DurationMinutes) * time.Minute)
		default:
			return model.Window{}, &model.ValidationError{Field: "end_time", Message: "end or duration_minutes is required"}
		}
		return w, nil
	}

	if f.Date == "" || f.StartClock == "" {
		return model.Window{}, &model.ValidationError{Field: "start_time", Message: "start, or date with start_time, is required"}
	}

	day, err := time.ParseInLocation(dateLayout, f.Date, loc)
	if err != nil {
		return model.Window{}, &model.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	start, err := atClock(day, f.StartClock, loc)
	if err != nil {
		return model.Window{}, &model.ValidationError{Field: "start_time", Message: err.Error()}
	}

	w := model.Window{Start: start}
	switch {
	case f.EndClock != "":
		end, err := atClock(day, f.EndClock, loc)
		if err != nil {
			return model.Window{}, &model.ValidationError{Field: "end_time", Message: err.Error()}
		}
		w.End = end
	case f.DurationMinutes > 0:
		w.End = start.Add(time.Duration(f.DurationMinutes) * time.Minute)
	default:
		return model.Window{}, &model.ValidationError{Field: "end_time", Message: "end_time or duration_minutes is required"}
	}
	return w, nil
}

func atClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be HH:mm")
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
}
