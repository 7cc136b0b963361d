package model

import "time"

// Window is a [Start, End) schedule interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window. Both bounds are inclusive
// here: an item is still considered playing at the exact instant it ends.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ScheduleItem is a timed asset that takes priority over everything else while
// its window is open.
type ScheduleItem struct {
	ID          int         `db:"id"           json:"id"`
	Title       string      `db:"title"        json:"title"`
	URL         string      `db:"url"          json:"url"`
	ContentType ContentType `db:"content_type" json:"content_type"`
	StartTime   time.Time   `db:"start_time"   json:"start_time"`
	EndTime     time.Time   `db:"end_time"     json:"end_time"`
	CreatedAt   time.Time   `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"   json:"updated_at"`
}

func (s ScheduleItem) Window() Window {
	return Window{Start: s.StartTime, End: s.EndTime}
}

// ScheduleItemInput carries the writable fields of a ScheduleItem.
type ScheduleItemInput struct {
	Title       string
	URL         string
	ContentType ContentType
	StartTime   time.Time
	EndTime     time.Time
}

func (in ScheduleItemInput) Window() Window {
	return Window{Start: in.StartTime, End: in.EndTime}
}

// Normalize validates the input and returns a cleaned copy.
func (in ScheduleItemInput) Normalize() (ScheduleItemInput, error) {
	title, err := requireText("title", in.Title)
	if err != nil {
		return in, err
	}
	u, err := NormalizeMediaURL(in.URL)
	if err != nil {
		return in, err
	}
	if in.ContentType == "" {
		in.ContentType = ContentVideo
	}
	if !in.ContentType.Valid() {
		return in, &ValidationError{Field: "content_type", Message: "must be video or image"}
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return in, &ValidationError{Field: "start_time", Message: "start and end are required"}
	}
	if !in.EndTime.After(in.StartTime) {
		return in, &ValidationError{Field: "end_time", Message: "end must be after start"}
	}

	in.Title = title
	in.URL = u
	in.StartTime = in.StartTime.UTC()
	in.EndTime = in.EndTime.UTC()
	return in, nil
}
