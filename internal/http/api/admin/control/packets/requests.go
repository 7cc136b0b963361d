package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/schedule"
)

// WindowRequest accepts either RFC3339 start/end, or a calendar date with
// HH:mm clock times, or a date, a start time and a duration.
type WindowRequest struct {
	Start           *time.Time `json:"start"`
	End             *time.Time `json:"end"`
	Date            string     `json:"date"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=1,max=10080"`
}

func (r WindowRequest) Fields() schedule.WindowFields {
	return schedule.WindowFields{
		Start:           r.Start,
		End:             r.End,
		Date:            r.Date,
		StartClock:      r.StartTime,
		EndClock:        r.EndTime,
		DurationMinutes: r.DurationMinutes,
	}
}

type ScheduleItemRequest struct {
	WindowRequest
	Title       string `json:"title"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// Input builds the store input once the window has been resolved.
func (r ScheduleItemRequest) Input(w model.Window) (model.ScheduleItemInput, error) {
	kind, err := model.ParseContentType(r.ContentType)
	if err != nil {
		return model.ScheduleItemInput{}, err
	}
	return model.ScheduleItemInput{
		Title:       r.Title,
		URL:         r.URL,
		ContentType: kind,
		StartTime:   w.Start,
		EndTime:     w.End,
	}, nil
}

// ConflictCheckRequest is the dry run the admin form calls while editing.
type ConflictCheckRequest struct {
	WindowRequest
	ExcludeID int `json:"exclude_id" binding:"omitempty,min=0"`
}

type PlaylistItemRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

func (r PlaylistItemRequest) Input() model.PlaylistItemInput {
	return model.PlaylistItemInput{URL: r.URL, Title: r.Title, Category: r.Category}
}

type FallbackRequest struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func (r FallbackRequest) Content() (model.FallbackContent, error) {
	if r.Type == "" {
		return model.FallbackContent{}, &model.ValidationError{Field: "type", Message: "is required"}
	}
	kind, err := model.ParseContentType(r.Type)
	if err != nil {
		return model.FallbackContent{}, err
	}
	return model.FallbackContent{Type: kind, URL: r.URL}, nil
}
