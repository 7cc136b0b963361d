package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/schedule"
)

type ScheduleItemResponse struct {
	ID          int               `json:"id"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	ContentType model.ContentType `json:"content_type"`
	Start       string            `json:"start"`
	End         string            `json:"end"`
	Status      schedule.Status   `json:"status"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

func NewScheduleItemResponse(it model.ScheduleItem, now time.Time) ScheduleItemResponse {
	return ScheduleItemResponse{
		ID:          it.ID,
		Title:       it.Title,
		URL:         it.URL,
		ContentType: it.ContentType,
		Start:       it.StartTime.Format(time.RFC3339),
		End:         it.EndTime.Format(time.RFC3339),
		Status:      schedule.StatusAt(it, now),
		CreatedAt:   it.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   it.UpdatedAt.Format(time.RFC3339),
	}
}

type ConflictCheckResponse struct {
	Conflict bool                  `json:"conflict"`
	Message  string                `json:"message,omitempty"`
	With     *ScheduleItemResponse `json:"with,omitempty"`
}

type PlaylistItemResponse struct {
	ID        int    `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func NewPlaylistItemResponse(it model.PlaylistItem) PlaylistItemResponse {
	return PlaylistItemResponse{
		ID:        it.ID,
		URL:       it.URL,
		Title:     it.Title,
		Category:  it.Category,
		CreatedAt: it.CreatedAt.Format(time.RFC3339),
		UpdatedAt: it.UpdatedAt.Format(time.RFC3339),
	}
}

type FallbackResponse struct {
	Type      model.ContentType `json:"type"`
	URL       string            `json:"url"`
	UpdatedAt string            `json:"updated_at"`
}

// FallbackEnvelope keeps "no fallback" distinguishable from an error.
type FallbackEnvelope struct {
	Fallback *FallbackResponse `json:"fallback"`
}

func NewFallbackEnvelope(f *model.FallbackContent) FallbackEnvelope {
	if f == nil {
		return FallbackEnvelope{}
	}
	return FallbackEnvelope{Fallback: &FallbackResponse{
		Type:      f.Type,
		URL:       f.URL,
		UpdatedAt: f.UpdatedAt.Format(time.RFC3339),
	}}
}
