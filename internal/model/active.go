package model

// ActiveKind tags which branch of ActiveContent is populated.
type ActiveKind string

const (
	KindNone      ActiveKind = "none"
	KindScheduled ActiveKind = "scheduled"
	KindPlaylist  ActiveKind = "playlist"
	KindFallback  ActiveKind = "fallback"
)

// ActiveContent is what should be on screen right now. It is derived from the
// three collections on every change and never stored.
type ActiveContent struct {
	Kind      ActiveKind       `json:"kind"`
	Scheduled *ScheduleItem    `json:"scheduled,omitempty"`
	Playlist  []PlaylistItem   `json:"playlist,omitempty"`
	Fallback  *FallbackContent `json:"fallback,omitempty"`
}

func NoContent() ActiveContent {
	return ActiveContent{Kind: KindNone}
}

func ScheduledContent(item ScheduleItem) ActiveContent {
	return ActiveContent{Kind: KindScheduled, Scheduled: &item}
}

func PlaylistContent(items []PlaylistItem) ActiveContent {
	return ActiveContent{Kind: KindPlaylist, Playlist: items}
}

func FallbackActive(f FallbackContent) ActiveContent {
	return ActiveContent{Kind: KindFallback, Fallback: &f}
}

// Equal compares two resolutions structurally.
func (a ActiveContent) Equal(b ActiveContent) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindScheduled:
		return sameSchedule(a.Scheduled, b.Scheduled)
	case KindPlaylist:
		if len(a.Playlist) != len(b.Playlist) {
			return false
		}
		for i := range a.Playlist {
			if !samePlaylistItem(a.Playlist[i], b.Playlist[i]) {
				return false
			}
		}
		return true
	case KindFallback:
		if a.Fallback == nil || b.Fallback == nil {
			return a.Fallback == b.Fallback
		}
		return a.Fallback.Type == b.Fallback.Type && a.Fallback.URL == b.Fallback.URL
	}
	return true
}

func sameSchedule(a, b *ScheduleItem) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.URL == b.URL &&
		a.ContentType == b.ContentType &&
		a.StartTime.Equal(b.StartTime) &&
		a.EndTime.Equal(b.EndTime)
}

func samePlaylistItem(a, b PlaylistItem) bool {
	return a.ID == b.ID &&
		a.URL == b.URL &&
		a.Title == b.Title &&
		a.Category == b.Category &&
		a.CreatedAt.Equal(b.CreatedAt)
}
