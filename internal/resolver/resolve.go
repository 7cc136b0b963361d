// Package resolver decides what the public display shows at a given instant:
// an open schedule window first, then the playlist, then the fallback asset.
package resolver

import (
	"sort"
	"time"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

// Snapshot is one consistent read of the three collections.
type Snapshot struct {
	Schedule []model.ScheduleItem
	Playlist []model.PlaylistItem
	Fallback *model.FallbackContent
}

// Resolve applies the priority order to a snapshot. It does not mutate snap.
func Resolve(now time.Time, snap Snapshot) model.ActiveContent {
	if item := activeSchedule(now, snap.Schedule); item != nil {
		return model.ScheduledContent(*item)
	}
	if len(snap.Playlist) > 0 {
		return model.PlaylistContent(playbackOrder(snap.Playlist))
	}
	if snap.Fallback != nil {
		return model.FallbackActive(*snap.Fallback)
	}
	return model.NoContent()
}

// activeSchedule picks the item whose window contains now. Windows should never
// overlap, but if they do the most recently started one wins, then the higher id.
func activeSchedule(now time.Time, items []model.ScheduleItem) *model.ScheduleItem {
	var found *model.ScheduleItem
	for i := range items {
		it := &items[i]
		if !it.Window().Contains(now) {
			continue
		}
		if found == nil ||
			it.StartTime.After(found.StartTime) ||
			(it.StartTime.Equal(found.StartTime) && it.ID > found.ID) {
			found = it
		}
	}
	return found
}

// playbackOrder returns a copy sorted oldest-added first.
func playbackOrder(items []model.PlaylistItem) []model.PlaylistItem {
	out := make([]model.PlaylistItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
