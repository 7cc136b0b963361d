// Package playback turns resolved ActiveContent into what a display draws, and
// tracks the playlist cursor across resolutions and end-of-media events.
package playback

import (
	"fmt"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

type StateKind string

const (
	Loading          StateKind = "loading"
	ShowingScheduled StateKind = "scheduled"
	ShowingPlaylist  StateKind = "playlist"
	ShowingFallback  StateKind = "fallback"
	Offline          StateKind = "offline"
)

// State is a snapshot of the machine. Items and Index are only meaningful
// while Kind is ShowingPlaylist.
type State struct {
	Kind      StateKind
	Scheduled *model.ScheduleItem
	Items     []model.PlaylistItem
	Index     int
	Fallback  *model.FallbackContent
}

// Machine is not safe for concurrent use; each display session owns one.
type Machine struct {
	state State
	plays uint64
}

func NewMachine() *Machine {
	return &Machine{state: State{Kind: Loading}}
}

func (m *Machine) State() State {
	return m.state
}

// Apply moves to the state for c. The playlist cursor survives a new playlist
// resolution as long as it still points inside the list; any other transition
// starts from the first item.
func (m *Machine) Apply(c model.ActiveContent) Render {
	prev := m.state

	switch c.Kind {
	case model.KindScheduled:
		if c.Scheduled == nil {
			m.state = State{Kind: Offline}
			break
		}
		m.state = State{Kind: ShowingScheduled, Scheduled: c.Scheduled}
	case model.KindPlaylist:
		if len(c.Playlist) == 0 {
			m.state = State{Kind: Offline}
			break
		}
		idx := 0
		if prev.Kind == ShowingPlaylist && prev.Index < len(c.Playlist) {
			idx = prev.Index
		}
		m.state = State{Kind: ShowingPlaylist, Items: c.Playlist, Index: idx}
	case model.KindFallback:
		if c.Fallback == nil {
			m.state = State{Kind: Offline}
			break
		}
		m.state = State{Kind: ShowingFallback, Fallback: c.Fallback}
	default:
		m.state = State{Kind: Offline}
	}
	return m.Render()
}

// Completed handles the end of the current media. Only a playlist advances;
// looping media ignores it.
func (m *Machine) Completed() Render {
	if m.state.Kind == ShowingPlaylist && len(m.state.Items) > 0 {
		m.state.Index = (m.state.Index + 1) % len(m.state.Items)
		m.plays++
	}
	return m.Render()
}

// Render describes the current state.
func (m *Machine) Render() Render {
	s := m.state
	switch s.Kind {
	case ShowingScheduled:
		it := s.Scheduled
		return media(s.Kind, fmt.Sprintf("scheduled:%d", it.ID), it.ContentType, it.URL, it.Title, true)
	case ShowingPlaylist:
		it := s.Items[s.Index]
		r := media(s.Kind, fmt.Sprintf("playlist:%d:%d", it.ID, m.plays), model.ContentVideo, it.URL, it.Title, false)
		r.Index = s.Index
		r.Total = len(s.Items)
		return r
	case ShowingFallback:
		f := s.Fallback
		return media(s.Kind, "fallback", f.Type, f.URL, "", true)
	case Offline:
		return Render{State: Offline, Element: ElementNone, Key: "offline", Message: OfflineMessage}
	}
	return Render{State: Loading, Element: ElementNone, Key: "loading"}
}
