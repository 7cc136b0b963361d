package playback

import (
	"fmt"
	"hash/fnv"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

type Element string

const (
	ElementVideo Element = "video"
	ElementImage Element = "img"
	ElementNone  Element = "none"
)

const OfflineMessage = "The stream is currently offline. Nothing is scheduled, the playlist is empty and no fallback has been set."

// Render is the frame sent to a display. A client recreates its media element
// whenever Key changes and keeps playing otherwise.
type Render struct {
	State   StateKind `json:"state"`
	Element Element   `json:"element"`
	Key     string    `json:"key"`
	URL     string    `json:"url,omitempty"`
	Title   string    `json:"title,omitempty"`

	// Video starts muted so autoplay is allowed; the page unmutes after a user gesture.
	Autoplay     bool `json:"autoplay"`
	Muted        bool `json:"muted"`
	Loop         bool `json:"loop"`
	AdvanceOnEnd bool `json:"advance_on_end"`

	Index   int    `json:"index,omitempty"`
	Total   int    `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}

func media(state StateKind, key string, kind model.ContentType, url, title string, loop bool) Render {
	r := Render{State: state, Key: key + ":" + fingerprint(kind, url, title), URL: url, Title: title}
	if kind == model.ContentImage {
		r.Element = ElementImage
		return r
	}
	r.Element = ElementVideo
	r.Autoplay = true
	r.Muted = true
	r.Loop = loop
	r.AdvanceOnEnd = !loop
	return r
}

// fingerprint changes whenever an edit alters what is drawn, so an updated
// item gets a fresh key even though its ID is unchanged.
func fingerprint(kind model.ContentType, url, title string) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s\x00%s\x00%s", kind, url, title)
	return fmt.Sprintf("%08x", h.Sum32())
}
