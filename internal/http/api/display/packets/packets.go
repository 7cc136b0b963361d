package packets

import (
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/playback"
)

// ActiveResponse is served by GET /api/display/active. It carries no
// timestamps so identical content always produces the same ETag.
type ActiveResponse struct {
	Content model.ActiveContent `json:"content"`
	Render  playback.Render     `json:"render"`
}

const (
	FrameRender = "render"

	MessageEnded = "ended"
)

// Frame is what the server pushes over the display websocket.
type Frame struct {
	Type    string          `json:"type"`
	Session string          `json:"session"`
	Render  playback.Render `json:"render"`
}

// ClientMessage is sent by the display page. Key names the media that ended so
// a late event for something already replaced is ignored.
type ClientMessage struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}
