package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/http/api/display/packets"
	"github.com/Nixie-Tech-LLC/beacon/internal/playback"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// GET /api/display/ws
func (d *DisplayController) serveSession(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s := &session{
		id:      uuid.NewString(),
		conn:    conn,
		machine: playback.NewMachine(),
	}
	log.Info().Str("session", s.id).Str("remote", ctx.ClientIP()).Msg("display connected")
	s.run(ctx.Request.Context(), d.live)
	log.Info().Str("session", s.id).Msg("display disconnected")
}

// session owns one display's playback state. Only run's goroutine touches the
// machine and writes to the connection.
type session struct {
	id      string
	conn    *websocket.Conn
	machine *playback.Machine
}

func (s *session) run(ctx context.Context, live Live) {
	defer s.conn.Close()

	updates, stop := live.Listen()
	defer stop()

	ended := make(chan string, 4)
	closed := make(chan struct{})
	go s.read(ended, closed)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := s.send(s.machine.Render()); err != nil {
		return
	}

	for {
		var r playback.Render
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case c := <-updates:
			r = s.machine.Apply(c)
		case key := <-ended:
			if key != s.machine.Render().Key {
				log.Debug().Str("session", s.id).Str("key", key).Msg("ignoring stale end of media")
				continue
			}
			r = s.machine.Completed()
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}
		if err := s.send(r); err != nil {
			return
		}
	}
}

func (s *session) send(r playback.Render) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := s.conn.WriteJSON(packets.Frame{Type: packets.FrameRender, Session: s.id, Render: r})
	if err != nil {
		log.Debug().Err(err).Str("session", s.id).Msg("websocket write failed")
	}
	return err
}

func (s *session) read(ended chan<- string, closed chan<- struct{}) {
	defer close(closed)

	s.conn.SetReadLimit(maxMessage)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg packets.ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("session", s.id).Msg("websocket read failed")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		if msg.Type != packets.MessageEnded {
			continue
		}
		select {
		case ended <- msg.Key:
		default:
			// the writer is behind; a newer frame is coming anyway
		}
	}
}
