package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

type doneToken struct {
	done chan struct{}
	err  error
}

func newToken(err error, finished bool) *doneToken {
	t := &doneToken{done: make(chan struct{}), err: err}
	if finished {
		close(t.done)
	}
	return t
}

func (t *doneToken) Wait() bool                       { <-t.done; return true }
func (t *doneToken) WaitTimeout(d time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{}            { return t.done }
func (t *doneToken) Error() error                     { return t.err }

type recordingClient struct {
	paho.Client
	token    *doneToken
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

func (c *recordingClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.topic, c.qos, c.retained = topic, qos, retained
	c.payload = payload.([]byte)
	return c.token
}

func TestPublishRetainedMessage(t *testing.T) {
	client := &recordingClient{token: newToken(nil, true)}
	p := NewPublisher(client, "")
	p.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

	content := model.FallbackActive(model.FallbackContent{Type: model.ContentVideo, URL: "https://cdn.example.com/f.mp4"})
	require.NoError(t, p.Publish(context.Background(), content))

	assert.Equal(t, DefaultTopic, client.topic)
	assert.Equal(t, byte(1), client.qos)
	assert.True(t, client.retained)

	var msg Message
	require.NoError(t, json.Unmarshal(client.payload, &msg))
	assert.Equal(t, "active_content", msg.Type)
	assert.Equal(t, model.KindFallback, msg.Content.Kind)
	assert.Equal(t, "https://cdn.example.com/f.mp4", msg.Content.Fallback.URL)
}

func TestPublishSurfacesBrokerError(t *testing.T) {
	client := &recordingClient{token: newToken(errors.New("not connected"), true)}
	err := NewPublisher(client, "signs/lobby").Publish(context.Background(), model.NoContent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signs/lobby")
}

func TestPublishHonoursContext(t *testing.T) {
	client := &recordingClient{token: newToken(nil, false)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPublisher(client, "").Publish(ctx, model.NoContent())
	assert.ErrorIs(t, err, context.Canceled)
}
