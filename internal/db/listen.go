package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/feed"
)

// ChangeChannel is the NOTIFY channel written by the beacon_notify_change trigger.
const ChangeChannel = "beacon_changes"

// ListenForChanges relays row-change notifications from PostgreSQL into pub
// until ctx is cancelled.
func ListenForChanges(ctx context.Context, databaseURL string, pub feed.Publisher) error {
	listener := pq.NewListener(databaseURL, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
			log.Warn().Err(err).Msg("change listener lost its connection")
		case pq.ListenerEventReconnected:
			log.Info().Msg("change listener reconnected")
		}
	})

	if err := listener.Listen(ChangeChannel); err != nil {
		_ = listener.Close()
		return fmt.Errorf("listen %s: %w", ChangeChannel, err)
	}
	log.Info().Str("channel", ChangeChannel).Msg("listening for store changes")

	go relayChanges(ctx, listener, pub)
	return nil
}

func relayChanges(ctx context.Context, l *pq.Listener, pub feed.Publisher) {
	defer func() {
		if err := l.Close(); err != nil {
			log.Warn().Err(err).Msg("closing change listener")
		}
	}()

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case n, ok := <-l.Notify:
			if !ok {
				return
			}
			// nil is sent after a reconnect; anything could have changed meanwhile
			if n == nil {
				for _, c := range feed.Collections {
					pub.Publish(feed.Change{Collection: c, Op: feed.OpResync})
				}
				continue
			}
			change, err := parseNotification(n.Extra)
			if err != nil {
				log.Warn().Err(err).Str("payload", n.Extra).Msg("ignoring malformed change notification")
				continue
			}
			pub.Publish(change)

		case <-ping.C:
			go func() {
				if err := l.Ping(); err != nil {
					log.Warn().Err(err).Msg("change listener ping failed")
				}
			}()
		}
	}
}

func parseNotification(payload string) (feed.Change, error) {
	var c feed.Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return feed.Change{}, err
	}
	switch c.Collection {
	case feed.Schedule, feed.Playlist, feed.Fallback:
	default:
		return feed.Change{}, fmt.Errorf("unknown collection %q", c.Collection)
	}
	if c.Op == "" {
		c.Op = feed.OpUpdate
	}
	return c, nil
}
