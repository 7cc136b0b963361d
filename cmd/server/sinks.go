package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/config"
	"github.com/Nixie-Tech-LLC/beacon/internal/display"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api/display/endpoints"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/mqtt"
	"github.com/Nixie-Tech-LLC/beacon/internal/redis"
	"github.com/Nixie-Tech-LLC/beacon/internal/resolver"
)

// InitSinks sets up the optional Redis cache and MQTT publisher. The cache is
// also returned for the display endpoints; it is nil when Redis is not configured.
func InitSinks(ctx context.Context, cfg *config.Config, res *resolver.Resolver) ([]display.Sink, endpoints.Cache, func()) {
	var (
		sinks   []display.Sink
		cache   endpoints.Cache
		closers []func()
	)

	if cfg.RedisAddress != "" {
		rdb := redis.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		active := redis.NewActiveCache(rdb, endpoints.EncodeActive)

		loadCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if f, err := active.LoadFallback(loadCtx); err == nil {
			// lets a restart during a database outage keep showing the fallback
			res.Seed(f)
		} else {
			log.Warn().Err(err).Msg("could not read cached fallback")
		}
		cancel()

		res.OnFallbackChange(func(f *model.FallbackContent) {
			saveCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			_ = active.SaveFallback(saveCtx, f)
		})

		sinks = append(sinks, active)
		cache = active
		closers = append(closers, func() { _ = rdb.Close() })
		log.Info().Str("address", cfg.RedisAddress).Msg("caching active content in redis")
	}

	if cfg.MQTTBrokerURL != "" {
		pub, err := mqtt.Connect(cfg.MQTTBrokerURL, cfg.MQTTTopic)
		if err != nil {
			log.Error().Err(err).Msg("MQTT disabled")
		} else {
			sinks = append(sinks, pub)
			closers = append(closers, pub.Close)
		}
	}

	return sinks, cache, func() {
		for _, c := range closers {
			c()
		}
	}
}
