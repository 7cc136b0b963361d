package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/http/api"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api/display/packets"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/playback"
	"github.com/Nixie-Tech-LLC/beacon/internal/redis"
)

// Live is the broadcaster's view of the current resolution.
type Live interface {
	Current() (model.ActiveContent, bool)
	Listen() (<-chan model.ActiveContent, func())
}

// Cache is consulted before the broadcaster has produced anything. It holds
// bodies produced by EncodeActive together with their ETag.
type Cache interface {
	Load(ctx context.Context) ([]byte, string, error)
}

// Resolver answers when neither the broadcaster nor the cache can.
type Resolver interface {
	Current(ctx context.Context) model.ActiveContent
}

type DisplayController struct {
	live     Live
	cache    Cache
	resolver Resolver
}

// DisplayModule mounts the public display endpoints. cache may be nil.
func DisplayModule(live Live, cache Cache, resolver Resolver) api.Module {
	ctl := &DisplayController{live: live, cache: cache, resolver: resolver}
	return api.ModuleFunc(func(c *api.Controller) {
		c.RAW(http.MethodGet, "/active", ctl.active)
		c.RAW(http.MethodGet, "/ws", ctl.serveSession)
	})
}

// EncodeActive renders the /active response body for content.
func EncodeActive(content model.ActiveContent) ([]byte, error) {
	return json.Marshal(packets.ActiveResponse{
		Content: content,
		Render:  playback.NewMachine().Apply(content),
	})
}

// current returns the response body and its ETag.
func (d *DisplayController) current(ctx context.Context) ([]byte, string, error) {
	if c, ok := d.live.Current(); ok {
		return encoded(c)
	}
	if d.cache != nil {
		body, etag, err := d.cache.Load(ctx)
		if err == nil {
			return body, etag, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			log.Warn().Err(err).Msg("active content cache unavailable")
		}
	}
	return encoded(d.resolver.Current(ctx))
}

func encoded(c model.ActiveContent) ([]byte, string, error) {
	body, err := EncodeActive(c)
	if err != nil {
		return nil, "", err
	}
	return body, redis.ETag(body), nil
}

// GET /api/display/active
func (d *DisplayController) active(ctx *gin.Context) {
	body, etag, err := d.current(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode active content")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not encode active content"})
		return
	}

	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", "no-cache")
	if match := ctx.GetHeader("If-None-Match"); match != "" && match == etag {
		ctx.Status(http.StatusNotModified)
		return
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
