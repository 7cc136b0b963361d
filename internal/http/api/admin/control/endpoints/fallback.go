package endpoints

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/db"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

type FallbackController struct {
	store db.FallbackStore
}

func FallbackModule(store db.FallbackStore) api.Module {
	ctl := &FallbackController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/fallback", ctl.get)
		c.PUT("/fallback", ctl.set)
		c.DELETE("/fallback", ctl.clear)
	})
}

func (f *FallbackController) get(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	content, err := f.store.GetFallback(ctx.Request.Context())
	if err != nil {
		return nil, api.FromError(err, "could not load fallback")
	}
	return packets.NewFallbackEnvelope(content), nil
}

// last write wins
func (f *FallbackController) set(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.FallbackRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	content, err := request.Content()
	if err != nil {
		return nil, api.FromError(err, "")
	}

	saved, err := f.store.SetFallback(ctx.Request.Context(), content)
	if err != nil {
		return nil, api.FromError(err, "could not save fallback")
	}

	log.Info().Int("user_id", user.ID).Str("type", string(saved.Type)).Msg("fallback content set")
	return packets.NewFallbackEnvelope(&saved), nil
}

func (f *FallbackController) clear(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if err := f.store.ClearFallback(ctx.Request.Context()); err != nil {
		return nil, api.FromError(err, "could not clear fallback")
	}
	log.Info().Int("user_id", user.ID).Msg("fallback content cleared")
	return packets.NewFallbackEnvelope(nil), nil
}
