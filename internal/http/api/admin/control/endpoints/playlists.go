package endpoints

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/db"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

type PlaylistController struct {
	store db.PlaylistStore
}

func newPlaylistController(store db.PlaylistStore) *PlaylistController {
	return &PlaylistController{store: store}
}

// PlaylistModule mounts all authenticated /playlist endpoints.
func PlaylistModule(store db.PlaylistStore) api.Module {
	ctl := newPlaylistController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlist", ctl.listItems)
		c.POST("/playlist", ctl.addItem)
		c.GET("/playlist/:id", ctl.getItem)
		c.PUT("/playlist/:id", ctl.updateItem)
		c.DELETE("/playlist/:id", ctl.removeItem)
	})
}

// newest first
func (p *PlaylistController) listItems(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	items, err := p.store.ListPlaylistItems(ctx.Request.Context())
	if err != nil {
		return nil, api.FromError(err, "could not list playlist")
	}

	response := make([]packets.PlaylistItemResponse, 0, len(items))
	for _, it := range items {
		response = append(response, packets.NewPlaylistItemResponse(it))
	}
	return response, nil
}

func (p *PlaylistController) getItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	it, err := p.store.GetPlaylistItem(ctx.Request.Context(), id)
	if err != nil {
		return nil, api.FromError(err, "could not load playlist item")
	}
	return packets.NewPlaylistItemResponse(it), nil
}

func (p *PlaylistController) addItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.PlaylistItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	it, err := p.store.AddPlaylistItem(ctx.Request.Context(), request.Input())
	if err != nil {
		return nil, api.FromError(err, "could not add playlist item")
	}

	log.Info().Int("id", it.ID).Int("user_id", user.ID).Str("category", it.Category).Msg("[playlist] item added")
	return packets.NewPlaylistItemResponse(it), nil
}

func (p *PlaylistController) updateItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.PlaylistItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	it, err := p.store.UpdatePlaylistItem(ctx.Request.Context(), id, request.Input())
	if err != nil {
		return nil, api.FromError(err, "could not update playlist item")
	}
	return packets.NewPlaylistItemResponse(it), nil
}

func (p *PlaylistController) removeItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := p.store.DeletePlaylistItem(ctx.Request.Context(), id); err != nil {
		return nil, api.FromError(err, "could not delete playlist item")
	}

	log.Info().Int("id", id).Int("user_id", user.ID).Msg("[playlist] item removed")
	return gin.H{"message": "deleted"}, nil
}
