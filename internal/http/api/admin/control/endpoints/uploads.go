package endpoints

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/http/api"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/storage"
)

// UploadModule stores media files so their URL can be used for schedule,
// playlist or fallback entries.
func UploadModule(store storage.Storage) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/uploads", func(ctx *gin.Context, user *model.User) (any, *api.APIError) {
			fileHeader, err := ctx.FormFile("file")
			if err != nil {
				return nil, api.BadRequest("file is required")
			}

			up, err := store.SaveFile(fileHeader)
			if err != nil {
				return nil, api.FromError(err, "could not store upload")
			}

			log.Info().Int("user_id", user.ID).Str("url", up.URL).Int64("size", up.Size).Msg("media uploaded")
			return up, nil
		})
	})
}
