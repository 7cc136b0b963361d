package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/db"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

// APIError is what a handler returns instead of writing an error response itself.
type APIError struct {
	Code      int    `json:"-"`
	Message   string `json:"error"`
	Field     string `json:"field,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

type HandlerFuncWithAuth func(ctx *gin.Context, user *model.User) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

func BadRequest(message string) *APIError {
	return &APIError{Code: http.StatusBadRequest, Message: message}
}

// FromError maps store and domain errors onto HTTP. fallback is used for
// anything unrecognised so internals do not leak to the client.
func FromError(err error, fallback string) *APIError {
	var verr *model.ValidationError
	var cerr *model.ConflictError
	switch {
	case errors.As(err, &verr):
		return &APIError{Code: http.StatusBadRequest, Message: verr.Error(), Field: verr.Field}
	case errors.As(err, &cerr):
		return &APIError{Code: http.StatusConflict, Message: cerr.Error()}
	case errors.Is(err, db.ErrNotFound):
		return &APIError{Code: http.StatusNotFound, Message: "not found"}
	case errors.Is(err, db.ErrStoreUnavailable):
		return &APIError{Code: http.StatusServiceUnavailable, Message: "store unavailable, try again", Retryable: true}
	}
	log.Error().Err(err).Msg(fallback)
	return &APIError{Code: http.StatusInternalServerError, Message: fallback}
}

func writeError(ctx *gin.Context, e *APIError) {
	if e.Code == http.StatusServiceUnavailable {
		ctx.Header("Retry-After", "5")
	}
	ctx.JSON(e.Code, e)
}

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, user)
		if apiErr != nil {
			writeError(ctx, apiErr)
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			writeError(ctx, apiErr)
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}
