package main

import (
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Nixie-Tech-LLC/beacon/internal/config"
	"github.com/Nixie-Tech-LLC/beacon/internal/db"
	"github.com/Nixie-Tech-LLC/beacon/internal/display"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/beacon/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/Nixie-Tech-LLC/beacon/internal/http/api/admin/control/endpoints"
	displayapi "github.com/Nixie-Tech-LLC/beacon/internal/http/api/display/endpoints"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/beacon/internal/resolver"
	"github.com/Nixie-Tech-LLC/beacon/internal/storage"
)

type Deps struct {
	Store       db.Store
	Storage     storage.Storage
	Templates   *template.Template
	Broadcaster *display.Broadcaster
	Cache       displayapi.Cache
	Resolver    *resolver.Resolver
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps) {
	r.SetHTMLTemplate(deps.Templates)
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"If-None-Match",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"ETag",
			"Retry-After",
		},
		AllowCredentials: false,
	}))

	// 5 attempts per minute per IP
	loginLimit := middleware.RateLimit(middleware.NewIPRateLimiter(rate.Every(12*time.Second), 5))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(cfg.JWTSecret, deps.Store, loginLimit),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Users:     deps.Store,
	},
		adminapi.ScheduleModule(deps.Store, cfg.DisplayTimezone, time.Now),
		adminapi.PlaylistModule(deps.Store),
		adminapi.FallbackModule(deps.Store),
		adminapi.UploadModule(deps.Storage),
		// session endpoints that require auth
		authapi.AuthSessionModule(cfg.JWTSecret, deps.Store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/display",
	},
		displayapi.DisplayModule(deps.Broadcaster, deps.Cache, deps.Resolver),
	)

	r.GET("/", displayapi.Page("Beacon"))

	// Static content
	if !cfg.UseSpaces {
		r.Static(uploadsPath, cfg.UploadDir)
	}
}
