package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/config"
	"github.com/Nixie-Tech-LLC/beacon/internal/display"
	"github.com/Nixie-Tech-LLC/beacon/internal/feed"
	"github.com/Nixie-Tech-LLC/beacon/internal/resolver"
)

func main() {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes := feed.NewHub()
	defer changes.Close()

	store := InitStore(ctx, cfg, changes)

	res := resolver.New(store, changes,
		resolver.WithInterval(cfg.ResolveInterval),
		resolver.WithTimeout(cfg.StoreTimeout),
	)

	sinks, cache, closeSinks := InitSinks(ctx, cfg, res)
	defer closeSinks()

	broadcaster := display.NewBroadcaster(res, sinks...)
	broadcasting := make(chan struct{})
	go func() {
		broadcaster.Run(ctx)
		close(broadcasting)
	}()

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	RegisterRoutes(r, cfg, Deps{
		Store:       store,
		Storage:     InitStorage(cfg),
		Templates:   LoadTemplates(),
		Broadcaster: broadcaster,
		Cache:       cache,
		Resolver:    res,
	})

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	go func() {
		log.Info().Str("address", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	<-broadcasting
}
