package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaddachi/tasktrack-be/internal/api"
	"github.com/kaddachi/tasktrack-be/internal/config"
	"github.com/kaddachi/tasktrack-be/internal/database"
	"github.com/kaddachi/tasktrack-be/internal/logger"
	"github.com/kaddachi/tasktrack-be/internal/monitoring"
	"github.com/kaddachi/tasktrack-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	taskService := services.NewTaskService(db)
	eventService := services.NewEventService(db)

	// Set up and run the background maintenance scheduler
	scheduler := monitoring.NewScheduler(tokenService, monitoring.NewStatsReporter())
	if err := scheduler.Start(cfg.CleanupSchedule, cfg.StatsSchedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to start background scheduler")
	}

	// Set up router
	router := api.NewRouter(cfg.AllowedOrigins, userService, tokenService, taskService, eventService)

	// Set up server
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
