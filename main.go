package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/ender-crm/internal/api"
	"github.com/isdelr/ender-crm/internal/auth"
	"github.com/isdelr/ender-crm/internal/config"
	"github.com/isdelr/ender-crm/internal/database"
	"github.com/isdelr/ender-crm/internal/logger"
	"github.com/isdelr/ender-crm/internal/render"
	"github.com/isdelr/ender-crm/internal/services"
	"github.com/isdelr/ender-crm/internal/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up session storage
	var store sessions.Store
	switch cfg.SessionBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		store = sessions.NewRedisStore(client, "crm:session:")
	default:
		store = sessions.NewSQLStore(db)
	}

	sessionManager := sessions.NewManager(store, auth.NewTokenSigner(cfg.SessionSecret), sessions.Options{
		CookieName: "crm_session",
		TTL:        cfg.SessionTTL,
		Secure:     cfg.IsProduction(),
	})

	renderer, err := render.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	// Set up services
	recordService := services.NewRecordService(db)
	userService := services.NewUserService(db)
	gateway := auth.NewGateway(userService, sessionManager)

	// Set up router
	router := api.NewRouter(api.Deps{
		DB:             db,
		Records:        recordService,
		Users:          userService,
		Sessions:       sessionManager,
		Gateway:        gateway,
		Renderer:       renderer,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.Environment).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
