package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"watchlog/api"
	"watchlog/config"
	"watchlog/handlers"
	"watchlog/internal/database"
	"watchlog/services/accounts"
	"watchlog/services/analytics"
	"watchlog/services/metadata"
	"watchlog/services/recommend"
	"watchlog/services/sessions"
	"watchlog/utils"
)

func main() {
	cfg := config.Load()

	if cfg.LogDir != "" {
		rotating := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogDir, "watchlog.log"),
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotating))
	}

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("[main] open database: %v", err)
	}
	defer db.Close()

	itemRepo := database.NewItemRepository(db.Connection())
	eventRepo := database.NewEventRepository(db.Connection())

	accountsSvc, err := accounts.NewService(cfg.DataDir)
	if err != nil {
		log.Fatalf("[main] accounts service: %v", err)
	}
	sessionsSvc, err := sessions.NewService(cfg.DataDir, cfg.SessionDuration)
	if err != nil {
		log.Fatalf("[main] sessions service: %v", err)
	}

	analyticsSvc := analytics.NewService(eventRepo)
	metadataSvc := metadata.NewService(metadata.Config{
		TMDBAPIKey:       cfg.TMDBAPIKey,
		OMDBAPIKey:       cfg.OMDBAPIKey,
		IGDBClientID:     cfg.IGDBClientID,
		IGDBClientSecret: cfg.IGDBClientSecret,
	}, nil)
	recommendSvc := recommend.NewService(metadataSvc)

	if !metadataSvc.HasPrimary() {
		log.Printf("[main] no TMDB key configured, recommendations fall back to the backlog")
	}

	log.Printf("[main] %d accounts loaded", len(accountsSvc.List()))

	authHandler := handlers.NewAuthHandler(accountsSvc, sessionsSvc, itemRepo, analyticsSvc)
	searchHandler := handlers.NewSearchHandler(metadataSvc)
	itemsHandler := handlers.NewItemsHandler(itemRepo, metadataSvc, analyticsSvc)
	recsHandler := handlers.NewRecommendationsHandler(itemRepo, recommendSvc)
	shareHandler := handlers.NewShareHandler(accountsSvc, itemRepo, analyticsSvc)

	router := utils.NewRouter()

	loginLimiter := api.NewCredentialLimiter()

	// Public routes
	router.HandleFunc("/api/search", searchHandler.Search).Methods(http.MethodGet)
	router.HandleFunc("/api/share/{handle}", shareHandler.PublicView).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/register", loginLimiter.Wrap(authHandler.Register)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", loginLimiter.Wrap(authHandler.Login)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", authHandler.Me).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/password", authHandler.ChangePassword).Methods(http.MethodPut)
	router.HandleFunc("/api/auth/account", authHandler.DeleteAccount).Methods(http.MethodDelete)

	// Authenticated per-user routes
	userRoutes := router.PathPrefix("/api/users/{userID}").Subrouter()
	userRoutes.Use(api.AccountAuthMiddleware(sessionsSvc))
	userRoutes.Use(api.UserOwnershipMiddleware())
	userRoutes.HandleFunc("/items", itemsHandler.List).Methods(http.MethodGet)
	userRoutes.HandleFunc("/items", itemsHandler.Create).Methods(http.MethodPost)
	userRoutes.HandleFunc("/items/{id}", itemsHandler.Get).Methods(http.MethodGet)
	userRoutes.HandleFunc("/items/{id}", itemsHandler.Update).Methods(http.MethodPut)
	userRoutes.HandleFunc("/items/{id}", itemsHandler.Delete).Methods(http.MethodDelete)
	userRoutes.HandleFunc("/recommendations", recsHandler.List).Methods(http.MethodGet)
	userRoutes.HandleFunc("/share", shareHandler.UpdateSettings).Methods(http.MethodPut)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
