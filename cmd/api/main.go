package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "MongoDbWithGo/docs"
	"MongoDbWithGo/internal/auth"
	"MongoDbWithGo/internal/config"
	"MongoDbWithGo/internal/handler"
	"MongoDbWithGo/internal/storage"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// @title                       Employee Document API
// @version                     1.0
// @description                 CRUD, collection management and filter queries over a MongoDB employee collection.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("main(): failed to load config: %v", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	minTLS, _ := cfg.MinTLSVersion()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, storage.Options{
		Backend:       cfg.Store.Backend,
		MongoURI:      cfg.MongoDB.ConnectionString,
		Database:      cfg.MongoDB.DatabaseName,
		MinTLSVersion: minTLS,
		SQLitePath:    cfg.Store.SQLitePath,
		Timeout:       cfg.Store.OperationTimeout.Duration,
	})
	if err != nil {
		log.Fatalf("main(): failed to open store (backend=%s): %v", cfg.Store.Backend, err)
	}

	opts := handler.Options{Collection: cfg.MongoDB.EmployeeCollection}
	if cfg.AuthEnabled() {
		opts.Issuer = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
		opts.AdminUsername = cfg.Auth.AdminUsername
		opts.AdminPasswordHash = cfg.Auth.AdminPasswordHash
	} else {
		log.Println("Warning: JWT_SECRET_KEY is not set. Database operations are not protected.")
	}

	router := handler.NewRouter(handler.New(store, opts), handler.RouterOptions{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		EnableSwagger:     cfg.IsDevelopment(),
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: router}
	go func() {
		log.Printf("main(): listening on %s (store=%s, database=%s, collection=%s)",
			cfg.Addr(), cfg.Store.Backend, cfg.MongoDB.DatabaseName, cfg.MongoDB.EmployeeCollection)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main(): server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("main(): shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] main(): graceful shutdown failed: %v", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Printf("[ERROR] main(): failed to close store: %v", err)
	}
}
