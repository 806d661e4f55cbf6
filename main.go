package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docloom/internal/database"
	"docloom/internal/events"
	"docloom/internal/services"
	"docloom/internal/transport"
	"docloom/internal/utils"
)

func main() {
	if err := utils.LoadEnv(); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	events.EnableLogEmitter()

	db, err := database.Init(database.Config{Path: os.Getenv("DOCLOOM_DB_PATH")})
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	svcs := services.NewServices(db, services.DocumentServiceConfig{
		StepDelay: 2 * time.Second,
		ApplyTTL:  10 * time.Minute,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svcs.Startup(ctx); err != nil {
		log.Fatalf("failed to start services: %v", err)
	}

	hub := transport.NewHub(svcs)
	events.SetCustomEmitter(hub.Emitter())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: transport.NewRouter(hub, svcs),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("docloom listening on :%s", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
