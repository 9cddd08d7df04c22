package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bigsmile-dental/denty/api"
	"github.com/bigsmile-dental/denty/blob"
	"github.com/bigsmile-dental/denty/calendar"
	"github.com/bigsmile-dental/denty/config"
	"github.com/bigsmile-dental/denty/conversation"
	"github.com/bigsmile-dental/denty/llm"
	"github.com/bigsmile-dental/denty/policy"
	"github.com/bigsmile-dental/denty/session"
	"github.com/bigsmile-dental/denty/speech"
	"github.com/bigsmile-dental/denty/store"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	log.Printf("Starting booking server...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Chat model: %s (phone: %s)", cfg.ChatModel, cfg.PhoneChatModel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize user store
	users, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer users.Close()

	// Initialize booking collaborator
	booker := calendar.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize backends
	llmClient := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.LLMTimeout)
	speechClient := speech.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.TranscribeModel, cfg.TTSModel, cfg.TTSVoice, cfg.SpeechTimeout)

	// Initialize turn engines
	clinicTZ, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		log.Fatalf("Failed to load clinic timezone %q: %v", cfg.ClinicTimezone, err)
	}
	dispatcher := conversation.NewDispatcher(booker, policyEngine, clinicTZ, cfg.ClinicLocation)
	engine := conversation.NewEngine(llmClient, cfg.ChatModel, dispatcher)
	phoneEngine := conversation.NewEngine(llmClient, cfg.PhoneChatModel, dispatcher)

	// Initialize conversation and audio stores with their sweeps
	sessions := session.NewMemoryStore()
	calls := session.NewMemoryStore()
	replyAudio := blob.NewStore()
	go sessions.Janitor(ctx, time.Minute, cfg.SessionTTL)
	go calls.Janitor(ctx, time.Minute, cfg.SessionTTL)
	go replyAudio.Janitor(ctx, time.Minute, cfg.AudioTTL)

	// Initialize handler
	h := api.NewHandler(cfg, sessions, calls, replyAudio, engine, phoneEngine, speechClient, booker, users, booker)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
	}))
	// PCM uploads arrive base64-encoded in JSON bodies
	e.Use(middleware.BodyLimit("50M"))

	h.RegisterRoutes(e)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down booking server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Booking server stopped")
}
