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

	"hadiqa-backend/internal/config"
	"hadiqa-backend/internal/database"
	"hadiqa-backend/internal/feed"
	"hadiqa-backend/internal/handlers"
	"hadiqa-backend/internal/ledger"
	"hadiqa-backend/internal/middleware"
	"hadiqa-backend/internal/offline"
	"hadiqa-backend/internal/repository"
	"hadiqa-backend/internal/router"
	"hadiqa-backend/internal/services"
	"hadiqa-backend/internal/view"
	"hadiqa-backend/internal/websocket"
	"hadiqa-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Hadiqa Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Step 6: Initialize Services ────
	videoRepo := repository.NewVideoRepo(pool)
	mediaHost := services.NewMediaHostClient(cfg.CatalogURL)
	catalogService := services.NewCatalogService(videoRepo, mediaHost, geminiService)
	if err := catalogService.Refresh(context.Background()); err != nil {
		log.Printf("⚠ Initial catalog refresh failed, feed starts empty: %v", err)
	}

	ledgerService := ledger.NewService(ledger.NewRedisStore(redisClients.Queue))
	viewController := view.NewController()
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	adminService := services.NewAdminService(videoRepo, catalogService, geminiService, mediaHost, cfg.AdminPasscode, cfg.AdminPasscodeHash)

	blobStore, err := offline.NewBlobStore(cfg.StoragePath)
	if err != nil {
		log.Fatalf("✗ Offline cache initialization failed: %v", err)
	}
	offlineManager := offline.NewManager(blobStore)
	log.Printf("✓ Offline cache ready at %s", cfg.StoragePath)

	// ──── Step 7: Start Download Worker ────
	workerPool := worker.NewPool(redisClients.Queue, offlineManager, ledgerService)
	workerPool.Start()
	log.Println("✓ Download worker started (single slot)")

	// ──── Step 8: Start WebSocket Hub + Rotation Timer ────
	wsHub := websocket.NewHub(redisClients.PubSub)
	log.Println("✓ WebSocket hub started")

	rotator := feed.NewRotator(time.Duration(cfg.RotationIntervalSeconds)*time.Second, wsHub)
	rotator.Start()
	log.Printf("✓ Feed rotation timer started (%ds)", cfg.RotationIntervalSeconds)

	// ──── Step 9: Start HTTP Server ────
	feedHandler := handlers.NewFeedHandler(catalogService, ledgerService, rotator)
	interactionsHandler := handlers.NewInteractionsHandler(ledgerService, viewController)
	offlineHandler := handlers.NewOfflineHandler(catalogService, ledgerService, offlineManager, workerPool, wsHub)
	viewHandler := handlers.NewViewHandler(viewController)
	adminHandler := handlers.NewAdminHandler(adminService, geminiService, jwtAuth)

	r := router.New(
		jwtAuth,
		feedHandler,
		interactionsHandler,
		offlineHandler,
		viewHandler,
		adminHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		rotator.Stop()
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Hadiqa Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
