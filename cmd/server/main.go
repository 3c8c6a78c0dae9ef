// Package main is the entry point for the Storyboard API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/storyboard-api/internal/config"
	"github.com/Shimizu-Technology/storyboard-api/internal/database"
	"github.com/Shimizu-Technology/storyboard-api/internal/handlers"
	"github.com/Shimizu-Technology/storyboard-api/internal/logging"
	"github.com/Shimizu-Technology/storyboard-api/internal/middleware"
	"github.com/Shimizu-Technology/storyboard-api/internal/observability"
	"github.com/Shimizu-Technology/storyboard-api/internal/router"
	"github.com/Shimizu-Technology/storyboard-api/internal/secrets"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/llm"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/media"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/render"
	"github.com/Shimizu-Technology/storyboard-api/internal/services/scenes"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	devToken := flag.String("dev-token", "", "print a 24h owner token for the given owner id and exit")
	flag.Parse()

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *devToken != "" {
		token, err := middleware.GenerateOwnerToken(*devToken, cfg.JWTSecret, 24*time.Hour)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to sign token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	log, err := logging.New(cfg.GinMode, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("🚀 Storyboard API starting", "version", Version)
	log.Info("📋 Config loaded",
		"port", cfg.Port,
		"gin_mode", cfg.GinMode,
		"rate_limit_per_minute", cfg.RateLimitPerMinute,
	)

	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Step 2: Tracing
	shutdownTracing := observability.Init(ctx, log, observability.Config{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Version:     Version,
		Environment: cfg.GinMode,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	// Step 3: Connect to Database
	sealer, err := secrets.NewSealer(cfg.SecretsKey)
	if err != nil {
		log.Fatal("❌ Failed to initialize secrets", "error", err)
	}

	db, err := database.New(cfg.DatabaseURL, sealer)
	if err != nil {
		log.Fatal("❌ Failed to connect to database", "error", err)
	}
	defer db.Close()
	log.Info("✅ Database connected", "dialect", db.Dialect())

	version, err := db.RunMigrations()
	if err != nil {
		log.Fatal("❌ Migration failed", "error", err)
	}
	log.Info("✅ Migrations applied", "version", version)

	// Step 4: Media cache (Redis when configured, in-process otherwise)
	cache := media.NewMemoryCache(cfg.Media.CacheTTL)
	if cfg.RedisAddr != "" {
		rdb, err := media.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("⚠️  Redis unavailable, using in-process media cache", "error", err)
		} else {
			defer rdb.Close()
			cache = media.NewRedisCache(rdb, cfg.Media.CacheTTL)
			log.Info("✅ Redis media cache connected")
		}
	}

	// Step 5: Create Services
	model := llm.NewGemini(cfg.GeminiModel, cfg.GeminiBaseURL)
	generator := scenes.NewGenerator(model, scenes.Limits{
		MinPromptLength:    cfg.Generation.MinPromptLength,
		MinDurationSeconds: cfg.Generation.MinDurationSeconds,
		MaxDurationSeconds: cfg.Generation.MaxDurationSeconds,
		MinSceneCount:      cfg.Generation.MinSceneCount,
		MaxSceneCount:      cfg.Generation.MaxSceneCount,
		DefaultSceneCount:  cfg.Generation.DefaultSceneCount,
	}, log.With("component", "scenes"))
	refiner := scenes.NewRefiner(model, log.With("component", "keywords"))

	mediaService := media.NewService(
		media.NewPixabay(media.ProviderConfig{
			BaseURL:        cfg.PixabayBaseURL,
			PerMinute:      cfg.Media.PixabayPerMinute,
			MaxQueryTerms:  cfg.Media.MaxQueryTerms,
			MaxQueryLength: cfg.Media.MaxQueryLength,
		}),
		media.NewFreesound(media.ProviderConfig{
			BaseURL:        cfg.FreesoundBaseURL,
			PerMinute:      cfg.Media.FreesoundPerMinute,
			MaxQueryTerms:  cfg.Media.MaxQueryTerms,
			MaxQueryLength: cfg.Media.MaxQueryLength,
		}),
		cache,
		log.With("component", "media"),
	)
	renderService := render.New(nil, log.With("component", "render"))
	if cfg.RenderAllowPrivateHosts {
		renderService.AllowPrivateHosts()
		log.Warn("⚠️  Render backends may target private addresses")
	}
	log.Info("✅ Services initialized", "model", cfg.GeminiModel, "media_cache", mediaService.CacheName())

	// Step 6: Setup HTTP Router
	h := handlers.NewHandler(db, generator, refiner, mediaService, renderService, log)
	r, rateLimiter := router.Setup(h, router.Options{
		ServiceName:        cfg.OtelServiceName,
		JWTSecret:          cfg.JWTSecret,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	defer rateLimiter.Stop()

	// Step 7: Start the HTTP Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second, // scene generation waits on the model
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("🌐 Server listening", "addr", "http://localhost:"+cfg.Port)
		log.Info("📖 Health check", "url", "http://localhost:"+cfg.Port+"/api/v1/health")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Server failed", "error", err)
		}
	}()

	// Step 8: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("🛑 Shutting down gracefully", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("⚠️  Server forced to shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("⚠️  Tracing shutdown failed", "error", err)
	}

	log.Info("👋 Server stopped. Goodbye!")
}
