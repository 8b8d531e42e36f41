package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tink/internal/client"
	"tink/internal/config"
	"tink/internal/handler"
	"tink/internal/logger"
	"tink/internal/repository"
	"tink/internal/scheduler"
	"tink/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// maxRecommendationLimit caps the limit query parameter
const maxRecommendationLimit = 50

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger)

	zapLogger.Info("Starting room assignment service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer repo.Close()
	zapLogger.Info("Connected to PostgreSQL database")

	var source service.DataSource = repo
	var cache *repository.SnapshotCache
	if cfg.Redis.Enabled {
		redisClient := repository.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		defer redisClient.Close()

		cache = repository.NewSnapshotCache(repo, redisClient, cfg.Redis.SnapshotTTL, log)
		if err := cache.Ping(context.Background()); err != nil {
			zapLogger.Warn("Redis unavailable, snapshots will be read from PostgreSQL", zap.Error(err))
		}
		source = cache
		zapLogger.Info("Snapshot cache enabled",
			zap.String("address", cfg.Redis.Address),
			zap.Duration("ttl", cfg.Redis.SnapshotTTL),
		)
	}

	// Initialize services
	applicationsAPI := client.NewApplicationsClient(
		cfg.ApplicationsAPI.BaseURL,
		cfg.ApplicationsAPI.Token,
		cfg.ApplicationsAPI.Timeout,
	)

	scorer := service.NewScorer(service.Weights{
		Budget:     cfg.Scoring.WeightBudget,
		Capacity:   cfg.Scoring.WeightCapacity,
		Preference: cfg.Scoring.WeightPreference,
	})
	resolver := service.NewResolver(scorer, service.Thresholds{
		High:   cfg.Scoring.HighPriorityThreshold,
		Medium: cfg.Scoring.MediumPriorityThreshold,
	})
	sessions := service.NewSessionManager(resolver, applicationsAPI, cfg.Session.TTL, log)
	conflictService := service.NewConflictService(source, sessions, log)
	assignmentService := service.NewAssignmentService(
		source,
		service.NewRecommender(scorer),
		applicationsAPI,
		cfg.Scoring.MinRecommendationScore,
		cfg.Scoring.RecommendationLimit,
		log,
	)

	sched, err := scheduler.New(sessions, cfg.Session.SweepSchedule, log)
	if err != nil {
		zapLogger.Fatal("Failed to create scheduler", zap.Error(err))
	}
	sched.Start()

	zapLogger.Info("Services initialized",
		zap.String("applications_api", cfg.ApplicationsAPI.BaseURL),
		zap.Float64("high_priority_threshold", cfg.Scoring.HighPriorityThreshold),
		zap.Float64("medium_priority_threshold", cfg.Scoring.MediumPriorityThreshold),
		zap.Duration("session_ttl", cfg.Session.TTL),
	)

	// Initialize handlers
	conflictHandler := handler.NewConflictHandler(conflictService, sessions)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, scorer, maxRecommendationLimit)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.AllowedOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		checks := gin.H{"postgres": "ok"}
		if err := repo.Ping(ctx); err != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
			checks["postgres"] = err.Error()
		}
		if cache != nil {
			checks["redis"] = "ok"
			if err := cache.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
			}
		}

		c.JSON(code, gin.H{
			"status":          status,
			"service":         "room-assignment",
			"version":         Version,
			"checks":          checks,
			"active_sessions": sessions.Count(),
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Conflict detection and resolution sessions
		apiV1.GET("/conflicts", conflictHandler.ListConflicts)
		apiV1.GET("/properties/:id/conflicts", conflictHandler.GetPropertyConflicts)
		apiV1.POST("/properties/:id/conflict-sessions", conflictHandler.CreateSession)
		apiV1.GET("/conflict-sessions/:sid", conflictHandler.GetSession)
		apiV1.POST("/conflict-sessions/:sid/recommendations", conflictHandler.GenerateRecommendations)
		apiV1.PUT("/conflict-sessions/:sid/mode", conflictHandler.SetMode)
		apiV1.PUT("/conflict-sessions/:sid/resolutions/:appId", conflictHandler.SetResolution)
		apiV1.POST("/conflict-sessions/:sid/submit", conflictHandler.Submit)
		apiV1.DELETE("/conflict-sessions/:sid", conflictHandler.DiscardSession)

		// Single application room assignment
		apiV1.GET("/applications/:id/room-recommendations", assignmentHandler.Recommendations)
		apiV1.POST("/applications/:id/assign-room", assignmentHandler.AssignRoom)
		apiV1.POST("/compatibility", assignmentHandler.Compatibility)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	<-sched.Stop().Done()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shut down", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}
