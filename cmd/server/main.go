package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fittrack/workout-api/internal/api"
	"fittrack/workout-api/internal/config"
	"fittrack/workout-api/internal/logging"
	"fittrack/workout-api/internal/metrics"
	"fittrack/workout-api/internal/repository"
	"fittrack/workout-api/internal/repository/memory"
	"fittrack/workout-api/internal/repository/mongo"
	"fittrack/workout-api/internal/service"
	"fittrack/workout-api/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// repositories groups the stores for whichever driver is configured.
type repositories struct {
	users     repository.UserRepository
	exercises repository.ExerciseRepository
	templates repository.WorkoutTemplateRepository
	sessions  repository.StartedWorkoutRepository
	close     func()
}

// @title Workout API
// @version 1.0
// @description API for exercises, workout templates and started workouts.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	logger.Info("starting workout API",
		zap.String("address", cfg.Server.Address),
		zap.String("databaseDriver", cfg.Database.Driver))

	repos, err := openRepositories(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, logger)
		if err != nil {
			return fmt.Errorf("initialize S3 storage: %w", err)
		}
	} else {
		logger.Info("s3.bucket_name not set, exercise video endpoints are disabled")
	}

	// --- Initialize Services ---
	appMetrics := metrics.New()
	namer := service.NewSequentialNamer(repos.templates)
	authService := service.NewAuthService(repos.users, cfg.JWT.Secret, cfg.JWT.Expiration)
	exerciseService := service.NewExerciseService(repos.exercises, fileStorage, logger)
	templateService := service.NewWorkoutTemplateService(repos.templates, repos.exercises, namer,
		service.WorkoutTemplateOptions{UpsertOnAppend: cfg.Workouts.UpsertOnAppend})
	sessionService := service.NewStartedWorkoutService(repos.sessions, repos.templates)
	builder := service.NewWorkoutBuilder(repos.exercises, repos.templates, namer, appMetrics, logger)

	// --- Initialize Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, api.Dependencies{
		AuthService:            authService,
		ExerciseService:        exerciseService,
		WorkoutTemplateService: templateService,
		StartedWorkoutService:  sessionService,
		WorkoutBuilder:         builder,
		Metrics:                appMetrics,
		Logger:                 logger,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exiting")
	return nil
}

func openRepositories(cfg config.DatabaseConfig, logger *zap.Logger) (*repositories, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("using the in-memory store, data is lost on restart")
		return &repositories{
			users:     memory.NewUserRepository(),
			exercises: memory.NewExerciseRepository(),
			templates: memory.NewWorkoutTemplateRepository(),
			sessions:  memory.NewStartedWorkoutRepository(),
			close:     func() {},
		}, nil
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	appDB := dbClient.Database(cfg.Name)
	logger.Info("database connection established", zap.String("database", cfg.Name))

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB, logger)
	}()

	return &repositories{
		users:     mongo.NewMongoUserRepository(appDB),
		exercises: mongo.NewMongoExerciseRepository(appDB),
		templates: mongo.NewMongoWorkoutTemplateRepository(appDB),
		sessions:  mongo.NewMongoStartedWorkoutRepository(appDB),
		close: func() {
			logger.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				logger.Error("failed to disconnect MongoDB", zap.Error(err))
			}
		},
	}, nil
}
