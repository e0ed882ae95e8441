package api

import (
	"net/http"

	"fittrack/workout-api/internal/metrics"
	"fittrack/workout-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the services the HTTP layer is built from.
type Dependencies struct {
	AuthService            service.AuthService
	ExerciseService        service.ExerciseService
	WorkoutTemplateService service.WorkoutTemplateService
	StartedWorkoutService  service.StartedWorkoutService
	WorkoutBuilder         WorkoutComposer
	Metrics                *metrics.Metrics // optional
	Logger                 *zap.Logger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.AuthService, deps.Logger)
	exerciseHandler := NewExerciseHandler(deps.ExerciseService, deps.WorkoutBuilder, deps.Logger)
	templateHandler := NewWorkoutTemplateHandler(deps.WorkoutTemplateService, deps.WorkoutBuilder, deps.Logger)
	sessionHandler := NewStartedWorkoutHandler(deps.StartedWorkoutService, deps.Logger)

	authMiddleware := AuthMiddleware(deps.AuthService)
	optionalAuth := OptionalAuthMiddleware(deps.AuthService)

	router.Use(RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.Use(StripBlankFields())
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Public listings
		public := apiV1.Group("")
		public.Use(optionalAuth)
		{
			public.GET("/exercises", exerciseHandler.List)
			public.GET("/workout-templates", templateHandler.List)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.Create)
			exerciseGroup.GET("/:id", exerciseHandler.Get)
			exerciseGroup.PATCH("/:id", exerciseHandler.Update)
			exerciseGroup.DELETE("/:id", exerciseHandler.Delete)
			exerciseGroup.POST("/:id/video-upload-url", exerciseHandler.RequestVideoUploadURL)
			exerciseGroup.GET("/:id/video-url", exerciseHandler.GetVideoURL)
		}

		// --- Workout Template Routes ---
		protected.GET("/user-workout-templates", templateHandler.ListOwned)
		templateGroup := protected.Group("/workout-templates")
		{
			templateGroup.POST("", templateHandler.Create)
			templateGroup.GET("/:id", templateHandler.Get)
			templateGroup.PATCH("/:id", templateHandler.Update)
			templateGroup.DELETE("/:id", templateHandler.Delete)
			templateGroup.PATCH("/:id/add-exercises", templateHandler.AddExercises)
			templateGroup.PUT("/:id/likes", templateHandler.Like)
			templateGroup.DELETE("/:id/likes", templateHandler.Unlike)
		}

		// --- Started Workout Routes ---
		sessionGroup := protected.Group("/workouts-started")
		{
			sessionGroup.GET("", sessionHandler.List)
			sessionGroup.POST("", sessionHandler.Create)
			sessionGroup.GET("/:id", sessionHandler.Get)
			sessionGroup.PATCH("/:id", sessionHandler.Update)
			sessionGroup.DELETE("/:id", sessionHandler.Delete)
			sessionGroup.POST("/:id/finish-exercise", sessionHandler.FinishExercise)
		}
	}
}
