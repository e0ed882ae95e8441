package api

import (
	"net/http"
	"time"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// StartedWorkoutHandler serves workout sessions.
type StartedWorkoutHandler struct {
	*ResourceHandler[domain.StartedWorkout, service.StartedWorkoutDraft, service.StartedWorkoutPatch]
	sessionService service.StartedWorkoutService
}

// NewStartedWorkoutHandler creates a new StartedWorkoutHandler. Listing is
// scoped to the caller's own sessions.
func NewStartedWorkoutHandler(sessionService service.StartedWorkoutService, logger *zap.Logger) *StartedWorkoutHandler {
	return &StartedWorkoutHandler{
		ResourceHandler: &ResourceHandler[domain.StartedWorkout, service.StartedWorkoutDraft, service.StartedWorkoutPatch]{
			service:     sessionService,
			single:      "startedWorkout",
			plural:      "startedWorkouts",
			present:     func(s *domain.StartedWorkout) interface{} { return MapStartedWorkoutToResponse(s) },
			ownerScoped: true,
			logger:      logger,
		},
		sessionService: sessionService,
	}
}

// StartedWorkoutResponse is the DTO for a workout session.
type StartedWorkoutResponse struct {
	ID                  string    `json:"id"`
	Owner               string    `json:"owner"`
	Workout             string    `json:"workout,omitempty"`
	FinishedExercises   []string  `json:"finishedExercises"`
	UnfinishedExercises []string  `json:"unfinishedExercises"`
	ApproximateDuration float64   `json:"approximateDuration"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// MapStartedWorkoutToResponse converts a domain.StartedWorkout to its DTO.
func MapStartedWorkoutToResponse(s *domain.StartedWorkout) StartedWorkoutResponse {
	if s == nil {
		return StartedWorkoutResponse{}
	}
	resp := StartedWorkoutResponse{
		ID:                  s.ID.Hex(),
		Owner:               s.Owner.Hex(),
		FinishedExercises:   hexIDs(s.FinishedExercises),
		UnfinishedExercises: hexIDs(s.UnfinishedExercises),
		ApproximateDuration: s.ApproximateDuration,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
	if s.Workout != primitive.NilObjectID {
		resp.Workout = s.Workout.Hex()
	}
	return resp
}

// FinishExerciseRequest names the exercise that was completed.
type FinishExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

// FinishExercise godoc
// @Summary Mark an exercise of a started workout as finished
// @Tags StartedWorkouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Started workout ID"
// @Param request body FinishExerciseRequest true "Finished exercise"
// @Success 200 {object} StartedWorkoutResponse
// @Failure 400 {object} gin.H "Exercise is not unfinished"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 "Not found"
// @Router /workouts-started/{id}/finish-exercise [post]
func (h *StartedWorkoutHandler) FinishExercise(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req FinishExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
		return
	}

	session, err := h.sessionService.FinishExercise(c.Request.Context(), principal, id, exerciseID)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"startedWorkout": MapStartedWorkoutToResponse(session)})
}
