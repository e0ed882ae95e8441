package api

import (
	"context"
	"net/http"
	"time"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// WorkoutTemplateHandler serves workout templates.
type WorkoutTemplateHandler struct {
	*ResourceHandler[service.WorkoutTemplateDetails, service.WorkoutTemplateDraft, service.WorkoutTemplatePatch]
	templateService service.WorkoutTemplateService
}

// NewWorkoutTemplateHandler creates a new WorkoutTemplateHandler.
func NewWorkoutTemplateHandler(templateService service.WorkoutTemplateService, composer WorkoutComposer, logger *zap.Logger) *WorkoutTemplateHandler {
	return &WorkoutTemplateHandler{
		ResourceHandler: &ResourceHandler[service.WorkoutTemplateDetails, service.WorkoutTemplateDraft, service.WorkoutTemplatePatch]{
			service: templateService,
			single:  "workoutTemplate",
			plural:  "workoutTemplates",
			present: func(t *service.WorkoutTemplateDetails) interface{} {
				return MapWorkoutTemplateDetailsToResponse(t)
			},
			composer: composer,
			logger:   logger,
		},
		templateService: templateService,
	}
}

// --- DTOs ---

// WorkoutTemplateResponse is the DTO for a workout template. Exercises holds
// full exercises when the template was expanded and identifiers otherwise.
type WorkoutTemplateResponse struct {
	ID                  string      `json:"id"`
	Owner               string      `json:"owner"`
	Name                string      `json:"name"`
	Exercises           interface{} `json:"exercises"`
	ApproximateDuration float64     `json:"approximateDuration"`
	Likes               []string    `json:"likes"`
	UsersUsingIt        []string    `json:"usersUsingIt"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// MapWorkoutTemplateToResponse converts an unexpanded template.
func MapWorkoutTemplateToResponse(t *domain.WorkoutTemplate) WorkoutTemplateResponse {
	if t == nil {
		return WorkoutTemplateResponse{}
	}
	return WorkoutTemplateResponse{
		ID:                  t.ID.Hex(),
		Owner:               t.Owner.Hex(),
		Name:                t.Name,
		Exercises:           hexIDs(t.Exercises),
		ApproximateDuration: t.ApproximateDuration,
		Likes:               hexIDs(t.Likes),
		UsersUsingIt:        hexIDs(t.UsersUsingIt),
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

// MapWorkoutTemplateDetailsToResponse converts a template with its exercises resolved.
func MapWorkoutTemplateDetailsToResponse(t *service.WorkoutTemplateDetails) WorkoutTemplateResponse {
	if t == nil {
		return WorkoutTemplateResponse{}
	}
	resp := MapWorkoutTemplateToResponse(&t.WorkoutTemplate)
	resp.Exercises = MapExercisesToResponse(t.ExerciseDetails)
	return resp
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

// AddExercisesRequest carries the exercise to append. Only the first entry is used.
type AddExercisesRequest struct {
	Exercises []struct {
		ID string `json:"id" binding:"required"`
	} `json:"exercises" binding:"required,min=1,dive"`
}

// --- Handler Methods ---

// AddExercises godoc
// @Summary Append an exercise to a workout template
// @Description Pushes the first listed exercise onto the template without a
// @Description duplicate check. A template that does not exist is created,
// @Description owned by the caller.
// @Tags WorkoutTemplates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout template ID"
// @Param request body AddExercisesRequest true "Exercise to append"
// @Success 200 {object} WorkoutTemplateResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not the owner"
// @Router /workout-templates/{id}/add-exercises [patch]
func (h *WorkoutTemplateHandler) AddExercises(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req AddExercisesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.Exercises[0].ID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise id format")
		return
	}

	template, err := h.templateService.AppendExercise(c.Request.Context(), principal, id, exerciseID)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workoutTemplate": MapWorkoutTemplateDetailsToResponse(template)})
}

// Like godoc
// @Summary Like a workout template
// @Tags WorkoutTemplates
// @Security BearerAuth
// @Param id path string true "Workout template ID"
// @Success 200 {object} WorkoutTemplateResponse
// @Failure 404 "Not found"
// @Router /workout-templates/{id}/likes [put]
func (h *WorkoutTemplateHandler) Like(c *gin.Context) {
	h.changeLike(c, h.templateService.Like)
}

// Unlike godoc
// @Summary Remove a like from a workout template
// @Tags WorkoutTemplates
// @Security BearerAuth
// @Param id path string true "Workout template ID"
// @Success 200 {object} WorkoutTemplateResponse
// @Failure 404 "Not found"
// @Router /workout-templates/{id}/likes [delete]
func (h *WorkoutTemplateHandler) Unlike(c *gin.Context) {
	h.changeLike(c, h.templateService.Unlike)
}

type likeFunc func(ctx context.Context, principal, id primitive.ObjectID) (*service.WorkoutTemplateDetails, error)

func (h *WorkoutTemplateHandler) changeLike(c *gin.Context, change likeFunc) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	template, err := change(c.Request.Context(), principal, id)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workoutTemplate": MapWorkoutTemplateDetailsToResponse(template)})
}
