package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/repository"
	"fittrack/workout-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// WorkoutComposer builds a workout template from new exercise drafts.
type WorkoutComposer interface {
	CreateWorkoutFromExercises(ctx context.Context, owner primitive.ObjectID, drafts []service.ExerciseDraft) (*domain.WorkoutTemplate, error)
}

// compositeKey is the request body key that switches a create into a
// composite workout creation.
const compositeKey = "exercises"

// ResourceHandler serves list/get/create/update/delete for one owned resource.
// Request and response bodies are wrapped in an envelope keyed by the
// resource name, e.g. {"exercise": {...}} or {"exercises": [...]}.
type ResourceHandler[V, D, P any] struct {
	service     service.ResourceService[V, D, P]
	single      string
	plural      string
	present     func(*V) interface{}
	ownerScoped bool            // List only returns the caller's records
	composer    WorkoutComposer // nil disables composite creation
	logger      *zap.Logger
}

// List godoc
// @Summary List resources
// @Produce json
// @Success 200 {object} gin.H "Envelope with the plural resource key"
func (h *ResourceHandler[V, D, P]) List(c *gin.Context) {
	filter := repository.Filter{}
	if h.ownerScoped {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		filter = repository.OwnedBy(principal)
	}
	h.list(c, filter)
}

// ListOwned returns only the caller's records regardless of list scope.
func (h *ResourceHandler[V, D, P]) ListOwned(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	h.list(c, repository.OwnedBy(principal))
}

func (h *ResourceHandler[V, D, P]) list(c *gin.Context, filter repository.Filter) {
	records, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	responses := make([]interface{}, len(records))
	for i := range records {
		responses[i] = h.present(&records[i])
	}
	c.JSON(http.StatusOK, gin.H{h.plural: responses})
}

// Get godoc
// @Summary Get a resource by id
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "Envelope with the singular resource key"
// @Failure 404 "Not found"
func (h *ResourceHandler[V, D, P]) Get(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	record, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{h.single: h.present(record)})
}

// Create godoc
// @Summary Create a resource, or a workout from new exercises
// @Description The owner is always the authenticated user. A body of
// @Description {"exercises": [...]} creates the exercises and a workout
// @Description template listing them where composite creation is enabled.
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} gin.H "Created resource"
// @Failure 400 {object} gin.H "Validation error"
func (h *ResourceHandler[V, D, P]) Create(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	body, ok := bindEnvelope(c)
	if !ok {
		return
	}

	if raw, found := body[compositeKey]; found && h.composer != nil {
		h.compose(c, principal, raw)
		return
	}

	raw, found := body[h.single]
	if !found {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: request body must contain %q", h.single))
		return
	}
	var draft D
	if err := json.Unmarshal(raw, &draft); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	record, err := h.service.Create(c.Request.Context(), principal, draft)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{h.single: h.present(record)})
}

func (h *ResourceHandler[V, D, P]) compose(c *gin.Context, principal primitive.ObjectID, raw json.RawMessage) {
	var drafts []service.ExerciseDraft
	if err := json.Unmarshal(raw, &drafts); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: exercises must be a list of exercises")
		return
	}
	template, err := h.composer.CreateWorkoutFromExercises(c.Request.Context(), principal, drafts)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"workoutTemplate": MapWorkoutTemplateToResponse(template)})
}

// Update godoc
// @Summary Partially update a resource
// @Description Only the fields present are written. Blank strings are
// @Description ignored and the owner cannot be changed.
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "Updated resource"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 "Not found"
func (h *ResourceHandler[V, D, P]) Update(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	body, ok := bindEnvelope(c)
	if !ok {
		return
	}
	raw, found := body[h.single]
	if !found {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: request body must contain %q", h.single))
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+h.single+" must be an object")
		return
	}
	delete(fields, "owner")
	cleaned, err := json.Marshal(fields)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	var patch P
	if err := json.Unmarshal(cleaned, &patch); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	record, err := h.service.Update(c.Request.Context(), principal, id, patch)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{h.single: h.present(record)})
}

// Delete godoc
// @Summary Delete a resource
// @Security BearerAuth
// @Success 204 "Deleted"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 "Not found"
func (h *ResourceHandler[V, D, P]) Delete(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), principal, id); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// requirePrincipal aborts with 401 when no authenticated user is present.
func requirePrincipal(c *gin.Context) (primitive.ObjectID, bool) {
	principal, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return primitive.NilObjectID, false
	}
	return principal, true
}

func pathObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", param))
		return primitive.NilObjectID, false
	}
	return id, true
}

func bindEnvelope(c *gin.Context) (map[string]json.RawMessage, bool) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return nil, false
	}
	return body, true
}
