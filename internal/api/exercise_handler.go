package api

import (
	"net/http"
	"time"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExerciseHandler serves exercises and their demonstration videos.
type ExerciseHandler struct {
	*ResourceHandler[domain.Exercise, service.ExerciseDraft, service.ExercisePatch]
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler. composer enables
// POST /exercises with {"exercises": [...]}.
func NewExerciseHandler(exerciseService service.ExerciseService, composer WorkoutComposer, logger *zap.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		ResourceHandler: &ResourceHandler[domain.Exercise, service.ExerciseDraft, service.ExercisePatch]{
			service:  exerciseService,
			single:   "exercise",
			plural:   "exercises",
			present:  func(e *domain.Exercise) interface{} { return MapExerciseToResponse(e) },
			composer: composer,
			logger:   logger,
		},
		exerciseService: exerciseService,
	}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	Owner            string    `json:"owner"`
	Name             string    `json:"name"`
	Muscles          []int     `json:"muscles"`
	MusclesSecondary []int     `json:"musclesSecondary,omitempty"`
	Category         []int     `json:"category,omitempty"`
	Equipment        []int     `json:"equipment,omitempty"`
	Description      string    `json:"description,omitempty"`
	Sets             float64   `json:"sets"`
	Repetitions      float64   `json:"repetitions"`
	Weight           float64   `json:"weight"`
	RestTime         float64   `json:"restTime"`
	CatalogID        int       `json:"catalogId,omitempty"`
	HasVideo         bool      `json:"hasVideo"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:               ex.ID.Hex(),
		Owner:            ex.Owner.Hex(),
		Name:             ex.Name,
		Muscles:          ex.Muscles,
		MusclesSecondary: ex.MusclesSecondary,
		Category:         ex.Category,
		Equipment:        ex.Equipment,
		Description:      ex.Description,
		Sets:             ex.Sets,
		Repetitions:      ex.Repetitions,
		Weight:           ex.Weight,
		RestTime:         ex.RestTime,
		CatalogID:        ex.CatalogID,
		HasVideo:         ex.VideoKey != "",
		CreatedAt:        ex.CreatedAt,
		UpdatedAt:        ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// VideoUploadRequest names the MIME type the client will upload with.
type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// RequestVideoUploadURL godoc
// @Summary Get a presigned URL to upload an exercise video
// @Description The client must PUT the file with the same Content-Type.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param request body VideoUploadRequest true "Video content type"
// @Success 200 {object} service.VideoUpload
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 "Exercise not found"
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /exercises/{id}/video-upload-url [post]
func (h *ExerciseHandler) RequestVideoUploadURL(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	upload, err := h.exerciseService.RequestVideoUpload(c.Request.Context(), principal, id, req.ContentType)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// GetVideoURL godoc
// @Summary Get a presigned URL to watch an exercise video
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} gin.H "videoUrl"
// @Failure 404 "Exercise or video not found"
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /exercises/{id}/video-url [get]
func (h *ExerciseHandler) GetVideoURL(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	url, err := h.exerciseService.GetVideoURL(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videoUrl": url})
}
