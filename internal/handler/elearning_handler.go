package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/siakad-backend/internal/middleware"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/response"
	"github.com/stemsi/siakad-backend/internal/service"
	"github.com/stemsi/siakad-backend/internal/validator"
)

// ELearningHandler handles course materials, videos, and watch progress.
type ELearningHandler struct {
	elearningService *service.ELearningService
}

// NewELearningHandler creates a new ELearningHandler.
func NewELearningHandler(elearningService *service.ELearningService) *ELearningHandler {
	return &ELearningHandler{elearningService: elearningService}
}

// UploadMaterial godoc
// POST /api/v1/materials (multipart: course_id, title, description, week, file)
func (h *ELearningHandler) UploadMaterial(c *gin.Context) {
	var form model.LearningForm
	if fields := validator.BindForm(c, &form); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	file, closeFile, err := formFile(c, "file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	defer closeFile()
	if file == nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	m, err := h.elearningService.UploadMaterial(c.Request.Context(), middleware.GetActor(c), form, file)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"material": m})
}

// UploadVideo godoc
// POST /api/v1/videos (multipart: course_id, title, description, week, duration_minutes, file)
func (h *ELearningHandler) UploadVideo(c *gin.Context) {
	var form model.LearningForm
	if fields := validator.BindForm(c, &form); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	file, closeFile, err := formFile(c, "file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	defer closeFile()
	if file == nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	v, err := h.elearningService.UploadVideo(c.Request.Context(), middleware.GetActor(c), form, file)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"video": v})
}

// ListMaterials godoc
// GET /api/v1/courses/:id/materials
// Materials grouped by week.
func (h *ELearningHandler) ListMaterials(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	weeks, err := h.elearningService.Materials(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"weeks": weeks})
}

// ListVideos godoc
// GET /api/v1/courses/:id/videos
func (h *ELearningHandler) ListVideos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	weeks, err := h.elearningService.Videos(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"weeks": weeks})
}

// DeleteMaterial godoc
// DELETE /api/v1/materials/:id
func (h *ELearningHandler) DeleteMaterial(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.elearningService.DeleteMaterial(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "material deleted successfully"})
}

// DeleteVideo godoc
// DELETE /api/v1/videos/:id
func (h *ELearningHandler) DeleteVideo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.elearningService.DeleteVideo(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "video deleted successfully"})
}

// TrackWatch godoc
// POST /api/v1/videos/:id/watch
func (h *ELearningHandler) TrackWatch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.WatchRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.elearningService.TrackWatch(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// MyProgress godoc
// GET /api/v1/me/progress
func (h *ELearningHandler) MyProgress(c *gin.Context) {
	progress, err := h.elearningService.LearningProgress(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"courses": progress})
}
