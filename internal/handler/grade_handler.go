package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/siakad-backend/internal/middleware"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/report"
	"github.com/stemsi/siakad-backend/internal/response"
	"github.com/stemsi/siakad-backend/internal/service"
	"github.com/stemsi/siakad-backend/internal/storage"
	"github.com/stemsi/siakad-backend/internal/validator"
)

// GradeHandler handles grades, GPA summaries, and transcripts.
type GradeHandler struct {
	gradeService *service.GradeService
	renderers    map[string]report.Renderer
}

// NewGradeHandler creates a new GradeHandler. Renderers are keyed by their
// file extension.
func NewGradeHandler(gradeService *service.GradeService, renderers ...report.Renderer) *GradeHandler {
	h := &GradeHandler{gradeService: gradeService, renderers: make(map[string]report.Renderer, len(renderers))}
	for _, r := range renderers {
		h.renderers[r.Extension()] = r
	}
	return h
}

// RecordGrade godoc
// POST /api/v1/grades
func (h *GradeHandler) RecordGrade(c *gin.Context) {
	var req model.GradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, err := h.gradeService.Record(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"grade": grade})
}

// ListCourseGrades godoc
// GET /api/v1/courses/:id/grades
func (h *GradeHandler) ListCourseGrades(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	grades, err := h.gradeService.ListForCourse(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grades": grades})
}

// ListStudentGrades godoc
// GET /api/v1/students/:id/grades
func (h *GradeHandler) ListStudentGrades(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	grades, err := h.gradeService.ListForStudent(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grades": grades})
}

// StudentSummary godoc
// GET /api/v1/students/:id/summary
// Returns IP per semester, IPK, and total SKS.
func (h *GradeHandler) StudentSummary(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.summary(c, id)
}

// MySummary godoc
// GET /api/v1/me/summary
func (h *GradeHandler) MySummary(c *gin.Context) {
	h.summary(c, middleware.GetActor(c).ID)
}

func (h *GradeHandler) summary(c *gin.Context, studentID int) {
	summary, err := h.gradeService.Summary(c.Request.Context(), middleware.GetActor(c), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// TranscriptPDF godoc
// GET /api/v1/students/:id/transcript.pdf
func (h *GradeHandler) TranscriptPDF(c *gin.Context) { h.transcript(c, "pdf") }

// TranscriptXLSX godoc
// GET /api/v1/students/:id/transcript.xlsx
func (h *GradeHandler) TranscriptXLSX(c *gin.Context) { h.transcript(c, "xlsx") }

// transcript renders into memory first so a failed render still gets a
// JSON error envelope.
func (h *GradeHandler) transcript(c *gin.Context, ext string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	renderer, ok := h.renderers[ext]
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	t, err := h.gradeService.Transcript(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, t); err != nil {
		respondError(c, fmt.Errorf("render %s transcript: %w", ext, err))
		return
	}

	filename := fmt.Sprintf("transkrip_%s.%s", storage.SanitizeName(t.Student.NIM), ext)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, renderer.ContentType(), buf.Bytes())
}
