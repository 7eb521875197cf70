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

// EnrollmentHandler handles KRS submission and review.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// SubmitKRS godoc
// POST /api/v1/krs
// Replaces the student's KRS for the period with the selected courses.
func (h *EnrollmentHandler) SubmitKRS(c *gin.Context) {
	var req model.SubmitEnrollmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rows, err := h.enrollmentService.Submit(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"krs": rows})
}

// ListKRS godoc
// GET /api/v1/krs?student_id=&course_id=&semester=&academic_year=&status=
func (h *EnrollmentHandler) ListKRS(c *gin.Context) {
	rows, err := h.enrollmentService.List(c.Request.Context(), middleware.GetActor(c), service.EnrollmentQuery{
		StudentID:    queryInt(c, "student_id"),
		CourseID:     queryInt(c, "course_id"),
		Semester:     queryInt(c, "semester"),
		AcademicYear: c.Query("academic_year"),
		Status:       model.Status(c.Query("status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"krs": rows})
}

// PendingKRS godoc
// GET /api/v1/krs/pending
func (h *EnrollmentHandler) PendingKRS(c *gin.Context) {
	rows, err := h.enrollmentService.Pending(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"krs": rows})
}

// ReviewKRS godoc
// PUT /api/v1/krs/:id/review
func (h *EnrollmentHandler) ReviewKRS(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	row, err := h.enrollmentService.Review(c.Request.Context(), middleware.GetActor(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"krs": row})
}
