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

// CourseHandler handles the course catalogue.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// ListCourses godoc
// GET /api/v1/courses?search=&semester=&lecturer_id=&page=&per_page=
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, pagination, err := h.courseService.List(c.Request.Context(), service.CourseQuery{
		Search:     c.Query("search"),
		Semester:   queryInt(c, "semester"),
		LecturerID: queryInt(c, "lecturer_id"),
		Page:       queryInt(c, "page"),
		PerPage:    queryInt(c, "per_page"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, pagination)
}

// GetCourse godoc
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CreateCourse godoc
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// UpdateCourse godoc
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// DeleteCourse godoc
// DELETE /api/v1/courses/:id
// Fails while grades, KRS rows, or submissions still reference the course.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "course deleted successfully"})
}

// MyCourses godoc
// GET /api/v1/me/courses
// Lists the courses taught by the authenticated lecturer.
func (h *CourseHandler) MyCourses(c *gin.Context) {
	courses, err := h.courseService.Teaching(c.Request.Context(), middleware.GetActor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}
