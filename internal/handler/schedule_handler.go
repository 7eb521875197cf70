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

// ScheduleHandler handles weekly lecture slots.
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// ListSchedules godoc
// GET /api/v1/schedules?semester=&academic_year=&day=&course_id=
// Defaults to the current period.
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	rows, err := h.scheduleService.List(c.Request.Context(), service.ScheduleQuery{
		Semester:     queryInt(c, "semester"),
		AcademicYear: c.Query("academic_year"),
		Day:          c.Query("day"),
		CourseID:     queryInt(c, "course_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedules": rows})
}

// TodaySchedules godoc
// GET /api/v1/schedules/today
func (h *ScheduleHandler) TodaySchedules(c *gin.Context) {
	rows, err := h.scheduleService.Today(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedules": rows})
}

// CreateSchedule godoc
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req model.ScheduleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	sc, err := h.scheduleService.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"schedule": sc})
}

// DeleteSchedule godoc
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.scheduleService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "schedule deleted successfully"})
}
