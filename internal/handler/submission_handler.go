package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/siakad-backend/internal/middleware"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/response"
	"github.com/stemsi/siakad-backend/internal/service"
	"github.com/stemsi/siakad-backend/internal/storage"
	"github.com/stemsi/siakad-backend/internal/validator"
)

// SubmissionHandler handles assignments, letters, internships, and theses.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// submitFn runs one submit operation with the (optional) uploaded file.
type submitFn func(actor service.Actor, file *storage.Upload) (any, error)

// submit binds form, opens the "file" part, and answers 201 with the
// created record under key.
func (h *SubmissionHandler) submit(c *gin.Context, form any, key string, fn submitFn) {
	if fields := validator.BindForm(c, form); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	file, closeFile, err := formFile(c, "file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	defer closeFile()

	created, err := fn(middleware.GetActor(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{key: created})
}

// bindReview parses the id param and the review body.
func bindReview(c *gin.Context) (int, model.ReviewRequest, bool) {
	var req model.ReviewRequest
	id, ok := paramID(c, "id")
	if !ok {
		return 0, req, false
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return 0, req, false
	}
	return id, req, true
}

// ─── Assignments ───────────────────────────────────────────────────────

// SubmitAssignment godoc
// POST /api/v1/submissions (multipart: course_id, title, description, deadline, file)
func (h *SubmissionHandler) SubmitAssignment(c *gin.Context) {
	var form model.AssignmentForm
	h.submit(c, &form, "submission", func(actor service.Actor, file *storage.Upload) (any, error) {
		return h.submissionService.SubmitAssignment(c.Request.Context(), actor, form, file)
	})
}

// ListAssignments godoc
// GET /api/v1/submissions?student_id=&course_id=&status=
func (h *SubmissionHandler) ListAssignments(c *gin.Context) {
	rows, err := h.submissionService.ListAssignments(c.Request.Context(), middleware.GetActor(c), service.SubmissionQuery{
		StudentID: queryInt(c, "student_id"),
		CourseID:  queryInt(c, "course_id"),
		Status:    model.Status(c.Query("status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submissions": rows})
}

// ReviewAssignment godoc
// PUT /api/v1/submissions/:id/review
func (h *SubmissionHandler) ReviewAssignment(c *gin.Context) {
	id, req, ok := bindReview(c)
	if !ok {
		return
	}
	sub, err := h.submissionService.ReviewAssignment(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// ─── Letters ───────────────────────────────────────────────────────────

// SubmitLetter godoc
// POST /api/v1/letters (multipart: letter_type, title, description, file?)
func (h *SubmissionHandler) SubmitLetter(c *gin.Context) {
	var form model.LetterForm
	h.submit(c, &form, "letter", func(actor service.Actor, file *storage.Upload) (any, error) {
		return h.submissionService.SubmitLetter(c.Request.Context(), actor, form, file)
	})
}

// ListLetters godoc
// GET /api/v1/letters?status=
func (h *SubmissionHandler) ListLetters(c *gin.Context) {
	rows, err := h.submissionService.ListLetters(c.Request.Context(), middleware.GetActor(c), model.Status(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"letters": rows})
}

// ReviewLetter godoc
// PUT /api/v1/letters/:id/review
func (h *SubmissionHandler) ReviewLetter(c *gin.Context) {
	id, req, ok := bindReview(c)
	if !ok {
		return
	}
	letter, err := h.submissionService.ReviewLetter(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"letter": letter})
}

// ─── Internships ───────────────────────────────────────────────────────

// SubmitInternship godoc
// POST /api/v1/internships (multipart: company, position, start_date, end_date, reason, file?)
func (h *SubmissionHandler) SubmitInternship(c *gin.Context) {
	var form model.InternshipForm
	h.submit(c, &form, "internship", func(actor service.Actor, file *storage.Upload) (any, error) {
		return h.submissionService.SubmitInternship(c.Request.Context(), actor, form, file)
	})
}

// ListInternships godoc
// GET /api/v1/internships?status=
func (h *SubmissionHandler) ListInternships(c *gin.Context) {
	rows, err := h.submissionService.ListInternships(c.Request.Context(), middleware.GetActor(c), model.Status(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"internships": rows})
}

// ReviewInternship godoc
// PUT /api/v1/internships/:id/review
func (h *SubmissionHandler) ReviewInternship(c *gin.Context) {
	id, req, ok := bindReview(c)
	if !ok {
		return
	}
	app, err := h.submissionService.ReviewInternship(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"internship": app})
}

// ─── Theses ────────────────────────────────────────────────────────────

// SubmitThesis godoc
// POST /api/v1/theses (multipart: title, specialization, abstract, preferred_supervisor, file?)
func (h *SubmissionHandler) SubmitThesis(c *gin.Context) {
	var form model.ThesisForm
	h.submit(c, &form, "thesis", func(actor service.Actor, file *storage.Upload) (any, error) {
		return h.submissionService.SubmitThesis(c.Request.Context(), actor, form, file)
	})
}

// ListTheses godoc
// GET /api/v1/theses?status=
func (h *SubmissionHandler) ListTheses(c *gin.Context) {
	rows, err := h.submissionService.ListTheses(c.Request.Context(), middleware.GetActor(c), model.Status(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"theses": rows})
}

// ReviewThesis godoc
// PUT /api/v1/theses/:id/review
func (h *SubmissionHandler) ReviewThesis(c *gin.Context) {
	id, req, ok := bindReview(c)
	if !ok {
		return
	}
	app, err := h.submissionService.ReviewThesis(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"thesis": app})
}

// ─── Status ────────────────────────────────────────────────────────────

// MySubmissions godoc
// GET /api/v1/me/submissions
// Every submission kind of the caller, newest first.
func (h *SubmissionHandler) MySubmissions(c *gin.Context) {
	h.forStudent(c, middleware.GetActor(c).ID)
}

// StudentSubmissions godoc
// GET /api/v1/students/:id/submissions
func (h *SubmissionHandler) StudentSubmissions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.forStudent(c, id)
}

func (h *SubmissionHandler) forStudent(c *gin.Context, studentID int) {
	rows, err := h.submissionService.ListForStudent(c.Request.Context(), middleware.GetActor(c), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submissions": rows})
}
