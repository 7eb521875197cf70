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

// ForumHandler handles course discussion threads.
type ForumHandler struct {
	forumService *service.ForumService
}

// NewForumHandler creates a new ForumHandler.
func NewForumHandler(forumService *service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

// ListPosts godoc
// GET /api/v1/forum/posts?course_id=
func (h *ForumHandler) ListPosts(c *gin.Context) {
	posts, err := h.forumService.ListPosts(c.Request.Context(), queryInt(c, "course_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"posts": posts})
}

// CreatePost godoc
// POST /api/v1/forum/posts
func (h *ForumHandler) CreatePost(c *gin.Context) {
	var req model.CreatePostRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	post, err := h.forumService.CreatePost(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"post": post})
}

// GetThread godoc
// GET /api/v1/forum/posts/:id
func (h *ForumHandler) GetThread(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	thread, err := h.forumService.GetThread(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, thread)
}

// Reply godoc
// POST /api/v1/forum/posts/:id/replies
func (h *ForumHandler) Reply(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.CreateReplyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	reply, err := h.forumService.Reply(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"reply": reply})
}
