package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

// Thread is a post with its replies, oldest reply first.
type Thread struct {
	Post    model.ForumPost    `json:"post"`
	Replies []model.ForumReply `json:"replies"`
}

// ForumService runs course discussion threads.
type ForumService struct {
	store repository.Store
	log   zerolog.Logger
}

// NewForumService creates a new ForumService.
func NewForumService(store repository.Store, log zerolog.Logger) *ForumService {
	return &ForumService{
		store: store,
		log:   log.With().Str("component", "forum_service").Logger(),
	}
}

var forumRoles = []model.Role{model.RoleStudent, model.RoleLecturer}

// CreatePost opens a thread on a course.
func (s *ForumService) CreatePost(ctx context.Context, actor Actor, req model.CreatePostRequest) (*model.ForumPost, error) {
	const op = "forum.create_post"
	if err := authorize(op, actor, forumRoles...); err != nil {
		return nil, err
	}
	p := &model.ForumPost{
		CourseID: req.CourseID,
		AuthorID: actor.ID,
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Tags:     strings.TrimSpace(req.Tags),
	}
	if p.Title == "" || p.Content == "" {
		return nil, validationErr(op, "Judul dan isi wajib diisi")
	}
	if _, err := s.store.Courses().GetByID(ctx, req.CourseID); err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	if err := s.store.Forum().CreatePost(ctx, p); err != nil {
		s.log.Error().Err(err).Msg("failed to create post")
		return nil, storeErr(op, "Diskusi", err)
	}
	return p, nil
}

// ListPosts lists threads newest first. courseID 0 lists every course.
func (s *ForumService) ListPosts(ctx context.Context, courseID int) ([]model.ForumPost, error) {
	posts, err := s.store.Forum().ListPosts(ctx, courseID)
	if err != nil {
		return nil, storeErr("forum.list_posts", "Diskusi", err)
	}
	if posts == nil {
		posts = []model.ForumPost{}
	}
	return posts, nil
}

// GetThread returns a post and its replies.
func (s *ForumService) GetThread(ctx context.Context, postID int) (*Thread, error) {
	const op = "forum.get_thread"
	post, err := s.store.Forum().GetPost(ctx, postID)
	if err != nil {
		return nil, storeErr(op, "Diskusi", err)
	}
	replies, err := s.store.Forum().ListReplies(ctx, postID)
	if err != nil {
		return nil, storeErr(op, "Balasan", err)
	}
	if replies == nil {
		replies = []model.ForumReply{}
	}
	return &Thread{Post: *post, Replies: replies}, nil
}

// Reply answers a thread and bumps its reply counter atomically.
func (s *ForumService) Reply(ctx context.Context, actor Actor, postID int, req model.CreateReplyRequest) (*model.ForumReply, error) {
	const op = "forum.reply"
	if err := authorize(op, actor, forumRoles...); err != nil {
		return nil, err
	}
	r := &model.ForumReply{PostID: postID, AuthorID: actor.ID, Content: strings.TrimSpace(req.Content)}
	if r.Content == "" {
		return nil, fieldErr(op, "content", "Isi balasan wajib diisi")
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Forum().GetPost(ctx, postID); err != nil {
			return storeErr(op, "Diskusi", err)
		}
		if err := tx.Forum().CreateReply(ctx, r); err != nil {
			return storeErr(op, "Balasan", err)
		}
		return storeErr(op, "Diskusi", tx.Forum().IncrementReplies(ctx, postID))
	})
	if err != nil {
		if IsInternal(err) {
			s.log.Error().Err(err).Int("post_id", postID).Msg("reply rolled back")
		}
		return nil, err
	}
	return r, nil
}
