package memory

import (
	"context"
	"time"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

// deletePosts removes matching posts together with their replies.
func deletePosts(d *data, match func(model.ForumPost) bool) {
	for id, p := range d.posts.rows {
		if match(p) {
			delete(d.posts.rows, id)
			d.replies.deleteWhere(func(rp model.ForumReply) bool { return rp.PostID == id })
		}
	}
}

type forumRepo struct{ st *state }

func (r forumRepo) GetPost(_ context.Context, id int) (p *model.ForumPost, err error) {
	r.st.read(func(d *data) { p, err = d.posts.get(id) })
	return p, err
}

func (r forumRepo) ListPosts(_ context.Context, courseID int) ([]model.ForumPost, error) {
	var rows []model.ForumPost
	r.st.read(func(d *data) {
		rows = d.posts.where(func(p model.ForumPost) bool { return courseID == 0 || p.CourseID == courseID })
	})
	newestFirst(rows, func(p model.ForumPost) (int64, int) { return p.CreatedAt.UnixNano(), p.ID })
	return rows, nil
}

func (r forumRepo) CreatePost(_ context.Context, p *model.ForumPost) error {
	return r.st.write(func(d *data) error {
		if _, ok := d.courses.rows[p.CourseID]; !ok {
			return repository.ErrReferenced
		}
		if _, ok := d.users.rows[p.AuthorID]; !ok {
			return repository.ErrReferenced
		}
		p.ID = d.posts.next()
		p.RepliesCount = 0
		p.CreatedAt = time.Now()
		d.posts.rows[p.ID] = *p
		return nil
	})
}

func (r forumRepo) ListReplies(_ context.Context, postID int) ([]model.ForumReply, error) {
	var rows []model.ForumReply
	r.st.read(func(d *data) {
		rows = d.replies.where(func(rp model.ForumReply) bool { return rp.PostID == postID })
	})
	return rows, nil
}

func (r forumRepo) CreateReply(_ context.Context, rp *model.ForumReply) error {
	return r.st.write(func(d *data) error {
		if _, ok := d.posts.rows[rp.PostID]; !ok {
			return repository.ErrReferenced
		}
		if _, ok := d.users.rows[rp.AuthorID]; !ok {
			return repository.ErrReferenced
		}
		rp.ID = d.replies.next()
		rp.CreatedAt = time.Now()
		d.replies.rows[rp.ID] = *rp
		return nil
	})
}

func (r forumRepo) IncrementReplies(_ context.Context, postID int) error {
	return r.st.write(func(d *data) error {
		p, ok := d.posts.rows[postID]
		if !ok {
			return repository.ErrNotFound
		}
		p.RepliesCount++
		d.posts.rows[postID] = p
		return nil
	})
}
