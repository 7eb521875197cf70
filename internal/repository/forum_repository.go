package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/siakad-backend/internal/model"
)

const postColumns = `id, course_id, author_id, title, content, tags, replies_count, created_at`

type pgForumRepository struct {
	q Querier
}

func scanPost(row pgx.Row, p *model.ForumPost) error {
	return row.Scan(&p.ID, &p.CourseID, &p.AuthorID, &p.Title, &p.Content, &p.Tags, &p.RepliesCount, &p.CreatedAt)
}

func scanReply(row pgx.Row, r *model.ForumReply) error {
	return row.Scan(&r.ID, &r.PostID, &r.AuthorID, &r.Content, &r.CreatedAt)
}

func (r *pgForumRepository) GetPost(ctx context.Context, id int) (*model.ForumPost, error) {
	p := &model.ForumPost{}
	if err := scanPost(r.q.QueryRow(ctx, `SELECT `+postColumns+` FROM forum_posts WHERE id = $1`, id), p); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *pgForumRepository) ListPosts(ctx context.Context, courseID int) ([]model.ForumPost, error) {
	var c conditions
	if courseID > 0 {
		c.add("course_id = $%d", courseID)
	}
	rows, err := r.q.Query(ctx, `SELECT `+postColumns+` FROM forum_posts`+c.where()+
		` ORDER BY created_at DESC, id DESC`, c.args...)
	return collect(rows, err, scanPost)
}

func (r *pgForumRepository) CreatePost(ctx context.Context, p *model.ForumPost) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO forum_posts (course_id, author_id, title, content, tags)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, replies_count, created_at`,
		p.CourseID, p.AuthorID, p.Title, p.Content, p.Tags,
	).Scan(&p.ID, &p.RepliesCount, &p.CreatedAt)
	return mapErr(err)
}

func (r *pgForumRepository) ListReplies(ctx context.Context, postID int) ([]model.ForumReply, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, post_id, author_id, content, created_at
		 FROM forum_replies WHERE post_id = $1 ORDER BY created_at, id`, postID)
	return collect(rows, err, scanReply)
}

func (r *pgForumRepository) CreateReply(ctx context.Context, rp *model.ForumReply) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO forum_replies (post_id, author_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		rp.PostID, rp.AuthorID, rp.Content,
	).Scan(&rp.ID, &rp.CreatedAt)
	return mapErr(err)
}

func (r *pgForumRepository) IncrementReplies(ctx context.Context, postID int) error {
	return affected(r.q.Exec(ctx,
		`UPDATE forum_posts SET replies_count = replies_count + 1 WHERE id = $1`, postID))
}
