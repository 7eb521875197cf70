package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/siakad-backend/internal/model"
)

func TestForum_ReplyBumpsCounter(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	course := f.seedCourse(t, "IF101", lecturer, 3, 1)

	post, err := f.forum.CreatePost(f.ctx, student, model.CreatePostRequest{CourseID: course.ID, Title: "Tanya", Content: "Kapan UTS?"})
	require.NoError(t, err)

	_, err = f.forum.Reply(f.ctx, lecturer, post.ID, model.CreateReplyRequest{Content: "Minggu depan"})
	require.NoError(t, err)
	_, err = f.forum.Reply(f.ctx, student, post.ID, model.CreateReplyRequest{Content: "Terima kasih"})
	require.NoError(t, err)

	thread, err := f.forum.GetThread(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, thread.Post.RepliesCount)
	assert.Len(t, thread.Replies, 2)
}

func TestForum_Validation(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	admin := f.seedUser(t, "A0001", model.RoleAdmin)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	course := f.seedCourse(t, "IF101", lecturer, 3, 1)

	_, err := f.forum.CreatePost(f.ctx, student, model.CreatePostRequest{CourseID: 999, Title: "Tanya", Content: "?"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.forum.CreatePost(f.ctx, student, model.CreatePostRequest{CourseID: course.ID, Title: " ", Content: "?"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.forum.CreatePost(f.ctx, admin, model.CreatePostRequest{CourseID: course.ID, Title: "Info", Content: "..."})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.forum.Reply(f.ctx, student, 999, model.CreateReplyRequest{Content: "halo"})
	assert.ErrorIs(t, err, ErrNotFound)

	posts, err := f.forum.ListPosts(f.ctx, course.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
