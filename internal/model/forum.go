package model

import "time"

// ForumPost is a discussion thread attached to a course.
type ForumPost struct {
	ID           int       `json:"id"`
	CourseID     int       `json:"course_id"`
	AuthorID     int       `json:"author_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         string    `json:"tags"`
	RepliesCount int       `json:"replies_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ForumReply is one answer in a thread.
type ForumReply struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	AuthorID  int       `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePostRequest is the payload for opening a thread.
type CreatePostRequest struct {
	CourseID int    `json:"course_id" binding:"required,min=1"`
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required,max=10000"`
	Tags     string `json:"tags" binding:"max=200"`
}

// CreateReplyRequest is the payload for answering a thread.
type CreateReplyRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}
