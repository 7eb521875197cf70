package model

import "time"

// Grade is one graded course result. Weight is the credit weight (SKS)
// the score contributes with.
type Grade struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	CourseID  int       `json:"course_id"`
	Score     float64   `json:"score"`
	Weight    float64   `json:"weight"`
	Letter    string    `json:"letter"`
	Semester  int       `json:"semester"`
	CreatedAt time.Time `json:"created_at"`
}

// GradeRequest is the payload for recording a grade.
type GradeRequest struct {
	StudentID int      `json:"student_id" binding:"required,min=1"`
	CourseID  int      `json:"course_id" binding:"required,min=1"`
	Score     *float64 `json:"score" binding:"required,min=0,max=100"`
	Weight    *float64 `json:"weight" binding:"omitempty,min=0"`
	Letter    string   `json:"letter" binding:"omitempty,max=2"`
	Semester  *int     `json:"semester" binding:"omitempty,min=1,max=14"`
}
