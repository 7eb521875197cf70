package model

import "time"

// Enrollment is one KRS row: a course picked by a student for a period.
type Enrollment struct {
	ID           int        `json:"id"`
	StudentID    int        `json:"student_id"`
	CourseID     int        `json:"course_id"`
	Semester     int        `json:"semester"`
	AcademicYear string     `json:"academic_year"`
	Status       Status     `json:"status"`
	ApprovedBy   *int       `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SubmitEnrollmentRequest is the payload for submitting a KRS.
// Semester and year fall back to the current period when omitted.
type SubmitEnrollmentRequest struct {
	CourseIDs    []int  `json:"course_ids" binding:"required,dive,min=1"`
	Semester     int    `json:"semester" binding:"omitempty,min=1,max=14"`
	AcademicYear string `json:"academic_year" binding:"omitempty,academic_year"`
}

// ReviewRequest is the payload for moving a pending record to a final status.
type ReviewRequest struct {
	Status  Status   `json:"status" binding:"required,oneof=approved rejected"`
	Score   *float64 `json:"score" binding:"omitempty,min=0,max=100"`
	Comment *string  `json:"comment" binding:"omitempty,max=2000"`
}

// Review is the write-back of a status transition.
type Review struct {
	Status     Status
	Score      *float64
	Comment    *string
	ReviewerID int
	ReviewedAt time.Time
}
