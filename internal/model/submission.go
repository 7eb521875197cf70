package model

import "time"

// SubmissionKind names the four submission families.
type SubmissionKind string

const (
	KindAssignment SubmissionKind = "assignment"
	KindLetter     SubmissionKind = "letter"
	KindInternship SubmissionKind = "internship"
	KindThesis     SubmissionKind = "thesis"
)

// Valid reports whether k is one of the known kinds.
func (k SubmissionKind) Valid() bool {
	switch k {
	case KindAssignment, KindLetter, KindInternship, KindThesis:
		return true
	}
	return false
}

// Submission is a course assignment upload.
type Submission struct {
	ID          int        `json:"id"`
	StudentID   int        `json:"student_id"`
	CourseID    int        `json:"course_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FilePath    string     `json:"file_path"`
	Status      Status     `json:"status"`
	Score       *float64   `json:"score,omitempty"`
	Comment     *string    `json:"comment,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedBy  *int       `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

// LetterSubmission is a request for an official letter (leave, active student, ...).
type LetterSubmission struct {
	ID          int        `json:"id"`
	StudentID   int        `json:"student_id"`
	LetterType  string     `json:"letter_type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FilePath    *string    `json:"file_path,omitempty"`
	Status      Status     `json:"status"`
	Notes       *string    `json:"notes,omitempty"`
	ApprovedBy  *int       `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// InternshipApplication is a request to start an internship.
type InternshipApplication struct {
	ID          int        `json:"id"`
	StudentID   int        `json:"student_id"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	Reason      string     `json:"reason"`
	FilePath    *string    `json:"file_path,omitempty"`
	Status      Status     `json:"status"`
	Notes       *string    `json:"notes,omitempty"`
	ApprovedBy  *int       `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// ThesisApplication is a thesis proposal.
type ThesisApplication struct {
	ID                  int        `json:"id"`
	StudentID           int        `json:"student_id"`
	Title               string     `json:"title"`
	Specialization      string     `json:"specialization"`
	Abstract            string     `json:"abstract"`
	PreferredSupervisor *string    `json:"preferred_supervisor,omitempty"`
	FilePath            *string    `json:"file_path,omitempty"`
	Status              Status     `json:"status"`
	Notes               *string    `json:"notes,omitempty"`
	ApprovedBy          *int       `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	SubmittedAt         time.Time  `json:"submitted_at"`
}

// SubmissionSummary is the kind-agnostic row used by merged status listings.
type SubmissionSummary struct {
	Kind        SubmissionKind `json:"kind"`
	ID          int            `json:"id"`
	StudentID   int            `json:"student_id"`
	Title       string         `json:"title"`
	Status      Status         `json:"status"`
	Score       *float64       `json:"score,omitempty"`
	Comment     *string        `json:"comment,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// AssignmentForm is the multipart form for an assignment upload.
type AssignmentForm struct {
	CourseID    int    `form:"course_id" json:"course_id" binding:"required,min=1"`
	Title       string `form:"title" json:"title" binding:"required,max=200"`
	Description string `form:"description" json:"description" binding:"max=5000"`
	Deadline    string `form:"deadline" json:"deadline" binding:"omitempty,datetime=2006-01-02"`
}

// LetterForm is the multipart form for a letter request.
type LetterForm struct {
	LetterType  string `form:"letter_type" json:"letter_type" binding:"required,max=50"`
	Title       string `form:"title" json:"title" binding:"required,max=200"`
	Description string `form:"description" json:"description" binding:"required,max=5000"`
}

// InternshipForm is the multipart form for an internship application.
type InternshipForm struct {
	Company   string `form:"company" json:"company" binding:"required,max=200"`
	Position  string `form:"position" json:"position" binding:"required,max=100"`
	StartDate string `form:"start_date" json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date" json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason    string `form:"reason" json:"reason" binding:"required,max=5000"`
}

// ThesisForm is the multipart form for a thesis proposal.
type ThesisForm struct {
	Title               string `form:"title" json:"title" binding:"required,max=300"`
	Specialization      string `form:"specialization" json:"specialization" binding:"required,max=100"`
	Abstract            string `form:"abstract" json:"abstract" binding:"required,max=10000"`
	PreferredSupervisor string `form:"preferred_supervisor" json:"preferred_supervisor" binding:"max=100"`
}
