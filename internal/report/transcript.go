// Package report renders transcripts from an academic.Summary. It formats
// aggregator output only and never recomputes averages.
package report

import (
	"io"
	"time"

	"github.com/stemsi/siakad-backend/internal/academic"
	"github.com/stemsi/siakad-backend/internal/model"
)

// Transcript is everything a renderer needs for one student.
type Transcript struct {
	InstitutionName string
	Student         model.User
	Summary         academic.Summary
	Courses         map[int]model.Course
	GeneratedAt     time.Time
}

// Line is one course row of a semester block.
type Line struct {
	Code   string
	Name   string
	Weight float64
	Score  float64
	Points float64
	Letter string
}

// SemesterBlock groups the lines of one semester with its IP.
type SemesterBlock struct {
	Semester    int
	Lines       []Line
	GPA         float64
	TotalWeight float64
}

// Blocks lays out the summary in ascending semester order.
func (t Transcript) Blocks() []SemesterBlock {
	blocks := make([]SemesterBlock, 0, len(t.Summary.Semesters))
	for _, sem := range t.Summary.Semesters {
		block := SemesterBlock{
			Semester:    sem.Semester,
			GPA:         sem.GPA,
			TotalWeight: sem.TotalWeight,
		}
		for _, g := range t.Summary.BySemester(sem.Semester) {
			c := t.Courses[g.CourseID]
			block.Lines = append(block.Lines, Line{
				Code:   c.Code,
				Name:   c.Name,
				Weight: g.Weight,
				Score:  g.Score,
				Points: academic.Round2(g.Score * g.Weight),
				Letter: g.Letter,
			})
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// Renderer writes a transcript in one document format.
type Renderer interface {
	ContentType() string
	Extension() string
	Render(w io.Writer, t Transcript) error
}
