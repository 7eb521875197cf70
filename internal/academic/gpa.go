// Package academic holds the pure computations behind transcripts and
// review workflows. Nothing here touches storage.
package academic

import (
	"math"
	"sort"

	"github.com/stemsi/siakad-backend/internal/model"
)

// SemesterSummary is the KHS line of one semester.
type SemesterSummary struct {
	Semester    int     `json:"semester"`
	GPA         float64 `json:"gpa"`
	TotalWeight float64 `json:"total_weight"`
	CourseCount int     `json:"course_count"`
}

// Summary is the aggregate over every grade of one student.
type Summary struct {
	SemesterGPA   map[int]float64   `json:"semester_gpa"`
	Semesters     []SemesterSummary `json:"semesters"`
	CumulativeGPA float64           `json:"cumulative_gpa"`
	TotalWeight   float64           `json:"total_weight"`
	Rows          []model.Grade     `json:"rows"`
}

// BySemester returns the rows of one semester in input order.
func (s Summary) BySemester(semester int) []model.Grade {
	var rows []model.Grade
	for _, g := range s.Rows {
		if g.Semester == semester {
			rows = append(rows, g)
		}
	}
	return rows
}

// Aggregate computes per-semester and cumulative weighted averages.
// Every row counts, including repeated rows for the same course.
func Aggregate(grades []model.Grade) Summary {
	type acc struct {
		points, weight float64
		count          int
	}

	buckets := make(map[int]*acc)
	var total acc
	for _, g := range grades {
		b, ok := buckets[g.Semester]
		if !ok {
			b = &acc{}
			buckets[g.Semester] = b
		}
		b.points += g.Score * g.Weight
		b.weight += g.Weight
		b.count++

		total.points += g.Score * g.Weight
		total.weight += g.Weight
	}

	summary := Summary{
		SemesterGPA:   make(map[int]float64, len(buckets)),
		Semesters:     make([]SemesterSummary, 0, len(buckets)),
		CumulativeGPA: average(total.points, total.weight),
		TotalWeight:   Round2(total.weight),
		Rows:          grades,
	}
	if summary.Rows == nil {
		summary.Rows = []model.Grade{}
	}

	for sem, b := range buckets {
		gpa := average(b.points, b.weight)
		summary.SemesterGPA[sem] = gpa
		summary.Semesters = append(summary.Semesters, SemesterSummary{
			Semester:    sem,
			GPA:         gpa,
			TotalWeight: Round2(b.weight),
			CourseCount: b.count,
		})
	}
	sort.Slice(summary.Semesters, func(i, j int) bool {
		return summary.Semesters[i].Semester < summary.Semesters[j].Semester
	})

	return summary
}

// SemesterGPA is the weighted average of the grades of one semester.
func SemesterGPA(grades []model.Grade, semester int) float64 {
	var points, weight float64
	for _, g := range grades {
		if g.Semester != semester {
			continue
		}
		points += g.Score * g.Weight
		weight += g.Weight
	}
	return average(points, weight)
}

// CumulativeGPA is the weighted average over all grades.
func CumulativeGPA(grades []model.Grade) float64 {
	var points, weight float64
	for _, g := range grades {
		points += g.Score * g.Weight
		weight += g.Weight
	}
	return average(points, weight)
}

// TotalWeight sums the credit weight of grades.
func TotalWeight(grades []model.Grade) float64 {
	var weight float64
	for _, g := range grades {
		weight += g.Weight
	}
	return Round2(weight)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// average returns 0 when the total weight is 0.
func average(points, weight float64) float64 {
	if weight == 0 {
		return 0
	}
	return Round2(points / weight)
}
