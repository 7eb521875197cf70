package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/siakad-backend/internal/model"
)

type pgGradeRepository struct {
	q Querier
}

func scanGrade(row pgx.Row, g *model.Grade) error {
	return row.Scan(&g.ID, &g.StudentID, &g.CourseID, &g.Score, &g.Weight, &g.Letter, &g.Semester, &g.CreatedAt)
}

// List returns grades ordered by semester, then insertion.
func (r *pgGradeRepository) List(ctx context.Context, f GradeFilter) ([]model.Grade, error) {
	var c conditions
	if f.StudentID > 0 {
		c.add("student_id = $%d", f.StudentID)
	}
	if f.CourseID > 0 {
		c.add("course_id = $%d", f.CourseID)
	}
	if len(f.CourseIDs) > 0 {
		c.add("course_id = ANY($%d)", f.CourseIDs)
	}

	rows, err := r.q.Query(ctx,
		`SELECT id, student_id, course_id, score, weight, letter, semester, created_at
		 FROM grades`+c.where()+` ORDER BY semester, id`, c.args...)
	return collect(rows, err, scanGrade)
}

func (r *pgGradeRepository) Create(ctx context.Context, g *model.Grade) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO grades (student_id, course_id, score, weight, letter, semester)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		g.StudentID, g.CourseID, g.Score, g.Weight, g.Letter, g.Semester,
	).Scan(&g.ID, &g.CreatedAt)
	return mapErr(err)
}
