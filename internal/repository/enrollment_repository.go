package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/siakad-backend/internal/model"
)

const enrollmentColumns = `id, student_id, course_id, semester, academic_year, status, approved_by, approved_at, created_at`

type pgEnrollmentRepository struct {
	q Querier
}

func scanEnrollment(row pgx.Row, e *model.Enrollment) error {
	return row.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.Semester, &e.AcademicYear, &e.Status,
		&e.ApprovedBy, &e.ApprovedAt, &e.CreatedAt)
}

func (r *pgEnrollmentRepository) GetByID(ctx context.Context, id int) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	if err := scanEnrollment(r.q.QueryRow(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id), e); err != nil {
		return nil, mapErr(err)
	}
	return e, nil
}

func (r *pgEnrollmentRepository) List(ctx context.Context, f EnrollmentFilter) ([]model.Enrollment, error) {
	var c conditions
	if f.StudentID > 0 {
		c.add("student_id = $%d", f.StudentID)
	}
	if len(f.StudentIDs) > 0 {
		c.add("student_id = ANY($%d)", f.StudentIDs)
	}
	if f.CourseID > 0 {
		c.add("course_id = $%d", f.CourseID)
	}
	if f.Semester > 0 {
		c.add("semester = $%d", f.Semester)
	}
	if f.AcademicYear != "" {
		c.add("academic_year = $%d", f.AcademicYear)
	}
	if f.Status != "" {
		c.add("status = $%d", f.Status)
	}

	rows, err := r.q.Query(ctx, `SELECT `+enrollmentColumns+` FROM enrollments`+c.where()+` ORDER BY id`, c.args...)
	return collect(rows, err, scanEnrollment)
}

func (r *pgEnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO enrollments (student_id, course_id, semester, academic_year, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		e.StudentID, e.CourseID, e.Semester, e.AcademicYear, e.Status,
	).Scan(&e.ID, &e.CreatedAt)
	return mapErr(err)
}

func (r *pgEnrollmentRepository) DeleteByPeriod(ctx context.Context, studentID, semester int, academicYear string) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM enrollments WHERE student_id = $1 AND semester = $2 AND academic_year = $3`,
		studentID, semester, academicYear)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgEnrollmentRepository) Review(ctx context.Context, id int, rv model.Review) error {
	return affected(r.q.Exec(ctx,
		`UPDATE enrollments SET status = $1, approved_by = $2, approved_at = $3 WHERE id = $4`,
		rv.Status, rv.ReviewerID, rv.ReviewedAt, id))
}
