package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/siakad-backend/internal/model"
)

const courseColumns = `id, code, name, credits, semester, lecturer_id, created_at, updated_at`

type pgCourseRepository struct {
	q Querier
}

func scanCourse(row pgx.Row, c *model.Course) error {
	return row.Scan(&c.ID, &c.Code, &c.Name, &c.Credits, &c.Semester, &c.LecturerID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *pgCourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c := &model.Course{}
	if err := scanCourse(r.q.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id), c); err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *pgCourseRepository) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	c := &model.Course{}
	if err := scanCourse(r.q.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE code = $1`, code), c); err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// GetByIDs resolves the ids that exist. Missing ids are silently absent.
func (r *pgCourseRepository) GetByIDs(ctx context.Context, ids []int) ([]model.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ANY($1) ORDER BY id`, ids)
	return collect(rows, err, scanCourse)
}

func (r *pgCourseRepository) List(ctx context.Context, f CourseFilter) ([]model.Course, int, error) {
	var c conditions
	if f.Semester > 0 {
		c.add("semester = $%d", f.Semester)
	}
	if f.LecturerID > 0 {
		c.add("lecturer_id = $%d", f.LecturerID)
	}
	if f.Search != "" {
		c.add("(name ILIKE $%[1]d OR code ILIKE $%[1]d)", "%"+f.Search+"%")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM courses`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	limit, args := c.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+courseColumns+` FROM courses`+c.where()+` ORDER BY semester, code`+limit, args...)
	courses, err := collect(rows, err, scanCourse)
	return courses, total, err
}

func (r *pgCourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO courses (code, name, credits, semester, lecturer_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.Code, c.Name, c.Credits, c.Semester, c.LecturerID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapErr(err)
}

func (r *pgCourseRepository) Update(ctx context.Context, c *model.Course) error {
	err := r.q.QueryRow(ctx,
		`UPDATE courses SET code = $1, name = $2, credits = $3, semester = $4, lecturer_id = $5,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING updated_at`,
		c.Code, c.Name, c.Credits, c.Semester, c.LecturerID, c.ID,
	).Scan(&c.UpdatedAt)
	return mapErr(err)
}

func (r *pgCourseRepository) Delete(ctx context.Context, id int) error {
	return affected(r.q.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id))
}
