package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/siakad-backend/internal/model"
)

type pgScheduleRepository struct {
	q Querier
}

func scanSchedule(row pgx.Row, s *model.Schedule) error {
	return row.Scan(&s.ID, &s.CourseID, &s.Day, &s.StartTime, &s.EndTime, &s.Room, &s.Semester,
		&s.AcademicYear, &s.CreatedAt)
}

// List returns slots ordered by weekday, then start time.
func (r *pgScheduleRepository) List(ctx context.Context, f ScheduleFilter) ([]model.Schedule, error) {
	var c conditions
	if f.Semester > 0 {
		c.add("semester = $%d", f.Semester)
	}
	if f.AcademicYear != "" {
		c.add("academic_year = $%d", f.AcademicYear)
	}
	if f.Day != "" {
		c.add("day = $%d", f.Day)
	}
	if len(f.CourseIDs) > 0 {
		c.add("course_id = ANY($%d)", f.CourseIDs)
	}

	rows, err := r.q.Query(ctx,
		`SELECT id, course_id, day, start_time, end_time, room, semester, academic_year, created_at
		 FROM schedules`+c.where()+`
		 ORDER BY array_position(ARRAY['Senin','Selasa','Rabu','Kamis','Jumat','Sabtu','Minggu'], day),
		          start_time, id`, c.args...)
	return collect(rows, err, scanSchedule)
}

func (r *pgScheduleRepository) Create(ctx context.Context, s *model.Schedule) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO schedules (course_id, day, start_time, end_time, room, semester, academic_year)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		s.CourseID, s.Day, s.StartTime, s.EndTime, s.Room, s.Semester, s.AcademicYear,
	).Scan(&s.ID, &s.CreatedAt)
	return mapErr(err)
}

func (r *pgScheduleRepository) Delete(ctx context.Context, id int) error {
	return affected(r.q.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id))
}
