package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/siakad-backend/internal/model"
)

// ─── Materials ─────────────────────────────────────────────────────────

const materialColumns = `id, course_id, title, description, file_path, file_type, week, uploaded_by, uploaded_at`

type pgMaterialRepository struct {
	q Querier
}

func scanMaterial(row pgx.Row, m *model.Material) error {
	return row.Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.FilePath, &m.FileType, &m.Week,
		&m.UploadedBy, &m.UploadedAt)
}

func (r *pgMaterialRepository) GetByID(ctx context.Context, id int) (*model.Material, error) {
	m := &model.Material{}
	if err := scanMaterial(r.q.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id), m); err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func (r *pgMaterialRepository) ListByCourse(ctx context.Context, courseID int) ([]model.Material, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE course_id = $1 ORDER BY week, uploaded_at, id`, courseID)
	return collect(rows, err, scanMaterial)
}

func (r *pgMaterialRepository) Create(ctx context.Context, m *model.Material) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO materials (course_id, title, description, file_path, file_type, week, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, uploaded_at`,
		m.CourseID, m.Title, m.Description, m.FilePath, m.FileType, m.Week, m.UploadedBy,
	).Scan(&m.ID, &m.UploadedAt)
	return mapErr(err)
}

func (r *pgMaterialRepository) Delete(ctx context.Context, id int) error {
	return affected(r.q.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id))
}

// ─── Videos ────────────────────────────────────────────────────────────

const videoColumns = `id, course_id, title, description, video_path, duration_minutes, week, uploaded_by, uploaded_at`

type pgVideoRepository struct {
	q Querier
}

func scanVideo(row pgx.Row, v *model.Video) error {
	return row.Scan(&v.ID, &v.CourseID, &v.Title, &v.Description, &v.VideoPath, &v.DurationMinutes, &v.Week,
		&v.UploadedBy, &v.UploadedAt)
}

func scanWatch(row pgx.Row, w *model.VideoWatch) error {
	return row.Scan(&w.ID, &w.StudentID, &w.VideoID, &w.WatchSeconds, &w.TotalSeconds, &w.Completed, &w.LastWatched)
}

func (r *pgVideoRepository) GetByID(ctx context.Context, id int) (*model.Video, error) {
	v := &model.Video{}
	if err := scanVideo(r.q.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id), v); err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func (r *pgVideoRepository) ListByCourse(ctx context.Context, courseID int) ([]model.Video, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE course_id = $1 ORDER BY week, uploaded_at, id`, courseID)
	return collect(rows, err, scanVideo)
}

func (r *pgVideoRepository) Create(ctx context.Context, v *model.Video) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO videos (course_id, title, description, video_path, duration_minutes, week, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, uploaded_at`,
		v.CourseID, v.Title, v.Description, v.VideoPath, v.DurationMinutes, v.Week, v.UploadedBy,
	).Scan(&v.ID, &v.UploadedAt)
	return mapErr(err)
}

func (r *pgVideoRepository) Delete(ctx context.Context, id int) error {
	return affected(r.q.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id))
}

func (r *pgVideoRepository) GetWatch(ctx context.Context, studentID, videoID int) (*model.VideoWatch, error) {
	w := &model.VideoWatch{}
	err := scanWatch(r.q.QueryRow(ctx,
		`SELECT id, student_id, video_id, watch_seconds, total_seconds, completed, last_watched
		 FROM video_watches WHERE student_id = $1 AND video_id = $2`, studentID, videoID), w)
	if err != nil {
		return nil, mapErr(err)
	}
	return w, nil
}

func (r *pgVideoRepository) ListWatches(ctx context.Context, studentID int) ([]model.VideoWatch, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, student_id, video_id, watch_seconds, total_seconds, completed, last_watched
		 FROM video_watches WHERE student_id = $1 ORDER BY video_id`, studentID)
	return collect(rows, err, scanWatch)
}

func (r *pgVideoRepository) UpsertWatch(ctx context.Context, w *model.VideoWatch) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO video_watches (student_id, video_id, watch_seconds, total_seconds, completed, last_watched)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (student_id, video_id) DO UPDATE
		   SET watch_seconds = EXCLUDED.watch_seconds, total_seconds = EXCLUDED.total_seconds,
		       completed = EXCLUDED.completed, last_watched = EXCLUDED.last_watched
		 RETURNING id`,
		w.StudentID, w.VideoID, w.WatchSeconds, w.TotalSeconds, w.Completed, w.LastWatched,
	).Scan(&w.ID)
	return mapErr(err)
}
