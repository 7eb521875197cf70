package memory

import (
	"context"
	"time"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

func courseAndUploader(d *data, courseID, uploader int) error {
	if _, ok := d.courses.rows[courseID]; !ok {
		return repository.ErrReferenced
	}
	if _, ok := d.users.rows[uploader]; !ok {
		return repository.ErrReferenced
	}
	return nil
}

type materialRepo struct{ st *state }

func (r materialRepo) GetByID(_ context.Context, id int) (m *model.Material, err error) {
	r.st.read(func(d *data) { m, err = d.materials.get(id) })
	return m, err
}

func (r materialRepo) ListByCourse(_ context.Context, courseID int) ([]model.Material, error) {
	var rows []model.Material
	r.st.read(func(d *data) {
		rows = d.materials.where(func(m model.Material) bool { return m.CourseID == courseID })
	})
	sortBy(rows, func(a, b model.Material) bool { return a.Week < b.Week })
	return rows, nil
}

func (r materialRepo) Create(_ context.Context, m *model.Material) error {
	return r.st.write(func(d *data) error {
		if err := courseAndUploader(d, m.CourseID, m.UploadedBy); err != nil {
			return err
		}
		m.ID = d.materials.next()
		m.UploadedAt = time.Now()
		d.materials.rows[m.ID] = *m
		return nil
	})
}

func (r materialRepo) Delete(_ context.Context, id int) error {
	return r.st.write(func(d *data) error {
		if d.materials.deleteWhere(func(m model.Material) bool { return m.ID == id }) == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

type videoRepo struct{ st *state }

func (r videoRepo) GetByID(_ context.Context, id int) (v *model.Video, err error) {
	r.st.read(func(d *data) { v, err = d.videos.get(id) })
	return v, err
}

func (r videoRepo) ListByCourse(_ context.Context, courseID int) ([]model.Video, error) {
	var rows []model.Video
	r.st.read(func(d *data) {
		rows = d.videos.where(func(v model.Video) bool { return v.CourseID == courseID })
	})
	sortBy(rows, func(a, b model.Video) bool { return a.Week < b.Week })
	return rows, nil
}

func (r videoRepo) Create(_ context.Context, v *model.Video) error {
	return r.st.write(func(d *data) error {
		if err := courseAndUploader(d, v.CourseID, v.UploadedBy); err != nil {
			return err
		}
		v.ID = d.videos.next()
		v.UploadedAt = time.Now()
		d.videos.rows[v.ID] = *v
		return nil
	})
}

func (r videoRepo) Delete(_ context.Context, id int) error {
	return r.st.write(func(d *data) error {
		if d.videos.deleteWhere(func(v model.Video) bool { return v.ID == id }) == 0 {
			return repository.ErrNotFound
		}
		d.watches.deleteWhere(func(w model.VideoWatch) bool { return w.VideoID == id })
		return nil
	})
}

func (r videoRepo) GetWatch(_ context.Context, studentID, videoID int) (*model.VideoWatch, error) {
	var rows []model.VideoWatch
	r.st.read(func(d *data) {
		rows = d.watches.where(func(w model.VideoWatch) bool {
			return w.StudentID == studentID && w.VideoID == videoID
		})
	})
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	return &rows[0], nil
}

func (r videoRepo) ListWatches(_ context.Context, studentID int) ([]model.VideoWatch, error) {
	var rows []model.VideoWatch
	r.st.read(func(d *data) {
		rows = d.watches.where(func(w model.VideoWatch) bool { return w.StudentID == studentID })
	})
	sortBy(rows, func(a, b model.VideoWatch) bool { return a.VideoID < b.VideoID })
	return rows, nil
}

func (r videoRepo) UpsertWatch(_ context.Context, w *model.VideoWatch) error {
	return r.st.write(func(d *data) error {
		if _, ok := d.videos.rows[w.VideoID]; !ok {
			return repository.ErrReferenced
		}
		if err := studentExists(d, w.StudentID); err != nil {
			return err
		}
		for id, existing := range d.watches.rows {
			if existing.StudentID == w.StudentID && existing.VideoID == w.VideoID {
				w.ID = id
				d.watches.rows[id] = *w
				return nil
			}
		}
		w.ID = d.watches.next()
		d.watches.rows[w.ID] = *w
		return nil
	})
}
