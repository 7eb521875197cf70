package memory

import (
	"context"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

func matchSubmission(f repository.SubmissionFilter, studentID, courseID int, status model.Status) bool {
	if f.StudentID > 0 && studentID != f.StudentID {
		return false
	}
	if f.CourseID > 0 && courseID != f.CourseID {
		return false
	}
	if f.Status != "" && status != f.Status {
		return false
	}
	return true
}

func studentExists(d *data, id int) error {
	if _, ok := d.users.rows[id]; !ok {
		return repository.ErrReferenced
	}
	return nil
}

// newestFirst orders by submitted_at desc, then id desc.
func newestFirst[T any](rows []T, key func(T) (int64, int)) {
	sortBy(rows, func(a, b T) bool {
		at, aid := key(a)
		bt, bid := key(b)
		if at != bt {
			return at > bt
		}
		return aid > bid
	})
}

// ─── Assignments ───────────────────────────────────────────────────────

type submissionRepo struct{ st *state }

func (r submissionRepo) GetByID(_ context.Context, id int) (s *model.Submission, err error) {
	r.st.read(func(d *data) { s, err = d.submissions.get(id) })
	return s, err
}

func (r submissionRepo) List(_ context.Context, f repository.SubmissionFilter) ([]model.Submission, error) {
	var rows []model.Submission
	r.st.read(func(d *data) {
		rows = d.submissions.where(func(s model.Submission) bool {
			return matchSubmission(f, s.StudentID, s.CourseID, s.Status)
		})
	})
	newestFirst(rows, func(s model.Submission) (int64, int) { return s.SubmittedAt.UnixNano(), s.ID })
	return rows, nil
}

func (r submissionRepo) Create(_ context.Context, s *model.Submission) error {
	return r.st.write(func(d *data) error {
		if err := studentExists(d, s.StudentID); err != nil {
			return err
		}
		if _, ok := d.courses.rows[s.CourseID]; !ok {
			return repository.ErrReferenced
		}
		s.ID = d.submissions.next()
		d.submissions.rows[s.ID] = *s
		return nil
	})
}

func (r submissionRepo) Review(_ context.Context, id int, rv model.Review) error {
	return r.st.write(func(d *data) error {
		s, ok := d.submissions.rows[id]
		if !ok {
			return repository.ErrNotFound
		}
		reviewer, at := rv.ReviewerID, rv.ReviewedAt
		s.Status = rv.Status
		if rv.Score != nil {
			s.Score = rv.Score
		}
		if rv.Comment != nil {
			s.Comment = rv.Comment
		}
		s.ReviewedBy, s.ReviewedAt = &reviewer, &at
		d.submissions.rows[id] = s
		return nil
	})
}

// ─── Letters ───────────────────────────────────────────────────────────

type letterRepo struct{ st *state }

func (r letterRepo) GetByID(_ context.Context, id int) (l *model.LetterSubmission, err error) {
	r.st.read(func(d *data) { l, err = d.letters.get(id) })
	return l, err
}

func (r letterRepo) List(_ context.Context, f repository.SubmissionFilter) ([]model.LetterSubmission, error) {
	var rows []model.LetterSubmission
	r.st.read(func(d *data) {
		rows = d.letters.where(func(l model.LetterSubmission) bool {
			return matchSubmission(f, l.StudentID, f.CourseID, l.Status)
		})
	})
	newestFirst(rows, func(l model.LetterSubmission) (int64, int) { return l.SubmittedAt.UnixNano(), l.ID })
	return rows, nil
}

func (r letterRepo) Create(_ context.Context, l *model.LetterSubmission) error {
	return r.st.write(func(d *data) error {
		if err := studentExists(d, l.StudentID); err != nil {
			return err
		}
		l.ID = d.letters.next()
		d.letters.rows[l.ID] = *l
		return nil
	})
}

func (r letterRepo) Review(_ context.Context, id int, rv model.Review) error {
	return r.st.write(func(d *data) error {
		l, ok := d.letters.rows[id]
		if !ok {
			return repository.ErrNotFound
		}
		reviewer, at := rv.ReviewerID, rv.ReviewedAt
		l.Status = rv.Status
		if rv.Comment != nil {
			l.Notes = rv.Comment
		}
		l.ApprovedBy, l.ApprovedAt = &reviewer, &at
		d.letters.rows[id] = l
		return nil
	})
}

// ─── Internships ───────────────────────────────────────────────────────

type internshipRepo struct{ st *state }

func (r internshipRepo) GetByID(_ context.Context, id int) (a *model.InternshipApplication, err error) {
	r.st.read(func(d *data) { a, err = d.internships.get(id) })
	return a, err
}

func (r internshipRepo) List(_ context.Context, f repository.SubmissionFilter) ([]model.InternshipApplication, error) {
	var rows []model.InternshipApplication
	r.st.read(func(d *data) {
		rows = d.internships.where(func(a model.InternshipApplication) bool {
			return matchSubmission(f, a.StudentID, f.CourseID, a.Status)
		})
	})
	newestFirst(rows, func(a model.InternshipApplication) (int64, int) { return a.SubmittedAt.UnixNano(), a.ID })
	return rows, nil
}

func (r internshipRepo) Create(_ context.Context, a *model.InternshipApplication) error {
	return r.st.write(func(d *data) error {
		if err := studentExists(d, a.StudentID); err != nil {
			return err
		}
		a.ID = d.internships.next()
		d.internships.rows[a.ID] = *a
		return nil
	})
}

func (r internshipRepo) Review(_ context.Context, id int, rv model.Review) error {
	return r.st.write(func(d *data) error {
		a, ok := d.internships.rows[id]
		if !ok {
			return repository.ErrNotFound
		}
		reviewer, at := rv.ReviewerID, rv.ReviewedAt
		a.Status = rv.Status
		if rv.Comment != nil {
			a.Notes = rv.Comment
		}
		a.ApprovedBy, a.ApprovedAt = &reviewer, &at
		d.internships.rows[id] = a
		return nil
	})
}

// ─── Theses ────────────────────────────────────────────────────────────

type thesisRepo struct{ st *state }

func (r thesisRepo) GetByID(_ context.Context, id int) (a *model.ThesisApplication, err error) {
	r.st.read(func(d *data) { a, err = d.theses.get(id) })
	return a, err
}

func (r thesisRepo) List(_ context.Context, f repository.SubmissionFilter) ([]model.ThesisApplication, error) {
	var rows []model.ThesisApplication
	r.st.read(func(d *data) {
		rows = d.theses.where(func(a model.ThesisApplication) bool {
			return matchSubmission(f, a.StudentID, f.CourseID, a.Status)
		})
	})
	newestFirst(rows, func(a model.ThesisApplication) (int64, int) { return a.SubmittedAt.UnixNano(), a.ID })
	return rows, nil
}

func (r thesisRepo) Create(_ context.Context, a *model.ThesisApplication) error {
	return r.st.write(func(d *data) error {
		if err := studentExists(d, a.StudentID); err != nil {
			return err
		}
		a.ID = d.theses.next()
		d.theses.rows[a.ID] = *a
		return nil
	})
}

func (r thesisRepo) Review(_ context.Context, id int, rv model.Review) error {
	return r.st.write(func(d *data) error {
		a, ok := d.theses.rows[id]
		if !ok {
			return repository.ErrNotFound
		}
		reviewer, at := rv.ReviewerID, rv.ReviewedAt
		a.Status = rv.Status
		if rv.Comment != nil {
			a.Notes = rv.Comment
		}
		a.ApprovedBy, a.ApprovedAt = &reviewer, &at
		d.theses.rows[id] = a
		return nil
	})
}
