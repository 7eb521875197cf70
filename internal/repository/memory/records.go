package memory

import (
	"context"
	"time"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

type gradeRepo struct{ st *state }

func (r gradeRepo) List(_ context.Context, f repository.GradeFilter) ([]model.Grade, error) {
	var grades []model.Grade
	r.st.read(func(d *data) {
		grades = d.grades.where(func(g model.Grade) bool {
			if f.StudentID > 0 && g.StudentID != f.StudentID {
				return false
			}
			if f.CourseID > 0 && g.CourseID != f.CourseID {
				return false
			}
			if len(f.CourseIDs) > 0 && !containsInt(f.CourseIDs, g.CourseID) {
				return false
			}
			return true
		})
	})
	sortBy(grades, func(a, b model.Grade) bool { return a.Semester < b.Semester })
	return grades, nil
}

func (r gradeRepo) Create(_ context.Context, g *model.Grade) error {
	return r.st.write(func(d *data) error {
		if _, ok := d.users.rows[g.StudentID]; !ok {
			return repository.ErrReferenced
		}
		if _, ok := d.courses.rows[g.CourseID]; !ok {
			return repository.ErrReferenced
		}
		g.ID = d.grades.next()
		g.CreatedAt = time.Now()
		d.grades.rows[g.ID] = *g
		return nil
	})
}

type enrollmentRepo struct{ st *state }

func (r enrollmentRepo) GetByID(_ context.Context, id int) (e *model.Enrollment, err error) {
	r.st.read(func(d *data) { e, err = d.enrollments.get(id) })
	return e, err
}

func (r enrollmentRepo) List(_ context.Context, f repository.EnrollmentFilter) ([]model.Enrollment, error) {
	var rows []model.Enrollment
	r.st.read(func(d *data) {
		rows = d.enrollments.where(func(e model.Enrollment) bool {
			switch {
			case f.StudentID > 0 && e.StudentID != f.StudentID:
				return false
			case len(f.StudentIDs) > 0 && !containsInt(f.StudentIDs, e.StudentID):
				return false
			case f.CourseID > 0 && e.CourseID != f.CourseID:
				return false
			case f.Semester > 0 && e.Semester != f.Semester:
				return false
			case f.AcademicYear != "" && e.AcademicYear != f.AcademicYear:
				return false
			case f.Status != "" && e.Status != f.Status:
				return false
			}
			return true
		})
	})
	return rows, nil
}

func (r enrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	return r.st.write(func(d *data) error {
		if _, ok := d.users.rows[e.StudentID]; !ok {
			return repository.ErrReferenced
		}
		if _, ok := d.courses.rows[e.CourseID]; !ok {
			return repository.ErrReferenced
		}
		e.ID = d.enrollments.next()
		e.CreatedAt = time.Now()
		d.enrollments.rows[e.ID] = *e
		return nil
	})
}

func (r enrollmentRepo) DeleteByPeriod(_ context.Context, studentID, semester int, academicYear string) (int64, error) {
	var n int
	err := r.st.write(func(d *data) error {
		n = d.enrollments.deleteWhere(func(e model.Enrollment) bool {
			return e.StudentID == studentID && e.Semester == semester && e.AcademicYear == academicYear
		})
		return nil
	})
	return int64(n), err
}

func (r enrollmentRepo) Review(_ context.Context, id int, rv model.Review) error {
	return r.st.write(func(d *data) error {
		e, ok := d.enrollments.rows[id]
		if !ok {
			return repository.ErrNotFound
		}
		reviewer, at := rv.ReviewerID, rv.ReviewedAt
		e.Status = rv.Status
		e.ApprovedBy = &reviewer
		e.ApprovedAt = &at
		d.enrollments.rows[id] = e
		return nil
	})
}
