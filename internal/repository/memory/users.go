package memory

import (
	"context"
	"strings"
	"time"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

type userRepo struct{ st *state }

func (r userRepo) GetByID(_ context.Context, id int) (u *model.User, err error) {
	r.st.read(func(d *data) { u, err = d.users.get(id) })
	return u, err
}

func (r userRepo) findOne(match func(model.User) bool) (*model.User, error) {
	var found []model.User
	r.st.read(func(d *data) { found = d.users.where(match) })
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r userRepo) GetByNIM(_ context.Context, nim string) (*model.User, error) {
	return r.findOne(func(u model.User) bool { return u.NIM == nim })
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return r.findOne(func(u model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r userRepo) List(_ context.Context, f repository.UserFilter) ([]model.User, int, error) {
	search := strings.ToLower(f.Search)
	var users []model.User
	r.st.read(func(d *data) {
		users = d.users.where(func(u model.User) bool {
			if f.Role != "" && u.Role != f.Role {
				return false
			}
			if f.AdvisorID > 0 && (u.AdvisorID == nil || *u.AdvisorID != f.AdvisorID) {
				return false
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(u.Name), search) &&
				!strings.Contains(strings.ToLower(u.NIM), search) &&
				!strings.Contains(strings.ToLower(u.Email), search) {
				return false
			}
			return true
		})
	})
	sortBy(users, func(a, b model.User) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return paginate(users, f.Limit, f.Offset), len(users), nil
}

func (r userRepo) CountByRole(_ context.Context, role model.Role) (int, error) {
	var n int
	r.st.read(func(d *data) {
		n = len(d.users.where(func(u model.User) bool { return u.Role == role }))
	})
	return n, nil
}

func userConflict(d *data, u *model.User) bool {
	return d.users.exists(func(o model.User) bool {
		return o.ID != u.ID && (o.NIM == u.NIM || strings.EqualFold(o.Email, u.Email))
	})
}

func (r userRepo) Create(_ context.Context, u *model.User) error {
	return r.st.write(func(d *data) error {
		if userConflict(d, u) {
			return repository.ErrDuplicate
		}
		now := time.Now()
		u.ID = d.users.next()
		u.CreatedAt, u.UpdatedAt = now, now
		d.users.rows[u.ID] = *u
		return nil
	})
}

func (r userRepo) Update(_ context.Context, u *model.User) error {
	return r.st.write(func(d *data) error {
		old, ok := d.users.rows[u.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if userConflict(d, u) {
			return repository.ErrDuplicate
		}
		u.NIM = old.NIM
		u.CreatedAt = old.CreatedAt
		u.UpdatedAt = time.Now()
		d.users.rows[u.ID] = *u
		return nil
	})
}

// Delete cascades student-owned records and clears advisor links.
// A user still teaching a course or owning uploads cannot be removed.
func (r userRepo) Delete(_ context.Context, id int) error {
	return r.st.write(func(d *data) error {
		if _, ok := d.users.rows[id]; !ok {
			return repository.ErrNotFound
		}
		if d.courses.exists(func(c model.Course) bool { return c.LecturerID == id }) ||
			d.materials.exists(func(m model.Material) bool { return m.UploadedBy == id }) ||
			d.videos.exists(func(v model.Video) bool { return v.UploadedBy == id }) {
			return repository.ErrReferenced
		}

		delete(d.users.rows, id)
		for uid, u := range d.users.rows {
			if u.AdvisorID != nil && *u.AdvisorID == id {
				u.AdvisorID = nil
				d.users.rows[uid] = u
			}
		}
		d.grades.deleteWhere(func(g model.Grade) bool { return g.StudentID == id })
		d.enrollments.deleteWhere(func(e model.Enrollment) bool { return e.StudentID == id })
		d.submissions.deleteWhere(func(s model.Submission) bool { return s.StudentID == id })
		d.letters.deleteWhere(func(l model.LetterSubmission) bool { return l.StudentID == id })
		d.internships.deleteWhere(func(a model.InternshipApplication) bool { return a.StudentID == id })
		d.theses.deleteWhere(func(a model.ThesisApplication) bool { return a.StudentID == id })
		d.watches.deleteWhere(func(w model.VideoWatch) bool { return w.StudentID == id })
		d.replies.deleteWhere(func(rp model.ForumReply) bool { return rp.AuthorID == id })
		deletePosts(d, func(p model.ForumPost) bool { return p.AuthorID == id })
		return nil
	})
}

type courseRepo struct{ st *state }

func (r courseRepo) GetByID(_ context.Context, id int) (c *model.Course, err error) {
	r.st.read(func(d *data) { c, err = d.courses.get(id) })
	return c, err
}

func (r courseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	var found []model.Course
	r.st.read(func(d *data) {
		found = d.courses.where(func(c model.Course) bool { return c.Code == code })
	})
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r courseRepo) GetByIDs(_ context.Context, ids []int) ([]model.Course, error) {
	var courses []model.Course
	r.st.read(func(d *data) {
		courses = d.courses.where(func(c model.Course) bool { return containsInt(ids, c.ID) })
	})
	return courses, nil
}

func (r courseRepo) List(_ context.Context, f repository.CourseFilter) ([]model.Course, int, error) {
	search := strings.ToLower(f.Search)
	var courses []model.Course
	r.st.read(func(d *data) {
		courses = d.courses.where(func(c model.Course) bool {
			if f.Semester > 0 && c.Semester != f.Semester {
				return false
			}
			if f.LecturerID > 0 && c.LecturerID != f.LecturerID {
				return false
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(c.Name), search) &&
				!strings.Contains(strings.ToLower(c.Code), search) {
				return false
			}
			return true
		})
	})
	sortBy(courses, func(a, b model.Course) bool {
		if a.Semester != b.Semester {
			return a.Semester < b.Semester
		}
		return a.Code < b.Code
	})
	return paginate(courses, f.Limit, f.Offset), len(courses), nil
}

func courseConflict(d *data, c *model.Course) bool {
	return d.courses.exists(func(o model.Course) bool { return o.ID != c.ID && o.Code == c.Code })
}

func (r courseRepo) Create(_ context.Context, c *model.Course) error {
	return r.st.write(func(d *data) error {
		if courseConflict(d, c) {
			return repository.ErrDuplicate
		}
		if _, ok := d.users.rows[c.LecturerID]; !ok {
			return repository.ErrReferenced
		}
		now := time.Now()
		c.ID = d.courses.next()
		c.CreatedAt, c.UpdatedAt = now, now
		d.courses.rows[c.ID] = *c
		return nil
	})
}

func (r courseRepo) Update(_ context.Context, c *model.Course) error {
	return r.st.write(func(d *data) error {
		old, ok := d.courses.rows[c.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if courseConflict(d, c) {
			return repository.ErrDuplicate
		}
		c.CreatedAt = old.CreatedAt
		c.UpdatedAt = time.Now()
		d.courses.rows[c.ID] = *c
		return nil
	})
}

// Delete refuses courses with academic records and cascades learning content.
func (r courseRepo) Delete(_ context.Context, id int) error {
	return r.st.write(func(d *data) error {
		if _, ok := d.courses.rows[id]; !ok {
			return repository.ErrNotFound
		}
		if d.grades.exists(func(g model.Grade) bool { return g.CourseID == id }) ||
			d.enrollments.exists(func(e model.Enrollment) bool { return e.CourseID == id }) ||
			d.submissions.exists(func(s model.Submission) bool { return s.CourseID == id }) {
			return repository.ErrReferenced
		}

		delete(d.courses.rows, id)
		d.materials.deleteWhere(func(m model.Material) bool { return m.CourseID == id })
		for vid, v := range d.videos.rows {
			if v.CourseID == id {
				delete(d.videos.rows, vid)
				d.watches.deleteWhere(func(w model.VideoWatch) bool { return w.VideoID == vid })
			}
		}
		d.schedules.deleteWhere(func(s model.Schedule) bool { return s.CourseID == id })
		deletePosts(d, func(p model.ForumPost) bool { return p.CourseID == id })
		return nil
	})
}
