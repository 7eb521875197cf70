// Package memory is a map-backed repository.Store. It keeps the unique and
// foreign-key rules of the SQL schema so engine tests observe the same errors.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

type table[T any] struct {
	rows map[int]T
	seq  int
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int]T)}
}

func (t *table[T]) next() int {
	t.seq++
	return t.seq
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{rows: make(map[int]T, len(t.rows)), seq: t.seq}
	for k, v := range t.rows {
		c.rows[k] = v
	}
	return c
}

// where returns matching rows ordered by primary key.
func (t *table[T]) where(match func(T) bool) []T {
	ids := make([]int, 0, len(t.rows))
	for id, row := range t.rows {
		if match == nil || match(row) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *table[T]) get(id int) (*T, error) {
	row, ok := t.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (t *table[T]) deleteWhere(match func(T) bool) int {
	n := 0
	for id, row := range t.rows {
		if match(row) {
			delete(t.rows, id)
			n++
		}
	}
	return n
}

func (t *table[T]) exists(match func(T) bool) bool {
	for _, row := range t.rows {
		if match(row) {
			return true
		}
	}
	return false
}

type data struct {
	users       *table[model.User]
	courses     *table[model.Course]
	grades      *table[model.Grade]
	enrollments *table[model.Enrollment]
	submissions *table[model.Submission]
	letters     *table[model.LetterSubmission]
	internships *table[model.InternshipApplication]
	theses      *table[model.ThesisApplication]
	materials   *table[model.Material]
	videos      *table[model.Video]
	watches     *table[model.VideoWatch]
	posts       *table[model.ForumPost]
	replies     *table[model.ForumReply]
	schedules   *table[model.Schedule]
	settings    map[string]model.AppSetting
}

func newData() *data {
	return &data{
		users:       newTable[model.User](),
		courses:     newTable[model.Course](),
		grades:      newTable[model.Grade](),
		enrollments: newTable[model.Enrollment](),
		submissions: newTable[model.Submission](),
		letters:     newTable[model.LetterSubmission](),
		internships: newTable[model.InternshipApplication](),
		theses:      newTable[model.ThesisApplication](),
		materials:   newTable[model.Material](),
		videos:      newTable[model.Video](),
		watches:     newTable[model.VideoWatch](),
		posts:       newTable[model.ForumPost](),
		replies:     newTable[model.ForumReply](),
		schedules:   newTable[model.Schedule](),
		settings:    make(map[string]model.AppSetting),
	}
}

func (d *data) clone() *data {
	settings := make(map[string]model.AppSetting, len(d.settings))
	for k, v := range d.settings {
		settings[k] = v
	}
	return &data{
		users:       d.users.clone(),
		courses:     d.courses.clone(),
		grades:      d.grades.clone(),
		enrollments: d.enrollments.clone(),
		submissions: d.submissions.clone(),
		letters:     d.letters.clone(),
		internships: d.internships.clone(),
		theses:      d.theses.clone(),
		materials:   d.materials.clone(),
		videos:      d.videos.clone(),
		watches:     d.watches.clone(),
		posts:       d.posts.clone(),
		replies:     d.replies.clone(),
		schedules:   d.schedules.clone(),
		settings:    settings,
	}
}

type state struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	d    *data
}

// Store is an in-memory repository.Store.
type Store struct {
	st   *state
	inTx bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{st: &state{d: newData()}}
}

func (s *Store) Users() repository.UserRepository             { return userRepo{s.st} }
func (s *Store) Courses() repository.CourseRepository         { return courseRepo{s.st} }
func (s *Store) Grades() repository.GradeRepository           { return gradeRepo{s.st} }
func (s *Store) Enrollments() repository.EnrollmentRepository { return enrollmentRepo{s.st} }
func (s *Store) Submissions() repository.SubmissionRepository { return submissionRepo{s.st} }
func (s *Store) Letters() repository.LetterRepository         { return letterRepo{s.st} }
func (s *Store) Internships() repository.InternshipRepository { return internshipRepo{s.st} }
func (s *Store) Theses() repository.ThesisRepository          { return thesisRepo{s.st} }
func (s *Store) Materials() repository.MaterialRepository     { return materialRepo{s.st} }
func (s *Store) Videos() repository.VideoRepository           { return videoRepo{s.st} }
func (s *Store) Forum() repository.ForumRepository            { return forumRepo{s.st} }
func (s *Store) Schedules() repository.ScheduleRepository     { return scheduleRepo{s.st} }
func (s *Store) Settings() repository.SettingRepository       { return settingRepo{s.st} }

// WithTx serializes transactions and restores a snapshot when fn fails.
// Reads outside a transaction may observe its uncommitted writes.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	s.st.mu.RLock()
	snapshot := s.st.d.clone()
	s.st.mu.RUnlock()

	restore := func() {
		s.st.mu.Lock()
		s.st.d = snapshot
		s.st.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		restore()
		return err
	}
	return nil
}

func (st *state) read(fn func(d *data)) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	fn(st.d)
}

func (st *state) write(fn func(d *data) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return fn(st.d)
}

func containsInt(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// paginate applies limit/offset the way SQL LIMIT/OFFSET does.
func paginate[T any](rows []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func sortBy[T any](rows []T, less func(a, b T) bool) {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}
