package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/academic"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

// EnrollmentQuery filters KRS listings. Zero values mean "any".
type EnrollmentQuery struct {
	StudentID    int
	CourseID     int
	Semester     int
	AcademicYear string
	Status       model.Status
}

// EnrollmentService runs the KRS workflow.
type EnrollmentService struct {
	store    repository.Store
	settings *SettingService
	log      zerolog.Logger
	now      func() time.Time
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(store repository.Store, settings *SettingService, log zerolog.Logger) *EnrollmentService {
	return &EnrollmentService{
		store:    store,
		settings: settings,
		log:      log.With().Str("component", "enrollment_service").Logger(),
		now:      time.Now,
	}
}

// Submit replaces the student's KRS for one period with the given courses.
// Either every old row is replaced or nothing changes.
func (s *EnrollmentService) Submit(ctx context.Context, actor Actor, req model.SubmitEnrollmentRequest) ([]model.Enrollment, error) {
	const op = "krs.submit"
	if err := authorize(op, actor, studentOnly...); err != nil {
		return nil, err
	}

	ids := uniqueIDs(req.CourseIDs)
	if len(ids) == 0 {
		return nil, fieldErr(op, "course_ids", "Pilih minimal satu mata kuliah")
	}

	semester, year := req.Semester, strings.TrimSpace(req.AcademicYear)
	if semester == 0 || year == "" {
		curSem, curYear := s.settings.CurrentPeriod(ctx)
		if semester == 0 {
			semester = curSem
		}
		if year == "" {
			year = curYear
		}
	}
	if semester < 1 {
		return nil, fieldErr(op, "semester", "Semester tidak valid")
	}
	if !academic.ValidAcademicYear(year) {
		return nil, fieldErr(op, "academic_year", "Tahun ajaran harus berformat YYYY/YYYY")
	}

	var rows []model.Enrollment
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		courses, err := tx.Courses().GetByIDs(ctx, ids)
		if err != nil {
			return storeErr(op, "Mata kuliah", err)
		}
		if len(courses) != len(ids) {
			return notFoundErr(op, "Beberapa mata kuliah tidak ditemukan")
		}

		if _, err := tx.Enrollments().DeleteByPeriod(ctx, actor.ID, semester, year); err != nil {
			return storeErr(op, "KRS", err)
		}
		rows = make([]model.Enrollment, 0, len(ids))
		for _, id := range ids {
			e := model.Enrollment{
				StudentID:    actor.ID,
				CourseID:     id,
				Semester:     semester,
				AcademicYear: year,
				Status:       model.StatusPending,
			}
			if err := tx.Enrollments().Create(ctx, &e); err != nil {
				return storeErr(op, "KRS", err)
			}
			rows = append(rows, e)
		}
		return nil
	})
	if err != nil {
		if IsInternal(err) {
			s.log.Error().Err(err).Int("student_id", actor.ID).Msg("krs submission rolled back")
		}
		return nil, err
	}

	s.log.Info().Int("student_id", actor.ID).Int("semester", semester).Str("academic_year", year).
		Int("courses", len(rows)).Msg("krs submitted")
	return rows, nil
}

// List returns KRS rows. Students only ever see their own.
func (s *EnrollmentService) List(ctx context.Context, actor Actor, q EnrollmentQuery) ([]model.Enrollment, error) {
	const op = "krs.list"
	if err := authorize(op, actor, anyRole...); err != nil {
		return nil, err
	}
	if actor.IsStudent() {
		if q.StudentID != 0 && q.StudentID != actor.ID {
			return nil, forbiddenErr(op)
		}
		q.StudentID = actor.ID
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, fieldErr(op, "status", "Status tidak dikenal")
	}

	rows, err := s.store.Enrollments().List(ctx, repository.EnrollmentFilter{
		StudentID:    q.StudentID,
		CourseID:     q.CourseID,
		Semester:     q.Semester,
		AcademicYear: q.AcademicYear,
		Status:       q.Status,
	})
	if err != nil {
		return nil, storeErr(op, "KRS", err)
	}
	if rows == nil {
		rows = []model.Enrollment{}
	}
	return rows, nil
}

// Review moves a pending KRS row to approved or rejected.
func (s *EnrollmentService) Review(ctx context.Context, actor Actor, id int, status model.Status) (*model.Enrollment, error) {
	const op = "krs.review"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return nil, err
	}
	if !status.Terminal() {
		return nil, fieldErr(op, "status", "Status harus approved atau rejected")
	}

	var out *model.Enrollment
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		e, err := tx.Enrollments().GetByID(ctx, id)
		if err != nil {
			return storeErr(op, "KRS", err)
		}
		if err := academic.CheckTransition(e.Status, status, academic.Strict); err != nil {
			return storeErr(op, "KRS", err)
		}
		if err := tx.Enrollments().Review(ctx, id, model.Review{
			Status:     status,
			ReviewerID: actor.ID,
			ReviewedAt: s.now(),
		}); err != nil {
			return storeErr(op, "KRS", err)
		}
		out, err = tx.Enrollments().GetByID(ctx, id)
		return storeErr(op, "KRS", err)
	})
	if err != nil {
		if IsInternal(err) {
			s.log.Error().Err(err).Int("krs_id", id).Msg("failed to review krs")
		}
		return nil, err
	}
	s.log.Info().Int("krs_id", id).Str("status", string(status)).Int("by", actor.ID).Msg("krs reviewed")
	return out, nil
}

// Pending lists KRS rows awaiting review. Lecturers see rows for the
// courses they teach and for the students they advise.
func (s *EnrollmentService) Pending(ctx context.Context, actor Actor) ([]model.Enrollment, error) {
	const op = "krs.pending"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return nil, err
	}

	rows, err := s.store.Enrollments().List(ctx, repository.EnrollmentFilter{Status: model.StatusPending})
	if err != nil {
		return nil, storeErr(op, "KRS", err)
	}
	if actor.IsAdmin() {
		if rows == nil {
			rows = []model.Enrollment{}
		}
		return rows, nil
	}

	courses, _, err := s.store.Courses().List(ctx, repository.CourseFilter{LecturerID: actor.ID})
	if err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	advisees, _, err := s.store.Users().List(ctx, repository.UserFilter{Role: model.RoleStudent, AdvisorID: actor.ID})
	if err != nil {
		return nil, storeErr(op, "Pengguna", err)
	}
	taught := make(map[int]bool, len(courses))
	for _, c := range courses {
		taught[c.ID] = true
	}
	advised := make(map[int]bool, len(advisees))
	for _, u := range advisees {
		advised[u.ID] = true
	}

	out := []model.Enrollment{}
	for _, e := range rows {
		if taught[e.CourseID] || advised[e.StudentID] {
			out = append(out, e)
		}
	}
	return out, nil
}

// uniqueIDs drops duplicates, keeping first occurrence order. Non-positive
// ids are kept so they fail to resolve like any other unknown id.
func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
