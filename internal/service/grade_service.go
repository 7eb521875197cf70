package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/academic"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/report"
	"github.com/stemsi/siakad-backend/internal/repository"
)

const defaultInstitutionName = "SIAKAD"

// GradeService records grades and serves the aggregated views built on them.
type GradeService struct {
	store repository.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewGradeService creates a new GradeService.
func NewGradeService(store repository.Store, log zerolog.Logger) *GradeService {
	return &GradeService{
		store: store,
		log:   log.With().Str("component", "grade_service").Logger(),
		now:   time.Now,
	}
}

// Record stores a grade. Lecturers may only grade courses they teach.
func (s *GradeService) Record(ctx context.Context, actor Actor, req model.GradeRequest) (*model.Grade, error) {
	const op = "grade.record"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return nil, err
	}
	if req.Score == nil {
		return nil, fieldErr(op, "score", "Nilai wajib diisi")
	}
	if *req.Score < 0 || *req.Score > 100 {
		return nil, fieldErr(op, "score", "Nilai harus antara 0 dan 100")
	}
	if req.Weight != nil && *req.Weight < 0 {
		return nil, fieldErr(op, "weight", "Bobot tidak boleh negatif")
	}

	course, err := s.store.Courses().GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	if actor.IsLecturer() && course.LecturerID != actor.ID {
		return nil, forbiddenErr(op)
	}

	student, err := s.store.Users().GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, storeErr(op, "Mahasiswa", err)
	}
	if student.Role != model.RoleStudent {
		return nil, fieldErr(op, "student_id", "Nilai hanya dapat diberikan kepada mahasiswa")
	}

	g := &model.Grade{
		StudentID: student.ID,
		CourseID:  course.ID,
		Score:     *req.Score,
		Weight:    float64(course.Credits),
		Letter:    strings.ToUpper(strings.TrimSpace(req.Letter)),
		Semester:  course.Semester,
	}
	if req.Weight != nil {
		g.Weight = *req.Weight
	}
	if g.Letter == "" {
		g.Letter = academic.LetterFor(g.Score)
	}
	if req.Semester != nil {
		g.Semester = *req.Semester
	}

	if err := s.store.Grades().Create(ctx, g); err != nil {
		s.log.Error().Err(err).Int("student_id", g.StudentID).Int("course_id", g.CourseID).Msg("failed to record grade")
		return nil, storeErr(op, "Nilai", err)
	}
	s.log.Info().Int("grade_id", g.ID).Int("student_id", g.StudentID).Int("by", actor.ID).Msg("grade recorded")
	return g, nil
}

// ListForStudent returns every grade row of a student ordered by semester.
func (s *GradeService) ListForStudent(ctx context.Context, actor Actor, studentID int) ([]model.Grade, error) {
	const op = "grade.list"
	if err := canViewStudent(op, actor, studentID); err != nil {
		return nil, err
	}
	return s.grades(ctx, op, studentID)
}

// ListForCourse returns every grade of a course to its lecturer or an admin.
func (s *GradeService) ListForCourse(ctx context.Context, actor Actor, courseID int) ([]model.Grade, error) {
	const op = "grade.list_course"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return nil, err
	}
	course, err := s.store.Courses().GetByID(ctx, courseID)
	if err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	if actor.IsLecturer() && course.LecturerID != actor.ID {
		return nil, forbiddenErr(op)
	}
	grades, err := s.store.Grades().List(ctx, repository.GradeFilter{CourseID: courseID})
	if err != nil {
		return nil, storeErr(op, "Nilai", err)
	}
	if grades == nil {
		grades = []model.Grade{}
	}
	return grades, nil
}

// Summary aggregates the IP per semester, IPK, and total SKS of a student.
func (s *GradeService) Summary(ctx context.Context, actor Actor, studentID int) (academic.Summary, error) {
	const op = "grade.summary"
	if err := canViewStudent(op, actor, studentID); err != nil {
		return academic.Summary{}, err
	}
	if _, err := s.store.Users().GetByID(ctx, studentID); err != nil {
		return academic.Summary{}, storeErr(op, "Mahasiswa", err)
	}
	grades, err := s.grades(ctx, op, studentID)
	if err != nil {
		return academic.Summary{}, err
	}
	return academic.Aggregate(grades), nil
}

// Transcript assembles everything a report renderer needs for a student.
func (s *GradeService) Transcript(ctx context.Context, actor Actor, studentID int) (report.Transcript, error) {
	const op = "grade.transcript"
	if err := canViewStudent(op, actor, studentID); err != nil {
		return report.Transcript{}, err
	}

	student, err := s.store.Users().GetByID(ctx, studentID)
	if err != nil {
		return report.Transcript{}, storeErr(op, "Mahasiswa", err)
	}
	grades, err := s.grades(ctx, op, studentID)
	if err != nil {
		return report.Transcript{}, err
	}

	ids := make([]int, 0, len(grades))
	for _, g := range grades {
		ids = append(ids, g.CourseID)
	}
	courses, err := s.store.Courses().GetByIDs(ctx, ids)
	if err != nil {
		return report.Transcript{}, storeErr(op, "Mata kuliah", err)
	}
	byID := make(map[int]model.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	return report.Transcript{
		InstitutionName: institutionName(ctx, s.store),
		Student:         *student,
		Summary:         academic.Aggregate(grades),
		Courses:         byID,
		GeneratedAt:     s.now(),
	}, nil
}

func (s *GradeService) grades(ctx context.Context, op string, studentID int) ([]model.Grade, error) {
	grades, err := s.store.Grades().List(ctx, repository.GradeFilter{StudentID: studentID})
	if err != nil {
		return nil, storeErr(op, "Nilai", err)
	}
	if grades == nil {
		grades = []model.Grade{}
	}
	return grades, nil
}

// canViewStudent allows the student themself and any staff member.
func canViewStudent(op string, actor Actor, studentID int) error {
	if err := authorize(op, actor, anyRole...); err != nil {
		return err
	}
	if actor.IsStudent() && actor.ID != studentID {
		return forbiddenErr(op)
	}
	return nil
}

func institutionName(ctx context.Context, store repository.Store) string {
	setting, err := store.Settings().GetByKey(ctx, model.SettingSystemName)
	if err != nil || strings.TrimSpace(setting.Value) == "" {
		return defaultInstitutionName
	}
	return setting.Value
}
