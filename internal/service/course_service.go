package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
	"github.com/stemsi/siakad-backend/internal/response"
)

// CourseQuery filters and pages course listings.
type CourseQuery struct {
	Search     string
	Semester   int
	LecturerID int
	Page       int
	PerPage    int
}

// CourseService manages the course catalog.
type CourseService struct {
	store repository.Store
	log   zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(store repository.Store, log zerolog.Logger) *CourseService {
	return &CourseService{
		store: store,
		log:   log.With().Str("component", "course_service").Logger(),
	}
}

// Create adds a course. Codes are unique.
func (s *CourseService) Create(ctx context.Context, actor Actor, req model.CourseRequest) (*model.Course, error) {
	const op = "course.create"
	if err := authorize(op, actor, adminOnly...); err != nil {
		return nil, err
	}

	c, err := s.fromRequest(ctx, op, req)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Courses().GetByCode(ctx, c.Code); err == nil {
		return nil, codeTaken(op)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr(op, "Mata kuliah", err)
	}

	if err := s.store.Courses().Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, codeTaken(op)
		}
		s.log.Error().Err(err).Str("code", c.Code).Msg("failed to create course")
		return nil, storeErr(op, "Mata kuliah", err)
	}
	s.log.Info().Int("course_id", c.ID).Str("code", c.Code).Msg("course created")
	return c, nil
}

// Update replaces every editable field of a course.
func (s *CourseService) Update(ctx context.Context, actor Actor, id int, req model.CourseRequest) (*model.Course, error) {
	const op = "course.update"
	if err := authorize(op, actor, adminOnly...); err != nil {
		return nil, err
	}

	existing, err := s.store.Courses().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	c, err := s.fromRequest(ctx, op, req)
	if err != nil {
		return nil, err
	}
	if other, err := s.store.Courses().GetByCode(ctx, c.Code); err == nil && other.ID != id {
		return nil, codeTaken(op)
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr(op, "Mata kuliah", err)
	}

	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	if err := s.store.Courses().Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, codeTaken(op)
		}
		s.log.Error().Err(err).Int("course_id", id).Msg("failed to update course")
		return nil, storeErr(op, "Mata kuliah", err)
	}
	return c, nil
}

// Delete removes a course that has no grades, KRS rows, or submissions.
func (s *CourseService) Delete(ctx context.Context, actor Actor, id int) error {
	const op = "course.delete"
	if err := authorize(op, actor, adminOnly...); err != nil {
		return err
	}
	if err := s.store.Courses().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return conflictErr(op, "Mata kuliah masih memiliki nilai, KRS, atau tugas")
		}
		return storeErr(op, "Mata kuliah", err)
	}
	s.log.Info().Int("course_id", id).Int("by", actor.ID).Msg("course deleted")
	return nil
}

// Get returns one course.
func (s *CourseService) Get(ctx context.Context, id int) (*model.Course, error) {
	c, err := s.store.Courses().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("course.get", "Mata kuliah", err)
	}
	return c, nil
}

// List pages through the catalog, searching name and code.
func (s *CourseService) List(ctx context.Context, q CourseQuery) ([]model.Course, *response.Pagination, error) {
	page, perPage, limit, offset := pageWindow(q.Page, q.PerPage)
	courses, total, err := s.store.Courses().List(ctx, repository.CourseFilter{
		Search:     strings.TrimSpace(q.Search),
		Semester:   q.Semester,
		LecturerID: q.LecturerID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, nil, storeErr("course.list", "Mata kuliah", err)
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, newPagination(page, perPage, total), nil
}

// Teaching lists every course taught by a lecturer.
func (s *CourseService) Teaching(ctx context.Context, lecturerID int) ([]model.Course, error) {
	courses, _, err := s.store.Courses().List(ctx, repository.CourseFilter{LecturerID: lecturerID})
	if err != nil {
		return nil, storeErr("course.teaching", "Mata kuliah", err)
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

func (s *CourseService) fromRequest(ctx context.Context, op string, req model.CourseRequest) (*model.Course, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, validationErr(op, "Kode dan nama mata kuliah wajib diisi")
	}
	if req.Credits <= 0 {
		return nil, fieldErr(op, "credits", "SKS harus lebih dari 0")
	}
	if req.Semester <= 0 {
		return nil, fieldErr(op, "semester", "Semester harus lebih dari 0")
	}

	lecturer, err := s.store.Users().GetByNIM(ctx, strings.TrimSpace(req.LecturerNIM))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr(op, "Dosen tidak ditemukan")
		}
		return nil, storeErr(op, "Dosen", err)
	}
	if lecturer.Role != model.RoleLecturer {
		return nil, fieldErr(op, "lecturer_nim", "Pengampu harus berperan dosen")
	}

	return &model.Course{
		Code:       code,
		Name:       name,
		Credits:    req.Credits,
		Semester:   req.Semester,
		LecturerID: lecturer.ID,
	}, nil
}

func codeTaken(op string) error {
	return &Error{Op: op, Kind: ErrConflict, Message: "Kode mata kuliah sudah digunakan",
		Fields: map[string]string{"code": "Kode mata kuliah sudah digunakan"}}
}
