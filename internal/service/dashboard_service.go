package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/academic"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

const (
	recentSubmissionLimit      = 5
	adminRecentSubmissionLimit = 10
)

// StudentDashboard is the landing view of a student.
type StudentDashboard struct {
	CumulativeGPA     float64                    `json:"cumulative_gpa"`
	TotalWeight       float64                    `json:"total_weight"`
	Semesters         []academic.SemesterSummary `json:"semesters"`
	RecentSubmissions []model.SubmissionSummary  `json:"recent_submissions"`
}

// LecturerDashboard is the landing view of a lecturer.
type LecturerDashboard struct {
	Courses            []model.Course `json:"courses"`
	PendingSubmissions int            `json:"pending_submissions"`
	GradedStudents     int            `json:"graded_students"`
	Advisees           int            `json:"advisees"`
}

// CourseReport counts the activity of one course.
type CourseReport struct {
	Course          model.Course `json:"course"`
	StudentCount    int          `json:"student_count"`
	SubmissionCount int          `json:"submission_count"`
}

// AdminDashboard is the landing view of an admin.
type AdminDashboard struct {
	UsersByRole       map[model.Role]int        `json:"users_by_role"`
	TotalUsers        int                       `json:"total_users"`
	TotalCourses      int                       `json:"total_courses"`
	TotalSubmissions  int                       `json:"total_submissions"`
	PendingKRS        int                       `json:"pending_krs"`
	Courses           []CourseReport            `json:"courses"`
	RecentSubmissions []model.SubmissionSummary `json:"recent_submissions"`
}

// DashboardService assembles the role-specific landing data.
type DashboardService struct {
	store       repository.Store
	submissions *SubmissionService
	log         zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(store repository.Store, submissions *SubmissionService, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		store:       store,
		submissions: submissions,
		log:         log.With().Str("component", "dashboard_service").Logger(),
	}
}

// For returns the dashboard matching the actor's role.
func (s *DashboardService) For(ctx context.Context, actor Actor) (any, error) {
	switch actor.Role {
	case model.RoleStudent:
		return s.Student(ctx, actor)
	case model.RoleLecturer:
		return s.Lecturer(ctx, actor)
	case model.RoleAdmin:
		return s.Admin(ctx, actor)
	}
	return nil, forbiddenErr("dashboard")
}

// Student summarizes grades and the latest submissions.
func (s *DashboardService) Student(ctx context.Context, actor Actor) (*StudentDashboard, error) {
	const op = "dashboard.student"
	if err := authorize(op, actor, studentOnly...); err != nil {
		return nil, err
	}
	grades, err := s.store.Grades().List(ctx, repository.GradeFilter{StudentID: actor.ID})
	if err != nil {
		return nil, storeErr(op, "Nilai", err)
	}
	summary := academic.Aggregate(grades)

	recent, err := s.submissions.ListForStudent(ctx, actor, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(recent) > recentSubmissionLimit {
		recent = recent[:recentSubmissionLimit]
	}

	return &StudentDashboard{
		CumulativeGPA:     summary.CumulativeGPA,
		TotalWeight:       summary.TotalWeight,
		Semesters:         summary.Semesters,
		RecentSubmissions: recent,
	}, nil
}

// Lecturer summarizes taught courses and outstanding work.
func (s *DashboardService) Lecturer(ctx context.Context, actor Actor) (*LecturerDashboard, error) {
	const op = "dashboard.lecturer"
	if err := authorize(op, actor, model.RoleLecturer); err != nil {
		return nil, err
	}
	courses, _, err := s.store.Courses().List(ctx, repository.CourseFilter{LecturerID: actor.ID})
	if err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	if courses == nil {
		courses = []model.Course{}
	}
	ids := make([]int, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	out := &LecturerDashboard{Courses: courses}
	if len(ids) > 0 {
		for _, id := range ids {
			pending, err := s.store.Submissions().List(ctx, repository.SubmissionFilter{CourseID: id, Status: model.StatusPending})
			if err != nil {
				return nil, storeErr(op, "Tugas", err)
			}
			out.PendingSubmissions += len(pending)
		}
		grades, err := s.store.Grades().List(ctx, repository.GradeFilter{CourseIDs: ids})
		if err != nil {
			return nil, storeErr(op, "Nilai", err)
		}
		students := map[int]bool{}
		for _, g := range grades {
			students[g.StudentID] = true
		}
		out.GradedStudents = len(students)
	}

	_, advisees, err := s.store.Users().List(ctx, repository.UserFilter{Role: model.RoleStudent, AdvisorID: actor.ID, Limit: 1})
	if err != nil {
		return nil, storeErr(op, "Pengguna", err)
	}
	out.Advisees = advisees
	return out, nil
}

// Admin counts the main records of the system and reports per-course activity.
func (s *DashboardService) Admin(ctx context.Context, actor Actor) (*AdminDashboard, error) {
	const op = "dashboard.admin"
	if err := authorize(op, actor, adminOnly...); err != nil {
		return nil, err
	}
	out, err := s.admin(ctx, op)
	if err != nil && IsInternal(err) {
		s.log.Error().Err(err).Str("op", op).Msg("failed to build admin dashboard")
	}
	return out, err
}

func (s *DashboardService) admin(ctx context.Context, op string) (*AdminDashboard, error) {
	out := &AdminDashboard{UsersByRole: map[model.Role]int{}}
	for _, role := range anyRole {
		n, err := s.store.Users().CountByRole(ctx, role)
		if err != nil {
			return nil, storeErr(op, "Pengguna", err)
		}
		out.UsersByRole[role] = n
		out.TotalUsers += n
	}

	courses, total, err := s.store.Courses().List(ctx, repository.CourseFilter{})
	if err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	out.TotalCourses = total

	all, err := s.submissions.collect(ctx, op, repository.SubmissionFilter{})
	if err != nil {
		return nil, err
	}
	out.TotalSubmissions = len(all)
	recent := all
	if len(recent) > adminRecentSubmissionLimit {
		recent = recent[:adminRecentSubmissionLimit]
	}
	out.RecentSubmissions = recent

	out.Courses = make([]CourseReport, 0, len(courses))
	for _, c := range courses {
		grades, err := s.store.Grades().List(ctx, repository.GradeFilter{CourseID: c.ID})
		if err != nil {
			return nil, storeErr(op, "Nilai", err)
		}
		students := map[int]bool{}
		for _, g := range grades {
			students[g.StudentID] = true
		}
		subs, err := s.store.Submissions().List(ctx, repository.SubmissionFilter{CourseID: c.ID})
		if err != nil {
			return nil, storeErr(op, "Tugas", err)
		}
		out.Courses = append(out.Courses, CourseReport{Course: c, StudentCount: len(students), SubmissionCount: len(subs)})
	}
	sort.SliceStable(out.Courses, func(i, j int) bool { return out.Courses[i].Course.Code < out.Courses[j].Course.Code })

	pending, err := s.store.Enrollments().List(ctx, repository.EnrollmentFilter{Status: model.StatusPending})
	if err != nil {
		return nil, storeErr(op, "KRS", err)
	}
	out.PendingKRS = len(pending)
	return out, nil
}
