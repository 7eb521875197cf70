package repository

import (
	"context"
	"errors"

	"github.com/stemsi/siakad-backend/internal/model"
)

// Storage-level errors. Every Store implementation maps its driver errors
// onto these so callers never import a driver package.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrReferenced = errors.New("record is still referenced")
)

// Store is the record store of the academic engine.
type Store interface {
	Users() UserRepository
	Courses() CourseRepository
	Grades() GradeRepository
	Enrollments() EnrollmentRepository
	Submissions() SubmissionRepository
	Letters() LetterRepository
	Internships() InternshipRepository
	Theses() ThesisRepository
	Materials() MaterialRepository
	Videos() VideoRepository
	Forum() ForumRepository
	Schedules() ScheduleRepository
	Settings() SettingRepository

	// WithTx runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithTx on a Store that is already transactional reuses it.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// UserFilter narrows user listings. Zero values mean "any".
type UserFilter struct {
	Role      model.Role
	AdvisorID int
	Search    string
	Limit     int
	Offset    int
}

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByNIM(ctx context.Context, nim string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, f UserFilter) ([]model.User, int, error)
	CountByRole(ctx context.Context, role model.Role) (int, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int) error
}

// CourseFilter narrows course listings. Zero values mean "any".
type CourseFilter struct {
	Search     string
	Semester   int
	LecturerID int
	Limit      int
	Offset     int
}

type CourseRepository interface {
	GetByID(ctx context.Context, id int) (*model.Course, error)
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	GetByIDs(ctx context.Context, ids []int) ([]model.Course, error)
	List(ctx context.Context, f CourseFilter) ([]model.Course, int, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id int) error
}

// GradeFilter narrows grade listings. Zero values mean "any".
type GradeFilter struct {
	StudentID int
	CourseID  int
	CourseIDs []int
}

type GradeRepository interface {
	List(ctx context.Context, f GradeFilter) ([]model.Grade, error)
	Create(ctx context.Context, g *model.Grade) error
}

// EnrollmentFilter narrows KRS listings. Zero values mean "any".
type EnrollmentFilter struct {
	StudentID    int
	StudentIDs   []int
	CourseID     int
	Semester     int
	AcademicYear string
	Status       model.Status
}

type EnrollmentRepository interface {
	GetByID(ctx context.Context, id int) (*model.Enrollment, error)
	List(ctx context.Context, f EnrollmentFilter) ([]model.Enrollment, error)
	Create(ctx context.Context, e *model.Enrollment) error
	// DeleteByPeriod removes every KRS row of a student for one period.
	DeleteByPeriod(ctx context.Context, studentID, semester int, academicYear string) (int64, error)
	Review(ctx context.Context, id int, r model.Review) error
}

// SubmissionFilter narrows submission-family listings. Zero values mean "any".
// Results are ordered newest first.
type SubmissionFilter struct {
	StudentID int
	CourseID  int
	Status    model.Status
}

type SubmissionRepository interface {
	GetByID(ctx context.Context, id int) (*model.Submission, error)
	List(ctx context.Context, f SubmissionFilter) ([]model.Submission, error)
	Create(ctx context.Context, s *model.Submission) error
	Review(ctx context.Context, id int, r model.Review) error
}

type LetterRepository interface {
	GetByID(ctx context.Context, id int) (*model.LetterSubmission, error)
	List(ctx context.Context, f SubmissionFilter) ([]model.LetterSubmission, error)
	Create(ctx context.Context, l *model.LetterSubmission) error
	Review(ctx context.Context, id int, r model.Review) error
}

type InternshipRepository interface {
	GetByID(ctx context.Context, id int) (*model.InternshipApplication, error)
	List(ctx context.Context, f SubmissionFilter) ([]model.InternshipApplication, error)
	Create(ctx context.Context, a *model.InternshipApplication) error
	Review(ctx context.Context, id int, r model.Review) error
}

type ThesisRepository interface {
	GetByID(ctx context.Context, id int) (*model.ThesisApplication, error)
	List(ctx context.Context, f SubmissionFilter) ([]model.ThesisApplication, error)
	Create(ctx context.Context, a *model.ThesisApplication) error
	Review(ctx context.Context, id int, r model.Review) error
}

// MaterialRepository lists ordered by week, then upload time.
type MaterialRepository interface {
	GetByID(ctx context.Context, id int) (*model.Material, error)
	ListByCourse(ctx context.Context, courseID int) ([]model.Material, error)
	Create(ctx context.Context, m *model.Material) error
	Delete(ctx context.Context, id int) error
}

// VideoRepository lists ordered by week, then upload time.
type VideoRepository interface {
	GetByID(ctx context.Context, id int) (*model.Video, error)
	ListByCourse(ctx context.Context, courseID int) ([]model.Video, error)
	Create(ctx context.Context, v *model.Video) error
	Delete(ctx context.Context, id int) error

	GetWatch(ctx context.Context, studentID, videoID int) (*model.VideoWatch, error)
	ListWatches(ctx context.Context, studentID int) ([]model.VideoWatch, error)
	// UpsertWatch inserts or replaces the (student, video) progress row.
	UpsertWatch(ctx context.Context, w *model.VideoWatch) error
}

type ForumRepository interface {
	GetPost(ctx context.Context, id int) (*model.ForumPost, error)
	// ListPosts returns newest first. courseID 0 lists every course.
	ListPosts(ctx context.Context, courseID int) ([]model.ForumPost, error)
	CreatePost(ctx context.Context, p *model.ForumPost) error
	// ListReplies returns oldest first.
	ListReplies(ctx context.Context, postID int) ([]model.ForumReply, error)
	CreateReply(ctx context.Context, r *model.ForumReply) error
	IncrementReplies(ctx context.Context, postID int) error
}

// ScheduleFilter narrows schedule listings. Zero values mean "any".
type ScheduleFilter struct {
	Semester     int
	AcademicYear string
	Day          string
	CourseIDs    []int
}

type ScheduleRepository interface {
	List(ctx context.Context, f ScheduleFilter) ([]model.Schedule, error)
	Create(ctx context.Context, s *model.Schedule) error
	Delete(ctx context.Context, id int) error
}

type SettingRepository interface {
	GetAll(ctx context.Context) ([]model.AppSetting, error)
	GetByKey(ctx context.Context, key string) (*model.AppSetting, error)
	Upsert(ctx context.Context, key, value string) error
}
