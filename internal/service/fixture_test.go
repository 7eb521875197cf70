package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/siakad-backend/internal/config"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository/memory"
	"github.com/stemsi/siakad-backend/internal/session"
	"github.com/stemsi/siakad-backend/internal/storage"
)

// fakeFiles records saves instead of touching the filesystem.
type fakeFiles struct {
	mu    sync.Mutex
	saved []string
	err   error
	mime  string
}

func (f *fakeFiles) Save(_ context.Context, dir, name string, up storage.Upload) (storage.Saved, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return storage.Saved{}, f.err
	}
	body, _ := io.ReadAll(up.Content)
	f.saved = append(f.saved, dir+"/"+name)
	mime := f.mime
	if mime == "" {
		mime = "application/pdf"
	}
	return storage.Saved{Path: "/uploads/" + dir + "/" + name, MIME: mime, Size: int64(len(body))}, nil
}

func upload(name string) *storage.Upload {
	return &storage.Upload{Filename: name, Size: 4, Content: strings.NewReader("%PDF")}
}

// clock hands out strictly increasing times.
type clock struct {
	mu  sync.Mutex
	cur time.Time
}

func newClock() *clock {
	return &clock{cur: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Minute)
	return c.cur
}

type fixture struct {
	ctx   context.Context
	cfg   *config.Config
	store *memory.Store
	files *fakeFiles
	clock *clock

	auth        *AuthService
	users       *UserService
	courses     *CourseService
	grades      *GradeService
	settings    *SettingService
	enrollments *EnrollmentService
	submissions *SubmissionService
	elearning   *ELearningService
	forum       *ForumService
	schedules   *ScheduleService
	dashboard   *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	cfg := &config.Config{
		JWTSecret:           "test-secret",
		JWTExpiry:           time.Hour,
		BcryptCost:          bcrypt.MinCost,
		DefaultSemester:     1,
		DefaultAcademicYear: "2025/2026",
	}
	store := memory.New()
	files := &fakeFiles{}
	clk := newClock()

	f := &fixture{ctx: context.Background(), cfg: cfg, store: store, files: files, clock: clk}
	f.auth = NewAuthService(cfg, store, session.NewMemoryRegistry(), log)
	f.users = NewUserService(store, f.auth, log)
	f.courses = NewCourseService(store, log)
	f.grades = NewGradeService(store, log)
	f.settings = NewSettingService(store, cfg, log)
	f.enrollments = NewEnrollmentService(store, f.settings, log)
	f.submissions = NewSubmissionService(store, files, log)
	f.submissions.now = clk.now
	f.elearning = NewELearningService(store, files, log)
	f.elearning.now = clk.now
	f.forum = NewForumService(store, log)
	f.schedules = NewScheduleService(store, f.settings, log)
	f.dashboard = NewDashboardService(store, f.submissions, log)
	return f
}

// seedUser inserts an account directly with password "password".
func (f *fixture) seedUser(t *testing.T, nim string, role model.Role) Actor {
	t.Helper()
	hash, err := f.auth.HashPassword("password")
	require.NoError(t, err)
	u := &model.User{
		NIM:          nim,
		Name:         "User " + nim,
		Email:        strings.ToLower(nim) + "@kampus.ac.id",
		PasswordHash: hash,
		StudyProgram: "Informatika",
		Role:         role,
	}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return Actor{ID: u.ID, Role: role}
}

func (f *fixture) seedCourse(t *testing.T, code string, lecturer Actor, credits, semester int) model.Course {
	t.Helper()
	c := &model.Course{Code: code, Name: "Kuliah " + code, Credits: credits, Semester: semester, LecturerID: lecturer.ID}
	require.NoError(t, f.store.Courses().Create(f.ctx, c))
	return *c
}

func ptr[T any](v T) *T { return &v }
