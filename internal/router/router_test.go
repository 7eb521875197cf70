package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/siakad-backend/internal/config"
	"github.com/stemsi/siakad-backend/internal/handler"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/report"
	"github.com/stemsi/siakad-backend/internal/repository/memory"
	"github.com/stemsi/siakad-backend/internal/service"
	"github.com/stemsi/siakad-backend/internal/session"
	"github.com/stemsi/siakad-backend/internal/storage"
	"github.com/stemsi/siakad-backend/internal/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	os.Exit(m.Run())
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	store  *memory.Store
	auth   *service.AuthService
	down   bool
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	cfg := &config.Config{
		GinMode:             gin.TestMode,
		JWTSecret:           "router-test",
		JWTExpiry:           time.Hour,
		BcryptCost:          bcrypt.MinCost,
		UploadDir:           t.TempDir(),
		MaxUploadBytes:      1 << 20,
		DefaultSemester:     1,
		DefaultAcademicYear: "2025/2026",
		LoginRatePerMinute:  100,
	}
	store := memory.New()
	files := storage.NewLocal(cfg.UploadDir, cfg.MaxUploadBytes)

	authService := service.NewAuthService(cfg, store, session.NewMemoryRegistry(), log)
	userService := service.NewUserService(store, authService, log)
	settingService := service.NewSettingService(store, cfg, log)
	submissionService := service.NewSubmissionService(store, files, log)

	ts := &testServer{t: t, store: store, auth: authService}
	handlers := &Handlers{
		Auth:       handler.NewAuthHandler(authService, userService),
		User:       handler.NewUserHandler(userService),
		Course:     handler.NewCourseHandler(service.NewCourseService(store, log)),
		Grade:      handler.NewGradeHandler(service.NewGradeService(store, log), report.XLSXRenderer{}),
		Enrollment: handler.NewEnrollmentHandler(service.NewEnrollmentService(store, settingService, log)),
		Submission: handler.NewSubmissionHandler(submissionService),
		ELearning:  handler.NewELearningHandler(service.NewELearningService(store, files, log)),
		Forum:      handler.NewForumHandler(service.NewForumService(store, log)),
		Schedule:   handler.NewScheduleHandler(service.NewScheduleService(store, settingService, log)),
		Setting:    handler.NewSettingHandler(settingService),
		Dashboard:  handler.NewDashboardHandler(service.NewDashboardService(store, submissionService, log)),
		System: handler.NewSystemHandler(map[string]func(context.Context) error{
			"database": func(context.Context) error {
				if ts.down {
					return errors.New("connection refused")
				}
				return nil
			},
		}, log),
	}
	ts.engine = SetupRouter(authService, handlers, cfg, log)
	return ts
}

func (ts *testServer) seedUser(nim string, role model.Role) model.User {
	ts.t.Helper()
	hash, err := ts.auth.HashPassword("password")
	require.NoError(ts.t, err)
	u := &model.User{
		NIM:          nim,
		Name:         "User " + nim,
		Email:        strings.ToLower(nim) + "@kampus.ac.id",
		PasswordHash: hash,
		StudyProgram: "Informatika",
		Role:         role,
	}
	require.NoError(ts.t, ts.store.Users().Create(context.Background(), u))
	return *u
}

func (ts *testServer) seedCourse(code string, lecturerID int) model.Course {
	ts.t.Helper()
	c := &model.Course{Code: code, Name: "Kuliah " + code, Credits: 3, Semester: 1, LecturerID: lecturerID}
	require.NoError(ts.t, ts.store.Courses().Create(context.Background(), c))
	return *c
}

func (ts *testServer) login(nim string) string {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"nim": nim, "password": "password"})
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decodeData(ts.t, w, &out)
	require.NotEmpty(ts.t, out.Token)
	return out.Token
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.serve(req, token)
}

func (ts *testServer) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	ts.down = true
	w = ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestLoginMeLogout(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser("M0001", model.RoleStudent)
	token := ts.login("M0001")

	w := ts.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me struct {
		User model.User `json:"user"`
	}
	decodeData(t, w, &me)
	assert.Equal(t, "M0001", me.User.NIM)
	assert.Equal(t, model.RoleStudent, me.User.Role)

	w = ts.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SESSION_INVALIDATED", errorCode(t, w))
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser("M0001", model.RoleStudent)

	w := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"nim": "M0001", "password": "salah"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, w))
}

func TestRegister_ValidationFields(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"nim":              "ab",
		"name":             "Budi",
		"email":            "bukan-email",
		"study_program":    "Informatika",
		"password":         "rahasia",
		"confirm_password": "lain",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "nim")
	assert.Contains(t, env.Error.Fields, "email")
	assert.Contains(t, env.Error.Fields, "confirm_password")
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REQUIRED", errorCode(t, w))

	w = ts.do(http.MethodGet, "/api/v1/dashboard", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_INVALID", errorCode(t, w))
}

func TestRoleGates(t *testing.T) {
	ts := newTestServer(t)
	student := ts.seedUser("M0001", model.RoleStudent)
	other := ts.seedUser("M0002", model.RoleStudent)
	token := ts.login("M0001")

	w := ts.do(http.MethodGet, "/api/v1/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))

	// Passes the route gate, refused by the engine.
	w = ts.do(http.MethodGet, "/api/v1/students/"+strconv.Itoa(other.ID)+"/summary", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodGet, "/api/v1/students/"+strconv.Itoa(student.ID)+"/summary", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestInvalidID(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser("ADM01", model.RoleAdmin)
	token := ts.login("ADM01")

	w := ts.do(http.MethodGet, "/api/v1/users/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w))

	w = ts.do(http.MethodGet, "/api/v1/users/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestKRSReview_TerminalIsFinal(t *testing.T) {
	ts := newTestServer(t)
	lecturer := ts.seedUser("D0001", model.RoleLecturer)
	ts.seedUser("M0001", model.RoleStudent)
	course := ts.seedCourse("IF101", lecturer.ID)
	studentToken := ts.login("M0001")
	lecturerToken := ts.login("D0001")

	w := ts.do(http.MethodPost, "/api/v1/krs", studentToken, map[string]any{"course_ids": []int{course.ID}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var submitted struct {
		KRS []model.Enrollment `json:"krs"`
	}
	decodeData(t, w, &submitted)
	require.Len(t, submitted.KRS, 1)
	assert.Equal(t, model.StatusPending, submitted.KRS[0].Status)
	reviewPath := "/api/v1/krs/" + strconv.Itoa(submitted.KRS[0].ID) + "/review"

	// Students cannot review their own KRS.
	w = ts.do(http.MethodPut, reviewPath, studentToken, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPut, reviewPath, lecturerToken, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(http.MethodPut, reviewPath, lecturerToken, map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVARIANT_VIOLATION", errorCode(t, w))

	w = ts.do(http.MethodPut, reviewPath, lecturerToken, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestTranscriptXLSX(t *testing.T) {
	ts := newTestServer(t)
	lecturer := ts.seedUser("D0001", model.RoleLecturer)
	ts.seedUser("ADM01", model.RoleAdmin)
	student := ts.seedUser("M0001", model.RoleStudent)
	course := ts.seedCourse("IF101", lecturer.ID)
	adminToken := ts.login("ADM01")

	w := ts.do(http.MethodPost, "/api/v1/grades", adminToken, map[string]any{
		"student_id": student.ID,
		"course_id":  course.ID,
		"score":      85,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	base := "/api/v1/students/" + strconv.Itoa(student.ID)
	w = ts.do(http.MethodGet, base+"/transcript.xlsx", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, report.XLSXRenderer{}.ContentType(), w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transkrip_M0001.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	// No PDF renderer configured on this server.
	w = ts.do(http.MethodGet, base+"/transcript.pdf", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadMaterial_FileRequired(t *testing.T) {
	ts := newTestServer(t)
	lecturer := ts.seedUser("D0001", model.RoleLecturer)
	course := ts.seedCourse("IF101", lecturer.ID)
	token := ts.login("D0001")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("course_id", strconv.Itoa(course.ID)))
	require.NoError(t, mw.WriteField("title", "Pengantar"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/materials", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := ts.serve(req, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FILE_REQUIRED", errorCode(t, w))
}

func TestUploadMaterial_StoresFile(t *testing.T) {
	ts := newTestServer(t)
	lecturer := ts.seedUser("D0001", model.RoleLecturer)
	course := ts.seedCourse("IF101", lecturer.ID)
	token := ts.login("D0001")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("course_id", strconv.Itoa(course.ID)))
	require.NoError(t, mw.WriteField("title", "Pengantar"))
	require.NoError(t, mw.WriteField("week", "2"))
	fw, err := mw.CreateFormFile("file", "modul 1.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4\n%test document\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/materials", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := ts.serve(req, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(http.MethodGet, "/api/v1/courses/"+strconv.Itoa(course.ID)+"/materials", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Pengantar")
}

func TestPublicSettings(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/public/settings", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateProfile_AnyRole(t *testing.T) {
	ts := newTestServer(t)
	student := ts.seedUser("M0001", model.RoleStudent)
	ts.seedUser("D0001", model.RoleLecturer)

	for _, nim := range []string{"M0001", "D0001"} {
		token := ts.login(nim)
		w := ts.do(http.MethodPut, "/api/v1/me", token, map[string]string{"name": "Nama Baru"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var out struct {
			User model.User `json:"user"`
		}
		decodeData(t, w, &out)
		assert.Equal(t, nim, out.User.NIM)
		assert.Equal(t, "Nama Baru", out.User.Name)
	}

	// Role changes stay with admins even on the caller's own profile.
	token := ts.login("M0001")
	w := ts.do(http.MethodPut, "/api/v1/me", token, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	u, err := ts.store.Users().GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, u.Role)
}

func TestListCourses_HugePageIsEmpty(t *testing.T) {
	ts := newTestServer(t)
	lecturer := ts.seedUser("D0001", model.RoleLecturer)
	ts.seedCourse("IF101", lecturer.ID)
	token := ts.login("D0001")

	w := ts.do(http.MethodGet, "/api/v1/courses?page=1000000000000000000", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Courses []model.Course `json:"courses"`
	}
	decodeData(t, w, &out)
	assert.Empty(t, out.Courses)
}

func TestReviewSubmission_ForeignLecturerCannotProbeIDs(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.seedUser("D0001", model.RoleLecturer)
	ts.seedUser("D0002", model.RoleLecturer)
	student := ts.seedUser("M0001", model.RoleStudent)
	course := ts.seedCourse("IF101", owner.ID)

	sub := &model.Submission{StudentID: student.ID, CourseID: course.ID, Title: "Tugas 1",
		Status: model.StatusPending, SubmittedAt: time.Now()}
	require.NoError(t, ts.store.Submissions().Create(context.Background(), sub))

	token := ts.login("D0002")
	body := map[string]string{"status": "approved"}

	existing := ts.do(http.MethodPut, "/api/v1/submissions/"+strconv.Itoa(sub.ID)+"/review", token, body)
	missing := ts.do(http.MethodPut, "/api/v1/submissions/999999/review", token, body)

	assert.Equal(t, http.StatusForbidden, existing.Code)
	assert.Equal(t, existing.Code, missing.Code)
	assert.Equal(t, errorCode(t, existing), errorCode(t, missing))
}
