package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/config"
	"github.com/stemsi/siakad-backend/internal/handler"
	"github.com/stemsi/siakad-backend/internal/middleware"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/response"
	"github.com/stemsi/siakad-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Course     *handler.CourseHandler
	Grade      *handler.GradeHandler
	Enrollment *handler.EnrollmentHandler
	Submission *handler.SubmissionHandler
	ELearning  *handler.ELearningHandler
	Forum      *handler.ForumHandler
	Schedule   *handler.ScheduleHandler
	Setting    *handler.SettingHandler
	Dashboard  *handler.DashboardHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Request ID first so the access log can carry it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	// ─── CORS ──────────────────────────────────────────────────────────
	// Empty AllowedOrigins means allow all, for local development.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(middleware.Brotli())

	// Stored files never change under the same name.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000), middleware.NoSniff())
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/settings", handlers.Setting.GetPublicSettings)
	}

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute, time.Minute)

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
	}

	// ─── 2. Authenticated API (JWT + live session) ─────────────────────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireAuth(authService),
		middleware.CheckSession(authService, log),
		middleware.NoStore(),
	)

	api.POST("/auth/logout", handlers.Auth.Logout)
	api.GET("/auth/me", handlers.Auth.Me)
	api.GET("/dashboard", handlers.Dashboard.GetDashboardData)

	// Caller-scoped views.
	me := api.Group("/me")
	{
		me.PUT("", handlers.User.UpdateProfile)
		me.GET("/courses", handlers.Course.MyCourses)
		me.GET("/summary", middleware.RequireRole(model.RoleStudent), handlers.Grade.MySummary)
		me.GET("/submissions", middleware.RequireRole(model.RoleStudent), handlers.Submission.MySubmissions)
		me.GET("/progress", middleware.RequireRole(model.RoleStudent), handlers.ELearning.MyProgress)
		me.GET("/advisees", middleware.RequireStaff(), handlers.User.ListAdvisees)
	}

	// Users
	users := api.Group("/users", middleware.RequireStaff())
	{
		users.GET("", handlers.User.ListUsers)
		users.GET("/:id", handlers.User.GetUser)
		users.POST("", middleware.RequireRole(model.RoleAdmin), handlers.User.CreateUser)
		users.PUT("/:id", middleware.RequireRole(model.RoleAdmin), handlers.User.UpdateUser)
		users.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), handlers.User.DeleteUser)
	}

	// Courses and their content
	courses := api.Group("/courses")
	{
		courses.GET("", handlers.Course.ListCourses)
		courses.GET("/:id", handlers.Course.GetCourse)
		courses.GET("/:id/materials", handlers.ELearning.ListMaterials)
		courses.GET("/:id/videos", handlers.ELearning.ListVideos)
		courses.GET("/:id/grades", middleware.RequireStaff(), handlers.Grade.ListCourseGrades)
		courses.POST("", middleware.RequireRole(model.RoleAdmin), handlers.Course.CreateCourse)
		courses.PUT("/:id", middleware.RequireRole(model.RoleAdmin), handlers.Course.UpdateCourse)
		courses.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), handlers.Course.DeleteCourse)
	}

	// Grades and transcripts
	api.POST("/grades", middleware.RequireStaff(), handlers.Grade.RecordGrade)
	students := api.Group("/students")
	{
		students.GET("/:id/grades", handlers.Grade.ListStudentGrades)
		students.GET("/:id/summary", handlers.Grade.StudentSummary)
		students.GET("/:id/transcript.pdf", handlers.Grade.TranscriptPDF)
		students.GET("/:id/transcript.xlsx", handlers.Grade.TranscriptXLSX)
		students.GET("/:id/submissions", middleware.RequireStaff(), handlers.Submission.StudentSubmissions)
	}

	// KRS
	krs := api.Group("/krs")
	{
		krs.POST("", middleware.RequireRole(model.RoleStudent), handlers.Enrollment.SubmitKRS)
		krs.GET("", handlers.Enrollment.ListKRS)
		krs.GET("/pending", middleware.RequireStaff(), handlers.Enrollment.PendingKRS)
		krs.PUT("/:id/review", middleware.RequireStaff(), handlers.Enrollment.ReviewKRS)
	}

	// Submission family
	submissions := api.Group("/submissions")
	{
		submissions.POST("", middleware.RequireRole(model.RoleStudent), handlers.Submission.SubmitAssignment)
		submissions.GET("", handlers.Submission.ListAssignments)
		submissions.PUT("/:id/review", middleware.RequireStaff(), handlers.Submission.ReviewAssignment)
	}
	letters := api.Group("/letters")
	{
		letters.POST("", middleware.RequireRole(model.RoleStudent), handlers.Submission.SubmitLetter)
		letters.GET("", handlers.Submission.ListLetters)
		letters.PUT("/:id/review", middleware.RequireStaff(), handlers.Submission.ReviewLetter)
	}
	internships := api.Group("/internships")
	{
		internships.POST("", middleware.RequireRole(model.RoleStudent), handlers.Submission.SubmitInternship)
		internships.GET("", handlers.Submission.ListInternships)
		internships.PUT("/:id/review", middleware.RequireStaff(), handlers.Submission.ReviewInternship)
	}
	theses := api.Group("/theses")
	{
		theses.POST("", middleware.RequireRole(model.RoleStudent), handlers.Submission.SubmitThesis)
		theses.GET("", handlers.Submission.ListTheses)
		theses.PUT("/:id/review", middleware.RequireStaff(), handlers.Submission.ReviewThesis)
	}

	// E-learning
	materials := api.Group("/materials", middleware.RequireStaff())
	{
		materials.POST("", handlers.ELearning.UploadMaterial)
		materials.DELETE("/:id", handlers.ELearning.DeleteMaterial)
	}
	videos := api.Group("/videos")
	{
		videos.POST("", middleware.RequireStaff(), handlers.ELearning.UploadVideo)
		videos.DELETE("/:id", middleware.RequireStaff(), handlers.ELearning.DeleteVideo)
		videos.POST("/:id/watch", middleware.RequireRole(model.RoleStudent), handlers.ELearning.TrackWatch)
	}

	// Forum
	forum := api.Group("/forum/posts")
	{
		forum.GET("", handlers.Forum.ListPosts)
		forum.POST("", handlers.Forum.CreatePost)
		forum.GET("/:id", handlers.Forum.GetThread)
		forum.POST("/:id/replies", handlers.Forum.Reply)
	}

	// Schedules
	schedules := api.Group("/schedules")
	{
		schedules.GET("", handlers.Schedule.ListSchedules)
		schedules.GET("/today", handlers.Schedule.TodaySchedules)
		schedules.POST("", middleware.RequireRole(model.RoleAdmin), handlers.Schedule.CreateSchedule)
		schedules.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), handlers.Schedule.DeleteSchedule)
	}

	// ─── 3. Admin-only ─────────────────────────────────────────────────
	admin := api.Group("", middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/settings", handlers.Setting.GetAllSettings)
		admin.PUT("/settings", handlers.Setting.UpdateSettings)
		admin.GET("/admin/system", handlers.System.Stats)
	}

	return router
}
