package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/config"
	"github.com/stemsi/siakad-backend/internal/database"
	"github.com/stemsi/siakad-backend/internal/handler"
	"github.com/stemsi/siakad-backend/internal/logger"
	"github.com/stemsi/siakad-backend/internal/report"
	"github.com/stemsi/siakad-backend/internal/router"
	"github.com/stemsi/siakad-backend/internal/service"
	"github.com/stemsi/siakad-backend/internal/storage"
	"github.com/stemsi/siakad-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("sessions", cfg.SessionDriver).
		Msg("Starting SIAKAD Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Record Store ─────────────────────────────────────────────
	store, storeCheck, closeStore, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer closeStore()

	// ─── Open Session Registry ─────────────────────────────────────────
	sessions, sessionCheck, closeSessions, err := database.OpenSessions(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session registry")
	}
	defer closeSessions()

	files := storage.NewLocal(cfg.UploadDir, cfg.MaxUploadBytes)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, store, sessions, log)
	userService := service.NewUserService(store, authService, log)
	settingService := service.NewSettingService(store, cfg, log)
	courseService := service.NewCourseService(store, log)
	gradeService := service.NewGradeService(store, log)
	enrollmentService := service.NewEnrollmentService(store, settingService, log)
	submissionService := service.NewSubmissionService(store, files, log)
	elearningService := service.NewELearningService(store, files, log)
	forumService := service.NewForumService(store, log)
	scheduleService := service.NewScheduleService(store, settingService, log)
	dashboardService := service.NewDashboardService(store, submissionService, log)

	if n, err := settingService.SeedDefaults(ctx); err != nil {
		log.Warn().Err(err).Msg("Seeding default settings failed")
	} else if n > 0 {
		log.Info().Int("count", n).Msg("Default settings created")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:   handler.NewAuthHandler(authService, userService),
		User:   handler.NewUserHandler(userService),
		Course: handler.NewCourseHandler(courseService),
		Grade: handler.NewGradeHandler(gradeService,
			report.PDFRenderer{FontPath: cfg.ReportFontPath},
			report.XLSXRenderer{},
		),
		Enrollment: handler.NewEnrollmentHandler(enrollmentService),
		Submission: handler.NewSubmissionHandler(submissionService),
		ELearning:  handler.NewELearningHandler(elearningService),
		Forum:      handler.NewForumHandler(forumService),
		Schedule:   handler.NewScheduleHandler(scheduleService),
		Setting:    handler.NewSettingHandler(settingService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		System: handler.NewSystemHandler(map[string]func(context.Context) error{
			"database": storeCheck,
			"sessions": sessionCheck,
		}, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
