package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/academic"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

// dayNames maps time.Weekday to the Indonesian day names stored on schedules.
var dayNames = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// DayName returns the Indonesian name of d.
func DayName(d time.Weekday) string { return dayNames[d] }

// ScheduleQuery filters schedule listings. Zero values mean "any".
type ScheduleQuery struct {
	Semester     int
	AcademicYear string
	Day          string
	CourseID     int
}

// ScheduleService manages weekly lecture slots.
type ScheduleService struct {
	store    repository.Store
	settings *SettingService
	log      zerolog.Logger
	now      func() time.Time
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(store repository.Store, settings *SettingService, log zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		store:    store,
		settings: settings,
		log:      log.With().Str("component", "schedule_service").Logger(),
		now:      time.Now,
	}
}

// Create adds a lecture slot.
func (s *ScheduleService) Create(ctx context.Context, actor Actor, req model.ScheduleRequest) (*model.Schedule, error) {
	const op = "schedule.create"
	if err := authorize(op, actor, adminOnly...); err != nil {
		return nil, err
	}
	if !validDay(req.Day) {
		return nil, fieldErr(op, "day", "Hari tidak valid")
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, fieldErr(op, "start_time", "Format jam harus HH:MM")
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, fieldErr(op, "end_time", "Format jam harus HH:MM")
	}
	if !end.After(start) {
		return nil, fieldErr(op, "end_time", "Jam selesai harus setelah jam mulai")
	}
	if !academic.ValidAcademicYear(req.AcademicYear) {
		return nil, fieldErr(op, "academic_year", "Tahun ajaran harus berformat YYYY/YYYY")
	}
	if _, err := s.store.Courses().GetByID(ctx, req.CourseID); err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}

	sc := &model.Schedule{
		CourseID:     req.CourseID,
		Day:          req.Day,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Room:         req.Room,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
	}
	if err := s.store.Schedules().Create(ctx, sc); err != nil {
		s.log.Error().Err(err).Int("course_id", req.CourseID).Msg("failed to create schedule")
		return nil, storeErr(op, "Jadwal", err)
	}
	return sc, nil
}

// Delete removes a lecture slot.
func (s *ScheduleService) Delete(ctx context.Context, actor Actor, id int) error {
	const op = "schedule.delete"
	if err := authorize(op, actor, adminOnly...); err != nil {
		return err
	}
	return storeErr(op, "Jadwal", s.store.Schedules().Delete(ctx, id))
}

// List returns slots ordered by weekday and start time. The period defaults
// to the current one.
func (s *ScheduleService) List(ctx context.Context, q ScheduleQuery) ([]model.Schedule, error) {
	if q.Semester == 0 && q.AcademicYear == "" {
		q.Semester, q.AcademicYear = s.settings.CurrentPeriod(ctx)
	}
	if q.Day != "" && !validDay(q.Day) {
		return nil, fieldErr("schedule.list", "day", "Hari tidak valid")
	}
	f := repository.ScheduleFilter{Semester: q.Semester, AcademicYear: q.AcademicYear, Day: q.Day}
	if q.CourseID > 0 {
		f.CourseIDs = []int{q.CourseID}
	}
	rows, err := s.store.Schedules().List(ctx, f)
	if err != nil {
		return nil, storeErr("schedule.list", "Jadwal", err)
	}
	if rows == nil {
		rows = []model.Schedule{}
	}
	return rows, nil
}

// Today lists the current period's slots for today's weekday.
func (s *ScheduleService) Today(ctx context.Context) ([]model.Schedule, error) {
	return s.List(ctx, ScheduleQuery{Day: DayName(s.now().Weekday())})
}

func validDay(day string) bool {
	for _, d := range dayNames {
		if d == day {
			return true
		}
	}
	return false
}
