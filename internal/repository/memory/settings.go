package memory

import (
	"context"
	"sort"
	"time"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

var weekdayOrder = map[string]int{
	"Senin": 1, "Selasa": 2, "Rabu": 3, "Kamis": 4, "Jumat": 5, "Sabtu": 6, "Minggu": 7,
}

type scheduleRepo struct{ st *state }

func (r scheduleRepo) List(_ context.Context, f repository.ScheduleFilter) ([]model.Schedule, error) {
	var rows []model.Schedule
	r.st.read(func(d *data) {
		rows = d.schedules.where(func(s model.Schedule) bool {
			switch {
			case f.Semester > 0 && s.Semester != f.Semester:
				return false
			case f.AcademicYear != "" && s.AcademicYear != f.AcademicYear:
				return false
			case f.Day != "" && s.Day != f.Day:
				return false
			case len(f.CourseIDs) > 0 && !containsInt(f.CourseIDs, s.CourseID):
				return false
			}
			return true
		})
	})
	sortBy(rows, func(a, b model.Schedule) bool {
		if weekdayOrder[a.Day] != weekdayOrder[b.Day] {
			return weekdayOrder[a.Day] < weekdayOrder[b.Day]
		}
		return a.StartTime < b.StartTime
	})
	return rows, nil
}

func (r scheduleRepo) Create(_ context.Context, s *model.Schedule) error {
	return r.st.write(func(d *data) error {
		if _, ok := d.courses.rows[s.CourseID]; !ok {
			return repository.ErrReferenced
		}
		s.ID = d.schedules.next()
		s.CreatedAt = time.Now()
		d.schedules.rows[s.ID] = *s
		return nil
	})
}

func (r scheduleRepo) Delete(_ context.Context, id int) error {
	return r.st.write(func(d *data) error {
		if d.schedules.deleteWhere(func(s model.Schedule) bool { return s.ID == id }) == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

type settingRepo struct{ st *state }

func (r settingRepo) GetAll(_ context.Context) ([]model.AppSetting, error) {
	var rows []model.AppSetting
	r.st.read(func(d *data) {
		for _, s := range d.settings {
			rows = append(rows, s)
		}
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows, nil
}

func (r settingRepo) GetByKey(_ context.Context, key string) (*model.AppSetting, error) {
	var (
		s  model.AppSetting
		ok bool
	)
	r.st.read(func(d *data) { s, ok = d.settings[key] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r settingRepo) Upsert(_ context.Context, key, value string) error {
	return r.st.write(func(d *data) error {
		s := d.settings[key]
		s.Key, s.Value, s.UpdatedAt = key, value, time.Now()
		d.settings[key] = s
		return nil
	})
}
