package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/academic"
	"github.com/stemsi/siakad-backend/internal/config"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

// settingRule describes one known setting key.
type settingRule struct {
	description string
	public      bool
	validate    func(v string) bool
}

var settingRules = map[string]settingRule{
	model.SettingSystemName: {
		description: "Nama sistem yang ditampilkan",
		public:      true,
		validate:    func(v string) bool { return v != "" && len(v) <= 100 },
	},
	model.SettingMaxFileSize: {
		description: "Ukuran maksimal unggahan (MB)",
		validate:    func(v string) bool { n, err := strconv.Atoi(v); return err == nil && n > 0 && n <= 1024 },
	},
	model.SettingBackupFrequency: {
		description: "Frekuensi backup data",
		validate: func(v string) bool {
			return v == "daily" || v == "weekly" || v == "monthly"
		},
	},
	model.SettingCurrentSemester: {
		description: "Semester berjalan",
		public:      true,
		validate:    func(v string) bool { n, err := strconv.Atoi(v); return err == nil && n >= 1 && n <= 14 },
	},
	model.SettingCurrentAcademicYear: {
		description: "Tahun ajaran berjalan",
		public:      true,
		validate:    academic.ValidAcademicYear,
	},
}

// DefaultSettings are written by the demo seeder when absent.
var DefaultSettings = map[string]string{
	model.SettingSystemName:      "SIAKAD - Sistem Informasi Akademik",
	model.SettingMaxFileSize:     "16",
	model.SettingBackupFrequency: "daily",
}

// SettingService manages global application settings.
type SettingService struct {
	store repository.Store
	cfg   *config.Config
	log   zerolog.Logger
}

// NewSettingService creates a new SettingService.
func NewSettingService(store repository.Store, cfg *config.Config, log zerolog.Logger) *SettingService {
	return &SettingService{
		store: store,
		cfg:   cfg,
		log:   log.With().Str("component", "setting_service").Logger(),
	}
}

// GetAll lists every stored setting with its description.
func (s *SettingService) GetAll(ctx context.Context, actor Actor) ([]model.AppSetting, error) {
	const op = "setting.get_all"
	if err := authorize(op, actor, adminOnly...); err != nil {
		return nil, err
	}
	settings, err := s.store.Settings().GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get all settings")
		return nil, storeErr(op, "Pengaturan", err)
	}
	for i := range settings {
		if settings[i].Description == "" {
			settings[i].Description = settingRules[settings[i].Key].description
		}
	}
	if settings == nil {
		settings = []model.AppSetting{}
	}
	return settings, nil
}

// Update writes several known settings in one transaction.
func (s *SettingService) Update(ctx context.Context, actor Actor, values map[string]string) error {
	const op = "setting.update"
	if err := authorize(op, actor, adminOnly...); err != nil {
		return err
	}
	if len(values) == 0 {
		return validationErr(op, "Tidak ada pengaturan yang diubah")
	}

	fields := make(map[string]string)
	keys := make([]string, 0, len(values))
	for key, value := range values {
		rule, ok := settingRules[key]
		switch {
		case !ok:
			fields[key] = "Pengaturan tidak dikenal"
		case !rule.validate(strings.TrimSpace(value)):
			fields[key] = "Nilai pengaturan tidak valid"
		}
		keys = append(keys, key)
	}
	if len(fields) > 0 {
		return &Error{Op: op, Kind: ErrValidation, Message: "Pengaturan tidak valid", Fields: fields}
	}
	sort.Strings(keys)

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		for _, key := range keys {
			if err := tx.Settings().Upsert(ctx, key, strings.TrimSpace(values[key])); err != nil {
				return fmt.Errorf("upsert %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to update settings")
		return storeErr(op, "Pengaturan", err)
	}
	s.log.Info().Strs("keys", keys).Int("by", actor.ID).Msg("settings updated")
	return nil
}

// Public returns the settings safe to show without logging in.
func (s *SettingService) Public(ctx context.Context) (map[string]string, error) {
	settings, err := s.store.Settings().GetAll(ctx)
	if err != nil {
		return nil, storeErr("setting.public", "Pengaturan", err)
	}
	out := map[string]string{model.SettingSystemName: defaultInstitutionName}
	for _, st := range settings {
		if settingRules[st.Key].public {
			out[st.Key] = st.Value
		}
	}
	semester, year := s.CurrentPeriod(ctx)
	out[model.SettingCurrentSemester] = strconv.Itoa(semester)
	out[model.SettingCurrentAcademicYear] = year
	return out, nil
}

// CurrentPeriod resolves the active semester and academic year, falling back
// to the configured defaults.
func (s *SettingService) CurrentPeriod(ctx context.Context) (int, string) {
	semester, year := s.cfg.DefaultSemester, s.cfg.DefaultAcademicYear

	if st, err := s.store.Settings().GetByKey(ctx, model.SettingCurrentSemester); err == nil {
		if n, err := strconv.Atoi(st.Value); err == nil && n > 0 {
			semester = n
		}
	}
	if st, err := s.store.Settings().GetByKey(ctx, model.SettingCurrentAcademicYear); err == nil {
		if academic.ValidAcademicYear(st.Value) {
			year = st.Value
		}
	}
	return semester, year
}

// SeedDefaults writes DefaultSettings for keys that are not stored yet.
func (s *SettingService) SeedDefaults(ctx context.Context) (int, error) {
	existing, err := s.store.Settings().GetAll(ctx)
	if err != nil {
		return 0, storeErr("setting.seed", "Pengaturan", err)
	}
	have := make(map[string]bool, len(existing))
	for _, st := range existing {
		have[st.Key] = true
	}

	written := 0
	for key, value := range DefaultSettings {
		if have[key] {
			continue
		}
		if err := s.store.Settings().Upsert(ctx, key, value); err != nil {
			return written, storeErr("setting.seed", "Pengaturan", err)
		}
		written++
	}
	return written, nil
}
