package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/siakad-backend/internal/model"
)

func TestSettings_UpdateRejectsUnknownKeys(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "A0001", model.RoleAdmin)

	err := f.settings.Update(f.ctx, admin, map[string]string{
		model.SettingSystemName:  "SIAKAD Baru",
		"theme":                  "dark",
		model.SettingMaxFileSize: "-1",
	})
	require.ErrorIs(t, err, ErrValidation)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Fields, "theme")
	assert.Contains(t, se.Fields, model.SettingMaxFileSize)

	all, err := f.settings.GetAll(f.ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSettings_UpdateAndPublic(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "A0001", model.RoleAdmin)
	student := f.seedUser(t, "M0001", model.RoleStudent)

	require.NoError(t, f.settings.Update(f.ctx, admin, map[string]string{
		model.SettingSystemName:      "SIAKAD Kampus",
		model.SettingBackupFrequency: "weekly",
		model.SettingCurrentSemester: "2",
	}))
	assert.ErrorIs(t, f.settings.Update(f.ctx, student, map[string]string{model.SettingSystemName: "x"}), ErrForbidden)

	public, err := f.settings.Public(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "SIAKAD Kampus", public[model.SettingSystemName])
	assert.Equal(t, "2", public[model.SettingCurrentSemester])
	assert.Equal(t, "2025/2026", public[model.SettingCurrentAcademicYear])
	assert.NotContains(t, public, model.SettingBackupFrequency)

	all, err := f.settings.GetAll(f.ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, s := range all {
		assert.NotEmpty(t, s.Description)
	}
}

func TestSettings_CurrentPeriodFallsBack(t *testing.T) {
	f := newFixture(t)

	sem, year := f.settings.CurrentPeriod(f.ctx)
	assert.Equal(t, 1, sem)
	assert.Equal(t, "2025/2026", year)

	require.NoError(t, f.store.Settings().Upsert(f.ctx, model.SettingCurrentAcademicYear, "garbage"))
	require.NoError(t, f.store.Settings().Upsert(f.ctx, model.SettingCurrentSemester, "4"))
	sem, year = f.settings.CurrentPeriod(f.ctx)
	assert.Equal(t, 4, sem)
	assert.Equal(t, "2025/2026", year)
}

func TestSettings_SeedDefaultsKeepsExisting(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Settings().Upsert(f.ctx, model.SettingSystemName, "Kampus Kita"))

	n, err := f.settings.SeedDefaults(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultSettings)-1, n)

	public, err := f.settings.Public(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kampus Kita", public[model.SettingSystemName])
}
