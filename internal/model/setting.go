package model

import "time"

// Known setting keys.
const (
	SettingSystemName          = "system_name"
	SettingMaxFileSize         = "max_file_size"
	SettingBackupFrequency     = "backup_frequency"
	SettingCurrentSemester     = "current_semester"
	SettingCurrentAcademicYear = "current_academic_year"
)

// AppSetting represents a key-value pair for global application configuration.
type AppSetting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateSettingsRequest is the payload for bulk updating settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}
