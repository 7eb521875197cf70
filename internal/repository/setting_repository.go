package repository

import (
	"context"

	"github.com/stemsi/siakad-backend/internal/model"
)

type pgSettingRepository struct {
	q Querier
}

func (r *pgSettingRepository) GetAll(ctx context.Context) ([]model.AppSetting, error) {
	rows, err := r.q.Query(ctx, `SELECT key, value, description, updated_at FROM app_settings ORDER BY key ASC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var settings []model.AppSetting
	for rows.Next() {
		var s model.AppSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *pgSettingRepository) Upsert(ctx context.Context, key, value string) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO app_settings (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return mapErr(err)
}

func (r *pgSettingRepository) GetByKey(ctx context.Context, key string) (*model.AppSetting, error) {
	s := &model.AppSetting{}
	err := r.q.QueryRow(ctx, `SELECT key, value, description, updated_at FROM app_settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}
