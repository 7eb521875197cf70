package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/config"
	"github.com/stemsi/siakad-backend/internal/database"
	"github.com/stemsi/siakad-backend/internal/logger"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
	"github.com/stemsi/siakad-backend/internal/service"
)

const demoPassword = "password"

type demoAccount struct {
	nim, name, email, program string
	role                      model.Role
}

var demoAccounts = []demoAccount{
	{"admin", "Administrator", "admin@amikom.ac.id", "Sistem Informasi", model.RoleAdmin},
	{"dosen1", "Dr. Budi Santoso", "budi@amikom.ac.id", "Teknik Informatika", model.RoleLecturer},
	{"mahasiswa1", "Ahmad Fauzi", "ahmad@student.amikom.ac.id", "Teknik Informatika", model.RoleStudent},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, _, closeStore, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer closeStore()

	auth := service.NewAuthService(cfg, store, nil, log)
	settings := service.NewSettingService(store, cfg, log)

	fmt.Println("=== Seeding demo accounts ===")

	err = store.WithTx(ctx, func(tx repository.Store) error {
		ids := make(map[string]int, len(demoAccounts))
		for _, acc := range demoAccounts {
			id, err := upsertAccount(ctx, tx, auth, acc, log)
			if err != nil {
				return err
			}
			ids[acc.nim] = id
		}
		return assignAdvisor(ctx, tx, ids["mahasiswa1"], ids["dosen1"])
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo accounts")
	}

	n, err := settings.SeedDefaults(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed default settings")
	}
	fmt.Printf("Default settings created: %d\n", n)

	fmt.Println("\nAll demo accounts are ready to use!")
	fmt.Println("Username: admin, dosen1, mahasiswa1")
	fmt.Println("Password: " + demoPassword)
}

// upsertAccount creates acc, or refreshes its profile and password when the
// username already exists.
func upsertAccount(ctx context.Context, tx repository.Store, auth *service.AuthService, acc demoAccount, log zerolog.Logger) (int, error) {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	u, err := tx.Users().GetByNIM(ctx, acc.nim)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		u = &model.User{NIM: acc.nim}
	case err != nil:
		return 0, fmt.Errorf("lookup %s: %w", acc.nim, err)
	}

	u.Name, u.Email, u.StudyProgram, u.Role = acc.name, acc.email, acc.program, acc.role
	u.PasswordHash = hash

	if u.ID == 0 {
		if err := tx.Users().Create(ctx, u); err != nil {
			return 0, fmt.Errorf("create %s: %w", acc.nim, err)
		}
		log.Info().Str("nim", acc.nim).Int("id", u.ID).Msg("demo account created")
		return u.ID, nil
	}
	if err := tx.Users().Update(ctx, u); err != nil {
		return 0, fmt.Errorf("update %s: %w", acc.nim, err)
	}
	log.Info().Str("nim", acc.nim).Int("id", u.ID).Msg("demo account refreshed")
	return u.ID, nil
}

func assignAdvisor(ctx context.Context, tx repository.Store, studentID, advisorID int) error {
	student, err := tx.Users().GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load student: %w", err)
	}
	student.AdvisorID = &advisorID
	if err := tx.Users().Update(ctx, student); err != nil {
		return fmt.Errorf("assign advisor: %w", err)
	}
	return nil
}
