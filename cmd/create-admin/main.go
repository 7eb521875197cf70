package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/stemsi/siakad-backend/internal/config"
	"github.com/stemsi/siakad-backend/internal/database"
	"github.com/stemsi/siakad-backend/internal/logger"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
	"github.com/stemsi/siakad-backend/internal/service"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Open Record Store ─────────────────────────────────────────────
	store, _, closeStore, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer closeStore()

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin Account ===")

	nim := prompt(reader, "Enter Username (NIM): ")
	if !service.ValidNIM(nim) {
		fmt.Println("Error: Username must be alphanumeric and at least 5 characters")
		return
	}

	name := prompt(reader, "Enter Name: ")
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	email := strings.ToLower(prompt(reader, "Enter Email: "))
	if !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	password := string(bytePassword)
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	if _, err := store.Users().GetByNIM(ctx, nim); err == nil {
		fmt.Printf("Error: username %q is already taken\n", nim)
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Fatal().Err(err).Msg("Failed to check username")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	admin := &model.User{
		NIM:          nim,
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		StudyProgram: "Administrasi",
		Role:         model.RoleAdmin,
	}
	if err := store.Users().Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", admin.Name, admin.NIM, admin.ID)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	s, _ := r.ReadString('\n')
	return strings.TrimSpace(s)
}
