package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
	"github.com/stemsi/siakad-backend/internal/response"
)

var nimPattern = regexp.MustCompile(`^[A-Za-z0-9]{5,}$`)

// ValidNIM reports whether nim is alphanumeric and at least 5 characters.
func ValidNIM(nim string) bool {
	return nimPattern.MatchString(nim)
}

// UserQuery filters and pages user listings.
type UserQuery struct {
	Role    model.Role
	Search  string
	Page    int
	PerPage int
}

// UserService manages accounts of every role.
type UserService struct {
	store repository.Store
	auth  *AuthService
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store repository.Store, auth *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		store: store,
		auth:  auth,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

// Register creates a student account from public self-registration.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	const op = "user.register"
	if req.Password != req.ConfirmPassword {
		return nil, fieldErr(op, "confirm_password", "Konfirmasi kata sandi tidak cocok")
	}
	return s.create(ctx, op, model.User{
		NIM:          strings.TrimSpace(req.NIM),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		StudyProgram: strings.TrimSpace(req.StudyProgram),
		Role:         model.RoleStudent,
	}, req.Password)
}

// Create adds an account of any role.
func (s *UserService) Create(ctx context.Context, actor Actor, req model.CreateUserRequest) (*model.User, error) {
	const op = "user.create"
	if err := authorize(op, actor, adminOnly...); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, fieldErr(op, "role", "Role tidak dikenal")
	}
	if req.AdvisorID != nil {
		if err := checkAdvisor(ctx, op, s.store.Users(), 0, *req.AdvisorID); err != nil {
			return nil, err
		}
	}
	return s.create(ctx, op, model.User{
		NIM:          strings.TrimSpace(req.NIM),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		StudyProgram: strings.TrimSpace(req.StudyProgram),
		Role:         req.Role,
		AdvisorID:    req.AdvisorID,
	}, req.Password)
}

func (s *UserService) create(ctx context.Context, op string, u model.User, password string) (*model.User, error) {
	if !ValidNIM(u.NIM) {
		return nil, fieldErr(op, "nim", "NIM harus alfanumerik dan minimal 5 karakter")
	}
	if u.Name == "" || u.Email == "" {
		return nil, validationErr(op, "Nama dan email wajib diisi")
	}
	if len(password) < 6 {
		return nil, fieldErr(op, "password", "Kata sandi minimal 6 karakter")
	}

	if err := checkUnique(ctx, op, s.store.Users(), 0, u.NIM, u.Email); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, storeErr(op, "Pengguna", err)
	}
	u.PasswordHash = hash

	if err := s.store.Users().Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictErr(op, "NIM atau email sudah terdaftar")
		}
		s.log.Error().Err(err).Str("op", op).Msg("failed to create user")
		return nil, storeErr(op, "Pengguna", err)
	}

	s.log.Info().Int("user_id", u.ID).Str("role", string(u.Role)).Msg("user created")
	return &u, nil
}

// checkUnique rejects a nim or email that belongs to a user other than selfID.
func checkUnique(ctx context.Context, op string, users repository.UserRepository, selfID int, nim, email string) error {
	if nim != "" {
		existing, err := users.GetByNIM(ctx, nim)
		switch {
		case err == nil && existing.ID != selfID:
			return &Error{Op: op, Kind: ErrConflict, Message: "NIM sudah terdaftar",
				Fields: map[string]string{"nim": "NIM sudah terdaftar"}}
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return storeErr(op, "Pengguna", err)
		}
	}
	if email != "" {
		existing, err := users.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != selfID:
			return &Error{Op: op, Kind: ErrConflict, Message: "Email sudah terdaftar",
				Fields: map[string]string{"email": "Email sudah terdaftar"}}
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return storeErr(op, "Pengguna", err)
		}
	}
	return nil
}

// checkAdvisor requires advisorID to be a lecturer other than the user itself.
func checkAdvisor(ctx context.Context, op string, users repository.UserRepository, selfID, advisorID int) error {
	if advisorID == selfID {
		return fieldErr(op, "advisor_id", "Pengguna tidak dapat menjadi dosen wali dirinya sendiri")
	}
	advisor, err := users.GetByID(ctx, advisorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fieldErr(op, "advisor_id", "Dosen wali tidak ditemukan")
		}
		return storeErr(op, "Dosen wali", err)
	}
	if advisor.Role != model.RoleLecturer {
		return fieldErr(op, "advisor_id", "Dosen wali harus berperan dosen")
	}
	return nil
}

// Update applies a partial update. Users may edit their own profile; role and
// advisor changes are reserved for admins.
func (s *UserService) Update(ctx context.Context, actor Actor, id int, req model.UpdateUserRequest) (*model.User, error) {
	const op = "user.update"
	if err := authorize(op, actor, anyRole...); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (actor.ID != id || req.Role != nil || req.AdvisorID != nil) {
		return nil, forbiddenErr(op)
	}
	if req.Role != nil && !req.Role.Valid() {
		return nil, fieldErr(op, "role", "Role tidak dikenal")
	}

	var updated *model.User
	roleChanged := false
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		u, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return storeErr(op, "Pengguna", err)
		}

		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.StudyProgram != nil {
			u.StudyProgram = strings.TrimSpace(*req.StudyProgram)
		}
		if req.Email != nil {
			email := strings.TrimSpace(*req.Email)
			if err := checkUnique(ctx, op, tx.Users(), u.ID, "", email); err != nil {
				return err
			}
			u.Email = email
		}
		if req.Password != nil {
			if len(*req.Password) < 6 {
				return fieldErr(op, "password", "Kata sandi minimal 6 karakter")
			}
			hash, err := s.auth.HashPassword(*req.Password)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
		}
		if req.AdvisorID != nil {
			if *req.AdvisorID == 0 {
				u.AdvisorID = nil
			} else {
				if err := checkAdvisor(ctx, op, tx.Users(), u.ID, *req.AdvisorID); err != nil {
					return err
				}
				advisorID := *req.AdvisorID
				u.AdvisorID = &advisorID
			}
		}
		if req.Role != nil && *req.Role != u.Role {
			if u.Role == model.RoleAdmin {
				if err := lastAdminGuard(ctx, op, tx, "Tidak dapat mengubah role admin terakhir"); err != nil {
					return err
				}
			}
			if u.Role == model.RoleLecturer {
				if err := lecturerDutiesGuard(ctx, op, tx, u.ID); err != nil {
					return err
				}
			}
			u.Role = *req.Role
			roleChanged = true
		}

		if err := tx.Users().Update(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflictErr(op, "Email sudah terdaftar")
			}
			return storeErr(op, "Pengguna", err)
		}
		updated = u
		return nil
	})
	if err != nil {
		if IsInternal(err) {
			s.log.Error().Err(err).Int("user_id", id).Msg("failed to update user")
		}
		return nil, err
	}

	// Tokens carry the role, so a role change must force a new login.
	if roleChanged {
		if err := s.auth.RevokeAll(ctx, id); err != nil {
			s.log.Warn().Err(err).Int("user_id", id).Msg("failed to revoke sessions after role change")
		}
	}
	return updated, nil
}

// Delete removes an account. The last remaining admin can never be deleted.
func (s *UserService) Delete(ctx context.Context, actor Actor, id int) error {
	const op = "user.delete"
	if err := authorize(op, actor, adminOnly...); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		u, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return storeErr(op, "Pengguna", err)
		}
		if u.Role == model.RoleAdmin {
			if err := lastAdminGuard(ctx, op, tx, "Tidak dapat menghapus admin terakhir"); err != nil {
				return err
			}
		}
		return storeErr(op, "Pengguna", tx.Users().Delete(ctx, id))
	})
	if err != nil {
		if IsInternal(err) {
			s.log.Error().Err(err).Int("user_id", id).Msg("failed to delete user")
		}
		return err
	}

	if err := s.auth.RevokeAll(ctx, id); err != nil {
		s.log.Warn().Err(err).Int("user_id", id).Msg("failed to revoke sessions of deleted user")
	}
	s.log.Info().Int("user_id", id).Int("by", actor.ID).Msg("user deleted")
	return nil
}

// lastAdminGuard fails when removing one admin would leave none.
func lastAdminGuard(ctx context.Context, op string, tx repository.Store, msg string) error {
	admins, err := tx.Users().CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return storeErr(op, "Pengguna", err)
	}
	if admins <= 1 {
		return invariantErr(op, msg)
	}
	return nil
}

// lecturerDutiesGuard fails while the lecturer still teaches a course or
// advises a student.
func lecturerDutiesGuard(ctx context.Context, op string, tx repository.Store, lecturerID int) error {
	_, taught, err := tx.Courses().List(ctx, repository.CourseFilter{LecturerID: lecturerID, Limit: 1})
	if err != nil {
		return storeErr(op, "Mata kuliah", err)
	}
	if taught > 0 {
		return invariantErr(op, "Dosen masih mengampu mata kuliah")
	}
	_, advisees, err := tx.Users().List(ctx, repository.UserFilter{AdvisorID: lecturerID, Limit: 1})
	if err != nil {
		return storeErr(op, "Pengguna", err)
	}
	if advisees > 0 {
		return invariantErr(op, "Dosen masih menjadi dosen wali mahasiswa")
	}
	return nil
}

// Get returns one account. Students may only see themselves.
func (s *UserService) Get(ctx context.Context, actor Actor, id int) (*model.User, error) {
	const op = "user.get"
	if err := authorize(op, actor, anyRole...); err != nil {
		return nil, err
	}
	if actor.IsStudent() && actor.ID != id {
		return nil, forbiddenErr(op)
	}
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(op, "Pengguna", err)
	}
	return u, nil
}

// List pages through accounts, searching name, nim, and email.
func (s *UserService) List(ctx context.Context, actor Actor, q UserQuery) ([]model.User, *response.Pagination, error) {
	const op = "user.list"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return nil, nil, err
	}
	if q.Role != "" && !q.Role.Valid() {
		return nil, nil, fieldErr(op, "role", "Role tidak dikenal")
	}

	page, perPage, limit, offset := pageWindow(q.Page, q.PerPage)
	users, total, err := s.store.Users().List(ctx, repository.UserFilter{
		Role:   q.Role,
		Search: strings.TrimSpace(q.Search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, nil, storeErr(op, "Pengguna", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, newPagination(page, perPage, total), nil
}

// Advisees lists the students a lecturer advises.
func (s *UserService) Advisees(ctx context.Context, actor Actor) ([]model.User, error) {
	const op = "user.advisees"
	if err := authorize(op, actor, model.RoleLecturer); err != nil {
		return nil, err
	}
	users, _, err := s.store.Users().List(ctx, repository.UserFilter{
		Role:      model.RoleStudent,
		AdvisorID: actor.ID,
	})
	if err != nil {
		return nil, storeErr(op, "Pengguna", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
