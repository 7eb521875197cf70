package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

func registerRequest(nim, email string) model.RegisterRequest {
	return model.RegisterRequest{
		NIM:             nim,
		Name:            "Budi Santoso",
		Email:           email,
		StudyProgram:    "Informatika",
		Password:        "rahasia1",
		ConfirmPassword: "rahasia1",
	}
}

func countUsers(t *testing.T, f *fixture) int {
	t.Helper()
	_, total, err := f.store.Users().List(f.ctx, repository.UserFilter{})
	require.NoError(t, err)
	return total
}

func TestRegister_CreatesStudent(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Register(f.ctx, registerRequest("2301001", "budi@kampus.ac.id"))
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, u.Role)
	assert.NotEqual(t, "rahasia1", u.PasswordHash)
	assert.NoError(t, f.auth.CheckPassword(u.PasswordHash, "rahasia1"))
}

func TestRegister_DuplicateNIMOrEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Register(f.ctx, registerRequest("2301001", "budi@kampus.ac.id"))
	require.NoError(t, err)

	_, err = f.users.Register(f.ctx, registerRequest("2301001", "lain@kampus.ac.id"))
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.users.Register(f.ctx, registerRequest("2301002", "budi@kampus.ac.id"))
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, 1, countUsers(t, f))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	req := registerRequest("2301001", "budi@kampus.ac.id")
	req.ConfirmPassword = "beda"
	_, err := f.users.Register(f.ctx, req)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.users.Register(f.ctx, registerRequest("12-3", "x@kampus.ac.id"))
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, 0, countUsers(t, f))
}

func TestCreateUser_AdminOnly(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "ADM01", model.RoleAdmin)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)

	req := model.CreateUserRequest{
		NIM: "D0002", Name: "Dosen Baru", Email: "d2@kampus.ac.id",
		StudyProgram: "Informatika", Password: "rahasia1", Role: model.RoleLecturer,
	}
	for _, actor := range []Actor{lecturer, student} {
		_, err := f.users.Create(f.ctx, actor, req)
		assert.ErrorIs(t, err, ErrForbidden)
	}
	assert.Equal(t, 3, countUsers(t, f))

	u, err := f.users.Create(f.ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, model.RoleLecturer, u.Role)
}

func TestCreateUser_AdvisorMustBeLecturer(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "ADM01", model.RoleAdmin)
	other := f.seedUser(t, "M0001", model.RoleStudent)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)

	req := model.CreateUserRequest{
		NIM: "M0002", Name: "Siti", Email: "siti@kampus.ac.id",
		StudyProgram: "Informatika", Password: "rahasia1", Role: model.RoleStudent,
		AdvisorID: ptr(other.ID),
	}
	_, err := f.users.Create(f.ctx, admin, req)
	assert.ErrorIs(t, err, ErrValidation)

	req.AdvisorID = ptr(lecturer.ID)
	u, err := f.users.Create(f.ctx, admin, req)
	require.NoError(t, err)
	require.NotNil(t, u.AdvisorID)
	assert.Equal(t, lecturer.ID, *u.AdvisorID)

	advisees, err := f.users.Advisees(f.ctx, lecturer)
	require.NoError(t, err)
	require.Len(t, advisees, 1)
	assert.Equal(t, "M0002", advisees[0].NIM)
}

func TestDeleteUser_LastAdminProtected(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "ADM01", model.RoleAdmin)

	err := f.users.Delete(f.ctx, admin, admin.ID)
	assert.ErrorIs(t, err, ErrInvariant)
	_, err = f.store.Users().GetByID(f.ctx, admin.ID)
	assert.NoError(t, err)

	second := f.seedUser(t, "ADM02", model.RoleAdmin)
	require.NoError(t, f.users.Delete(f.ctx, admin, second.ID))
	_, err = f.store.Users().GetByID(f.ctx, second.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteUser_NonAdminForbidden(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "ADM01", model.RoleAdmin)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)

	assert.ErrorIs(t, f.users.Delete(f.ctx, lecturer, student.ID), ErrForbidden)
	assert.ErrorIs(t, f.users.Delete(f.ctx, student, student.ID), ErrForbidden)
	assert.Equal(t, 3, countUsers(t, f))
}

func TestDeleteUser_LecturerWithCourseIsConflict(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "ADM01", model.RoleAdmin)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	f.seedCourse(t, "IF101", lecturer, 3, 1)

	assert.ErrorIs(t, f.users.Delete(f.ctx, admin, lecturer.ID), ErrConflict)
}

func TestUpdateUser_Ownership(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "ADM01", model.RoleAdmin)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	other := f.seedUser(t, "M0002", model.RoleStudent)

	u, err := f.users.Update(f.ctx, student, student.ID, model.UpdateUserRequest{Name: ptr("Nama Baru")})
	require.NoError(t, err)
	assert.Equal(t, "Nama Baru", u.Name)

	_, err = f.users.Update(f.ctx, student, other.ID, model.UpdateUserRequest{Name: ptr("X")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.users.Update(f.ctx, student, student.ID, model.UpdateUserRequest{Role: ptr(model.RoleAdmin)})
	assert.ErrorIs(t, err, ErrForbidden)

	u, err = f.users.Update(f.ctx, admin, student.ID, model.UpdateUserRequest{Role: ptr(model.RoleLecturer)})
	require.NoError(t, err)
	assert.Equal(t, model.RoleLecturer, u.Role)
}

func TestUpdateUser_EmailTaken(t *testing.T) {
	f := newFixture(t)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	f.seedUser(t, "M0002", model.RoleStudent)

	_, err := f.users.Update(f.ctx, student, student.ID, model.UpdateUserRequest{Email: ptr("m0002@kampus.ac.id")})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateUser_CannotDemoteLastAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "ADM01", model.RoleAdmin)

	_, err := f.users.Update(f.ctx, admin, admin.ID, model.UpdateUserRequest{Role: ptr(model.RoleLecturer)})
	assert.ErrorIs(t, err, ErrInvariant)

	u, err := f.store.Users().GetByID(f.ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
}

func TestListUsers_StaffOnlyWithPagination(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "ADM01", model.RoleAdmin)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	f.seedUser(t, "M0002", model.RoleStudent)
	f.seedUser(t, "M0003", model.RoleStudent)

	_, _, err := f.users.List(f.ctx, student, UserQuery{})
	assert.ErrorIs(t, err, ErrForbidden)

	users, page, err := f.users.List(f.ctx, admin, UserQuery{Role: model.RoleStudent, Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
}

func TestGetUser_StudentSeesOnlySelf(t *testing.T) {
	f := newFixture(t)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	other := f.seedUser(t, "M0002", model.RoleStudent)

	_, err := f.users.Get(f.ctx, student, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	u, err := f.users.Get(f.ctx, student, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "M0001", u.NIM)
}

func TestUpdateUser_LecturerWithDutiesKeepsRole(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "ADM01", model.RoleAdmin)
	teaching := f.seedUser(t, "D0001", model.RoleLecturer)
	advising := f.seedUser(t, "D0002", model.RoleLecturer)
	idle := f.seedUser(t, "D0003", model.RoleLecturer)
	f.seedCourse(t, "IF101", teaching, 3, 1)

	student := f.seedUser(t, "M0001", model.RoleStudent)
	_, err := f.users.Update(f.ctx, admin, student.ID, model.UpdateUserRequest{AdvisorID: ptr(advising.ID)})
	require.NoError(t, err)

	for _, lecturer := range []Actor{teaching, advising} {
		_, err := f.users.Update(f.ctx, admin, lecturer.ID, model.UpdateUserRequest{Role: ptr(model.RoleStudent)})
		assert.ErrorIs(t, err, ErrInvariant)

		u, err := f.store.Users().GetByID(f.ctx, lecturer.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleLecturer, u.Role)
	}

	u, err := f.users.Update(f.ctx, admin, idle.ID, model.UpdateUserRequest{Role: ptr(model.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
}
