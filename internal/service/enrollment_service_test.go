package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

func krsRows(t *testing.T, f *fixture, studentID int) []model.Enrollment {
	t.Helper()
	rows, err := f.store.Enrollments().List(f.ctx, repository.EnrollmentFilter{StudentID: studentID})
	require.NoError(t, err)
	return rows
}

func courseIDsOf(rows []model.Enrollment) []int {
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CourseID)
	}
	return ids
}

func TestSubmitKRS_EmptyIsValidationError(t *testing.T) {
	f := newFixture(t)
	student := f.seedUser(t, "M0001", model.RoleStudent)

	_, err := f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{Semester: 1, AcademicYear: "2025/2026"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, krsRows(t, f, student.ID))
}

func TestSubmitKRS_ReplacesPreviousSelection(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	a := f.seedCourse(t, "IF101", lecturer, 3, 1)
	b := f.seedCourse(t, "IF102", lecturer, 3, 1)
	c := f.seedCourse(t, "IF103", lecturer, 2, 1)

	_, err := f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{
		CourseIDs: []int{a.ID, b.ID}, Semester: 1, AcademicYear: "2025/2026",
	})
	require.NoError(t, err)

	rows, err := f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{
		CourseIDs: []int{b.ID, c.ID}, Semester: 1, AcademicYear: "2025/2026",
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	stored := krsRows(t, f, student.ID)
	assert.ElementsMatch(t, []int{b.ID, c.ID}, courseIDsOf(stored))
	for _, r := range stored {
		assert.Equal(t, model.StatusPending, r.Status)
	}
}

func TestSubmitKRS_OtherPeriodsUntouched(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	a := f.seedCourse(t, "IF101", lecturer, 3, 1)
	b := f.seedCourse(t, "IF201", lecturer, 3, 2)

	_, err := f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{CourseIDs: []int{a.ID}, Semester: 1, AcademicYear: "2025/2026"})
	require.NoError(t, err)
	_, err = f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{CourseIDs: []int{b.ID}, Semester: 2, AcademicYear: "2025/2026"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{a.ID, b.ID}, courseIDsOf(krsRows(t, f, student.ID)))
}

func TestSubmitKRS_UnknownCourseWritesNothing(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	a := f.seedCourse(t, "IF101", lecturer, 3, 1)

	_, err := f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{CourseIDs: []int{a.ID}, Semester: 1, AcademicYear: "2025/2026"})
	require.NoError(t, err)

	_, err = f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{CourseIDs: []int{a.ID, 999}, Semester: 1, AcademicYear: "2025/2026"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []int{a.ID}, courseIDsOf(krsRows(t, f, student.ID)))
}

func TestSubmitKRS_NonPositiveIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	a := f.seedCourse(t, "IF101", lecturer, 3, 1)

	for _, ids := range [][]int{{a.ID, -7}, {0}} {
		_, err := f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{CourseIDs: ids, Semester: 1, AcademicYear: "2025/2026"})
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Empty(t, krsRows(t, f, student.ID))
}

func TestSubmitKRS_DuplicateIDsCollapse(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	a := f.seedCourse(t, "IF101", lecturer, 3, 1)

	rows, err := f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{CourseIDs: []int{a.ID, a.ID}, Semester: 1, AcademicYear: "2025/2026"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSubmitKRS_DefaultsToCurrentPeriod(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	a := f.seedCourse(t, "IF101", lecturer, 3, 1)
	require.NoError(t, f.store.Settings().Upsert(f.ctx, model.SettingCurrentSemester, "3"))
	require.NoError(t, f.store.Settings().Upsert(f.ctx, model.SettingCurrentAcademicYear, "2026/2027"))

	rows, err := f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{CourseIDs: []int{a.ID}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Semester)
	assert.Equal(t, "2026/2027", rows[0].AcademicYear)
}

func TestSubmitKRS_StudentOnly(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	a := f.seedCourse(t, "IF101", lecturer, 3, 1)

	_, err := f.enrollments.Submit(f.ctx, lecturer, model.SubmitEnrollmentRequest{CourseIDs: []int{a.ID}})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReviewKRS_StrictTransitions(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	a := f.seedCourse(t, "IF101", lecturer, 3, 1)

	rows, err := f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{CourseIDs: []int{a.ID}, Semester: 1, AcademicYear: "2025/2026"})
	require.NoError(t, err)
	id := rows[0].ID

	_, err = f.enrollments.Review(f.ctx, student, id, model.StatusApproved)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.enrollments.Review(f.ctx, lecturer, id, model.StatusPending)
	assert.ErrorIs(t, err, ErrValidation)

	e, err := f.enrollments.Review(f.ctx, lecturer, id, model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, e.Status)
	require.NotNil(t, e.ApprovedBy)
	assert.Equal(t, lecturer.ID, *e.ApprovedBy)
	assert.NotNil(t, e.ApprovedAt)

	_, err = f.enrollments.Review(f.ctx, lecturer, id, model.StatusRejected)
	assert.ErrorIs(t, err, ErrInvariant)
	_, err = f.enrollments.Review(f.ctx, lecturer, id, model.StatusApproved)
	assert.ErrorIs(t, err, ErrInvariant)

	_, err = f.enrollments.Review(f.ctx, lecturer, 999, model.StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListKRS_ScopedForStudents(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	s1 := f.seedUser(t, "M0001", model.RoleStudent)
	s2 := f.seedUser(t, "M0002", model.RoleStudent)
	a := f.seedCourse(t, "IF101", lecturer, 3, 1)

	for _, s := range []Actor{s1, s2} {
		_, err := f.enrollments.Submit(f.ctx, s, model.SubmitEnrollmentRequest{CourseIDs: []int{a.ID}, Semester: 1, AcademicYear: "2025/2026"})
		require.NoError(t, err)
	}

	rows, err := f.enrollments.List(f.ctx, s1, EnrollmentQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, s1.ID, rows[0].StudentID)

	_, err = f.enrollments.List(f.ctx, s1, EnrollmentQuery{StudentID: s2.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	pending, err := f.enrollments.Pending(f.ctx, lecturer)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
