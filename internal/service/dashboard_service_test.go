package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/siakad-backend/internal/model"
)

func TestDashboard_PerRole(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "A0001", model.RoleAdmin)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	course := f.seedCourse(t, "IF101", lecturer, 3, 1)

	_, err := f.grades.Record(f.ctx, lecturer, model.GradeRequest{StudentID: student.ID, CourseID: course.ID, Score: ptr(85.0)})
	require.NoError(t, err)
	_, err = f.submissions.SubmitAssignment(f.ctx, student, model.AssignmentForm{CourseID: course.ID, Title: "Tugas"}, upload("a.pdf"))
	require.NoError(t, err)
	_, err = f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{CourseIDs: []int{course.ID}, Semester: 1, AcademicYear: "2025/2026"})
	require.NoError(t, err)

	got, err := f.dashboard.For(f.ctx, student)
	require.NoError(t, err)
	sd, ok := got.(*StudentDashboard)
	require.True(t, ok)
	assert.Equal(t, 85.0, sd.CumulativeGPA)
	assert.Len(t, sd.RecentSubmissions, 1)

	got, err = f.dashboard.For(f.ctx, lecturer)
	require.NoError(t, err)
	ld, ok := got.(*LecturerDashboard)
	require.True(t, ok)
	assert.Len(t, ld.Courses, 1)
	assert.Equal(t, 1, ld.PendingSubmissions)
	assert.Equal(t, 1, ld.GradedStudents)

	got, err = f.dashboard.For(f.ctx, admin)
	require.NoError(t, err)
	ad, ok := got.(*AdminDashboard)
	require.True(t, ok)
	assert.Equal(t, 1, ad.UsersByRole[model.RoleStudent])
	assert.Equal(t, 1, ad.TotalCourses)
	assert.Equal(t, 1, ad.TotalSubmissions)
	assert.Equal(t, 1, ad.PendingKRS)

	_, err = f.dashboard.Admin(f.ctx, student)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDashboard_AdminCourseReport(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "A0001", model.RoleAdmin)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	busy := f.seedCourse(t, "IF102", lecturer, 3, 1)
	quiet := f.seedCourse(t, "IF101", lecturer, 2, 1)

	for i := 0; i < 12; i++ {
		_, err := f.submissions.SubmitAssignment(f.ctx, student, model.AssignmentForm{CourseID: busy.ID, Title: "Tugas"}, upload("a.pdf"))
		require.NoError(t, err)
	}
	_, err := f.grades.Record(f.ctx, lecturer, model.GradeRequest{StudentID: student.ID, CourseID: busy.ID, Score: ptr(70.0)})
	require.NoError(t, err)
	_, err = f.grades.Record(f.ctx, lecturer, model.GradeRequest{StudentID: student.ID, CourseID: busy.ID, Score: ptr(80.0)})
	require.NoError(t, err)

	ad, err := f.dashboard.Admin(f.ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, ad.TotalUsers)
	assert.Equal(t, 12, ad.TotalSubmissions)
	assert.Len(t, ad.RecentSubmissions, 10)
	assert.True(t, ad.RecentSubmissions[0].SubmittedAt.After(ad.RecentSubmissions[9].SubmittedAt))

	require.Len(t, ad.Courses, 2)
	assert.Equal(t, quiet.ID, ad.Courses[0].Course.ID)
	assert.Zero(t, ad.Courses[0].StudentCount)
	assert.Zero(t, ad.Courses[0].SubmissionCount)
	assert.Equal(t, busy.ID, ad.Courses[1].Course.ID)
	assert.Equal(t, 1, ad.Courses[1].StudentCount)
	assert.Equal(t, 12, ad.Courses[1].SubmissionCount)
}
