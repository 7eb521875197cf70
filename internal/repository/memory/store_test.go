package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

func seedLecturerAndCourse(t *testing.T, s *Store) (*model.User, *model.Course) {
	t.Helper()
	ctx := context.Background()

	lecturer := &model.User{NIM: "D0001", Name: "Dosen", Email: "dosen@kampus.ac.id", Role: model.RoleLecturer}
	require.NoError(t, s.Users().Create(ctx, lecturer))

	course := &model.Course{Code: "IF101", Name: "Algoritma", Credits: 3, Semester: 1, LecturerID: lecturer.ID}
	require.NoError(t, s.Courses().Create(ctx, course))
	return lecturer, course
}

func TestUsers_UniqueNIMAndEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &model.User{NIM: "M0001", Email: "a@kampus.ac.id", Role: model.RoleStudent}))

	err := s.Users().Create(ctx, &model.User{NIM: "M0001", Email: "b@kampus.ac.id", Role: model.RoleStudent})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = s.Users().Create(ctx, &model.User{NIM: "M0002", Email: "A@kampus.ac.id", Role: model.RoleStudent})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, total, err := s.Users().List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestUsers_ListFiltersAndPaginates(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, u := range []model.User{
		{NIM: "M0001", Name: "Citra", Email: "c@x.id", Role: model.RoleStudent},
		{NIM: "M0002", Name: "Andi", Email: "a@x.id", Role: model.RoleStudent},
		{NIM: "M0003", Name: "Budi", Email: "b@x.id", Role: model.RoleStudent},
		{NIM: "D0001", Name: "Dewi", Email: "d@x.id", Role: model.RoleLecturer},
	} {
		u := u
		require.NoError(t, s.Users().Create(ctx, &u))
	}

	users, total, err := s.Users().List(ctx, repository.UserFilter{Role: model.RoleStudent, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, users, 2)
	assert.Equal(t, "Andi", users[0].Name)
	assert.Equal(t, "Budi", users[1].Name)

	users, total, err = s.Users().List(ctx, repository.UserFilter{Search: "dew"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "D0001", users[0].NIM)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, course := seedLecturerAndCourse(t, s)

	student := &model.User{NIM: "M0001", Email: "m@kampus.ac.id", Role: model.RoleStudent}
	require.NoError(t, s.Users().Create(ctx, student))
	require.NoError(t, s.Enrollments().Create(ctx, &model.Enrollment{
		StudentID: student.ID, CourseID: course.ID, Semester: 1, AcademicYear: "2023/2024", Status: model.StatusPending,
	}))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx repository.Store) error {
		n, err := tx.Enrollments().DeleteByPeriod(ctx, student.ID, 1, "2023/2024")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, err := s.Enrollments().List(ctx, repository.EnrollmentFilter{StudentID: student.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWithTx_NestedReusesTransaction(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx repository.Store) error {
		return tx.WithTx(ctx, func(inner repository.Store) error {
			return inner.Settings().Upsert(ctx, "system_name", "SIAKAD")
		})
	})
	require.NoError(t, err)

	setting, err := s.Settings().GetByKey(ctx, "system_name")
	require.NoError(t, err)
	assert.Equal(t, "SIAKAD", setting.Value)
}

func TestCourses_DeleteReferencedByGrades(t *testing.T) {
	s := New()
	ctx := context.Background()
	lecturer, course := seedLecturerAndCourse(t, s)

	student := &model.User{NIM: "M0001", Email: "m@kampus.ac.id", Role: model.RoleStudent}
	require.NoError(t, s.Users().Create(ctx, student))
	require.NoError(t, s.Grades().Create(ctx, &model.Grade{StudentID: student.ID, CourseID: course.ID, Score: 80, Weight: 3, Semester: 1}))

	assert.ErrorIs(t, s.Courses().Delete(ctx, course.ID), repository.ErrReferenced)
	assert.ErrorIs(t, s.Users().Delete(ctx, lecturer.ID), repository.ErrReferenced)

	require.NoError(t, s.Users().Delete(ctx, student.ID))
	grades, err := s.Grades().List(ctx, repository.GradeFilter{CourseID: course.ID})
	require.NoError(t, err)
	assert.Empty(t, grades)
	assert.NoError(t, s.Courses().Delete(ctx, course.ID))
}

func TestVideos_UpsertWatchKeepsOneRow(t *testing.T) {
	s := New()
	ctx := context.Background()
	lecturer, course := seedLecturerAndCourse(t, s)

	student := &model.User{NIM: "M0001", Email: "m@kampus.ac.id", Role: model.RoleStudent}
	require.NoError(t, s.Users().Create(ctx, student))
	video := &model.Video{CourseID: course.ID, Title: "Pertemuan 1", Week: 1, UploadedBy: lecturer.ID}
	require.NoError(t, s.Videos().Create(ctx, video))

	require.NoError(t, s.Videos().UpsertWatch(ctx, &model.VideoWatch{StudentID: student.ID, VideoID: video.ID, WatchSeconds: 10, TotalSeconds: 100}))
	require.NoError(t, s.Videos().UpsertWatch(ctx, &model.VideoWatch{StudentID: student.ID, VideoID: video.ID, WatchSeconds: 95, TotalSeconds: 100, Completed: true}))

	watches, err := s.Videos().ListWatches(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, watches, 1)
	assert.True(t, watches[0].Completed)
	assert.Equal(t, 95, watches[0].WatchSeconds)
}
