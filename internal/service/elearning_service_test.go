package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/siakad-backend/internal/model"
)

func seedVideo(t *testing.T, f *fixture, lecturer Actor, course model.Course, week int) *model.Video {
	t.Helper()
	f.files.mime = "video/mp4"
	defer func() { f.files.mime = "" }()
	v, err := f.elearning.UploadVideo(f.ctx, lecturer, model.LearningForm{
		CourseID: course.ID, Title: "Pertemuan", Week: week, DurationMinutes: 10,
	}, upload("kuliah.mp4"))
	require.NoError(t, err)
	return v
}

func TestUploadMaterial_GroupedByWeek(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	course := f.seedCourse(t, "IF101", lecturer, 3, 1)

	for _, week := range []int{3, 0, 1} {
		_, err := f.elearning.UploadMaterial(f.ctx, lecturer, model.LearningForm{
			CourseID: course.ID, Title: "Materi", Week: week,
		}, upload("slide.pdf"))
		require.NoError(t, err)
	}

	weeks, err := f.elearning.Materials(f.ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, 1, weeks[0].Week)
	assert.Len(t, weeks[0].Materials, 2)
	assert.Equal(t, 3, weeks[1].Week)

	_, err = f.elearning.Materials(f.ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadMaterial_OnlyOwningLecturer(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "D0001", model.RoleLecturer)
	other := f.seedUser(t, "D0002", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	course := f.seedCourse(t, "IF101", owner, 3, 1)
	form := model.LearningForm{CourseID: course.ID, Title: "Materi"}

	_, err := f.elearning.UploadMaterial(f.ctx, other, form, upload("slide.pdf"))
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.elearning.UploadMaterial(f.ctx, student, form, upload("slide.pdf"))
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.elearning.UploadMaterial(f.ctx, owner, form, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.files.saved)
}

func TestUploadVideo_RejectsNonVideo(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	course := f.seedCourse(t, "IF101", lecturer, 3, 1)
	form := model.LearningForm{CourseID: course.ID, Title: "Video"}

	_, err := f.elearning.UploadVideo(f.ctx, lecturer, form, upload("kuliah.pdf"))
	assert.ErrorIs(t, err, ErrValidation)

	// extension says video, content does not
	_, err = f.elearning.UploadVideo(f.ctx, lecturer, form, upload("kuliah.mp4"))
	assert.ErrorIs(t, err, ErrValidation)

	weeks, err := f.elearning.Videos(f.ctx, lecturer, course.ID)
	require.NoError(t, err)
	assert.Empty(t, weeks)
}

func TestTrackWatch_CompletionIsSticky(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	course := f.seedCourse(t, "IF101", lecturer, 3, 1)
	v := seedVideo(t, f, lecturer, course, 1)

	res, err := f.elearning.TrackWatch(f.ctx, student, v.ID, model.WatchRequest{WatchSeconds: 500, TotalSeconds: 600})
	require.NoError(t, err)
	assert.False(t, res.Watch.Completed)
	assert.Equal(t, 83.33, res.Progress)

	res, err = f.elearning.TrackWatch(f.ctx, student, v.ID, model.WatchRequest{WatchSeconds: 540, TotalSeconds: 600})
	require.NoError(t, err)
	assert.True(t, res.Watch.Completed)
	assert.Equal(t, 90.0, res.Progress)

	res, err = f.elearning.TrackWatch(f.ctx, student, v.ID, model.WatchRequest{WatchSeconds: 60, TotalSeconds: 600})
	require.NoError(t, err)
	assert.True(t, res.Watch.Completed)

	res, err = f.elearning.TrackWatch(f.ctx, student, v.ID, model.WatchRequest{WatchSeconds: 900, TotalSeconds: 600})
	require.NoError(t, err)
	assert.Equal(t, 600, res.Watch.WatchSeconds)
	assert.Equal(t, 100.0, res.Progress)
}

func TestTrackWatch_UnknownTotal(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	course := f.seedCourse(t, "IF101", lecturer, 3, 1)
	v := seedVideo(t, f, lecturer, course, 1)

	res, err := f.elearning.TrackWatch(f.ctx, student, v.ID, model.WatchRequest{WatchSeconds: 120})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Progress)
	assert.False(t, res.Watch.Completed)

	_, err = f.elearning.TrackWatch(f.ctx, student, 999, model.WatchRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.elearning.TrackWatch(f.ctx, lecturer, v.ID, model.WatchRequest{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLearningProgress(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	course := f.seedCourse(t, "IF101", lecturer, 3, 1)
	v1 := seedVideo(t, f, lecturer, course, 1)
	seedVideo(t, f, lecturer, course, 2)
	seedVideo(t, f, lecturer, course, 3)

	progress, err := f.elearning.LearningProgress(f.ctx, student)
	require.NoError(t, err)
	assert.Empty(t, progress)

	_, err = f.enrollments.Submit(f.ctx, student, model.SubmitEnrollmentRequest{CourseIDs: []int{course.ID}, Semester: 1, AcademicYear: "2025/2026"})
	require.NoError(t, err)
	_, err = f.elearning.TrackWatch(f.ctx, student, v1.ID, model.WatchRequest{WatchSeconds: 600, TotalSeconds: 600})
	require.NoError(t, err)

	progress, err = f.elearning.LearningProgress(f.ctx, student)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, "IF101", progress[0].Code)
	assert.Equal(t, 3, progress[0].TotalVideos)
	assert.Equal(t, 1, progress[0].CompletedVideos)
	assert.Equal(t, 33, progress[0].Percentage)

	weeks, err := f.elearning.Videos(f.ctx, student, course.ID)
	require.NoError(t, err)
	require.Len(t, weeks, 3)
	assert.True(t, weeks[0].Videos[0].Completed)
	assert.Equal(t, 100.0, weeks[0].Videos[0].Progress)
}

func TestLearningProgress_FallsBackToGrades(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	student := f.seedUser(t, "M0001", model.RoleStudent)
	course := f.seedCourse(t, "IF101", lecturer, 3, 1)
	require.NoError(t, f.store.Grades().Create(f.ctx, &model.Grade{
		StudentID: student.ID, CourseID: course.ID, Score: 80, Weight: 3, Letter: "A-", Semester: 1,
	}))

	progress, err := f.elearning.LearningProgress(f.ctx, student)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 0, progress[0].TotalVideos)
	assert.Equal(t, 0, progress[0].Percentage)
}

func TestDeleteVideo(t *testing.T) {
	f := newFixture(t)
	lecturer := f.seedUser(t, "D0001", model.RoleLecturer)
	other := f.seedUser(t, "D0002", model.RoleLecturer)
	course := f.seedCourse(t, "IF101", lecturer, 3, 1)
	v := seedVideo(t, f, lecturer, course, 1)

	assert.ErrorIs(t, f.elearning.DeleteVideo(f.ctx, other, v.ID), ErrForbidden)
	require.NoError(t, f.elearning.DeleteVideo(f.ctx, lecturer, v.ID))
	assert.ErrorIs(t, f.elearning.DeleteVideo(f.ctx, lecturer, v.ID), ErrNotFound)
}
