package service

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/academic"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
	"github.com/stemsi/siakad-backend/internal/storage"
)

// completionRatio is the share of a video that counts as watched.
const completionRatio = 0.9

var videoExtensions = []string{".mp4", ".webm", ".mov"}

// MaterialWeek groups the materials of one week.
type MaterialWeek struct {
	Week      int              `json:"week"`
	Materials []model.Material `json:"materials"`
}

// VideoProgress is a video plus the caller's progress on it.
type VideoProgress struct {
	model.Video
	Progress  float64 `json:"progress"`
	Completed bool    `json:"completed"`
}

// VideoWeek groups the videos of one week.
type VideoWeek struct {
	Week   int             `json:"week"`
	Videos []VideoProgress `json:"videos"`
}

// WatchResult is returned after reporting progress on a video.
type WatchResult struct {
	Watch    model.VideoWatch `json:"watch"`
	Progress float64          `json:"progress"`
}

// CourseProgress is the share of completed videos of one course.
type CourseProgress struct {
	CourseID        int    `json:"course_id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	TotalVideos     int    `json:"total_videos"`
	CompletedVideos int    `json:"completed_videos"`
	Percentage      int    `json:"percentage"`
}

// ELearningService manages course materials, videos, and watch progress.
type ELearningService struct {
	store repository.Store
	files storage.FileStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewELearningService creates a new ELearningService.
func NewELearningService(store repository.Store, files storage.FileStore, log zerolog.Logger) *ELearningService {
	return &ELearningService{
		store: store,
		files: files,
		log:   log.With().Str("component", "elearning_service").Logger(),
		now:   time.Now,
	}
}

// UploadMaterial stores a course file for one week.
func (s *ELearningService) UploadMaterial(ctx context.Context, actor Actor, form model.LearningForm, file *storage.Upload) (*model.Material, error) {
	const op = "elearning.upload_material"
	m := &model.Material{
		CourseID:    form.CourseID,
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Week:        weekOrDefault(form.Week),
		UploadedBy:  actor.ID,
		UploadedAt:  s.now(),
	}
	err := s.upload(ctx, op, actor, form, file, storage.DirMaterials, func(tx repository.Store, saved storage.Saved) error {
		m.FilePath, m.FileType = saved.Path, saved.MIME
		return tx.Materials().Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("material_id", m.ID).Int("course_id", m.CourseID).Msg("material uploaded")
	return m, nil
}

// UploadVideo stores a lecture recording for one week.
func (s *ELearningService) UploadVideo(ctx context.Context, actor Actor, form model.LearningForm, file *storage.Upload) (*model.Video, error) {
	const op = "elearning.upload_video"
	if file != nil && !hasExtension(file.Filename, videoExtensions) {
		return nil, fieldErr(op, "file", "Video harus berformat mp4, webm, atau mov")
	}
	v := &model.Video{
		CourseID:        form.CourseID,
		Title:           strings.TrimSpace(form.Title),
		Description:     strings.TrimSpace(form.Description),
		DurationMinutes: form.DurationMinutes,
		Week:            weekOrDefault(form.Week),
		UploadedBy:      actor.ID,
		UploadedAt:      s.now(),
	}
	err := s.upload(ctx, op, actor, form, file, storage.DirVideos, func(tx repository.Store, saved storage.Saved) error {
		if !strings.HasPrefix(saved.MIME, "video/") {
			return fieldErr(op, "file", "Video harus berformat mp4, webm, atau mov")
		}
		v.VideoPath = saved.Path
		return tx.Videos().Create(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("video_id", v.ID).Int("course_id", v.CourseID).Msg("video uploaded")
	return v, nil
}

// upload checks that the actor may publish to the course, then saves the
// file and runs create inside one transaction.
func (s *ELearningService) upload(ctx context.Context, op string, actor Actor, form model.LearningForm, file *storage.Upload,
	dir string, create func(tx repository.Store, saved storage.Saved) error) error {
	if err := authorize(op, actor, staffOnly...); err != nil {
		return err
	}
	if strings.TrimSpace(form.Title) == "" {
		return fieldErr(op, "title", "Judul wajib diisi")
	}
	if form.Week < 0 || form.DurationMinutes < 0 {
		return validationErr(op, "Minggu dan durasi tidak boleh negatif")
	}
	if file == nil {
		return fieldErr(op, "file", "File wajib diunggah")
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		course, err := s.ownedCourse(ctx, op, tx, actor, form.CourseID)
		if err != nil {
			return err
		}
		uploader, err := tx.Users().GetByID(ctx, actor.ID)
		if err != nil {
			return storeErr(op, "Pengguna", err)
		}
		saved, err := s.files.Save(ctx, dir, storage.FileName(uploader.NIM, course.Code, s.now(), file.Filename), *file)
		if err != nil {
			return uploadErr(op, err)
		}
		return storeErr(op, "Materi", create(tx, saved))
	})
	if err != nil && IsInternal(err) {
		s.log.Error().Err(err).Str("op", op).Int("course_id", form.CourseID).Msg("upload rolled back")
	}
	return err
}

// ownedCourse loads a course the actor may manage.
func (s *ELearningService) ownedCourse(ctx context.Context, op string, tx repository.Store, actor Actor, courseID int) (*model.Course, error) {
	course, err := tx.Courses().GetByID(ctx, courseID)
	if err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	if actor.IsLecturer() && course.LecturerID != actor.ID {
		return nil, forbiddenErr(op)
	}
	return course, nil
}

// DeleteMaterial removes a material record.
func (s *ELearningService) DeleteMaterial(ctx context.Context, actor Actor, id int) error {
	const op = "elearning.delete_material"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		m, err := tx.Materials().GetByID(ctx, id)
		if err != nil {
			return storeErr(op, "Materi", err)
		}
		if _, err := s.ownedCourse(ctx, op, tx, actor, m.CourseID); err != nil {
			return err
		}
		return storeErr(op, "Materi", tx.Materials().Delete(ctx, id))
	})
}

// DeleteVideo removes a video and its watch records.
func (s *ELearningService) DeleteVideo(ctx context.Context, actor Actor, id int) error {
	const op = "elearning.delete_video"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		v, err := tx.Videos().GetByID(ctx, id)
		if err != nil {
			return storeErr(op, "Video", err)
		}
		if _, err := s.ownedCourse(ctx, op, tx, actor, v.CourseID); err != nil {
			return err
		}
		return storeErr(op, "Video", tx.Videos().Delete(ctx, id))
	})
}

// Materials lists a course's materials grouped by ascending week.
func (s *ELearningService) Materials(ctx context.Context, courseID int) ([]MaterialWeek, error) {
	const op = "elearning.materials"
	if _, err := s.store.Courses().GetByID(ctx, courseID); err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	rows, err := s.store.Materials().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, storeErr(op, "Materi", err)
	}

	weeks := []MaterialWeek{}
	index := map[int]int{}
	for _, m := range rows {
		w := weekOrDefault(m.Week)
		i, ok := index[w]
		if !ok {
			i = len(weeks)
			index[w] = i
			weeks = append(weeks, MaterialWeek{Week: w})
		}
		weeks[i].Materials = append(weeks[i].Materials, m)
	}
	sort.SliceStable(weeks, func(i, j int) bool { return weeks[i].Week < weeks[j].Week })
	return weeks, nil
}

// Videos lists a course's videos grouped by ascending week, annotated with
// the caller's progress.
func (s *ELearningService) Videos(ctx context.Context, actor Actor, courseID int) ([]VideoWeek, error) {
	const op = "elearning.videos"
	if err := authorize(op, actor, anyRole...); err != nil {
		return nil, err
	}
	if _, err := s.store.Courses().GetByID(ctx, courseID); err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	rows, err := s.store.Videos().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, storeErr(op, "Video", err)
	}
	watches := map[int]model.VideoWatch{}
	if actor.IsStudent() {
		list, err := s.store.Videos().ListWatches(ctx, actor.ID)
		if err != nil {
			return nil, storeErr(op, "Video", err)
		}
		for _, w := range list {
			watches[w.VideoID] = w
		}
	}

	weeks := []VideoWeek{}
	index := map[int]int{}
	for _, v := range rows {
		w := weekOrDefault(v.Week)
		i, ok := index[w]
		if !ok {
			i = len(weeks)
			index[w] = i
			weeks = append(weeks, VideoWeek{Week: w})
		}
		vp := VideoProgress{Video: v}
		if watch, ok := watches[v.ID]; ok {
			vp.Progress = watchProgress(watch.WatchSeconds, watch.TotalSeconds)
			vp.Completed = watch.Completed
		}
		weeks[i].Videos = append(weeks[i].Videos, vp)
	}
	sort.SliceStable(weeks, func(i, j int) bool { return weeks[i].Week < weeks[j].Week })
	return weeks, nil
}

// TrackWatch records how far a student got through a video. A video stays
// completed once 90% of it has been watched.
func (s *ELearningService) TrackWatch(ctx context.Context, actor Actor, videoID int, req model.WatchRequest) (*WatchResult, error) {
	const op = "elearning.track_watch"
	if err := authorize(op, actor, studentOnly...); err != nil {
		return nil, err
	}
	if req.WatchSeconds < 0 || req.TotalSeconds < 0 {
		return nil, validationErr(op, "Durasi tidak boleh negatif")
	}
	if _, err := s.store.Videos().GetByID(ctx, videoID); err != nil {
		return nil, storeErr(op, "Video", err)
	}

	watched := req.WatchSeconds
	if req.TotalSeconds > 0 && watched > req.TotalSeconds {
		watched = req.TotalSeconds
	}
	w := model.VideoWatch{
		StudentID:    actor.ID,
		VideoID:      videoID,
		WatchSeconds: watched,
		TotalSeconds: req.TotalSeconds,
		Completed:    req.TotalSeconds > 0 && float64(watched) >= completionRatio*float64(req.TotalSeconds),
		LastWatched:  s.now(),
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		prev, err := tx.Videos().GetWatch(ctx, actor.ID, videoID)
		switch {
		case err == nil:
			if prev.Completed {
				w.Completed = true
			}
			if prev.WatchSeconds > w.WatchSeconds && prev.TotalSeconds == w.TotalSeconds {
				w.WatchSeconds = prev.WatchSeconds
			}
		case !errors.Is(err, repository.ErrNotFound):
			return storeErr(op, "Video", err)
		}
		return storeErr(op, "Video", tx.Videos().UpsertWatch(ctx, &w))
	})
	if err != nil {
		return nil, err
	}
	return &WatchResult{Watch: w, Progress: watchProgress(w.WatchSeconds, w.TotalSeconds)}, nil
}

// LearningProgress reports completed videos per course the student takes.
// Courses come from the KRS, or from graded courses when no KRS exists.
func (s *ELearningService) LearningProgress(ctx context.Context, actor Actor) ([]CourseProgress, error) {
	const op = "elearning.progress"
	if err := authorize(op, actor, studentOnly...); err != nil {
		return nil, err
	}

	courseIDs, err := s.studentCourses(ctx, op, actor.ID)
	if err != nil {
		return nil, err
	}
	out := []CourseProgress{}
	if len(courseIDs) == 0 {
		return out, nil
	}

	courses, err := s.store.Courses().GetByIDs(ctx, courseIDs)
	if err != nil {
		return nil, storeErr(op, "Mata kuliah", err)
	}
	watches, err := s.store.Videos().ListWatches(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(op, "Video", err)
	}
	completed := make(map[int]bool, len(watches))
	for _, w := range watches {
		if w.Completed {
			completed[w.VideoID] = true
		}
	}

	for _, c := range courses {
		videos, err := s.store.Videos().ListByCourse(ctx, c.ID)
		if err != nil {
			return nil, storeErr(op, "Video", err)
		}
		p := CourseProgress{CourseID: c.ID, Code: c.Code, Name: c.Name, TotalVideos: len(videos)}
		for _, v := range videos {
			if completed[v.ID] {
				p.CompletedVideos++
			}
		}
		if p.TotalVideos > 0 {
			p.Percentage = p.CompletedVideos * 100 / p.TotalVideos
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *ELearningService) studentCourses(ctx context.Context, op string, studentID int) ([]int, error) {
	krs, err := s.store.Enrollments().List(ctx, repository.EnrollmentFilter{StudentID: studentID})
	if err != nil {
		return nil, storeErr(op, "KRS", err)
	}
	var ids []int
	for _, e := range krs {
		if e.Status != model.StatusRejected {
			ids = append(ids, e.CourseID)
		}
	}
	if len(krs) == 0 {
		grades, err := s.store.Grades().List(ctx, repository.GradeFilter{StudentID: studentID})
		if err != nil {
			return nil, storeErr(op, "Nilai", err)
		}
		for _, g := range grades {
			ids = append(ids, g.CourseID)
		}
	}
	return uniqueIDs(ids), nil
}

// watchProgress is the watched percentage, 0 when the total is unknown.
func watchProgress(watched, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := academic.Round2(float64(watched) / float64(total) * 100)
	if p > 100 {
		return 100
	}
	return p
}

func weekOrDefault(week int) int {
	if week <= 0 {
		return 1
	}
	return week
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// uploadErr classifies storage failures.
func uploadErr(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrUnsupportedFileType):
		return fieldErr(op, "file", "Tipe file tidak didukung")
	case errors.Is(err, storage.ErrFileTooLarge):
		return fieldErr(op, "file", "Ukuran file melebihi batas")
	case errors.Is(err, storage.ErrEmptyFile):
		return fieldErr(op, "file", "File kosong")
	}
	return storeErr(op, "File", err)
}
