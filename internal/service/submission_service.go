package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
	"github.com/stemsi/siakad-backend/internal/storage"
)

const dateLayout = "2006-01-02"

// SubmissionQuery filters staff listings. Zero values mean "any".
type SubmissionQuery struct {
	StudentID int
	CourseID  int
	Status    model.Status
}

// SubmissionService runs the assignment, letter, internship, and thesis
// workflows. Every kind starts pending and is reviewed by staff.
type SubmissionService struct {
	store repository.Store
	files storage.FileStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(store repository.Store, files storage.FileStore, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		store: store,
		files: files,
		log:   log.With().Str("component", "submission_service").Logger(),
		now:   time.Now,
	}
}

// ─── Submit ────────────────────────────────────────────────────────────

// SubmitAssignment stores an assignment file and records it as pending.
func (s *SubmissionService) SubmitAssignment(ctx context.Context, actor Actor, form model.AssignmentForm, file *storage.Upload) (*model.Submission, error) {
	const op = "submission.assignment"
	if err := authorize(op, actor, studentOnly...); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(form.Title)
	if form.CourseID <= 0 || title == "" {
		return nil, validationErr(op, "Mata kuliah dan judul wajib diisi")
	}
	if file == nil {
		return nil, fieldErr(op, "file", "File tugas wajib diunggah")
	}
	var deadline *time.Time
	if form.Deadline != "" {
		d, err := time.Parse(dateLayout, form.Deadline)
		if err != nil {
			return nil, fieldErr(op, "deadline", "Format tenggat harus YYYY-MM-DD")
		}
		deadline = &d
	}

	now := s.now()
	sub := &model.Submission{
		StudentID:   actor.ID,
		CourseID:    form.CourseID,
		Title:       title,
		Description: strings.TrimSpace(form.Description),
		Status:      model.StatusPending,
		Deadline:    deadline,
		SubmittedAt: now,
	}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		student, err := tx.Users().GetByID(ctx, actor.ID)
		if err != nil {
			return storeErr(op, "Mahasiswa", err)
		}
		course, err := tx.Courses().GetByID(ctx, form.CourseID)
		if err != nil {
			return storeErr(op, "Mata kuliah", err)
		}
		path, err := s.save(ctx, op, storage.DirAssignments, student.NIM, course.Code, now, file)
		if err != nil {
			return err
		}
		sub.FilePath = path
		return storeErr(op, "Tugas", tx.Submissions().Create(ctx, sub))
	})
	if err != nil {
		return nil, s.logged(op, actor, err)
	}
	s.log.Info().Int("submission_id", sub.ID).Int("student_id", actor.ID).Msg("assignment submitted")
	return sub, nil
}

// SubmitLetter records a letter request with an optional attachment.
func (s *SubmissionService) SubmitLetter(ctx context.Context, actor Actor, form model.LetterForm, file *storage.Upload) (*model.LetterSubmission, error) {
	const op = "submission.letter"
	if err := authorize(op, actor, studentOnly...); err != nil {
		return nil, err
	}
	l := &model.LetterSubmission{
		StudentID:   actor.ID,
		LetterType:  strings.TrimSpace(form.LetterType),
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Status:      model.StatusPending,
		SubmittedAt: s.now(),
	}
	if l.LetterType == "" || l.Title == "" || l.Description == "" {
		return nil, validationErr(op, "Jenis surat, judul, dan keterangan wajib diisi")
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		path, err := s.attach(ctx, op, tx, actor.ID, storage.DirLetters, l.LetterType, l.SubmittedAt, file)
		if err != nil {
			return err
		}
		l.FilePath = path
		return storeErr(op, "Surat", tx.Letters().Create(ctx, l))
	})
	if err != nil {
		return nil, s.logged(op, actor, err)
	}
	s.log.Info().Int("letter_id", l.ID).Int("student_id", actor.ID).Msg("letter submitted")
	return l, nil
}

// SubmitInternship records an internship application.
func (s *SubmissionService) SubmitInternship(ctx context.Context, actor Actor, form model.InternshipForm, file *storage.Upload) (*model.InternshipApplication, error) {
	const op = "submission.internship"
	if err := authorize(op, actor, studentOnly...); err != nil {
		return nil, err
	}
	a := &model.InternshipApplication{
		StudentID:   actor.ID,
		Company:     strings.TrimSpace(form.Company),
		Position:    strings.TrimSpace(form.Position),
		Reason:      strings.TrimSpace(form.Reason),
		Status:      model.StatusPending,
		SubmittedAt: s.now(),
	}
	if a.Company == "" || a.Position == "" || a.Reason == "" {
		return nil, validationErr(op, "Perusahaan, posisi, dan alasan wajib diisi")
	}
	start, err := time.Parse(dateLayout, form.StartDate)
	if err != nil {
		return nil, fieldErr(op, "start_date", "Format tanggal mulai harus YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, form.EndDate)
	if err != nil {
		return nil, fieldErr(op, "end_date", "Format tanggal selesai harus YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, fieldErr(op, "end_date", "Tanggal selesai tidak boleh sebelum tanggal mulai")
	}
	a.StartDate, a.EndDate = start, end

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		path, err := s.attach(ctx, op, tx, actor.ID, storage.DirInternships, "magang", a.SubmittedAt, file)
		if err != nil {
			return err
		}
		a.FilePath = path
		return storeErr(op, "Pengajuan magang", tx.Internships().Create(ctx, a))
	})
	if err != nil {
		return nil, s.logged(op, actor, err)
	}
	s.log.Info().Int("internship_id", a.ID).Int("student_id", actor.ID).Msg("internship application submitted")
	return a, nil
}

// SubmitThesis records a thesis proposal.
func (s *SubmissionService) SubmitThesis(ctx context.Context, actor Actor, form model.ThesisForm, file *storage.Upload) (*model.ThesisApplication, error) {
	const op = "submission.thesis"
	if err := authorize(op, actor, studentOnly...); err != nil {
		return nil, err
	}
	a := &model.ThesisApplication{
		StudentID:      actor.ID,
		Title:          strings.TrimSpace(form.Title),
		Specialization: strings.TrimSpace(form.Specialization),
		Abstract:       strings.TrimSpace(form.Abstract),
		Status:         model.StatusPending,
		SubmittedAt:    s.now(),
	}
	if a.Title == "" || a.Specialization == "" || a.Abstract == "" {
		return nil, validationErr(op, "Judul, bidang peminatan, dan abstrak wajib diisi")
	}
	if sup := strings.TrimSpace(form.PreferredSupervisor); sup != "" {
		a.PreferredSupervisor = &sup
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		path, err := s.attach(ctx, op, tx, actor.ID, storage.DirTheses, "skripsi", a.SubmittedAt, file)
		if err != nil {
			return err
		}
		a.FilePath = path
		return storeErr(op, "Pengajuan skripsi", tx.Theses().Create(ctx, a))
	})
	if err != nil {
		return nil, s.logged(op, actor, err)
	}
	s.log.Info().Int("thesis_id", a.ID).Int("student_id", actor.ID).Msg("thesis proposal submitted")
	return a, nil
}

// attach saves an optional file named after the acting student.
func (s *SubmissionService) attach(ctx context.Context, op string, tx repository.Store, studentID int, dir, tag string, at time.Time, file *storage.Upload) (*string, error) {
	if file == nil {
		return nil, nil
	}
	student, err := tx.Users().GetByID(ctx, studentID)
	if err != nil {
		return nil, storeErr(op, "Mahasiswa", err)
	}
	path, err := s.save(ctx, op, dir, student.NIM, tag, at, file)
	if err != nil {
		return nil, err
	}
	return &path, nil
}

// save writes the upload under the student's name.
// A failed commit after this point leaves the file behind.
func (s *SubmissionService) save(ctx context.Context, op, dir, owner, tag string, at time.Time, file *storage.Upload) (string, error) {
	saved, err := s.files.Save(ctx, dir, storage.FileName(owner, tag, at, file.Filename), *file)
	if err != nil {
		return "", uploadErr(op, err)
	}
	return saved.Path, nil
}

func (s *SubmissionService) logged(op string, actor Actor, err error) error {
	if IsInternal(err) {
		s.log.Error().Err(err).Str("op", op).Int("actor_id", actor.ID).Msg("submission rolled back")
	}
	return err
}
