package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/stemsi/siakad-backend/internal/academic"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
)

// ─── Review ────────────────────────────────────────────────────────────

// reviewTarget loads the current state of the record being reviewed.
// courseID is 0 for kinds that are not tied to a course.
type reviewTarget func(tx repository.Store) (status model.Status, courseID int, err error)

// review checks capability and transition, then writes the outcome.
// A final status may be re-applied to revise the score or comment.
// For course-bound kinds a lecturer gets ErrForbidden for a missing record
// too, so ids of other lecturers' courses cannot be probed.
func (s *SubmissionService) review(ctx context.Context, op, entity string, courseBound bool, actor Actor, req model.ReviewRequest,
	load reviewTarget, write func(tx repository.Store, r model.Review) error) error {
	if err := authorize(op, actor, staffOnly...); err != nil {
		return err
	}
	if !req.Status.Terminal() {
		return fieldErr(op, "status", "Status harus approved atau rejected")
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		return fieldErr(op, "score", "Nilai harus antara 0 dan 100")
	}
	var comment *string
	if req.Comment != nil {
		c := strings.TrimSpace(*req.Comment)
		comment = &c
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		current, courseID, err := load(tx)
		if err != nil {
			if courseBound && actor.IsLecturer() && errors.Is(err, repository.ErrNotFound) {
				return forbiddenErr(op)
			}
			return storeErr(op, entity, err)
		}
		if courseID > 0 && actor.IsLecturer() {
			course, err := tx.Courses().GetByID(ctx, courseID)
			if err != nil {
				return storeErr(op, "Mata kuliah", err)
			}
			if course.LecturerID != actor.ID {
				return forbiddenErr(op)
			}
		}
		if err := academic.CheckTransition(current, req.Status, academic.AllowRevise); err != nil {
			return storeErr(op, entity, err)
		}
		return storeErr(op, entity, write(tx, model.Review{
			Status:     req.Status,
			Score:      req.Score,
			Comment:    comment,
			ReviewerID: actor.ID,
			ReviewedAt: s.now(),
		}))
	})
	if err != nil {
		return s.logged(op, actor, err)
	}
	s.log.Info().Str("op", op).Str("status", string(req.Status)).Int("by", actor.ID).Msg("submission reviewed")
	return nil
}

// ReviewAssignment sets the outcome, and optionally score and comment, of an
// assignment. Lecturers may only review assignments of their own courses.
func (s *SubmissionService) ReviewAssignment(ctx context.Context, actor Actor, id int, req model.ReviewRequest) (*model.Submission, error) {
	const op = "submission.review_assignment"
	var out *model.Submission
	err := s.review(ctx, op, "Tugas", true, actor, req,
		func(tx repository.Store) (model.Status, int, error) {
			sub, err := tx.Submissions().GetByID(ctx, id)
			if err != nil {
				return "", 0, err
			}
			return sub.Status, sub.CourseID, nil
		},
		func(tx repository.Store, r model.Review) error {
			if err := tx.Submissions().Review(ctx, id, r); err != nil {
				return err
			}
			var err error
			out, err = tx.Submissions().GetByID(ctx, id)
			return err
		})
	return out, err
}

// ReviewLetter approves or rejects a letter request. The comment is stored
// as the reviewer's notes.
func (s *SubmissionService) ReviewLetter(ctx context.Context, actor Actor, id int, req model.ReviewRequest) (*model.LetterSubmission, error) {
	const op = "submission.review_letter"
	var out *model.LetterSubmission
	err := s.review(ctx, op, "Surat", false, actor, req,
		func(tx repository.Store) (model.Status, int, error) {
			l, err := tx.Letters().GetByID(ctx, id)
			if err != nil {
				return "", 0, err
			}
			return l.Status, 0, nil
		},
		func(tx repository.Store, r model.Review) error {
			if err := tx.Letters().Review(ctx, id, r); err != nil {
				return err
			}
			var err error
			out, err = tx.Letters().GetByID(ctx, id)
			return err
		})
	return out, err
}

// ReviewInternship approves or rejects an internship application.
func (s *SubmissionService) ReviewInternship(ctx context.Context, actor Actor, id int, req model.ReviewRequest) (*model.InternshipApplication, error) {
	const op = "submission.review_internship"
	var out *model.InternshipApplication
	err := s.review(ctx, op, "Pengajuan magang", false, actor, req,
		func(tx repository.Store) (model.Status, int, error) {
			a, err := tx.Internships().GetByID(ctx, id)
			if err != nil {
				return "", 0, err
			}
			return a.Status, 0, nil
		},
		func(tx repository.Store, r model.Review) error {
			if err := tx.Internships().Review(ctx, id, r); err != nil {
				return err
			}
			var err error
			out, err = tx.Internships().GetByID(ctx, id)
			return err
		})
	return out, err
}

// ReviewThesis approves or rejects a thesis proposal.
func (s *SubmissionService) ReviewThesis(ctx context.Context, actor Actor, id int, req model.ReviewRequest) (*model.ThesisApplication, error) {
	const op = "submission.review_thesis"
	var out *model.ThesisApplication
	err := s.review(ctx, op, "Pengajuan skripsi", false, actor, req,
		func(tx repository.Store) (model.Status, int, error) {
			a, err := tx.Theses().GetByID(ctx, id)
			if err != nil {
				return "", 0, err
			}
			return a.Status, 0, nil
		},
		func(tx repository.Store, r model.Review) error {
			if err := tx.Theses().Review(ctx, id, r); err != nil {
				return err
			}
			var err error
			out, err = tx.Theses().GetByID(ctx, id)
			return err
		})
	return out, err
}

// ─── Listing ───────────────────────────────────────────────────────────

// ListForStudent merges every submission kind of a student, newest first.
func (s *SubmissionService) ListForStudent(ctx context.Context, actor Actor, studentID int) ([]model.SubmissionSummary, error) {
	const op = "submission.list_student"
	if err := canViewStudent(op, actor, studentID); err != nil {
		return nil, err
	}
	return s.collect(ctx, op, repository.SubmissionFilter{StudentID: studentID})
}

// collect merges every submission kind matching f, newest first.
func (s *SubmissionService) collect(ctx context.Context, op string, f repository.SubmissionFilter) ([]model.SubmissionSummary, error) {
	assignments, err := s.store.Submissions().List(ctx, f)
	if err != nil {
		return nil, storeErr(op, "Tugas", err)
	}
	letters, err := s.store.Letters().List(ctx, f)
	if err != nil {
		return nil, storeErr(op, "Surat", err)
	}
	internships, err := s.store.Internships().List(ctx, f)
	if err != nil {
		return nil, storeErr(op, "Pengajuan magang", err)
	}
	theses, err := s.store.Theses().List(ctx, f)
	if err != nil {
		return nil, storeErr(op, "Pengajuan skripsi", err)
	}

	out := make([]model.SubmissionSummary, 0, len(assignments)+len(letters)+len(internships)+len(theses))
	for _, a := range assignments {
		out = append(out, model.SubmissionSummary{Kind: model.KindAssignment, ID: a.ID, StudentID: a.StudentID,
			Title: a.Title, Status: a.Status, Score: a.Score, Comment: a.Comment, SubmittedAt: a.SubmittedAt})
	}
	for _, l := range letters {
		out = append(out, model.SubmissionSummary{Kind: model.KindLetter, ID: l.ID, StudentID: l.StudentID,
			Title: l.Title, Status: l.Status, Comment: l.Notes, SubmittedAt: l.SubmittedAt})
	}
	for _, a := range internships {
		out = append(out, model.SubmissionSummary{Kind: model.KindInternship, ID: a.ID, StudentID: a.StudentID,
			Title: a.Company + " - " + a.Position, Status: a.Status, Comment: a.Notes, SubmittedAt: a.SubmittedAt})
	}
	for _, a := range theses {
		out = append(out, model.SubmissionSummary{Kind: model.KindThesis, ID: a.ID, StudentID: a.StudentID,
			Title: a.Title, Status: a.Status, Comment: a.Notes, SubmittedAt: a.SubmittedAt})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// ListAssignments lists assignments for staff. Lecturers only see the
// courses they teach.
func (s *SubmissionService) ListAssignments(ctx context.Context, actor Actor, q SubmissionQuery) ([]model.Submission, error) {
	const op = "submission.list_assignments"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return nil, err
	}
	rows, err := s.store.Submissions().List(ctx, repository.SubmissionFilter{
		StudentID: q.StudentID, CourseID: q.CourseID, Status: q.Status,
	})
	if err != nil {
		return nil, storeErr(op, "Tugas", err)
	}
	if actor.IsLecturer() {
		courses, _, err := s.store.Courses().List(ctx, repository.CourseFilter{LecturerID: actor.ID})
		if err != nil {
			return nil, storeErr(op, "Mata kuliah", err)
		}
		taught := make(map[int]bool, len(courses))
		for _, c := range courses {
			taught[c.ID] = true
		}
		if q.CourseID > 0 && !taught[q.CourseID] {
			return nil, forbiddenErr(op)
		}
		kept := rows[:0]
		for _, r := range rows {
			if taught[r.CourseID] {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	if rows == nil {
		rows = []model.Submission{}
	}
	return rows, nil
}

// ListLetters lists letter requests for staff.
func (s *SubmissionService) ListLetters(ctx context.Context, actor Actor, status model.Status) ([]model.LetterSubmission, error) {
	const op = "submission.list_letters"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return nil, err
	}
	rows, err := s.store.Letters().List(ctx, repository.SubmissionFilter{Status: status})
	if err != nil {
		return nil, storeErr(op, "Surat", err)
	}
	if rows == nil {
		rows = []model.LetterSubmission{}
	}
	return rows, nil
}

// ListInternships lists internship applications for staff.
func (s *SubmissionService) ListInternships(ctx context.Context, actor Actor, status model.Status) ([]model.InternshipApplication, error) {
	const op = "submission.list_internships"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return nil, err
	}
	rows, err := s.store.Internships().List(ctx, repository.SubmissionFilter{Status: status})
	if err != nil {
		return nil, storeErr(op, "Pengajuan magang", err)
	}
	if rows == nil {
		rows = []model.InternshipApplication{}
	}
	return rows, nil
}

// ListTheses lists thesis proposals for staff.
func (s *SubmissionService) ListTheses(ctx context.Context, actor Actor, status model.Status) ([]model.ThesisApplication, error) {
	const op = "submission.list_theses"
	if err := authorize(op, actor, staffOnly...); err != nil {
		return nil, err
	}
	rows, err := s.store.Theses().List(ctx, repository.SubmissionFilter{Status: status})
	if err != nil {
		return nil, storeErr(op, "Pengajuan skripsi", err)
	}
	if rows == nil {
		rows = []model.ThesisApplication{}
	}
	return rows, nil
}
