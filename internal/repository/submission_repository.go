package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/siakad-backend/internal/model"
)

// submissionWhere builds the shared filter of every submission-family table.
func submissionWhere(f SubmissionFilter, withCourse bool) conditions {
	var c conditions
	if f.StudentID > 0 {
		c.add("student_id = $%d", f.StudentID)
	}
	if withCourse && f.CourseID > 0 {
		c.add("course_id = $%d", f.CourseID)
	}
	if f.Status != "" {
		c.add("status = $%d", f.Status)
	}
	return c
}

// ─── Assignments ───────────────────────────────────────────────────────

const submissionColumns = `id, student_id, course_id, title, description, file_path, status, score, comment,
	deadline, submitted_at, reviewed_by, reviewed_at`

type pgSubmissionRepository struct {
	q Querier
}

func scanSubmission(row pgx.Row, s *model.Submission) error {
	return row.Scan(&s.ID, &s.StudentID, &s.CourseID, &s.Title, &s.Description, &s.FilePath, &s.Status,
		&s.Score, &s.Comment, &s.Deadline, &s.SubmittedAt, &s.ReviewedBy, &s.ReviewedAt)
}

func (r *pgSubmissionRepository) GetByID(ctx context.Context, id int) (*model.Submission, error) {
	s := &model.Submission{}
	if err := scanSubmission(r.q.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id), s); err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *pgSubmissionRepository) List(ctx context.Context, f SubmissionFilter) ([]model.Submission, error) {
	c := submissionWhere(f, true)
	rows, err := r.q.Query(ctx, `SELECT `+submissionColumns+` FROM submissions`+c.where()+
		` ORDER BY submitted_at DESC, id DESC`, c.args...)
	return collect(rows, err, scanSubmission)
}

func (r *pgSubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO submissions (student_id, course_id, title, description, file_path, status, deadline, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		s.StudentID, s.CourseID, s.Title, s.Description, s.FilePath, s.Status, s.Deadline, s.SubmittedAt,
	).Scan(&s.ID)
	return mapErr(err)
}

// Review writes status, score, and comment. Nil score or comment keeps the stored value.
func (r *pgSubmissionRepository) Review(ctx context.Context, id int, rv model.Review) error {
	return affected(r.q.Exec(ctx,
		`UPDATE submissions
		 SET status = $1, score = COALESCE($2, score), comment = COALESCE($3, comment),
		     reviewed_by = $4, reviewed_at = $5
		 WHERE id = $6`,
		rv.Status, rv.Score, rv.Comment, rv.ReviewerID, rv.ReviewedAt, id))
}

// ─── Letters ───────────────────────────────────────────────────────────

const letterColumns = `id, student_id, letter_type, title, description, file_path, status, notes,
	approved_by, approved_at, submitted_at`

type pgLetterRepository struct {
	q Querier
}

func scanLetter(row pgx.Row, l *model.LetterSubmission) error {
	return row.Scan(&l.ID, &l.StudentID, &l.LetterType, &l.Title, &l.Description, &l.FilePath, &l.Status,
		&l.Notes, &l.ApprovedBy, &l.ApprovedAt, &l.SubmittedAt)
}

func (r *pgLetterRepository) GetByID(ctx context.Context, id int) (*model.LetterSubmission, error) {
	l := &model.LetterSubmission{}
	if err := scanLetter(r.q.QueryRow(ctx, `SELECT `+letterColumns+` FROM letter_submissions WHERE id = $1`, id), l); err != nil {
		return nil, mapErr(err)
	}
	return l, nil
}

func (r *pgLetterRepository) List(ctx context.Context, f SubmissionFilter) ([]model.LetterSubmission, error) {
	c := submissionWhere(f, false)
	rows, err := r.q.Query(ctx, `SELECT `+letterColumns+` FROM letter_submissions`+c.where()+
		` ORDER BY submitted_at DESC, id DESC`, c.args...)
	return collect(rows, err, scanLetter)
}

func (r *pgLetterRepository) Create(ctx context.Context, l *model.LetterSubmission) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO letter_submissions (student_id, letter_type, title, description, file_path, status, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		l.StudentID, l.LetterType, l.Title, l.Description, l.FilePath, l.Status, l.SubmittedAt,
	).Scan(&l.ID)
	return mapErr(err)
}

func (r *pgLetterRepository) Review(ctx context.Context, id int, rv model.Review) error {
	return affected(r.q.Exec(ctx,
		`UPDATE letter_submissions
		 SET status = $1, notes = COALESCE($2, notes), approved_by = $3, approved_at = $4
		 WHERE id = $5`,
		rv.Status, rv.Comment, rv.ReviewerID, rv.ReviewedAt, id))
}

// ─── Internships ───────────────────────────────────────────────────────

const internshipColumns = `id, student_id, company, position, start_date, end_date, reason, file_path, status,
	notes, approved_by, approved_at, submitted_at`

type pgInternshipRepository struct {
	q Querier
}

func scanInternship(row pgx.Row, a *model.InternshipApplication) error {
	return row.Scan(&a.ID, &a.StudentID, &a.Company, &a.Position, &a.StartDate, &a.EndDate, &a.Reason,
		&a.FilePath, &a.Status, &a.Notes, &a.ApprovedBy, &a.ApprovedAt, &a.SubmittedAt)
}

func (r *pgInternshipRepository) GetByID(ctx context.Context, id int) (*model.InternshipApplication, error) {
	a := &model.InternshipApplication{}
	if err := scanInternship(r.q.QueryRow(ctx, `SELECT `+internshipColumns+` FROM internship_applications WHERE id = $1`, id), a); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (r *pgInternshipRepository) List(ctx context.Context, f SubmissionFilter) ([]model.InternshipApplication, error) {
	c := submissionWhere(f, false)
	rows, err := r.q.Query(ctx, `SELECT `+internshipColumns+` FROM internship_applications`+c.where()+
		` ORDER BY submitted_at DESC, id DESC`, c.args...)
	return collect(rows, err, scanInternship)
}

func (r *pgInternshipRepository) Create(ctx context.Context, a *model.InternshipApplication) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO internship_applications
		   (student_id, company, position, start_date, end_date, reason, file_path, status, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		a.StudentID, a.Company, a.Position, a.StartDate, a.EndDate, a.Reason, a.FilePath, a.Status, a.SubmittedAt,
	).Scan(&a.ID)
	return mapErr(err)
}

func (r *pgInternshipRepository) Review(ctx context.Context, id int, rv model.Review) error {
	return affected(r.q.Exec(ctx,
		`UPDATE internship_applications
		 SET status = $1, notes = COALESCE($2, notes), approved_by = $3, approved_at = $4
		 WHERE id = $5`,
		rv.Status, rv.Comment, rv.ReviewerID, rv.ReviewedAt, id))
}

// ─── Theses ────────────────────────────────────────────────────────────

const thesisColumns = `id, student_id, title, specialization, abstract, preferred_supervisor, file_path, status,
	notes, approved_by, approved_at, submitted_at`

type pgThesisRepository struct {
	q Querier
}

func scanThesis(row pgx.Row, a *model.ThesisApplication) error {
	return row.Scan(&a.ID, &a.StudentID, &a.Title, &a.Specialization, &a.Abstract, &a.PreferredSupervisor,
		&a.FilePath, &a.Status, &a.Notes, &a.ApprovedBy, &a.ApprovedAt, &a.SubmittedAt)
}

func (r *pgThesisRepository) GetByID(ctx context.Context, id int) (*model.ThesisApplication, error) {
	a := &model.ThesisApplication{}
	if err := scanThesis(r.q.QueryRow(ctx, `SELECT `+thesisColumns+` FROM thesis_applications WHERE id = $1`, id), a); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (r *pgThesisRepository) List(ctx context.Context, f SubmissionFilter) ([]model.ThesisApplication, error) {
	c := submissionWhere(f, false)
	rows, err := r.q.Query(ctx, `SELECT `+thesisColumns+` FROM thesis_applications`+c.where()+
		` ORDER BY submitted_at DESC, id DESC`, c.args...)
	return collect(rows, err, scanThesis)
}

func (r *pgThesisRepository) Create(ctx context.Context, a *model.ThesisApplication) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO thesis_applications
		   (student_id, title, specialization, abstract, preferred_supervisor, file_path, status, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		a.StudentID, a.Title, a.Specialization, a.Abstract, a.PreferredSupervisor, a.FilePath, a.Status, a.SubmittedAt,
	).Scan(&a.ID)
	return mapErr(err)
}

func (r *pgThesisRepository) Review(ctx context.Context, id int, rv model.Review) error {
	return affected(r.q.Exec(ctx,
		`UPDATE thesis_applications
		 SET status = $1, notes = COALESCE($2, notes), approved_by = $3, approved_at = $4
		 WHERE id = $5`,
		rv.Status, rv.Comment, rv.ReviewerID, rv.ReviewedAt, id))
}
